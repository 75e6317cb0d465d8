// Command cli is the interactive todo client.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/todoclient/internal/buildinfo"
	"github.com/dmitrijs2005/todoclient/internal/client/api"
	"github.com/dmitrijs2005/todoclient/internal/client/cli"
	"github.com/dmitrijs2005/todoclient/internal/client/config"
	"github.com/dmitrijs2005/todoclient/internal/client/services"
	"github.com/dmitrijs2005/todoclient/internal/client/session"
	"github.com/dmitrijs2005/todoclient/internal/client/storage"
	"github.com/dmitrijs2005/todoclient/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(os.Stderr, cfg.LogLevel)

	store, err := storage.Open(ctx, cfg.StoragePath, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	if !store.Available(ctx) {
		logger.Warn(ctx, "storage is not writable, the session will not survive a restart", "path", cfg.StoragePath)
	}

	client := api.New(cfg.APIBaseURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger),
		api.WithRequestLogging(cfg.LogRequests),
	)
	mgr := session.NewManager(client, store, logger, session.WithExpiryBuffer(cfg.TokenExpiryBuffer))
	client.BindSession(mgr)

	if mgr.Restore(ctx) {
		if err := mgr.Validate(ctx); err != nil {
			logger.Info(ctx, "saved session is no longer valid", "error", err)
		}
	}

	var app *cli.App
	idle := session.NewIdleWatcher(mgr, cfg.IdleTimeout, cfg.BackendLogout, func() { app.NotifyAutoLogout() }, logger)

	app = cli.NewApp(cli.Deps{
		Auth:                services.NewAuthService(mgr, client, config.Password, cfg.BackendLogout),
		Todo:                services.NewTodoService(client, logger),
		Dashboard:           services.NewDashboardService(client, logger),
		Preferences:         services.NewPreferencesService(store),
		Activity:            idle,
		Fresh:               mgr,
		Logger:              logger,
		HealthCheckInterval: cfg.HealthCheckInterval,
	}, os.Stdin, os.Stdout)

	idle.Start(ctx)
	defer idle.Stop()

	app.Run(ctx)
	return nil
}
