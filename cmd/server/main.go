// Command server runs the in-memory development backend the todo CLI talks to.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/todoclient/internal/buildinfo"
	"github.com/dmitrijs2005/todoclient/internal/fakeapi"
	"github.com/dmitrijs2005/todoclient/internal/logging"
	"github.com/dmitrijs2005/todoclient/internal/server/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New(os.Stderr, cfg.LogLevel)
	srv := fakeapi.New(fakeapi.Config{
		Prefix:    cfg.Prefix,
		SecretKey: cfg.SecretKey,
		TokenTTL:  cfg.AccessTokenValidityDuration,
	}, logger)

	logger.Info(ctx, "development backend listening", "addr", cfg.Addr, "prefix", cfg.Prefix)
	if err := srv.Run(ctx, cfg.Addr); err != nil {
		log.Fatalf("%v", err)
	}
}
