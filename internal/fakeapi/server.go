// Package fakeapi is an in-memory implementation of the todo backend REST
// API. It backs the client tests and the devapi command; nothing is persisted.
package fakeapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/todoclient/internal/common"
	"github.com/dmitrijs2005/todoclient/internal/logging"
)

// Config tunes a Server. Zero values select the defaults.
type Config struct {
	// Prefix is prepended to every route. /health is also served unprefixed.
	Prefix     string
	SecretKey  string
	TokenTTL   time.Duration
	BcryptCost int
	Now        func() time.Time
}

func (c *Config) applyDefaults() {
	if c.Prefix == "" {
		c.Prefix = "/v1"
	}
	if c.SecretKey == "" {
		c.SecretKey = "dev-secret"
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = 30 * time.Minute
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = bcrypt.DefaultCost
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Fault is a canned reply served instead of the next matching request.
type Fault struct {
	// Path limits the fault to request paths with this prefix (after the
	// route prefix). Empty matches every request.
	Path   string
	Status int
	// Body is sent as JSON, or as text/plain when it is a string.
	Body any
}

type Server struct {
	cfg   Config
	echo  *echo.Echo
	store *memStore
	log   logging.Logger

	mu      sync.Mutex
	revoked map[string]struct{}
	faults  []Fault
}

func New(cfg Config, log logging.Logger) *Server {
	cfg.applyDefaults()
	s := &Server{
		cfg:     cfg,
		echo:    echo.New(),
		store:   newMemStore(),
		log:     log.With("component", "fakeapi"),
		revoked: make(map[string]struct{}),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.routes()
	return s
}

// Handler exposes the server for httptest or a custom http.Server.
func (s *Server) Handler() http.Handler { return s.echo }

// InjectFault queues f. Faults are consumed in order, one per matching request.
func (s *Server) InjectFault(f Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, f)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "fake api listening", "addr", addr, "prefix", s.cfg.Prefix)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serve %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info(ctx, "fake api shutting down")
	return s.echo.Shutdown(shutdownCtx)
}

func (s *Server) routes() {
	e := s.echo
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator:    uuid.NewString,
		TargetHeader: common.RequestIDHeaderName,
	}))
	e.Use(s.logRequests)
	e.Use(s.serveFaults)

	e.GET("/health", s.health)

	api := e.Group(s.cfg.Prefix)
	api.GET("/health", s.health)
	api.POST("/auth/register", s.register)
	api.POST("/auth/login", s.login)

	authed := api.Group("", s.requireAuth)
	authed.POST("/auth/refresh", s.refresh)
	authed.POST("/auth/logout", s.logout)
	authed.GET("/users/me", s.getProfile)
	authed.PUT("/users/me", s.updateProfile)

	authed.GET("/lists", s.getLists)
	authed.POST("/lists", s.createList)
	authed.GET("/lists/:id", s.getList)
	authed.PUT("/lists/:id", s.updateList)
	authed.DELETE("/lists/:id", s.deleteList)
	authed.GET("/lists/:id/tasks", s.getListTasks)
	authed.POST("/lists/:id/tasks", s.createListTask)

	authed.GET("/tasks", s.getTasks)
	authed.POST("/tasks", s.createTask)
	authed.GET("/tasks/:id", s.getTask)
	authed.PUT("/tasks/:id", s.updateTask)
	authed.DELETE("/tasks/:id", s.deleteTask)
	authed.POST("/tasks/:id/complete", s.completeTask)
	authed.POST("/tasks/:id/incomplete", s.incompleteTask)
}

const (
	ctxUserID = "user_id"
	ctxToken  = "token"
)

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := common.BearerToken(c.Request().Header.Get(common.AuthorizationHeaderName))
		if token == "" {
			return detail(c, http.StatusUnauthorized, "Not authenticated")
		}

		s.mu.Lock()
		_, revoked := s.revoked[token]
		s.mu.Unlock()
		if revoked {
			return detail(c, http.StatusUnauthorized, "Token has been revoked")
		}

		userID, err := UserIDFromToken(token, []byte(s.cfg.SecretKey), s.cfg.Now)
		if err != nil {
			return detail(c, http.StatusUnauthorized, "Could not validate credentials")
		}
		if _, err := s.store.getUser(userID); err != nil {
			return detail(c, http.StatusUnauthorized, "Could not validate credentials")
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxToken, token)
		return next(c)
	}
}

func (s *Server) logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		s.log.Debug(c.Request().Context(), "request",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", c.Response().Status,
			"duration", time.Since(start),
			"request_id", c.Response().Header().Get(common.RequestIDHeaderName))
		return nil
	}
}

func (s *Server) serveFaults(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := strings.TrimPrefix(c.Request().URL.Path, s.cfg.Prefix)

		s.mu.Lock()
		var (
			f     Fault
			found bool
		)
		for i, candidate := range s.faults {
			if strings.HasPrefix(path, candidate.Path) {
				f, found = candidate, true
				s.faults = append(s.faults[:i], s.faults[i+1:]...)
				break
			}
		}
		s.mu.Unlock()

		if !found {
			return next(c)
		}
		switch body := f.Body.(type) {
		case nil:
			return c.NoContent(f.Status)
		case string:
			return c.String(f.Status, body)
		default:
			return c.JSON(f.Status, body)
		}
	}
}

func (s *Server) now() time.Time { return s.cfg.Now().UTC() }

func (s *Server) revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = struct{}{}
}

// detail answers in the FastAPI error shape.
func detail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"detail": msg})
}

type fieldProblem struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// validationFailed answers 422 with one problem per body field.
func validationFailed(c echo.Context, problems map[string]string) error {
	out := make([]fieldProblem, 0, len(problems))
	for _, field := range sortedKeys(problems) {
		out = append(out, fieldProblem{Loc: []string{"body", field}, Msg: problems[field], Type: "value_error"})
	}
	return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": out})
}
