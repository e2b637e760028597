package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/slighter12/tres-devtools-go/config"
	"github.com/slighter12/tres-devtools-go/devtools"
	"github.com/slighter12/tres-devtools-go/logger"
)

const (
	observerIdleTimeout = 10 * time.Minute
	cleanupInterval     = 5 * time.Minute
	shutdownTimeout     = 5 * time.Second
)

// Server exposes the shared devtools store to observer panels over HTTP.
type Server struct {
	hub       *devtools.Hub
	handle    *devtools.Handle
	observers *ObserverManager
	config    *config.Config
	echo      *echo.Echo
}

// NewServer acquires a handle on hub's store for the lifetime of the server.
func NewServer(cfg *config.Config, hub *devtools.Hub) *Server {
	if cfg == nil {
		cfg = config.NewConfig()
		cfg.Normalize()
	}
	if hub == nil {
		hub = devtools.DefaultHub()
	}
	s := &Server{
		hub:       hub,
		handle:    hub.Acquire(),
		observers: NewObserverManager(),
		config:    cfg,
		echo:      echo.New(),
	}
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Debug = s.config.Server.Debug
	s.echo.Use(middleware.Logger())
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "Last-Event-ID"},
	}))
	RegisterRoutes(s.echo, s)
}

// Start serves until ctx is done or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	go s.startCleanupGoroutine(ctx)

	addr := net.JoinHostPort(s.config.Server.Host, strconv.Itoa(s.config.Server.Port))
	logger.Info("Devtools HTTP server starting to listen", "address", addr, "panel_route", s.config.Panel.Route)

	errCh := make(chan error, 1)
	go func() { errCh <- s.echo.Start(addr) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown closes every event stream, stops the listener and releases the store.
func (s *Server) Shutdown(ctx context.Context) error {
	// Streams block until their transport closes, so they go first.
	s.observers.CloseAll()
	err := s.echo.Shutdown(ctx)
	s.handle.Release()
	logger.Info("Devtools HTTP server stopped")
	return err
}

func (s *Server) startCleanupGoroutine(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.observers.CleanupObservers(observerIdleTimeout); removed > 0 {
				logger.Debug("Removed idle observers", "count", removed)
			}
		}
	}
}

// Handler exposes the echo router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) GetStore() *devtools.Store {
	return s.handle.Store()
}

func (s *Server) GetObserverManager() *ObserverManager {
	return s.observers
}

func (s *Server) GetConfig() *config.Config {
	return s.config
}
