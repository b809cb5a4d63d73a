package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nycstandup/showcatalog/internal/logger"
	"github.com/nycstandup/showcatalog/internal/show"
)

// Store is the read side of the catalog.
type Store interface {
	GetShows(ctx context.Context, f show.Filter) ([]show.Record, error)
	LastUpdated(ctx context.Context) (time.Time, bool, error)
	Venues(ctx context.Context) ([]show.Venue, error)
}

// Server wraps the echo instance serving the API.
type Server struct {
	echo  *echo.Echo
	store Store
	log   *logger.Logger
	now   func() time.Time
}

// New builds a Server with routes and middleware registered.
func New(store Store, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, store: store, log: log, now: time.Now}
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := logger.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
			}
			if v.Error != nil {
				s.log.Warn("request failed", fields, v.Error)
				return nil
			}
			s.log.Debug("request", fields)
			return nil
		},
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/healthz", s.health)
	g := s.echo.Group("/api")
	g.GET("/shows", s.listShows)
	g.GET("/venues", s.listVenues)
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api listening", logger.Fields{"addr": addr})
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("api stopped", nil)
	return nil
}

// handleError renders every error in the API's JSON envelope.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	msg := "internal error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(status)
		}
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("api error", logger.Fields{"path": c.Request().URL.Path}, err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, errorResponse{Success: false, Error: msg})
	}
	if err != nil {
		s.log.Warn("writing error response", nil, err)
	}
}
