// Package httpapi exposes the booking service over HTTP with echo. Every
// request under /v1 runs while holding one process-wide lock, so the service
// sees a single writer at a time.
package httpapi

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"cinemacore/docs/schema/openapi"
	"cinemacore/internal/core"
)

// Config configures a Server.
type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	// Expvar mounts /debug/vars.
	Expvar bool
	Logger core.Logger
}

// Server routes HTTP requests to a core.Service.
type Server struct {
	svc    *core.Service
	echo   *echo.Echo
	tokens tokenIssuer
	logger core.Logger
	mu     sync.Mutex
}

// New builds the router. An empty JWT secret is rejected.
func New(svc *core.Service, cfg Config) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	s := &Server{
		svc:    svc,
		echo:   echo.New(),
		tokens: tokenIssuer{secret: []byte(cfg.JWTSecret), ttl: cfg.TokenTTL, now: svc.Now},
		logger: cfg.Logger,
	}
	if s.logger == nil {
		s.logger = discardLogger{}
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.handleError

	s.echo.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	s.echo.GET("/openapi.yaml", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "application/yaml", openapi.YAML())
	})
	if cfg.Metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(cfg.Metrics))
	}
	if cfg.Expvar {
		s.echo.GET("/debug/vars", echo.WrapHandler(expvar.Handler()))
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.echo.POST("/v1/auth/login", s.login, s.serialize)

	v1 := s.echo.Group("/v1", s.serialize, s.authenticate)
	v1.GET("/films", s.listFilms)
	v1.GET("/films/:id", s.getFilm)
	v1.GET("/seances", s.listSeances)
	v1.GET("/seances/:id", s.getSeance)
	v1.GET("/seances/:id/seats/:kind", s.listSeats)
	v1.POST("/seances/:id/tickets", s.sellTicket)
	v1.POST("/tickets/:id/refund", s.refundTicket)
	v1.POST("/tickets/:id/take-seat", s.takeSeat)

	admin := v1.Group("", s.requireAdmin)
	admin.POST("/films", s.createFilm)
	admin.PATCH("/films/:id", s.updateFilm)
	admin.DELETE("/films/:id", s.deleteFilm)
	admin.POST("/seances", s.createSeance)
	admin.PATCH("/seances/:id", s.updateSeance)
	admin.DELETE("/seances/:id", s.deleteSeance)
	admin.POST("/users", s.createUser)
	admin.PUT("/users/:login/password", s.changePassword)
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for running ones.
func (s *Server) Shutdown(ctx context.Context) error { return s.echo.Shutdown(ctx) }

// Lock blocks new requests until the returned function is called. The caller
// gets exclusive access to the service, e.g. to save a snapshot.
func (s *Server) Lock() (unlock func()) {
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Server) serialize(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return next(c)
	}
}

type discardLogger struct{}

func (discardLogger) Debug(string, ...any) {}
func (discardLogger) Info(string, ...any)  {}
func (discardLogger) Warn(string, ...any)  {}
func (discardLogger) Error(string, ...any) {}
