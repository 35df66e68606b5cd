package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/existflow/chantier/internal/db"
	"github.com/existflow/chantier/internal/logger"
	"github.com/existflow/chantier/internal/model"
	"github.com/existflow/chantier/internal/remote"
	"github.com/existflow/chantier/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Config holds server settings
type Config struct {
	// postgres:// URL, or a SQLite path
	DatabaseURL string
	// HMAC key for bearer tokens
	JWTSecret string
	TokenTTL  time.Duration
	// Print one line per request to stdout
	AccessLog bool
}

// Server is the REST backend
type Server struct {
	db     *db.DB
	echo   *echo.Echo
	secret []byte
	ttl    time.Duration
	access bool
}

// New opens and migrates the database and builds the router
func New(cfg Config) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT secret is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 30 * 24 * time.Hour
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	s := &Server{
		db:     database,
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		access: cfg.AccessLog,
	}
	s.setupEcho()

	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	// Custom logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			res := c.Response()
			duration := time.Since(start)

			logger.Info("HTTP Response",
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("status", res.Status),
				logger.F("size", res.Size),
				logger.F("duration", duration.String()),
				logger.F("request_id", res.Header().Get(echo.HeaderXRequestID)))

			if s.access {
				fmt.Printf("REQUEST: %s %s  status=%d  size=%d  duration=%s\n",
					req.Method, req.RequestURI, res.Status, res.Size, duration)
			}

			return nil
		}
	})

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	e.GET("/health", s.handleHealth)

	// Auth endpoints (public)
	e.POST("/auth/register", s.handleRegister)
	e.POST("/auth/login", s.handleLogin)

	// Protected endpoints
	protected := e.Group("")
	protected.Use(s.authMiddleware)
	protected.GET("/auth/me", s.handleMe)

	registerResource(protected, remote.ProjectsPath, s, store.Store.Projects)
	registerResource(protected, remote.QuotesPath, s, store.Store.Quotes)
	registerResource(protected, remote.PaymentsPath, s, store.Store.Payments)
	registerResource(protected, remote.ExpensesPath, s, store.Store.Expenses)

	protected.GET(remote.ProjectsPath+"/:id/summary", s.handleSummary)
	protected.GET("/overview", s.handleOverview)

	s.echo = e
}

// Close closes the database connection
func (s *Server) Close() error {
	return s.db.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown
func (s *Server) Start(addr string) error {
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	if err := s.db.PingContext(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "database unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// storeFor scopes the collections to the authenticated user
func (s *Server) storeFor(c echo.Context) store.Store {
	return s.db.Store(userID(c), store.ModeRemote)
}

// errorBody is the JSON shape of every error answer
type errorBody struct {
	Message string `json:"message"`
}

func fail(status int, msg string) error {
	return echo.NewHTTPError(status, msg)
}

// handleError maps store and validation errors to status codes
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := "internal error"

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		status = he.Code
		msg = fmt.Sprint(he.Message)
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
		msg = "not found"
	case errors.Is(err, model.ErrInvalid):
		status = http.StatusBadRequest
		msg = err.Error()
	default:
		logger.Error("Request failed",
			logger.F("method", c.Request().Method),
			logger.F("uri", c.Request().RequestURI),
			logger.F("error", err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, errorBody{Message: msg})
	}
	if err != nil {
		logger.Warn("Failed to write error response", logger.F("error", err))
	}
}
