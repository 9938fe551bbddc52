package httpserver

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/chargewatch/internal/adapter/metrics"
	"github.com/pscheid92/chargewatch/internal/app"
	"github.com/pscheid92/chargewatch/internal/domain"
	"github.com/pscheid92/chargewatch/internal/platform/config"
	"github.com/pscheid92/chargewatch/web"
)

// consoleSource resolves the dashboard console of a browser client.
type consoleSource interface {
	Get(ctx context.Context, clientID string) *app.Console
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	consoles consoleSource

	// provider backs the provider API routes. Nil unless the mock provider
	// is served in-process.
	provider   domain.DataProvider
	validToken func(token string) bool

	templates *template.Template

	sessionStore   *sessions.CookieStore
	healthChecks   []HealthCheck
	httpMetrics    *metrics.HTTPMetrics
	metricsHandler http.Handler
	startTime      time.Time
}

type Option func(*Server)

// WithProviderAPI serves provider under /api/provider. Bearer tokens are
// checked with validToken before the provider is called.
func WithProviderAPI(provider domain.DataProvider, validToken func(string) bool) Option {
	return func(s *Server) {
		s.provider = provider
		s.validToken = validToken
	}
}

func WithHealthChecks(checks ...HealthCheck) Option {
	return func(s *Server) { s.healthChecks = append(s.healthChecks, checks...) }
}

// WithMetrics records request metrics and exposes handler on /metrics.
func WithMetrics(m *metrics.HTTPMetrics, handler http.Handler) Option {
	return func(s *Server) {
		s.httpMetrics = m
		s.metricsHandler = handler
	}
}

func NewServer(cfg *config.Config, consoles consoleSource, opts ...Option) (*Server, error) {
	templates, err := template.ParseFS(web.TemplateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		consoles:     consoles,
		templates:    templates,
		sessionStore: setupSessionStore(cfg),
		startTime:    time.Now(),
	}
	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// Session keys
const (
	sessionName        = "chargewatch-client"
	sessionKeyClientID = "client_id"
)

func (s *Server) renderTemplate(c echo.Context, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.ErrorContext(c.Request().Context(), "Template execution failed", "path", c.Request().URL.Path, "error", err)
		if err := c.String(http.StatusInternalServerError, "Failed to render page"); err != nil {
			return fmt.Errorf("failed to send error response: %w", err)
		}
		return nil
	}
	if err := c.HTMLBlob(status, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to send HTML response: %w", err)
	}
	return nil
}

func (s *Server) redirect(c echo.Context, to string) error {
	if err := c.Redirect(http.StatusSeeOther, to); err != nil {
		return fmt.Errorf("failed to redirect: %w", err)
	}
	return nil
}

func setupSessionStore(cfg *config.Config) *sessions.CookieStore {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	return sessionStore
}
