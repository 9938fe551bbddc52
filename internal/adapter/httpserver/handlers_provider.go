package httpserver

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/chargewatch/internal/adapter/remoteapi"
	"github.com/pscheid92/chargewatch/internal/domain"
	apperrors "github.com/pscheid92/chargewatch/internal/platform/errors"
)

const bearerPrefix = "Bearer "

// registerProviderRoutes exposes the in-process provider over the JSON
// contract the remote client speaks. Nothing is mounted without a provider.
func (s *Server) registerProviderRoutes(rateLimiter echo.MiddlewareFunc) {
	if s.provider == nil {
		return
	}
	s.echo.POST(remoteapi.LoginPath, s.handleProviderLogin, rateLimiter)
	s.echo.GET(remoteapi.DashboardPath, s.handleProviderDashboard)
}

func (s *Server) handleProviderLogin(c echo.Context) error {
	var creds domain.Credentials
	if err := c.Bind(&creds); err != nil {
		return apperrors.ValidationError("invalid login request")
	}
	if creds.Empty() {
		return apperrors.ValidationError("username and password are required")
	}

	session, err := s.provider.Login(c.Request().Context(), creds)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return apperrors.UnauthorizedError(err.Error()).WithCode(remoteapi.CodeInvalidCredentials)
	}
	if err != nil {
		return apperrors.ExternalError("login failed", err)
	}

	return writeJSON(c, session)
}

func (s *Server) handleProviderDashboard(c echo.Context) error {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || token == "" {
		return apperrors.UnauthorizedError("missing bearer token")
	}
	if s.validToken != nil && !s.validToken(token) {
		return apperrors.UnauthorizedError("invalid bearer token")
	}

	snap, err := s.provider.FetchDashboardData(c.Request().Context(), token)
	if errors.Is(err, domain.ErrNotAuthenticated) {
		return apperrors.UnauthorizedError("invalid bearer token")
	}
	if err != nil {
		return apperrors.ExternalError("failed to load dashboard data", err)
	}

	return writeJSON(c, snap)
}
