package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/chargewatch/internal/domain"
)

const credentialsRequiredMessage = "Please enter username and password"

type loginView struct {
	CSRFToken any
	Username  string
	Error     string
	Loading   bool
}

func (s *Server) registerAuthRoutes(csrfMiddleware, rateLimiter echo.MiddlewareFunc) {
	s.echo.GET("/auth/login", s.handleLoginPage, s.withConsole, csrfMiddleware)
	s.echo.POST("/auth/login", s.handleLogin, rateLimiter, s.withConsole, csrfMiddleware)
	s.echo.POST("/auth/logout", s.handleLogout, s.withConsole, csrfMiddleware)
}

func (s *Server) handleLanding(c echo.Context) error {
	if consoleOf(c).State().Authenticated() {
		return s.redirect(c, "/dashboard")
	}
	return s.redirect(c, "/auth/login")
}

func (s *Server) handleLoginPage(c echo.Context) error {
	state := consoleOf(c).State()
	if state.Authenticated() {
		return s.redirect(c, "/dashboard")
	}

	return s.renderTemplate(c, http.StatusOK, "login.html", loginView{
		CSRFToken: c.Get("csrf"),
		Username:  state.Username,
		Error:     state.LoginError,
		Loading:   state.AuthLoading,
	})
}

func (s *Server) handleLogin(c echo.Context) error {
	ctx := c.Request().Context()
	console := consoleOf(c)

	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")

	err := console.Login(ctx, username, password)
	if err == nil {
		return s.redirect(c, "/dashboard")
	}

	view := loginView{CSRFToken: c.Get("csrf"), Username: username}
	status := http.StatusUnauthorized
	if errors.Is(err, domain.ErrCredentialsRequired) {
		view.Error = credentialsRequiredMessage
		status = http.StatusBadRequest
	} else {
		view.Error = console.State().LoginError
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			status = http.StatusBadGateway
		}
	}

	slog.InfoContext(ctx, "Login rejected", "username", username, "status", status)
	return s.renderTemplate(c, status, "login.html", view)
}

func (s *Server) handleLogout(c echo.Context) error {
	ctx := c.Request().Context()
	console := consoleOf(c)

	user := console.State().CurrentUser()
	console.Logout(ctx)
	if user != nil {
		slog.InfoContext(ctx, "User logged out", "username", user.Username)
	}

	return s.redirect(c, "/auth/login")
}
