package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/chargewatch/internal/app"
	"github.com/pscheid92/chargewatch/internal/domain"
	apperrors "github.com/pscheid92/chargewatch/internal/platform/errors"
)

// dashboardView is the page model of dashboard.html and the body of
// GET /api/dashboard.
type dashboardView struct {
	Authenticated bool              `json:"authenticated"`
	Phase         string            `json:"phase"`
	User          *domain.User      `json:"user"`
	Loading       bool              `json:"loading"`
	UsageRange    domain.UsageRange `json:"usageRange"`
	UsagePercent  int               `json:"usagePercent"`
	UsageTabs     []app.UsageTab    `json:"usageTabs"`
	UpdatedAt     string            `json:"updatedAt"`
	Dashboard     domain.Snapshot   `json:"dashboard"`
	CSRFToken     any               `json:"-"`
}

func newDashboardView(state app.State) dashboardView {
	return dashboardView{
		Authenticated: state.Authenticated(),
		Phase:         state.Phase.String(),
		User:          state.CurrentUser(),
		Loading:       state.Loading,
		UsageRange:    state.UsageRange,
		UsagePercent:  state.UsagePercent(),
		UsageTabs:     state.UsageTabs(),
		UpdatedAt:     state.FormattedUpdatedAt(),
		Dashboard:     state.Dashboard,
	}
}

func (s *Server) registerDashboardRoutes(csrfMiddleware echo.MiddlewareFunc) {
	s.echo.GET("/dashboard", s.handleDashboard, s.withConsole, s.requireLogin, csrfMiddleware)
	s.echo.POST("/dashboard/refresh", s.handleRefresh, s.withConsole, s.requireLogin, csrfMiddleware)
	s.echo.POST("/dashboard/usage-range", s.handleUsageRange, s.withConsole, s.requireLogin, csrfMiddleware)
}

func (s *Server) handleDashboard(c echo.Context) error {
	view := newDashboardView(consoleOf(c).State())
	view.CSRFToken = c.Get("csrf")
	return s.renderTemplate(c, http.StatusOK, "dashboard.html", view)
}

// handleRefresh reloads the snapshot. A failed fetch keeps the previous
// dashboard and is not reported to the client.
func (s *Server) handleRefresh(c echo.Context) error {
	console := consoleOf(c)
	_ = console.Refresh(c.Request().Context())

	if isJSONRequest(c) {
		return writeJSON(c, newDashboardView(console.State()))
	}
	return s.redirect(c, "/dashboard")
}

func (s *Server) handleUsageRange(c echo.Context) error {
	console := consoleOf(c)

	raw := c.FormValue("range")
	if err := console.SetUsageRange(domain.UsageRange(raw)); err != nil {
		return apperrors.ValidationError("unknown usage range").WithField("range", raw)
	}

	if isJSONRequest(c) {
		return writeJSON(c, newDashboardView(console.State()))
	}
	return s.redirect(c, "/dashboard")
}
