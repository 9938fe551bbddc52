package httpserver

import (
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/chargewatch/internal/chart"
	apperrors "github.com/pscheid92/chargewatch/internal/platform/errors"
)

func (s *Server) registerAPIRoutes() {
	s.echo.GET("/api/dashboard", s.handleDashboardState, s.withConsole)
	s.echo.GET("/api/dashboard/charts", s.handleDashboardCharts, s.withConsole)
	s.echo.GET("/api/dashboard/charts/:key", s.handleDashboardChart, s.withConsole)
}

// handleDashboardState returns the client's view state. Logged-out clients get
// the empty dashboard shape rather than an error.
func (s *Server) handleDashboardState(c echo.Context) error {
	return writeJSON(c, newDashboardView(consoleOf(c).State()))
}

// handleDashboardCharts returns the chart options keyed by chart name, in the
// format the charting library's setOption accepts. Logged-out clients get an
// empty object.
func (s *Server) handleDashboardCharts(c echo.Context) error {
	console := consoleOf(c)
	if !console.State().Authenticated() {
		return writeJSON(c, map[chart.Key]chart.Option{})
	}
	return writeJSON(c, console.Charts())
}

// handleDashboardChart returns one chart's options. Unknown keys and charts
// not drawn for this client are not found.
func (s *Server) handleDashboardChart(c echo.Context) error {
	key := chart.Key(c.Param("key"))
	console := consoleOf(c)
	if console.State().Authenticated() {
		if opt, ok := console.Charts()[key]; ok {
			return writeJSON(c, opt)
		}
	}
	return apperrors.NotFoundError("no such chart").WithField("chart", string(key))
}
