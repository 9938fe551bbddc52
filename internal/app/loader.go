package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/chargewatch/internal/chart"
	"github.com/pscheid92/chargewatch/internal/domain"
)

// DashboardLoader fetches snapshots for the active session.
type DashboardLoader struct {
	state     *stateStore
	provider  domain.DataProvider
	charts    *chart.Set
	renderer  chart.Renderer
	clock     clockwork.Clock
	telemetry Telemetry
}

// Refresh replaces the dashboard with a fresh snapshot. It is a no-op while
// no session is active. A failed fetch leaves the previous dashboard in place
// and is returned for logging only.
func (l *DashboardLoader) Refresh(ctx context.Context) error {
	st := l.state.view()
	if st.Phase != domain.LoggedIn {
		return nil
	}
	token := st.Session.Token

	l.state.update(func(s *State) { s.Loading = true })
	start := l.clock.Now()

	snap, err := l.provider.FetchDashboardData(ctx, token)
	if err == nil {
		err = snap.Validate()
	}
	if err != nil {
		l.state.update(func(s *State) { s.Loading = false })
		l.telemetry.Refresh(OutcomeError, l.clock.Since(start))
		slog.ErrorContext(ctx, "Failed to load dashboard data", "error", err)
		return fmt.Errorf("fetch dashboard: %w", err)
	}

	applied := false
	l.state.update(func(s *State) {
		s.Loading = false
		// a logout or re-login while the fetch was in flight wins
		if s.Phase != domain.LoggedIn || s.Session.Token != token {
			return
		}
		s.Dashboard = snap
		applied = true

		// Charts are drawn under the state lock so a concurrent Logout either
		// sees them and disposes them, or keeps them from being drawn.
		if l.renderer != nil {
			if err := l.charts.Ensure(l.renderer); err != nil {
				slog.WarnContext(ctx, "Failed to create charts", "error", err)
			}
		}
		l.charts.Render(snap)
	})
	if !applied {
		l.telemetry.Refresh(OutcomeStale, l.clock.Since(start))
		slog.DebugContext(ctx, "Discarded dashboard snapshot for ended session")
		return nil
	}
	l.telemetry.Refresh(OutcomeSuccess, l.clock.Since(start))
	return nil
}
