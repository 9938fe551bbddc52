package app

import (
	"context"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/chargewatch/internal/chart"
	"github.com/pscheid92/chargewatch/internal/domain"
)

// Console is the controller of one dashboard client. It owns the view state
// and hands it to the session manager and dashboard loader.
type Console struct {
	state    *stateStore
	sessions *SessionManager
	loader   *DashboardLoader
	charts   *chart.Set
}

type ConsoleOption func(*consoleOptions)

type consoleOptions struct {
	renderer  chart.Renderer
	clock     clockwork.Clock
	telemetry Telemetry
}

// WithRenderer enables chart handles. Without it options are built but no
// handles are created.
func WithRenderer(r chart.Renderer) ConsoleOption {
	return func(o *consoleOptions) { o.renderer = r }
}

func WithClock(c clockwork.Clock) ConsoleOption {
	return func(o *consoleOptions) { o.clock = c }
}

func WithTelemetry(t Telemetry) ConsoleOption {
	return func(o *consoleOptions) { o.telemetry = t }
}

func NewConsole(provider domain.DataProvider, store domain.KeyValueStore, opts ...ConsoleOption) *Console {
	o := consoleOptions{
		clock:     clockwork.NewRealClock(),
		telemetry: NopTelemetry{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	state := newStateStore()
	charts := chart.NewSet()
	loader := &DashboardLoader{
		state:     state,
		provider:  provider,
		charts:    charts,
		renderer:  o.renderer,
		clock:     o.clock,
		telemetry: o.telemetry,
	}
	sessions := &SessionManager{
		state:     state,
		provider:  provider,
		store:     store,
		loader:    loader,
		charts:    charts,
		telemetry: o.telemetry,
	}

	return &Console{
		state:    state,
		sessions: sessions,
		loader:   loader,
		charts:   charts,
	}
}

// Start restores a persisted session, reporting whether one was adopted.
func (c *Console) Start(ctx context.Context) bool {
	return c.sessions.Restore(ctx)
}

func (c *Console) Login(ctx context.Context, username, password string) error {
	return c.sessions.Login(ctx, username, password)
}

func (c *Console) Logout(ctx context.Context) {
	c.sessions.Logout(ctx)
}

func (c *Console) Refresh(ctx context.Context) error {
	return c.loader.Refresh(ctx)
}

func (c *Console) SetUsageRange(r domain.UsageRange) error {
	if _, err := domain.ParseUsageRange(string(r)); err != nil {
		return err
	}
	c.state.update(func(s *State) { s.UsageRange = r })
	return nil
}

func (c *Console) State() State {
	return c.state.view()
}

// Charts returns the options last rendered on live chart handles.
func (c *Console) Charts() map[chart.Key]chart.Option {
	return c.charts.Options()
}

// Close disposes chart handles. The persisted session is left alone.
func (c *Console) Close() {
	c.charts.Dispose()
}
