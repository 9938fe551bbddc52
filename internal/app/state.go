package app

import (
	"sync"

	"github.com/pscheid92/chargewatch/internal/domain"
)

const timestampLayout = "2006-01-02 15:04:05"

// State is the view state of one console. Values returned by Console.State
// are copies; the snapshot inside is shared but never mutated.
type State struct {
	Phase       domain.AuthPhase
	Session     domain.Session
	Dashboard   domain.Snapshot
	LoginError  string
	Username    string
	AuthLoading bool
	Loading     bool
	UsageRange  domain.UsageRange
}

func initialState() State {
	return State{
		Phase:      domain.LoggedOut,
		Dashboard:  domain.EmptySnapshot(),
		UsageRange: domain.UsageToday,
	}
}

func (s State) Authenticated() bool {
	return s.Phase == domain.LoggedIn
}

// CurrentUser returns nil unless a session is active.
func (s State) CurrentUser() *domain.User {
	if !s.Session.Valid() {
		return nil
	}
	u := s.Session.User
	return &u
}

// UsagePercent is the utilisation for the selected range.
func (s State) UsagePercent() int {
	return s.Dashboard.Usage.Percent(s.UsageRange)
}

// FormattedUpdatedAt renders the snapshot timestamp in local time, or "" when unset.
func (s State) FormattedUpdatedAt() string {
	if s.Dashboard.UpdatedAt.IsZero() {
		return ""
	}
	return s.Dashboard.UpdatedAt.Local().Format(timestampLayout)
}

type UsageTab struct {
	Key    domain.UsageRange `json:"key"`
	Label  string            `json:"label"`
	Active bool              `json:"active"`
}

var usageLabels = map[domain.UsageRange]string{
	domain.UsageToday: "Today",
	domain.UsageWeek:  "This week",
}

func (s State) UsageTabs() []UsageTab {
	tabs := make([]UsageTab, 0, len(domain.UsageRanges))
	for _, r := range domain.UsageRanges {
		tabs = append(tabs, UsageTab{Key: r, Label: usageLabels[r], Active: r == s.UsageRange})
	}
	return tabs
}

// stateStore guards a State. The lock is never held across provider or
// storage calls.
type stateStore struct {
	mu    sync.Mutex
	state State
}

func newStateStore() *stateStore {
	return &stateStore{state: initialState()}
}

func (s *stateStore) view() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *stateStore) update(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}
