package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/pscheid92/chargewatch/internal/chart"
	"github.com/pscheid92/chargewatch/internal/domain"
)

const loginFailedMessage = "Login failed, please try again later"

// SessionManager owns the authentication lifecycle and its persisted form.
type SessionManager struct {
	state     *stateStore
	provider  domain.DataProvider
	store     domain.KeyValueStore
	loader    *DashboardLoader
	charts    *chart.Set
	telemetry Telemetry
}

// Restore adopts a persisted session and refreshes the dashboard once.
// Unreadable or malformed entries are deleted and reported as false.
func (m *SessionManager) Restore(ctx context.Context) bool {
	raw, err := m.store.Get(ctx, domain.SessionKey)
	if errors.Is(err, domain.ErrKeyNotFound) || (err == nil && len(raw) == 0) {
		m.telemetry.Restore(OutcomeAbsent)
		return false
	}

	var sess domain.Session
	if err == nil {
		sess, err = domain.DecodeSession(raw)
	}
	if err != nil {
		slog.WarnContext(ctx, "Failed to restore auth state", "error", err)
		m.clear(ctx)
		m.state.update(func(s *State) {
			s.Phase = domain.LoggedOut
			s.Session = domain.Session{}
			s.Dashboard = domain.EmptySnapshot()
		})
		m.telemetry.Restore(OutcomeCorrupt)
		return false
	}

	if !sess.Valid() {
		m.telemetry.Restore(OutcomeAbsent)
		return false
	}

	m.state.update(func(s *State) {
		s.Phase = domain.LoggedIn
		s.Session = sess
	})
	m.telemetry.Restore(OutcomeRestored)
	slog.InfoContext(ctx, "Session restored", "username", sess.User.Username)

	_ = m.loader.Refresh(ctx)
	return true
}

// Login authenticates against the provider. On success the session is
// persisted and the dashboard refreshed. On failure the phase follows the
// session currently held, which may belong to an overlapping attempt, and
// LoginError is set.
func (m *SessionManager) Login(ctx context.Context, username, password string) error {
	creds := domain.Credentials{Username: username, Password: password}
	if creds.Empty() {
		return domain.ErrCredentialsRequired
	}

	m.state.update(func(s *State) {
		s.Phase = domain.Authenticating
		s.AuthLoading = true
		s.LoginError = ""
		s.Username = username
	})

	sess, err := m.provider.Login(ctx, creds)
	if err != nil {
		msg := loginFailedMessage
		outcome := OutcomeError
		if errors.Is(err, domain.ErrInvalidCredentials) {
			msg = domain.ErrInvalidCredentials.Error()
			outcome = OutcomeInvalid
		} else {
			slog.ErrorContext(ctx, "Login request failed", "username", username, "error", err)
		}
		m.state.update(func(s *State) {
			s.Phase = domain.LoggedOut
			if s.Session.Valid() {
				s.Phase = domain.LoggedIn
			}
			s.AuthLoading = false
			s.LoginError = msg
		})
		m.telemetry.LoginAttempt(outcome)
		return err
	}

	m.state.update(func(s *State) {
		s.Phase = domain.LoggedIn
		s.Session = sess
	})
	m.telemetry.LoginAttempt(OutcomeSuccess)
	m.persist(ctx, sess)
	slog.InfoContext(ctx, "User logged in", "username", sess.User.Username, "role", sess.User.Role)

	_ = m.loader.Refresh(ctx)

	m.state.update(func(s *State) { s.AuthLoading = false })
	return nil
}

// Logout forgets the session everywhere and resets the dashboard.
func (m *SessionManager) Logout(ctx context.Context) {
	m.clear(ctx)
	m.state.update(func(s *State) {
		s.Phase = domain.LoggedOut
		s.Session = domain.Session{}
		s.Username = ""
		s.Dashboard = domain.EmptySnapshot()
		s.UsageRange = domain.UsageToday
		m.charts.Dispose()
	})
	slog.InfoContext(ctx, "User logged out")
}

func (m *SessionManager) persist(ctx context.Context, sess domain.Session) {
	data, err := json.Marshal(sess)
	if err != nil {
		slog.WarnContext(ctx, "Failed to encode auth state", "error", err)
		return
	}
	if err := m.store.Set(ctx, domain.SessionKey, data); err != nil {
		slog.WarnContext(ctx, "Failed to persist auth state", "error", err)
	}
}

func (m *SessionManager) clear(ctx context.Context) {
	if err := m.store.Delete(ctx, domain.SessionKey); err != nil {
		slog.WarnContext(ctx, "Failed to clear auth state", "error", err)
	}
}
