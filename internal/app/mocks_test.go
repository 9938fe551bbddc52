package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pscheid92/chargewatch/internal/domain"
)

// --- Mock implementations ---

type mockProvider struct {
	loginFn func(ctx context.Context, creds domain.Credentials) (domain.Session, error)
	fetchFn func(ctx context.Context, token string) (domain.Snapshot, error)

	loginCalls atomic.Int32
	fetchCalls atomic.Int32
}

func (m *mockProvider) Login(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	m.loginCalls.Add(1)
	if m.loginFn != nil {
		return m.loginFn(ctx, creds)
	}
	return domain.Session{}, fmt.Errorf("not implemented")
}

func (m *mockProvider) FetchDashboardData(ctx context.Context, token string) (domain.Snapshot, error) {
	m.fetchCalls.Add(1)
	if m.fetchFn != nil {
		return m.fetchFn(ctx, token)
	}
	return testSnapshot(), nil
}

type mockStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	setErr error

	deletes int
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	delete(m.data, key)
	return nil
}

func (m *mockStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

type recordingTelemetry struct {
	mu       sync.Mutex
	logins   []string
	refresh  []string
	restores []string
	active   int
}

func (r *recordingTelemetry) LoginAttempt(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, outcome)
}

func (r *recordingTelemetry) Refresh(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refresh = append(r.refresh, outcome)
}

func (r *recordingTelemetry) Restore(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.restores = append(r.restores, outcome)
}

func (r *recordingTelemetry) ConsolesActive(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = n
}

// --- Fixtures ---

var adminSession = domain.Session{
	Token: "mock-token-abc",
	User:  domain.User{Username: "admin", DisplayName: "System Administrator", Role: "administrator"},
}

func adminLogin(_ context.Context, creds domain.Credentials) (domain.Session, error) {
	if creds.Username == "admin" && creds.Password == "123456" {
		return adminSession, nil
	}
	return domain.Session{}, domain.ErrInvalidCredentials
}

func testSnapshot() domain.Snapshot {
	snap := domain.EmptySnapshot()
	snap.UpdatedAt = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	snap.Stats = []domain.StatCard{{ID: "daily", Label: "Daily chargers", Value: 4}}
	snap.Usage = domain.Usage{Today: 81, Week: 77}
	snap.Yesterday = domain.Yesterday{ChargeCount: 126, Trips: 0.7}
	for i := range domain.DailyRangeDays {
		date := fmt.Sprintf("2026-10-%02d", 12+i)
		snap.DailyRange = append(snap.DailyRange, domain.DailyPoint{Date: date, Value: 0.8})
		snap.WeeklyStats = append(snap.WeeklyStats, domain.WeeklyStat{Date: date, Duration: 9.5, Interruptions: 1})
	}
	for i := range domain.IntradayPoints {
		snap.RealtimeSeries = append(snap.RealtimeSeries, domain.SeriesPoint{Label: fmt.Sprintf("%d:00", 8+i), Value: 70})
	}
	for i := range domain.MonthlyPoints {
		snap.MonthlyStats = append(snap.MonthlyStats, domain.MonthlyStat{Month: fmt.Sprintf("2026-%02d", i+1), Value: 120})
	}
	return snap
}

func persistedSession(store *mockStore) {
	store.data[domain.SessionKey] = []byte(`{"token":"mock-token-abc","user":{"username":"admin","displayName":"System Administrator","role":"administrator"}}`)
}
