package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/pscheid92/chargewatch/internal/chart"
	"github.com/pscheid92/chargewatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsole(provider *mockProvider, store *mockStore, opts ...ConsoleOption) *Console {
	return NewConsole(provider, store, opts...)
}

func TestLogin_ValidCredentials(t *testing.T) {
	provider := &mockProvider{loginFn: adminLogin}
	store := newMockStore()
	tel := &recordingTelemetry{}
	c := newTestConsole(provider, store, WithTelemetry(tel))

	err := c.Login(context.Background(), "admin", "123456")
	require.NoError(t, err)

	st := c.State()
	assert.Equal(t, domain.LoggedIn, st.Phase)
	assert.True(t, st.Authenticated())
	assert.Empty(t, st.LoginError)
	assert.False(t, st.AuthLoading)
	assert.False(t, st.Loading)
	assert.Equal(t, "admin", st.Username)
	assert.Equal(t, adminSession, st.Session)
	assert.Equal(t, testSnapshot(), st.Dashboard)
	assert.Equal(t, int32(1), provider.fetchCalls.Load())

	raw, err := store.Get(context.Background(), domain.SessionKey)
	require.NoError(t, err)
	var persisted domain.Session
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Equal(t, adminSession, persisted)

	assert.Equal(t, []string{OutcomeSuccess}, tel.logins)
	assert.Equal(t, []string{OutcomeSuccess}, tel.refresh)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	provider := &mockProvider{loginFn: adminLogin}
	store := newMockStore()
	c := newTestConsole(provider, store)

	err := c.Login(context.Background(), "admin", "wrong")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	st := c.State()
	assert.Equal(t, domain.LoggedOut, st.Phase)
	assert.Equal(t, domain.ErrInvalidCredentials.Error(), st.LoginError)
	assert.False(t, st.AuthLoading)
	assert.True(t, st.Dashboard.IsEmpty())
	assert.False(t, store.has(domain.SessionKey))
	assert.Equal(t, int32(0), provider.fetchCalls.Load())
}

func TestLogin_FailureWhileLoggedInKeepsSession(t *testing.T) {
	provider := &mockProvider{loginFn: adminLogin}
	c := newTestConsole(provider, newMockStore())

	require.NoError(t, c.Login(context.Background(), "admin", "123456"))
	err := c.Login(context.Background(), "admin", "nope")
	require.Error(t, err)

	st := c.State()
	assert.Equal(t, domain.LoggedIn, st.Phase)
	assert.Equal(t, adminSession, st.Session)
	assert.NotEmpty(t, st.LoginError)
	assert.False(t, st.Dashboard.IsEmpty())
}

// gatedLogin blocks each attempt until its password's gate is closed and
// reports entry on entered.
func gatedLogin(entered chan<- string, gates map[string]chan struct{}) func(context.Context, domain.Credentials) (domain.Session, error) {
	return func(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
		entered <- creds.Password
		<-gates[creds.Password]
		return adminLogin(ctx, creds)
	}
}

func TestLogin_OverlappingFailuresEndLoggedOut(t *testing.T) {
	gates := map[string]chan struct{}{"a": make(chan struct{}), "b": make(chan struct{})}
	entered := make(chan string, 2)
	provider := &mockProvider{loginFn: gatedLogin(entered, gates)}
	c := newTestConsole(provider, newMockStore())
	ctx := context.Background()

	errs := make(chan error, 2)
	go func() { errs <- c.Login(ctx, "admin", "a") }()
	<-entered
	go func() { errs <- c.Login(ctx, "admin", "b") }()
	<-entered

	close(gates["a"])
	require.ErrorIs(t, <-errs, domain.ErrInvalidCredentials)
	close(gates["b"])
	require.ErrorIs(t, <-errs, domain.ErrInvalidCredentials)

	st := c.State()
	assert.Equal(t, domain.LoggedOut, st.Phase)
	assert.False(t, st.AuthLoading)
	assert.Equal(t, domain.ErrInvalidCredentials.Error(), st.LoginError)
}

func TestLogin_FailureOverlappingSuccessStaysLoggedIn(t *testing.T) {
	gates := map[string]chan struct{}{"123456": make(chan struct{}), "wrong": make(chan struct{})}
	entered := make(chan string, 2)
	provider := &mockProvider{loginFn: gatedLogin(entered, gates)}
	store := newMockStore()
	c := newTestConsole(provider, store)
	ctx := context.Background()

	errs := make(chan error, 2)
	go func() { errs <- c.Login(ctx, "admin", "123456") }()
	<-entered
	go func() { errs <- c.Login(ctx, "admin", "wrong") }()
	<-entered

	close(gates["123456"])
	require.NoError(t, <-errs)
	close(gates["wrong"])
	require.ErrorIs(t, <-errs, domain.ErrInvalidCredentials)

	st := c.State()
	assert.Equal(t, domain.LoggedIn, st.Phase)
	assert.True(t, st.Authenticated())
	assert.Equal(t, adminSession, st.Session)
	assert.False(t, st.Dashboard.IsEmpty())
	assert.True(t, store.has(domain.SessionKey))

	// the console stays usable
	require.NoError(t, c.Refresh(ctx))
	assert.Equal(t, int32(2), provider.fetchCalls.Load())
}

func TestLogin_SuccessClearsPriorError(t *testing.T) {
	provider := &mockProvider{loginFn: adminLogin}
	c := newTestConsole(provider, newMockStore())

	require.Error(t, c.Login(context.Background(), "admin", "nope"))
	require.NotEmpty(t, c.State().LoginError)

	require.NoError(t, c.Login(context.Background(), "admin", "123456"))
	assert.Empty(t, c.State().LoginError)
}

func TestLogin_EmptyCredentials(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"empty username", "", "123456"},
		{"empty password", "admin", ""},
		{"both empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{loginFn: adminLogin}
			c := newTestConsole(provider, newMockStore())
			before := c.State()

			err := c.Login(context.Background(), tt.username, tt.password)
			require.ErrorIs(t, err, domain.ErrCredentialsRequired)
			assert.Equal(t, before, c.State())
			assert.Equal(t, int32(0), provider.loginCalls.Load())
		})
	}
}

func TestLogin_ProviderError(t *testing.T) {
	provider := &mockProvider{loginFn: func(context.Context, domain.Credentials) (domain.Session, error) {
		return domain.Session{}, errors.New("connection refused")
	}}
	tel := &recordingTelemetry{}
	c := newTestConsole(provider, newMockStore(), WithTelemetry(tel))

	require.Error(t, c.Login(context.Background(), "admin", "123456"))
	assert.Equal(t, loginFailedMessage, c.State().LoginError)
	assert.Equal(t, domain.LoggedOut, c.State().Phase)
	assert.Equal(t, []string{OutcomeError}, tel.logins)
}

func TestLogin_StoreWriteFailureStillSucceeds(t *testing.T) {
	store := newMockStore()
	store.setErr = errors.New("disk full")
	c := newTestConsole(&mockProvider{loginFn: adminLogin}, store)

	require.NoError(t, c.Login(context.Background(), "admin", "123456"))
	assert.Equal(t, domain.LoggedIn, c.State().Phase)
	assert.False(t, store.has(domain.SessionKey))
}

func TestLogout_ResetsToEmptyShape(t *testing.T) {
	store := newMockStore()
	renderer := chart.NewMemoryRenderer()
	c := newTestConsole(&mockProvider{loginFn: adminLogin}, store, WithRenderer(renderer))

	require.NoError(t, c.Login(context.Background(), "admin", "123456"))
	require.NoError(t, c.SetUsageRange(domain.UsageWeek))
	require.Equal(t, 4, renderer.Live())

	c.Logout(context.Background())

	st := c.State()
	assert.Equal(t, domain.EmptySnapshot(), st.Dashboard)
	assert.Equal(t, domain.LoggedOut, st.Phase)
	assert.Equal(t, domain.Session{}, st.Session)
	assert.Empty(t, st.Username)
	assert.Equal(t, domain.UsageToday, st.UsageRange)
	assert.Nil(t, st.CurrentUser())
	assert.False(t, store.has(domain.SessionKey))
	assert.Equal(t, 0, renderer.Live())
	assert.Empty(t, c.Charts())
}

func TestRestore_ValidSessionRefreshesOnce(t *testing.T) {
	store := newMockStore()
	persistedSession(store)
	provider := &mockProvider{}
	tel := &recordingTelemetry{}
	c := newTestConsole(provider, store, WithTelemetry(tel))

	assert.True(t, c.Start(context.Background()))

	st := c.State()
	assert.Equal(t, domain.LoggedIn, st.Phase)
	assert.Equal(t, adminSession, st.Session)
	assert.Equal(t, int32(1), provider.fetchCalls.Load())
	assert.Equal(t, int32(0), provider.loginCalls.Load())
	assert.False(t, st.Dashboard.IsEmpty())
	assert.Equal(t, []string{OutcomeRestored}, tel.restores)
}

func TestRestore_PassesTokenToProvider(t *testing.T) {
	store := newMockStore()
	persistedSession(store)
	var gotToken string
	provider := &mockProvider{fetchFn: func(_ context.Context, token string) (domain.Snapshot, error) {
		gotToken = token
		return testSnapshot(), nil
	}}

	newTestConsole(provider, store).Start(context.Background())
	assert.Equal(t, "mock-token-abc", gotToken)
}

func TestRestore_CorruptDataClearsEntry(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"truncated json", `{"token":"abc"`},
		{"not an object", `"just a string"`},
		{"array", `[]`},
		{"token of the wrong type", `{"token":123}`},
		{"garbage", `%%%`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			store.data[domain.SessionKey] = []byte(tt.raw)
			provider := &mockProvider{}
			tel := &recordingTelemetry{}
			c := newTestConsole(provider, store, WithTelemetry(tel))

			assert.False(t, c.Start(context.Background()))
			assert.Equal(t, domain.LoggedOut, c.State().Phase)
			assert.True(t, c.State().Dashboard.IsEmpty())
			assert.Empty(t, c.State().LoginError)
			assert.False(t, store.has(domain.SessionKey))
			assert.Equal(t, int32(0), provider.fetchCalls.Load())
			assert.Equal(t, []string{OutcomeCorrupt}, tel.restores)
		})
	}
}

func TestRestore_ReadErrorClearsEntry(t *testing.T) {
	store := newMockStore()
	store.getErr = errors.New("permission denied")
	c := newTestConsole(&mockProvider{}, store)

	assert.False(t, c.Start(context.Background()))
	assert.Equal(t, 1, store.deletes)
}

func TestRestore_AbsentOrTokenless(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		store := newMockStore()
		provider := &mockProvider{}
		c := newTestConsole(provider, store)

		assert.False(t, c.Start(context.Background()))
		assert.Equal(t, 0, store.deletes)
		assert.Equal(t, int32(0), provider.fetchCalls.Load())
	})

	t.Run("no token", func(t *testing.T) {
		store := newMockStore()
		store.data[domain.SessionKey] = []byte(`{"token":null,"user":null}`)
		c := newTestConsole(&mockProvider{}, store)

		assert.False(t, c.Start(context.Background()))
		assert.Equal(t, domain.LoggedOut, c.State().Phase)
		assert.True(t, store.has(domain.SessionKey))
	})
}
