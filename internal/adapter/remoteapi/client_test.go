package remoteapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pscheid92/chargewatch/internal/domain"
	"github.com/pscheid92/chargewatch/internal/platform/correlation"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+LoginPath, func(w http.ResponseWriter, r *http.Request) {
		var creds domain.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad body"})
			return
		}
		if creds.Username != "admin" || creds.Password != "123456" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "invalid username or password", "type": "unauthorized", "code": CodeInvalidCredentials,
			})
			return
		}
		writeJSON(w, http.StatusOK, domain.Session{
			Token: "remote-token",
			User:  domain.User{Username: "admin", DisplayName: "System Administrator", Role: "administrator"},
		})
	})
	mux.HandleFunc("GET "+DashboardPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer remote-token" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing token", "type": "unauthorized"})
			return
		}
		snap := domain.EmptySnapshot()
		snap.Usage = domain.Usage{Today: 90, Week: 80}
		writeJSON(w, http.StatusOK, snap)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_RejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "localhost:8080", "://x"} {
		_, err := New(u)
		assert.Error(t, err, u)
	}
}

func TestLogin_Success(t *testing.T) {
	c, err := New(fakeBackend(t).URL + "/")
	require.NoError(t, err)

	sess, err := c.Login(context.Background(), domain.Credentials{Username: "admin", Password: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "remote-token", sess.Token)
	assert.Equal(t, "System Administrator", sess.User.DisplayName)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	c, err := New(fakeBackend(t).URL)
	require.NoError(t, err)

	for range 10 {
		_, err = c.Login(context.Background(), domain.Credentials{Username: "admin", Password: "nope"})
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}
	// rejected logins do not trip the breaker
	assert.Equal(t, gobreaker.StateClosed, c.State())
}

func TestFetchDashboardData(t *testing.T) {
	c, err := New(fakeBackend(t).URL)
	require.NoError(t, err)

	snap, err := c.FetchDashboardData(context.Background(), "remote-token")
	require.NoError(t, err)
	assert.Equal(t, 90, snap.Usage.Today)

	_, err = c.FetchDashboardData(context.Background(), "stale")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestCall_ForwardsCorrelationID(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(CorrelationHeader)
		writeJSON(w, http.StatusOK, domain.EmptySnapshot())
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	ctx := correlation.WithID(context.Background(), "abcd1234")
	_, err = c.FetchDashboardData(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, "abcd1234", got)
}

func TestCall_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "storage down", "type": "external"})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.FetchDashboardData(context.Background(), "t")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "storage down", statusErr.Message)
}

func TestCircuitBreaker_OpensAndFailsFast(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithBreakerSettings(gobreaker.Settings{
		Timeout: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
	}))
	require.NoError(t, err)

	for range 2 {
		_, err := c.FetchDashboardData(context.Background(), "t")
		require.Error(t, err)
	}
	require.Equal(t, gobreaker.StateOpen, c.State())

	_, err = c.FetchDashboardData(context.Background(), "t")
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Contains(t, err.Error(), "provider unavailable")
	assert.Equal(t, int32(2), hits.Load())
}

func TestCall_NoRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Login(context.Background(), domain.Credentials{Username: "a", Password: "b"})
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}
