// Package remoteapi is a DataProvider that talks to a dashboard backend over
// HTTP. Calls go through a circuit breaker and are never retried.
package remoteapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pscheid92/chargewatch/internal/adapter/metrics"
	"github.com/pscheid92/chargewatch/internal/domain"
	"github.com/pscheid92/chargewatch/internal/platform/correlation"
	apperrors "github.com/pscheid92/chargewatch/internal/platform/errors"
	"github.com/sony/gobreaker"
)

const (
	LoginPath     = "/api/provider/login"
	DashboardPath = "/api/provider/dashboard"

	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CorrelationHeader      = "X-Correlation-ID"

	breakerName     = "provider"
	maxErrorBodyLen = 4 << 10
)

// StatusError is returned for unexpected HTTP responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker
}

type Option func(*options)

type options struct {
	httpClient *http.Client
	timeout    time.Duration
	metrics    *metrics.StorageMetrics
	settings   *gobreaker.Settings
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithMetrics reports breaker transitions to m.
func WithMetrics(m *metrics.StorageMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithBreakerSettings replaces the breaker thresholds. Name, IsSuccessful and
// OnStateChange are always set by the client.
func WithBreakerSettings(s gobreaker.Settings) Option {
	return func(o *options) { o.settings = &s }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid provider URL %q", baseURL)
	}

	o := options{timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: o.timeout}
	}

	settings := gobreaker.Settings{
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	if o.settings != nil {
		settings = *o.settings
	}
	settings.Name = breakerName
	settings.IsSuccessful = func(err error) bool {
		// the backend answered; a rejected login says nothing about its health
		return err == nil ||
			errors.Is(err, domain.ErrInvalidCredentials) ||
			errors.Is(err, domain.ErrNotAuthenticated)
	}
	m := o.metrics
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		slog.Warn("Circuit breaker state changed", "component", name, "from", from.String(), "to", to.String())
		if m != nil {
			m.BreakerStateChanges.WithLabelValues(name, to.String()).Inc()
			m.BreakerState.WithLabelValues(name).Set(stateValue(to))
		}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    o.httpClient,
		cb:      gobreaker.NewCircuitBreaker(settings),
	}, nil
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return domain.Session{}, fmt.Errorf("encode credentials: %w", err)
	}

	var sess domain.Session
	err = c.call(ctx, http.MethodPost, LoginPath, "", body, &sess)
	if err != nil {
		return domain.Session{}, err
	}
	if !sess.Valid() {
		return domain.Session{}, errors.New("provider returned a session without token")
	}
	return sess, nil
}

func (c *Client) FetchDashboardData(ctx context.Context, token string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	if err := c.call(ctx, http.MethodGet, DashboardPath, token, nil, &snap); err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}

func (c *Client) State() gobreaker.State {
	return c.cb.State()
}

func (c *Client) call(ctx context.Context, method, path, token string, body []byte, out any) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.do(ctx, method, path, token, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("provider unavailable: %w", err)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path, token string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id, ok := correlation.ID(ctx); ok {
		req.Header.Set(CorrelationHeader, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
		return nil
	}

	var errResp apperrors.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
	_ = json.Unmarshal(raw, &errResp)

	if resp.StatusCode == http.StatusUnauthorized {
		if errResp.Code == CodeInvalidCredentials {
			return domain.ErrInvalidCredentials
		}
		return domain.ErrNotAuthenticated
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: errResp.Error}
}
