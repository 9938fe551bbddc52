// Package mockapi is an in-process DataProvider that imitates the dashboard
// backend: fixed accounts, artificial latency and randomized figures.
package mockapi

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/chargewatch/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultLoginDelay = 360 * time.Millisecond
	DefaultFetchDelay = 480 * time.Millisecond

	tokenPrefix = "mock-token-"
)

type Account struct {
	Username    string
	Password    string
	DisplayName string
	Role        string
}

// DefaultAccounts are the built-in operator logins.
var DefaultAccounts = []Account{
	{Username: "admin", Password: "123456", DisplayName: "System Administrator", Role: "administrator"},
	{Username: "operator", Password: "operator123", DisplayName: "Duty Operator", Role: "operator"},
}

type account struct {
	hash []byte
	user domain.User
}

type Provider struct {
	clock      clockwork.Clock
	loginDelay time.Duration
	fetchDelay time.Duration
	accounts   map[string]account

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*options)

type options struct {
	clock      clockwork.Clock
	loginDelay time.Duration
	fetchDelay time.Duration
	accounts   []Account
	hashCost   int
	rng        *rand.Rand
}

func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithDelays overrides the artificial latency; zero disables it.
func WithDelays(login, fetch time.Duration) Option {
	return func(o *options) {
		o.loginDelay = login
		o.fetchDelay = fetch
	}
}

func WithAccounts(accounts ...Account) Option {
	return func(o *options) { o.accounts = accounts }
}

func WithHashCost(cost int) Option {
	return func(o *options) { o.hashCost = cost }
}

// WithRand makes tokens and figures reproducible.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

// New hashes the account passwords with bcrypt; plain passwords are not kept.
func New(opts ...Option) (*Provider, error) {
	o := options{
		clock:      clockwork.NewRealClock(),
		loginDelay: DefaultLoginDelay,
		fetchDelay: DefaultFetchDelay,
		accounts:   DefaultAccounts,
		hashCost:   bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	accounts := make(map[string]account, len(o.accounts))
	for _, a := range o.accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), o.hashCost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %q: %w", a.Username, err)
		}
		accounts[a.Username] = account{
			hash: hash,
			user: domain.User{Username: a.Username, DisplayName: a.DisplayName, Role: a.Role},
		}
	}

	return &Provider{
		clock:      o.clock,
		loginDelay: o.loginDelay,
		fetchDelay: o.fetchDelay,
		accounts:   accounts,
		rng:        o.rng,
	}, nil
}

func (p *Provider) Login(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	if err := p.wait(ctx, p.loginDelay); err != nil {
		return domain.Session{}, err
	}

	acc, ok := p.accounts[creds.Username]
	if !ok {
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(creds.Password)); err != nil {
		return domain.Session{}, domain.ErrInvalidCredentials
	}

	p.mu.Lock()
	token := tokenPrefix + strconv.FormatUint(p.rng.Uint64(), 36)
	p.mu.Unlock()

	return domain.Session{Token: token, User: acc.user}, nil
}

// FetchDashboardData ignores the token: every session sees the same network.
func (p *Provider) FetchDashboardData(ctx context.Context, _ string) (domain.Snapshot, error) {
	if err := p.wait(ctx, p.fetchDelay); err != nil {
		return domain.Snapshot{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return Generate(p.clock.Now(), p.rng), nil
}

// ValidToken reports whether token has the shape this provider issues.
func ValidToken(token string) bool {
	return len(token) > len(tokenPrefix) && token[:len(tokenPrefix)] == tokenPrefix
}

func (p *Provider) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-p.clock.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
