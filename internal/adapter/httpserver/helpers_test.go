package httpserver

import (
	"html/template"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/chargewatch/internal/adapter/kvstore"
	"github.com/pscheid92/chargewatch/internal/adapter/mockapi"
	"github.com/pscheid92/chargewatch/internal/app"
	"github.com/pscheid92/chargewatch/internal/chart"
	"github.com/pscheid92/chargewatch/internal/platform/config"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSessionSecret = "test-secret-key-32-bytes-long!!!"
	csrfCookieName    = "csrf_token"
)

type testEnv struct {
	srv      *Server
	provider *mockapi.Provider
	store    *kvstore.MemoryStore
	consoles *app.Consoles
	clock    *clockwork.FakeClock
}

func newTestProvider(t *testing.T) *mockapi.Provider {
	t.Helper()
	p, err := mockapi.New(
		mockapi.WithDelays(0, 0),
		mockapi.WithHashCost(bcrypt.MinCost),
		mockapi.WithRand(rand.New(rand.NewPCG(7, 11))),
	)
	require.NoError(t, err)
	return p
}

func newTestServer(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	tmpl := template.Must(template.New("login.html").Parse(`Login {{.Error}}`))
	template.Must(tmpl.New("dashboard.html").Parse(`Dashboard {{with .User}}{{.DisplayName}}{{end}} {{.UsagePercent}}%`))

	store := sessions.NewCookieStore([]byte(testSessionSecret))
	store.Options = &sessions.Options{
		Path:   "/",
		MaxAge: 3600,
	}

	env := &testEnv{
		provider: newTestProvider(t),
		store:    kvstore.NewMemoryStore(),
		clock:    clockwork.NewFakeClock(),
	}
	env.consoles = app.NewConsoles(func(clientID string) *app.Console {
		return app.NewConsole(
			env.provider,
			kvstore.Scoped(env.store, kvstore.ClientPrefix(clientID)),
			app.WithRenderer(chart.NewMemoryRenderer()),
		)
	}, time.Hour, env.clock, nil)
	t.Cleanup(env.consoles.Stop)

	env.srv = &Server{
		echo: echo.New(),
		config: &config.Config{
			SessionMaxAge:  time.Hour,
			LoginRateLimit: 100,
			LoginRateBurst: 100,
		},
		consoles:     env.consoles,
		sessionStore: store,
		templates:    tmpl,
		startTime:    time.Now(),
	}
	for _, opt := range opts {
		opt(env.srv)
	}

	env.srv.registerRoutes()
	return env
}

// browser keeps cookies between requests like a real client would.
type browser struct {
	t       *testing.T
	srv     *Server
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, srv *Server) *browser {
	return &browser{t: t, srv: srv, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.srv.echo.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	b.t.Helper()
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// csrfToken visits the login page once to obtain the CSRF cookie.
func (b *browser) csrfToken() string {
	b.t.Helper()
	if c, ok := b.cookies[csrfCookieName]; ok {
		return c.Value
	}
	b.get("/auth/login")
	c, ok := b.cookies[csrfCookieName]
	require.True(b.t, ok, "CSRF cookie should be set")
	return c.Value
}

func (b *browser) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf_token", b.csrfToken())
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return b.do(req)
}

func (b *browser) login(username, password string) *httptest.ResponseRecorder {
	b.t.Helper()
	return b.postForm("/auth/login", url.Values{"username": {username}, "password": {password}})
}

func (b *browser) clientID() string {
	b.t.Helper()
	c, ok := b.cookies[sessionName]
	require.True(b.t, ok, "client cookie should be set")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	session, err := b.srv.sessionStore.Get(req, sessionName)
	require.NoError(b.t, err)
	id, _ := session.Values[sessionKeyClientID].(string)
	return id
}
