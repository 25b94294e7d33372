package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-house/internal/app"
	"auction-house/internal/config"
	"auction-house/internal/core"
	"auction-house/internal/flash"
	"auction-house/internal/session"
	"auction-house/web/templates/layouts"
)

const testBase = "/auction"

type fakeUser struct {
	id       int
	name     string
	password string
	role     string
}

// fakeService is an in-memory ApplicationService.
type fakeService struct {
	mu      sync.Mutex
	users   map[string]fakeUser
	lots    []core.Lot
	display core.Display
}

func newFakeService() *fakeService {
	return &fakeService{
		users: map[string]fakeUser{
			"ada":   {id: 1, name: "Ada", password: "hammer-time", role: core.RoleAuctioneer},
			"root":  {id: 2, name: "Admin", password: "hammer-time", role: core.RoleAdmin},
			"clerk": {id: 3, name: "Clerk", password: "hammer-time", role: core.RoleClerk},
			"mal":   {id: 4, name: "</script><b>pwned</b>", password: "hammer-time", role: core.RoleAuctioneer},
		},
		lots: []core.Lot{
			{ID: 1, Number: 7, Title: "Walnut bureau", EstimateLow: decimal.NewFromInt(200), EstimateHigh: decimal.NewFromInt(300)},
			{ID: 2, Number: 8, Title: "Pair of candlesticks"},
		},
	}
}

func (f *fakeService) AuthenticateUser(_ context.Context, username, password string) (*app.UserSession, error) {
	u, ok := f.users[username]
	if !ok || u.password != password {
		return nil, app.ErrInvalidCredentials
	}
	return &app.UserSession{UserID: u.id, Username: username, DisplayName: u.name, Role: u.role}, nil
}

func (f *fakeService) GetUser(_ context.Context, userID int) (*app.UserResult, error) {
	for username, u := range f.users {
		if u.id == userID {
			return &app.UserResult{UserID: u.id, Username: username, DisplayName: u.name, Role: u.role, IsActive: true}, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeService) CreateUser(context.Context, app.CreateUserRequest) (*app.UserResult, error) {
	return nil, errors.New("not supported")
}

func (f *fakeService) ListUsers(context.Context) (*app.UserListResult, error) {
	res := &app.UserListResult{}
	for username, u := range f.users {
		res.Users = append(res.Users, app.UserResult{UserID: u.id, Username: username, DisplayName: u.name, Role: u.role, IsActive: true})
	}
	sort.Slice(res.Users, func(i, j int) bool { return res.Users[i].UserID < res.Users[j].UserID })
	return res, nil
}

func (f *fakeService) ListLots(context.Context) (*app.LotListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &app.LotListResult{Lots: append([]core.Lot(nil), f.lots...)}, nil
}

func (f *fakeService) CreateLot(context.Context, app.CreateLotRequest) (*app.LotResult, error) {
	return nil, errors.New("not supported")
}

func (f *fakeService) GetDisplay(context.Context) (*app.DisplayResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.display
	return &app.DisplayResult{Display: &d}, nil
}

func (f *fakeService) SetBanner(_ context.Context, banner string) error {
	banner = strings.TrimSpace(banner)
	if len(banner) > core.MaxBannerLen {
		return &core.ValidationError{Msg: "banner is too long"}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.display.Banner = banner
	return nil
}

func (f *fakeService) ShowLot(_ context.Context, number int) (*app.LotResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.lots {
		if f.lots[i].Number == number {
			lot := f.lots[i]
			f.display.CurrentLot = &lot
			return &app.LotResult{Lot: &lot}, nil
		}
	}
	return nil, fmt.Errorf("lot %d: %w", number, core.ErrNotFound)
}

type testEnv struct {
	srv      *httptest.Server
	client   *http.Client
	svc      *fakeService
	sessions *session.Registry
}

func testConfig() Config {
	return Config{
		BasePath:           testBase,
		AppName:            "Auction House",
		JWTSecret:          "test-secret",
		IdleWindow:         2 * time.Hour,
		TokenTTL:           time.Hour,
		LoginRatePerMinute: 100,
		Nav:                config.DefaultNav(),
		Flash: flash.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"), flash.CookieOptions{
			Path: testBase,
		}),
	}
}

func newTestEnv(t *testing.T, mutate ...func(*Config)) *testEnv {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewRegistry(nil, 0, nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	svc := newFakeService()
	srv := httptest.NewServer(NewHandler(ctx, svc, cfg))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{
		srv:      srv,
		client:   &http.Client{Jar: jar},
		svc:      svc,
		sessions: cfg.Sessions,
	}
}

func (e *testEnv) url(path string) string {
	return e.srv.URL + testBase + path
}

// get returns the status and body after following redirects.
func (e *testEnv) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := e.client.Get(e.url(path))
	require.NoError(t, err)
	return readResponse(t, resp)
}

// post submits form with the browser's CSRF token, fetching one first if
// the jar has none.
func (e *testEnv) post(t *testing.T, path string, form url.Values) (int, string) {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set(csrfFieldName, e.csrfToken(t))
	resp, err := e.client.PostForm(e.url(path), form)
	require.NoError(t, err)
	return readResponse(t, resp)
}

func (e *testEnv) csrfToken(t *testing.T) string {
	t.Helper()
	if c := e.cookie(t, csrfCookieName); c != nil {
		return c.Value
	}
	e.get(t, "/login")
	c := e.cookie(t, csrfCookieName)
	require.NotNil(t, c, "csrf cookie issued on first visit")
	return c.Value
}

func (e *testEnv) cookie(t *testing.T, name string) *http.Cookie {
	t.Helper()
	u, err := url.Parse(e.url("/"))
	require.NoError(t, err)
	for _, c := range e.client.Jar.Cookies(u) {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (e *testEnv) login(t *testing.T, username string) (int, string) {
	t.Helper()
	return e.post(t, "/login", url.Values{"username": {username}, "password": {"hammer-time"}})
}

func readResponse(t *testing.T, resp *http.Response) (int, string) {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func noRedirect(jar http.CookieJar) *http.Client {
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestLogin_FlashShownOnce(t *testing.T) {
	e := newTestEnv(t)

	status, body := e.login(t, "ada")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<h1>Lots</h1>", "auctioneers land on the lot list")
	assert.Contains(t, body, `showToast("Welcome back, Ada", "success")`)

	status, body = e.get(t, "/auctioneer")
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body, "showToast(", "reload shows no toast")
}

func TestShowLot_FlashAndReload(t *testing.T) {
	e := newTestEnv(t)
	e.login(t, "ada")
	e.get(t, "/auctioneer")

	status, body := e.post(t, "/auctioneer/lots/7/show", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `showToast("Lot 7 is now on display", "success")`)
	assert.Contains(t, body, "<strong>On display</strong>")

	_, body = e.get(t, "/auctioneer")
	assert.NotContains(t, body, "showToast(")

	_, body = e.get(t, "/display")
	assert.Contains(t, body, "Walnut bureau")
	assert.Contains(t, body, "200 - 300")
}

func TestShowLot_UnknownLot(t *testing.T) {
	e := newTestEnv(t)
	e.login(t, "ada")

	status, body := e.post(t, "/auctioneer/lots/99/show", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `showToast("Lot 99 does not exist", "error")`)
}

func TestFlash_TextIsEscaped(t *testing.T) {
	e := newTestEnv(t)

	_, body := e.login(t, "mal")
	assert.NotContains(t, body, "</script><b>pwned")
	assert.Contains(t, body, `showToast("Welcome back, \u003c/script\u003e\u003cb\u003epwned\u003c/b\u003e", "success")`)
}

func TestIdleScript_OnlyWhenSignedIn(t *testing.T) {
	e := newTestEnv(t)

	_, body := e.get(t, "/")
	assert.NotContains(t, body, "logoutURL")

	e.login(t, "ada")
	_, body = e.get(t, "/")
	assert.Contains(t, body, "7200000")
	assert.Contains(t, body, `"/auction/logout?reason=idle"`)
}

func TestLogout_IdleRevokesSession(t *testing.T) {
	e := newTestEnv(t)
	e.login(t, "root")
	token := e.cookie(t, authCookieName)
	require.NotNil(t, token)
	require.Equal(t, 1, e.sessions.Active())

	status, body := e.get(t, "/logout?reason=idle")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<h2>Sign in</h2>")
	assert.Contains(t, body, `showToast("You were signed out after a period of inactivity.", "warning")`)
	assert.Nil(t, e.cookie(t, authCookieName), "auth cookie cleared")
	assert.Equal(t, 0, e.sessions.Active())

	// Replaying the old token must not get back in.
	req, err := http.NewRequest(http.MethodGet, e.url("/admin"), nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: authCookieName, Value: token.Value})
	resp, err := noRedirect(nil).Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, testBase+"/login", resp.Header.Get("Location"))
}

func TestLogout_PlainSignOut(t *testing.T) {
	e := newTestEnv(t)
	e.login(t, "ada")

	status, body := e.post(t, "/logout", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `showToast("You have been signed out.", "info")`)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	e := newTestEnv(t)

	status, body := e.post(t, "/login", url.Values{"username": {"ada"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "Invalid username or password.")
	assert.Contains(t, body, `value="ada"`)
	assert.Nil(t, e.cookie(t, authCookieName))
}

func TestLogin_RedirectsWhenSignedIn(t *testing.T) {
	e := newTestEnv(t)
	e.login(t, "root")

	resp, err := noRedirect(e.client.Jar).Get(e.url("/login"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, testBase+"/admin", resp.Header.Get("Location"))
}

func TestCSRF_MissingTokenRejected(t *testing.T) {
	e := newTestEnv(t)
	e.get(t, "/login")

	resp, err := e.client.PostForm(e.url("/login"), url.Values{"username": {"ada"}, "password": {"hammer-time"}})
	require.NoError(t, err)
	status, body := readResponse(t, resp)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body, "Form expired")
	assert.Nil(t, e.cookie(t, authCookieName))
}

func TestCSRF_HeaderAccepted(t *testing.T) {
	e := newTestEnv(t)
	token := e.csrfToken(t)

	req, err := http.NewRequest(http.MethodPost, e.url("/login"),
		strings.NewReader(url.Values{"username": {"ada"}, "password": {"hammer-time"}}.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(csrfHeaderName, token)
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	status, _ := readResponse(t, resp)
	assert.Equal(t, http.StatusOK, status)
	assert.NotNil(t, e.cookie(t, authCookieName))
}

func TestLogin_RateLimited(t *testing.T) {
	e := newTestEnv(t, func(c *Config) { c.LoginRatePerMinute = 2 })
	bad := url.Values{"username": {"ada"}, "password": {"wrong"}}

	status, _ := e.post(t, "/login", bad)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = e.post(t, "/login", bad)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, body := e.post(t, "/login", bad)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Contains(t, body, "Too many sign-in attempts")
}

func TestRequireRole(t *testing.T) {
	e := newTestEnv(t)
	e.login(t, "clerk")

	status, body := e.get(t, "/admin")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body, "Access denied")

	status, _ = e.get(t, "/auctioneer")
	assert.Equal(t, http.StatusForbidden, status)
}

func TestRequireAuth_RedirectsAnonymous(t *testing.T) {
	e := newTestEnv(t)

	resp, err := noRedirect(nil).Get(e.url("/admin"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, testBase+"/login", resp.Header.Get("Location"))
}

func TestBanner_ValidationFlash(t *testing.T) {
	e := newTestEnv(t)
	e.login(t, "root")

	_, body := e.post(t, "/admin/banner", url.Values{"banner": {strings.Repeat("x", core.MaxBannerLen+1)}})
	assert.Contains(t, body, `showToast("banner is too long", "error")`)

	_, body = e.post(t, "/admin/banner", url.Values{"banner": {"Viewing from 9am"}})
	assert.Contains(t, body, `showToast("Banner updated", "success")`)
	assert.Contains(t, body, `value="Viewing from 9am"`)
}

func TestNotFound_RendersErrorLayout(t *testing.T) {
	e := newTestEnv(t)

	status, body := e.get(t, "/no-such-page")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, `<p class="error-status">404</p>`)
	assert.Contains(t, body, "Page not found")
}

func TestNotFound_APIReturnsJSON(t *testing.T) {
	e := newTestEnv(t)

	resp, err := e.client.Get(e.url("/api/nope"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var got errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "NOT_FOUND", got.Code)
	assert.NotEmpty(t, got.RequestID)
}

func TestRootRedirectsToBasePath(t *testing.T) {
	e := newTestEnv(t)

	resp, err := noRedirect(nil).Get(e.srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, testBase+"/", resp.Header.Get("Location"))
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	e.login(t, "ada")

	resp, err := e.client.Get(e.url("/api/health"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got struct {
		Status         string `json:"status"`
		ActiveSessions int    `json:"active_sessions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, 1, got.ActiveSessions)
}

func TestStaticAssets(t *testing.T) {
	e := newTestEnv(t)

	status, body := e.get(t, "/static/js/toast.js")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "showToast")
}

func TestWrite_RenderFailureKeepsFlash(t *testing.T) {
	h := &Handler{cfg: testConfig()}
	d := layouts.LayoutData{
		AppName: "Auction House",
		Flash:   &flash.Message{Text: "Bid placed", Category: flash.Success},
	}
	broken := templ.ComponentFunc(func(context.Context, io.Writer) error {
		return errors.New("boom")
	})

	rec := httptest.NewRecorder()
	h.write(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, layouts.Public, d, broken)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Something went wrong")
	assert.Contains(t, body, `showToast("Bid placed", "success")`)
}

func TestRecoverer_KeepsConsumedFlash(t *testing.T) {
	cfg := testConfig()
	h := &Handler{cfg: cfg, flash: cfg.Flash}

	setRec := httptest.NewRecorder()
	require.NoError(t, cfg.Flash.Set(setRec, httptest.NewRequest(http.MethodPost, "/", nil), flash.NewSuccess("Bid placed")))

	req := httptest.NewRequest(http.MethodGet, testBase+"/", nil)
	for _, c := range setRec.Result().Cookies() {
		req.AddCookie(c)
	}
	panicking := h.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.layoutData(w, r, layouts.Public, "Home", "home")
		panic("template data missing")
	}))

	rec := httptest.NewRecorder()
	panicking.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `showToast("Bid placed", "success")`)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientIP(r))
	r.RemoteAddr = "[::1]:5555"
	assert.Equal(t, "::1", clientIP(r))
	r.RemoteAddr = "unix"
	assert.Equal(t, "unix", clientIP(r))
}
