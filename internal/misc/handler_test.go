package misc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/2beens/healthzones/internal/auth"
	"github.com/2beens/healthzones/internal/middleware"
	"github.com/2beens/healthzones/internal/telemetry/metrics"

	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testRequestRateLimiter struct {
	// key to remaining allowed requests
	Limits map[string]int
}

func (l *testRequestRateLimiter) Allow(_ context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	res := &redis_rate.Result{Limit: limit, RetryAfter: 30 * time.Second}
	if l.Limits[key] <= 0 {
		return res, nil
	}
	res.Allowed = l.Limits[key]
	l.Limits[key]--
	return res, nil
}

// testSessions keeps sessions in memory and feeds the auth middleware's checker.
type testSessions struct {
	admin   auth.Credentials
	token   string
	checker *auth.LoginTestChecker
	err     error
}

func (s *testSessions) Login(_ context.Context, creds auth.Credentials, _ time.Time) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if creds.Username != s.admin.Username {
		return "", auth.ErrWrongUsername
	}
	if creds.Password != s.admin.Password {
		return "", auth.ErrWrongPassword
	}
	s.checker.LoggedSessions[s.token] = true
	return s.token, nil
}

func (s *testSessions) Logout(_ context.Context, token string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if !s.checker.LoggedSessions[token] {
		return false, nil
	}
	delete(s.checker.LoggedSessions, token)
	return true, nil
}

func setupRouterForTests(t *testing.T, sessions *testSessions, limiter *testRequestRateLimiter) *mux.Router {
	t.Helper()

	r := mux.NewRouter()
	metricsManager := metrics.NewTestManager()
	authMiddleware := middleware.NewAuthMiddlewareHandler("cron-secret", sessions.checker)

	// same chain as Server.routerSetup()
	r.Use(middleware.PanicRecovery(metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	handler := NewHandler("v1.2.3", sessions, time.Hour, false)
	handler.SetupRoutes(r, limiter, 15, metricsManager, nil)

	// a protected route to check the session against
	r.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET").Name("protected")

	return r
}

func newSessions() *testSessions {
	return &testSessions{
		admin:   auth.Credentials{Username: "admin", Password: "testpass"},
		token:   "test_token",
		checker: auth.NewLoginTestChecker(),
	}
}

func TestNewMiscHandler(t *testing.T) {
	mainRouter := mux.NewRouter()
	handler := NewHandler("dummy", newSessions(), time.Hour, false)
	handler.SetupRoutes(mainRouter, nil, 15, metrics.NewTestManager(), nil)

	for caseName, route := range map[string]struct {
		name   string
		path   string
		method string
	}{
		"route-get":     {name: "root", path: "/", method: "GET"},
		"route-post":    {name: "root", path: "/", method: "POST"},
		"route-options": {name: "root", path: "/", method: "OPTIONS"},
		"version":       {name: "version", path: "/version", method: "GET"},
		"login":         {name: "login", path: "/a/login", method: "POST"},
		"login-options": {name: "login", path: "/a/login", method: "OPTIONS"},
		"logout":        {name: "logout", path: "/a/logout", method: "GET"},
		"logout-otions": {name: "logout", path: "/a/logout", method: "OPTIONS"},
	} {
		t.Run(caseName, func(t *testing.T) {
			req, err := http.NewRequest(route.method, route.path, nil)
			require.NoError(t, err)

			routeMatch := &mux.RouteMatch{}
			muxRoute := mainRouter.Get(route.name)
			require.NotNil(t, muxRoute)
			assert.True(t, muxRoute.Match(req, routeMatch), caseName)
		})
	}
}

func TestRootAndVersion(t *testing.T) {
	r := setupRouterForTests(t, newSessions(), &testRequestRateLimiter{Limits: map[string]int{}})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "I'm OK, thanks ;)", rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/version", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "v1.2.3", rr.Body.String())
}

func TestLogin_Form(t *testing.T) {
	sessions := newSessions()
	limiter := &testRequestRateLimiter{Limits: map[string]int{"login": 1}}
	r := setupRouterForTests(t, sessions, limiter)

	form := url.Values{}
	form.Add("username", "admin")
	form.Add("password", "testpass")
	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/a/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Origin", "test")
		return req
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, newReq())
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"token":"test_token"}`, rr.Body.String())

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	assert.Equal(t, "test_token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	// next time the rate limiter kicks in
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, newReq())
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "retry after"))
}

func TestLogin_JSONThenSessionCookie(t *testing.T) {
	sessions := newSessions()
	limiter := &testRequestRateLimiter{Limits: map[string]int{"login": 5}}
	r := setupRouterForTests(t, sessions, limiter)

	// without a session the protected route is closed
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/a/login", strings.NewReader(`{"username":"admin","password":"testpass"}`))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "test_token", resp.Token)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(rr.Result().Cookies()[0])
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(middleware.AuthTokenHeader, "test_token")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLogin_Failures(t *testing.T) {
	testCases := []struct {
		name        string
		body        string
		contentType string
		serviceErr  error
		wantStatus  int
	}{
		{name: "bad json", body: `{"username":`, contentType: "application/json", wantStatus: http.StatusBadRequest},
		{name: "no username", body: `{"password":"testpass"}`, contentType: "application/json", wantStatus: http.StatusBadRequest},
		{name: "no password", body: `username=admin`, contentType: "application/x-www-form-urlencoded", wantStatus: http.StatusBadRequest},
		{name: "wrong username", body: `{"username":"root","password":"testpass"}`, contentType: "application/json", wantStatus: http.StatusUnauthorized},
		{name: "wrong password", body: `{"username":"admin","password":"nope"}`, contentType: "application/json", wantStatus: http.StatusUnauthorized},
		{
			name:        "redis down",
			body:        `{"username":"admin","password":"testpass"}`,
			contentType: "application/json",
			serviceErr:  errors.New("store session: redis down"),
			wantStatus:  http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sessions := newSessions()
			sessions.err = tc.serviceErr
			r := setupRouterForTests(t, sessions, &testRequestRateLimiter{Limits: map[string]int{"login": 1}})

			req := httptest.NewRequest(http.MethodPost, "/a/login", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", tc.contentType)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Empty(t, rr.Result().Cookies())
		})
	}
}

func TestLogout(t *testing.T) {
	sessions := newSessions()
	sessions.checker.LoggedSessions["test_token"] = true
	r := setupRouterForTests(t, sessions, &testRequestRateLimiter{Limits: map[string]int{"login": 5}})

	// no token
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/a/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/a/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "test_token"})
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "logged-out", rr.Body.String())
	assert.False(t, sessions.checker.LoggedSessions["test_token"])

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)

	// already logged out
	req = httptest.NewRequest(http.MethodGet, "/a/logout", nil)
	req.Header.Set(middleware.AuthTokenHeader, "test_token")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
