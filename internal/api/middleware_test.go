package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heimdex/heimdex-timeline/internal/logging"
	"github.com/heimdex/heimdex-timeline/internal/metrics"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestIsAllowedOrigin(t *testing.T) {
	allowed := []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost",
		"http://127.0.0.1:3000",
		"http://127.0.0.1",
		"https://acme.app.heimdex.co",
		"https://demo-org.app.heimdex.co",
		"https://acme.app.heimdex.local",
		"http://acme.app.heimdex.local",
		"http://devorg.app.heimdex.local:3000",
		"https://acme.app.heimdex.co:443",
		"https://a--b.app.heimdex.co",
		"https://a.app.heimdex.co",
	}
	for _, origin := range allowed {
		assert.True(t, isAllowedOrigin(origin), origin)
	}

	denied := []string{
		"https://evil.com",
		"https://app.heimdex.co",
		"https://app.heimdex.co.evil.com",
		"https://acme.app.heimdex.co.evil.com",
		"http://192.168.1.1:3000",
		"https://heimdex.co",
		"",
		"ftp://localhost:3000",
		"http://localhost:not-a-port",
		"http://localhost:3000/path",
		"https://-bad.app.heimdex.co",
		"https://bad-.app.heimdex.co",
		"https://acme.app.heimdex.co:3000/path",
	}
	for _, origin := range denied {
		assert.False(t, isAllowedOrigin(origin), origin)
	}
}

func TestIsLoopbackRemoteAddr(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"127.0.0.1:12345", true},
		{"[::1]:12345", true},
		{"::1", true},
		{"[::1]", true},
		{"127.0.0.1", true},
		{"8.8.8.8:12345", false},
		{"192.168.1.1:8080", false},
		{"not-an-ip:1234", false},
		{"", false},
		{"garbage", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, isLoopbackRemoteAddr(tc.addr), tc.addr)
	}
}

func TestCORSAllowlist(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantACAO   string
	}{
		{name: "allowed get", method: http.MethodGet, origin: "http://localhost:3000", wantStatus: http.StatusOK, wantACAO: "http://localhost:3000"},
		{name: "heimdex subdomain", method: http.MethodGet, origin: "https://acme.app.heimdex.local", wantStatus: http.StatusOK, wantACAO: "https://acme.app.heimdex.local"},
		{name: "denied get still served", method: http.MethodGet, origin: "https://evil.com", wantStatus: http.StatusOK},
		{name: "no origin", method: http.MethodGet, wantStatus: http.StatusOK},
		{name: "allowed preflight", method: http.MethodOptions, origin: "http://localhost:3000", wantStatus: http.StatusNoContent, wantACAO: "http://localhost:3000"},
		{name: "denied preflight", method: http.MethodOptions, origin: "https://evil.com", wantStatus: http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			handler := CORSAllowlist()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tc.method, "/projects", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Equal(t, tc.wantACAO, rr.Header().Get("Access-Control-Allow-Origin"))
			if tc.method == http.MethodOptions && tc.origin != "" {
				assert.False(t, called, "preflight must not reach the handler")
			}
		})
	}
}

func TestCORSAllowlist_Headers(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/projects/p/tracks/v1/items/a/media", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", "range,authorization")
	rr := httptest.NewRecorder()
	CORSAllowlist()(okHandler()).ServeHTTP(rr, req)

	split := func(v string) []string {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	allowHeaders := split(rr.Header().Get("Access-Control-Allow-Headers"))
	for _, h := range []string{"Range", "Content-Type", "Authorization", "X-Heimdex-Request-Id", "X-Heimdex-Device-Id"} {
		assert.Contains(t, allowHeaders, h)
	}
	exposeHeaders := split(rr.Header().Get("Access-Control-Expose-Headers"))
	for _, h := range []string{"Content-Range", "Accept-Ranges", "Content-Length", "Content-Type"} {
		assert.Contains(t, exposeHeaders, h)
	}
	allowMethods := split(rr.Header().Get("Access-Control-Allow-Methods"))
	for _, m := range []string{"GET", "HEAD", "POST", "PUT", "DELETE", "OPTIONS"} {
		assert.Contains(t, allowMethods, m)
	}
}

func TestCORSAllowlist_VaryIsAdditive(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	rr.Header().Set("Vary", "Accept-Encoding")

	CORSAllowlist()(okHandler()).ServeHTTP(rr, req)

	vary := rr.Header().Values("Vary")
	assert.Contains(t, vary, "Accept-Encoding")
	assert.Contains(t, vary, "Origin")
}

func TestLoopbackGuard(t *testing.T) {
	for addr, want := range map[string]int{
		"8.8.8.8:12345":   http.StatusForbidden,
		"127.0.0.1:12345": http.StatusOK,
		"[::1]:12345":     http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/media", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		LoopbackGuard()(okHandler()).ServeHTTP(rr, req)

		require.Equal(t, want, rr.Code, addr)
		if want == http.StatusForbidden {
			assert.Equal(t, "FORBIDDEN", decodeJSONBody(t, rr)["code"])
		}
	}
}

type stubConfigStore struct {
	token string
	err   error
}

func (s stubConfigStore) GetConfig(context.Context, string) (string, error) {
	return s.token, s.err
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		store      stubConfigStore
		header     string
		wantStatus int
	}{
		{name: "valid", store: stubConfigStore{token: "secret"}, header: "Bearer secret", wantStatus: http.StatusOK},
		{name: "missing header", store: stubConfigStore{token: "secret"}, wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", store: stubConfigStore{token: "secret"}, header: "Basic secret", wantStatus: http.StatusUnauthorized},
		{name: "wrong token", store: stubConfigStore{token: "secret"}, header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "no stored token", store: stubConfigStore{}, header: "Bearer secret", wantStatus: http.StatusInternalServerError},
		{name: "store error", store: stubConfigStore{err: errors.New("db closed")}, header: "Bearer secret", wantStatus: http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/projects", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			AuthMiddleware(tc.store, logging.NewNop())(okHandler()).ServeHTTP(rr, req)
			assert.Equal(t, tc.wantStatus, rr.Code)
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(RequestIDKey).(string)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, seen, 8)
	assert.Equal(t, seen, rr.Header().Get("X-Request-ID"))
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(logging.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeJSONBody(t, rr)["code"])
}

func TestLoggingMiddleware_RecordsMetrics(t *testing.T) {
	m := metrics.New()
	handler := LoggingMiddleware(logging.NewNop(), m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)

	out := httptest.NewRecorder()
	m.Handler().ServeHTTP(out, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, out.Body.String(), `timeline_http_requests_total{method="POST",status="418"} 1`)
}
