package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nusa-erp/erp-api/internal/auth"
	"github.com/nusa-erp/erp-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func ok() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestLogging_RequestID(t *testing.T) {
	handler := Logging(zap.NewNop())(ok())

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-ID", "req-abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "req-abc", rec.Header().Get("X-Request-ID"))
	})

	t.Run("logged with request fields", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", nil)
		req.Header.Set("X-Request-ID", "req-xyz")
		Logging(zap.New(core))(ok()).ServeHTTP(httptest.NewRecorder(), req)

		require.Equal(t, 1, logs.Len())
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, "req-xyz", fields["request_id"])
		assert.Equal(t, http.MethodPost, fields["method"])
		assert.Equal(t, "/api/v1/documents", fields["path"])
		assert.EqualValues(t, http.StatusOK, fields["status_code"])
	})
}

func TestRecovery(t *testing.T) {
	handler := Recovery(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
}

func TestSecurityHeaders(t *testing.T) {
	cfg := &config.SecurityConfig{
		EnableHSTS:            true,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		FrameOptions:          "DENY",
		ContentTypeNosniff:    true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
	handler := SecurityHeaders(cfg)(ok())

	t.Run("plain http has no HSTS", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
		assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	})

	t.Run("tls", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.TLS = &tls.ConnectionState{}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "max-age=31536000; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))
	})

	t.Run("forwarded https", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-Proto", "https")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
	})
}

func TestRateLimiter(t *testing.T) {
	cfg := &config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     2,
		RequestsPerMinuteAuth: 3,
		WhitelistIPs:          []string{"10.0.0.9"},
		WhitelistPaths:        []string{"/health", "/swagger/*"},
	}

	send := func(h http.Handler, path, ip string, user *auth.UserContext) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = ip + ":5000"
		if user != nil {
			req = req.WithContext(auth.WithUserContext(req.Context(), user))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("by ip", func(t *testing.T) {
		h := NewRateLimiter(cfg, zap.NewNop()).LimitByIP(ok())
		assert.Equal(t, http.StatusOK, send(h, "/api/v1/documents", "192.0.2.1", nil))
		assert.Equal(t, http.StatusOK, send(h, "/api/v1/documents", "192.0.2.1", nil))
		assert.Equal(t, http.StatusTooManyRequests, send(h, "/api/v1/documents", "192.0.2.1", nil))
		assert.Equal(t, http.StatusOK, send(h, "/api/v1/documents", "192.0.2.2", nil))
	})

	t.Run("whitelists", func(t *testing.T) {
		h := NewRateLimiter(cfg, zap.NewNop()).LimitByIP(ok())
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, send(h, "/health", "192.0.2.3", nil))
			assert.Equal(t, http.StatusOK, send(h, "/swagger/index.html", "192.0.2.3", nil))
			assert.Equal(t, http.StatusOK, send(h, "/api/v1/documents", "10.0.0.9", nil))
		}
	})

	t.Run("by actor", func(t *testing.T) {
		h := NewRateLimiter(cfg, zap.NewNop()).LimitByActor(ok())
		user := &auth.UserContext{UserID: "u-1"}
		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusOK, send(h, "/api/v1/documents", "192.0.2.4", user))
		}
		assert.Equal(t, http.StatusTooManyRequests, send(h, "/api/v1/documents", "192.0.2.5", user))
		assert.Equal(t, http.StatusOK, send(h, "/api/v1/documents", "192.0.2.4", &auth.UserContext{UserID: "u-2"}))
	})

	t.Run("disabled", func(t *testing.T) {
		off := *cfg
		off.Enabled = false
		h := NewRateLimiter(&off, zap.NewNop()).LimitByIP(ok())
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, send(h, "/api/v1/documents", "192.0.2.6", nil))
		}
	})
}
