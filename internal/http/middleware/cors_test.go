package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nusa-erp/erp-api/internal/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func corsConfig(origins ...string) *config.CORSConfig {
	return &config.CORSConfig{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"Location", "X-Request-ID", "X-Export-Path"},
		AllowCredentials: true,
		MaxAge:           600,
	}
}

func preflight(h http.Handler, origin, method string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/documents", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", method)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		origins     []string
		environment string
		origin      string
		allowed     bool
	}{
		{"explicit origin", []string{"https://erp.nusa.co.id"}, "production", "https://erp.nusa.co.id", true},
		{"origin not listed", []string{"https://erp.nusa.co.id"}, "production", "https://evil.example", false},
		{"wildcard", []string{"*"}, "development", "http://localhost:5173", true},
		{"development without origins", nil, "development", "http://localhost:3000", true},
		{"local without origins", nil, "local", "http://localhost:3000", true},
		{"production without origins", nil, "production", "http://localhost:3000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := CORS(corsConfig(tt.origins...), tt.environment, zap.NewNop())(ok())
			w := preflight(h, tt.origin, http.MethodGet)
			if tt.allowed {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS(corsConfig("https://erp.nusa.co.id"), "production", zap.NewNop())(ok())

	w := preflight(h, "https://erp.nusa.co.id", http.MethodPut)

	assert.Equal(t, "https://erp.nusa.co.id", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_ActualRequestExposesHeaders(t *testing.T) {
	called := false
	h := CORS(corsConfig("https://erp.nusa.co.id"), "production", zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/export", nil)
	req.Header.Set("Origin", "https://erp.nusa.co.id")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.True(t, called)
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Export-Path")
}
