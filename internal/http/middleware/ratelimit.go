package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/nusa-erp/erp-api/internal/auth"
	"github.com/nusa-erp/erp-api/internal/config"
	"go.uber.org/zap"
)

// RateLimiter holds the per-IP and per-actor limiters
type RateLimiter struct {
	cfg            *config.RateLimitConfig
	logger         *zap.Logger
	ipLimiter      func(http.Handler) http.Handler
	actorLimiter   func(http.Handler) http.Handler
	whitelistIPs   map[string]bool
	whitelistPaths []string
}

// NewRateLimiter creates a new rate limiter with the given configuration
func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		cfg:          cfg,
		logger:       logger,
		whitelistIPs: make(map[string]bool, len(cfg.WhitelistIPs)),
	}

	for _, ip := range cfg.WhitelistIPs {
		rl.whitelistIPs[ip] = true
	}
	rl.whitelistPaths = append(rl.whitelistPaths, cfg.WhitelistPaths...)

	rl.ipLimiter = httprate.Limit(
		cfg.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return "ip:" + clientIP(r), nil
		}),
		httprate.WithLimitHandler(rl.rateLimitExceededHandler),
	)

	rl.actorLimiter = httprate.Limit(
		cfg.RequestsPerMinuteAuth,
		time.Minute,
		httprate.WithKeyFuncs(keyByActorOrIP),
		httprate.WithLimitHandler(rl.rateLimitExceededHandler),
	)

	logger.Info("rate limiter initialized",
		zap.Bool("enabled", cfg.Enabled),
		zap.Int("requests_per_minute", cfg.RequestsPerMinute),
		zap.Int("requests_per_minute_auth", cfg.RequestsPerMinuteAuth),
		zap.Strings("whitelist_ips", cfg.WhitelistIPs),
		zap.Strings("whitelist_paths", cfg.WhitelistPaths),
	)

	return rl
}

// LimitByIP limits every request by client IP. It runs before authentication.
func (rl *RateLimiter) LimitByIP(next http.Handler) http.Handler {
	return rl.wrap(rl.ipLimiter, next)
}

// LimitByActor limits authenticated requests per actor and must run after
// authentication. Requests without an actor fall back to the client IP.
func (rl *RateLimiter) LimitByActor(next http.Handler) http.Handler {
	return rl.wrap(rl.actorLimiter, next)
}

func (rl *RateLimiter) wrap(limiter func(http.Handler) http.Handler, next http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}

	limited := limiter(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.isPathWhitelisted(r.URL.Path) || rl.whitelistIPs[clientIP(r)] {
			next.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
}

func keyByActorOrIP(r *http.Request) (string, error) {
	if userCtx, ok := auth.FromContext(r.Context()); ok {
		return "actor:" + userCtx.UserID, nil
	}
	return "ip:" + clientIP(r), nil
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then RemoteAddr
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// isPathWhitelisted matches exact paths and prefixes written as /prefix/*
func (rl *RateLimiter) isPathWhitelisted(path string) bool {
	for _, wp := range rl.whitelistPaths {
		if wp == path {
			return true
		}
		if prefix, ok := strings.CutSuffix(wp, "/*"); ok && strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func (rl *RateLimiter) rateLimitExceededHandler(w http.ResponseWriter, r *http.Request) {
	actorID := ""
	if userCtx, ok := auth.FromContext(r.Context()); ok {
		actorID = userCtx.UserID
	}

	rl.logger.Warn("rate limit exceeded",
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.String("client_ip", clientIP(r)),
		zap.String("actor_id", actorID),
	)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "60")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"type":"rate_limited","title":"Too Many Requests","status":429,"detail":"Too many requests. Please try again later."}`))
}
