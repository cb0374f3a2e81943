package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nusa-erp/erp-api/internal/config"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrNoSecret     = errors.New("token signing secret is not configured")
)

// Claims are the registered claims plus the user profile the API reads
type Claims struct {
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// JWTValidator validates HS256 tokens issued by the identity service
type JWTValidator struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
}

// NewJWTValidator creates a new JWT validator
func NewJWTValidator(cfg *config.AuthConfig) *JWTValidator {
	return &JWTValidator{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
		now:      time.Now,
	}
}

func (v *JWTValidator) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	return opts
}

// ValidateToken validates a JWT token and returns user context
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	if len(v.secret) == 0 {
		return nil, ErrNoSecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, v.parserOptions()...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	user := &UserContext{
		UserID:      claims.Subject,
		DisplayName: claims.Name,
		Email:       claims.Email,
		Roles:       make([]Role, 0, len(claims.Roles)),
	}
	for _, r := range claims.Roles {
		if r = strings.TrimSpace(r); r != "" {
			user.Roles = append(user.Roles, Role(strings.ToLower(r)))
		}
	}
	return user, nil
}

// IssueToken signs a token for the user valid for ttl. It is used by
// integration tooling and tests; production tokens come from the identity service.
func (v *JWTValidator) IssueToken(user *UserContext, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrNoSecret
	}

	now := v.now()
	claims := Claims{
		Name:  user.DisplayName,
		Email: user.Email,
		Roles: user.RolesAsStrings(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if v.audience != "" {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
