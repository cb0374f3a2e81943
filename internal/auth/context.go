package auth

import (
	"context"

	"github.com/nusa-erp/erp-api/internal/domain"
)

// Role is an application role carried in the token
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleApprover   Role = "approver"
	RoleStaff      Role = "staff"
	RoleViewer     Role = "viewer"
	RoleAPIService Role = "api_service"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID      string
	DisplayName string
	Email       string
	Roles       []Role
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// ActorFromContext returns the actor stamped onto documents for the
// authenticated user
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	user, ok := FromContext(ctx)
	if !ok {
		return domain.Actor{}, false
	}
	return user.Actor(), true
}

// Actor converts the user into the identity recorded by document operations
func (u *UserContext) Actor() domain.Actor {
	name := u.DisplayName
	if name == "" {
		name = u.Email
	}
	return domain.Actor{ID: u.UserID, Name: name}
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...Role) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user administers the system
func (u *UserContext) IsAdmin() bool {
	return u.HasAnyRole(RoleAdmin, RoleAPIService)
}

// RolesAsStrings returns roles as a slice of strings
func (u *UserContext) RolesAsStrings() []string {
	result := make([]string, len(u.Roles))
	for i, role := range u.Roles {
		result[i] = string(role)
	}
	return result
}
