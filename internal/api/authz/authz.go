package authz

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
	RoleSysadmin Role = "SYSADMIN"
)

// ParseRole accepts role names case-insensitively.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleCustomer:
		return RoleCustomer, true
	case RoleAdmin:
		return RoleAdmin, true
	case RoleSysadmin:
		return RoleSysadmin, true
	}
	return "", false
}

// AuthUser is the identity fact supplied by the identity provider. Engines
// receive it by value as the acting user.
type AuthUser struct {
	ID    int64
	Role  Role
	Email string
}

type userContextKey struct{}

func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the AuthUser stored in ctx.
// It returns nil if ctx is nil, if no user is stored, or if the stored value has a different type.
func UserFromContext(ctx context.Context) *AuthUser {
	if ctx == nil {
		return nil
	}

	user, ok := ctx.Value(userContextKey{}).(*AuthUser)
	if !ok {
		return nil
	}

	return user
}

func IsCustomer(user *AuthUser) bool {
	return user != nil && user.Role == RoleCustomer
}

// CanManageEstablishment reports whether user may administer an establishment
// owned by ownerUserID. Sysadmins manage every establishment.
func CanManageEstablishment(user *AuthUser, ownerUserID int64) bool {
	if user == nil {
		return false
	}
	switch user.Role {
	case RoleSysadmin:
		return true
	case RoleAdmin:
		return user.ID == ownerUserID
	}
	return false
}

// RequireUser returns the authenticated user or ErrUnauthenticated.
func RequireUser(ctx context.Context) (*AuthUser, error) {
	user := UserFromContext(ctx)
	if user == nil || user.ID == 0 {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// RequireRole returns the authenticated user when it holds one of roles.
func RequireRole(ctx context.Context, roles ...Role) (*AuthUser, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	for _, role := range roles {
		if user.Role == role {
			return user, nil
		}
	}
	return nil, ErrForbidden
}
