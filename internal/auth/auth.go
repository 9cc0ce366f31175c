// Package auth authenticates bearer tokens issued by an external identity
// provider and checks the permissions they carry.
package auth

import (
	"context"
	"slices"
)

// Permissions guarding the drink routes.
const (
	PermissionGetDrinksDetail = "get:drinks-detail"
	PermissionPostDrinks      = "post:drinks"
	PermissionPatchDrinks     = "patch:drinks"
	PermissionDeleteDrinks    = "delete:drinks"
)

// Error is an authentication or authorization failure. Code is a stable
// machine-readable reason, Description is safe to show to clients.
type Error struct {
	Code        string
	Description string

	// Err is the underlying cause, if any. It is never shown to clients.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Description + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Description
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Failure reasons. Compare with errors.Is.
var (
	ErrHeaderMissing = &Error{
		Code:        "authorization_header_missing",
		Description: "Authorization header is expected.",
	}
	ErrInvalidHeader = &Error{
		Code:        "invalid_header",
		Description: "Authorization header must be bearer token.",
	}
	ErrInvalidToken = &Error{
		Code:        "invalid_token",
		Description: "Unable to verify token.",
	}
	ErrTokenExpired = &Error{
		Code:        "token_expired",
		Description: "Token expired.",
	}
	ErrInvalidClaims = &Error{
		Code:        "invalid_claims",
		Description: "Permissions not included in JWT.",
	}
	ErrPermissionDenied = &Error{
		Code:        "unauthorized",
		Description: "Permission not found.",
	}
)

func failure(base *Error, cause error) *Error {
	return &Error{Code: base.Code, Description: base.Description, Err: cause}
}

// Claims is the part of a verified token payload the API relies on.
type Claims struct {
	Subject     string
	Permissions []string
}

// Has reports whether the claims grant permission.
func (c *Claims) Has(permission string) bool {
	return slices.Contains(c.Permissions, permission)
}

type claimsKey struct{}

// WithClaims returns a copy of ctx carrying c.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims stored by WithClaims.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok
}
