package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-faster/errors"
)

// Config describes the identity provider tokens must come from.
type Config struct {
	// Issuer is the expected "iss" claim, e.g. https://tenant.auth0.com/.
	Issuer string
	// Audience must be present in the "aud" claim.
	Audience string
	// JWKSURL is where the provider publishes its signing keys.
	JWKSURL string
}

// Authenticator verifies bearer tokens against the provider's published keys
// and checks their permissions claim.
type Authenticator struct {
	verifier *oidc.IDTokenVerifier
}

// New creates an Authenticator that fetches signing keys from cfg.JWKSURL.
// Keys are fetched lazily and cached; ctx bounds the lifetime of the
// background key set and carries the HTTP client (see oidc.ClientContext).
func New(ctx context.Context, cfg Config) *Authenticator {
	return NewWithKeySet(oidc.NewRemoteKeySet(ctx, cfg.JWKSURL), cfg)
}

// NewWithKeySet creates an Authenticator verifying signatures with keys.
func NewWithKeySet(keys oidc.KeySet, cfg Config) *Authenticator {
	return &Authenticator{
		verifier: oidc.NewVerifier(cfg.Issuer, keys, &oidc.Config{
			ClientID:             cfg.Audience,
			SupportedSigningAlgs: []string{oidc.RS256},
		}),
	}
}

// Authorize authenticates r and checks that its token grants permission.
func (a *Authenticator) Authorize(r *http.Request, permission string) (*Claims, error) {
	raw, err := BearerToken(r)
	if err != nil {
		return nil, err
	}
	claims, err := a.Verify(r.Context(), raw)
	if err != nil {
		return nil, err
	}
	if !claims.Has(permission) {
		return nil, ErrPermissionDenied
	}
	return claims, nil
}

// Verify checks the signature, issuer, audience and expiry of raw and
// returns its claims. The token must carry a permissions claim.
func (a *Authenticator) Verify(ctx context.Context, raw string) (*Claims, error) {
	tok, err := a.verifier.Verify(ctx, raw)
	if err != nil {
		var expired *oidc.TokenExpiredError
		if errors.As(err, &expired) {
			return nil, failure(ErrTokenExpired, err)
		}
		return nil, failure(ErrInvalidToken, err)
	}

	var payload struct {
		Permissions *[]string `json:"permissions"`
	}
	if err := tok.Claims(&payload); err != nil {
		return nil, failure(ErrInvalidClaims, err)
	}
	if payload.Permissions == nil {
		return nil, ErrInvalidClaims
	}

	return &Claims{
		Subject:     tok.Subject,
		Permissions: *payload.Permissions,
	}, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", ErrHeaderMissing
	}

	parts := strings.Fields(h)
	switch {
	case len(parts) == 0:
		return "", ErrInvalidHeader
	case !strings.EqualFold(parts[0], "bearer"):
		return "", &Error{Code: ErrInvalidHeader.Code, Description: `Authorization header must start with "Bearer".`}
	case len(parts) == 1:
		return "", &Error{Code: ErrInvalidHeader.Code, Description: "Token not found."}
	case len(parts) > 2:
		return "", ErrInvalidHeader
	}
	return parts[1], nil
}
