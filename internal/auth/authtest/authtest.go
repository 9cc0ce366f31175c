// Package authtest provides a fake identity provider for tests: it signs
// tokens with a throwaway RSA key and can publish that key as a JWKS.
package authtest

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/require"

	"github.com/xenking/drinks-api/internal/auth"
)

const (
	DefaultIssuer   = "https://drinks.test.auth/"
	DefaultAudience = "drinks"
	keyID           = "test-key"
)

// Issuer mints RS256 tokens for tests.
type Issuer struct {
	key      *rsa.PrivateKey
	issuer   string
	audience string
}

// New creates an Issuer with a fresh 2048-bit key.
func New(t testing.TB) *Issuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return &Issuer{key: key, issuer: DefaultIssuer, audience: DefaultAudience}
}

// Config returns the auth.Config matching tokens minted by the issuer.
func (i *Issuer) Config() auth.Config {
	return auth.Config{Issuer: i.issuer, Audience: i.audience}
}

// KeySet returns an in-memory key set holding the issuer's public key.
func (i *Issuer) KeySet() oidc.KeySet {
	return &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{i.key.Public()}}
}

// Authenticator returns an auth.Authenticator trusting the issuer.
func (i *Issuer) Authenticator() *auth.Authenticator {
	return auth.NewWithKeySet(i.KeySet(), i.Config())
}

// ServeJWKS starts an HTTP server publishing the issuer's key set and returns
// its JWKS URL. The server is closed with the test.
func (i *Issuer) ServeJWKS(t testing.TB) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		set := jose.JSONWebKeySet{
			Keys: []jose.JSONWebKey{{
				Key:       i.key.Public(),
				KeyID:     keyID,
				Algorithm: string(jose.RS256),
				Use:       "sig",
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/.well-known/jwks.json"
}

// TokenOption customizes the claims of a minted token.
type TokenOption func(c *tokenClaims)

type tokenClaims struct {
	jwt.Claims
	Permissions []string `json:"permissions,omitempty"`

	omitPermissions bool
}

// WithExpiry overrides the expiry (default one hour from now).
func WithExpiry(exp time.Time) TokenOption {
	return func(c *tokenClaims) { c.Expiry = jwt.NewNumericDate(exp) }
}

// WithIssuer overrides the "iss" claim.
func WithIssuer(iss string) TokenOption {
	return func(c *tokenClaims) { c.Issuer = iss }
}

// WithAudience overrides the "aud" claim.
func WithAudience(aud ...string) TokenOption {
	return func(c *tokenClaims) { c.Audience = aud }
}

// WithoutPermissions drops the permissions claim entirely.
func WithoutPermissions() TokenOption {
	return func(c *tokenClaims) { c.omitPermissions = true }
}

// Token mints a signed token for subject carrying permissions.
func (i *Issuer) Token(t testing.TB, subject string, permissions []string, opts ...TokenOption) string {
	t.Helper()

	now := time.Now()
	c := tokenClaims{
		Claims: jwt.Claims{
			Issuer:    i.issuer,
			Subject:   subject,
			Audience:  jwt.Audience{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			Expiry:    jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Permissions: permissions,
	}
	for _, o := range opts {
		o(&c)
	}

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.RS256, Key: i.key},
		(&jose.SignerOptions{}).WithType("JWT").WithHeader(jose.HeaderKey("kid"), keyID),
	)
	require.NoError(t, err)

	b := jwt.Signed(signer).Claims(c.Claims)
	if !c.omitPermissions {
		perms := c.Permissions
		if perms == nil {
			perms = []string{}
		}
		b = b.Claims(map[string]any{"permissions": perms})
	}
	raw, err := b.Serialize()
	require.NoError(t, err)
	return raw
}

// Header formats raw as an Authorization header value.
func Header(raw string) string {
	return "Bearer " + raw
}
