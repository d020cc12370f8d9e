package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

const (
	defaultGoogleIssuer  = "https://accounts.google.com"
	defaultGoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
)

// GoogleIdentity is the verified subset of a Google ID token.
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// IDTokenVerifier checks an ID token issued to the frontend.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (GoogleIdentity, error)
}

// GoogleVerifier validates signature, issuer, audience and expiry of Google ID tokens.
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewGoogleVerifier fetches signing keys lazily from the configured JWKS endpoint.
// ctx bounds the key refreshes and should live as long as the verifier.
func NewGoogleVerifier(ctx context.Context, cfg GoogleConfig) (*GoogleVerifier, error) {
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, errors.New("google client id cannot be empty")
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = defaultGoogleIssuer
	}
	jwksURL := cfg.JWKSURL
	if jwksURL == "" {
		jwksURL = defaultGoogleJWKSURL
	}
	return NewGoogleVerifierWithKeySet(issuer, cfg.ClientID, oidc.NewRemoteKeySet(ctx, jwksURL)), nil
}

// NewGoogleVerifierWithKeySet builds a verifier over a caller supplied key set.
func NewGoogleVerifierWithKeySet(issuer, clientID string, keySet oidc.KeySet) *GoogleVerifier {
	return &GoogleVerifier{
		verifier: oidc.NewVerifier(issuer, keySet, &oidc.Config{ClientID: clientID}),
	}
}

// Verify returns the identity asserted by rawIDToken.
func (v *GoogleVerifier) Verify(ctx context.Context, rawIDToken string) (GoogleIdentity, error) {
	token, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return GoogleIdentity{}, err
	}
	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := token.Claims(&claims); err != nil {
		return GoogleIdentity{}, fmt.Errorf("decode id token claims: %w", err)
	}
	return GoogleIdentity{
		Subject:       token.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
	}, nil
}
