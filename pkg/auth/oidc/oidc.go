package oidc

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/paperscan/paperscan/pkg/auth"

	"github.com/coreos/go-oidc/v3/oidc"
)

var _ auth.Provider = (*Provider)(nil)

var ErrMissingToken = errors.New("missing bearer token")

// Provider accepts requests carrying an ID token of a trusted issuer.
type Provider struct {
	verifier *oidc.IDTokenVerifier
}

// New discovers the issuer configuration. An empty audience skips the
// audience check.
func New(ctx context.Context, issuer, audience string) (*Provider, error) {
	p, err := oidc.NewProvider(ctx, issuer)

	if err != nil {
		return nil, err
	}

	return NewWithVerifier(p.Verifier(&oidc.Config{
		ClientID:          audience,
		SkipClientIDCheck: audience == "",
	})), nil
}

func NewWithVerifier(verifier *oidc.IDTokenVerifier) *Provider {
	return &Provider{
		verifier: verifier,
	}
}

type claims struct {
	Email    string `json:"email"`
	Username string `json:"preferred_username"`
}

func (p *Provider) Authenticate(ctx context.Context, r *http.Request) (context.Context, error) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")

	if !ok || token == "" {
		return ctx, ErrMissingToken
	}

	idToken, err := p.verifier.Verify(ctx, token)

	if err != nil {
		return ctx, err
	}

	var c claims

	if err := idToken.Claims(&c); err != nil {
		return ctx, err
	}

	user := c.Username

	if user == "" {
		user = idToken.Subject
	}

	ctx = context.WithValue(ctx, auth.UserContextKey, user)

	if c.Email != "" {
		ctx = context.WithValue(ctx, auth.EmailContextKey, c.Email)
	}

	return ctx, nil
}
