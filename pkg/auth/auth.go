package auth

import (
	"context"
	"errors"
	"net/http"
)

var ErrUnauthorized = errors.New("unauthorized")

// Provider authenticates an incoming API request and returns a context that
// carries the caller identity.
type Provider interface {
	Authenticate(ctx context.Context, r *http.Request) (context.Context, error)
}

type contextKey string

const (
	UserContextKey  contextKey = "user"
	EmailContextKey contextKey = "email"
)

// User returns the authenticated user of ctx, if any.
func User(ctx context.Context) string {
	user, _ := ctx.Value(UserContextKey).(string)
	return user
}

// Email returns the authenticated email of ctx, if any.
func Email(ctx context.Context) string {
	email, _ := ctx.Value(EmailContextKey).(string)
	return email
}

type anyProvider []Provider

// Any accepts a request when one of providers accepts it. The error of the
// last provider is returned otherwise.
func Any(providers ...Provider) Provider {
	return anyProvider(providers)
}

func (p anyProvider) Authenticate(ctx context.Context, r *http.Request) (context.Context, error) {
	err := ErrUnauthorized

	for _, provider := range p {
		var authCtx context.Context

		if authCtx, err = provider.Authenticate(ctx, r); err == nil {
			return authCtx, nil
		}
	}

	return ctx, err
}
