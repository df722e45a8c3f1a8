// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"net/http"

	"github.com/danielhkuo/feedback-links/auth"
)

type contextKey string

const adminKey contextKey = "admin"

// Authenticate returns the admin username carried by the request's bearer token
func Authenticate(r *http.Request, issuer *auth.TokenIssuer) (string, error) {
	token, ok := auth.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		return "", auth.ErrInvalidToken
	}
	return issuer.Verify(token)
}

// RequireAdmin rejects requests without a valid admin token with 401
func RequireAdmin(issuer *auth.TokenIssuer) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			username, err := Authenticate(r, issuer)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
				ErrorResponse(w, http.StatusUnauthorized, "admin authentication required")
				return
			}
			next(w, r.WithContext(WithAdmin(r.Context(), username)))
		}
	}
}

// WithAdmin stores the authenticated admin username in ctx
func WithAdmin(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, adminKey, username)
}

// AdminFromContext returns the admin set by RequireAdmin
func AdminFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(adminKey).(string)
	return username, ok
}
