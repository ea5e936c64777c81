package middleware

import (
	"context"
	"errors"
	"net/http"

	"velora-api/internal/auth"
	"velora-api/internal/logger"
	"velora-api/internal/metrics"
	"velora-api/internal/user"
	"velora-api/internal/utils"

	"go.uber.org/zap"
)

// TokenVerifier resolves an access token to its user. user.Service satisfies it.
type TokenVerifier interface {
	Authenticate(ctx context.Context, token string) (*user.User, error)
}

type ctxKey string

const tokenFailedKey ctxKey = "token_failed"

func withTokenFailed(ctx context.Context) context.Context {
	return context.WithValue(ctx, tokenFailedKey, true)
}

func tokenFailed(ctx context.Context) bool {
	v, _ := ctx.Value(tokenFailedKey).(bool)
	return v
}

// Authenticate is passive: a valid token attaches the user to the request
// context, an invalid one lets the request through anonymously. Any other
// verifier error is answered with 500.
func Authenticate(verifier TokenVerifier, reg *metrics.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ExtractAccessToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			log := logger.FromCtx(r.Context()).With(zap.String("layer", "middleware"))

			u, err := verifier.Authenticate(r.Context(), token)
			switch {
			case errors.Is(err, auth.ErrInvalidToken):
				log.Debug("ignoring invalid token", zap.Error(err))
				if reg != nil {
					reg.AuthFailures.With(metrics.ReasonInvalidToken).Inc()
				}
				next.ServeHTTP(w, r.WithContext(withTokenFailed(r.Context())))
				return
			case err != nil:
				log.Error("failed to verify token", zap.Error(err))
				utils.WriteJSONError(w, "Server error", http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(user.NewContext(r.Context(), u)))
		})
	}
}

func writeUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if tokenFailed(r.Context()) {
		utils.WriteJSONError(w, "Not authorized, token failed", http.StatusUnauthorized)
		return
	}
	utils.WriteJSONError(w, "Not authorized, no token", http.StatusUnauthorized)
}

// RequireAuth rejects requests that carry no authenticated user.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := user.FromContext(r.Context()); !ok {
			writeUnauthenticated(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole must run after RequireAuth.
func RequireRole(role auth.Role, reg *metrics.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := user.FromContext(r.Context())
			if !ok {
				writeUnauthenticated(w, r)
				return
			}
			if err := auth.RequireRole(u.Principal(), role); err != nil {
				if reg != nil {
					reg.AuthFailures.With(metrics.ReasonForbidden).Inc()
				}
				utils.WriteJSONError(w, "Not authorized as an "+string(role), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
