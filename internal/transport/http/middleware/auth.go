package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"hrportal/internal/domain/auth"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// SessionChecker answers whether the presented token still has a live
// session behind it. Logout revokes the row, so a revoked token stops
// working before its JWT expiry.
type SessionChecker interface {
	SessionActive(ctx context.Context, userID, tokenHash string) (bool, error)
}

// Auth parses a bearer token into the request context. Anonymous or
// malformed requests pass through untouched; the role gates decide whether
// that matters for a given route. A parseable token whose session has been
// revoked or has expired is treated the same as no token at all.
func Auth(secret string, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			if sessions != nil {
				active, err := sessions.SessionActive(r.Context(), claims.UserID, auth.TokenHash(parts[1]))
				if err != nil {
					slog.Warn("session lookup failed", "userId", claims.UserID, "err", err)
				}
				if err != nil || !active {
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, auth.UserContext{
				UserID:    claims.UserID,
				Name:      claims.Name,
				Username:  claims.Username,
				JobNumber: claims.JobNumber,
				Role:      claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}
