package middleware

import (
	"net/http"
	"strings"

	"hrportal/internal/domain/auth"
)

// LoginPath is where the guard sends unauthenticated console traffic.
const LoginPath = "/login"

var publicPaths = map[string]struct{}{
	"/login":           {},
	"/forgot-password": {},
	"/reset-password":  {},
}

var protectedAreas = []string{"employee", "admin", "hr", "manager"}

// Guard fronts the console routes. Navigation into a role area without a
// session credential is redirected to the login screen; everything else
// passes through unchanged. The guard never creates or mutates session
// state.
//
// A bearer of any non-empty token is never sent back to /login. When the
// token parses, the guard additionally checks that its role covers the
// area being entered and bounces mismatches to the actor's own dashboard
// instead of letting a manager wander into /admin.
func Guard(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if _, ok := publicPaths[path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			area := protectedArea(path)
			if area == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := guardToken(r)
			if token == "" {
				// 303 so a guarded POST never replays against /login.
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			if claims, err := auth.ParseToken(secret, token); err == nil {
				if !auth.CanEnterArea(claims.Role, area) {
					http.Redirect(w, r, auth.HomePath(claims.Role), http.StatusSeeOther)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// protectedArea returns the guarded area a path belongs to, or "" when the
// path is outside the guard's scope.
func protectedArea(path string) string {
	for _, area := range protectedAreas {
		prefix := "/" + area
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return area
		}
	}
	return ""
}

// guardToken pulls the session credential from the token cookie or the
// Authorization header, in that order.
func guardToken(r *http.Request) string {
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return header
}
