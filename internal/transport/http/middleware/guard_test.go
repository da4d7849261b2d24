package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hrportal/internal/domain/auth"
)

const guardSecret = "guard-test-secret"

func guardServe(t *testing.T, target string, decorate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	passed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := Guard(guardSecret)(passed)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func roleToken(t *testing.T, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(guardSecret, auth.Claims{UserID: "u1", Role: role}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	return token
}

func TestGuardRedirectsAnonymousAreaNavigation(t *testing.T) {
	for _, target := range []string{"/employee/dashboard", "/admin", "/hr/requests", "/manager/leave-requests"} {
		rec := guardServe(t, target, nil)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("%s: expected 303, got %d", target, rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != LoginPath {
			t.Fatalf("%s: expected redirect to %s, got %s", target, LoginPath, loc)
		}
	}
}

func TestGuardPassesPublicPaths(t *testing.T) {
	for _, target := range []string{"/login", "/forgot-password", "/reset-password"} {
		rec := guardServe(t, target, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected pass-through, got %d", target, rec.Code)
		}
	}
}

func TestGuardPassesUnguardedPaths(t *testing.T) {
	for _, target := range []string{"/", "/assets/app.js", "/employees-directory", "/favicon.ico"} {
		rec := guardServe(t, target, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected pass-through, got %d", target, rec.Code)
		}
	}
}

func TestGuardAcceptsCookieToken(t *testing.T) {
	token := roleToken(t, auth.RoleEmployee)
	rec := guardServe(t, "/employee/dashboard", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "token", Value: token})
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through with cookie token, got %d", rec.Code)
	}
}

func TestGuardAcceptsAuthorizationHeader(t *testing.T) {
	token := roleToken(t, auth.RoleHR)
	rec := guardServe(t, "/hr/dashboard", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through with bearer token, got %d", rec.Code)
	}
}

// A non-empty credential is never bounced back to the login screen, even
// when it does not parse.
func TestGuardNeverSendsTokenBearersToLogin(t *testing.T) {
	rec := guardServe(t, "/employee/dashboard", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "token", Value: "not-a-jwt"})
	})
	if rec.Code == http.StatusSeeOther && rec.Header().Get("Location") == LoginPath {
		t.Fatal("garbage token must not redirect to login")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through for unparseable token, got %d", rec.Code)
	}
}

func TestGuardBouncesRoleMismatchToOwnDashboard(t *testing.T) {
	token := roleToken(t, auth.RoleManager)
	rec := guardServe(t, "/admin/users", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "token", Value: token})
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 for role mismatch, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/manager/dashboard" {
		t.Fatalf("expected redirect to /manager/dashboard, got %s", loc)
	}
}

func TestGuardAdminEntersEveryArea(t *testing.T) {
	token := roleToken(t, auth.RoleAdmin)
	for _, target := range []string{"/admin", "/hr/requests", "/manager/dashboard", "/employee/dashboard"} {
		rec := guardServe(t, target, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "token", Value: token})
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: admin should pass, got %d", target, rec.Code)
		}
	}
}

func TestGuardPrefixMatchingIsSegmentAware(t *testing.T) {
	// "/employees" shares a prefix with "/employee" but is not inside the
	// guarded area.
	rec := guardServe(t, "/employees", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected /employees to pass unguarded, got %d", rec.Code)
	}
}

func TestGuardUsesSeeOtherForRedirects(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/employee/requests", nil)
	rec := httptest.NewRecorder()
	Guard(guardSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 so the POST is not replayed, got %d", rec.Code)
	}
}
