package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/SachyamKarki/Karki-Scrapper/internal/auth"
	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
	"github.com/SachyamKarki/Karki-Scrapper/internal/port"
	"github.com/SachyamKarki/Karki-Scrapper/pkg/logger"
)

type ctxKey int

const userKey ctxKey = iota

// CurrentUser returns the authenticated account, or nil outside a session.
func CurrentUser(r *http.Request) *domain.User {
	user, _ := r.Context().Value(userKey).(*domain.User)
	return user
}

// SessionAuth resolves the session cookie into a user on the request
// context. Requests without a valid session pass through anonymous; the
// Require* middlewares do the rejecting.
func SessionAuth(sessions *auth.SessionManager, users port.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := sessions.Validate(cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			user, err := users.ByID(r.Context(), claims.UserID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects anonymous requests.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r) == nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireStaff rejects non-staff requests.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !user.IsStaff() {
			writeError(w, http.StatusForbidden, "Not allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSuperadmin rejects everything below the superadmin role.
func RequireSuperadmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !user.IsSuperadmin() {
			writeError(w, http.StatusForbidden, "Not allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs one line per request through the shared logger.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	log = log.WithModule("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debugf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
		})
	}
}
