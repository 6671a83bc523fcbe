package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmynk/kanakk/internal/auth"
	"github.com/mmynk/kanakk/internal/models"
	"github.com/mmynk/kanakk/internal/storage"
)

// SessionCookie is the name of the cookie carrying the signed session token.
const SessionCookie = "kanakk_session"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// identityKey is the context key for storing the authenticated Identity.
const identityKey contextKey = "identity"

// Identity is the verified caller of a request.
type Identity struct {
	UserID    string
	CompanyID string
	Email     string
	Role      models.Role
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom extracts the identity from the context.
// The second result is false for anonymous requests.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.UserID != ""
}

// UserLookup loads the user named in a session token.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// RequireSession returns a middleware that validates the session cookie,
// reloads the user and adds its Identity to the request context. Requests
// without a valid session are passed to denied instead of next.
//
// The user is reloaded on every request so deleted users and role changes
// take effect immediately.
func RequireSession(sessions *auth.SessionManager, users UserLookup, denied http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if c, err := r.Cookie(SessionCookie); err == nil {
				token = c.Value
			}

			claims, err := sessions.Validate(token)
			if err != nil {
				if !errors.Is(err, auth.ErrMissingToken) {
					slog.Info("Rejected session", "path", r.URL.Path, "error", err)
				}
				denied.ServeHTTP(w, r)
				return
			}

			user, err := users.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					slog.Info("Session for deleted user", "user_id", claims.UserID)
					denied.ServeHTTP(w, r)
					return
				}
				slog.Error("Failed to load session user", "user_id", claims.UserID, "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if user.CompanyID != claims.CompanyID {
				denied.ServeHTTP(w, r)
				return
			}

			ctx := WithIdentity(r.Context(), Identity{
				UserID:    user.ID,
				CompanyID: user.CompanyID,
				Email:     user.Email,
				Role:      user.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RedirectToLogin is the denied handler for HTML pages.
var RedirectToLogin = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
})

// Unauthorized is the denied handler for downloads.
var Unauthorized = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
})

// SetSessionCookie stores token in the session cookie.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
