package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/otofix/storefront-backend/pkg/logger"
)

const (
	sessionCookieName = "otofix_session"
	sessionCookieTTL  = 180 * 24 * time.Hour
)

// VisitorSession assigns every browser a stable session identifier via a
// cookie. Cart and wishlist state is namespaced under it, so a visitor's
// carts survive across requests without an account.
func VisitorSession(logg *logger.Logger, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if cookie, err := r.Cookie(sessionCookieName); err == nil {
				if _, parseErr := uuid.Parse(cookie.Value); parseErr == nil {
					sessionID = cookie.Value
				}
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(sessionCookieTTL.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
