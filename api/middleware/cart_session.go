package middleware

import (
	"net/http"
	"time"

	"github.com/avaldez-dev/storefront-core/pkg/logger"
	"github.com/google/uuid"
)

// CartSessionCookie names the cookie carrying the anonymous cart slot ID.
const CartSessionCookie = "cart_session"

// CartSession guarantees every shopper carries a cart session cookie. The
// cookie names the local snapshot slot for anonymous carts and, on login,
// tells the merge which slot to fold into the account cart.
func CartSession(logg *logger.Logger, cookieTTL time.Duration, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if cookie, err := r.Cookie(CartSessionCookie); err == nil {
				if _, parseErr := uuid.Parse(cookie.Value); parseErr == nil {
					sessionID = cookie.Value
				}
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     CartSessionCookie,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(cookieTTL.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := WithCartSession(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithCartSession(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
