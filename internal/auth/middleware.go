package auth

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionRefresh reissues the session cookie once it is past the halfway
// point of its lifetime. It never blocks a request; authorization stays with
// the individual operations.
func (h *AuthHandler) SessionRefresh(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		tokenString := cookie.Value
		userID, err := h.parseToken(tokenString)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		if token, parseErr := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return []byte(h.cfg.JWTSecret), nil
		}); parseErr == nil {
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if exp, ok := claims["exp"].(float64); ok {
					remaining := time.Until(time.Unix(int64(exp), 0))
					if remaining < TokenDuration/2 {
						if newToken, err := h.GenerateToken(userID); err == nil {
							h.SetSessionCookie(w, newToken)
						}
					}
				}
			}
		}

		next.ServeHTTP(w, r)
	})
}
