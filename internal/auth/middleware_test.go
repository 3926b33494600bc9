package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, secret string, userID uint, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func runSessionRefresh(h *AuthHandler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h.SessionRefresh(next).ServeHTTP(rr, req)
	return rr
}

func TestSessionRefresh(t *testing.T) {
	h, _ := newTestHandler(t)

	t.Run("TokenRenewed", func(t *testing.T) {
		// Less than half the lifetime left, so the middleware reissues.
		old := signedToken(t, "test-secret", 1, 11*time.Hour)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: old})

		rr := runSessionRefresh(h, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var renewed *http.Cookie
		for _, c := range rr.Result().Cookies() {
			if c.Name == CookieName {
				renewed = c
			}
		}
		require.NotNil(t, renewed, "expected a refreshed session cookie")
		assert.NotEqual(t, old, renewed.Value)
	})

	t.Run("TokenNotRenewed", func(t *testing.T) {
		fresh := signedToken(t, "test-secret", 1, 13*time.Hour)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: fresh})

		rr := runSessionRefresh(h, req)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Result().Cookies(), "fresh tokens are left alone")
	})

	t.Run("NoCookiePassesThrough", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := runSessionRefresh(h, req)
		assert.Equal(t, http.StatusOK, rr.Code, "refresh never blocks a request")
	})

	t.Run("InvalidTokenPassesThrough", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
		rr := runSessionRefresh(h, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Result().Cookies())
	})
}
