package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash stored in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// BasicAuth guards the back office. With no hash configured every request
// is refused.
func BasicAuth(cfg config.AdminConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if ok && cfg.PasswordHash != "" &&
				subtle.ConstantTimeCompare([]byte(user), []byte(cfg.Username)) == 1 &&
				bcrypt.CompareHashAndPassword([]byte(cfg.PasswordHash), []byte(pass)) == nil {
				next.ServeHTTP(w, r)
				return
			}

			if ok {
				logger.WithCtx(r.Context()).Warn("admin: authentication failed", "user", user)
			}
			w.Header().Set("WWW-Authenticate", `Basic realm="`+cfg.Realm+`", charset="UTF-8"`)
			response.Unauthorized(w)
		})
	}
}
