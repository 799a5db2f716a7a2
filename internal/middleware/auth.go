package middleware

import (
	"crypto/subtle"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/deppfellow/cla-admin/internal/server"
)

const adminRealm = "CLA Administration"

// AuthMiddleware protects the admin surface with HTTP basic auth checked
// against a bcrypt hash from config.
type AuthMiddleware struct {
	server *server.Server
}

func NewAuthMiddleware(s *server.Server) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
	}
}

// RequireAdmin returns the basic auth middleware. With no admin user
// configured every request passes; config.LoadConfig rejects that setup in
// production.
func (auth *AuthMiddleware) RequireAdmin() echo.MiddlewareFunc {
	cfg := auth.server.Config.Auth

	if cfg.AdminUser == "" {
		auth.server.Logger.Warn().Msg("admin authentication disabled: auth.admin_user is empty")
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Realm: adminRealm,
		Validator: func(user, password string, c echo.Context) (bool, error) {
			start := time.Now()

			if !auth.verify(user, password) {
				GetLogger(c).Warn().
					Str("function", "RequireAdmin").
					Str("user", user).
					Dur("duration", time.Since(start)).
					Msg("admin authentication failed")
				return false, nil
			}

			c.Set(UserIDKey, user)
			c.Set(UserRoleKey, "admin")
			return true, nil
		},
	})
}

func (auth *AuthMiddleware) verify(user, password string) bool {
	cfg := auth.server.Config.Auth

	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(cfg.AdminUser)) == 1
	// The hash is compared even for a wrong user so both paths cost the same.
	passOK := bcrypt.CompareHashAndPassword([]byte(cfg.AdminPasswordHash), []byte(password)) == nil

	return userOK && passOK
}
