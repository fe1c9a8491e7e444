package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/alqalam-institute/registry-api/pkg/config"
	appErrors "github.com/alqalam-institute/registry-api/pkg/errors"
	"github.com/alqalam-institute/registry-api/pkg/response"
)

// BasicAuth protects the admin surface with HTTP Basic credentials from
// configuration. Comparison is constant-time for both fields.
func BasicAuth(cfg config.AdminAuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="registry"`)
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "credentials required"))
			c.Abort()
			return
		}

		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(cfg.Username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(cfg.Password)) == 1
		if !userOK || !passOK {
			c.Header("WWW-Authenticate", `Basic realm="registry"`)
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid credentials"))
			c.Abort()
			return
		}

		c.Next()
	}
}
