package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alqalam-institute/registry-api/internal/models"
	"github.com/alqalam-institute/registry-api/internal/service"
	appErrors "github.com/alqalam-institute/registry-api/pkg/errors"
	"github.com/alqalam-institute/registry-api/pkg/response"
)

// ContextStudentKey is the gin context key storing portal session claims.
const ContextStudentKey = "currentStudent"

// PortalSession requires a valid student session token issued at login.
func PortalSession(portal *service.PortalService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := portal.ParseToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextStudentKey, claims)
		c.Next()
	}
}

// StudentClaims pulls the session claims set by PortalSession.
func StudentClaims(c *gin.Context) *models.PortalClaims {
	value, ok := c.Get(ContextStudentKey)
	if !ok {
		return nil
	}
	claims, _ := value.(*models.PortalClaims)
	return claims
}
