package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/FloraSpot/FloraSpot-Back/internal/identity"
)

// OptionalAuthMiddleware place user_id dans le contexte si un token valide
// est fourni, et laisse passer la requête anonyme sinon
func OptionalAuthMiddleware(resolver *identity.TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.Next()
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if userID, err := resolver.VerifyToken(tokenStr); err == nil {
			c.Set("user_id", userID)
		}

		c.Next()
	}
}
