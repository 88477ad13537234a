package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/libdesk/internal/domain/models"
)

// ClaimsKey is the gin context key holding the request's Claims.
const ClaimsKey = "claims"

// Require enforces bearer JWT tokens signed with HS256 and carrying one of roles.
func Require(issuer *Issuer, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := issuer.Parse(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if !allowed(claims.Role, roles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by Require.
func PrincipalFrom(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return models.Principal{}, false
	}
	claims, ok := v.(Claims)
	if !ok {
		return models.Principal{}, false
	}
	return claims.Principal(), true
}

func allowed(role models.Role, roles []models.Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
