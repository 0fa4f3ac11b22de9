package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const identityKey = "identity"

// Identity is the resolved caller of a request.
type Identity struct {
	Username string
	IsAdmin  bool
}

// CanModify is the single ownership predicate mutating handlers consult:
// a resource may be modified by its owner or by an administrator.
func CanModify(actor, owner string, isAdmin bool) bool {
	return isAdmin || (actor != "" && actor == owner)
}

// Middleware validates a Bearer token signed with secret and stores the
// caller's identity in the request context. Requests without a valid
// token are rejected before any handler runs.
func Middleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "missing bearer token", "status": http.StatusUnauthorized}})
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "invalid token", "status": http.StatusUnauthorized}})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "invalid claims", "status": http.StatusUnauthorized}})
			return
		}

		identity := Identity{}
		if sub, ok := claims["sub"].(string); ok {
			identity.Username = sub
		}
		if username, ok := claims["username"].(string); ok && identity.Username == "" {
			identity.Username = username
		}
		if isAdmin, ok := claims["is_admin"].(bool); ok {
			identity.IsAdmin = isAdmin
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// FromContext returns the identity stored by Middleware, if any.
func FromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	identity, ok := v.(Identity)
	return identity, ok
}

// SetIdentity is a test hook for handler tests that bypass Middleware.
func SetIdentity(c *gin.Context, identity Identity) {
	c.Set(identityKey, identity)
}
