package middleware

import (
	"net/http"
	"strings"

	jwtsvc "filmverse/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// AuthCookieName is the session cookie set on login for browser clients.
// API clients may instead send the token as an Authorization bearer header.
const AuthCookieName = "auth_token"

// JWTAuth validates the session token and puts user_id/email into the
// request context. Header takes precedence over the cookie.
func JWTAuth(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			if v, err := c.Cookie(AuthCookieName); err == nil {
				tokenStr = v
			}
		}
		if tokenStr == "" {
			abortUnauthorized(c, "Authentication required")
			return
		}

		claims, err := jwt.ValidateToken(tokenStr)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
