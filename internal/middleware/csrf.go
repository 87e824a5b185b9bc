package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CSRFCookieName is readable by the front end (not HttpOnly): the
	// double-submit scheme requires the client to echo it back in a header.
	CSRFCookieName = "XSRF-TOKEN"
	CSRFHeaderName = "X-XSRF-TOKEN"

	// StatusCSRFMismatch mirrors the 419 the previous framework stack used,
	// so existing front-end "session expired" handling keeps working.
	StatusCSRFMismatch = 419

	csrfCookieMaxAge = 12 * 60 * 60 // seconds
)

// CSRF implements double-submit cookie protection. Safe methods receive a
// token cookie; mutating methods must echo it in the X-XSRF-TOKEN header.
func CSRF(cookieSecure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			if _, err := c.Cookie(CSRFCookieName); err != nil {
				c.SetCookie(CSRFCookieName, uuid.NewString(), csrfCookieMaxAge, "/", "", cookieSecure, false)
			}
			c.Next()
			return
		}

		cookie, err := c.Cookie(CSRFCookieName)
		header := c.GetHeader(CSRFHeaderName)
		if err != nil || header == "" ||
			subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1 {
			c.AbortWithStatusJSON(StatusCSRFMismatch, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CSRF_TOKEN_MISMATCH",
					"message": "CSRF token missing or expired",
				},
			})
			return
		}

		c.Next()
	}
}
