package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stratus-tools/bug-advisor/internal/services"
	"github.com/stratus-tools/bug-advisor/internal/utils"
)

// SessionCookieName carries the opaque admin session token.
const SessionCookieName = "stratus_session"

type apiError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

// SessionAuth gates admin routes on a live session. The token is read
// from the session cookie or, for non-browser clients, a bearer header.
func SessionAuth(auth services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFrom(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "authentication required",
			})
			return
		}

		sess, err := auth.Validate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(utils.HTTPStatus(err), apiError{
				Code:    utils.CodeUnauthorized,
				Message: "invalid or expired session",
			})
			return
		}

		c.Set("admin_username", sess.Username)
		c.Set("session_token", token)
		c.Next()
	}
}

func tokenFrom(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
