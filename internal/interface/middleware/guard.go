package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/cohesia-portal/internal/domain/entity"
)

const MsgAccessDenied = "Access denied - insufficient permissions"

// RequireAuth redirects to loginPage when the request has no session.
func RequireAuth(loginPage string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentSession(c) == nil {
			c.Redirect(http.StatusFound, loginPage)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole redirects to loginPage when there is no session and answers 403
// when the session role is not exactly role.
func RequireRole(role entity.Role, loginPage string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess == nil {
			c.Redirect(http.StatusFound, loginPage)
			c.Abort()
			return
		}
		if sess.Role != role {
			c.Abort()
			c.String(http.StatusForbidden, MsgAccessDenied)
			return
		}
		c.Next()
	}
}
