package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cohesia-portal/internal/application"
	"github.com/oksasatya/cohesia-portal/internal/domain/entity"
	"github.com/oksasatya/cohesia-portal/pkg/helpers"
)

const (
	CtxSessionKey      = "session"
	CtxSessionTokenKey = "session_token"
)

// SessionLoader resolves the session cookie once per request and stores the
// session (if any) in the gin context. Store failures are logged and treated
// as "no session".
func SessionLoader(sessions *application.SessionService, cookies *helpers.Manager, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookies.Read(c)
		if token == "" {
			c.Next()
			return
		}
		c.Set(CtxSessionTokenKey, token)

		sess, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			helpers.LogWarn(logger, "session lookup failed", err, logrus.Fields{"request_id": c.GetString("request_id")})
		}
		if sess != nil {
			c.Set(CtxSessionKey, sess)
		}
		c.Next()
	}
}

// CurrentSession returns the session loaded for this request, or nil.
func CurrentSession(c *gin.Context) *entity.Session {
	v, ok := c.Get(CtxSessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*entity.Session)
	return s
}

// SessionToken returns the raw cookie value seen on this request.
func SessionToken(c *gin.Context) string {
	return c.GetString(CtxSessionTokenKey)
}
