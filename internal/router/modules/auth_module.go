package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/cohesia-portal/internal/interface/http"
)

// LimiterFactory returns a fresh rate limiter for one route.
type LimiterFactory func() gin.HandlerFunc

type AuthModule struct {
	Handler *handlers.AuthHandler
	Limit   LimiterFactory
}

func NewAuthModule(h *handlers.AuthHandler, limit LimiterFactory) *AuthModule {
	if limit == nil {
		limit = func() gin.HandlerFunc { return func(c *gin.Context) { c.Next() } }
	}
	return &AuthModule{Handler: h, Limit: limit}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/login", m.Limit(), m.Handler.Login)
	rg.POST("/otp-login", m.Limit(), m.Handler.OTPLogin)
	rg.POST("/register", m.Limit(), m.Handler.Register)
	rg.POST("/verify-user", m.Limit(), m.Handler.VerifyUser)
	rg.POST("/logout", m.Handler.Logout)
}
