package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/cohesia-portal/internal/interface/http"
)

type SystemModule struct {
	Handler *handlers.SystemHandler
}

func NewSystemModule(h *handlers.SystemHandler) *SystemModule {
	return &SystemModule{Handler: h}
}

func (m *SystemModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", m.Handler.Health)
	api := rg.Group("/api")
	api.GET("/check-auth", m.Handler.CheckAuth)
}
