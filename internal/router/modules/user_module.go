package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/cohesia-portal/internal/interface/http"
)

// UserModule exposes the user listing. No session is required.
type UserModule struct {
	Handler *handlers.UserHandler
}

func NewUserModule(h *handlers.UserHandler) *UserModule {
	return &UserModule{Handler: h}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.GET("/users", m.Handler.List)
}
