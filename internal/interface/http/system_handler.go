package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/cohesia-portal/internal/domain/entity"
	"github.com/oksasatya/cohesia-portal/internal/interface/middleware"
	"github.com/oksasatya/cohesia-portal/pkg/response"
)

type SystemHandler struct{}

func NewSystemHandler() *SystemHandler { return &SystemHandler{} }

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type sessionUser struct {
	Name       string      `json:"name"`
	EmployeeID string      `json:"employeeId"`
	Role       entity.Role `json:"role"`
}

type checkAuthResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *sessionUser `json:"user,omitempty"`
}

func (h *SystemHandler) Health(c *gin.Context) {
	response.OK(c, http.StatusOK, healthResponse{Status: "OK", Message: "Server is running"})
}

// CheckAuth reports the current session without touching it.
func (h *SystemHandler) CheckAuth(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		response.OK(c, http.StatusOK, checkAuthResponse{Authenticated: false})
		return
	}
	response.OK(c, http.StatusOK, checkAuthResponse{
		Authenticated: true,
		User:          &sessionUser{Name: sess.Name, EmployeeID: sess.UserID, Role: sess.Role},
	})
}
