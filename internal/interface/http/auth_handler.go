package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cohesia-portal/internal/application"
	"github.com/oksasatya/cohesia-portal/internal/interface/middleware"
	"github.com/oksasatya/cohesia-portal/pkg/helpers"
	"github.com/oksasatya/cohesia-portal/pkg/response"
	"github.com/oksasatya/cohesia-portal/pkg/validation"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Cookies *helpers.Manager
	Logger  *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, cookies *helpers.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Cookies: cookies, Logger: logger}
}

type loginRequest struct {
	EmployeeID string `json:"employeeId" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type employeeIDRequest struct {
	EmployeeID string `json:"employeeId" binding:"required"`
}

type registerRequest struct {
	Name        string `json:"name" binding:"required"`
	EmployeeID  string `json:"employeeId" binding:"required"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Role        string `json:"role" binding:"required"`
}

// loginResponse is flat: {success, role, name, employeeId}.
type loginResponse struct {
	Success bool `json:"success"`
	*application.Identity
}

type registerResponse struct {
	Success bool                        `json:"success"`
	Message string                      `json:"message"`
	User    *application.RegisteredUser `json:"user"`
}

type verifyResponse struct {
	Success bool                      `json:"success"`
	User    *application.VerifiedUser `json:"user"`
}

// bind decodes the JSON body. On failure it answers 400 with msg and
// returns false.
func (h *AuthHandler) bind(c *gin.Context, dst any, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.Logger != nil {
			h.Logger.WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.Request.URL.Path,
				"details":    validation.ToDetails(err),
			}).Debug("rejected request body")
		}
		response.Fail(c, http.StatusBadRequest, msg)
		return false
	}
	return true
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !h.bind(c, &req, application.MsgCredentialsRequired) {
		return
	}
	id, issued, err := h.Svc.Login(c.Request.Context(), req.EmployeeID, req.Password, middleware.SessionToken(c))
	if err != nil {
		writeError(c, h.Logger, "login", err)
		return
	}
	h.Cookies.SetSession(c, issued.Token, issued.ExpiresAt)
	response.OK(c, http.StatusOK, loginResponse{Success: true, Identity: id})
}

// OTPLogin grants a session from the employee id alone.
func (h *AuthHandler) OTPLogin(c *gin.Context) {
	var req employeeIDRequest
	if !h.bind(c, &req, application.MsgEmployeeIDRequired) {
		return
	}
	id, issued, err := h.Svc.OTPLogin(c.Request.Context(), req.EmployeeID, middleware.SessionToken(c))
	if err != nil {
		writeError(c, h.Logger, "otp login", err)
		return
	}
	h.Cookies.SetSession(c, issued.Token, issued.ExpiresAt)
	response.OK(c, http.StatusOK, loginResponse{Success: true, Identity: id})
}

func (h *AuthHandler) VerifyUser(c *gin.Context) {
	var req employeeIDRequest
	if !h.bind(c, &req, application.MsgEmployeeIDRequired) {
		return
	}
	u, err := h.Svc.VerifyUser(c.Request.Context(), req.EmployeeID)
	if err != nil {
		writeError(c, h.Logger, "verify user", err)
		return
	}
	response.OK(c, http.StatusOK, verifyResponse{Success: true, User: u})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !h.bind(c, &req, application.MsgAllFieldsRequired) {
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:        req.Name,
		EmployeeID:  req.EmployeeID,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		Role:        req.Role,
	})
	if err != nil {
		writeError(c, h.Logger, "register", err)
		return
	}
	response.OK(c, http.StatusCreated, registerResponse{Success: true, Message: "User registered successfully", User: u})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Svc.Logout(c.Request.Context(), middleware.SessionToken(c), middleware.CurrentSession(c)); err != nil {
		writeError(c, h.Logger, "logout", err)
		return
	}
	h.Cookies.Clear(c)
	response.Message(c, http.StatusOK, "Logged out successfully")
}
