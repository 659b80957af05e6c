package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cohesia-portal/internal/application"
	"github.com/oksasatya/cohesia-portal/pkg/helpers"
	"github.com/oksasatya/cohesia-portal/pkg/response"
)

// statusOf maps application error kinds to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, application.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, application.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, application.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError sends {success:false, message}. Server-side failures are logged
// with their cause; the cause never reaches the client.
func writeError(c *gin.Context, logger *logrus.Logger, op string, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		helpers.LogError(logger, op+" failed", err, logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.Request.URL.Path,
		})
	}
	response.Fail(c, status, application.Message(err))
}
