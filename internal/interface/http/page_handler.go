package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/cohesia-portal/internal/interface/middleware"
)

// PageHandler serves individual HTML pages from the static directory.
type PageHandler struct {
	Root string
}

func NewPageHandler(root string) *PageHandler { return &PageHandler{Root: root} }

// File returns a handler that always serves name.
func (h *PageHandler) File(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.ServeFile(c, h.Root, name)
	}
}
