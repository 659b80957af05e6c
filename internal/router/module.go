package router

import "github.com/gin-gonic/gin"

// Module describes a feature module that can register its routes on a RouterGroup
type Module interface {
	Register(rg *gin.RouterGroup)
}

// FallbackModule is a Module that also handles every request no route
// matched. The last one added wins.
type FallbackModule interface {
	Module
	Fallback() []gin.HandlerFunc
}
