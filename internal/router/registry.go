package router

import "github.com/gin-gonic/gin"

// Registry collects global middleware and modules, then registers them in
// order: middleware first, then each module's routes, then the fallback.
type Registry struct {
	Engine      *gin.Engine
	Root        *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, Root: &engine.RouterGroup}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.Engine.Use(r.middlewares...)
	}
	var fallback []gin.HandlerFunc
	for _, m := range r.modules {
		m.Register(r.Root)
		if fb, ok := m.(FallbackModule); ok {
			fallback = fb.Fallback()
		}
	}
	if len(fallback) > 0 {
		r.Engine.NoRoute(fallback...)
	}
}
