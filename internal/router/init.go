package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/cohesia-portal/internal/container"
	handlers "github.com/oksasatya/cohesia-portal/internal/interface/http"
	"github.com/oksasatya/cohesia-portal/internal/interface/middleware"
	"github.com/oksasatya/cohesia-portal/internal/router/modules"
)

// New builds the gin engine with global middleware and every module.
func New(c *container.Container) *gin.Engine {
	cfg := c.Config

	r := gin.New()
	reg := NewRegistry(r)
	reg.Use(
		gin.Recovery(),
		middleware.RealIP(cfg.TrustProxyHeaders),
		middleware.RequestIDMiddleware(),
	)
	if cfg.HTTPLogEnabled {
		reg.Use(middleware.AccessLog(c.Logger))
	}
	// cors.New panics on an empty origin list
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		reg.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
			ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	reg.Use(middleware.SessionLoader(c.Sessions, c.Cookies, c.Logger))

	InitModules(reg, c)
	reg.RegisterAll()
	return r
}

// InitModules adds every application module to the registry in order. The
// page module goes last because it owns the static fallback.
func InitModules(r *Registry, c *container.Container) {
	cfg := c.Config

	r.Add(modules.NewSystemModule(handlers.NewSystemHandler()))
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(c.Auth, c.Cookies, c.Logger), limiterFactory(c)))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(c.Auth, c.Logger)))
	r.Add(modules.NewPageModule(handlers.NewPageHandler(cfg.StaticDir), cfg.LoginPage, cfg.UsersFile))
}

func limiterFactory(c *container.Container) modules.LimiterFactory {
	cfg := c.Config
	if !cfg.RateLimitEnabled {
		return nil
	}
	var allow middleware.AllowFunc
	if cfg.RateLimitSkipPrivate {
		allow = middleware.AllowPrivateIP()
	}
	return func() gin.HandlerFunc {
		return middleware.Limiter(c.Redis, cfg.RateLimitMax, cfg.RateLimitWindow, middleware.KeyByIPAndPath(), allow)
	}
}
