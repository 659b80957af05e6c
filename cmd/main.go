package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cohesia-portal/config"
	"github.com/oksasatya/cohesia-portal/internal/container"
	"github.com/oksasatya/cohesia-portal/internal/router"
	"github.com/oksasatya/cohesia-portal/pkg/helpers"
	"github.com/oksasatya/cohesia-portal/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra, cleanup, err := container.Connect(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to connect infrastructure: %v", err)
	}
	defer cleanup()

	c := container.New(cfg, logger, infra)
	if c.MemoryStore != nil {
		if cfg.SessionSweepInterval > 0 {
			go c.MemoryStore.RunSweeper(ctx, cfg.SessionSweepInterval)
		} else {
			logger.Warn("SESSION_SWEEP_INTERVAL is not positive; expired sessions are dropped on lookup only")
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(c),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.WithFields(logrus.Fields{
			"port":       cfg.Port,
			"static_dir": cfg.StaticDir,
			"users_file": cfg.UsersFile,
		}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
		os.Exit(1)
	}
	logger.Info("server exited properly")
}
