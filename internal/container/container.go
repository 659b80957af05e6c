// Package container builds the application graph once at startup and hands it
// to the router. Nothing in here is a package-level singleton.
package container

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cohesia-portal/config"
	"github.com/oksasatya/cohesia-portal/internal/application"
	repo "github.com/oksasatya/cohesia-portal/internal/domain/repository"
	"github.com/oksasatya/cohesia-portal/internal/infrastructure/gcsbackup"
	"github.com/oksasatya/cohesia-portal/internal/infrastructure/jsonfile"
	"github.com/oksasatya/cohesia-portal/internal/infrastructure/session"
	"github.com/oksasatya/cohesia-portal/pkg/helpers"
)

// Infra holds optional external services. Zero values mean "not configured".
type Infra struct {
	Redis       *redis.Client
	Publisher   application.EventPublisher
	Snapshotter jsonfile.Snapshotter
}

type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	Redis  *redis.Client

	Users        *jsonfile.UserRepository
	SessionStore repo.SessionStore
	MemoryStore  *session.MemoryStore // nil when sessions live in Redis
	Sessions     *application.SessionService
	Auth         *application.AuthService
	Cookies      *helpers.Manager
}

// New wires the services from cfg and the optional infra.
func New(cfg *config.Config, logger *logrus.Logger, infra Infra) *Container {
	users := jsonfile.NewUserRepository(cfg.UsersFile, logger)
	if infra.Snapshotter != nil {
		users.WithSnapshotter(infra.Snapshotter)
	}

	c := &Container{Config: cfg, Logger: logger, Redis: infra.Redis, Users: users}
	if infra.Redis != nil {
		c.SessionStore = session.NewRedisStore(infra.Redis)
	} else {
		c.MemoryStore = session.NewMemoryStore()
		c.SessionStore = c.MemoryStore
	}

	signer := helpers.NewSessionSigner(cfg.SessionSecret, cfg.AppName)
	c.Sessions = application.NewSessionService(c.SessionStore, signer, cfg.SessionTTL, logger)
	c.Auth = application.NewAuthService(users, c.Sessions, infra.Publisher, logger, cfg.PasswordHashing)
	c.Cookies = helpers.NewCookie(cfg.SessionCookieName, cfg.CookieDomain, cfg.CookieSecure)
	return c
}

// Connect dials the external services named in cfg. Redis is required once
// configured; the event queue and snapshot bucket degrade to disabled with a
// warning. The returned cleanup closes whatever was opened.
func Connect(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (Infra, func(), error) {
	var (
		infra   Infra
		closers []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			_ = rdb.Close()
			cleanup()
			return Infra{}, func() {}, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
		infra.Redis = rdb
		helpers.LogInfo(logger, "redis connected", logrus.Fields{"addr": cfg.RedisAddr})
	}

	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEventQueue)
		if err != nil {
			helpers.LogWarn(logger, "rabbitmq unavailable, audit events disabled", err, nil)
		} else {
			closers = append(closers, pub.Close)
			infra.Publisher = pub
			helpers.LogInfo(logger, "audit events enabled", logrus.Fields{"queue": cfg.RabbitMQEventQueue})
		}
	}

	if cfg.GCSBucket != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			helpers.LogWarn(logger, "gcs unavailable, users snapshots disabled", err, nil)
		} else {
			closers = append(closers, func() { _ = gcs.Close() })
			infra.Snapshotter = gcsbackup.New(gcs, cfg.GCSBucket, cfg.GCSPrefix, logger)
			helpers.LogInfo(logger, "users snapshots enabled", logrus.Fields{"bucket": cfg.GCSBucket})
		}
	}

	return infra, cleanup, nil
}
