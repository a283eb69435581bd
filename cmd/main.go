package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/dzikrisyairozi/turborepo-fullstack-starter/config"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/application"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/application/eventhandler"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/container"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/repository"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/infrastructure/archive"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/infrastructure/cache"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/infrastructure/eventbus"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/infrastructure/memory"
	pginfra "github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/infrastructure/postgres"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/infrastructure/search"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/interface/middleware"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/router"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/pkg/helpers"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	// User store
	var repo repository.UserRepository
	if cfg.UsePostgres() {
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to postgres")
		}
		closers = append(closers, pool.Close)
		if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			logger.WithError(err).Fatal("migration failed")
		}
		repo = pginfra.NewUserRepository(pool)
	} else {
		mem, err := memory.NewSeededUserRepository()
		if err != nil {
			logger.WithError(err).Fatal("failed to seed in-memory users")
		}
		repo = mem
	}
	logger.WithField("repository", cfg.UserRepository).Info("user store ready")

	// Redis: read-through cache and rate limiting
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		closers = append(closers, func() { _ = rdb.Close() })
		if cfg.UserCacheTTL > 0 {
			repo = cache.NewUserRepository(repo, cache.NewRedisStore(rdb), cfg.UserCacheTTL, logger)
		}
	}

	deps := eventhandler.Deps{
		Logger:     logger,
		Users:      repo,
		Company:    cfg.CompanyName,
		SupportURL: cfg.SupportURL,
	}

	// Elasticsearch
	var searcher application.UserSearcher
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Fatal("failed to init elasticsearch client")
		}
		if err := helpers.PingES(ctx, es); err != nil {
			logger.WithError(err).Warn("elasticsearch unreachable; indexing and search will fail until it recovers")
		}
		idx := search.NewUserIndex(es, cfg.ESUsersIndex)
		searcher = idx
		deps.Index = idx
	}

	// GCS archive of deleted users
	if cfg.GCSBucket != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Fatal("failed to init GCS client")
		}
		closers = append(closers, func() { _ = gcs.Close() })
		deps.Archive = archive.NewUserArchive(archive.GCSUploader(gcs, cfg.GCSBucket))
	}

	// RabbitMQ: email jobs and the user-events relay
	var relay eventhandler.JSONPublisher
	if cfg.RabbitMQURL != "" {
		mail, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to rabbitmq")
		}
		closers = append(closers, mail.Close)
		deps.Mail = mail

		if cfg.RabbitMQUserEventsQueue != "" {
			events, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQUserEventsQueue)
			if err != nil {
				logger.WithError(err).Fatal("failed to open user events queue")
			}
			closers = append(closers, events.Close)
			relay = events
		}
	}

	bus := eventbus.NewDispatcher(logger, cfg.EventBusBuffer, cfg.EventBusWorkers)
	eventhandler.Register(bus, deps, relay)
	bus.Start()

	// Provide singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetRedis(rdb)
	container.SetUserService(application.NewService(repo, bus, searcher, logger))

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))
	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	if cfg.HTTPLogEnabled {
		// API traffic only; probes stay quiet
		reg.Use(middleware.AccessLog(logger))
	}
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		helpers.LogError(logger, "server forced to shutdown", err, nil)
	}
	// drain queued events before the infrastructure they use is closed
	if err := bus.Close(ctxShutdown); err != nil {
		helpers.LogError(logger, "event bus did not drain", err, logrus.Fields{"timeout": "10s"})
	}
	logger.Info("server exited properly")
}
