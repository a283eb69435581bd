package main

import (
	"context"
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/dzikrisyairozi/turborepo-fullstack-starter/config"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/application"
	pginfra "github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/infrastructure/postgres"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/pkg/helpers"
)

var seedUsers = []application.CreateUserInput{
	{Email: "admin@example.com", Name: "Admin User", Role: "ADMIN"},
	{Email: "user@example.com", Name: "Regular User", Role: "USER"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	svc := application.NewService(pginfra.NewUserRepository(pool), nil, nil, logger)
	for _, in := range seedUsers {
		u, err := svc.CreateUser(ctx, in)
		switch {
		case errors.Is(err, application.ErrConflict):
			logger.WithField("email", in.Email).Info("user already seeded")
		case err != nil:
			logger.WithError(err).WithField("email", in.Email).Fatal("failed to seed user")
		default:
			logger.WithFields(logrus.Fields{"id": u.ID, "email": u.Email, "role": u.Role}).Info("seeded user")
		}
	}
}
