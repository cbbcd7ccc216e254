// @title                       Personnel Directory API
// @version                     1.0
// @description                 Account registration, JWT authentication and role-based access to the employee directory.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/staffdesk/personnel-directory/internal/api"
	"github.com/staffdesk/personnel-directory/internal/api/handler"
	"github.com/staffdesk/personnel-directory/internal/core/service"
	"github.com/staffdesk/personnel-directory/internal/infrastructure/db/mongo"
	"github.com/staffdesk/personnel-directory/internal/infrastructure/db/redis"
	"github.com/staffdesk/personnel-directory/internal/infrastructure/security"
	"github.com/staffdesk/personnel-directory/internal/pkg/config"
	"github.com/staffdesk/personnel-directory/pkg/logger"
)

const serviceName = "personnel-directory"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: serviceName,
		Env:     cfg.Env,
	})

	if err := run(ctx, cfg); err != nil {
		l := logger.Get()
		l.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	// --- Storage ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	accountRepo := mongo.NewAccountRepository(db)
	if err := accountRepo.EnsureIndexes(ctx); err != nil {
		return err
	}

	redisClient, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	if redisClient == nil {
		log.Warn().Msg("REDIS_ADDR not set, login throttling disabled")
	} else {
		defer redisClient.Close()
	}

	// --- Core ---
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens, err := security.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	accounts := service.NewAccountService(accountRepo, hasher, tokens, log, service.AccountOptions{
		RedactSalaryForEmployees: cfg.Auth.RedactSalary,
	})

	if cfg.Bootstrap.Enabled {
		seeded, err := service.NewBootstrap(accountRepo, hasher, log).Run(ctx,
			service.DefaultSeedAccounts(cfg.Bootstrap.AdminPassword, cfg.Bootstrap.EmployeePassword))
		if err != nil {
			return err
		}
		log.Info().Int("created", seeded).Msg("bootstrap complete")
	}

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Accounts: accounts,
		Tokens:   tokens,
		Limiter:  redis.NewLoginThrottle(redisClient, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow),

		RegisterLimit:  cfg.Auth.RegisterRateLimit,
		RegisterWindow: cfg.Auth.RegisterRateWindow,

		Checks: readinessChecks(mongoClient, redisClient),
		Log:    log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func readinessChecks(client *mongodriver.Client, rdb *goredis.Client) []handler.DependencyCheck {
	checks := []handler.DependencyCheck{{
		Name: "mongodb",
		Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) },
	}}
	if rdb != nil {
		checks = append(checks, handler.DependencyCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	return checks
}
