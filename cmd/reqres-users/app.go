package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/reqres-client/internal/config"
	"github.com/Sternrassler/reqres-client/pkg/cache"
	"github.com/Sternrassler/reqres-client/pkg/client"
	"github.com/Sternrassler/reqres-client/pkg/logging"
	"github.com/Sternrassler/reqres-client/pkg/user"
)

// userService is the part of *user.Service the commands use.
type userService interface {
	GetUserByID(ctx context.Context, id int) (user.User, bool, error)
	GetAllUsers(ctx context.Context) ([]user.User, error)
}

// app holds the wired dependencies for one command run.
type app struct {
	cfg    *config.Config
	users  userService
	redis  *redis.Client
	logger zerolog.Logger
}

// newApp wires transport, cache and service from cfg.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logging.Setup(cfg.LoggingConfig())
	logger := logging.NewLogger("reqres-users")

	transport, err := client.New(cfg.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}

	var c cache.Cache
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.redis.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
		c = cache.NewRedis(a.redis, cfg.Redis.Prefix)
	default:
		c = cache.NewMemory()
	}

	svc, err := user.NewService(transport, c, user.Config{CacheTTL: cfg.CacheTTL()})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create user service: %w", err)
	}
	a.users = svc

	logger.Debug().
		Str("base_url", transport.BaseURL()).
		Str("cache_backend", cfg.Cache.Backend).
		Dur("cache_ttl", cfg.CacheTTL()).
		Msg("Application wired")

	return a, nil
}

// Close releases the Redis connection if one was opened.
func (a *app) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
