package main

import (
	"context"

	config "github.com/NordCoder/crmdesk/internal/config/api-gateway"
	pg "github.com/NordCoder/crmdesk/internal/repository/postgres"
	redisrepo "github.com/NordCoder/crmdesk/internal/repository/redis"
	goredis "github.com/redis/go-redis/v9"
)

func initDB(ctx context.Context, cfg *config.Config) (*pg.DB, error) {
	return pg.NewDB(ctx, cfg.DB)
}

func initRedis(ctx context.Context, cfg *config.Config) (*goredis.Client, error) {
	return redisrepo.NewClient(ctx, cfg.Redis)
}
