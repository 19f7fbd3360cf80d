package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jackyeh168/saveforperks/src/internal/config"
	"github.com/jackyeh168/saveforperks/src/pkg/logger"
)

// Nil 查無 key
var Nil = goredis.Nil

// Client go-redis 的 universal client（單機、sentinel、cluster 共用介面）
type Client = goredis.UniversalClient

// Open 建立連線並 Ping 確認可用
func Open(ctx context.Context, cfg *config.Config) (Client, error) {
	c := goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:    []string{cfg.RedisAddr},
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDatabase,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	logger.Info("redis connected", "addr", cfg.RedisAddr, "db", cfg.RedisDatabase)
	return c, nil
}
