package utils

import (
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/presensi/presensi-server/config"
)

const redisNamespace = "presensi"

var (
	redisClient *redis.Client
	redisMu     sync.Mutex
	redisInit   bool
)

// GetRedis returns the shared Redis client, or nil when no Redis host is configured.
func GetRedis() *redis.Client {
	redisMu.Lock()
	defer redisMu.Unlock()
	if redisInit {
		return redisClient
	}
	redisInit = true

	cfg := config.Get()
	if cfg.RedisHost == "" {
		Sugar.Info("redis disabled, token revocation kept in memory")
		return nil
	}
	redisClient = redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		Sugar.Warnf("redis ping failed, falling back to memory on errors: %v", err)
	}
	return redisClient
}

// CloseRedis releases the client; a later GetRedis reconnects.
func CloseRedis() error {
	redisMu.Lock()
	defer redisMu.Unlock()
	redisInit = false
	if redisClient == nil {
		return nil
	}
	err := redisClient.Close()
	redisClient = nil
	return err
}

// RedisKey joins parts under the application namespace, e.g. presensi:jwt:revoked:<id>.
func RedisKey(parts ...string) string {
	return redisNamespace + ":" + strings.Join(parts, ":")
}
