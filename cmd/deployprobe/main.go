package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/deployprobe/deployprobe/internal/config"
	"github.com/deployprobe/deployprobe/internal/logging"
	"github.com/deployprobe/deployprobe/internal/server"
	"github.com/deployprobe/deployprobe/internal/storage"
)

func main() {
	// Load env if it exists
	godotenv.Load()

	cfg, err := config.Load("config.json")
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger := logging.Init(cfg.Server.Environment)
	defer logging.Sync()

	// Redis is optional: the limiter falls back to its in-memory store
	// when the configured store is unreachable.
	var redis *storage.RedisClient
	if cfg.RateLimit.Store == "redis" {
		redis, err = storage.NewRedis(
			cfg.Redis.GetRedisAddr(),
			cfg.Redis.Password,
			cfg.Redis.DB,
		)
		if err != nil {
			logger.Warn("redis unavailable, using in-memory rate limiting", zap.Error(err))
		} else {
			defer redis.Close()
			logger.Info("connected to redis", zap.String("addr", cfg.Redis.GetRedisAddr()))
		}
	}

	srv := server.New(cfg, logger, redis)

	go func() {
		addr := ":" + cfg.Server.Port
		if err := srv.Run(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
