package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/qs3c/devmatch_server/config"
	"github.com/qs3c/devmatch_server/internal/database"
	"github.com/qs3c/devmatch_server/internal/pkg/email"
	"github.com/qs3c/devmatch_server/internal/pkg/logger"
	"github.com/qs3c/devmatch_server/internal/pkg/queue"
	"github.com/qs3c/devmatch_server/internal/worker"
)

// 邮件 worker：消费 notify.mode=queue 时服务端推入 redis 的邮件
func main() {
	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zlog.Sync()

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis, zlog)
	if err != nil {
		zlog.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()

	if cfg.Notify.Mode != "queue" {
		zlog.Warn("notify.mode is not queue, server sends mail inline and this worker will stay idle",
			zap.String("mode", cfg.Notify.Mode))
	}

	// 创建 context 用于优雅关闭
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mailQueue := queue.NewQueue(rdb, cfg.Queue.MailQueue)
	processor := worker.NewProcessor(email.NewSMTPSender(&cfg.Email), nil, zlog)

	zlog.Info("worker started",
		zap.String("queue", cfg.Queue.MailQueue),
		zap.Int("max_workers", cfg.Queue.MaxWorkers))

	processor.Run(ctx, mailQueue, cfg.Queue.MaxWorkers)
	zlog.Info("worker shutdown complete")
}
