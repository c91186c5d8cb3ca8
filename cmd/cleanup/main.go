package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/qs3c/devmatch_server/config"
	"github.com/qs3c/devmatch_server/internal/database"
	"github.com/qs3c/devmatch_server/internal/pkg/clock"
	"github.com/qs3c/devmatch_server/internal/pkg/email"
	"github.com/qs3c/devmatch_server/internal/pkg/logger"
	"github.com/qs3c/devmatch_server/internal/pkg/notify"
	"github.com/qs3c/devmatch_server/internal/repository"
	"github.com/qs3c/devmatch_server/internal/service"
)

var dryRun = flag.Bool("dry-run", true, "Dry run mode, only count affected records")

// 手动执行一次全部维护任务，与服务端定时任务相同
func main() {
	flag.Parse()

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

	// 连接数据库
	db, err := database.Open(&cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("failed to connect database", zap.Error(err))
	}

	mailer := notify.New(notify.Direct{Sender: email.NewSMTPSender(&cfg.Email)}, cfg.Notify.BufferSize, 1, zlog)
	maintenance := service.NewMaintenanceService(repository.NewStore(db), cfg, clock.Real(), mailer, nil, zlog)

	report, err := maintenance.RunAll(context.Background(), *dryRun)
	// 等待提醒邮件发送完毕
	mailer.Close()
	if err != nil {
		zlog.Fatal("cleanup failed", zap.Error(err))
	}

	zlog.Info("cleanup summary",
		zap.Bool("dry_run", report.DryRun),
		zap.Int64("trials_deactivated", report.TrialsDeactivated),
		zap.Int64("scout_access_revoked", report.ScoutAccessRevoked),
		zap.Int("trial_reminders_sent", report.TrialRemindersSent),
		zap.Int64("verifications_purged", report.VerificationsPurged),
	)
	if *dryRun {
		zlog.Info("dry run mode, nothing was changed; run with -dry-run=false to apply")
	}
}
