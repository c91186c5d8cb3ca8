package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/devmatch_server/config"
	"github.com/qs3c/devmatch_server/internal/api"
	"github.com/qs3c/devmatch_server/internal/api/handler"
	"github.com/qs3c/devmatch_server/internal/api/middleware"
	"github.com/qs3c/devmatch_server/internal/database"
	"github.com/qs3c/devmatch_server/internal/pkg/cache"
	"github.com/qs3c/devmatch_server/internal/pkg/clock"
	"github.com/qs3c/devmatch_server/internal/pkg/cron"
	"github.com/qs3c/devmatch_server/internal/pkg/email"
	"github.com/qs3c/devmatch_server/internal/pkg/events"
	"github.com/qs3c/devmatch_server/internal/pkg/logger"
	"github.com/qs3c/devmatch_server/internal/pkg/metrics"
	"github.com/qs3c/devmatch_server/internal/pkg/notify"
	"github.com/qs3c/devmatch_server/internal/pkg/oauth"
	"github.com/qs3c/devmatch_server/internal/pkg/oss"
	"github.com/qs3c/devmatch_server/internal/pkg/payprovider"
	"github.com/qs3c/devmatch_server/internal/pkg/pubsub"
	"github.com/qs3c/devmatch_server/internal/pkg/queue"
	"github.com/qs3c/devmatch_server/internal/pkg/session"
	"github.com/qs3c/devmatch_server/internal/pkg/ws"
	"github.com/qs3c/devmatch_server/internal/repository"
	"github.com/qs3c/devmatch_server/internal/service"
)

const shutdownTimeout = 15 * time.Second

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

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 初始化数据库
	db, err := database.Open(&cfg.Database, zlog)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	zlog.Info("database connected", zap.String("driver", cfg.Database.Driver))

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis, zlog)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer rdb.Close()
	zlog.Info("redis connected")

	clk := clock.Real()
	store := repository.NewStore(db)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// 邮件：inline 模式进程内发送，queue 模式交给 cmd/worker
	var deliverer notify.Deliverer = notify.Direct{Sender: email.NewSMTPSender(&cfg.Email)}
	if cfg.Notify.Mode == "queue" {
		deliverer = notify.Queued{Queue: queue.NewQueue(rdb, cfg.Queue.MailQueue)}
	}
	mailer := notify.New(deliverer, cfg.Notify.BufferSize, cfg.Notify.Workers, zlog)
	mailer.OnResult(func(r notify.Result) {
		m.Email(r.Kind, r.Err == nil && !r.Dropped)
	})
	defer mailer.Close()

	// 实时推送：服务可多实例部署，经 redis pub/sub 转发到本机 WebSocket 连接
	hub := ws.NewHub(zlog)
	realtime := pubsub.NewPublisher(rdb)
	go func() {
		err := pubsub.NewSubscriber(rdb).Subscribe(ctx, func(e *pubsub.Event) {
			if err := hub.SendToUser(e.UserID, &ws.Message{Type: e.Type, Data: e.Data}); err != nil {
				zlog.Debug("ws push failed", zap.Int64("user_id", e.UserID), zap.Error(err))
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			zlog.Error("pubsub subscriber stopped", zap.Error(err))
		}
	}()

	publisher := events.New(cfg.Kafka, zlog)
	defer publisher.Close()

	var appCache cache.Cache
	var sweeper service.Sweeper
	if cfg.Cache.Driver == "redis" {
		appCache = cache.NewRedis(rdb)
	} else {
		mem := cache.NewMemory(clk)
		appCache, sweeper = mem, mem
	}

	var uploader service.Uploader
	ossClient, err := oss.NewClient(&cfg.OSS)
	switch {
	case err == nil:
		uploader = ossClient
	case errors.Is(err, oss.ErrNotConfigured):
		zlog.Warn("oss not configured, uploads disabled")
	default:
		return fmt.Errorf("init oss: %w", err)
	}

	github := oauth.NewGithubOAuth(cfg.OAuth.Github)
	var states *oauth.StateStore
	if github.Enabled() {
		states = oauth.NewStateStore(rdb)
	}
	providers := payprovider.NewRegistry(cfg.Payment.Providers)
	sessions := session.NewManager(cfg.Session, time.Duration(cfg.JWT.ExpireHours)*time.Hour)

	// 初始化 Service
	quotaService := service.NewQuotaService(store, cfg, clk)
	authService := service.NewAuthService(store, cfg, clk, mailer, github, zlog)
	companyService := service.NewCompanyService(store, cfg, clk)
	engineerService := service.NewEngineerService(store)
	skillService := service.NewSkillService(store, appCache, cfg)
	jobService := service.NewJobService(store, quotaService, appCache, clk, cfg, zlog)
	applicationService := service.NewApplicationService(store, cfg, clk, mailer, zlog)
	projectService := service.NewProjectService(store, quotaService, clk)
	messageService := service.NewMessageService(store, clk, realtime, zlog)
	scoutService := service.NewScoutService(store, quotaService, cfg, clk, mailer, realtime, m, zlog)
	paymentService := service.NewPaymentService(store, cfg, clk, mailer, realtime, publisher, providers, m, zlog)
	webhookService := service.NewWebhookService(paymentService, providers)
	uploadService := service.NewUploadService(store, cfg, uploader, zlog)
	contactService := service.NewContactService(store, cfg, clk, mailer, zlog)
	maintenanceService := service.NewMaintenanceService(store, cfg, clk, mailer, sweeper, zlog)

	if err := skillService.SeedDefaults(ctx); err != nil {
		zlog.Warn("seed skills failed", zap.Error(err))
	}

	// 定时任务
	scheduler := cron.NewService(zlog)
	maintenanceService.Register(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	// 初始化 Router
	router := api.NewRouter(api.Handlers{
		Auth:        handler.NewAuthHandler(authService, sessions, states, cfg.Email.BaseURL),
		Company:     handler.NewCompanyHandler(companyService, uploadService),
		Engineer:    handler.NewEngineerHandler(engineerService, uploadService),
		Skill:       handler.NewSkillHandler(skillService),
		Job:         handler.NewJobHandler(jobService),
		Application: handler.NewApplicationHandler(applicationService),
		Project:     handler.NewProjectHandler(projectService),
		Message:     handler.NewMessageHandler(messageService),
		Scout:       handler.NewScoutHandler(scoutService),
		Payment:     handler.NewPaymentHandler(paymentService, webhookService),
		Quota:       handler.NewQuotaHandler(quotaService),
		Contact:     handler.NewContactHandler(contactService),
		Admin:       handler.NewAdminHandler(paymentService, contactService),
		WebSocket:   handler.NewWebSocketHandler(hub, cfg.JWT.Secret, sessions, cfg.CORS.AllowedOrigins, zlog),
	}, cfg, sessions, middleware.PaidFeatures(companyService, quotaService), m, zlog)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
