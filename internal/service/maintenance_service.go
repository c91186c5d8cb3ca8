package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/devmatch_server/config"
	"github.com/qs3c/devmatch_server/internal/pkg/clock"
	"github.com/qs3c/devmatch_server/internal/pkg/cron"
	"github.com/qs3c/devmatch_server/internal/pkg/email"
	"github.com/qs3c/devmatch_server/internal/pkg/entitlement"
	"github.com/qs3c/devmatch_server/internal/repository"
)

// Sweeper 可主动清理过期条目的缓存，redis 缓存不需要
type Sweeper interface {
	Sweep() int
}

// MaintenanceReport 一次维护运行的结果，dry-run 时为待处理数量
type MaintenanceReport struct {
	DryRun              bool  `json:"dry_run"`
	TrialsDeactivated   int64 `json:"trials_deactivated"`
	ScoutAccessRevoked  int64 `json:"scout_access_revoked"`
	TrialRemindersSent  int   `json:"trial_reminders_sent"`
	VerificationsPurged int64 `json:"verifications_purged"`
	CacheEntriesSwept   int   `json:"cache_entries_swept"`
}

type MaintenanceService struct {
	store   *repository.Store
	cfg     *config.Config
	clock   clock.Clock
	mailer  Mailer
	sweeper Sweeper
	logger  *zap.Logger
}

func NewMaintenanceService(store *repository.Store, cfg *config.Config, clk clock.Clock, mailer Mailer, sweeper Sweeper, logger *zap.Logger) *MaintenanceService {
	return &MaintenanceService{
		store:   store,
		cfg:     cfg,
		clock:   clk,
		mailer:  mailerOrNop(mailer),
		sweeper: sweeper,
		logger:  logger.Named("maintenance"),
	}
}

// Register 注册定时任务：每小时清理过期标记与缓存，每日发送试用提醒并清理验证码
func (s *MaintenanceService) Register(c *cron.Service) {
	c.Hourly("deactivate_expired_trials", func(ctx context.Context) error {
		_, err := s.DeactivateExpiredTrials(ctx, false)
		return err
	})
	c.Hourly("revoke_expired_scout_access", func(ctx context.Context) error {
		_, err := s.RevokeExpiredScoutAccess(ctx, false)
		return err
	})
	c.Hourly("sweep_cache", func(ctx context.Context) error {
		s.SweepCache(false)
		return nil
	})
	c.Daily("trial_reminders", func(ctx context.Context) error {
		_, err := s.SendTrialReminders(ctx, false)
		return err
	})
	c.Daily("purge_verifications", func(ctx context.Context) error {
		_, err := s.PurgeVerifications(ctx, false)
		return err
	})
}

// RunAll 依次执行全部维护任务，供 cmd/cleanup 使用
func (s *MaintenanceService) RunAll(ctx context.Context, dryRun bool) (*MaintenanceReport, error) {
	report := &MaintenanceReport{DryRun: dryRun}
	var err error

	if report.TrialsDeactivated, err = s.DeactivateExpiredTrials(ctx, dryRun); err != nil {
		return report, err
	}
	if report.ScoutAccessRevoked, err = s.RevokeExpiredScoutAccess(ctx, dryRun); err != nil {
		return report, err
	}
	if report.TrialRemindersSent, err = s.SendTrialReminders(ctx, dryRun); err != nil {
		return report, err
	}
	if report.VerificationsPurged, err = s.PurgeVerifications(ctx, dryRun); err != nil {
		return report, err
	}
	report.CacheEntriesSwept = s.SweepCache(dryRun)
	return report, nil
}

// DeactivateExpiredTrials 只清理存储的试用标记，是否过期始终由时钟推导
func (s *MaintenanceService) DeactivateExpiredTrials(_ context.Context, dryRun bool) (int64, error) {
	now := s.clock.Now()
	if dryRun {
		return s.store.Companies.CountExpiredTrials(now)
	}
	n, err := s.store.Companies.DeactivateExpiredTrials(now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired trials deactivated", zap.Int64("count", n))
	}
	return n, nil
}

func (s *MaintenanceService) RevokeExpiredScoutAccess(_ context.Context, dryRun bool) (int64, error) {
	now := s.clock.Now()
	if dryRun {
		return s.store.Companies.CountExpiredScoutAccess(now)
	}
	n, err := s.store.Companies.RevokeExpiredScoutAccess(now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired scout access revoked", zap.Int64("count", n))
	}
	return n, nil
}

// SendTrialReminders 给剩余天数恰好落在提醒阈值那一天的企业发提醒，每日运行一次即每家只提醒一次
func (s *MaintenanceService) SendTrialReminders(_ context.Context, dryRun bool) (int, error) {
	warningDays := s.cfg.Subscription.WarningDays
	if warningDays <= 0 {
		warningDays = entitlement.DefaultWarningDays
	}
	now := s.clock.Now()
	from := now.Add(time.Duration(warningDays-1) * 24 * time.Hour)
	to := now.Add(time.Duration(warningDays) * 24 * time.Hour)

	companies, err := s.store.Companies.ListTrialsEndingBetween(from, to)
	if err != nil {
		return 0, err
	}
	if dryRun {
		return len(companies), nil
	}

	sent := 0
	for _, c := range companies {
		if c.User == nil {
			continue
		}
		days := entitlement.DaysRemaining(c, now)
		s.mailer.Notify(email.TrialEnding(c.User.Email, c.Name, days, s.cfg.Email.BaseURL))
		sent++
	}
	if sent > 0 {
		s.logger.Info("trial reminders queued", zap.Int("count", sent))
	}
	return sent, nil
}

func (s *MaintenanceService) PurgeVerifications(_ context.Context, dryRun bool) (int64, error) {
	now := s.clock.Now()
	if dryRun {
		return s.store.Verifications.CountStale(now)
	}
	n, err := s.store.Verifications.PurgeStale(now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("stale verifications purged", zap.Int64("count", n))
	}
	return n, nil
}

// SweepCache 清理内存缓存中的过期条目；dry-run 或未使用内存缓存时不做任何事
func (s *MaintenanceService) SweepCache(dryRun bool) int {
	if dryRun || s.sweeper == nil {
		return 0
	}
	return s.sweeper.Sweep()
}
