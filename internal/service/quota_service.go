package service

import (
	"errors"
	"time"

	"github.com/qs3c/devmatch_server/config"
	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/clock"
	"github.com/qs3c/devmatch_server/internal/pkg/entitlement"
	"github.com/qs3c/devmatch_server/internal/repository"
)

var (
	ErrSubscriptionRequired = errors.New("该功能需要有效的订阅或试用")
	ErrScoutAccessRequired  = errors.New("发送 scout 需要有效的 scout 权限")
	ErrDailyLimitExceeded   = errors.New("今日发布数量已达上限")
	ErrScoutLimitExceeded   = errors.New("今日 scout 发送数量已达上限")
)

// QuotaService 付费功能门槛与每日上限
type QuotaService struct {
	store *repository.Store
	cfg   *config.Config
	clock clock.Clock
}

func NewQuotaService(store *repository.Store, cfg *config.Config, clk clock.Clock) *QuotaService {
	return &QuotaService{
		store: store,
		cfg:   cfg,
		clock: clk,
	}
}

// CheckPaidFeatures 订阅或试用有效
func (s *QuotaService) CheckPaidFeatures(company *model.Company) error {
	if !entitlement.CanAccessPaidFeatures(company, s.clock.Now()) {
		return ErrSubscriptionRequired
	}
	return nil
}

// CheckJobPosting 检查职位发布权限与今日上限
func (s *QuotaService) CheckJobPosting(company *model.Company) error {
	if err := s.CheckPaidFeatures(company); err != nil {
		return err
	}
	count, err := s.store.Jobs.CountCreatedSince(company.ID, startOfDay(s.clock.Now()))
	if err != nil {
		return err
	}
	if count >= int64(s.cfg.Posting.DailyJobLimit) {
		return ErrDailyLimitExceeded
	}
	return nil
}

// CheckProjectPosting 检查项目发布权限与今日上限
func (s *QuotaService) CheckProjectPosting(company *model.Company) error {
	if err := s.CheckPaidFeatures(company); err != nil {
		return err
	}
	count, err := s.store.Projects.CountCreatedSince(company.ID, startOfDay(s.clock.Now()))
	if err != nil {
		return err
	}
	if count >= int64(s.cfg.Posting.DailyProjectLimit) {
		return ErrDailyLimitExceeded
	}
	return nil
}

// CheckScout 检查 scout 权限
func (s *QuotaService) CheckScout(company *model.Company) error {
	now := s.clock.Now()
	if !entitlement.CanAccessPaidFeatures(company, now) {
		return ErrSubscriptionRequired
	}
	if !entitlement.HasScoutAccess(company, now) {
		return ErrScoutAccessRequired
	}
	return nil
}

// ScoutRemaining 检查 scout 权限并返回今日剩余可发送数
func (s *QuotaService) ScoutRemaining(company *model.Company) (int, error) {
	if err := s.CheckScout(company); err != nil {
		return 0, err
	}
	count, err := s.store.Scouts.CountSentSince(company.ID, startOfDay(s.clock.Now()))
	if err != nil {
		return 0, err
	}
	remaining := s.cfg.Scout.DailyLimit - int(count)
	if remaining <= 0 {
		return 0, ErrScoutLimitExceeded
	}
	return remaining, nil
}

// Usage 今日已用量与上限，供企业控制台显示
func (s *QuotaService) Usage(userID int64) (*dto.QuotaUsage, error) {
	company, err := s.store.Companies.GetByUserID(userID)
	if err != nil {
		return nil, notFound(err, ErrCompanyNotFound)
	}
	since := startOfDay(s.clock.Now())

	jobs, err := s.store.Jobs.CountCreatedSince(company.ID, since)
	if err != nil {
		return nil, err
	}
	projects, err := s.store.Projects.CountCreatedSince(company.ID, since)
	if err != nil {
		return nil, err
	}
	scouts, err := s.store.Scouts.CountSentSince(company.ID, since)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	return &dto.QuotaUsage{
		CanAccessPaidFeatures: entitlement.CanAccessPaidFeatures(company, now),
		CanSendScout:          entitlement.CanSendScout(company, now),
		JobsToday:             jobs,
		JobLimit:              s.cfg.Posting.DailyJobLimit,
		ProjectsToday:         projects,
		ProjectLimit:          s.cfg.Posting.DailyProjectLimit,
		ScoutsToday:           scouts,
		ScoutLimit:            s.cfg.Scout.DailyLimit,
		ResetsAt:              since.Add(24 * time.Hour),
	}, nil
}
