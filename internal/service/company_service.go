package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/qs3c/devmatch_server/config"
	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/clock"
	"github.com/qs3c/devmatch_server/internal/pkg/entitlement"
	"github.com/qs3c/devmatch_server/internal/repository"
)

var (
	ErrCompanyNotFound  = errors.New("企业资料不存在")
	ErrTrialAlreadyUsed = errors.New("试用已使用过")
)

type CompanyService struct {
	store *repository.Store
	cfg   *config.Config
	clock clock.Clock
}

func NewCompanyService(store *repository.Store, cfg *config.Config, clk clock.Clock) *CompanyService {
	return &CompanyService{
		store: store,
		cfg:   cfg,
		clock: clk,
	}
}

// GetByUserID 当前企业用户的资料
func (s *CompanyService) GetByUserID(userID int64) (*model.Company, error) {
	company, err := s.store.Companies.GetByUserID(userID)
	if err != nil {
		return nil, notFound(err, ErrCompanyNotFound)
	}
	return company, nil
}

// UpdateProfile 更新企业资料
func (s *CompanyService) UpdateProfile(userID int64, req *dto.UpdateCompanyRequest) (*model.Company, error) {
	company, err := s.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Industry != nil {
		fields["industry"] = *req.Industry
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Website != nil {
		fields["website"] = *req.Website
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.EmployeeCount != nil {
		fields["employee_count"] = *req.EmployeeCount
	}

	if len(fields) > 0 {
		if err := s.store.Companies.UpdateFields(company.ID, fields); err != nil {
			return nil, err
		}
	}
	return s.store.Companies.GetByID(company.ID)
}

// GetSubscription 订阅、试用和 scout 权限状态
func (s *CompanyService) GetSubscription(userID int64) (*dto.SubscriptionStatus, error) {
	company, err := s.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	return s.subscriptionStatus(company), nil
}

// StartTrial 仅在从未使用过试用时开始试用
func (s *CompanyService) StartTrial(userID int64) (*dto.SubscriptionStatus, error) {
	company, err := s.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if company.HasUsedTrial {
		return nil, ErrTrialAlreadyUsed
	}

	now := s.clock.Now()
	started, err := s.store.Companies.StartTrialIfUnused(company.ID, now, now.AddDate(0, 0, s.cfg.Subscription.TrialDays))
	if err != nil {
		return nil, err
	}
	if !started {
		return nil, ErrTrialAlreadyUsed
	}
	return s.GetSubscription(userID)
}

// CancelSubscription 回到 FREE 方案，试用与 scout 权限不受影响
func (s *CompanyService) CancelSubscription(userID int64) (*dto.SubscriptionStatus, error) {
	company, err := s.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	err = s.store.Companies.UpdateFields(company.ID, map[string]interface{}{
		"subscription_plan":       model.PlanFree,
		"subscription_expires_at": nil,
	})
	if err != nil {
		return nil, err
	}
	return s.GetSubscription(userID)
}

func (s *CompanyService) subscriptionStatus(c *model.Company) *dto.SubscriptionStatus {
	now := s.clock.Now()
	trial := entitlement.Trial(c, now, s.cfg.Subscription.WarningDays)
	active := entitlement.HasActiveSubscription(c, now)

	status := &dto.SubscriptionStatus{
		Plan:                  c.SubscriptionPlan,
		ExpiresAt:             c.SubscriptionExpiresAt,
		HasActiveSubscription: active,
		CanAccessPaidFeatures: entitlement.CanAccessPaidFeatures(c, now),
		Trial:                 trial,
		HasScoutAccess:        entitlement.HasScoutAccess(c, now),
		ScoutAccessExpiresAt:  c.ScoutAccessExpiresAt,
		CanSendScout:          entitlement.CanSendScout(c, now),
	}

	switch {
	case active:
	case trial.Warning:
		status.WarningMessage = fmt.Sprintf("免费试用还剩 %d 天，请尽快选择付费方案", trial.DaysRemaining)
	case trial.Status == entitlement.TrialExpired:
		status.WarningMessage = "免费试用已结束，请选择付费方案"
	}
	return status
}
