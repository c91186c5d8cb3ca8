package dto

import (
	"time"

	"github.com/qs3c/devmatch_server/internal/pkg/entitlement"
)

// UpdateCompanyRequest 更新企业资料
type UpdateCompanyRequest struct {
	Name          *string `json:"name,omitempty" binding:"omitempty,min=1,max=200"`
	Industry      *string `json:"industry,omitempty" binding:"omitempty,max=100"`
	Description   *string `json:"description,omitempty" binding:"omitempty,max=5000"`
	Website       *string `json:"website,omitempty" binding:"omitempty,max=500"`
	Address       *string `json:"address,omitempty" binding:"omitempty,max=500"`
	EmployeeCount *int    `json:"employee_count,omitempty" binding:"omitempty,min=0"`
}

// SubscriptionStatus 企业订阅与试用状态
type SubscriptionStatus struct {
	Plan                  string                  `json:"plan"`
	ExpiresAt             *time.Time              `json:"expires_at,omitempty"`
	HasActiveSubscription bool                    `json:"has_active_subscription"`
	CanAccessPaidFeatures bool                    `json:"can_access_paid_features"`
	Trial                 entitlement.TrialStatus `json:"trial"`
	WarningMessage        string                  `json:"warning_message,omitempty"`
	HasScoutAccess        bool                    `json:"has_scout_access"`
	ScoutAccessExpiresAt  *time.Time              `json:"scout_access_expires_at,omitempty"`
	CanSendScout          bool                    `json:"can_send_scout"`
}

// QuotaUsage 今日用量，按 UTC 自然日计算
type QuotaUsage struct {
	CanAccessPaidFeatures bool      `json:"can_access_paid_features"`
	CanSendScout          bool      `json:"can_send_scout"`
	JobsToday             int64     `json:"jobs_today"`
	JobLimit              int       `json:"job_limit"`
	ProjectsToday         int64     `json:"projects_today"`
	ProjectLimit          int       `json:"project_limit"`
	ScoutsToday           int64     `json:"scouts_today"`
	ScoutLimit            int       `json:"scout_limit"`
	ResetsAt              time.Time `json:"resets_at"`
}
