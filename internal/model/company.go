package model

import (
	"time"
)

// 订阅方案
const (
	PlanFree       = "FREE"
	PlanBasic      = "BASIC"
	PlanPremium    = "PREMIUM"
	PlanEnterprise = "ENTERPRISE"
)

// ValidPlan 判断是否为付费方案
func ValidPlan(plan string) bool {
	switch plan {
	case PlanBasic, PlanPremium, PlanEnterprise:
		return true
	}
	return false
}

type Company struct {
	ID                    int64      `gorm:"primaryKey" json:"id"`
	UserID                int64      `gorm:"not null;uniqueIndex" json:"user_id"`
	Name                  string     `gorm:"size:200;not null" json:"name"`
	Industry              string     `gorm:"size:100" json:"industry"`
	Description           string     `gorm:"type:text" json:"description"`
	Website               string     `gorm:"size:500" json:"website"`
	Address               string     `gorm:"size:500" json:"address"`
	LogoURL               string     `gorm:"size:500" json:"logo_url"`
	EmployeeCount         int        `json:"employee_count"`
	SubscriptionPlan      string     `gorm:"size:20;default:FREE" json:"subscription_plan"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at,omitempty"`
	IsTrialActive         bool       `gorm:"default:false" json:"is_trial_active"`
	TrialStartDate        *time.Time `json:"trial_start_date,omitempty"`
	TrialEndDate          *time.Time `gorm:"index" json:"trial_end_date,omitempty"`
	HasUsedTrial          bool       `gorm:"default:false" json:"has_used_trial"`
	HasScoutAccess        bool       `gorm:"default:false" json:"has_scout_access"`
	ScoutAccessExpiresAt  *time.Time `json:"scout_access_expires_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Company) TableName() string {
	return "companies"
}
