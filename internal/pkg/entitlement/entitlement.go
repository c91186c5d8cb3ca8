// Package entitlement 根据企业的订阅 / 试用字段和当前时间判断付费功能是否可用。
// 全部为纯函数，不修改传入的企业记录。
package entitlement

import (
	"math"
	"time"

	"github.com/qs3c/devmatch_server/internal/model"
)

const day = 24 * time.Hour

// DefaultWarningDays 试用剩余天数不超过该值时进入提醒档
const DefaultWarningDays = 3

// 试用状态
const (
	TrialNone    = "none"
	TrialActive  = "active"
	TrialExpired = "expired"
)

// HasActiveSubscription 付费方案且到期时间在 now 之后
func HasActiveSubscription(c *model.Company, now time.Time) bool {
	if c == nil {
		return false
	}
	return c.SubscriptionPlan != model.PlanFree &&
		c.SubscriptionPlan != "" &&
		c.SubscriptionExpiresAt != nil &&
		c.SubscriptionExpiresAt.After(now)
}

// HasActiveTrial 试用标记有效且结束时间在 now 之后
func HasActiveTrial(c *model.Company, now time.Time) bool {
	if c == nil {
		return false
	}
	return c.IsTrialActive && c.TrialEndDate != nil && c.TrialEndDate.After(now)
}

// CanAccessPaidFeatures 职位发布、项目发布、scout 发送共用的判断
func CanAccessPaidFeatures(c *model.Company, now time.Time) bool {
	return HasActiveSubscription(c, now) || HasActiveTrial(c, now)
}

// HasScoutAccess scout 权限独立于订阅，单独到期
func HasScoutAccess(c *model.Company, now time.Time) bool {
	if c == nil {
		return false
	}
	return c.HasScoutAccess && c.ScoutAccessExpiresAt != nil && c.ScoutAccessExpiresAt.After(now)
}

// CanSendScout 需要付费功能权限和 scout 权限同时有效
func CanSendScout(c *model.Company, now time.Time) bool {
	return CanAccessPaidFeatures(c, now) && HasScoutAccess(c, now)
}

// DaysRemaining 试用剩余天数，向上取整，过期后为 0
func DaysRemaining(c *model.Company, now time.Time) int {
	if c == nil || c.TrialEndDate == nil {
		return 0
	}
	left := c.TrialEndDate.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(float64(left) / float64(day)))
}

// TrialStatus 试用状态快照
type TrialStatus struct {
	Status        string     `json:"status"`
	IsActive      bool       `json:"is_active"`
	DaysRemaining int        `json:"days_remaining"`
	Warning       bool       `json:"warning"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
}

// Trial 计算试用状态。剩余天数为 0 时一律视为过期，不信任存储的 IsTrialActive。
func Trial(c *model.Company, now time.Time, warningDays int) TrialStatus {
	if warningDays <= 0 {
		warningDays = DefaultWarningDays
	}
	if c == nil || (!c.HasUsedTrial && c.TrialEndDate == nil) {
		return TrialStatus{Status: TrialNone}
	}

	ts := TrialStatus{
		StartDate:     c.TrialStartDate,
		EndDate:       c.TrialEndDate,
		DaysRemaining: DaysRemaining(c, now),
	}

	if ts.DaysRemaining <= 0 || !c.IsTrialActive {
		ts.Status = TrialExpired
		ts.DaysRemaining = 0
		return ts
	}

	ts.Status = TrialActive
	ts.IsActive = true
	ts.Warning = ts.DaysRemaining <= warningDays
	return ts
}
