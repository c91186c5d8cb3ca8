package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 支付方式
const (
	MethodCredit = "credit"
	MethodWechat = "wechat"
	MethodAlipay = "alipay"
	MethodPayPay = "paypay"
)

// 支付用途。旧数据 purpose 为空时按金额推断。
const (
	PurposeSubscription = "subscription"
	PurposeScout        = "scout"
)

type PaymentStatus string

const (
	PaymentPending         PaymentStatus = "pending"
	PaymentPendingApproval PaymentStatus = "pending_approval"
	PaymentCompleted       PaymentStatus = "completed"
	PaymentFailed          PaymentStatus = "failed"
)

// paymentTransitions 支付状态唯一的迁移表
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:         {PaymentPendingApproval, PaymentCompleted, PaymentFailed},
	PaymentPendingApproval: {PaymentPendingApproval, PaymentCompleted, PaymentFailed},
}

// CanTransition 判断支付状态能否从 from 迁移到 to
func (from PaymentStatus) CanTransition(to PaymentStatus) bool {
	for _, s := range paymentTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// SourcesOf 返回允许迁移到 to 的全部前置状态，用于条件更新
func SourcesOf(to PaymentStatus) []PaymentStatus {
	var sources []PaymentStatus
	for from, targets := range paymentTransitions {
		for _, t := range targets {
			if t == to {
				sources = append(sources, from)
				break
			}
		}
	}
	return sources
}

// IsFinal 终态不再迁移
func (s PaymentStatus) IsFinal() bool {
	return s == PaymentCompleted || s == PaymentFailed
}

type Payment struct {
	ID            int64           `gorm:"primaryKey" json:"id"`
	CompanyID     int64           `gorm:"not null;index" json:"company_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency      string          `gorm:"size:3;not null" json:"currency"`
	Method        string          `gorm:"size:20;not null" json:"method"`
	Plan          string          `gorm:"size:20" json:"plan"`
	Purpose       string          `gorm:"size:20;index" json:"purpose"`
	Status        PaymentStatus   `gorm:"size:20;default:pending;index" json:"status"`
	TransactionID *string         `gorm:"size:100" json:"transaction_id,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

// 旧数据用于区分 scout 购买的价格点
var (
	legacyScoutJPY = decimal.NewFromInt(3000)
	legacyScoutCNY = decimal.NewFromInt(150)
)

// EffectivePurpose 优先使用 purpose 字段，旧数据按金额推断
func (p *Payment) EffectivePurpose() string {
	if p.Purpose != "" {
		return p.Purpose
	}
	switch {
	case p.Currency == "JPY" && p.Amount.Equal(legacyScoutJPY),
		p.Currency == "CNY" && p.Amount.Equal(legacyScoutCNY):
		return PurposeScout
	}
	return PurposeSubscription
}

// ValidMethod 判断支付方式是否受支持
func ValidMethod(method string) bool {
	switch method {
	case MethodCredit, MethodWechat, MethodAlipay, MethodPayPay:
		return true
	}
	return false
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// PaymentApproval 与 Payment 一对一，token 只能使用一次
type PaymentApproval struct {
	ID          int64          `gorm:"primaryKey" json:"id"`
	PaymentID   int64          `gorm:"not null;uniqueIndex" json:"payment_id"`
	Token       string         `gorm:"size:64;not null;uniqueIndex" json:"-"`
	Status      ApprovalStatus `gorm:"size:20;default:pending" json:"status"`
	ExpiresAt   time.Time      `gorm:"not null" json:"expires_at"`
	ProcessedAt *time.Time     `json:"processed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	Payment *Payment `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
}

func (PaymentApproval) TableName() string {
	return "payment_approvals"
}

// IsExpired token 是否已过期
func (a *PaymentApproval) IsExpired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}
