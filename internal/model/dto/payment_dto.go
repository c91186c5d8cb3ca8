package dto

import (
	"time"

	"github.com/qs3c/devmatch_server/internal/model"
)

// CheckoutRequest 创建付款
type CheckoutRequest struct {
	Method  string `json:"method" binding:"required,oneof=credit wechat alipay paypay"`
	Purpose string `json:"purpose" binding:"required,oneof=subscription scout"`
	Plan    string `json:"plan" binding:"omitempty,oneof=BASIC PREMIUM ENTERPRISE"`
}

// CheckoutResponse 付款与支付二维码
type CheckoutResponse struct {
	Payment    *model.Payment `json:"payment"`
	PaymentURL string         `json:"payment_url,omitempty"`
	QRCode     string         `json:"qr_code,omitempty"`
}

// ApprovalResponse 审批申请结果
type ApprovalResponse struct {
	Payment          *model.Payment `json:"payment"`
	ApprovalStatus   string         `json:"approval_status,omitempty"`
	ExpiresAt        *time.Time     `json:"expires_at,omitempty"`
	AlreadyCompleted bool           `json:"already_completed"`
}
