package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/pkg/events"
	"github.com/qs3c/devmatch_server/internal/pkg/payprovider"
	"github.com/qs3c/devmatch_server/internal/repository"
)

var (
	ErrAmountMismatch   = errors.New("回调金额与价格不符")
	ErrProviderMismatch = errors.New("回调渠道与付款方式不符")
)

// amountTolerance 回调金额允许的误差
var amountTolerance = decimal.NewFromFloat(0.01)

// webhook 处理结果，用作指标标签
const (
	webhookCompleted    = "completed"
	webhookFailed       = "failed"
	webhookPending      = "pending"
	webhookNoop         = "noop"
	webhookBadSignature = "bad_signature"
	webhookRejected     = "rejected"
	webhookError        = "error"
)

// WebhookService 处理支付渠道的异步回调，与人工审批共用同一套状态迁移和权益授予
type WebhookService struct {
	payments  *PaymentService
	providers *payprovider.Registry
}

func NewWebhookService(payments *PaymentService, providers *payprovider.Registry) *WebhookService {
	return &WebhookService{payments: payments, providers: providers}
}

// Handle 校验签名后按回调结果迁移付款状态。
// 已被另一条路径结算的付款直接确认，不重复授予权益。
func (s *WebhookService) Handle(ctx context.Context, providerName string, body []byte, signature string) error {
	p := s.payments
	result := webhookError
	defer func() { p.metrics.Webhook(providerName, result) }()

	provider, err := s.providers.Get(providerName)
	if err != nil {
		result = webhookRejected
		return err
	}
	if err := provider.Verify(body, signature); err != nil {
		result = webhookBadSignature
		p.logger.Warn("webhook signature rejected", zap.String("provider", providerName), zap.Error(err))
		return err
	}
	n, err := provider.Parse(body)
	if err != nil {
		result = webhookRejected
		return err
	}

	payment, err := p.store.Payments.GetByID(n.PaymentID)
	if err != nil {
		result = webhookRejected
		return notFound(err, ErrPaymentNotFound)
	}
	if payment.Method != provider.Name() {
		result = webhookRejected
		return ErrProviderMismatch
	}

	if n.Status == payprovider.StatusPending {
		result = webhookPending
		return nil
	}

	expected, err := p.ExpectedAmount(payment)
	if err != nil {
		return err
	}
	if n.Amount.Sub(expected).Abs().GreaterThan(amountTolerance) {
		result = webhookRejected
		p.logger.Warn("webhook amount mismatch",
			zap.Int64("payment_id", payment.ID),
			zap.String("expected", expected.StringFixed(2)),
			zap.String("received", n.Amount.StringFixed(2)))
		return ErrAmountMismatch
	}

	now := p.clock.Now()
	target := model.PaymentCompleted
	if n.Status == payprovider.StatusFailed {
		target = model.PaymentFailed
	}

	applied := false
	err = p.store.WithTransaction(ctx, func(tx *repository.Store) error {
		fields := map[string]interface{}{"updated_at": now}
		if target == model.PaymentCompleted {
			fields["paid_at"] = now
			if n.TransactionID != "" {
				fields["transaction_id"] = n.TransactionID
			}
		}
		ok, err := tx.Payments.TransitionStatus(payment.ID, target, fields)
		if err != nil || !ok {
			return err
		}
		applied = true
		if target == model.PaymentCompleted {
			return grantEntitlement(tx, p.cfg, payment, now)
		}
		// 渠道判定失败后，未处理的审批链接随之作废
		_, err = tx.Payments.ClosePendingApproval(payment.ID, model.ApprovalRejected, now)
		return err
	})
	if err != nil {
		return err
	}
	if !applied {
		result = webhookNoop
		p.logger.Info("webhook for settled payment acknowledged",
			zap.Int64("payment_id", payment.ID), zap.String("status", string(n.Status)))
		return nil
	}

	payment.Status = target
	if target == model.PaymentCompleted {
		result = webhookCompleted
		p.publish(events.PaymentCompleted, payment, "webhook", now)
	} else {
		result = webhookFailed
		p.publish(events.PaymentFailed, payment, "webhook", now)
	}
	p.metrics.PaymentTransition(payment.Method, string(target))
	p.notifyResult(ctx, payment, target == model.PaymentCompleted)
	return nil
}
