package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/qs3c/devmatch_server/config"
	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/clock"
	"github.com/qs3c/devmatch_server/internal/pkg/email"
	"github.com/qs3c/devmatch_server/internal/pkg/events"
	"github.com/qs3c/devmatch_server/internal/pkg/metrics"
	"github.com/qs3c/devmatch_server/internal/pkg/payprovider"
	"github.com/qs3c/devmatch_server/internal/pkg/pubsub"
	"github.com/qs3c/devmatch_server/internal/repository"
)

var (
	ErrPaymentNotFound      = errors.New("付款记录不存在")
	ErrInvalidPaymentMethod = errors.New("不支持的支付方式")
	ErrInvalidPurpose       = errors.New("无效的付款用途")
	ErrInvalidPlan          = errors.New("无效的订阅方案")
	ErrPaymentSettled       = errors.New("付款已结束，无法再变更")
	ErrApprovalNotFound     = errors.New("审批链接无效")
	ErrApprovalExpired      = errors.New("审批链接已过期")
	ErrAlreadyProcessed     = errors.New("该付款已处理")
)

// approvalTokenBytes 审批 token 的随机字节数
const approvalTokenBytes = 32

type PaymentService struct {
	store     *repository.Store
	cfg       *config.Config
	clock     clock.Clock
	mailer    Mailer
	realtime  Realtime
	events    events.Publisher
	providers *payprovider.Registry
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewPaymentService(
	store *repository.Store,
	cfg *config.Config,
	clk clock.Clock,
	mailer Mailer,
	realtime Realtime,
	publisher events.Publisher,
	providers *payprovider.Registry,
	m *metrics.Metrics,
	logger *zap.Logger,
) *PaymentService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &PaymentService{
		store:     store,
		cfg:       cfg,
		clock:     clk,
		mailer:    mailerOrNop(mailer),
		realtime:  realtimeOrNop(realtime),
		events:    publisher,
		providers: providers,
		metrics:   m,
		logger:    logger.Named("payment"),
	}
}

// Checkout 按价格表创建待支付记录，非信用卡方式返回支付二维码
func (s *PaymentService) Checkout(userID int64, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	company, err := s.store.Companies.GetByUserID(userID)
	if err != nil {
		return nil, notFound(err, ErrCompanyNotFound)
	}
	if !model.ValidMethod(req.Method) {
		return nil, ErrInvalidPaymentMethod
	}

	plan := ""
	switch req.Purpose {
	case model.PurposeSubscription:
		plan = req.Plan
		if plan == "" {
			plan = model.PlanBasic
		}
		if !model.ValidPlan(plan) {
			return nil, ErrInvalidPlan
		}
		// 扫码支付只有一个订阅价格，仅售 BASIC
		if req.Method != model.MethodCredit && plan != model.PlanBasic {
			return nil, ErrInvalidPlan
		}
	case model.PurposeScout:
	default:
		return nil, ErrInvalidPurpose
	}

	amount, currency, err := s.price(req.Method, req.Purpose, plan)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	payment := &model.Payment{
		CompanyID: company.ID,
		Amount:    amount,
		Currency:  currency,
		Method:    req.Method,
		Plan:      plan,
		Purpose:   req.Purpose,
		Status:    model.PaymentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Payments.Create(payment); err != nil {
		return nil, err
	}
	s.metrics.PaymentTransition(payment.Method, string(model.PaymentPending))

	resp := &dto.CheckoutResponse{Payment: payment}
	if payment.Method == model.MethodCredit || s.providers == nil {
		return resp, nil
	}

	provider, err := s.providers.Get(payment.Method)
	if err != nil {
		return nil, err
	}
	resp.PaymentURL = provider.PaymentURL(payment.ID, payment.Amount, payment.Currency)
	qr, err := payprovider.QRCodeDataURL(resp.PaymentURL)
	if err != nil {
		s.logger.Warn("generate qr code failed", zap.Int64("payment_id", payment.ID), zap.Error(err))
		return resp, nil
	}
	resp.QRCode = qr
	return resp, nil
}

// Get 企业查看自己的付款
func (s *PaymentService) Get(userID, id int64) (*model.Payment, error) {
	company, err := s.store.Companies.GetByUserID(userID)
	if err != nil {
		return nil, notFound(err, ErrCompanyNotFound)
	}
	payment, err := s.store.Payments.GetByID(id)
	if err != nil {
		return nil, notFound(err, ErrPaymentNotFound)
	}
	if payment.CompanyID != company.ID {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

func (s *PaymentService) List(userID int64, page repository.Page) ([]*model.Payment, int64, error) {
	company, err := s.store.Companies.GetByUserID(userID)
	if err != nil {
		return nil, 0, notFound(err, ErrCompanyNotFound)
	}
	return s.store.Payments.ListByCompany(company.ID, page)
}

// RequestApproval 付款方自报已支付：付款进入 pending_approval，生成新的审批 token 并通知管理员。
// 已完成的付款直接返回当前记录。
func (s *PaymentService) RequestApproval(ctx context.Context, userID, paymentID int64) (*dto.ApprovalResponse, error) {
	payment, err := s.Get(userID, paymentID)
	if err != nil {
		return nil, err
	}
	switch payment.Status {
	case model.PaymentCompleted:
		return &dto.ApprovalResponse{Payment: payment, AlreadyCompleted: true}, nil
	case model.PaymentFailed:
		return nil, ErrPaymentSettled
	}

	token, err := generateToken(approvalTokenBytes)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	expiresAt := now.Add(time.Duration(s.cfg.Payment.ApprovalTTLHours) * time.Hour)

	var approval *model.PaymentApproval
	err = s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		ok, err := tx.Payments.TransitionStatus(payment.ID, model.PaymentPendingApproval, map[string]interface{}{"updated_at": now})
		if err != nil {
			return err
		}
		if !ok {
			return ErrPaymentSettled
		}
		err = tx.Payments.UpsertApproval(&model.PaymentApproval{
			PaymentID: payment.ID,
			Token:     token,
			Status:    model.ApprovalPending,
			ExpiresAt: expiresAt,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		approval, err = tx.Payments.GetApprovalByPaymentID(payment.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	payment.Status = model.PaymentPendingApproval

	company, err := s.store.Companies.GetByID(payment.CompanyID)
	companyName := ""
	if err == nil {
		companyName = company.Name
	}
	s.mailer.Notify(email.PaymentApprovalRequest(s.cfg.Email.AdminEmail, email.ApprovalRequest{
		PaymentID:   payment.ID,
		CompanyName: companyName,
		Amount:      payment.Amount.StringFixed(2),
		Currency:    payment.Currency,
		Method:      payment.Method,
		Purpose:     payment.EffectivePurpose(),
		ApproveURL:  s.approvalURL("approve", token),
		RejectURL:   s.approvalURL("reject", token),
		ExpiresAt:   expiresAt.Format("2006-01-02 15:04 MST"),
	}))
	s.publish(events.PaymentApprovalRequested, payment, "approval", now)
	s.metrics.PaymentTransition(payment.Method, string(model.PaymentPendingApproval))

	return &dto.ApprovalResponse{
		Payment:        payment,
		ApprovalStatus: string(approval.Status),
		ExpiresAt:      &approval.ExpiresAt,
	}, nil
}

// Approve 管理员通过审批链接确认付款。审批、付款和权益授予在同一事务中完成。
// 已处理的 token 返回当前审批记录和 ErrAlreadyProcessed。
func (s *PaymentService) Approve(ctx context.Context, token string) (*model.PaymentApproval, error) {
	return s.decide(ctx, token, model.ApprovalApproved)
}

// Reject 管理员拒绝付款，付款置为 failed，不改变企业权益
func (s *PaymentService) Reject(ctx context.Context, token string) (*model.PaymentApproval, error) {
	return s.decide(ctx, token, model.ApprovalRejected)
}

func (s *PaymentService) decide(ctx context.Context, token string, to model.ApprovalStatus) (*model.PaymentApproval, error) {
	if token == "" {
		return nil, ErrApprovalNotFound
	}
	approval, err := s.store.Payments.GetApprovalByToken(token)
	if err != nil {
		return nil, notFound(err, ErrApprovalNotFound)
	}

	now := s.clock.Now()
	if approval.IsExpired(now) {
		return approval, ErrApprovalExpired
	}
	if approval.Status != model.ApprovalPending {
		return approval, ErrAlreadyProcessed
	}

	target := model.PaymentCompleted
	if to == model.ApprovalRejected {
		target = model.PaymentFailed
	}

	var payment *model.Payment
	granted := false
	err = s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		ok, err := tx.Payments.TransitionApproval(approval.ID, model.ApprovalPending, to, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyProcessed
		}

		fields := map[string]interface{}{"updated_at": now}
		if target == model.PaymentCompleted {
			fields["transaction_id"] = "APPROVAL-" + uuid.NewString()
			fields["paid_at"] = now
		}
		ok, err = tx.Payments.TransitionStatus(approval.PaymentID, target, fields)
		if err != nil {
			return err
		}

		payment, err = tx.Payments.GetByID(approval.PaymentID)
		if err != nil {
			return err
		}
		if !ok {
			// 支付渠道回调已先完成该付款，权益已授予
			if payment.Status == model.PaymentCompleted && target == model.PaymentCompleted {
				return nil
			}
			return ErrPaymentSettled
		}

		if target == model.PaymentCompleted {
			granted = true
			return grantEntitlement(tx, s.cfg, payment, now)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyProcessed) {
			if fresh, ferr := s.store.Payments.GetApprovalByToken(token); ferr == nil {
				return fresh, err
			}
		}
		approval.Payment = payment
		return approval, err
	}

	approval.Status = to
	approval.ProcessedAt = &now
	approval.Payment = payment

	if target == model.PaymentCompleted {
		if granted {
			s.publish(events.PaymentCompleted, payment, "approval", now)
			s.metrics.PaymentTransition(payment.Method, string(model.PaymentCompleted))
		}
	} else {
		s.publish(events.PaymentFailed, payment, "approval", now)
		s.metrics.PaymentTransition(payment.Method, string(model.PaymentFailed))
	}
	if granted || target == model.PaymentFailed {
		s.notifyResult(ctx, payment, target == model.PaymentCompleted)
	}
	return approval, nil
}

// ExpectedAmount 回调金额应与之比对的价格；信用卡以存储金额为准
func (s *PaymentService) ExpectedAmount(p *model.Payment) (decimal.Decimal, error) {
	if p.Method == model.MethodCredit {
		return p.Amount, nil
	}
	price, ok := s.cfg.Payment.Prices[p.Method]
	if !ok {
		return decimal.Zero, ErrInvalidPaymentMethod
	}
	if p.EffectivePurpose() == model.PurposeScout {
		return decimal.NewFromFloat(price.Scout), nil
	}
	return decimal.NewFromFloat(price.Subscription), nil
}

func (s *PaymentService) price(method, purpose, plan string) (decimal.Decimal, string, error) {
	if method == model.MethodCredit {
		if purpose == model.PurposeScout {
			return decimal.NewFromFloat(s.cfg.Payment.ScoutPrice), "JPY", nil
		}
		price, ok := s.cfg.Payment.PlanPrices[plan]
		if !ok {
			return decimal.Zero, "", ErrInvalidPlan
		}
		return decimal.NewFromFloat(price), "JPY", nil
	}

	price, ok := s.cfg.Payment.Prices[method]
	if !ok {
		return decimal.Zero, "", ErrInvalidPaymentMethod
	}
	if purpose == model.PurposeScout {
		return decimal.NewFromFloat(price.Scout), price.Currency, nil
	}
	return decimal.NewFromFloat(price.Subscription), price.Currency, nil
}

func (s *PaymentService) approvalURL(action, token string) string {
	return fmt.Sprintf("%s/admin/payments/%s?token=%s", s.cfg.Email.BaseURL, action, url.QueryEscape(token))
}

func (s *PaymentService) publish(t events.Type, p *model.Payment, source string, now time.Time) {
	s.events.Publish(paymentEvent(t, p, source, now))
}

// notifyResult 通知企业付款结果（邮件 + 站内推送）
func (s *PaymentService) notifyResult(ctx context.Context, p *model.Payment, approved bool) {
	company, err := s.store.Companies.GetByID(p.CompanyID)
	if err != nil {
		s.logger.Warn("load company for payment result failed", zap.Int64("payment_id", p.ID), zap.Error(err))
		return
	}
	if company.User != nil {
		s.mailer.Notify(email.PaymentResult(company.User.Email, company.Name, p.ID, approved))
	}
	if err := s.realtime.Publish(ctx, company.UserID, pubsub.EventPaymentStatus, p); err != nil {
		s.logger.Warn("push payment status failed", zap.Int64("payment_id", p.ID), zap.Error(err))
	}
}

// grantEntitlement 按付款用途授予权益：scout 权限从现在起 N 天；订阅设为付款方案，到期时间为现在起一个月（不累加）。
// 固定价格的扫码支付只授予 BASIC。
func grantEntitlement(tx *repository.Store, cfg *config.Config, p *model.Payment, now time.Time) error {
	if p.EffectivePurpose() == model.PurposeScout {
		return tx.Companies.UpdateFields(p.CompanyID, map[string]interface{}{
			"has_scout_access":        true,
			"scout_access_expires_at": now.AddDate(0, 0, cfg.Subscription.ScoutAccessDays),
		})
	}

	plan := p.Plan
	if !model.ValidPlan(plan) || p.Method != model.MethodCredit {
		plan = model.PlanBasic
	}
	return tx.Companies.UpdateFields(p.CompanyID, map[string]interface{}{
		"subscription_plan":       plan,
		"subscription_expires_at": now.AddDate(0, 1, 0),
	})
}

func paymentEvent(t events.Type, p *model.Payment, source string, now time.Time) events.Event {
	return events.Event{
		Type:       t,
		PaymentID:  p.ID,
		CompanyID:  p.CompanyID,
		Method:     p.Method,
		Purpose:    p.EffectivePurpose(),
		Amount:     p.Amount.StringFixed(2),
		Currency:   p.Currency,
		Source:     source,
		OccurredAt: now,
	}
}
