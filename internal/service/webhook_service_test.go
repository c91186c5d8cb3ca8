package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/pkg/email"
	"github.com/qs3c/devmatch_server/internal/pkg/events"
	"github.com/qs3c/devmatch_server/internal/pkg/payprovider"
	"github.com/qs3c/devmatch_server/internal/testutil"
)

func paypayBody(paymentID int64, amount, state string) []byte {
	return []byte(fmt.Sprintf(
		`{"merchantPaymentId":"%d","paymentId":"PP-%d","amount":{"amount":%s,"currency":"JPY"},"state":"%s"}`,
		paymentID, paymentID, amount, state))
}

func setupWebhookService(t *testing.T) (*WebhookService, *paymentFixture) {
	t.Helper()
	f := setupPaymentService(t)
	return NewWebhookService(f.svc, payprovider.NewRegistry(f.env.cfg.Payment.Providers)), f
}

func signed(body []byte) string {
	return payprovider.SignPaypay(body, "paypay-secret")
}

func TestWebhookService_CompletesSubscription(t *testing.T) {
	svc, f := setupWebhookService(t)
	payment := testutil.TestPayment(t, f.env.db, f.company.ID)

	body := paypayBody(payment.ID, "3680", "COMPLETED")
	require.NoError(t, svc.Handle(context.Background(), "paypay", body, signed(body)))

	paid := f.reloadPayment(t, payment.ID)
	assert.Equal(t, model.PaymentCompleted, paid.Status)
	require.NotNil(t, paid.TransactionID)
	assert.Equal(t, fmt.Sprintf("PP-%d", payment.ID), *paid.TransactionID)

	company := f.reloadCompany(t)
	assert.Equal(t, model.PlanBasic, company.SubscriptionPlan)
	require.NotNil(t, company.SubscriptionExpiresAt)
	assert.WithinDuration(t, testNow.AddDate(0, 1, 0), *company.SubscriptionExpiresAt, time.Second)
	assert.Equal(t, []events.Type{events.PaymentCompleted}, f.publisher.types())
}

func TestWebhookService_FixedPriceGrantsBasicOnly(t *testing.T) {
	svc, f := setupWebhookService(t)
	payment := testutil.TestPayment(t, f.env.db, f.company.ID, testutil.WithPlan(model.PlanEnterprise))

	body := paypayBody(payment.ID, "3680", "COMPLETED")
	require.NoError(t, svc.Handle(context.Background(), "paypay", body, signed(body)))

	assert.Equal(t, model.PaymentCompleted, f.reloadPayment(t, payment.ID).Status)
	assert.Equal(t, model.PlanBasic, f.reloadCompany(t).SubscriptionPlan)
}

func TestWebhookService_Rejections(t *testing.T) {
	svc, f := setupWebhookService(t)
	ctx := context.Background()
	payment := testutil.TestPayment(t, f.env.db, f.company.ID)
	wechat := testutil.TestPayment(t, f.env.db, f.company.ID, testutil.WithMethod(model.MethodWechat, 168, "CNY"))

	good := paypayBody(payment.ID, "3680", "COMPLETED")

	tests := []struct {
		name      string
		provider  string
		body      []byte
		signature string
		wantErr   error
	}{
		{"unknown provider", "stripe", good, signed(good), payprovider.ErrUnknownProvider},
		{"bad signature", "paypay", good, "forged", payprovider.ErrInvalidSignature},
		{"malformed", "paypay", []byte(`not json`), signed([]byte(`not json`)), payprovider.ErrMalformedPayload},
		{"unknown payment", "paypay", paypayBody(99999, "3680", "COMPLETED"), signed(paypayBody(99999, "3680", "COMPLETED")), ErrPaymentNotFound},
		{"provider mismatch", "paypay", paypayBody(wechat.ID, "168", "COMPLETED"), signed(paypayBody(wechat.ID, "168", "COMPLETED")), ErrProviderMismatch},
		{"amount mismatch", "paypay", paypayBody(payment.ID, "100", "COMPLETED"), signed(paypayBody(payment.ID, "100", "COMPLETED")), ErrAmountMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Handle(ctx, tt.provider, tt.body, tt.signature)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Equal(t, model.PaymentPending, f.reloadPayment(t, payment.ID).Status)
	assert.Equal(t, model.PlanFree, f.reloadCompany(t).SubscriptionPlan)
}

func TestWebhookService_AmountTolerance(t *testing.T) {
	svc, f := setupWebhookService(t)
	payment := testutil.TestPayment(t, f.env.db, f.company.ID)

	body := paypayBody(payment.ID, "3680.005", "COMPLETED")
	require.NoError(t, svc.Handle(context.Background(), "paypay", body, signed(body)))
	assert.Equal(t, model.PaymentCompleted, f.reloadPayment(t, payment.ID).Status)
}

func TestWebhookService_PendingAcknowledged(t *testing.T) {
	svc, f := setupWebhookService(t)
	payment := testutil.TestPayment(t, f.env.db, f.company.ID)

	body := paypayBody(payment.ID, "3680", "CREATED")
	require.NoError(t, svc.Handle(context.Background(), "paypay", body, signed(body)))
	assert.Equal(t, model.PaymentPending, f.reloadPayment(t, payment.ID).Status)
	assert.Empty(t, f.publisher.types())
}

func TestWebhookService_Failed(t *testing.T) {
	svc, f := setupWebhookService(t)
	payment := testutil.TestPayment(t, f.env.db, f.company.ID)

	body := paypayBody(payment.ID, "3680", "FAILED")
	require.NoError(t, svc.Handle(context.Background(), "paypay", body, signed(body)))
	assert.Equal(t, model.PaymentFailed, f.reloadPayment(t, payment.ID).Status)
	assert.Equal(t, model.PlanFree, f.reloadCompany(t).SubscriptionPlan)
	assert.Equal(t, []events.Type{events.PaymentFailed}, f.publisher.types())
}

func TestWebhookService_NoDoubleGrant(t *testing.T) {
	svc, f := setupWebhookService(t)
	ctx := context.Background()
	payment := testutil.TestPayment(t, f.env.db, f.company.ID)

	body := paypayBody(payment.ID, "3680", "COMPLETED")
	require.NoError(t, svc.Handle(ctx, "paypay", body, signed(body)))
	firstExpiry := *f.reloadCompany(t).SubscriptionExpiresAt

	f.env.clock.Advance(48 * time.Hour)
	require.NoError(t, svc.Handle(ctx, "paypay", body, signed(body)))

	failed := paypayBody(payment.ID, "3680", "FAILED")
	require.NoError(t, svc.Handle(ctx, "paypay", failed, signed(failed)))

	assert.Equal(t, model.PaymentCompleted, f.reloadPayment(t, payment.ID).Status)
	assert.WithinDuration(t, firstExpiry, *f.reloadCompany(t).SubscriptionExpiresAt, time.Second)
	assert.Equal(t, []events.Type{events.PaymentCompleted}, f.publisher.types())
}

func TestWebhookService_ThenApprovalDoesNotGrantAgain(t *testing.T) {
	svc, f := setupWebhookService(t)
	ctx := context.Background()
	payment := testutil.TestPayment(t, f.env.db, f.company.ID)

	token := f.requestApproval(t, payment)

	body := paypayBody(payment.ID, "3680", "COMPLETED")
	require.NoError(t, svc.Handle(ctx, "paypay", body, signed(body)))
	firstExpiry := *f.reloadCompany(t).SubscriptionExpiresAt

	f.env.clock.Advance(2 * time.Hour)
	approval, err := f.svc.Approve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalApproved, approval.Status)

	assert.WithinDuration(t, firstExpiry, *f.reloadCompany(t).SubscriptionExpiresAt, time.Second)
	assert.Equal(t,
		[]events.Type{events.PaymentApprovalRequested, events.PaymentCompleted},
		f.publisher.types())
	assert.Len(t, f.env.mailer.byKind(email.KindPaymentResult), 1, "approval after webhook sends no second result mail")

	// webhook 已完成的付款不能再被拒绝
	other := testutil.TestPayment(t, f.env.db, f.company.ID)
	rejectToken := f.requestApproval(t, other)
	otherBody := paypayBody(other.ID, "3680", "COMPLETED")
	require.NoError(t, svc.Handle(ctx, "paypay", otherBody, signed(otherBody)))
	_, err = f.svc.Reject(ctx, rejectToken)
	assert.ErrorIs(t, err, ErrPaymentSettled)
}

func TestWebhookService_FailedClosesPendingApproval(t *testing.T) {
	svc, f := setupWebhookService(t)
	ctx := context.Background()
	payment := testutil.TestPayment(t, f.env.db, f.company.ID)
	token := f.requestApproval(t, payment)

	body := paypayBody(payment.ID, "3680", "FAILED")
	require.NoError(t, svc.Handle(ctx, "paypay", body, signed(body)))

	approval, err := f.env.store.Payments.GetApprovalByPaymentID(payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalRejected, approval.Status)
	require.NotNil(t, approval.ProcessedAt)

	_, err = f.svc.Approve(ctx, token)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.Equal(t, model.PaymentFailed, f.reloadPayment(t, payment.ID).Status)
	assert.Equal(t, model.PlanFree, f.reloadCompany(t).SubscriptionPlan)
}
