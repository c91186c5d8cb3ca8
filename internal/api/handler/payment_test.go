package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/payprovider"
	"github.com/qs3c/devmatch_server/internal/pkg/response"
	"github.com/qs3c/devmatch_server/internal/service"
	"github.com/qs3c/devmatch_server/internal/testutil"
)

type paymentRouter struct {
	*gin.Engine
	env      *testEnv
	payments *service.PaymentService
}

func setupPaymentRouter(t *testing.T) *paymentRouter {
	t.Helper()
	env := newTestEnv(t)
	payments := env.paymentService(t)
	webhooks := service.NewWebhookService(payments, payprovider.NewRegistry(env.cfg.Payment.Providers))
	h := NewPaymentHandler(payments, webhooks)
	admin := NewAdminHandler(payments, nil)

	router := gin.New()
	router.POST("/webhooks/payment", h.Webhook)
	router.GET("/admin/payments/approve", admin.ApprovePayment)
	router.GET("/admin/payments/reject", admin.RejectPayment)

	authed := router.Group("", env.auth())
	authed.POST("/payments/checkout", h.Checkout)
	authed.GET("/payments/:id", h.Get)
	authed.POST("/payments/:id/request-approval", h.RequestApproval)

	return &paymentRouter{Engine: router, env: env, payments: payments}
}

func (r *paymentRouter) webhook(provider, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/webhooks/payment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderPaymentProvider, provider)
	req.Header.Set(HeaderPaymentSignature, signature)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func paypayEvent(paymentID int64, amount, state string) string {
	return fmt.Sprintf(
		`{"merchantPaymentId":"%d","paymentId":"PP-%d","amount":{"amount":%s,"currency":"JPY"},"state":"%s"}`,
		paymentID, paymentID, amount, state)
}

func sign(body string) string {
	return payprovider.SignPaypay([]byte(body), "paypay-secret")
}

func TestPaymentHandler_Webhook(t *testing.T) {
	r := setupPaymentRouter(t)
	company := testutil.TestCompany(t, r.env.db)
	payment := testutil.TestPayment(t, r.env.db, company.ID)
	wechat := testutil.TestPayment(t, r.env.db, company.ID, testutil.WithMethod(model.MethodWechat, 168, "CNY"))

	good := paypayEvent(payment.ID, "3680", "COMPLETED")
	missing := paypayEvent(99999, "3680", "COMPLETED")
	cheap := paypayEvent(payment.ID, "1", "COMPLETED")
	mismatch := paypayEvent(wechat.ID, "168", "COMPLETED")

	tests := []struct {
		name       string
		provider   string
		body       string
		signature  string
		wantStatus int
	}{
		{"unknown provider", "stripe", good, sign(good), http.StatusBadRequest},
		{"bad signature", "paypay", good, "forged", http.StatusUnauthorized},
		{"malformed", "paypay", "not json", sign("not json"), http.StatusBadRequest},
		{"unknown payment", "paypay", missing, sign(missing), http.StatusNotFound},
		{"amount mismatch", "paypay", cheap, sign(cheap), http.StatusBadRequest},
		{"provider mismatch", "paypay", mismatch, sign(mismatch), http.StatusBadRequest},
		{"completed", "paypay", good, sign(good), http.StatusOK},
		{"duplicate delivery", "paypay", good, sign(good), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := r.webhook(tt.provider, tt.body, tt.signature)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"success":true}`, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"success":false`)
			}
		})
	}

	paid, err := r.env.store.Payments.GetByID(payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, paid.Status)
}

func TestPaymentHandler_WebhookBodyTooLarge(t *testing.T) {
	r := setupPaymentRouter(t)
	company := testutil.TestCompany(t, r.env.db)
	payment := testutil.TestPayment(t, r.env.db, company.ID)

	good := paypayEvent(payment.ID, "3680", "COMPLETED")
	oversized := good + strings.Repeat(" ", maxWebhookBody)

	w := r.webhook("paypay", oversized, sign(oversized))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "payload too large")

	paid, err := r.env.store.Payments.GetByID(payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, paid.Status)
}

func TestAdminHandler_ApproveAfterProviderFailure(t *testing.T) {
	r := setupPaymentRouter(t)
	company := testutil.TestCompany(t, r.env.db)
	payment := testutil.TestPayment(t, r.env.db, company.ID,
		testutil.WithPaymentStatus(model.PaymentPendingApproval))
	testutil.TestApproval(t, r.env.db, payment.ID, "tok-failed", testNow.Add(time.Hour))

	failed := paypayEvent(payment.ID, "3680", "FAILED")
	require.Equal(t, http.StatusOK, r.webhook("paypay", failed, sign(failed)).Code)

	approval, err := r.env.store.Payments.GetApprovalByPaymentID(payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalRejected, approval.Status)

	w := performRequest(r, "GET", "/admin/payments/approve?token=tok-failed", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "已处理")
	assert.NotContains(t, w.Body.String(), "已通过支付渠道确认")
	assert.Equal(t, model.PlanFree, r.reloadCompany(t, company.ID).SubscriptionPlan)
}

func TestPaymentHandler_CheckoutAndGet(t *testing.T) {
	r := setupPaymentRouter(t)
	company := testutil.TestCompany(t, r.env.db)
	other := testutil.TestCompany(t, r.env.db)
	auth := bearer(t, company.UserID, model.RoleCompany)

	w := performRequest(r, "POST", "/payments/checkout", dto.CheckoutRequest{
		Method:  model.MethodPayPay,
		Purpose: model.PurposeSubscription,
		Plan:    model.PlanBasic,
	}, "Authorization", auth)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := parseResponse(t, w).Data.(map[string]interface{})
	payment := data["payment"].(map[string]interface{})
	id := int64(payment["id"].(float64))

	w = performRequest(r, "GET", fmt.Sprintf("/payments/%d", id), nil, "Authorization", auth)
	assert.Equal(t, http.StatusOK, w.Code)

	// 其他企业不可见
	w = performRequest(r, "GET", fmt.Sprintf("/payments/%d", id), nil,
		"Authorization", bearer(t, other.UserID, model.RoleCompany))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(r, "GET", "/payments/abc", nil, "Authorization", auth)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.CodeParamError, parseResponse(t, w).Code)
}

func TestAdminHandler_ApprovalPages(t *testing.T) {
	r := setupPaymentRouter(t)
	company := testutil.TestCompany(t, r.env.db)

	valid := testutil.TestPayment(t, r.env.db, company.ID)
	testutil.TestApproval(t, r.env.db, valid.ID, "tok-valid", testNow.Add(time.Hour))
	expired := testutil.TestPayment(t, r.env.db, company.ID)
	testutil.TestApproval(t, r.env.db, expired.ID, "tok-expired", testNow.Add(-time.Hour))

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantText   string
	}{
		{"approve", "/admin/payments/approve?token=tok-valid", http.StatusOK, "已批准"},
		{"approve again", "/admin/payments/approve?token=tok-valid", http.StatusOK, "已处理"},
		{"reject processed", "/admin/payments/reject?token=tok-valid", http.StatusOK, "已处理"},
		{"expired", "/admin/payments/approve?token=tok-expired", http.StatusGone, "链接已过期"},
		{"unknown", "/admin/payments/reject?token=nope", http.StatusNotFound, "链接无效"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(r, "GET", tt.path, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, w.Body.String(), tt.wantText)
		})
	}

	company = r.reloadCompany(t, company.ID)
	assert.Equal(t, model.PlanBasic, company.SubscriptionPlan)
}

func (r *paymentRouter) reloadCompany(t *testing.T, id int64) *model.Company {
	t.Helper()
	c, err := r.env.store.Companies.GetByID(id)
	require.NoError(t, err)
	return c
}
