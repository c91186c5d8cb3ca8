package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/payprovider"
	"github.com/qs3c/devmatch_server/internal/pkg/response"
	"github.com/qs3c/devmatch_server/internal/service"
)

const (
	HeaderPaymentProvider  = "X-Payment-Provider"
	HeaderPaymentSignature = "X-Payment-Signature"

	maxWebhookBody = 1 << 20
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	webhookService *service.WebhookService
}

func NewPaymentHandler(paymentService *service.PaymentService, webhookService *service.WebhookService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		webhookService: webhookService,
	}
}

// Checkout 创建待支付订单并返回二维码
// POST /api/v1/payments/checkout
func (h *PaymentHandler) Checkout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.paymentService.Checkout(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, resp)
}

// RequestApproval 企业自报已付款，请求管理员审批
// POST /api/v1/payments/:id/request-approval
func (h *PaymentHandler) RequestApproval(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.paymentService.RequestApproval(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	if resp.AlreadyCompleted {
		response.SuccessWithMessage(c, "该付款已完成", resp)
		return
	}
	response.SuccessWithMessage(c, "已提交审批", resp)
}

// List GET /api/v1/payments
func (h *PaymentHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, ok := pageQuery(c)
	if !ok {
		return
	}

	payments, total, err := h.paymentService.List(userID, page)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPage(c, total, page.Page, page.PageSize, payments)
}

// Get GET /api/v1/payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	payment, err := h.paymentService.Get(userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, payment)
}

// Webhook 支付渠道回调，签名基于原始请求体校验
// POST /api/v1/webhooks/payment
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			webhookResult(c, http.StatusBadRequest, "payload too large")
			return
		}
		webhookResult(c, http.StatusBadRequest, "failed to read body")
		return
	}

	err = h.webhookService.Handle(c.Request.Context(),
		c.GetHeader(HeaderPaymentProvider), body, c.GetHeader(HeaderPaymentSignature))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true})
	case errors.Is(err, payprovider.ErrInvalidSignature):
		webhookResult(c, http.StatusUnauthorized, "invalid signature")
	case errors.Is(err, payprovider.ErrUnknownProvider):
		webhookResult(c, http.StatusBadRequest, "unknown provider")
	case errors.Is(err, payprovider.ErrMalformedPayload):
		webhookResult(c, http.StatusBadRequest, "malformed payload")
	case errors.Is(err, service.ErrAmountMismatch):
		webhookResult(c, http.StatusBadRequest, "amount mismatch")
	case errors.Is(err, service.ErrProviderMismatch):
		webhookResult(c, http.StatusBadRequest, "provider mismatch")
	case errors.Is(err, service.ErrPaymentNotFound):
		webhookResult(c, http.StatusNotFound, "payment not found")
	default:
		_ = c.Error(err)
		webhookResult(c, http.StatusInternalServerError, "internal error")
	}
}

func webhookResult(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}
