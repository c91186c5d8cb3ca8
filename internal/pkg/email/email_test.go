package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qs3c/devmatch_server/config"
)

func TestVerificationCode(t *testing.T) {
	msg := VerificationCode("a@example.com", "Alice", "123456")

	assert.Equal(t, KindVerification, msg.Kind)
	assert.Equal(t, "a@example.com", msg.To)
	assert.Contains(t, msg.HTML, "123456")
	assert.Contains(t, msg.Text, "123456")
	assert.Contains(t, msg.Text, "Alice")
}

func TestPaymentApprovalRequest(t *testing.T) {
	msg := PaymentApprovalRequest("admin@example.com", ApprovalRequest{
		PaymentID:   42,
		CompanyName: "Acme",
		Amount:      "3680.00",
		Currency:    "JPY",
		Method:      "paypay",
		Purpose:     "subscription",
		ApproveURL:  "http://x/admin/payments/approve?token=abc&x=1",
		RejectURL:   "http://x/admin/payments/reject?token=abc",
	})

	assert.Contains(t, msg.Subject, "#42")
	assert.Contains(t, msg.HTML, "token=abc")
	// html/template 会转义查询参数中的 &
	assert.Contains(t, msg.HTML, "token=abc&amp;x=1")
	assert.Contains(t, msg.Text, "http://x/admin/payments/reject?token=abc")
}

func TestTemplates_EscapeUserInput(t *testing.T) {
	msg := ContactAdmin("admin@example.com", ContactInquiry{
		ID:      1,
		Name:    "<script>alert(1)</script>",
		Email:   "x@example.com",
		Subject: "hi",
		Message: "hello",
	})

	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
}

func TestPaymentResult(t *testing.T) {
	ok := PaymentResult("c@example.com", "Acme", 7, true)
	ng := PaymentResult("c@example.com", "Acme", 7, false)

	assert.Contains(t, ok.Subject, "付款已确认")
	assert.Contains(t, ng.Subject, "付款未通过")
	assert.Equal(t, KindPaymentResult, ng.Kind)
}

func TestSMTPSender_NotConfigured(t *testing.T) {
	s := NewSMTPSender(&config.EmailConfig{})

	err := s.Send(context.Background(), VerificationCode("a@example.com", "A", "000000"))
	assert.ErrorIs(t, err, ErrNotConfigured)
}
