package payprovider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/qs3c/devmatch_server/config"
)

// Paypay 签名为 HMAC-SHA256(body, secret)，base64 编码
type Paypay struct {
	cfg config.ProviderConfig
}

type paypayPayload struct {
	MerchantPaymentID string `json:"merchantPaymentId"`
	PaymentID         string `json:"paymentId"`
	Amount            struct {
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency"`
	} `json:"amount"`
	State string `json:"state"`
}

func (p *Paypay) Name() string { return "paypay" }

// SignPaypay 计算签名
func SignPaypay(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (p *Paypay) Verify(body []byte, signature string) error {
	if p.cfg.Secret == "" || signature == "" {
		return ErrInvalidSignature
	}
	expected := SignPaypay(body, p.cfg.Secret)
	if !hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature))) {
		return ErrInvalidSignature
	}
	return nil
}

func (p *Paypay) Parse(body []byte) (*Notification, error) {
	var payload paypayPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	id, err := parsePaymentID(payload.MerchantPaymentID)
	if err != nil {
		return nil, err
	}

	n := &Notification{PaymentID: id, TransactionID: payload.PaymentID, Amount: payload.Amount.Amount}
	switch strings.ToUpper(payload.State) {
	case "COMPLETED":
		n.Status = StatusCompleted
	case "FAILED", "CANCELED", "EXPIRED":
		n.Status = StatusFailed
	case "CREATED", "AUTHORIZED":
		n.Status = StatusPending
	default:
		return nil, fmt.Errorf("%w: state %q", ErrMalformedPayload, payload.State)
	}
	return n, nil
}

func (p *Paypay) PaymentURL(paymentID int64, amount decimal.Decimal, currency string) string {
	return paymentURL(p.Name(), p.cfg, paymentID, amount, currency)
}
