package payprovider

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/qs3c/devmatch_server/config"
)

// Wechat 签名为 MD5(body + api_key) 的十六进制
type Wechat struct {
	cfg config.ProviderConfig
}

type wechatPayload struct {
	OutTradeNo    string `json:"out_trade_no"`
	TransactionID string `json:"transaction_id"`
	TotalFee      string `json:"total_fee"`
	TradeState    string `json:"trade_state"`
}

func (w *Wechat) Name() string { return "wechat" }

// SignWechat 计算签名
func SignWechat(body []byte, key string) string {
	sum := md5.Sum(append(append([]byte{}, body...), key...))
	return hex.EncodeToString(sum[:])
}

func (w *Wechat) Verify(body []byte, signature string) error {
	if w.cfg.APIKey == "" || signature == "" {
		return ErrInvalidSignature
	}
	got := strings.ToLower(strings.TrimSpace(signature))
	if !hmac.Equal([]byte(SignWechat(body, w.cfg.APIKey)), []byte(got)) {
		return ErrInvalidSignature
	}
	return nil
}

func (w *Wechat) Parse(body []byte) (*Notification, error) {
	var p wechatPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	id, err := parsePaymentID(p.OutTradeNo)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(p.TotalFee)
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q", ErrMalformedPayload, p.TotalFee)
	}

	n := &Notification{PaymentID: id, TransactionID: p.TransactionID, Amount: amount}
	switch strings.ToUpper(p.TradeState) {
	case "SUCCESS":
		n.Status = StatusCompleted
	case "CLOSED", "PAYERROR", "REVOKED":
		n.Status = StatusFailed
	case "NOTPAY", "USERPAYING":
		n.Status = StatusPending
	default:
		return nil, fmt.Errorf("%w: trade_state %q", ErrMalformedPayload, p.TradeState)
	}
	return n, nil
}

func (w *Wechat) PaymentURL(paymentID int64, amount decimal.Decimal, currency string) string {
	return paymentURL(w.Name(), w.cfg, paymentID, amount, currency)
}
