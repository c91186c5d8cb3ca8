package payprovider

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/qs3c/devmatch_server/config"
)

// Alipay 签名为 RSA-SHA256，base64 编码，使用平台公钥验签
type Alipay struct {
	cfg config.ProviderConfig
}

type alipayPayload struct {
	OutTradeNo  string `json:"out_trade_no"`
	TradeNo     string `json:"trade_no"`
	TotalAmount string `json:"total_amount"`
	TradeStatus string `json:"trade_status"`
}

func (a *Alipay) Name() string { return "alipay" }

// ParsePublicKey 支持 PEM（PKIX / PKCS1）或裸 base64 DER
func ParsePublicKey(key string) (*rsa.PublicKey, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("empty public key")
	}

	var der []byte
	if block, _ := pem.Decode([]byte(key)); block != nil {
		der = block.Bytes
	} else {
		b, err := base64.StdEncoding.DecodeString(key)
		if err != nil {
			return nil, fmt.Errorf("decode public key: %w", err)
		}
		der = b
	}

	if pub, err := x509.ParsePKIXPublicKey(der); err == nil {
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, errors.New("public key is not RSA")
		}
		return rsaPub, nil
	}
	return x509.ParsePKCS1PublicKey(der)
}

func (a *Alipay) Verify(body []byte, signature string) error {
	pub, err := ParsePublicKey(a.cfg.PublicKey)
	if err != nil {
		return ErrInvalidSignature
	}
	sig, err := base64.StdEncoding.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(sig) == 0 {
		return ErrInvalidSignature
	}

	digest := sha256.Sum256(body)
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sig); err != nil {
		return ErrInvalidSignature
	}
	return nil
}

func (a *Alipay) Parse(body []byte) (*Notification, error) {
	var p alipayPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	id, err := parsePaymentID(p.OutTradeNo)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(p.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q", ErrMalformedPayload, p.TotalAmount)
	}

	n := &Notification{PaymentID: id, TransactionID: p.TradeNo, Amount: amount}
	switch strings.ToUpper(p.TradeStatus) {
	case "TRADE_SUCCESS", "TRADE_FINISHED":
		n.Status = StatusCompleted
	case "TRADE_CLOSED":
		n.Status = StatusFailed
	case "WAIT_BUYER_PAY":
		n.Status = StatusPending
	default:
		return nil, fmt.Errorf("%w: trade_status %q", ErrMalformedPayload, p.TradeStatus)
	}
	return n, nil
}

func (a *Alipay) PaymentURL(paymentID int64, amount decimal.Decimal, currency string) string {
	return paymentURL(a.Name(), a.cfg, paymentID, amount, currency)
}
