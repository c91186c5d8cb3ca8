package payprovider

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/qs3c/devmatch_server/config"
)

var (
	ErrUnknownProvider  = errors.New("unknown payment provider")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrMalformedPayload = errors.New("malformed payload")
)

// Status 回调中的交易结果
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusPending   Status = "pending"
)

// Notification 各渠道回调映射后的统一结构
type Notification struct {
	PaymentID     int64
	TransactionID string
	Amount        decimal.Decimal
	Status        Status
}

// Provider 支付渠道
type Provider interface {
	Name() string
	// Verify 在信任任何字段之前校验原始请求体的签名
	Verify(body []byte, signature string) error
	Parse(body []byte) (*Notification, error)
	// PaymentURL 二维码中编码的支付链接
	PaymentURL(paymentID int64, amount decimal.Decimal, currency string) string
}

type Registry struct {
	providers map[string]Provider
}

func NewRegistry(cfgs map[string]config.ProviderConfig) *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	r.Register(&Wechat{cfg: cfgs["wechat"]})
	r.Register(&Alipay{cfg: cfgs["alipay"]})
	r.Register(&Paypay{cfg: cfgs["paypay"]})
	return r
}

func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names 已注册渠道
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// paymentURL 配置了商户号时生成网关链接，否则生成占位链接
func paymentURL(provider string, cfg config.ProviderConfig, paymentID int64, amount decimal.Decimal, currency string) string {
	q := url.Values{}
	q.Set("out_trade_no", strconv.FormatInt(paymentID, 10))
	q.Set("amount", amount.StringFixed(2))
	q.Set("currency", currency)

	if cfg.MerchantID == "" || cfg.GatewayURL == "" {
		return fmt.Sprintf("devmatch://pay/%s?%s", provider, q.Encode())
	}
	q.Set("merchant_id", cfg.MerchantID)
	return cfg.GatewayURL + "?" + q.Encode()
}

func parsePaymentID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: payment id %q", ErrMalformedPayload, s)
	}
	return id, nil
}
