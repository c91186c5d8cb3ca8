package email

import (
	"context"
	"errors"

	"gopkg.in/gomail.v2"

	"github.com/qs3c/devmatch_server/config"
)

// 邮件类型，用于指标与日志
const (
	KindVerification    = "verification"
	KindApplication     = "application"
	KindScout           = "scout"
	KindApprovalRequest = "approval_request"
	KindPaymentResult   = "payment_result"
	KindTrialEnding     = "trial_ending"
	KindContactAdmin    = "contact_admin"
	KindContactConfirm  = "contact_confirm"
)

var ErrNotConfigured = errors.New("smtp not configured")

// Message 一封待发送的邮件，可直接序列化进入邮件队列
type Message struct {
	Kind    string `json:"kind"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// Sender 邮件发送接口
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPSender 基于 gomail 的 SMTP 发送器
type SMTPSender struct {
	cfg    *config.EmailConfig
	dialer *gomail.Dialer
}

func NewSMTPSender(cfg *config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
	}
}

// Send 发送 text + html 双版本邮件
func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	if s.cfg.SMTPHost == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		if msg.HTML != "" {
			m.AddAlternative("text/html", msg.HTML)
		}
	} else {
		m.SetBody("text/html", msg.HTML)
	}

	return s.dialer.DialAndSend(m)
}
