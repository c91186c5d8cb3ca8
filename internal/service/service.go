package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/devmatch_server/internal/pkg/email"
)

var ErrForbidden = errors.New("无权操作该资源")

// Mailer 尽力而为的邮件通道，实现方不得阻塞调用方
type Mailer interface {
	Notify(msg *email.Message)
}

// Realtime 站内实时推送
type Realtime interface {
	Publish(ctx context.Context, userID int64, eventType string, data interface{}) error
}

type nopMailer struct{}

func (nopMailer) Notify(*email.Message) {}

type nopRealtime struct{}

func (nopRealtime) Publish(context.Context, int64, string, interface{}) error { return nil }

func mailerOrNop(m Mailer) Mailer {
	if m == nil {
		return nopMailer{}
	}
	return m
}

func realtimeOrNop(r Realtime) Realtime {
	if r == nil {
		return nopRealtime{}
	}
	return r
}

// notFound 把 gorm.ErrRecordNotFound 映射为业务错误
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// startOfDay 每日上限按 UTC 自然日计算
func startOfDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

func generateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// normalizeSkills 去除空白与大小写重复，保留首次出现的写法
func normalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
