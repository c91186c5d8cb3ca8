// Package session 通过 HttpOnly cookie 保存会话令牌。
package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/devmatch_server/config"
)

const DefaultCookieName = "_sid"

type Manager struct {
	name   string
	domain string
	secure bool
	maxAge time.Duration
}

func NewManager(cfg config.SessionConfig, ttl time.Duration) *Manager {
	name := cfg.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	return &Manager{
		name:   name,
		domain: cfg.Domain,
		secure: cfg.Secure,
		maxAge: ttl,
	}
}

// Name cookie 名称
func (m *Manager) Name() string {
	return m.name
}

// Set 写入会话 cookie
func (m *Manager) Set(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.name,
		Value:    token,
		Path:     "/",
		Domain:   m.domain,
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read 读取会话 cookie
func (m *Manager) Read(c *gin.Context) (string, bool) {
	v, err := c.Cookie(m.name)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

// Clear 清除会话 cookie
func (m *Manager) Clear(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.name,
		Value:    "",
		Path:     "/",
		Domain:   m.domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
