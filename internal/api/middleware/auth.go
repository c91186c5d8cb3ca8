package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/devmatch_server/internal/pkg/jwt"
	"github.com/qs3c/devmatch_server/internal/pkg/response"
	"github.com/qs3c/devmatch_server/internal/pkg/session"
)

const (
	UserIDKey = "userID"
	RoleKey   = "role"
)

// Auth 会话认证中间件，优先读取 Authorization 头，其次读取会话 cookie
func Auth(jwtSecret string, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractToken(c, sessions)
		if !ok {
			response.AuthError(c, "请提供认证信息")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(tokenString, jwtSecret)
		if err != nil {
			response.AuthError(c, "认证失败或已过期")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// OptionalAuth 可选认证中间件（不强制要求登录）
func OptionalAuth(jwtSecret string, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractToken(c, sessions)
		if !ok {
			c.Next()
			return
		}

		claims, err := jwt.ParseToken(tokenString, jwtSecret)
		if err == nil {
			c.Set(UserIDKey, claims.UserID)
			c.Set(RoleKey, claims.Role)
		}

		c.Next()
	}
}

// RequireRole 限定角色，需放在 Auth 之后
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.PermissionError(c, "")
		c.Abort()
	}
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}

// GetRole 从上下文获取角色，未登录时为空
func GetRole(c *gin.Context) string {
	return c.GetString(RoleKey)
}

func extractToken(c *gin.Context, sessions *session.Manager) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			return "", false
		}
		return tokenString, true
	}
	if sessions != nil {
		return sessions.Read(c)
	}
	return "", false
}
