package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/oauth"
	"github.com/qs3c/devmatch_server/internal/pkg/response"
	"github.com/qs3c/devmatch_server/internal/pkg/session"
	"github.com/qs3c/devmatch_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	sessions    *session.Manager
	states      *oauth.StateStore
	baseURL     string
}

// NewAuthHandler states 为 nil 时 GitHub 登录不可用
func NewAuthHandler(authService *service.AuthService, sessions *session.Manager, states *oauth.StateStore, baseURL string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		states:      states,
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

// Register 用户注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "注册成功，请查收验证邮件", resp)
}

// VerifyEmail 验证邮箱并登录
// POST /api/v1/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.VerifyEmail(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.sessions.Set(c, resp.Token)
	response.SuccessWithMessage(c, "邮箱验证成功", resp)
}

// ResendCode 重新发送验证码
// POST /api/v1/auth/resend-code
func (h *AuthHandler) ResendCode(c *gin.Context) {
	var req dto.ResendCodeRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ResendCode(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "验证码已发送", dto.SuccessResponse{Success: true})
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.sessions.Set(c, resp.Token)
	response.SuccessWithMessage(c, "登录成功", resp)
}

// Logout 清除会话
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Clear(c)
	response.Success(c, dto.SuccessResponse{Success: true})
}

// Me 当前用户
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	info, err := h.authService.Me(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, info)
}

// GithubAuth 跳转 GitHub 授权页
// GET /api/v1/auth/github?redirect_uri=/dashboard
func (h *AuthHandler) GithubAuth(c *gin.Context) {
	if h.states == nil {
		respondError(c, service.ErrOAuthNotConfigured)
		return
	}

	state, err := h.states.GenerateState(c.Request.Context(), h.safeRedirect(c.Query("redirect_uri")))
	if err != nil {
		respondError(c, err)
		return
	}

	url, err := h.authService.GithubAuthURL(state)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusFound, url)
}

// GithubCallback GitHub 授权回调，写入会话后跳回前端
// GET /api/v1/auth/github/callback
func (h *AuthHandler) GithubCallback(c *gin.Context) {
	if h.states == nil {
		respondError(c, service.ErrOAuthNotConfigured)
		return
	}

	redirectURI, err := h.states.ValidateState(c.Request.Context(), c.Query("state"))
	if err != nil {
		response.ParamError(c, "登录状态无效或已过期")
		return
	}

	code := c.Query("code")
	if code == "" {
		response.ParamError(c, "缺少授权码")
		return
	}

	resp, err := h.authService.GithubLogin(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}

	h.sessions.Set(c, resp.Token)
	c.Redirect(http.StatusFound, h.baseURL+redirectURI)
}

// safeRedirect 只允许站内相对路径，防止开放跳转
func (h *AuthHandler) safeRedirect(uri string) string {
	if !strings.HasPrefix(uri, "/") || strings.HasPrefix(uri, "//") {
		return "/"
	}
	return uri
}
