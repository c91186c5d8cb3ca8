package dto

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email,max=100"`
	Password    string `json:"password" binding:"required,min=8,max=64"`
	Name        string `json:"name" binding:"required,max=100"`
	Role        string `json:"role" binding:"required,oneof=engineer company"`
	CompanyName string `json:"company_name" binding:"omitempty,max=200"`
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	UserID               int64  `json:"user_id"`
	Role                 string `json:"role"`
	VerificationRequired bool   `json:"verification_required"`
}

// VerifyEmailRequest 邮箱验证请求
type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// ResendCodeRequest 重发验证码
type ResendCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// UserInfo 用户信息（返回给前端）
type UserInfo struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	AvatarURL     string `json:"avatar_url"`
	EmailVerified bool   `json:"email_verified"`
	CompanyID     *int64 `json:"company_id,omitempty"`
	EngineerID    *int64 `json:"engineer_id,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}
