package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/devmatch_server/config"
	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/clock"
	"github.com/qs3c/devmatch_server/internal/pkg/email"
	"github.com/qs3c/devmatch_server/internal/pkg/jwt"
	"github.com/qs3c/devmatch_server/internal/pkg/oauth"
	"github.com/qs3c/devmatch_server/internal/repository"
)

var (
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrEmailNotVerified   = errors.New("邮箱尚未验证")
	ErrInvalidVerifyCode  = errors.New("验证码无效或已过期")
	ErrAlreadyVerified    = errors.New("邮箱已验证")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrOAuthNotConfigured = errors.New("GitHub 登录未启用")
	ErrOAuthRoleConflict  = errors.New("该邮箱已注册为企业账号")
)

// 验证码有效期
const verificationTTL = 10 * time.Minute

type AuthService struct {
	store  *repository.Store
	cfg    *config.Config
	clock  clock.Clock
	mailer Mailer
	github *oauth.GithubOAuth
	logger *zap.Logger
}

func NewAuthService(store *repository.Store, cfg *config.Config, clk clock.Clock, mailer Mailer, github *oauth.GithubOAuth, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:  store,
		cfg:    cfg,
		clock:  clk,
		mailer: mailerOrNop(mailer),
		github: github,
		logger: logger.Named("auth"),
	}
}

// Register 用户注册。用户、资料和验证码在同一事务中写入，企业注册自动开始试用。
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	addr := normalizeEmail(req.Email)

	exists, err := s.store.Users.ExistsByEmail(addr)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	code, err := generateVerificationCode()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	hash := string(hashed)
	user := &model.User{
		Email:        addr,
		PasswordHash: &hash,
		Role:         req.Role,
		Name:         strings.TrimSpace(req.Name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		if err := tx.Users.Create(user); err != nil {
			return err
		}

		switch req.Role {
		case model.RoleCompany:
			name := strings.TrimSpace(req.CompanyName)
			if name == "" {
				name = user.Name
			}
			trialEnd := now.AddDate(0, 0, s.cfg.Subscription.TrialDays)
			company := &model.Company{
				UserID:           user.ID,
				Name:             name,
				SubscriptionPlan: model.PlanFree,
				IsTrialActive:    true,
				HasUsedTrial:     true,
				TrialStartDate:   &now,
				TrialEndDate:     &trialEnd,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			if err := tx.Companies.Create(company); err != nil {
				return err
			}
		default:
			engineer := &model.Engineer{
				UserID:        user.ID,
				Name:          user.Name,
				IsOpenToScout: true,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := tx.Engineers.Create(engineer); err != nil {
				return err
			}
		}

		return tx.Verifications.Create(&model.EmailVerification{
			UserID:    user.ID,
			Email:     addr,
			Code:      code,
			ExpiresAt: now.Add(verificationTTL),
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.mailer.Notify(email.VerificationCode(addr, user.Name, code))

	return &dto.RegisterResponse{
		UserID:               user.ID,
		Role:                 user.Role,
		VerificationRequired: true,
	}, nil
}

// VerifyEmail 校验验证码，验证码作废与用户标记已验证在同一事务中完成
func (s *AuthService) VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) (*dto.LoginResponse, error) {
	addr := normalizeEmail(req.Email)
	user, err := s.store.Users.GetByEmail(addr)
	if err != nil {
		return nil, notFound(err, ErrInvalidVerifyCode)
	}

	now := s.clock.Now()
	err = s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		v, err := tx.Verifications.FindValid(addr, req.Code, now)
		if err != nil {
			return notFound(err, ErrInvalidVerifyCode)
		}
		ok, err := tx.Verifications.MarkUsed(v.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidVerifyCode
		}
		return tx.Users.UpdateFields(user.ID, map[string]interface{}{
			"email_verified": true,
			"last_login_at":  now,
		})
	})
	if err != nil {
		return nil, err
	}

	user.EmailVerified = true
	return s.loginResponse(user)
}

// ResendCode 作废旧验证码并发送新验证码
func (s *AuthService) ResendCode(ctx context.Context, addr string) error {
	addr = normalizeEmail(addr)
	user, err := s.store.Users.GetByEmail(addr)
	if err != nil {
		return notFound(err, ErrUserNotFound)
	}
	if user.EmailVerified {
		return ErrAlreadyVerified
	}

	code, err := generateVerificationCode()
	if err != nil {
		return err
	}

	now := s.clock.Now()
	err = s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		if err := tx.Verifications.InvalidateForUser(user.ID, now); err != nil {
			return err
		}
		return tx.Verifications.Create(&model.EmailVerification{
			UserID:    user.ID,
			Email:     addr,
			Code:      code,
			ExpiresAt: now.Add(verificationTTL),
			CreatedAt: now,
		})
	})
	if err != nil {
		return err
	}

	s.mailer.Notify(email.VerificationCode(addr, user.Name, code))
	return nil
}

// Login 用户登录
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.store.Users.GetByEmail(normalizeEmail(req.Email))
	if err != nil {
		return nil, notFound(err, ErrInvalidCredentials)
	}

	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 开发环境跳过邮箱验证
	if !user.EmailVerified && s.cfg.Server.Mode != "debug" {
		return nil, ErrEmailNotVerified
	}

	if err := s.store.Users.UpdateFields(user.ID, map[string]interface{}{"last_login_at": s.clock.Now()}); err != nil {
		s.logger.Warn("update last login failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	return s.loginResponse(user)
}

// GithubAuthURL 获取 GitHub 授权 URL
func (s *AuthService) GithubAuthURL(state string) (string, error) {
	if s.github == nil || !s.github.Enabled() {
		return "", ErrOAuthNotConfigured
	}
	return s.github.AuthURL(state), nil
}

// GithubLogin 工程师通过 GitHub 登录，首次登录时创建账号或关联同邮箱账号
func (s *AuthService) GithubLogin(ctx context.Context, code string) (*dto.LoginResponse, error) {
	if s.github == nil || !s.github.Enabled() {
		return nil, ErrOAuthNotConfigured
	}

	gu, err := s.github.FetchUser(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch github user: %w", err)
	}
	githubID := fmt.Sprintf("%d", gu.ID)
	now := s.clock.Now()

	user, err := s.store.Users.GetByGithubID(githubID)
	if err == nil {
		if !user.IsEngineer() {
			return nil, ErrOAuthRoleConflict
		}
		_ = s.store.Users.UpdateFields(user.ID, map[string]interface{}{"last_login_at": now})
		return s.loginResponse(user)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	addr := normalizeEmail(gu.Email)
	if addr == "" {
		addr = fmt.Sprintf("%d+%s@users.noreply.github.com", gu.ID, gu.Login)
	}

	user, err = s.store.Users.GetByEmail(addr)
	switch {
	case err == nil:
		if !user.IsEngineer() {
			return nil, ErrOAuthRoleConflict
		}
		if err := s.store.Users.UpdateFields(user.ID, map[string]interface{}{
			"github_id":      githubID,
			"email_verified": true,
			"last_login_at":  now,
		}); err != nil {
			return nil, err
		}
		user.GithubID = &githubID
		user.EmailVerified = true
		return s.loginResponse(user)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	user = &model.User{
		Email:         addr,
		Role:          model.RoleEngineer,
		Name:          gu.DisplayName(),
		AvatarURL:     gu.AvatarURL,
		GithubID:      &githubID,
		EmailVerified: true,
		LastLoginAt:   &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err = s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		if err := tx.Users.Create(user); err != nil {
			return err
		}
		return tx.Engineers.Create(&model.Engineer{
			UserID:        user.ID,
			Name:          user.Name,
			Bio:           gu.Bio,
			Address:       gu.Location,
			GithubURL:     gu.HTMLURL,
			AvatarURL:     gu.AvatarURL,
			IsOpenToScout: true,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.loginResponse(user)
}

// Me 当前用户信息
func (s *AuthService) Me(userID int64) (*dto.UserInfo, error) {
	user, err := s.store.Users.GetByID(userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return s.buildUserInfo(user), nil
}

func (s *AuthService) loginResponse(user *model.User) (*dto.LoginResponse, error) {
	token, err := jwt.GenerateToken(user.ID, user.Role, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  s.buildUserInfo(user),
	}, nil
}

func (s *AuthService) buildUserInfo(user *model.User) *dto.UserInfo {
	info := &dto.UserInfo{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		Role:          user.Role,
		AvatarURL:     user.AvatarURL,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt.Format(time.RFC3339),
	}

	switch user.Role {
	case model.RoleCompany:
		if c, err := s.store.Companies.GetByUserID(user.ID); err == nil {
			info.CompanyID = &c.ID
		}
	case model.RoleEngineer:
		if e, err := s.store.Engineers.GetByUserID(user.ID); err == nil {
			info.EngineerID = &e.ID
		}
	}
	return info
}

func normalizeEmail(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// generateVerificationCode 6 位数字验证码
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
