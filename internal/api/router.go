package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/devmatch_server/config"
	"github.com/qs3c/devmatch_server/internal/api/handler"
	"github.com/qs3c/devmatch_server/internal/api/middleware"
	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/pkg/logger"
	"github.com/qs3c/devmatch_server/internal/pkg/metrics"
	"github.com/qs3c/devmatch_server/internal/pkg/session"
)

// Handlers 路由用到的全部 handler
type Handlers struct {
	Auth        *handler.AuthHandler
	Company     *handler.CompanyHandler
	Engineer    *handler.EngineerHandler
	Skill       *handler.SkillHandler
	Job         *handler.JobHandler
	Application *handler.ApplicationHandler
	Project     *handler.ProjectHandler
	Message     *handler.MessageHandler
	Scout       *handler.ScoutHandler
	Payment     *handler.PaymentHandler
	Quota       *handler.QuotaHandler
	Contact     *handler.ContactHandler
	Admin       *handler.AdminHandler
	WebSocket   *handler.WebSocketHandler
}

type Router struct {
	h            Handlers
	cfg          *config.Config
	sessions     *session.Manager
	paidFeatures gin.HandlerFunc
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewRouter paidFeatures 为付费功能门槛中间件；m 为 nil 时不暴露 /metrics
func NewRouter(h Handlers, cfg *config.Config, sessions *session.Manager, paidFeatures gin.HandlerFunc, m *metrics.Metrics, log *zap.Logger) *Router {
	return &Router{
		h:            h,
		cfg:          cfg,
		sessions:     sessions,
		paidFeatures: paidFeatures,
		metrics:      m,
		logger:       log,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(logger.Recovery(r.logger))
	engine.Use(logger.GinMiddleware(r.logger))
	engine.Use(middleware.CORS(r.cfg.CORS))
	if r.metrics != nil {
		engine.Use(r.metrics.Middleware())
		engine.GET(r.cfg.Metrics.Path, r.metrics.Handler())
	}

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 审批邮件中的链接，令牌即凭证
	admin := engine.Group("/admin/payments")
	{
		admin.GET("/approve", r.h.Admin.ApprovePayment)
		admin.GET("/reject", r.h.Admin.RejectPayment)
	}

	secret := r.cfg.JWT.Secret
	auth := middleware.Auth(secret, r.sessions)
	company := middleware.RequireRole(model.RoleCompany)
	engineer := middleware.RequireRole(model.RoleEngineer)

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.h.WebSocket.Handle)

		// 公开接口 - 认证
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", r.h.Auth.Register)
			authGroup.POST("/verify-email", r.h.Auth.VerifyEmail)
			authGroup.POST("/resend-code", r.h.Auth.ResendCode)
			authGroup.POST("/login", r.h.Auth.Login)
			authGroup.POST("/logout", r.h.Auth.Logout)
			authGroup.GET("/github", r.h.Auth.GithubAuth)
			authGroup.GET("/github/callback", r.h.Auth.GithubCallback)
			authGroup.GET("/me", auth, r.h.Auth.Me)
		}

		// 公开接口
		api.GET("/skills", r.h.Skill.List)
		api.GET("/jobs", r.h.Job.Search)
		api.GET("/jobs/:id", r.h.Job.Get)
		api.GET("/projects", r.h.Project.Search)
		api.GET("/projects/:id", r.h.Project.Get)
		api.POST("/contact", r.h.Contact.Submit)
		api.POST("/webhooks/payment", r.h.Payment.Webhook)

		authenticated := api.Group("")
		authenticated.Use(auth)
		{
			authenticated.GET("/engineers/:id", middleware.RequireRole(model.RoleCompany, model.RoleAdmin), r.h.Engineer.GetPublic)

			// 消息，所有角色可用
			messages := authenticated.Group("/messages")
			{
				messages.POST("", r.h.Message.Send)
				messages.GET("/inbox", r.h.Message.Inbox)
				messages.GET("/unread-count", r.h.Message.UnreadCount)
				messages.GET("/conversations/:userId", r.h.Message.Conversation)
				messages.POST("/:id/read", r.h.Message.MarkRead)
			}

			r.companyRoutes(authenticated.Group("", company))
			r.engineerRoutes(authenticated.Group("", engineer))

			adminGroup := authenticated.Group("/admin", middleware.RequireRole(model.RoleAdmin))
			{
				adminGroup.GET("/contact-inquiries", r.h.Admin.ListInquiries)
				adminGroup.POST("/contact-inquiries/:id/resolve", r.h.Admin.ResolveInquiry)
			}
		}
	}

	return engine
}

func (r *Router) companyRoutes(g *gin.RouterGroup) {
	profile := g.Group("/company")
	{
		profile.GET("/profile", r.h.Company.GetProfile)
		profile.PUT("/profile", r.h.Company.UpdateProfile)
		profile.POST("/logo", r.h.Company.UploadLogo)
		profile.GET("/subscription", r.h.Company.GetSubscription)
		profile.POST("/subscription/cancel", r.h.Company.CancelSubscription)
		profile.POST("/trial", r.h.Company.StartTrial)
		profile.GET("/quota", r.h.Quota.GetQuota)
		profile.GET("/jobs", r.h.Job.ListMine)
		profile.GET("/scouts", r.h.Scout.ListSent)
	}

	// 职位与项目管理
	g.POST("/jobs", r.paidFeatures, r.h.Job.Create)
	g.PUT("/jobs/:id", r.h.Job.Update)
	g.POST("/jobs/:id/close", r.h.Job.Close)
	g.DELETE("/jobs/:id", r.h.Job.Delete)
	g.GET("/jobs/:id/applications", r.h.Application.ListForJob)
	g.PUT("/applications/:id/status", r.h.Application.UpdateStatus)

	g.POST("/projects", r.paidFeatures, r.h.Project.Create)
	g.POST("/projects/:id/close", r.h.Project.Close)
	g.GET("/projects/:id/applications", r.h.Project.ListApplications)

	// scout
	g.GET("/jobs/:id/scout-candidates", r.paidFeatures, r.h.Scout.Candidates)
	g.POST("/jobs/:id/scouts/bulk", r.paidFeatures, r.h.Scout.BulkSend)
	g.POST("/scouts", r.paidFeatures, r.h.Scout.Send)

	// 付款
	payments := g.Group("/payments")
	{
		payments.POST("/checkout", r.h.Payment.Checkout)
		payments.GET("", r.h.Payment.List)
		payments.GET("/:id", r.h.Payment.Get)
		payments.POST("/:id/request-approval", r.h.Payment.RequestApproval)
	}
}

func (r *Router) engineerRoutes(g *gin.RouterGroup) {
	profile := g.Group("/engineer")
	{
		profile.GET("/profile", r.h.Engineer.GetProfile)
		profile.PUT("/profile", r.h.Engineer.UpdateProfile)
		profile.POST("/avatar", r.h.Engineer.UploadAvatar)
		profile.POST("/resume", r.h.Engineer.UploadResume)
		profile.GET("/applications", r.h.Application.ListMine)
		profile.GET("/scouts", r.h.Scout.ListReceived)
	}

	g.POST("/jobs/:id/apply", r.h.Application.Apply)
	g.POST("/applications/:id/withdraw", r.h.Application.Withdraw)
	g.POST("/projects/:id/apply", r.h.Project.Apply)
	g.POST("/scouts/:id/read", r.h.Scout.MarkRead)
	g.POST("/scouts/:id/reply", r.h.Scout.Reply)
}
