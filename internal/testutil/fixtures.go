package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/devmatch_server/internal/model"
)

// TestPassword fixtures 创建的用户的明文密码
const TestPassword = "password123"

var (
	seq          int64
	passwordHash string
)

func init() {
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	passwordHash = string(hash)
}

func next() int64 {
	return atomic.AddInt64(&seq, 1)
}

func mustCreate(t *testing.T, db *gorm.DB, v interface{}) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("Failed to create %T: %v", v, err)
	}
}

// TestUser 创建测试用户（默认工程师、已验证）
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	hash := passwordHash
	user := &model.User{
		Email:         fmt.Sprintf("user_%d@example.com", next()),
		PasswordHash:  &hash,
		Role:          model.RoleEngineer,
		Name:          "Test User",
		EmailVerified: true,
	}
	for _, opt := range opts {
		opt(user)
	}

	mustCreate(t, db, user)
	// default 标签会吞掉 false 零值
	if !user.EmailVerified {
		db.Model(user).Update("email_verified", false)
	}
	return user
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// Unverified 邮箱未验证
func Unverified() func(*model.User) {
	return func(u *model.User) {
		u.EmailVerified = false
	}
}

// TestCompany 创建企业用户及企业资料（默认 FREE、无试用）
func TestCompany(t *testing.T, db *gorm.DB, opts ...func(*model.Company)) *model.Company {
	t.Helper()

	user := TestUser(t, db, WithRole(model.RoleCompany))
	company := &model.Company{
		UserID:           user.ID,
		Name:             fmt.Sprintf("Company %d", next()),
		SubscriptionPlan: model.PlanFree,
	}
	for _, opt := range opts {
		opt(company)
	}

	mustCreate(t, db, company)
	company.User = user
	return company
}

// WithActiveTrial 试用中，剩余 days 天
func WithActiveTrial(now time.Time, days int) func(*model.Company) {
	return func(c *model.Company) {
		start := now.AddDate(0, 0, days-30)
		end := now.Add(time.Duration(days) * 24 * time.Hour)
		c.IsTrialActive = true
		c.HasUsedTrial = true
		c.TrialStartDate = &start
		c.TrialEndDate = &end
	}
}

// WithSubscription 付费方案，expiresAt 到期
func WithSubscription(plan string, expiresAt time.Time) func(*model.Company) {
	return func(c *model.Company) {
		c.SubscriptionPlan = plan
		c.SubscriptionExpiresAt = &expiresAt
	}
}

// WithScoutAccess scout 权限，expiresAt 到期
func WithScoutAccess(expiresAt time.Time) func(*model.Company) {
	return func(c *model.Company) {
		c.HasScoutAccess = true
		c.ScoutAccessExpiresAt = &expiresAt
	}
}

// TestEngineer 创建工程师用户及资料
func TestEngineer(t *testing.T, db *gorm.DB, opts ...func(*model.Engineer)) *model.Engineer {
	t.Helper()

	user := TestUser(t, db, WithRole(model.RoleEngineer))
	engineer := &model.Engineer{
		UserID:        user.ID,
		Name:          fmt.Sprintf("Engineer %d", next()),
		IsOpenToScout: true,
	}
	for _, opt := range opts {
		opt(engineer)
	}

	mustCreate(t, db, engineer)
	if !engineer.IsOpenToScout {
		db.Model(engineer).Update("is_open_to_scout", false)
	}
	engineer.User = user
	return engineer
}

// WithSkills 设置技能
func WithSkills(skills ...string) func(*model.Engineer) {
	return func(e *model.Engineer) {
		e.Skills = skills
	}
}

// WithExperience 设置经验年数与地址
func WithExperience(years int, address string) func(*model.Engineer) {
	return func(e *model.Engineer) {
		e.YearsOfExperience = years
		e.Address = address
	}
}

// WithDesiredSalary 设置期望最低年薪
func WithDesiredSalary(min int) func(*model.Engineer) {
	return func(e *model.Engineer) {
		e.DesiredSalaryMin = &min
	}
}

// ClosedToScout 不接受 scout
func ClosedToScout() func(*model.Engineer) {
	return func(e *model.Engineer) {
		e.IsOpenToScout = false
	}
}

// TestJob 创建职位
func TestJob(t *testing.T, db *gorm.DB, companyID int64, opts ...func(*model.Job)) *model.Job {
	t.Helper()

	job := &model.Job{
		CompanyID:      companyID,
		Title:          fmt.Sprintf("Job %d", next()),
		Description:    "description",
		EmploymentType: model.EmploymentFullTime,
		Location:       "Tokyo",
		Status:         model.PostingStatusOpen,
	}
	for _, opt := range opts {
		opt(job)
	}

	mustCreate(t, db, job)
	return job
}

// WithJobSkills 设置职位技能
func WithJobSkills(skills ...string) func(*model.Job) {
	return func(j *model.Job) {
		for _, s := range skills {
			j.Skills = append(j.Skills, model.JobSkill{SkillName: s, IsRequired: true})
		}
	}
}

// WithJobTitle 设置职位名称
func WithJobTitle(title string) func(*model.Job) {
	return func(j *model.Job) {
		j.Title = title
	}
}

// WithSalaryMin 设置职位最低年薪
func WithSalaryMin(min int) func(*model.Job) {
	return func(j *model.Job) {
		j.SalaryMin = &min
	}
}

// TestPayment 创建付款
func TestPayment(t *testing.T, db *gorm.DB, companyID int64, opts ...func(*model.Payment)) *model.Payment {
	t.Helper()

	payment := &model.Payment{
		CompanyID: companyID,
		Amount:    decimal.NewFromInt(3680),
		Currency:  "JPY",
		Method:    model.MethodPayPay,
		Plan:      model.PlanBasic,
		Purpose:   model.PurposeSubscription,
		Status:    model.PaymentPending,
	}
	for _, opt := range opts {
		opt(payment)
	}

	mustCreate(t, db, payment)
	return payment
}

// WithPaymentStatus 设置付款状态
func WithPaymentStatus(status model.PaymentStatus) func(*model.Payment) {
	return func(p *model.Payment) {
		p.Status = status
	}
}

// WithMethod 设置支付方式、金额与币种
func WithMethod(method string, amount int64, currency string) func(*model.Payment) {
	return func(p *model.Payment) {
		p.Method = method
		p.Amount = decimal.NewFromInt(amount)
		p.Currency = currency
	}
}

// WithPurpose 设置用途
func WithPurpose(purpose string) func(*model.Payment) {
	return func(p *model.Payment) {
		p.Purpose = purpose
	}
}

// WithPlan 设置订阅方案
func WithPlan(plan string) func(*model.Payment) {
	return func(p *model.Payment) {
		p.Plan = plan
	}
}

// TestApproval 创建审批记录
func TestApproval(t *testing.T, db *gorm.DB, paymentID int64, token string, expiresAt time.Time) *model.PaymentApproval {
	t.Helper()

	approval := &model.PaymentApproval{
		PaymentID: paymentID,
		Token:     token,
		Status:    model.ApprovalPending,
		ExpiresAt: expiresAt,
	}
	mustCreate(t, db, approval)
	return approval
}
