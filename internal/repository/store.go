package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store 聚合全部仓储，WithTransaction 内的仓储共享同一事务
type Store struct {
	db *gorm.DB

	Users         *UserRepository
	Companies     *CompanyRepository
	Engineers     *EngineerRepository
	Jobs          *JobRepository
	Applications  *ApplicationRepository
	Projects      *ProjectRepository
	Messages      *MessageRepository
	Scouts        *ScoutRepository
	Payments      *PaymentRepository
	Skills        *SkillRepository
	Verifications *VerificationRepository
	Contacts      *ContactRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewUserRepository(db),
		Companies:     NewCompanyRepository(db),
		Engineers:     NewEngineerRepository(db),
		Jobs:          NewJobRepository(db),
		Applications:  NewApplicationRepository(db),
		Projects:      NewProjectRepository(db),
		Messages:      NewMessageRepository(db),
		Scouts:        NewScoutRepository(db),
		Payments:      NewPaymentRepository(db),
		Skills:        NewSkillRepository(db),
		Verifications: NewVerificationRepository(db),
		Contacts:      NewContactRepository(db),
	}
}

// DB 底层连接
func (s *Store) DB() *gorm.DB {
	return s.db
}

// WithTransaction 在一个事务中执行 fn，fn 返回错误时整体回滚
func (s *Store) WithTransaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Page 分页参数
type Page struct {
	Page     int
	PageSize int
}

// Normalize 缺省第 1 页，每页 20 条，最多 100 条
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	return p
}

func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.PageSize
}

func (p Page) Limit() int {
	return p.Normalize().PageSize
}
