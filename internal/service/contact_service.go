package service

import (
	"errors"

	"go.uber.org/zap"

	"github.com/qs3c/devmatch_server/config"
	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/clock"
	"github.com/qs3c/devmatch_server/internal/pkg/email"
	"github.com/qs3c/devmatch_server/internal/repository"
)

var ErrInquiryNotFound = errors.New("咨询不存在")

type ContactService struct {
	store  *repository.Store
	cfg    *config.Config
	clock  clock.Clock
	mailer Mailer
	logger *zap.Logger
}

func NewContactService(store *repository.Store, cfg *config.Config, clk clock.Clock, mailer Mailer, logger *zap.Logger) *ContactService {
	return &ContactService{
		store:  store,
		cfg:    cfg,
		clock:  clk,
		mailer: mailerOrNop(mailer),
		logger: logger.Named("contact"),
	}
}

// Submit 保存咨询，通知管理员并给提交人发送确认
func (s *ContactService) Submit(req *dto.ContactRequest) (*model.ContactInquiry, error) {
	inquiry := &model.ContactInquiry{
		Name:        req.Name,
		Email:       req.Email,
		CompanyName: req.CompanyName,
		Category:    req.Category,
		Subject:     req.Subject,
		Message:     req.Message,
		Status:      model.InquiryStatusNew,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.store.Contacts.Create(inquiry); err != nil {
		return nil, err
	}

	q := email.ContactInquiry{
		ID:          inquiry.ID,
		Name:        inquiry.Name,
		Email:       inquiry.Email,
		CompanyName: inquiry.CompanyName,
		Category:    inquiry.Category,
		Subject:     inquiry.Subject,
		Message:     inquiry.Message,
	}
	if s.cfg.Email.AdminEmail != "" {
		s.mailer.Notify(email.ContactAdmin(s.cfg.Email.AdminEmail, q))
	}
	s.mailer.Notify(email.ContactConfirmation(q))

	s.logger.Info("contact inquiry received", zap.Int64("id", inquiry.ID), zap.String("category", inquiry.Category))
	return inquiry, nil
}

func (s *ContactService) List(status string, page repository.Page) ([]*model.ContactInquiry, int64, error) {
	return s.store.Contacts.List(status, page)
}

// Resolve 标记咨询为已处理，重复处理不报错
func (s *ContactService) Resolve(id int64) error {
	ok, err := s.store.Contacts.Resolve(id, s.clock.Now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrInquiryNotFound
	}
	return nil
}
