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

var (
	ErrApplicationNotFound = errors.New("应聘记录不存在")
	ErrAlreadyApplied      = errors.New("已经应聘过该职位")
	ErrInvalidStatus       = errors.New("当前状态不允许该操作")
)

type ApplicationService struct {
	store  *repository.Store
	cfg    *config.Config
	clock  clock.Clock
	mailer Mailer
	logger *zap.Logger
}

func NewApplicationService(store *repository.Store, cfg *config.Config, clk clock.Clock, mailer Mailer, logger *zap.Logger) *ApplicationService {
	return &ApplicationService{
		store:  store,
		cfg:    cfg,
		clock:  clk,
		mailer: mailerOrNop(mailer),
		logger: logger.Named("application"),
	}
}

// Apply 工程师应聘开放职位，并通知企业
func (s *ApplicationService) Apply(userID, jobID int64, req *dto.ApplyJobRequest) (*model.Application, error) {
	engineer, err := s.store.Engineers.GetByUserID(userID)
	if err != nil {
		return nil, notFound(err, ErrEngineerNotFound)
	}
	job, err := s.store.Jobs.GetByID(jobID)
	if err != nil {
		return nil, notFound(err, ErrJobNotFound)
	}
	if job.Status != model.PostingStatusOpen {
		return nil, ErrJobClosed
	}

	exists, err := s.store.Applications.Exists(job.ID, engineer.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyApplied
	}

	now := s.clock.Now()
	app := &model.Application{
		JobID:       job.ID,
		EngineerID:  engineer.ID,
		CoverLetter: req.CoverLetter,
		Status:      model.ApplicationApplied,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Applications.Create(app); err != nil {
		return nil, err
	}

	company, err := s.store.Companies.GetByID(job.CompanyID)
	if err != nil || company.User == nil {
		s.logger.Warn("skip application mail, company owner not loaded", zap.Int64("job_id", job.ID), zap.Error(err))
		return app, nil
	}
	s.mailer.Notify(email.ApplicationReceived(company.User.Email, company.Name, job.Title, engineer.Name, s.cfg.Email.BaseURL, job.ID))
	return app, nil
}

// ListMine 工程师自己的应聘
func (s *ApplicationService) ListMine(userID int64, page repository.Page) ([]*model.Application, int64, error) {
	engineer, err := s.store.Engineers.GetByUserID(userID)
	if err != nil {
		return nil, 0, notFound(err, ErrEngineerNotFound)
	}
	return s.store.Applications.ListByEngineer(engineer.ID, page)
}

// ListForJob 企业查看职位的应聘者
func (s *ApplicationService) ListForJob(userID, jobID int64, page repository.Page) ([]*model.Application, int64, error) {
	job, err := ownedJob(s.store, userID, jobID)
	if err != nil {
		return nil, 0, err
	}
	return s.store.Applications.ListByJob(job.ID, page)
}

// UpdateStatus 企业推进应聘状态，已撤回的应聘不可修改
func (s *ApplicationService) UpdateStatus(userID, appID int64, status string) (*model.Application, error) {
	switch status {
	case model.ApplicationReviewing, model.ApplicationInterview, model.ApplicationOffered, model.ApplicationRejected:
	default:
		return nil, ErrInvalidStatus
	}

	app, err := s.store.Applications.GetByID(appID)
	if err != nil {
		return nil, notFound(err, ErrApplicationNotFound)
	}
	if _, err := ownedJob(s.store, userID, app.JobID); err != nil {
		return nil, err
	}
	if app.Status == model.ApplicationWithdrawn {
		return nil, ErrInvalidStatus
	}

	if err := s.store.Applications.UpdateStatus(app.ID, status); err != nil {
		return nil, err
	}
	app.Status = status
	return app, nil
}

// Withdraw 工程师撤回应聘
func (s *ApplicationService) Withdraw(userID, appID int64) error {
	engineer, err := s.store.Engineers.GetByUserID(userID)
	if err != nil {
		return notFound(err, ErrEngineerNotFound)
	}
	app, err := s.store.Applications.GetByID(appID)
	if err != nil {
		return notFound(err, ErrApplicationNotFound)
	}
	if app.EngineerID != engineer.ID {
		return ErrForbidden
	}
	switch app.Status {
	case model.ApplicationWithdrawn, model.ApplicationRejected, model.ApplicationOffered:
		return ErrInvalidStatus
	}
	return s.store.Applications.UpdateStatus(app.ID, model.ApplicationWithdrawn)
}
