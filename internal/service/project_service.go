package service

import (
	"errors"
	"strings"

	"github.com/gosimple/slug"

	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/clock"
	"github.com/qs3c/devmatch_server/internal/repository"
)

var (
	ErrProjectNotFound = errors.New("项目不存在")
	ErrProjectClosed   = errors.New("项目已关闭")
)

type ProjectService struct {
	store *repository.Store
	quota *QuotaService
	clock clock.Clock
}

func NewProjectService(store *repository.Store, quota *QuotaService, clk clock.Clock) *ProjectService {
	return &ProjectService{
		store: store,
		quota: quota,
		clock: clk,
	}
}

// Create 发布项目，门槛与职位相同
func (s *ProjectService) Create(userID int64, req *dto.CreateProjectRequest) (*model.ProjectPost, error) {
	company, err := s.store.Companies.GetByUserID(userID)
	if err != nil {
		return nil, notFound(err, ErrCompanyNotFound)
	}
	if err := s.quota.CheckProjectPosting(company); err != nil {
		return nil, err
	}
	if err := checkRange("budget_max", req.BudgetMin, req.BudgetMax); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	dup, err := s.store.Projects.ExistsOpenTitle(company.ID, title)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrDuplicateTitle
	}

	now := s.clock.Now()
	project := &model.ProjectPost{
		CompanyID:      company.ID,
		Title:          title,
		Slug:           slug.Make(title),
		Description:    req.Description,
		BudgetMin:      req.BudgetMin,
		BudgetMax:      req.BudgetMax,
		DurationMonths: req.DurationMonths,
		Skills:         normalizeSkills(req.Skills),
		RemoteOK:       req.RemoteOK,
		Status:         model.PostingStatusOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Projects.Create(project); err != nil {
		return nil, err
	}
	return project, nil
}

// Search 开放项目列表
func (s *ProjectService) Search(q *dto.ProjectListQuery) ([]*model.ProjectPost, int64, error) {
	return s.store.Projects.List(strings.TrimSpace(q.Keyword), model.PostingStatusOpen, 0, repository.Page{Page: q.Page, PageSize: q.PageSize})
}

func (s *ProjectService) Get(id int64) (*model.ProjectPost, error) {
	project, err := s.store.Projects.GetByID(id)
	if err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}
	return project, nil
}

// Close 关闭项目
func (s *ProjectService) Close(userID, id int64) error {
	project, err := s.owned(userID, id)
	if err != nil {
		return err
	}
	return s.store.Projects.UpdateStatus(project.ID, model.PostingStatusClosed)
}

// Apply 工程师应募开放项目
func (s *ProjectService) Apply(userID, projectID int64, req *dto.ApplyProjectRequest) (*model.ProjectApplication, error) {
	engineer, err := s.store.Engineers.GetByUserID(userID)
	if err != nil {
		return nil, notFound(err, ErrEngineerNotFound)
	}
	project, err := s.Get(projectID)
	if err != nil {
		return nil, err
	}
	if project.Status != model.PostingStatusOpen {
		return nil, ErrProjectClosed
	}

	exists, err := s.store.Projects.ApplicationExists(project.ID, engineer.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyApplied
	}

	now := s.clock.Now()
	app := &model.ProjectApplication{
		ProjectID:    project.ID,
		EngineerID:   engineer.ID,
		Proposal:     req.Proposal,
		ProposedRate: req.ProposedRate,
		Status:       model.ProjectApplicationApplied,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Projects.CreateApplication(app); err != nil {
		return nil, err
	}
	return app, nil
}

// ListApplications 企业查看项目应募
func (s *ProjectService) ListApplications(userID, projectID int64, page repository.Page) ([]*model.ProjectApplication, int64, error) {
	project, err := s.owned(userID, projectID)
	if err != nil {
		return nil, 0, err
	}
	return s.store.Projects.ListApplications(project.ID, page)
}

func (s *ProjectService) owned(userID, id int64) (*model.ProjectPost, error) {
	company, err := s.store.Companies.GetByUserID(userID)
	if err != nil {
		return nil, notFound(err, ErrCompanyNotFound)
	}
	project, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if project.CompanyID != company.ID {
		return nil, ErrForbidden
	}
	return project, nil
}
