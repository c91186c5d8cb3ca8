package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/qs3c/devmatch_server/config"
	"github.com/qs3c/devmatch_server/internal/model"
	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/cache"
	"github.com/qs3c/devmatch_server/internal/pkg/clock"
	"github.com/qs3c/devmatch_server/internal/pkg/validate"
	"github.com/qs3c/devmatch_server/internal/repository"
)

var (
	ErrJobNotFound    = errors.New("职位不存在")
	ErrJobClosed      = errors.New("职位已关闭")
	ErrDuplicateTitle = errors.New("已存在同名的开放职位")
)

type JobService struct {
	store  *repository.Store
	quota  *QuotaService
	cache  cache.Cache
	clock  clock.Clock
	ttl    time.Duration
	logger *zap.Logger
}

func NewJobService(store *repository.Store, quota *QuotaService, c cache.Cache, clk clock.Clock, cfg *config.Config, logger *zap.Logger) *JobService {
	return &JobService{
		store:  store,
		quota:  quota,
		cache:  c,
		clock:  clk,
		ttl:    time.Duration(cfg.Cache.JobTTLSec) * time.Second,
		logger: logger.Named("job"),
	}
}

func jobCacheKey(id int64) string {
	return fmt.Sprintf("job:%d", id)
}

// Create 发布职位：需要付费功能权限、未超过今日上限、无同名开放职位
func (s *JobService) Create(userID int64, req *dto.CreateJobRequest) (*model.Job, error) {
	company, err := s.store.Companies.GetByUserID(userID)
	if err != nil {
		return nil, notFound(err, ErrCompanyNotFound)
	}
	if err := s.quota.CheckJobPosting(company); err != nil {
		return nil, err
	}
	if err := checkRange("salary_max", req.SalaryMin, req.SalaryMax); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	dup, err := s.store.Jobs.ExistsOpenTitle(company.ID, title, 0)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrDuplicateTitle
	}

	employment := req.EmploymentType
	if employment == "" {
		employment = model.EmploymentFullTime
	}

	now := s.clock.Now()
	job := &model.Job{
		CompanyID:      company.ID,
		Title:          title,
		Slug:           slug.Make(title),
		Description:    req.Description,
		EmploymentType: employment,
		Location:       strings.TrimSpace(req.Location),
		RemoteOK:       req.RemoteOK,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		Status:         model.PostingStatusOpen,
		Skills:         jobSkills(req.Skills, req.OptionalSkills),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Jobs.Create(job); err != nil {
		return nil, err
	}
	return job, nil
}

// Get 职位详情（读穿缓存），countView 为 true 时累加浏览数
func (s *JobService) Get(ctx context.Context, id int64, countView bool) (*model.Job, error) {
	var job model.Job
	err := cache.GetOrLoad(ctx, s.cache, jobCacheKey(id), s.ttl, &job, func(context.Context) (interface{}, error) {
		return s.store.Jobs.GetByID(id)
	})
	if err != nil {
		return nil, notFound(err, ErrJobNotFound)
	}

	if countView {
		if err := s.store.Jobs.IncrementViewCount(id); err != nil {
			s.logger.Warn("increment view count failed", zap.Int64("job_id", id), zap.Error(err))
		} else {
			job.ViewCount++
		}
	}
	return &job, nil
}

// Search 公开职位搜索，只返回开放职位
func (s *JobService) Search(q *dto.JobListQuery) ([]*model.Job, int64, error) {
	filter := repository.JobFilter{
		Keyword:        strings.TrimSpace(q.Keyword),
		Location:       strings.TrimSpace(q.Location),
		Skill:          strings.TrimSpace(q.Skill),
		EmploymentType: q.EmploymentType,
		RemoteOnly:     q.Remote,
		Status:         model.PostingStatusOpen,
	}
	return s.store.Jobs.List(filter, repository.Page{Page: q.Page, PageSize: q.PageSize})
}

// ListMine 企业自己的全部职位
func (s *JobService) ListMine(userID int64, page repository.Page) ([]*model.Job, int64, error) {
	company, err := s.store.Companies.GetByUserID(userID)
	if err != nil {
		return nil, 0, notFound(err, ErrCompanyNotFound)
	}
	return s.store.Jobs.List(repository.JobFilter{CompanyID: company.ID}, page)
}

// Update 更新职位
func (s *JobService) Update(ctx context.Context, userID, id int64, req *dto.UpdateJobRequest) (*model.Job, error) {
	job, err := s.owned(userID, id)
	if err != nil {
		return nil, err
	}

	min, max := job.SalaryMin, job.SalaryMax
	if req.SalaryMin != nil {
		min = req.SalaryMin
	}
	if req.SalaryMax != nil {
		max = req.SalaryMax
	}
	if err := checkRange("salary_max", min, max); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if !strings.EqualFold(title, job.Title) && job.Status == model.PostingStatusOpen {
			dup, err := s.store.Jobs.ExistsOpenTitle(job.CompanyID, title, job.ID)
			if err != nil {
				return nil, err
			}
			if dup {
				return nil, ErrDuplicateTitle
			}
		}
		fields["title"] = title
		fields["slug"] = slug.Make(title)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.EmploymentType != nil {
		fields["employment_type"] = *req.EmploymentType
	}
	if req.Location != nil {
		fields["location"] = strings.TrimSpace(*req.Location)
	}
	if req.RemoteOK != nil {
		fields["remote_ok"] = *req.RemoteOK
	}
	if req.SalaryMin != nil {
		fields["salary_min"] = *req.SalaryMin
	}
	if req.SalaryMax != nil {
		fields["salary_max"] = *req.SalaryMax
	}
	fields["updated_at"] = s.clock.Now()

	var skills []model.JobSkill
	if req.Skills != nil {
		skills = jobSkills(req.Skills, nil)
	}

	if err := s.store.Jobs.Update(job.ID, fields, skills); err != nil {
		return nil, err
	}
	s.invalidate(ctx, job.ID)
	return s.store.Jobs.GetByID(job.ID)
}

// Close 关闭职位
func (s *JobService) Close(ctx context.Context, userID, id int64) error {
	job, err := s.owned(userID, id)
	if err != nil {
		return err
	}
	if err := s.store.Jobs.UpdateStatus(job.ID, model.PostingStatusClosed); err != nil {
		return err
	}
	s.invalidate(ctx, job.ID)
	return nil
}

// Delete 删除职位
func (s *JobService) Delete(ctx context.Context, userID, id int64) error {
	job, err := s.owned(userID, id)
	if err != nil {
		return err
	}
	if err := s.store.Jobs.Delete(job.ID); err != nil {
		return err
	}
	s.invalidate(ctx, job.ID)
	return nil
}

// owned 读取职位并确认属于当前企业用户
func (s *JobService) owned(userID, id int64) (*model.Job, error) {
	return ownedJob(s.store, userID, id)
}

func (s *JobService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, jobCacheKey(id)); err != nil {
		s.logger.Warn("invalidate job cache failed", zap.Int64("job_id", id), zap.Error(err))
	}
}

func ownedJob(store *repository.Store, userID, jobID int64) (*model.Job, error) {
	company, err := store.Companies.GetByUserID(userID)
	if err != nil {
		return nil, notFound(err, ErrCompanyNotFound)
	}
	job, err := store.Jobs.GetByID(jobID)
	if err != nil {
		return nil, notFound(err, ErrJobNotFound)
	}
	if job.CompanyID != company.ID {
		return nil, ErrForbidden
	}
	job.Company = company
	return job, nil
}

func jobSkills(required, optional []string) []model.JobSkill {
	skills := make([]model.JobSkill, 0, len(required)+len(optional))
	for _, name := range normalizeSkills(required) {
		skills = append(skills, model.JobSkill{SkillName: name, IsRequired: true})
	}
	for _, name := range normalizeSkills(optional) {
		skills = append(skills, model.JobSkill{SkillName: name, IsRequired: false})
	}
	return skills
}

func checkRange(field string, min, max *int) error {
	if min != nil && max != nil && *min > *max {
		return validate.Field(field, "不能小于最低值")
	}
	return nil
}
