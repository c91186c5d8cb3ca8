package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/devmatch_server/internal/model"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// JobFilter 职位搜索条件
type JobFilter struct {
	Keyword        string
	Location       string
	Skill          string
	EmploymentType string
	RemoteOnly     bool
	Status         string
	CompanyID      int64
}

// Create 同时写入技能行
func (r *JobRepository) Create(job *model.Job) error {
	return r.db.Create(job).Error
}

func (r *JobRepository) GetByID(id int64) (*model.Job, error) {
	var job model.Job
	err := r.db.Preload("Skills").Preload("Company").Where("id = ?", id).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Update 更新字段，skills 非 nil 时整体替换技能行
func (r *JobRepository) Update(id int64, fields map[string]interface{}, skills []model.JobSkill) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			if err := tx.Model(&model.Job{}).Where("id = ?", id).Updates(fields).Error; err != nil {
				return err
			}
		}
		if skills == nil {
			return nil
		}
		if err := tx.Where("job_id = ?", id).Delete(&model.JobSkill{}).Error; err != nil {
			return err
		}
		if len(skills) == 0 {
			return nil
		}
		for i := range skills {
			skills[i].ID = 0
			skills[i].JobID = id
		}
		return tx.Create(&skills).Error
	})
}

func (r *JobRepository) UpdateStatus(id int64, status string) error {
	return r.db.Model(&model.Job{}).Where("id = ?", id).Update("status", status).Error
}

func (r *JobRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", id).Delete(&model.JobSkill{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Job{}, id).Error
	})
}

func (r *JobRepository) IncrementViewCount(id int64) error {
	return r.db.Model(&model.Job{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// CountCreatedSince 企业在 since 之后发布的职位数
func (r *JobRepository) CountCreatedSince(companyID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Job{}).
		Where("company_id = ? AND created_at >= ?", companyID, since).
		Count(&count).Error
	return count, err
}

// ExistsOpenTitle 同一企业是否已有同名的开放职位
func (r *JobRepository) ExistsOpenTitle(companyID int64, title string, excludeID int64) (bool, error) {
	var count int64
	query := r.db.Model(&model.Job{}).
		Where("company_id = ? AND status = ? AND LOWER(title) = ?", companyID, model.PostingStatusOpen, strings.ToLower(strings.TrimSpace(title)))
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// List 搜索职位
func (r *JobRepository) List(filter JobFilter, page Page) ([]*model.Job, int64, error) {
	var jobs []*model.Job
	var total int64

	query := r.db.Model(&model.Job{})
	if filter.Status != "" {
		query = query.Where("jobs.status = ?", filter.Status)
	}
	if filter.CompanyID > 0 {
		query = query.Where("jobs.company_id = ?", filter.CompanyID)
	}
	if filter.Keyword != "" {
		kw := "%" + strings.ToLower(filter.Keyword) + "%"
		query = query.Where("LOWER(jobs.title) LIKE ? OR LOWER(jobs.description) LIKE ?", kw, kw)
	}
	if filter.Location != "" {
		query = query.Where("LOWER(jobs.location) LIKE ?", "%"+strings.ToLower(filter.Location)+"%")
	}
	if filter.EmploymentType != "" {
		query = query.Where("jobs.employment_type = ?", filter.EmploymentType)
	}
	if filter.RemoteOnly {
		query = query.Where("jobs.remote_ok = ?", true)
	}
	if filter.Skill != "" {
		sub := r.db.Model(&model.JobSkill{}).Select("job_id").
			Where("LOWER(skill_name) = ?", strings.ToLower(strings.TrimSpace(filter.Skill)))
		query = query.Where("jobs.id IN (?)", sub)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Skills").Preload("Company").
		Order("jobs.created_at DESC").Order("jobs.id DESC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&jobs).Error
	return jobs, total, err
}
