package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/devmatch_server/internal/model"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(project *model.ProjectPost) error {
	return r.db.Create(project).Error
}

func (r *ProjectRepository) GetByID(id int64) (*model.ProjectPost, error) {
	var project model.ProjectPost
	err := r.db.Preload("Company").Where("id = ?", id).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) UpdateStatus(id int64, status string) error {
	return r.db.Model(&model.ProjectPost{}).Where("id = ?", id).Update("status", status).Error
}

func (r *ProjectRepository) CountCreatedSince(companyID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.ProjectPost{}).
		Where("company_id = ? AND created_at >= ?", companyID, since).
		Count(&count).Error
	return count, err
}

func (r *ProjectRepository) ExistsOpenTitle(companyID int64, title string) (bool, error) {
	var count int64
	err := r.db.Model(&model.ProjectPost{}).
		Where("company_id = ? AND status = ? AND LOWER(title) = ?", companyID, model.PostingStatusOpen, strings.ToLower(strings.TrimSpace(title))).
		Count(&count).Error
	return count > 0, err
}

// List 列出项目，keyword 匹配标题或描述
func (r *ProjectRepository) List(keyword, status string, companyID int64, page Page) ([]*model.ProjectPost, int64, error) {
	var projects []*model.ProjectPost
	var total int64

	query := r.db.Model(&model.ProjectPost{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if companyID > 0 {
		query = query.Where("company_id = ?", companyID)
	}
	if keyword != "" {
		kw := "%" + strings.ToLower(keyword) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", kw, kw)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Company").
		Order("created_at DESC").Order("id DESC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&projects).Error
	return projects, total, err
}

func (r *ProjectRepository) CreateApplication(app *model.ProjectApplication) error {
	return r.db.Create(app).Error
}

func (r *ProjectRepository) ApplicationExists(projectID, engineerID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.ProjectApplication{}).
		Where("project_id = ? AND engineer_id = ?", projectID, engineerID).
		Count(&count).Error
	return count > 0, err
}

func (r *ProjectRepository) ListApplications(projectID int64, page Page) ([]*model.ProjectApplication, int64, error) {
	var apps []*model.ProjectApplication
	var total int64

	query := r.db.Model(&model.ProjectApplication{}).Where("project_id = ?", projectID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Engineer").
		Order("created_at DESC").Order("id DESC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&apps).Error
	return apps, total, err
}
