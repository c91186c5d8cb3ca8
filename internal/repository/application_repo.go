package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/devmatch_server/internal/model"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(app *model.Application) error {
	return r.db.Create(app).Error
}

func (r *ApplicationRepository) GetByID(id int64) (*model.Application, error) {
	var app model.Application
	err := r.db.Preload("Job").Preload("Engineer").Where("id = ?", id).First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) Exists(jobID, engineerID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.Application{}).
		Where("job_id = ? AND engineer_id = ?", jobID, engineerID).
		Count(&count).Error
	return count > 0, err
}

func (r *ApplicationRepository) ListByEngineer(engineerID int64, page Page) ([]*model.Application, int64, error) {
	var apps []*model.Application
	var total int64

	query := r.db.Model(&model.Application{}).Where("engineer_id = ?", engineerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Job").Preload("Job.Company").
		Order("created_at DESC").Order("id DESC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&apps).Error
	return apps, total, err
}

func (r *ApplicationRepository) ListByJob(jobID int64, page Page) ([]*model.Application, int64, error) {
	var apps []*model.Application
	var total int64

	query := r.db.Model(&model.Application{}).Where("job_id = ?", jobID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Engineer").
		Order("created_at DESC").Order("id DESC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&apps).Error
	return apps, total, err
}

func (r *ApplicationRepository) UpdateStatus(id int64, status string) error {
	return r.db.Model(&model.Application{}).Where("id = ?", id).Update("status", status).Error
}
