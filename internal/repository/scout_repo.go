package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/devmatch_server/internal/model"
)

type ScoutRepository struct {
	db *gorm.DB
}

func NewScoutRepository(db *gorm.DB) *ScoutRepository {
	return &ScoutRepository{db: db}
}

func (r *ScoutRepository) Create(scout *model.ScoutEmail) error {
	return r.db.Create(scout).Error
}

func (r *ScoutRepository) CreateBatch(scouts []*model.ScoutEmail) error {
	if len(scouts) == 0 {
		return nil
	}
	return r.db.CreateInBatches(scouts, 100).Error
}

func (r *ScoutRepository) GetByID(id int64) (*model.ScoutEmail, error) {
	var scout model.ScoutEmail
	err := r.db.Preload("Company").Preload("Engineer").Preload("Job").Where("id = ?", id).First(&scout).Error
	if err != nil {
		return nil, err
	}
	return &scout, nil
}

// ScoutedEngineerIDs 企业已经就某职位 scout 过的工程师；jobID 为 nil 时统计不关联职位的 scout
func (r *ScoutRepository) ScoutedEngineerIDs(companyID int64, jobID *int64) (map[int64]struct{}, error) {
	var ids []int64
	query := r.db.Model(&model.ScoutEmail{}).Where("company_id = ?", companyID)
	if jobID != nil {
		query = query.Where("job_id = ?", *jobID)
	} else {
		query = query.Where("job_id IS NULL")
	}
	if err := query.Distinct().Pluck("engineer_id", &ids).Error; err != nil {
		return nil, err
	}

	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// CountSentSince 企业在 since 之后发送的 scout 数
func (r *ScoutRepository) CountSentSince(companyID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.ScoutEmail{}).
		Where("company_id = ? AND created_at >= ?", companyID, since).
		Count(&count).Error
	return count, err
}

func (r *ScoutRepository) ListByCompany(companyID int64, page Page) ([]*model.ScoutEmail, int64, error) {
	var scouts []*model.ScoutEmail
	var total int64

	query := r.db.Model(&model.ScoutEmail{}).Where("company_id = ?", companyID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Engineer").Preload("Job").
		Order("created_at DESC").Order("id DESC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&scouts).Error
	return scouts, total, err
}

func (r *ScoutRepository) ListByEngineer(engineerID int64, page Page) ([]*model.ScoutEmail, int64, error) {
	var scouts []*model.ScoutEmail
	var total int64

	query := r.db.Model(&model.ScoutEmail{}).Where("engineer_id = ?", engineerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Company").Preload("Job").
		Order("created_at DESC").Order("id DESC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&scouts).Error
	return scouts, total, err
}

func (r *ScoutRepository) MarkRead(id int64, now time.Time) error {
	return r.db.Model(&model.ScoutEmail{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
}

// MarkReplied 回复同时视为已读
func (r *ScoutRepository) MarkReplied(id int64, now time.Time) error {
	return r.db.Model(&model.ScoutEmail{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_replied": true,
			"replied_at": now,
			"is_read":    true,
			"read_at":    gorm.Expr("COALESCE(read_at, ?)", now),
		}).Error
}
