package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/devmatch_server/internal/model"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Create(company *model.Company) error {
	return r.db.Create(company).Error
}

func (r *CompanyRepository) GetByID(id int64) (*model.Company, error) {
	var company model.Company
	err := r.db.Preload("User").Where("id = ?", id).First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *CompanyRepository) GetByUserID(userID int64) (*model.Company, error) {
	var company model.Company
	err := r.db.Preload("User").Where("user_id = ?", userID).First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *CompanyRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Company{}).Where("id = ?", id).Updates(fields).Error
}

// StartTrialIfUnused 仅在从未使用过试用时开启试用，返回是否开启
func (r *CompanyRepository) StartTrialIfUnused(id int64, start, end time.Time) (bool, error) {
	result := r.db.Model(&model.Company{}).
		Where("id = ? AND has_used_trial = ?", id, false).
		Updates(map[string]interface{}{
			"is_trial_active":  true,
			"has_used_trial":   true,
			"trial_start_date": start,
			"trial_end_date":   end,
		})
	return result.RowsAffected > 0, result.Error
}

// DeactivateExpiredTrials 清理已到期但标记仍为激活的试用
func (r *CompanyRepository) DeactivateExpiredTrials(now time.Time) (int64, error) {
	result := r.db.Model(&model.Company{}).
		Where("is_trial_active = ? AND trial_end_date IS NOT NULL AND trial_end_date <= ?", true, now).
		Update("is_trial_active", false)
	return result.RowsAffected, result.Error
}

// CountExpiredTrials 统计待清理的试用（dry-run 使用）
func (r *CompanyRepository) CountExpiredTrials(now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Company{}).
		Where("is_trial_active = ? AND trial_end_date IS NOT NULL AND trial_end_date <= ?", true, now).
		Count(&count).Error
	return count, err
}

// RevokeExpiredScoutAccess 收回到期的 scout 权限
func (r *CompanyRepository) RevokeExpiredScoutAccess(now time.Time) (int64, error) {
	result := r.db.Model(&model.Company{}).
		Where("has_scout_access = ? AND (scout_access_expires_at IS NULL OR scout_access_expires_at <= ?)", true, now).
		Update("has_scout_access", false)
	return result.RowsAffected, result.Error
}

func (r *CompanyRepository) CountExpiredScoutAccess(now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Company{}).
		Where("has_scout_access = ? AND (scout_access_expires_at IS NULL OR scout_access_expires_at <= ?)", true, now).
		Count(&count).Error
	return count, err
}

// ListTrialsEndingBetween 试用在 (from, to] 内到期的企业，用于到期提醒
func (r *CompanyRepository) ListTrialsEndingBetween(from, to time.Time) ([]*model.Company, error) {
	var companies []*model.Company
	err := r.db.Preload("User").
		Where("is_trial_active = ? AND trial_end_date > ? AND trial_end_date <= ?", true, from, to).
		Find(&companies).Error
	return companies, err
}
