package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/devmatch_server/internal/model"
)

type VerificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) Create(v *model.EmailVerification) error {
	return r.db.Create(v).Error
}

// FindValid 查找未使用且未过期的验证码
func (r *VerificationRepository) FindValid(email, code string, now time.Time) (*model.EmailVerification, error) {
	var v model.EmailVerification
	err := r.db.Where("email = ? AND code = ? AND used_at IS NULL AND expires_at > ?", email, code, now).
		Order("id DESC").First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// MarkUsed 条件更新，验证码只能使用一次
func (r *VerificationRepository) MarkUsed(id int64, now time.Time) (bool, error) {
	result := r.db.Model(&model.EmailVerification{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", now)
	return result.RowsAffected > 0, result.Error
}

// InvalidateForUser 作废用户全部未使用的验证码（重发时）
func (r *VerificationRepository) InvalidateForUser(userID int64, now time.Time) error {
	return r.db.Model(&model.EmailVerification{}).
		Where("user_id = ? AND used_at IS NULL", userID).
		Update("expires_at", now).Error
}

// PurgeStale 删除已使用或已过期的验证码
func (r *VerificationRepository) PurgeStale(now time.Time) (int64, error) {
	result := r.db.Where("used_at IS NOT NULL OR expires_at <= ?", now).Delete(&model.EmailVerification{})
	return result.RowsAffected, result.Error
}

func (r *VerificationRepository) CountStale(now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.EmailVerification{}).
		Where("used_at IS NOT NULL OR expires_at <= ?", now).
		Count(&count).Error
	return count, err
}
