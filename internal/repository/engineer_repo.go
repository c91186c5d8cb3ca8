package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/devmatch_server/internal/model"
)

type EngineerRepository struct {
	db *gorm.DB
}

func NewEngineerRepository(db *gorm.DB) *EngineerRepository {
	return &EngineerRepository{db: db}
}

func (r *EngineerRepository) Create(engineer *model.Engineer) error {
	return r.db.Create(engineer).Error
}

func (r *EngineerRepository) GetByID(id int64) (*model.Engineer, error) {
	var engineer model.Engineer
	err := r.db.Preload("User").Where("id = ?", id).First(&engineer).Error
	if err != nil {
		return nil, err
	}
	return &engineer, nil
}

func (r *EngineerRepository) GetByUserID(userID int64) (*model.Engineer, error) {
	var engineer model.Engineer
	err := r.db.Preload("User").Where("user_id = ?", userID).First(&engineer).Error
	if err != nil {
		return nil, err
	}
	return &engineer, nil
}

func (r *EngineerRepository) Update(engineer *model.Engineer) error {
	return r.db.Omit("User").Save(engineer).Error
}

func (r *EngineerRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Engineer{}).Where("id = ?", id).Updates(fields).Error
}

// ListOpenToScout 接受 scout 的工程师，可限定 id 范围
func (r *EngineerRepository) ListOpenToScout(ids []int64) ([]*model.Engineer, error) {
	var engineers []*model.Engineer
	query := r.db.Preload("User").Where("is_open_to_scout = ?", true)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	err := query.Order("id ASC").Find(&engineers).Error
	return engineers, err
}

// GetByIDs 批量查询
func (r *EngineerRepository) GetByIDs(ids []int64) ([]*model.Engineer, error) {
	var engineers []*model.Engineer
	if len(ids) == 0 {
		return engineers, nil
	}
	err := r.db.Preload("User").Where("id IN ?", ids).Find(&engineers).Error
	return engineers, err
}
