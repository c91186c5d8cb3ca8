package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/devmatch_server/internal/model"
)

type SkillRepository struct {
	db *gorm.DB
}

func NewSkillRepository(db *gorm.DB) *SkillRepository {
	return &SkillRepository{db: db}
}

func (r *SkillRepository) List(category string) ([]*model.Skill, error) {
	var skills []*model.Skill
	query := r.db.Model(&model.Skill{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Order("category ASC").Order("name ASC").Find(&skills).Error
	return skills, err
}

// CreateIgnoreDuplicates 按名称去重写入
func (r *SkillRepository) CreateIgnoreDuplicates(skills []*model.Skill) error {
	if len(skills) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&skills).Error
}
