package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/devmatch_server/internal/model"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(inquiry *model.ContactInquiry) error {
	return r.db.Create(inquiry).Error
}

func (r *ContactRepository) List(status string, page Page) ([]*model.ContactInquiry, int64, error) {
	var inquiries []*model.ContactInquiry
	var total int64

	query := r.db.Model(&model.ContactInquiry{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Order("id DESC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&inquiries).Error
	return inquiries, total, err
}

// Resolve 标记为已处理，返回是否找到
func (r *ContactRepository) Resolve(id int64, now time.Time) (bool, error) {
	result := r.db.Model(&model.ContactInquiry{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": model.InquiryStatusResolved, "resolved_at": now})
	return result.RowsAffected > 0, result.Error
}
