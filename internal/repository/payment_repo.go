package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/devmatch_server/internal/model"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(payment *model.Payment) error {
	return r.db.Create(payment).Error
}

func (r *PaymentRepository) GetByID(id int64) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.Where("id = ?", id).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) ListByCompany(companyID int64, page Page) ([]*model.Payment, int64, error) {
	var payments []*model.Payment
	var total int64

	query := r.db.Model(&model.Payment{}).Where("company_id = ?", companyID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Order("id DESC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&payments).Error
	return payments, total, err
}

// TransitionStatus 条件更新：只有当前状态允许迁移到 to 时才写入，返回是否命中
func (r *PaymentRepository) TransitionStatus(id int64, to model.PaymentStatus, fields map[string]interface{}) (bool, error) {
	sources := model.SourcesOf(to)
	if len(sources) == 0 {
		return false, nil
	}

	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}

	result := r.db.Model(&model.Payment{}).
		Where("id = ? AND status IN ?", id, sources).
		Updates(updates)
	return result.RowsAffected > 0, result.Error
}

func (r *PaymentRepository) GetApprovalByToken(token string) (*model.PaymentApproval, error) {
	var approval model.PaymentApproval
	err := r.db.Preload("Payment").Where("token = ?", token).First(&approval).Error
	if err != nil {
		return nil, err
	}
	return &approval, nil
}

func (r *PaymentRepository) GetApprovalByPaymentID(paymentID int64) (*model.PaymentApproval, error) {
	var approval model.PaymentApproval
	err := r.db.Where("payment_id = ?", paymentID).First(&approval).Error
	if err != nil {
		return nil, err
	}
	return &approval, nil
}

// UpsertApproval 一笔付款只有一条审批记录，重复申请时刷新 token 与有效期
func (r *PaymentRepository) UpsertApproval(approval *model.PaymentApproval) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "status", "expires_at", "processed_at", "updated_at"}),
	}).Create(approval).Error
}

// TransitionApproval 条件更新审批状态 from -> to，返回是否命中
func (r *PaymentRepository) TransitionApproval(id int64, from, to model.ApprovalStatus, now time.Time) (bool, error) {
	result := r.db.Model(&model.PaymentApproval{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "processed_at": now})
	return result.RowsAffected > 0, result.Error
}

// ClosePendingApproval 将付款仍待处理的审批记录置为 to，没有待处理记录时返回 false
func (r *PaymentRepository) ClosePendingApproval(paymentID int64, to model.ApprovalStatus, now time.Time) (bool, error) {
	result := r.db.Model(&model.PaymentApproval{}).
		Where("payment_id = ? AND status = ?", paymentID, model.ApprovalPending).
		Updates(map[string]interface{}{"status": to, "processed_at": now, "updated_at": now})
	return result.RowsAffected > 0, result.Error
}
