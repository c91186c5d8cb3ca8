package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/devmatch_server/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(msg *model.Message) error {
	return r.db.Create(msg).Error
}

func (r *MessageRepository) GetByID(id int64) (*model.Message, error) {
	var msg model.Message
	err := r.db.Where("id = ?", id).First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListConversation 两个用户之间的消息，按时间正序
func (r *MessageRepository) ListConversation(userA, userB int64, page Page) ([]*model.Message, int64, error) {
	var msgs []*model.Message
	var total int64

	query := r.db.Model(&model.Message{}).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", userA, userB, userB, userA)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Sender").
		Order("created_at ASC").Order("id ASC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&msgs).Error
	return msgs, total, err
}

// ListInbox 收到的消息，按时间倒序
func (r *MessageRepository) ListInbox(userID int64, page Page) ([]*model.Message, int64, error) {
	var msgs []*model.Message
	var total int64

	query := r.db.Model(&model.Message{}).Where("receiver_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Sender").
		Order("created_at DESC").Order("id DESC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&msgs).Error
	return msgs, total, err
}

// MarkRead 只有收件人可以标记已读，返回是否更新
func (r *MessageRepository) MarkRead(id, receiverID int64, now time.Time) (bool, error) {
	result := r.db.Model(&model.Message{}).
		Where("id = ? AND receiver_id = ? AND is_read = ?", id, receiverID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	return result.RowsAffected > 0, result.Error
}

// MarkConversationRead 标记来自 senderID 的全部消息为已读
func (r *MessageRepository) MarkConversationRead(receiverID, senderID int64, now time.Time) (int64, error) {
	result := r.db.Model(&model.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND is_read = ?", receiverID, senderID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	return result.RowsAffected, result.Error
}

func (r *MessageRepository) CountUnread(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
