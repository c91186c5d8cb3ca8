package model

import (
	"time"
)

type Message struct {
	ID           int64      `gorm:"primaryKey" json:"id"`
	SenderID     int64      `gorm:"not null;index" json:"sender_id"`
	ReceiverID   int64      `gorm:"not null;index" json:"receiver_id"`
	ScoutEmailID *int64     `gorm:"index" json:"scout_email_id,omitempty"`
	Content      string     `gorm:"type:text;not null" json:"content"`
	IsRead       bool       `gorm:"default:false" json:"is_read"`
	ReadAt       *time.Time `json:"read_at,omitempty"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}
