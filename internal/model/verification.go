package model

import (
	"time"
)

type EmailVerification struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	UserID    int64      `gorm:"not null;index" json:"user_id"`
	Email     string     `gorm:"size:100;not null;index" json:"email"`
	Code      string     `gorm:"size:10;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (EmailVerification) TableName() string {
	return "email_verifications"
}
