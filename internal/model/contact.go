package model

import (
	"time"
)

const (
	InquiryStatusNew      = "new"
	InquiryStatusResolved = "resolved"
)

type ContactInquiry struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:100;not null" json:"name"`
	Email       string     `gorm:"size:100;not null" json:"email"`
	CompanyName string     `gorm:"size:200" json:"company_name"`
	Category    string     `gorm:"size:50" json:"category"`
	Subject     string     `gorm:"size:255;not null" json:"subject"`
	Message     string     `gorm:"type:text;not null" json:"message"`
	Status      string     `gorm:"size:20;default:new;index" json:"status"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (ContactInquiry) TableName() string {
	return "contact_inquiries"
}
