package model

import (
	"time"
)

// ScoutEmail 企业发给工程师的 scout。同一 (企业, 职位, 工程师) 不重复发送由调用方保证。
type ScoutEmail struct {
	ID         int64      `gorm:"primaryKey" json:"id"`
	CompanyID  int64      `gorm:"not null;index" json:"company_id"`
	EngineerID int64      `gorm:"not null;index" json:"engineer_id"`
	JobID      *int64     `gorm:"index" json:"job_id,omitempty"`
	Subject    string     `gorm:"size:255;not null" json:"subject"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	MatchScore *int       `json:"match_score,omitempty"`
	IsRead     bool       `gorm:"default:false" json:"is_read"`
	IsReplied  bool       `gorm:"default:false" json:"is_replied"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	RepliedAt  *time.Time `json:"replied_at,omitempty"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`

	Company  *Company  `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Engineer *Engineer `gorm:"foreignKey:EngineerID" json:"engineer,omitempty"`
	Job      *Job      `gorm:"foreignKey:JobID" json:"job,omitempty"`
}

func (ScoutEmail) TableName() string {
	return "scout_emails"
}
