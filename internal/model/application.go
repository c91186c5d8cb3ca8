package model

import (
	"time"
)

// 应聘状态
const (
	ApplicationApplied   = "applied"
	ApplicationReviewing = "reviewing"
	ApplicationInterview = "interview"
	ApplicationOffered   = "offered"
	ApplicationRejected  = "rejected"
	ApplicationWithdrawn = "withdrawn"
)

type Application struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	JobID       int64     `gorm:"not null;uniqueIndex:idx_job_engineer" json:"job_id"`
	EngineerID  int64     `gorm:"not null;uniqueIndex:idx_job_engineer;index" json:"engineer_id"`
	CoverLetter string    `gorm:"type:text" json:"cover_letter"`
	Status      string    `gorm:"size:20;default:applied;index" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Job      *Job      `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Engineer *Engineer `gorm:"foreignKey:EngineerID" json:"engineer,omitempty"`
}

func (Application) TableName() string {
	return "applications"
}
