package model

import (
	"time"

	"gorm.io/datatypes"
)

type ProjectPost struct {
	ID             int64                       `gorm:"primaryKey" json:"id"`
	CompanyID      int64                       `gorm:"not null;index" json:"company_id"`
	Title          string                      `gorm:"size:200;not null" json:"title"`
	Slug           string                      `gorm:"size:255;index" json:"slug"`
	Description    string                      `gorm:"type:text" json:"description"`
	BudgetMin      *int                        `json:"budget_min,omitempty"`
	BudgetMax      *int                        `json:"budget_max,omitempty"`
	DurationMonths int                         `json:"duration_months"`
	Skills         datatypes.JSONSlice[string] `json:"skills"`
	RemoteOK       bool                        `gorm:"default:false" json:"remote_ok"`
	Status         string                      `gorm:"size:20;default:open;index" json:"status"`
	CreatedAt      time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`

	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}

func (ProjectPost) TableName() string {
	return "project_posts"
}

// 项目应募状态
const (
	ProjectApplicationApplied   = "applied"
	ProjectApplicationAccepted  = "accepted"
	ProjectApplicationRejected  = "rejected"
	ProjectApplicationWithdrawn = "withdrawn"
)

type ProjectApplication struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	ProjectID    int64     `gorm:"not null;uniqueIndex:idx_project_engineer" json:"project_id"`
	EngineerID   int64     `gorm:"not null;uniqueIndex:idx_project_engineer;index" json:"engineer_id"`
	Proposal     string    `gorm:"type:text" json:"proposal"`
	ProposedRate *int      `json:"proposed_rate,omitempty"`
	Status       string    `gorm:"size:20;default:applied" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Engineer *Engineer `gorm:"foreignKey:EngineerID" json:"engineer,omitempty"`
}

func (ProjectApplication) TableName() string {
	return "project_applications"
}
