package model

import (
	"time"

	"gorm.io/datatypes"
)

type Engineer struct {
	ID                int64                       `gorm:"primaryKey" json:"id"`
	UserID            int64                       `gorm:"not null;uniqueIndex" json:"user_id"`
	Name              string                      `gorm:"size:100;not null" json:"name"`
	Title             string                      `gorm:"size:200" json:"title"`
	Bio               string                      `gorm:"type:text" json:"bio"`
	Address           string                      `gorm:"size:500" json:"address"`
	YearsOfExperience int                         `gorm:"default:0" json:"years_of_experience"`
	DesiredSalaryMin  *int                        `json:"desired_salary_min,omitempty"`
	DesiredSalaryMax  *int                        `json:"desired_salary_max,omitempty"`
	Skills            datatypes.JSONSlice[string] `json:"skills"`
	GithubURL         string                      `gorm:"size:500" json:"github_url"`
	ResumeURL         string                      `gorm:"size:500" json:"resume_url"`
	AvatarURL         string                      `gorm:"size:500" json:"avatar_url"`
	IsOpenToScout     bool                        `gorm:"default:true;index" json:"is_open_to_scout"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Engineer) TableName() string {
	return "engineers"
}
