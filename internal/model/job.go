package model

import (
	"time"
)

// 职位 / 项目状态
const (
	PostingStatusOpen   = "open"
	PostingStatusClosed = "closed"
)

// 雇佣形态
const (
	EmploymentFullTime  = "full_time"
	EmploymentContract  = "contract"
	EmploymentPartTime  = "part_time"
	EmploymentFreelance = "freelance"
)

type Job struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	CompanyID      int64      `gorm:"not null;index" json:"company_id"`
	Title          string     `gorm:"size:200;not null" json:"title"`
	Slug           string     `gorm:"size:255;index" json:"slug"`
	Description    string     `gorm:"type:text" json:"description"`
	EmploymentType string     `gorm:"size:20;default:full_time" json:"employment_type"`
	Location       string     `gorm:"size:255" json:"location"`
	RemoteOK       bool       `gorm:"default:false" json:"remote_ok"`
	SalaryMin      *int       `json:"salary_min,omitempty"`
	SalaryMax      *int       `json:"salary_max,omitempty"`
	Status         string     `gorm:"size:20;default:open;index" json:"status"`
	ViewCount      int        `gorm:"default:0" json:"view_count"`
	Skills         []JobSkill `gorm:"foreignKey:JobID" json:"skills"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}

func (Job) TableName() string {
	return "jobs"
}

// SkillNames 返回职位声明的全部技能
func (j *Job) SkillNames() []string {
	names := make([]string, 0, len(j.Skills))
	for _, s := range j.Skills {
		names = append(names, s.SkillName)
	}
	return names
}

// RequiredSkillNames 返回必需技能，匹配评分只看这部分
func (j *Job) RequiredSkillNames() []string {
	var names []string
	for _, s := range j.Skills {
		if s.IsRequired {
			names = append(names, s.SkillName)
		}
	}
	return names
}

type JobSkill struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	JobID      int64  `gorm:"not null;index" json:"job_id"`
	SkillName  string `gorm:"size:100;not null" json:"skill_name"`
	IsRequired bool   `json:"is_required"`
}

func (JobSkill) TableName() string {
	return "job_skills"
}
