package dto

// CreateJobRequest 发布职位
type CreateJobRequest struct {
	Title          string   `json:"title" binding:"required,max=200"`
	Description    string   `json:"description" binding:"required,max=10000"`
	EmploymentType string   `json:"employment_type" binding:"omitempty,oneof=full_time contract part_time freelance"`
	Location       string   `json:"location" binding:"max=255"`
	RemoteOK       bool     `json:"remote_ok"`
	SalaryMin      *int     `json:"salary_min,omitempty" binding:"omitempty,min=0"`
	SalaryMax      *int     `json:"salary_max,omitempty" binding:"omitempty,min=0"`
	Skills         []string `json:"skills" binding:"max=30,dive,required,max=100"`
	OptionalSkills []string `json:"optional_skills" binding:"max=30,dive,required,max=100"`
}

// UpdateJobRequest 更新职位；Skills 为 nil 时不修改技能
type UpdateJobRequest struct {
	Title          *string  `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Description    *string  `json:"description,omitempty" binding:"omitempty,max=10000"`
	EmploymentType *string  `json:"employment_type,omitempty" binding:"omitempty,oneof=full_time contract part_time freelance"`
	Location       *string  `json:"location,omitempty" binding:"omitempty,max=255"`
	RemoteOK       *bool    `json:"remote_ok,omitempty"`
	SalaryMin      *int     `json:"salary_min,omitempty" binding:"omitempty,min=0"`
	SalaryMax      *int     `json:"salary_max,omitempty" binding:"omitempty,min=0"`
	Skills         []string `json:"skills,omitempty" binding:"omitempty,max=30,dive,required,max=100"`
}

// JobListQuery 职位搜索参数
type JobListQuery struct {
	PageQuery
	Keyword        string `form:"keyword" binding:"max=100"`
	Location       string `form:"location" binding:"max=100"`
	Skill          string `form:"skill" binding:"max=100"`
	EmploymentType string `form:"employment_type" binding:"omitempty,oneof=full_time contract part_time freelance"`
	Remote         bool   `form:"remote"`
}

// ApplyJobRequest 应聘
type ApplyJobRequest struct {
	CoverLetter string `json:"cover_letter" binding:"max=5000"`
}

// UpdateApplicationStatusRequest 企业更新应聘状态
type UpdateApplicationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=reviewing interview offered rejected"`
}
