package dto

// UpdateEngineerRequest 更新工程师资料，未提供的字段不修改
type UpdateEngineerRequest struct {
	Name              *string  `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	Title             *string  `json:"title,omitempty" binding:"omitempty,max=200"`
	Bio               *string  `json:"bio,omitempty" binding:"omitempty,max=5000"`
	Address           *string  `json:"address,omitempty" binding:"omitempty,max=500"`
	YearsOfExperience *int     `json:"years_of_experience,omitempty" binding:"omitempty,min=0,max=60"`
	DesiredSalaryMin  *int     `json:"desired_salary_min,omitempty" binding:"omitempty,min=0"`
	DesiredSalaryMax  *int     `json:"desired_salary_max,omitempty" binding:"omitempty,min=0"`
	Skills            []string `json:"skills,omitempty" binding:"omitempty,max=50,dive,required,max=100"`
	GithubURL         *string  `json:"github_url,omitempty" binding:"omitempty,max=500"`
	IsOpenToScout     *bool    `json:"is_open_to_scout,omitempty"`
}

// PublicEngineer 企业可见的工程师资料
type PublicEngineer struct {
	ID                int64    `json:"id"`
	UserID            int64    `json:"user_id"`
	Name              string   `json:"name"`
	Title             string   `json:"title"`
	Bio               string   `json:"bio"`
	Address           string   `json:"address"`
	YearsOfExperience int      `json:"years_of_experience"`
	Skills            []string `json:"skills"`
	GithubURL         string   `json:"github_url"`
	AvatarURL         string   `json:"avatar_url"`
	IsOpenToScout     bool     `json:"is_open_to_scout"`
}
