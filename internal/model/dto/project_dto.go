package dto

// CreateProjectRequest 发布项目
type CreateProjectRequest struct {
	Title          string   `json:"title" binding:"required,max=200"`
	Description    string   `json:"description" binding:"required,max=10000"`
	BudgetMin      *int     `json:"budget_min,omitempty" binding:"omitempty,min=0"`
	BudgetMax      *int     `json:"budget_max,omitempty" binding:"omitempty,min=0"`
	DurationMonths int      `json:"duration_months" binding:"min=0,max=120"`
	Skills         []string `json:"skills" binding:"max=30,dive,required,max=100"`
	RemoteOK       bool     `json:"remote_ok"`
}

// ProjectListQuery 项目搜索参数
type ProjectListQuery struct {
	PageQuery
	Keyword string `form:"keyword" binding:"max=100"`
}

// ApplyProjectRequest 项目应募
type ApplyProjectRequest struct {
	Proposal     string `json:"proposal" binding:"required,max=5000"`
	ProposedRate *int   `json:"proposed_rate,omitempty" binding:"omitempty,min=0"`
}
