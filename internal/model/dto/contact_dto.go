package dto

// ContactRequest 咨询表单
type ContactRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Email       string `json:"email" binding:"required,email,max=100"`
	CompanyName string `json:"company_name" binding:"max=200"`
	Category    string `json:"category" binding:"max=50"`
	Subject     string `json:"subject" binding:"required,max=255"`
	Message     string `json:"message" binding:"required,max=5000"`
}

// ContactListQuery 管理端咨询列表
type ContactListQuery struct {
	PageQuery
	Status string `form:"status" binding:"omitempty,oneof=new resolved"`
}
