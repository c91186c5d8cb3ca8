package dto

// PageQuery 分页查询参数
type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SuccessResponse 仅返回成功标记
type SuccessResponse struct {
	Success bool `json:"success"`
}
