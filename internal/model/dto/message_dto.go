package dto

// SendMessageRequest 发送消息
type SendMessageRequest struct {
	ReceiverID int64  `json:"receiver_id" binding:"required,min=1"`
	Content    string `json:"content" binding:"required,max=5000"`
}

// UnreadCountResponse 未读数
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
