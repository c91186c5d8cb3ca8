package dto

// SendScoutRequest 单独发送 scout
type SendScoutRequest struct {
	EngineerID int64  `json:"engineer_id" binding:"required,min=1"`
	JobID      *int64 `json:"job_id,omitempty" binding:"omitempty,min=1"`
	Subject    string `json:"subject" binding:"required,max=255"`
	Content    string `json:"content" binding:"required,max=5000"`
}

// BulkScoutRequest 按匹配分批量发送；EngineerIDs 为空时面向全部候选人
type BulkScoutRequest struct {
	Subject     string  `json:"subject" binding:"required,max=255"`
	Content     string  `json:"content" binding:"required,max=5000"`
	MinScore    int     `json:"min_score" binding:"min=0,max=100"`
	EngineerIDs []int64 `json:"engineer_ids,omitempty" binding:"omitempty,max=50"`
}

// ScoutSent 批量发送中的单条结果
type ScoutSent struct {
	ScoutID    int64 `json:"scout_id"`
	EngineerID int64 `json:"engineer_id"`
	Score      int   `json:"score"`
}

// BulkScoutResponse 批量发送结果
type BulkScoutResponse struct {
	Sent  int         `json:"sent"`
	Items []ScoutSent `json:"items"`
}

// ScoutCandidate 候选工程师
type ScoutCandidate struct {
	Engineer *PublicEngineer `json:"engineer"`
	Score    int             `json:"score"`
}

// CandidateQuery 候选人查询参数
type CandidateQuery struct {
	MinScore int `form:"min_score" binding:"min=0,max=100"`
}

// ReplyScoutRequest 回复 scout
type ReplyScoutRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}
