package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/response"
	"github.com/qs3c/devmatch_server/internal/service"
)

type ScoutHandler struct {
	scoutService *service.ScoutService
}

func NewScoutHandler(scoutService *service.ScoutService) *ScoutHandler {
	return &ScoutHandler{scoutService: scoutService}
}

// Candidates 职位的 scout 候选人，按匹配分降序
// GET /api/v1/jobs/:id/scout-candidates?min_score=60
func (h *ScoutHandler) Candidates(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	jobID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var q dto.CandidateQuery
	if !bindQuery(c, &q) {
		return
	}

	candidates, err := h.scoutService.Candidates(userID, jobID, q.MinScore)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, candidates)
}

// Send 单个发送
// POST /api/v1/scouts
func (h *ScoutHandler) Send(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.SendScoutRequest
	if !bindJSON(c, &req) {
		return
	}

	scout, err := h.scoutService.Send(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "发送成功", scout)
}

// BulkSend 向匹配的候选人批量发送
// POST /api/v1/jobs/:id/scouts/bulk
func (h *ScoutHandler) BulkSend(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	jobID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req dto.BulkScoutRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.scoutService.BulkSend(c.Request.Context(), userID, jobID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, resp)
}

// ListSent GET /api/v1/company/scouts
func (h *ScoutHandler) ListSent(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, ok := pageQuery(c)
	if !ok {
		return
	}

	scouts, total, err := h.scoutService.ListSent(userID, page)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPage(c, total, page.Page, page.PageSize, scouts)
}

// ListReceived GET /api/v1/engineer/scouts
func (h *ScoutHandler) ListReceived(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, ok := pageQuery(c)
	if !ok {
		return
	}

	scouts, total, err := h.scoutService.ListReceived(userID, page)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPage(c, total, page.Page, page.PageSize, scouts)
}

// MarkRead POST /api/v1/scouts/:id/read
func (h *ScoutHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.scoutService.MarkRead(userID, id); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, dto.SuccessResponse{Success: true})
}

// Reply 回复 scout，生成一条关联消息
// POST /api/v1/scouts/:id/reply
func (h *ScoutHandler) Reply(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req dto.ReplyScoutRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.scoutService.Reply(c.Request.Context(), userID, id, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, msg)
}
