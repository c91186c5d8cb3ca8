package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/response"
	"github.com/qs3c/devmatch_server/internal/service"
)

type JobHandler struct {
	jobService *service.JobService
}

func NewJobHandler(jobService *service.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// Create 发布职位
// POST /api/v1/jobs
func (h *JobHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if !bindJSON(c, &req) {
		return
	}

	job, err := h.jobService.Create(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "发布成功", job)
}

// Search 公开职位搜索
// GET /api/v1/jobs?keyword=&location=&skill=&remote=&page=&page_size=
func (h *JobHandler) Search(c *gin.Context) {
	var q dto.JobListQuery
	if !bindQuery(c, &q) {
		return
	}
	page := pageOf(q.PageQuery)
	q.Page, q.PageSize = page.Page, page.PageSize

	jobs, total, err := h.jobService.Search(&q)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPage(c, total, page.Page, page.PageSize, jobs)
}

// Get 职位详情，计入浏览数
// GET /api/v1/jobs/:id
func (h *JobHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	job, err := h.jobService.Get(c.Request.Context(), id, true)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, job)
}

// Update PUT /api/v1/jobs/:id
func (h *JobHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateJobRequest
	if !bindJSON(c, &req) {
		return
	}

	job, err := h.jobService.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", job)
}

// Close POST /api/v1/jobs/:id/close
func (h *JobHandler) Close(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.jobService.Close(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, dto.SuccessResponse{Success: true})
}

// Delete DELETE /api/v1/jobs/:id
func (h *JobHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.jobService.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// ListMine 企业自己的职位
// GET /api/v1/company/jobs
func (h *JobHandler) ListMine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, ok := pageQuery(c)
	if !ok {
		return
	}

	jobs, total, err := h.jobService.ListMine(userID, page)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPage(c, total, page.Page, page.PageSize, jobs)
}
