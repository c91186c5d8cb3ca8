package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/response"
	"github.com/qs3c/devmatch_server/internal/service"
)

type ApplicationHandler struct {
	applicationService *service.ApplicationService
}

func NewApplicationHandler(applicationService *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applicationService: applicationService}
}

// Apply 工程师应聘
// POST /api/v1/jobs/:id/apply
func (h *ApplicationHandler) Apply(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	jobID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req dto.ApplyJobRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.applicationService.Apply(userID, jobID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "应聘成功", app)
}

// ListMine GET /api/v1/engineer/applications
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, ok := pageQuery(c)
	if !ok {
		return
	}

	apps, total, err := h.applicationService.ListMine(userID, page)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPage(c, total, page.Page, page.PageSize, apps)
}

// ListForJob 职位的应聘者列表（职位所属企业）
// GET /api/v1/jobs/:id/applications
func (h *ApplicationHandler) ListForJob(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	jobID, ok := idParam(c, "id")
	if !ok {
		return
	}
	page, ok := pageQuery(c)
	if !ok {
		return
	}

	apps, total, err := h.applicationService.ListForJob(userID, jobID, page)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPage(c, total, page.Page, page.PageSize, apps)
}

// UpdateStatus PUT /api/v1/applications/:id/status
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateApplicationStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.applicationService.UpdateStatus(userID, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, app)
}

// Withdraw POST /api/v1/applications/:id/withdraw
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.applicationService.Withdraw(userID, id); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, dto.SuccessResponse{Success: true})
}
