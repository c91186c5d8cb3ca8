package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/response"
	"github.com/qs3c/devmatch_server/internal/service"
)

type ProjectHandler struct {
	projectService *service.ProjectService
}

func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// Create 发布业务委托项目
// POST /api/v1/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Create(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "发布成功", project)
}

// Search GET /api/v1/projects?keyword=
func (h *ProjectHandler) Search(c *gin.Context) {
	var q dto.ProjectListQuery
	if !bindQuery(c, &q) {
		return
	}
	page := pageOf(q.PageQuery)
	q.Page, q.PageSize = page.Page, page.PageSize

	projects, total, err := h.projectService.Search(&q)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPage(c, total, page.Page, page.PageSize, projects)
}

// Get GET /api/v1/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, project)
}

// Close POST /api/v1/projects/:id/close
func (h *ProjectHandler) Close(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.Close(userID, id); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, dto.SuccessResponse{Success: true})
}

// Apply POST /api/v1/projects/:id/apply
func (h *ProjectHandler) Apply(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req dto.ApplyProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.projectService.Apply(userID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "提交成功", app)
}

// ListApplications GET /api/v1/projects/:id/applications
func (h *ProjectHandler) ListApplications(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	page, ok := pageQuery(c)
	if !ok {
		return
	}

	apps, total, err := h.projectService.ListApplications(userID, id, page)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPage(c, total, page.Page, page.PageSize, apps)
}
