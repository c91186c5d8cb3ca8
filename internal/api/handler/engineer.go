package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/response"
	"github.com/qs3c/devmatch_server/internal/service"
)

type EngineerHandler struct {
	engineerService *service.EngineerService
	uploadService   *service.UploadService
}

func NewEngineerHandler(engineerService *service.EngineerService, uploadService *service.UploadService) *EngineerHandler {
	return &EngineerHandler{
		engineerService: engineerService,
		uploadService:   uploadService,
	}
}

// GetProfile 工程师本人资料（含期望薪资等私有字段）
// GET /api/v1/engineer/profile
func (h *EngineerHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	engineer, err := h.engineerService.GetByUserID(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, engineer)
}

// UpdateProfile PUT /api/v1/engineer/profile
func (h *EngineerHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateEngineerRequest
	if !bindJSON(c, &req) {
		return
	}

	engineer, err := h.engineerService.UpdateProfile(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", engineer)
}

// UploadAvatar POST /api/v1/engineer/avatar
func (h *EngineerHandler) UploadAvatar(c *gin.Context) {
	h.upload(c, h.uploadService.UploadAvatar)
}

// UploadResume POST /api/v1/engineer/resume
func (h *EngineerHandler) UploadResume(c *gin.Context) {
	h.upload(c, h.uploadService.UploadResume)
}

func (h *EngineerHandler) upload(c *gin.Context, put func(userID int64, filename string, data []byte) (string, error)) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	filename, data, ok := readFile(c)
	if !ok {
		return
	}

	url, err := put(userID, filename, data)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "上传成功", dto.UploadResponse{URL: url})
}

// GetPublic 企业查看工程师公开资料
// GET /api/v1/engineers/:id
func (h *EngineerHandler) GetPublic(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	engineer, err := h.engineerService.GetPublic(id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, engineer)
}
