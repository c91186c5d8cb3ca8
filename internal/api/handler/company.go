package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/response"
	"github.com/qs3c/devmatch_server/internal/service"
)

type CompanyHandler struct {
	companyService *service.CompanyService
	uploadService  *service.UploadService
}

func NewCompanyHandler(companyService *service.CompanyService, uploadService *service.UploadService) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
		uploadService:  uploadService,
	}
}

// GetProfile 企业资料
// GET /api/v1/company/profile
func (h *CompanyHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	company, err := h.companyService.GetByUserID(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, company)
}

// UpdateProfile 更新企业资料
// PUT /api/v1/company/profile
func (h *CompanyHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateCompanyRequest
	if !bindJSON(c, &req) {
		return
	}

	company, err := h.companyService.UpdateProfile(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "更新成功", company)
}

// UploadLogo 上传 logo
// POST /api/v1/company/logo
func (h *CompanyHandler) UploadLogo(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	filename, data, ok := readFile(c)
	if !ok {
		return
	}

	url, err := h.uploadService.UploadLogo(userID, filename, data)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "上传成功", dto.UploadResponse{URL: url})
}

// GetSubscription 订阅与试用状态
// GET /api/v1/company/subscription
func (h *CompanyHandler) GetSubscription(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	status, err := h.companyService.GetSubscription(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, status)
}

// StartTrial 开始试用，每家企业只能使用一次
// POST /api/v1/company/trial
func (h *CompanyHandler) StartTrial(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	status, err := h.companyService.StartTrial(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "试用已开始", status)
}

// CancelSubscription 取消订阅
// POST /api/v1/company/subscription/cancel
func (h *CompanyHandler) CancelSubscription(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	status, err := h.companyService.CancelSubscription(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "订阅已取消", status)
}
