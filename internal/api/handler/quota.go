package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/devmatch_server/internal/pkg/response"
	"github.com/qs3c/devmatch_server/internal/service"
)

type QuotaHandler struct {
	quotaService *service.QuotaService
}

func NewQuotaHandler(quotaService *service.QuotaService) *QuotaHandler {
	return &QuotaHandler{
		quotaService: quotaService,
	}
}

// GetQuota 获取企业今日用量与上限
// GET /api/v1/company/quota
func (h *QuotaHandler) GetQuota(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	usage, err := h.quotaService.Usage(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, usage)
}
