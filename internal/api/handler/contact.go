package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/response"
	"github.com/qs3c/devmatch_server/internal/service"
)

type ContactHandler struct {
	contactService *service.ContactService
}

func NewContactHandler(contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// Submit 公开咨询表单
// POST /api/v1/contact
func (h *ContactHandler) Submit(c *gin.Context) {
	var req dto.ContactRequest
	if !bindJSON(c, &req) {
		return
	}

	inquiry, err := h.contactService.Submit(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "已收到您的咨询", gin.H{"id": inquiry.ID})
}
