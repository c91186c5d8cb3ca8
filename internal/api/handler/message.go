package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/devmatch_server/internal/model/dto"
	"github.com/qs3c/devmatch_server/internal/pkg/response"
	"github.com/qs3c/devmatch_server/internal/service"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Send POST /api/v1/messages
func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, msg)
}

// Conversation 与某个用户的对话，读取时标记对方消息为已读
// GET /api/v1/messages/conversations/:userId
func (h *MessageHandler) Conversation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	otherID, ok := idParam(c, "userId")
	if !ok {
		return
	}
	page, ok := pageQuery(c)
	if !ok {
		return
	}

	msgs, total, err := h.messageService.Conversation(userID, otherID, page)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPage(c, total, page.Page, page.PageSize, msgs)
}

// Inbox GET /api/v1/messages/inbox
func (h *MessageHandler) Inbox(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, ok := pageQuery(c)
	if !ok {
		return
	}

	msgs, total, err := h.messageService.Inbox(userID, page)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessPage(c, total, page.Page, page.PageSize, msgs)
}

// MarkRead POST /api/v1/messages/:id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.messageService.MarkRead(userID, id); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, dto.SuccessResponse{Success: true})
}

// UnreadCount GET /api/v1/messages/unread-count
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	count, err := h.messageService.UnreadCount(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, dto.UnreadCountResponse{Count: count})
}
