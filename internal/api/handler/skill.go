package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/devmatch_server/internal/pkg/response"
	"github.com/qs3c/devmatch_server/internal/service"
)

type SkillHandler struct {
	skillService *service.SkillService
}

func NewSkillHandler(skillService *service.SkillService) *SkillHandler {
	return &SkillHandler{skillService: skillService}
}

// List 技能主数据
// GET /api/v1/skills?category=language
func (h *SkillHandler) List(c *gin.Context) {
	skills, err := h.skillService.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, skills)
}
