package api

import (
	"fmt"
	"net/http"

	"alcyxob/gym-portal/internal/assistant"
	"alcyxob/gym-portal/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	assistantService service.AssistantService
}

func NewDashboardHandler(dashboardService service.DashboardService, assistantService service.AssistantService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		assistantService: assistantService,
	}
}

type ChatRequest struct {
	Messages []assistant.Message `json:"messages" binding:"required"`
}

// GetDashboard godoc
// @Summary Role-specific landing data
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Dashboard
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	p, _ := principalFrom(c)
	d, err := h.dashboardService.Get(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Chat godoc
// @Summary Ask the coach assistant
// @Tags Assistant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ChatRequest true "Conversation so far"
// @Success 200 {object} assistant.Message
// @Failure 400 {object} gin.H "Bad message list"
// @Failure 503 {object} gin.H "Assistant not configured"
// @Router /assistant/chat [post]
func (h *DashboardHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	p, _ := principalFrom(c)
	reply, err := h.assistantService.Chat(c.Request.Context(), p, req.Messages)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}
