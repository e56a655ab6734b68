package api

import (
	"net/http"
	"strings"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PlanRequestHandler struct {
	requestService service.PlanRequestService
}

func NewPlanRequestHandler(requestService service.PlanRequestService) *PlanRequestHandler {
	return &PlanRequestHandler{requestService: requestService}
}

// --- DTOs ---

type CreatePlanRequestRequest struct {
	TrainerID string          `json:"trainerId" binding:"required"`
	MemberID  string          `json:"memberId"` // admins only
	PlanType  domain.PlanType `json:"planType" binding:"required"`
	Message   string          `json:"message"`
}

type UpdatePlanRequestRequest struct {
	Status   *domain.PlanRequestStatus `json:"status"`
	Response *string                   `json:"response"`
}

type SendPlanRequest struct {
	Content string `json:"content" binding:"required"`
}

type AttachmentRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

// --- Handler Methods ---

// CreatePlanRequest godoc
// @Summary Ask a trainer for a diet and/or exercise plan
// @Tags PlanRequests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreatePlanRequestRequest true "Trainer and plan type"
// @Success 201 {object} domain.PlanRequest
// @Failure 400 {object} gin.H "Invalid plan type"
// @Failure 404 {object} gin.H "Trainer not found"
// @Router /plan-requests [post]
func (h *PlanRequestHandler) CreatePlanRequest(c *gin.Context) {
	var req CreatePlanRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, err := primitive.ObjectIDFromHex(req.TrainerID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainerId format")
		return
	}
	var memberID primitive.ObjectID
	if req.MemberID != "" {
		if memberID, err = primitive.ObjectIDFromHex(req.MemberID); err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid memberId format")
			return
		}
	}
	p, _ := principalFrom(c)
	created, err := h.requestService.Create(c.Request.Context(), p, memberID, trainerID, req.PlanType, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListPlanRequests godoc
// @Summary List plan requests visible to the caller
// @Tags PlanRequests
// @Produce json
// @Security BearerAuth
// @Param status query string false "Comma separated statuses"
// @Success 200 {array} domain.PlanRequest
// @Router /plan-requests [get]
func (h *PlanRequestHandler) ListPlanRequests(c *gin.Context) {
	var statuses []domain.PlanRequestStatus
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := domain.PlanRequestStatus(strings.TrimSpace(s))
			if !status.Valid() {
				abortWithError(c, http.StatusBadRequest, "Unknown status: "+string(status))
				return
			}
			statuses = append(statuses, status)
		}
	}
	p, _ := principalFrom(c)
	requests, err := h.requestService.List(c.Request.Context(), p, statuses...)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// GetPlanRequest godoc
// @Summary Get a plan request
// @Tags PlanRequests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan request ID"
// @Success 200 {object} domain.PlanRequest
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "Plan request not found"
// @Router /plan-requests/{id} [get]
func (h *PlanRequestHandler) GetPlanRequest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, _ := principalFrom(c)
	req, err := h.requestService.Get(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// UpdatePlanRequest godoc
// @Summary Change status and/or response of a plan request
// @Tags PlanRequests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan request ID"
// @Param body body UpdatePlanRequestRequest true "Fields to change"
// @Success 200 {object} domain.PlanRequest
// @Failure 400 {object} gin.H "Unknown status"
// @Failure 403 {object} gin.H "Only the addressed trainer or an admin"
// @Router /plan-requests/{id} [patch]
func (h *PlanRequestHandler) UpdatePlanRequest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdatePlanRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	p, _ := principalFrom(c)
	updated, err := h.requestService.Update(c.Request.Context(), p, id, service.PlanRequestUpdate{
		Status:   req.Status,
		Response: req.Response,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// SendPlan godoc
// @Summary Email the finished plan to the member
// @Description Completes the request only when the email was accepted by the provider.
// @Tags PlanRequests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan request ID"
// @Param body body SendPlanRequest true "Plan content (Markdown)"
// @Success 200 {object} domain.PlanRequest
// @Failure 400 {object} gin.H "Empty content or member has no email"
// @Failure 500 {object} gin.H "Email delivery failed"
// @Router /plan-requests/{id}/send [post]
func (h *PlanRequestHandler) SendPlan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SendPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	p, _ := principalFrom(c)
	sent, err := h.requestService.SendPlan(c.Request.Context(), p, id, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sent)
}

// CreateAttachmentURL godoc
// @Summary Get a presigned URL to upload a plan document
// @Tags PlanRequests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan request ID"
// @Param body body AttachmentRequest true "MIME type (pdf, png, jpeg, webp)"
// @Success 200 {object} service.AttachmentUpload
// @Failure 400 {object} gin.H "Unsupported content type"
// @Failure 503 {object} gin.H "Attachment storage not configured"
// @Router /plan-requests/{id}/attachment [post]
func (h *PlanRequestHandler) CreateAttachmentURL(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req AttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	p, _ := principalFrom(c)
	upload, err := h.requestService.AttachmentUploadURL(c.Request.Context(), p, id, req.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, upload)
}
