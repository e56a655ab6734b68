package api

import (
	"net/http"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ClassHandler struct {
	classService service.ClassService
}

func NewClassHandler(classService service.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

// --- DTOs ---

type CreateClassRequest struct {
	ClassType string `json:"classType" binding:"required"`
	Capacity  int    `json:"capacity" binding:"required"`
	TrainerID string `json:"trainerId" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
}

type EnrollRequest struct {
	MemberID string `json:"memberId"` // admins only
}

type AttendanceRequest struct {
	MemberID string                   `json:"memberId" binding:"required"`
	Status   domain.ParticipantStatus `json:"status" binding:"required"`
}

// --- Handler Methods ---

// CreateClass godoc
// @Summary Schedule a group class (admin)
// @Tags Classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateClassRequest true "Class details"
// @Success 201 {object} domain.GroupClass
// @Failure 400 {object} gin.H "Validation error"
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "Trainer not found"
// @Router /classes [post]
func (h *ClassHandler) CreateClass(c *gin.Context) {
	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, err := primitive.ObjectIDFromHex(req.TrainerID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainerId format")
		return
	}
	date, ok := parseDate(c, "date", req.Date)
	if !ok {
		return
	}
	p, _ := principalFrom(c)
	class, err := h.classService.CreateClass(c.Request.Context(), p, service.NewClassInput{
		ClassType: req.ClassType,
		Capacity:  req.Capacity,
		TrainerID: trainerID,
		Date:      date,
		Time:      req.Time,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, class)
}

// ListClasses godoc
// @Summary List group classes
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Success 200 {array} domain.GroupClass
// @Router /classes [get]
func (h *ClassHandler) ListClasses(c *gin.Context) {
	from, ok := parseOptionalDate(c, "from")
	if !ok {
		return
	}
	to, ok := parseOptionalDate(c, "to")
	if !ok {
		return
	}
	p, _ := principalFrom(c)
	classes, err := h.classService.ListClasses(c.Request.Context(), p, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, classes)
}

// GetClass godoc
// @Summary Get a group class with its roster
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {object} domain.GroupClass
// @Failure 404 {object} gin.H "Class not found"
// @Router /classes/{id} [get]
func (h *ClassHandler) GetClass(c *gin.Context) {
	classID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, _ := principalFrom(c)
	class, err := h.classService.GetClass(c.Request.Context(), p, classID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

// Enroll godoc
// @Summary Enroll in a group class
// @Description Members enroll themselves; admins pass memberId.
// @Tags Classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Param body body EnrollRequest false "Member to enroll (admin)"
// @Success 200 {object} domain.GroupClass
// @Failure 400 {object} gin.H "Class full or already enrolled"
// @Failure 404 {object} gin.H "Class or member not found"
// @Router /classes/{id}/enroll [post]
func (h *ClassHandler) Enroll(c *gin.Context) {
	classID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req EnrollRequest
	// An empty body is fine for members enrolling themselves
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}
	p, _ := principalFrom(c)
	memberID := p.ID
	if req.MemberID != "" {
		id, err := primitive.ObjectIDFromHex(req.MemberID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid memberId format")
			return
		}
		memberID = id
	}
	class, err := h.classService.Enroll(c.Request.Context(), p, classID, memberID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

// MarkAttendance godoc
// @Summary Mark a participant attended or cancelled
// @Tags Classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Param body body AttendanceRequest true "Participant and status"
// @Success 200 {object} domain.GroupClass
// @Failure 403 {object} gin.H "Only the class trainer or an admin"
// @Router /classes/{id}/attendance [post]
func (h *ClassHandler) MarkAttendance(c *gin.Context) {
	classID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	memberID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid memberId format")
		return
	}
	p, _ := principalFrom(c)
	class, err := h.classService.MarkAttendance(c.Request.Context(), p, classID, memberID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}
