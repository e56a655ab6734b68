package api

import (
	"net/http"

	"alcyxob/gym-portal/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingHandler struct {
	bookingService service.BookingService
}

func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// --- DTOs ---

type ReserveSessionRequest struct {
	TrainerID string `json:"trainerId" binding:"required"`
	MemberID  string `json:"memberId"` // admins only; members book for themselves
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
}

// --- Handler Methods ---

// ReserveSession godoc
// @Summary Book a private PT session
// @Description Members need a current Premium subscription or a PT credit. One credit is consumed unless Premium.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ReserveSessionRequest true "Trainer, date (YYYY-MM-DD) and slot (HH:MM)"
// @Success 201 {object} domain.PrivateSession
// @Failure 400 {object} gin.H "Validation error or slot already taken"
// @Failure 403 {object} gin.H "No PT access, or booking for another member"
// @Failure 404 {object} gin.H "Member or trainer not found"
// @Router /sessions [post]
func (h *BookingHandler) ReserveSession(c *gin.Context) {
	var req ReserveSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	p, _ := principalFrom(c)

	trainerID, err := primitive.ObjectIDFromHex(req.TrainerID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainerId format")
		return
	}
	memberID := p.ID
	if req.MemberID != "" {
		memberID, err = primitive.ObjectIDFromHex(req.MemberID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid memberId format")
			return
		}
	}
	date, ok := parseDate(c, "date", req.Date)
	if !ok {
		return
	}

	session, err := h.bookingService.Reserve(c.Request.Context(), p, memberID, trainerID, date, req.Time)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// ListSessions godoc
// @Summary List private sessions
// @Description Members and trainers see their own sessions; admins may filter by trainerId/memberId.
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Param trainerId query string false "Admin filter"
// @Param memberId query string false "Admin filter"
// @Param includeCancelled query bool false "Include cancelled sessions"
// @Success 200 {array} domain.PrivateSession
// @Router /sessions [get]
func (h *BookingHandler) ListSessions(c *gin.Context) {
	p, _ := principalFrom(c)
	var q service.SessionQuery
	var ok bool
	if q.From, ok = parseOptionalDate(c, "from"); !ok {
		return
	}
	if q.To, ok = parseOptionalDate(c, "to"); !ok {
		return
	}
	for param, target := range map[string]**primitive.ObjectID{"trainerId": &q.TrainerID, "memberId": &q.MemberID} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid "+param+" format")
			return
		}
		*target = &id
	}
	q.IncludeCancelled = c.Query("includeCancelled") == "true"

	sessions, err := h.bookingService.ListSessions(c.Request.Context(), p, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// CancelSession godoc
// @Summary Cancel a private session
// @Description The booked member, the session's trainer or an admin may cancel. A consumed credit is refunded.
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} domain.PrivateSession
// @Failure 400 {object} gin.H "Session is not confirmed"
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "Session not found"
// @Router /sessions/{id}/cancel [post]
func (h *BookingHandler) CancelSession(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, _ := principalFrom(c)
	session, err := h.bookingService.Cancel(c.Request.Context(), p, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// CompleteSession godoc
// @Summary Mark a private session as completed
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} domain.PrivateSession
// @Failure 403 {object} gin.H "Only the session's trainer or an admin"
// @Router /sessions/{id}/complete [post]
func (h *BookingHandler) CompleteSession(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, _ := principalFrom(c)
	session, err := h.bookingService.Complete(c.Request.Context(), p, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetAvailability godoc
// @Summary Free PT slots of a trainer
// @Description Lists, per working day in [start, end], the slots not held by a session. Sundays and full days are omitted.
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trainer ID"
// @Param start query string true "YYYY-MM-DD"
// @Param end query string true "YYYY-MM-DD"
// @Success 200 {array} service.DayAvailability
// @Failure 400 {object} gin.H "Bad or too long range"
// @Failure 404 {object} gin.H "Trainer not found"
// @Router /trainers/{id}/availability [get]
func (h *BookingHandler) GetAvailability(c *gin.Context) {
	trainerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	start, ok := parseDate(c, "start", c.Query("start"))
	if !ok {
		return
	}
	end, ok := parseDate(c, "end", c.Query("end"))
	if !ok {
		return
	}
	p, _ := principalFrom(c)
	days, err := h.bookingService.AvailableSlots(c.Request.Context(), p, trainerID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	if days == nil {
		days = []service.DayAvailability{}
	}
	c.JSON(http.StatusOK, days)
}
