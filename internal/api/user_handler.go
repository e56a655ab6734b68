package api

import (
	"net/http"
	"time"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService   service.UserService
	authService   service.AuthService
	ledgerService service.LedgerService
}

func NewUserHandler(userService service.UserService, authService service.AuthService, ledgerService service.LedgerService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		authService:   authService,
		ledgerService: ledgerService,
	}
}

// --- DTOs ---

type UpdateNameRequest struct {
	Name string `json:"name" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

type CreateTrainerRequest struct {
	Name            string   `json:"name" binding:"required"`
	Email           string   `json:"email" binding:"required,email"`
	Password        string   `json:"password" binding:"required"`
	Specializations []string `json:"specializations"`
	HireDate        string   `json:"hireDate"` // YYYY-MM-DD, defaults to today
}

type GrantSessionsRequest struct {
	Count int `json:"count"`
}

// --- Profile ---

// GetUser godoc
// @Summary Get a user profile
// @Description Members may only read their own profile; trainers and admins read any.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} UserResponse
// @Failure 400 {object} gin.H "Invalid ID"
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "User not found"
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	p, _ := principalFrom(c)
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.GetProfile(c.Request.Context(), p, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// GetMe godoc
// @Summary Get the authenticated user's profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	p, _ := principalFrom(c)
	user, err := h.userService.GetProfile(c.Request.Context(), p, p.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateMe godoc
// @Summary Change the authenticated user's display name
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateNameRequest true "New name"
// @Success 200 {object} UserResponse
// @Failure 400 {object} gin.H "Validation error"
// @Router /users/me [patch]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	p, _ := principalFrom(c)
	user, err := h.userService.UpdateName(c.Request.Context(), p, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// ChangePassword godoc
// @Summary Change the authenticated user's password
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ChangePasswordRequest true "Current and new password"
// @Success 200 {object} gin.H
// @Failure 400 {object} gin.H "New password too short"
// @Failure 401 {object} gin.H "Current password is wrong"
// @Router /users/me/password [post]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	p, _ := principalFrom(c)
	if err := h.authService.ChangePassword(c.Request.Context(), p, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// ListTrainers godoc
// @Summary List trainers
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /trainers [get]
func (h *UserHandler) ListTrainers(c *gin.Context) {
	p, _ := principalFrom(c)
	trainers, err := h.userService.ListTrainers(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(trainers))
}

// --- Admin ---

// ListUsers godoc
// @Summary List accounts (admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "admin, trainer or member"
// @Success 200 {array} UserResponse
// @Failure 400 {object} gin.H "Unknown role"
// @Failure 403 {object} gin.H "Forbidden"
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	p, _ := principalFrom(c)
	users, err := h.userService.ListUsers(c.Request.Context(), p, domain.Role(c.Query("role")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(users))
}

// CreateTrainer godoc
// @Summary Create a trainer account (admin)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateTrainerRequest true "Trainer details"
// @Success 201 {object} UserResponse
// @Failure 400 {object} gin.H "Validation error or email already registered"
// @Failure 403 {object} gin.H "Forbidden"
// @Router /admin/trainers [post]
func (h *UserHandler) CreateTrainer(c *gin.Context) {
	var req CreateTrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	var hireDate time.Time
	if req.HireDate != "" {
		d, ok := parseDate(c, "hireDate", req.HireDate)
		if !ok {
			return
		}
		hireDate = d
	}
	p, _ := principalFrom(c)
	trainer, err := h.userService.CreateTrainer(c.Request.Context(), p, service.NewTrainerInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		Specializations: req.Specializations,
		HireDate:        hireDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapUserToResponse(trainer))
}

// DeleteUser godoc
// @Summary Delete an account (admin)
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204
// @Failure 404 {object} gin.H "User not found"
// @Router /admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, _ := principalFrom(c)
	if err := h.userService.DeleteUser(c.Request.Context(), p, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GrantSessions godoc
// @Summary Add PT session credits to a member (admin)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Param body body GrantSessionsRequest true "Number of sessions"
// @Success 200 {object} UserResponse
// @Failure 400 {object} gin.H "Count must be positive"
// @Failure 404 {object} gin.H "Member not found"
// @Router /admin/members/{id}/sessions [post]
func (h *UserHandler) GrantSessions(c *gin.Context) {
	memberID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req GrantSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	p, _ := principalFrom(c)
	member, err := h.ledgerService.GrantSessions(c.Request.Context(), p, memberID, req.Count)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(member))
}
