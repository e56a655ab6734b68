package api

import (
	"errors"
	"log"
	"net/http"

	"alcyxob/gym-portal/internal/payments"
	"alcyxob/gym-portal/internal/policy"
	"alcyxob/gym-portal/internal/service"

	"github.com/gin-gonic/gin"
)

var notFoundErrors = []error{
	service.ErrUserNotFound,
	service.ErrMemberNotFound,
	service.ErrTrainerNotFound,
	service.ErrSessionNotFound,
	service.ErrClassNotFound,
	service.ErrPlanRequestNotFound,
}

var badRequestErrors = []error{
	service.ErrValidation,
	service.ErrConflict, // conflicts are reported as 400, there is no 409 in this API
	service.ErrUserAlreadyExists,
	payments.ErrInvalidSignature,
	payments.ErrUnsignedRejected,
	payments.ErrMalformedEvent,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// statusFor maps a service error to its HTTP status. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, policy.ErrUnauthenticated), errors.Is(err, service.ErrAuthenticationFailed):
		return http.StatusUnauthorized
	case errors.Is(err, policy.ErrForbidden):
		return http.StatusForbidden
	case isAny(err, notFoundErrors):
		return http.StatusNotFound
	case isAny(err, badRequestErrors):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrFeatureDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrDeliveryFailed):
		return http.StatusInternalServerError
	}
	return 0
}

// respondError writes the JSON error for err. Internal failures are logged and
// answered with a generic message so driver details never reach the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == 0 {
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.FullPath(), err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}
	if status == http.StatusInternalServerError {
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.FullPath(), err)
		abortWithError(c, status, service.ErrDeliveryFailed.Error())
		return
	}
	abortWithError(c, status, err.Error())
}
