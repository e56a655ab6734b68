package service

import "errors"

// --- Error Definitions ---
var (
	// Validation wraps every input error; handlers map it to 400.
	ErrValidation = errors.New("validation failed")

	ErrUserNotFound        = errors.New("user not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrTrainerNotFound     = errors.New("trainer not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrClassNotFound       = errors.New("class not found")
	ErrPlanRequestNotFound = errors.New("plan request not found")

	// Conflict covers double bookings, full classes and repeated enrollments.
	ErrConflict        = errors.New("conflict")
	ErrSlotTaken       = errors.New("trainer is not available at this time")
	ErrMemberBusy      = errors.New("member already has a session booked at this time")
	ErrClassFull       = errors.New("class is full")
	ErrAlreadyEnrolled = errors.New("already enrolled in this class")

	ErrNoPTAccess = errors.New("no PT access")

	ErrDeliveryFailed  = errors.New("failed to deliver email")
	ErrFeatureDisabled = errors.New("feature is not configured")
)
