package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or out-of-range input to scoring or team operations.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyProcessed is returned when a join request is no longer pending.
	ErrAlreadyProcessed = errors.New("join request already processed")
	// ErrCapacityExceeded is returned when a team has no free slot.
	ErrCapacityExceeded = errors.New("team capacity exceeded")
	// ErrInvalidState indicates an illegal team status transition.
	ErrInvalidState = errors.New("invalid team state")
	// ErrDuplicatePendingRequest is returned when a user already has a pending request for the team.
	ErrDuplicatePendingRequest = errors.New("pending join request already exists")
	// ErrAlreadyMember is returned when a user is already on the team.
	ErrAlreadyMember = errors.New("user is already a team member")
	// ErrTeamUnavailable is returned when a team is FULL or CLOSED to new requests.
	ErrTeamUnavailable = errors.New("team is not accepting join requests")
	// ErrForbidden is returned when the caller may not perform the action.
	ErrForbidden = errors.New("forbidden")
	// ErrMentorUnavailable is returned when the text-generation service is not configured or failed.
	ErrMentorUnavailable = errors.New("mentor service unavailable")
)

var (
	ErrQuizNotFound        = fmt.Errorf("quiz %w", ErrNotFound)
	ErrQuizTypeNotFound    = fmt.Errorf("quiz type %w", ErrNotFound)
	ErrTeamNotFound        = fmt.Errorf("team %w", ErrNotFound)
	ErrMemberNotFound      = fmt.Errorf("team member %w", ErrNotFound)
	ErrJoinRequestNotFound = fmt.Errorf("join request %w", ErrNotFound)
	ErrAttemptNotFound     = fmt.Errorf("quiz attempt %w", ErrNotFound)
)

// ValidationError describes which input was rejected and why.
type ValidationError struct {
	Field  string
	Reason string
}

// Invalid builds a ValidationError with a formatted reason.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return "validation failed: " + e.Field + ": " + e.Reason
}

// Is lets callers match any ValidationError with errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
