package http

import (
	"errors"
	"net/http"
	"time"

	"careerpath-service/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrCode identifies an API error independent of its message.
type ErrCode string

const (
	ErrCodeTokenRequired     ErrCode = "TOKEN_REQUIRED"
	ErrCodeTokenInvalid      ErrCode = "TOKEN_INVALID"
	ErrCodeForbidden         ErrCode = "FORBIDDEN"
	ErrCodeValidation        ErrCode = "VALIDATION_ERROR"
	ErrCodeInvalidPayload    ErrCode = "INVALID_PAYLOAD"
	ErrCodeNotFound          ErrCode = "NOT_FOUND"
	ErrCodeAlreadyProcessed  ErrCode = "ALREADY_PROCESSED"
	ErrCodeCapacityExceeded  ErrCode = "CAPACITY_EXCEEDED"
	ErrCodeInvalidState      ErrCode = "INVALID_STATE"
	ErrCodeDuplicatePending  ErrCode = "DUPLICATE_PENDING_REQUEST"
	ErrCodeAlreadyMember     ErrCode = "ALREADY_MEMBER"
	ErrCodeTeamUnavailable   ErrCode = "TEAM_UNAVAILABLE"
	ErrCodeMentorUnavailable ErrCode = "MENTOR_UNAVAILABLE"
	ErrCodeInternal          ErrCode = "INTERNAL_ERROR"
)

var messages = map[ErrCode]string{
	ErrCodeTokenRequired:     "Authentication token is required.",
	ErrCodeTokenInvalid:      "Authentication token is invalid or expired.",
	ErrCodeForbidden:         "You are not allowed to perform this action.",
	ErrCodeValidation:        "Validation failed. Please check your input.",
	ErrCodeInvalidPayload:    "Request payload is invalid.",
	ErrCodeNotFound:          "Resource not found.",
	ErrCodeAlreadyProcessed:  "This join request has already been processed.",
	ErrCodeCapacityExceeded:  "The team has no free slot.",
	ErrCodeInvalidState:      "The team cannot move to that status.",
	ErrCodeDuplicatePending:  "You already have a pending request for this team.",
	ErrCodeAlreadyMember:     "You are already a member of this team.",
	ErrCodeTeamUnavailable:   "The team is not accepting join requests.",
	ErrCodeMentorUnavailable: "The mentor service is unavailable. Try again without it.",
	ErrCodeInternal:          "Internal server error.",
}

// Message returns the user-facing text for code.
func Message(code ErrCode) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return "Unexpected error."
}

// Envelope is the body of every JSON response.
type Envelope struct {
	Data     any        `json:"data"`
	Error    *ErrorBody `json:"error,omitempty"`
	Metadata Metadata   `json:"metadata"`
}

type ErrorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type Metadata struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

const ctxRequestID = "request_id"

func success(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Data: data, Metadata: metadata(c)})
}

func fail(c *gin.Context, status int, code ErrCode, fields map[string]string) {
	c.AbortWithStatusJSON(status, Envelope{
		Error:    &ErrorBody{Code: code, Message: Message(code), Fields: fields},
		Metadata: metadata(c),
	})
}

// failErr maps a use-case error onto a status and error code.
func failErr(c *gin.Context, log zerolog.Logger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		field := verr.Field
		if field == "" {
			field = "detail"
		}
		fail(c, http.StatusBadRequest, ErrCodeValidation, map[string]string{field: verr.Reason})
	case errors.Is(err, domain.ErrNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, map[string]string{"detail": err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		fail(c, http.StatusForbidden, ErrCodeForbidden, nil)
	case errors.Is(err, domain.ErrAlreadyProcessed):
		fail(c, http.StatusConflict, ErrCodeAlreadyProcessed, nil)
	case errors.Is(err, domain.ErrCapacityExceeded):
		fail(c, http.StatusConflict, ErrCodeCapacityExceeded, nil)
	case errors.Is(err, domain.ErrInvalidState):
		fail(c, http.StatusConflict, ErrCodeInvalidState, nil)
	case errors.Is(err, domain.ErrDuplicatePendingRequest):
		fail(c, http.StatusConflict, ErrCodeDuplicatePending, nil)
	case errors.Is(err, domain.ErrAlreadyMember):
		fail(c, http.StatusConflict, ErrCodeAlreadyMember, nil)
	case errors.Is(err, domain.ErrTeamUnavailable):
		fail(c, http.StatusConflict, ErrCodeTeamUnavailable, nil)
	case errors.Is(err, domain.ErrMentorUnavailable):
		fail(c, http.StatusServiceUnavailable, ErrCodeMentorUnavailable, nil)
	default:
		log.Error().Err(err).Str("request_id", requestID(c)).Str("path", c.FullPath()).Msg("request failed")
		fail(c, http.StatusInternalServerError, ErrCodeInternal, nil)
	}
}

func metadata(c *gin.Context) Metadata {
	return Metadata{RequestID: requestID(c), Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

func requestID(c *gin.Context) string {
	if id := c.GetString(ctxRequestID); id != "" {
		return id
	}
	return uuid.NewString()
}
