package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/traitview/traitview/internal/auth"
	"github.com/traitview/traitview/internal/dto"
	"github.com/traitview/traitview/internal/service"
	"github.com/traitview/traitview/internal/session"
)

// WriteServiceError maps service and session errors to a status code and
// an ErrorResponse. Unknown errors are logged and hidden behind a 500.
func WriteServiceError(ctx *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "Internal server error"
	switch {
	case errors.Is(err, service.ErrNotFound):
		status, message = http.StatusNotFound, "Not found"
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrUnsupportedFormat),
		errors.Is(err, session.ErrUnknownQuestion),
		errors.Is(err, session.ErrAnswerRequired),
		errors.Is(err, session.ErrInvalidAnswer),
		errors.Is(err, session.ErrInvalidDirection):
		status, message = http.StatusBadRequest, "Invalid request"
	case errors.Is(err, service.ErrDuplicate),
		errors.Is(err, service.ErrInUse),
		errors.Is(err, service.ErrBatchClosed),
		errors.Is(err, service.ErrBatchFull),
		errors.Is(err, service.ErrNotCompleted),
		errors.Is(err, session.ErrNotActive),
		errors.Is(err, session.ErrSubmitInProgress):
		status, message = http.StatusConflict, "Conflict"
	case errors.Is(err, service.ErrSubmit),
		errors.Is(err, service.ErrReviewUnavailable):
		status, message = http.StatusServiceUnavailable, "Service unavailable, please retry"
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", ctx.FullPath()).Msg("Unhandled service error")
		ctx.JSON(status, dto.ErrorResponse{Message: message})
		return
	}
	ctx.JSON(status, dto.ErrorResponse{Message: message, Details: []string{err.Error()}})
}

// WriteBindError answers 400 for a request that failed binding or validation.
func WriteBindError(ctx *gin.Context, err error) {
	log.Warn().Err(err).Str("path", ctx.FullPath()).Msg("Failed to bind request")
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
}

// ParseID reads a positive numeric path parameter, answering 400 otherwise.
func ParseID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(id), true
}

// CompanyID returns the tenant of the authenticated caller.
func CompanyID(ctx *gin.Context) (uint, bool) {
	s, ok := auth.FromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: auth.ErrMissingToken.Error()})
		return 0, false
	}
	return s.TenantID, true
}
