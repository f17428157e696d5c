package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/curriculum/internal/app/models/dto"
	"github.com/yigit/curriculum/internal/engine"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
	"github.com/yigit/curriculum/internal/pkg/logger"
)

// prerequisiteDetails is the details payload of a PRQ_001 error
type prerequisiteDetails struct {
	Course      dto.CourseResponse       `json:"course"`
	Missing     []dto.CourseResponse     `json:"missing"`
	Suggestions []dto.SuggestionResponse `json:"suggestions"`
}

// HandleAPIError maps service and engine errors to the error envelope
func HandleAPIError(c *gin.Context, err error) {
	status, detail := errorDetailFor(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Unhandled API error")
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func errorDetailFor(err error) (int, *dto.ErrorDetail) {
	var (
		valErr      *apperrors.ValidationError
		prereqErr   *engine.PrerequisiteError
		contradicts *engine.ContradictionError
	)

	switch {
	case errors.As(err, &prereqErr):
		details := prerequisiteDetails{
			Course:      dto.NewCourseResponse(prereqErr.Course),
			Missing:     dto.NewCourseResponses(prereqErr.Missing),
			Suggestions: make([]dto.SuggestionResponse, 0, len(prereqErr.Missing)),
		}
		for _, s := range prereqErr.Suggestions() {
			details.Suggestions = append(details.Suggestions, dto.SuggestionResponse{
				Course:  dto.NewCourseResponse(s.Course),
				Message: s.Message,
			})
		}
		return http.StatusUnprocessableEntity,
			dto.NewErrorDetail(dto.ErrorCodePrerequisitesNotMet, prereqErr.Error()).WithDetails(details)

	case errors.As(err, &contradicts):
		batch := dto.NewCheckBatchResponse(engine.BatchResult{Contradictions: contradicts.Contradictions}, nil)
		return http.StatusUnprocessableEntity,
			dto.NewErrorDetail(dto.ErrorCodeBatchContradiction, contradicts.Error()).WithDetails(batch.Contradictions)

	case errors.As(err, &valErr):
		return http.StatusBadRequest,
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, valErr.Error()).WithField(valErr.Field)

	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, messageOf(err, "Validation failed"))

	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, messageOf(err, "Resource not found"))

	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, messageOf(err, "Permission denied"))

	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConflict, messageOf(err, "Conflict"))

	case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, messageOf(err, "Resource already exists"))

	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")

	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")

	case errors.Is(err, apperrors.ErrCurriculumInconsistent):
		return http.StatusInternalServerError,
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Curriculum is inconsistent").WithSeverity(dto.ErrorSeverityCritical)

	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}

// messageOf prefers the error's own text for user-facing 4xx responses
func messageOf(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
