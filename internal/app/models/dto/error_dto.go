package dto

import "time"

// ErrorCode is the stable machine-readable part of an error response
type ErrorCode string

const (
	ErrorCodeInvalidToken ErrorCode = "AUTH_005"
	ErrorCodeExpiredToken ErrorCode = "AUTH_006"
	ErrorCodeUnauthorized ErrorCode = "AUTH_008"
	ErrorCodeForbidden    ErrorCode = "AUTH_009"

	ErrorCodeResourceNotFound      ErrorCode = "RES_001"
	ErrorCodeResourceAlreadyExists ErrorCode = "RES_002"
	ErrorCodeConflict              ErrorCode = "RES_004"

	ErrorCodeValidationFailed ErrorCode = "VAL_001"

	// Mandatory prerequisites missing for a PASSED transition
	ErrorCodePrerequisitesNotMet ErrorCode = "PRQ_001"
	// Selected courses out of curriculum order
	ErrorCodeBatchContradiction ErrorCode = "PRQ_002"

	ErrorCodeInternalServer ErrorCode = "SRV_001"
)

// ErrorSeverity tells clients whether retrying or reporting makes sense
type ErrorSeverity string

const (
	ErrorSeverityError    ErrorSeverity = "ERROR"
	ErrorSeverityCritical ErrorSeverity = "CRITICAL"
)

// ErrorDetail is the body of the "error" member of a failed response
type ErrorDetail struct {
	Code     ErrorCode     `json:"code" example:"VAL_001"`
	Message  string        `json:"message" example:"grade: must be between 0 and 20"`
	Field    string        `json:"field,omitempty" example:"grade"`
	Severity ErrorSeverity `json:"severity" example:"ERROR"`
	Details  interface{}   `json:"details,omitempty"`
}

// ErrorResponse is the envelope of every failed request
type ErrorResponse struct {
	Success   bool         `json:"success" example:"false"`
	Error     *ErrorDetail `json:"error"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewErrorDetail(code ErrorCode, message string) *ErrorDetail {
	return &ErrorDetail{Code: code, Message: message, Severity: ErrorSeverityError}
}

func (e *ErrorDetail) WithField(field string) *ErrorDetail {
	e.Field = field
	return e
}

func (e *ErrorDetail) WithSeverity(severity ErrorSeverity) *ErrorDetail {
	e.Severity = severity
	return e
}

// WithDetails attaches structured context, e.g. missing prerequisites
func (e *ErrorDetail) WithDetails(details interface{}) *ErrorDetail {
	e.Details = details
	return e
}

func NewErrorResponse(detail *ErrorDetail) *ErrorResponse {
	return &ErrorResponse{Success: false, Error: detail, Timestamp: time.Now()}
}

// ValidationErrors lists every rejected request field
type ValidationErrors struct {
	Errors []ErrorDetail `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Errors: []ErrorDetail{}}
}

func (v *ValidationErrors) AddError(field, message string) *ValidationErrors {
	v.Errors = append(v.Errors, *NewErrorDetail(ErrorCodeValidationFailed, message).WithField(field))
	return v
}
