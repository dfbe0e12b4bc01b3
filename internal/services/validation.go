package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Code       string             `json:"code"`                 // Machine readable error code
	Error      string             `json:"error"`                // Error message
	Messages   []string           `json:"messages,omitempty"`   // Plan or batch level problems
	Details    map[string]string  `json:"details,omitempty"`    // Validation details
	Violations []PostingViolation `json:"violations,omitempty"` // Per posting problems
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper
func NewValidationHelper() *ValidationHelper {
	return &ValidationHelper{
		validator: validator.New(),
	}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, code, message string, statusCode int, validationErr error) {
	errorResp := ErrorResponse{Code: code, Error: message}

	var fieldErrs validator.ValidationErrors
	if errors.As(validationErr, &fieldErrs) {
		errorResp.Details = make(map[string]string)
		for _, err := range fieldErrs {
			errorResp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
		}
	}

	var requestErr *InvalidRequestError
	if errors.As(validationErr, &requestErr) {
		errorResp.Messages = requestErr.Messages
	}

	var postingErr *InvalidPostingParamsError
	if errors.As(validationErr, &postingErr) {
		errorResp.Violations = postingErr.Violations
	}

	WriteJSON(w, statusCode, errorResp)
}

// WriteJSON writes body as a JSON response with the given status
func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
