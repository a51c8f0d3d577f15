package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/ginilab/go-desforecaster/dataset"
	"github.com/ginilab/go-desforecaster/forecast"
	"github.com/ginilab/go-desforecaster/timedataset"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	RequestID  string      `json:"request_id,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError describes a single rejected request field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewAPIError creates a new APIError with the given parameters
func NewAPIError(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// ComputationError is a panic recovered while computing a forecast
type ComputationError struct {
	Value interface{}
	Stack []byte
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation failed: %v", e.Value)
}

// toAPIError maps errors from loading, validation and forecasting onto response errors
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var compErr *ComputationError
	if errors.As(err, &compErr) {
		return NewAPIError(http.StatusInternalServerError, "COMPUTATION_FAILED", compErr.Error(), map[string]string{
			"stack": string(compErr.Stack),
		})
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]ValidationError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, ValidationError{
				Field:   fe.Field(),
				Message: validationMessage(fe),
			})
		}
		return NewAPIError(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", fields)
	}

	switch {
	case errors.Is(err, forecast.ErrInsufficientData):
		return NewAPIError(http.StatusUnprocessableEntity, "INSUFFICIENT_DATA",
			fmt.Sprintf("At least %d observations are required to forecast", forecast.MinObservations), err.Error())
	case errors.Is(err, forecast.ErrNonFiniteValue),
		errors.Is(err, timedataset.ErrNoTrainingData),
		errors.Is(err, timedataset.ErrNonMonotonic):
		return NewAPIError(http.StatusUnprocessableEntity, "INVALID_SERIES", "The series cannot be forecast", err.Error())
	case errors.Is(err, forecast.ErrInvalidAlpha), errors.Is(err, forecast.ErrInvalidHorizon):
		return NewAPIError(http.StatusBadRequest, "INVALID_PARAMETER", "Invalid parameter value", err.Error())
	case errors.Is(err, dataset.ErrUnknownColumn):
		return NewAPIError(http.StatusNotFound, "UNKNOWN_COLUMN", "Column not found", err.Error())
	case errors.Is(err, dataset.ErrEmptySheet),
		errors.Is(err, dataset.ErrMissingColumn),
		errors.Is(err, dataset.ErrNonNumericColumn),
		errors.Is(err, dataset.ErrInvalidYear):
		return NewAPIError(http.StatusInternalServerError, "DATA_INVALID", "The dataset could not be read", err.Error())
	}
	return NewAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", err.Error())
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	}
	return fmt.Sprintf("%s failed the %s check", fe.Field(), fe.Tag())
}
