// Package services provides the business logic layer between handlers and the
// dataset, pipeline, cache and event packages.
package services

import (
	"errors"

	"github.com/soltixdb/tsexplorer/internal/datasource"
)

// Error codes surfaced to API clients
const (
	CodeDatasetNotFound = "DATASET_NOT_FOUND"
	CodeInvalidCSV      = "INVALID_CSV"
	CodeNoNumericColumn = "NO_NUMERIC_COLUMN"
	CodeInvalidColumn   = "INVALID_COLUMN"
	CodeInternal        = "INTERNAL"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// columnError maps column selection failures to service errors
func columnError(err error, numeric []string) *ServiceError {
	switch {
	case errors.Is(err, datasource.ErrNoNumericColumn):
		return NewServiceError(CodeNoNumericColumn, "No numeric columns detected.")
	case errors.Is(err, datasource.ErrUnknownColumn):
		return NewServiceErrorWithDetails(CodeInvalidColumn, err.Error(), map[string]interface{}{
			"numeric_columns": numeric,
		})
	default:
		return NewServiceErrorWithDetails(CodeInternal, "Failed to select columns", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
