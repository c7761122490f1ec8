package app

import (
	"fmt"
	"net/http"
)

type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// ValidationError: the caller must correct its input.
func ValidationError(message string, details any) *DomainError {
	return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", message, details)
}

func NotFoundError(message string) *DomainError {
	return domainError(http.StatusNotFound, "NOT_FOUND", message, nil)
}

// BlockedError is returned for engagement attempts by a moderated visitor.
func BlockedError(name string) *DomainError {
	return domainError(http.StatusForbidden, "BLOCKED", "Blocked by Admin", map[string]any{"name": name})
}

func UnauthorizedError() *DomainError {
	return domainError(http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
}

// TransientError covers storage and upstream failures. Safe to retry.
func TransientError(message string) *DomainError {
	return domainError(http.StatusServiceUnavailable, "TRANSIENT_ERROR", message, nil)
}
