package backend

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a structured error returned by the backend REST API.
type APIError struct {
	Status  int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("backend: %s (status %d, type %s)", e.Message, e.Status, e.Type)
	}
	return fmt.Sprintf("backend: %s (status %d)", e.Message, e.Status)
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsMissingScope reports whether err is the backend's "missing authorization
// scope" condition, raised when a call requires a session that no longer
// exists. Callers treat it as an already-logged-out state.
func IsMissingScope(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Type == "general_unauthorized_scope" {
		return true
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "missing scope")
}
