// Package rest holds the JSON envelope, the response DTOs and request helpers
// shared by the HTTP handlers and middleware.
package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, APIResponse{Success: true, Data: data})
}

// WriteError maps application and domain errors to HTTP responses.
// Server-side failures are logged and their cause is not exposed.
func WriteError(w http.ResponseWriter, err error, logger *slog.Logger) {
	status := application.ToHTTPStatus(err)
	code := application.ToErrorCode(err)

	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed",
			"status", status,
			"code", code,
			"category", application.CategorizeError(err),
			"error", err,
		)
	}

	writeEnvelope(w, status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: errorMessage(err),
		},
	})
}

func errorMessage(err error) string {
	if svcErr, ok := application.IsServiceError(err); ok {
		return svcErr.Message
	}
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "An internal error occurred"
}

func writeEnvelope(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
