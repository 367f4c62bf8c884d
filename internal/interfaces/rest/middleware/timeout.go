package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/DanielPopoola/ficmart-escrow/internal/interfaces/rest"
)

// Timeout bounds every request. The handler's context is cancelled at the
// deadline and the client receives a TIMEOUT envelope with status 503.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	body, _ := json.Marshal(rest.APIResponse{
		Success: false,
		Error: &rest.APIError{
			Code:    application.ErrCodeTimeout,
			Message: "Request timeout",
		},
	})

	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.TimeoutHandler(next, timeout, string(body))
	}
}
