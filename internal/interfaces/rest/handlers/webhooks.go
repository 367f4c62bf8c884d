package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/DanielPopoola/ficmart-escrow/internal/interfaces/rest"
)

// HandlePaymentWebhook receives gateway callbacks
// @Summary      Gateway callback
// @Description  Verifies the signature and applies the reported status. Unknown or malformed callbacks are acknowledged as ignored so the gateway stops retrying.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  services.WebhookResult
// @Failure      401  {object}  rest.APIResponse  "Invalid signature"
// @Router       /webhooks/payments [post]
func (h *Handlers) HandlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := rest.ReadBody(r)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	result, err := h.payments.HandleWebhook(r.Context(), body)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(result)
}

// HandleHealth
// @Summary      Liveness and database check
// @Tags         system
// @Produce      json
// @Success      200  {object}  rest.APIResponse
// @Failure      503  {object}  rest.APIResponse
// @Router       /health [get]
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Ping(r.Context()); err != nil {
			h.logger.Warn("health check failed", "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(rest.APIResponse{
				Success: false,
				Error:   &rest.APIError{Code: "UNAVAILABLE", Message: "database unreachable"},
			})
			return
		}
	}
	rest.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
