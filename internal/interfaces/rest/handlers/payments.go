package handlers

import (
	"net/http"

	"github.com/DanielPopoola/ficmart-escrow/internal/application/services"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/DanielPopoola/ficmart-escrow/internal/interfaces/rest"
)

type CreatePaymentRequest struct {
	OrderRef    string              `json:"order_ref" validate:"required" example:"ORD-2026-0001"`
	PayerRef    string              `json:"payer_ref" validate:"required" example:"buyer-42"`
	GrossAmount int64               `json:"gross_amount" validate:"required,gt=0" example:"100000"`
	Method      string              `json:"method" validate:"required" example:"qris"`
	Channel     string              `json:"channel,omitempty" example:"bca"`
	Gateway     string              `json:"gateway,omitempty" example:"simulator"`
	Customer    domain.CustomerInfo `json:"customer"`
	LineItems   []domain.LineItem   `json:"line_items,omitempty"`
}

// RetryPaymentRequest carries customer details again because they are never stored.
type RetryPaymentRequest struct {
	Method    string              `json:"method,omitempty" example:"virtual_account"`
	Channel   string              `json:"channel,omitempty" example:"bni"`
	Customer  domain.CustomerInfo `json:"customer"`
	LineItems []domain.LineItem   `json:"line_items,omitempty"`
}

// HandleCreatePayment opens a charge with the gateway
// @Summary      Create a payment
// @Description  Computes payer fees, creates the charge with the gateway and stores a pending payment.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request  body      CreatePaymentRequest  true  "Payment details"
// @Success      201      {object}  rest.APIResponse      "Payment created"
// @Failure      400      {object}  rest.APIResponse      "Invalid request"
// @Failure      409      {object}  rest.APIResponse      "Order already has an active payment"
// @Failure      502      {object}  rest.APIResponse      "Gateway rejected the charge"
// @Router       /payments [post]
func (h *Handlers) HandleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := rest.DecodeJSON(r, &req, false); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	if err := h.validateRequest(req); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	payment, err := h.payments.CreatePayment(r.Context(), services.CreatePaymentCommand{
		OrderRef:    req.OrderRef,
		PayerRef:    req.PayerRef,
		GrossAmount: req.GrossAmount,
		Method:      domain.PaymentMethod(req.Method),
		Channel:     req.Channel,
		Gateway:     domain.GatewayName(req.Gateway),
		Customer:    req.Customer,
		LineItems:   req.LineItems,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.ToPaymentResponse(payment))
}

// HandleGetPayment
// @Summary      Get a payment
// @Tags         payments
// @Produce      json
// @Param        paymentID  path      string            true  "Payment ID"
// @Success      200        {object}  rest.APIResponse
// @Failure      404        {object}  rest.APIResponse
// @Router       /payments/{paymentID} [get]
func (h *Handlers) HandleGetPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := rest.PathUUID(r, "paymentID")
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	payment, err := h.payments.GetPayment(r.Context(), paymentID)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToPaymentResponse(payment))
}

// HandleRetryPayment replaces a failed or expired payment with a new attempt
// @Summary      Retry a payment
// @Description  The old payment becomes superseded. Method and channel may change.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        paymentID  path      string               true   "Payment ID"
// @Param        request    body      RetryPaymentRequest  false  "New method, channel or customer details"
// @Success      201        {object}  rest.APIResponse
// @Failure      409        {object}  rest.APIResponse     "Payment is not failed or expired"
// @Failure      422        {object}  rest.APIResponse     "Retry limit reached"
// @Router       /payments/{paymentID}/retry [post]
func (h *Handlers) HandleRetryPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := rest.PathUUID(r, "paymentID")
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	var req RetryPaymentRequest
	if err := rest.DecodeJSON(r, &req, true); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	payment, err := h.retries.RetryPayment(r.Context(), services.RetryPaymentCommand{
		PaymentID: paymentID,
		Method:    domain.PaymentMethod(req.Method),
		Channel:   req.Channel,
		Customer:  req.Customer,
		LineItems: req.LineItems,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.ToPaymentResponse(payment))
}

// HandleCheckStatus asks the gateway for the current status and applies it
// @Summary      Check payment status
// @Tags         payments
// @Produce      json
// @Param        paymentID  path      string            true  "Payment ID"
// @Success      200        {object}  rest.APIResponse
// @Failure      502        {object}  rest.APIResponse
// @Failure      504        {object}  rest.APIResponse
// @Router       /payments/{paymentID}/check-status [post]
func (h *Handlers) HandleCheckStatus(w http.ResponseWriter, r *http.Request) {
	paymentID, err := rest.PathUUID(r, "paymentID")
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	payment, err := h.payments.CheckStatus(r.Context(), paymentID)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToPaymentResponse(payment))
}

// HandleCancelPayment
// @Summary      Cancel a pending payment
// @Tags         payments
// @Produce      json
// @Param        paymentID  path      string            true  "Payment ID"
// @Success      200        {object}  rest.APIResponse
// @Failure      409        {object}  rest.APIResponse  "Payment is not pending"
// @Router       /payments/{paymentID}/cancel [post]
func (h *Handlers) HandleCancelPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := rest.PathUUID(r, "paymentID")
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	payment, err := h.payments.CancelPayment(r.Context(), paymentID)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToPaymentResponse(payment))
}
