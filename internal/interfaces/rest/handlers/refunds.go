package handlers

import (
	"context"
	"net/http"

	"github.com/DanielPopoola/ficmart-escrow/internal/application/services"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/DanielPopoola/ficmart-escrow/internal/interfaces/rest"
)

type RequestRefundRequest struct {
	PaymentID string `json:"payment_id" validate:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Requester string `json:"requester" validate:"required" example:"buyer-42"`
	Reason    string `json:"reason" validate:"required" example:"item damaged"`
	Amount    int64  `json:"amount" validate:"required,gt=0" example:"100000"`
}

type AdminNoteRequest struct {
	Note string `json:"note,omitempty" example:"verified with courier"`
}

type refundAction func(ctx context.Context, refundID, note string) (*domain.Refund, error)

// HandleRequestRefund
// @Summary      Request a refund for a paid payment
// @Description  The escrow moves to refund_pending until an admin decides.
// @Tags         refunds
// @Accept       json
// @Produce      json
// @Param        request  body      RequestRefundRequest  true  "Refund details"
// @Success      201      {object}  rest.APIResponse
// @Failure      409      {object}  rest.APIResponse      "Payment already has an active refund"
// @Router       /refunds [post]
func (h *Handlers) HandleRequestRefund(w http.ResponseWriter, r *http.Request) {
	var req RequestRefundRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	refund, err := h.refunds.RequestRefund(r.Context(), services.RequestRefundCommand{
		PaymentID: req.PaymentID,
		Requester: req.Requester,
		Reason:    req.Reason,
		Amount:    req.Amount,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.ToRefundResponse(refund))
}

// HandleGetRefund
// @Summary      Get a refund
// @Tags         refunds
// @Produce      json
// @Param        refundID  path      string            true  "Refund ID"
// @Success      200       {object}  rest.APIResponse
// @Failure      404       {object}  rest.APIResponse
// @Router       /refunds/{refundID} [get]
func (h *Handlers) HandleGetRefund(w http.ResponseWriter, r *http.Request) {
	refundID, err := rest.PathUUID(r, "refundID")
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	refund, err := h.refunds.GetRefund(r.Context(), refundID)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToRefundResponse(refund))
}

// HandleApproveRefund
// @Summary      Approve a refund
// @Tags         refunds
// @Accept       json
// @Produce      json
// @Param        refundID  path      string            true   "Refund ID"
// @Param        request   body      AdminNoteRequest  false  "Admin note"
// @Success      200       {object}  rest.APIResponse
// @Failure      409       {object}  rest.APIResponse
// @Router       /refunds/{refundID}/approve [post]
func (h *Handlers) HandleApproveRefund(w http.ResponseWriter, r *http.Request) {
	h.handleRefundAction(w, r, h.refunds.ApproveRefund)
}

// HandleCompleteRefund settles the escrow once the money is returned
// @Summary      Complete a refund
// @Tags         refunds
// @Accept       json
// @Produce      json
// @Param        refundID  path      string            true   "Refund ID"
// @Param        request   body      AdminNoteRequest  false  "Admin note"
// @Success      200       {object}  rest.APIResponse
// @Failure      409       {object}  rest.APIResponse
// @Router       /refunds/{refundID}/complete [post]
func (h *Handlers) HandleCompleteRefund(w http.ResponseWriter, r *http.Request) {
	h.handleRefundAction(w, r, h.refunds.CompleteRefund)
}

// HandleRejectRefund
// @Summary      Reject a refund
// @Description  A refund_pending escrow goes back to held.
// @Tags         refunds
// @Accept       json
// @Produce      json
// @Param        refundID  path      string            true   "Refund ID"
// @Param        request   body      AdminNoteRequest  false  "Admin note"
// @Success      200       {object}  rest.APIResponse
// @Failure      409       {object}  rest.APIResponse
// @Router       /refunds/{refundID}/reject [post]
func (h *Handlers) HandleRejectRefund(w http.ResponseWriter, r *http.Request) {
	h.handleRefundAction(w, r, h.refunds.RejectRefund)
}

func (h *Handlers) handleRefundAction(w http.ResponseWriter, r *http.Request, action refundAction) {
	refundID, err := rest.PathUUID(r, "refundID")
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	var req AdminNoteRequest
	if err := rest.DecodeJSON(r, &req, true); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	refund, err := action(r.Context(), refundID, req.Note)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToRefundResponse(refund))
}
