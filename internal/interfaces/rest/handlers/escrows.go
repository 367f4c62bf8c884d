package handlers

import (
	"context"
	"net/http"

	"github.com/DanielPopoola/ficmart-escrow/internal/application/services"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/DanielPopoola/ficmart-escrow/internal/interfaces/rest"
)

type EscrowActionRequest struct {
	ActorRef string `json:"actor_ref" validate:"required" example:"admin-7"`
	Reason   string `json:"reason,omitempty" example:"buyer confirmed receipt"`
}

type PartialReleaseRequest struct {
	ActorRef string `json:"actor_ref" validate:"required" example:"admin-7"`
	Amount   int64  `json:"amount" validate:"required,gt=0" example:"60000"`
	Reason   string `json:"reason,omitempty" example:"one item missing"`
}

type escrowAction func(ctx context.Context, cmd services.EscrowActionCommand) (*domain.Escrow, error)

// HandleGetEscrow
// @Summary      Get an escrow
// @Tags         escrows
// @Produce      json
// @Param        escrowID  path      string            true  "Escrow ID"
// @Success      200       {object}  rest.APIResponse
// @Failure      404       {object}  rest.APIResponse
// @Router       /escrows/{escrowID} [get]
func (h *Handlers) HandleGetEscrow(w http.ResponseWriter, r *http.Request) {
	escrowID, err := rest.PathUUID(r, "escrowID")
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	escrow, err := h.escrows.GetEscrow(r.Context(), escrowID)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToEscrowResponse(escrow))
}

// HandleReleaseEscrow pays the held amount out to the payee
// @Summary      Release an escrow
// @Tags         escrows
// @Accept       json
// @Produce      json
// @Param        escrowID  path      string               true  "Escrow ID"
// @Param        request   body      EscrowActionRequest  true  "Actor and reason"
// @Success      200       {object}  rest.APIResponse
// @Failure      409       {object}  rest.APIResponse     "Escrow is not held"
// @Router       /escrows/{escrowID}/release [post]
func (h *Handlers) HandleReleaseEscrow(w http.ResponseWriter, r *http.Request) {
	h.handleEscrowAction(w, r, h.escrows.Release)
}

// HandleRefundEscrow returns the held amount to the payer
// @Summary      Refund an escrow
// @Tags         escrows
// @Accept       json
// @Produce      json
// @Param        escrowID  path      string               true  "Escrow ID"
// @Param        request   body      EscrowActionRequest  true  "Actor and reason"
// @Success      200       {object}  rest.APIResponse
// @Failure      409       {object}  rest.APIResponse
// @Router       /escrows/{escrowID}/refund [post]
func (h *Handlers) HandleRefundEscrow(w http.ResponseWriter, r *http.Request) {
	h.handleEscrowAction(w, r, h.escrows.Refund)
}

// HandleDisputeEscrow
// @Summary      Open a dispute
// @Tags         escrows
// @Accept       json
// @Produce      json
// @Param        escrowID  path      string               true  "Escrow ID"
// @Param        request   body      EscrowActionRequest  true  "Actor and reason"
// @Success      200       {object}  rest.APIResponse
// @Failure      409       {object}  rest.APIResponse
// @Router       /escrows/{escrowID}/dispute [post]
func (h *Handlers) HandleDisputeEscrow(w http.ResponseWriter, r *http.Request) {
	h.handleEscrowAction(w, r, h.escrows.MarkDisputed)
}

// HandleResolveDispute puts a disputed escrow back on hold
// @Summary      Resolve a dispute
// @Tags         escrows
// @Accept       json
// @Produce      json
// @Param        escrowID  path      string               true  "Escrow ID"
// @Param        request   body      EscrowActionRequest  true  "Actor and resolution note"
// @Success      200       {object}  rest.APIResponse
// @Failure      409       {object}  rest.APIResponse
// @Router       /escrows/{escrowID}/resolve [post]
func (h *Handlers) HandleResolveDispute(w http.ResponseWriter, r *http.Request) {
	h.handleEscrowAction(w, r, h.escrows.ResolveDispute)
}

// HandlePartialRelease splits the held amount between payee and payer
// @Summary      Partially release an escrow
// @Tags         escrows
// @Accept       json
// @Produce      json
// @Param        escrowID  path      string                 true  "Escrow ID"
// @Param        request   body      PartialReleaseRequest  true  "Amount released to the payee"
// @Success      200       {object}  rest.APIResponse
// @Failure      400       {object}  rest.APIResponse       "Amount out of range"
// @Failure      409       {object}  rest.APIResponse
// @Router       /escrows/{escrowID}/partial-release [post]
func (h *Handlers) HandlePartialRelease(w http.ResponseWriter, r *http.Request) {
	escrowID, err := rest.PathUUID(r, "escrowID")
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	var req PartialReleaseRequest
	if err := rest.DecodeJSON(r, &req, false); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	if err := h.validateRequest(req); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	escrow, err := h.escrows.PartialRelease(r.Context(), services.PartialReleaseCommand{
		EscrowID: escrowID,
		Amount:   req.Amount,
		ActorRef: req.ActorRef,
		Reason:   req.Reason,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToEscrowResponse(escrow))
}

func (h *Handlers) handleEscrowAction(w http.ResponseWriter, r *http.Request, action escrowAction) {
	escrowID, err := rest.PathUUID(r, "escrowID")
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	var req EscrowActionRequest
	if err := rest.DecodeJSON(r, &req, false); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	if err := h.validateRequest(req); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	escrow, err := action(r.Context(), services.EscrowActionCommand{
		EscrowID: escrowID,
		ActorRef: req.ActorRef,
		Reason:   req.Reason,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToEscrowResponse(escrow))
}
