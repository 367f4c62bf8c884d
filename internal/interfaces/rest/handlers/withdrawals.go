package handlers

import (
	"net/http"

	"github.com/DanielPopoola/ficmart-escrow/internal/application/services"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/DanielPopoola/ficmart-escrow/internal/interfaces/rest"
)

type CreateWithdrawalRequest struct {
	EscrowID           string `json:"escrow_id" validate:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	PayeeRef           string `json:"payee_ref" validate:"required" example:"seller-9"`
	PayoutMethod       string `json:"payout_method" validate:"required" example:"bank_transfer"`
	DestinationAccount string `json:"destination_account" validate:"required" example:"BCA 1234567890"`
}

type ActorRequest struct {
	ActorRef string `json:"actor_ref" validate:"required" example:"ops-3"`
}

type CompleteWithdrawalRequest struct {
	ProofRef string `json:"proof_ref" validate:"required" example:"TRF-20260115-0001"`
}

type FailWithdrawalRequest struct {
	Reason string `json:"reason" validate:"required" example:"destination account closed"`
}

// HandleCreateWithdrawal
// @Summary      Request a payout for a released escrow
// @Tags         withdrawals
// @Accept       json
// @Produce      json
// @Param        request  body      CreateWithdrawalRequest  true  "Payout details"
// @Success      201      {object}  rest.APIResponse
// @Failure      409      {object}  rest.APIResponse         "Escrow already has an active withdrawal"
// @Failure      422      {object}  rest.APIResponse         "Escrow is not released"
// @Router       /withdrawals [post]
func (h *Handlers) HandleCreateWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req CreateWithdrawalRequest
	if err := rest.DecodeJSON(r, &req, false); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	if err := h.validateRequest(req); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	withdrawal, err := h.withdrawals.CreateWithdrawal(r.Context(), services.CreateWithdrawalCommand{
		EscrowID:           req.EscrowID,
		PayeeRef:           req.PayeeRef,
		PayoutMethod:       domain.PayoutMethod(req.PayoutMethod),
		DestinationAccount: req.DestinationAccount,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.ToWithdrawalResponse(withdrawal))
}

// HandleGetWithdrawal
// @Summary      Get a withdrawal
// @Tags         withdrawals
// @Produce      json
// @Param        withdrawalID  path      string            true  "Withdrawal ID"
// @Success      200           {object}  rest.APIResponse
// @Failure      404           {object}  rest.APIResponse
// @Router       /withdrawals/{withdrawalID} [get]
func (h *Handlers) HandleGetWithdrawal(w http.ResponseWriter, r *http.Request) {
	withdrawalID, err := rest.PathUUID(r, "withdrawalID")
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	withdrawal, err := h.withdrawals.GetWithdrawal(r.Context(), withdrawalID)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToWithdrawalResponse(withdrawal))
}

// HandleProcessWithdrawal
// @Summary      Mark a withdrawal as processing
// @Tags         withdrawals
// @Accept       json
// @Produce      json
// @Param        withdrawalID  path      string        true  "Withdrawal ID"
// @Param        request       body      ActorRequest  true  "Operator"
// @Success      200           {object}  rest.APIResponse
// @Failure      409           {object}  rest.APIResponse
// @Router       /withdrawals/{withdrawalID}/process [post]
func (h *Handlers) HandleProcessWithdrawal(w http.ResponseWriter, r *http.Request) {
	withdrawalID, err := rest.PathUUID(r, "withdrawalID")
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	var req ActorRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	withdrawal, err := h.withdrawals.StartProcessing(r.Context(), withdrawalID, req.ActorRef)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToWithdrawalResponse(withdrawal))
}

// HandleCompleteWithdrawal records the transfer proof and completes the escrow
// @Summary      Complete a withdrawal
// @Tags         withdrawals
// @Accept       json
// @Produce      json
// @Param        withdrawalID  path      string                     true  "Withdrawal ID"
// @Param        request       body      CompleteWithdrawalRequest  true  "Transfer proof"
// @Success      200           {object}  rest.APIResponse
// @Failure      409           {object}  rest.APIResponse
// @Router       /withdrawals/{withdrawalID}/complete [post]
func (h *Handlers) HandleCompleteWithdrawal(w http.ResponseWriter, r *http.Request) {
	withdrawalID, err := rest.PathUUID(r, "withdrawalID")
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	var req CompleteWithdrawalRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	withdrawal, err := h.withdrawals.Complete(r.Context(), withdrawalID, req.ProofRef)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToWithdrawalResponse(withdrawal))
}

// HandleFailWithdrawal
// @Summary      Fail a withdrawal
// @Description  The escrow stays released so a new withdrawal can be requested.
// @Tags         withdrawals
// @Accept       json
// @Produce      json
// @Param        withdrawalID  path      string                 true  "Withdrawal ID"
// @Param        request       body      FailWithdrawalRequest  true  "Failure reason"
// @Success      200           {object}  rest.APIResponse
// @Failure      409           {object}  rest.APIResponse
// @Router       /withdrawals/{withdrawalID}/fail [post]
func (h *Handlers) HandleFailWithdrawal(w http.ResponseWriter, r *http.Request) {
	withdrawalID, err := rest.PathUUID(r, "withdrawalID")
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	var req FailWithdrawalRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	withdrawal, err := h.withdrawals.Fail(r.Context(), withdrawalID, req.Reason)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToWithdrawalResponse(withdrawal))
}

// HandleInstantWithdrawal
// @Summary      Process and complete a withdrawal in one step
// @Tags         withdrawals
// @Accept       json
// @Produce      json
// @Param        withdrawalID  path      string        true  "Withdrawal ID"
// @Param        request       body      ActorRequest  true  "Operator"
// @Success      200           {object}  rest.APIResponse
// @Failure      409           {object}  rest.APIResponse
// @Router       /withdrawals/{withdrawalID}/instant [post]
func (h *Handlers) HandleInstantWithdrawal(w http.ResponseWriter, r *http.Request) {
	withdrawalID, err := rest.PathUUID(r, "withdrawalID")
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	var req ActorRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	withdrawal, err := h.withdrawals.ProcessInstant(r.Context(), withdrawalID, req.ActorRef)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToWithdrawalResponse(withdrawal))
}

func (h *Handlers) decodeAndValidate(r *http.Request, dst any) error {
	if err := rest.DecodeJSON(r, dst, false); err != nil {
		return err
	}
	return h.validateRequest(dst)
}
