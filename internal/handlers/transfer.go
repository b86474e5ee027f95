package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/horizonbank/banking-service/internal/domain"
	"github.com/horizonbank/banking-service/internal/services/transfer"
)

// CreateTransferRequest mirrors the transfer form fields.
type CreateTransferRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Amount     string `json:"amount"`
	SenderBank string `json:"senderBank"`
	SharableID string `json:"sharableId"`
}

// validate applies the form contract. Returns one message per failing field.
func (req *CreateTransferRequest) validate() map[string]string {
	fields := map[string]string{}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		fields["email"] = "Invalid email address"
	}
	if len(req.Name) < 4 {
		fields["name"] = "Transfer note is too short"
	}
	if len(req.Amount) < 4 {
		fields["amount"] = "Amount is too short"
	} else if parsed, err := decimal.NewFromString(req.Amount); err != nil || !parsed.IsPositive() {
		fields["amount"] = "Amount must be a positive number"
	}
	if len(req.SenderBank) < 4 {
		fields["senderBank"] = "Please select a valid bank account"
	}
	if len(req.SharableID) < 8 {
		fields["sharableId"] = "Please select a valid sharable Id"
	}

	return fields
}

/*
POST /transfers

Runs the transfer workflow: resolve sender/receiver banks, move funds,
record the transaction. Provider failures surface as a generic error; the
detail stays in server logs.
*/
func (h *HttpServer) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if fields := req.validate(); len(fields) > 0 {
		h.respondWithJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": fields})
		return
	}

	record, err := h.transfers.Execute(ctx, transfer.Input{
		SenderBankID: req.SenderBank,
		ShareableID:  req.SharableID,
		Amount:       req.Amount,
		Name:         req.Name,
		Email:        req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, transfer.ErrInvalidShareableID):
			h.respondWithError(w, http.StatusBadRequest, "Please select a valid sharable Id")
		case errors.Is(err, domain.ErrNotFound):
			h.respondWithError(w, http.StatusNotFound, "Bank not found")
		case errors.Is(err, transfer.ErrTransferFailed):
			h.respondWithError(w, http.StatusBadGateway, "Transfer failed")
		default:
			h.logger.Error("transfer request failed", zap.Error(err))
			h.respondWithError(w, http.StatusInternalServerError, "Failed to submit transfer")
		}
		return
	}

	h.respondWithJSON(w, http.StatusCreated, record)
}
