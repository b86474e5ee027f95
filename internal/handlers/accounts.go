package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/horizonbank/banking-service/internal/domain"
)

/*
GET /accounts?user_id=

Returns every linked account for the user with totals. A user with no
linked banks gets an empty list, not a 404.
*/
func (h *HttpServer) GetAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		h.respondWithError(w, http.StatusBadRequest, "missing user_id")
		return
	}

	summary, err := h.accounts.GetAccounts(ctx, userID)
	if err != nil {
		h.logger.Error("failed to get accounts", zap.String("user_id", userID), zap.Error(err))
		h.respondWithError(w, http.StatusInternalServerError, "Failed to retrieve accounts")
		return
	}

	h.respondWithJSON(w, http.StatusOK, summary)
}

/*
GET /accounts/{id}

One bank's snapshot plus its merged transaction feed (aggregator history +
recorded transfers), newest first.
*/
func (h *HttpServer) GetAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bankID := chi.URLParam(r, "id")
	if bankID == "" {
		h.respondWithError(w, http.StatusBadRequest, "missing bank id")
		return
	}

	detail, err := h.accounts.GetAccount(ctx, bankID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Bank not found")
			return
		}
		h.logger.Error("failed to get account", zap.String("bank_id", bankID), zap.Error(err))
		h.respondWithError(w, http.StatusInternalServerError, "Failed to retrieve account")
		return
	}

	h.respondWithJSON(w, http.StatusOK, detail)
}

/*
GET /institutions/{id}

Thin pass-through to the aggregator's institution metadata. Lookup failures
yield an empty object rather than an error.
*/
func (h *HttpServer) GetInstitution(w http.ResponseWriter, r *http.Request) {
	institutionID := chi.URLParam(r, "id")
	if institutionID == "" {
		h.respondWithError(w, http.StatusBadRequest, "missing institution id")
		return
	}

	institution, err := h.plaidService.GetInstitution(r.Context(), institutionID)
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Failed to retrieve institution")
		return
	}

	h.respondWithJSON(w, http.StatusOK, institution)
}

/*
GET /transactions?bank_id=

Locally recorded transfers where the bank is sender or receiver.
*/
func (h *HttpServer) GetBankTransactions(w http.ResponseWriter, r *http.Request) {
	bankID := r.URL.Query().Get("bank_id")
	if bankID == "" {
		h.respondWithError(w, http.StatusBadRequest, "missing bank_id")
		return
	}

	transactions, err := h.transactions.GetTransactionsByBankID(r.Context(), bankID)
	if err != nil {
		h.logger.Error("failed to list transactions", zap.String("bank_id", bankID), zap.Error(err))
		h.respondWithError(w, http.StatusInternalServerError, "Failed to retrieve transactions")
		return
	}
	if transactions == nil {
		transactions = []*domain.Transaction{}
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"total":     len(transactions),
		"documents": transactions,
	})
}
