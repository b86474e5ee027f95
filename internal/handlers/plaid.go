package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/guregu/null"
	"go.uber.org/zap"

	"github.com/horizonbank/banking-service/internal/domain"
	"github.com/horizonbank/banking-service/internal/shareable"
)

/*

			Endpoint            | 				Description
| ----------------------------- | ------------------------------------------- |
| `POST /plaid/link-token`      | Create a link token for the frontend        |
| `POST /plaid/exchange`        | Exchange a public token and link the bank   |

*/

type ExchangeTokenRequest struct {
	PublicToken string `json:"public_token"`
	UserID      string `json:"user_id"`
	CustomerURL string `json:"customer_url"`
}

/*
POST /plaid/link-token

Link token is short lived (30 min), single use per session.
*/
func (h *HttpServer) CreateLinkToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	token, err := h.plaidService.CreateLinkToken(r.Context(), req.UserID)
	if err != nil {
		h.logger.Error("failed to create link token", zap.Error(err))
		h.respondWithError(w, http.StatusInternalServerError, "Failed to create link token")
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]string{"link_token": token})
}

/*
POST /plaid/exchange

Completes account linking:

 1. Exchange the public_token for an access_token
 2. Fetch the linked account from the aggregator
 3. Create a processor token and a money-movement funding source
 4. Persist the bank record with its encoded shareable id
*/
func (h *HttpServer) ExchangePublicToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ExchangeTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.PublicToken == "" || req.UserID == "" || req.CustomerURL == "" {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	exchange, err := h.plaidService.ExchangePublicToken(ctx, req.PublicToken)
	if err != nil {
		h.logger.Error("failed to exchange public token", zap.Error(err))
		h.respondWithError(w, http.StatusInternalServerError, "Failed to exchange token")
		return
	}

	plaidAccounts, err := h.plaidService.GetAccounts(ctx, exchange.AccessToken)
	if err != nil || len(plaidAccounts) == 0 {
		h.logger.Error("failed to fetch linked account", zap.Error(err))
		h.respondWithError(w, http.StatusInternalServerError, "Failed to fetch linked account")
		return
	}
	account := plaidAccounts[0]

	processorToken, err := h.plaidService.CreateProcessorToken(ctx, exchange.AccessToken, account.AccountID)
	if err != nil {
		h.logger.Error("failed to create processor token", zap.Error(err))
		h.respondWithError(w, http.StatusInternalServerError, "Failed to create processor token")
		return
	}

	fundingSourceURL, err := h.dwollaService.CreateFundingSource(ctx, req.CustomerURL, processorToken, account.Name)
	if err != nil {
		h.logger.Error("failed to create funding source", zap.Error(err))
		h.respondWithError(w, http.StatusInternalServerError, "Failed to create funding source")
		return
	}

	bank := &domain.Bank{
		UserID:           req.UserID,
		AccountID:        account.AccountID,
		ItemID:           exchange.ItemID,
		AccessToken:      exchange.AccessToken,
		FundingSourceURL: fundingSourceURL,
		ShareableID:      null.StringFrom(shareable.EncodeAccountID(account.AccountID)),
	}

	err = h.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		return h.banks.CreateBank(ctx, bank)
	})
	if err != nil {
		if errors.Is(err, domain.ErrBankExists) {
			h.respondWithError(w, http.StatusConflict, "Bank account already linked")
			return
		}
		h.logger.Error("failed to save bank record", zap.Error(err))
		h.respondWithError(w, http.StatusInternalServerError, "Failed to save bank record")
		return
	}

	h.respondWithJSON(w, http.StatusCreated, bank)
}
