package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(h *HttpServer) *chi.Mux {
	r := chi.NewRouter()

	// Health check or default route
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Banking service is running"))
	})

	// Plaid linking routes
	r.Post("/plaid/link-token", h.CreateLinkToken)
	r.Post("/plaid/exchange", h.ExchangePublicToken)

	// Account routes
	r.Get("/accounts", h.GetAccounts)
	r.Get("/accounts/{id}", h.GetAccount)
	r.Get("/institutions/{id}", h.GetInstitution)

	// Transfer routes
	r.Post("/transfers", h.CreateTransfer)
	r.Get("/transactions", h.GetBankTransactions)

	// Webhooks
	r.Post("/webhook/plaid", h.PlaidWebhook)

	return r
}
