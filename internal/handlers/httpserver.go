package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/horizonbank/banking-service/internal/domain"
	"github.com/horizonbank/banking-service/internal/services/accounts"
	"github.com/horizonbank/banking-service/internal/services/dwolla"
	"github.com/horizonbank/banking-service/internal/services/plaid"
	"github.com/horizonbank/banking-service/internal/services/transfer"
)

type HttpServer struct {
	logger        *zap.Logger
	accounts      *accounts.Service
	transfers     *transfer.Service
	banks         domain.BankRepository
	transactions  domain.TransactionRepository
	transactor    domain.Transactor
	plaidService  plaid.Service
	dwollaService dwolla.Service
}

func NewHttpServer(logger *zap.Logger, accountsSvc *accounts.Service, transfersSvc *transfer.Service,
	banks domain.BankRepository, transactions domain.TransactionRepository, transactor domain.Transactor,
	plaidService plaid.Service, dwollaService dwolla.Service) *HttpServer {
	return &HttpServer{
		logger:        logger,
		accounts:      accountsSvc,
		transfers:     transfersSvc,
		banks:         banks,
		transactions:  transactions,
		transactor:    transactor,
		plaidService:  plaidService,
		dwollaService: dwollaService,
	}
}

func (h *HttpServer) respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (h *HttpServer) respondWithError(w http.ResponseWriter, status int, message string) {
	h.respondWithJSON(w, status, map[string]string{"error": message})
}
