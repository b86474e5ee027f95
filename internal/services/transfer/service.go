// Package transfer executes the funds-transfer workflow: resolve the sender
// and receiver bank records, move funds through the provider, then persist
// the transfer record. Steps are strictly sequential with no retry.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/horizonbank/banking-service/internal/domain"
	"github.com/horizonbank/banking-service/internal/services/dwolla"
	"github.com/horizonbank/banking-service/internal/shareable"
)

var (
	// ErrTransferFailed is the generic error surfaced when the money-movement
	// provider rejects or fails a transfer. Detail stays in server logs.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrInvalidShareableID means the receiver identifier could not be decoded.
	ErrInvalidShareableID = errors.New("invalid shareable id")
)

// Mover is the slice of the money-movement client the workflow needs.
type Mover interface {
	CreateTransfer(ctx context.Context, params dwolla.TransferParams) (*dwolla.Transfer, error)
}

type Service struct {
	banks        domain.BankRepository
	transactions domain.TransactionRepository
	mover        Mover
	transactor   domain.Transactor
	logger       *zap.Logger
}

func NewService(banks domain.BankRepository, transactions domain.TransactionRepository,
	mover Mover, transactor domain.Transactor, logger *zap.Logger) *Service {
	return &Service{
		banks:        banks,
		transactions: transactions,
		mover:        mover,
		transactor:   transactor,
		logger:       logger,
	}
}

// Input is a validated transfer request.
type Input struct {
	SenderBankID string
	ShareableID  string
	Amount       string
	Name         string
	Email        string
}

// Execute runs the workflow. Resolution failures abort before the provider
// is touched; a provider failure aborts before any record is written. There
// is no rollback: if the record write fails after funds moved, the
// inconsistency is logged as a distinguishable alert and returned as an
// error. No idempotency key is attached, so caller-side retries can
// duplicate a transfer.
func (s *Service) Execute(ctx context.Context, input Input) (*domain.Transaction, error) {
	// Resolve
	receiverAccountID, err := shareable.DecodeAccountID(input.ShareableID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShareableID, err)
	}

	receiverBank, err := s.banks.GetBankByAccountID(ctx, receiverAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve receiver bank: %w", err)
	}

	senderBank, err := s.banks.GetBank(ctx, input.SenderBankID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sender bank: %w", err)
	}

	// Transfer
	transfer, err := s.mover.CreateTransfer(ctx, dwolla.TransferParams{
		SourceFundingSourceURL:      senderBank.FundingSourceURL,
		DestinationFundingSourceURL: receiverBank.FundingSourceURL,
		Amount:                      input.Amount,
	})
	if err != nil {
		s.logger.Error("money movement failed",
			zap.String("sender_bank_id", senderBank.ID),
			zap.String("receiver_bank_id", receiverBank.ID),
			zap.String("amount", input.Amount),
			zap.Error(err))
		return nil, ErrTransferFailed
	}

	// Record
	record := &domain.Transaction{
		ID:             uuid.NewString(),
		Name:           input.Name,
		Amount:         input.Amount,
		SenderID:       senderBank.UserID,
		SenderBankID:   senderBank.ID,
		ReceiverID:     receiverBank.UserID,
		ReceiverBankID: receiverBank.ID,
		Email:          input.Email,
		Channel:        domain.TransferChannel,
		Category:       domain.TransferCategory,
		CreatedAt:      time.Now(),
	}

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.transactions.CreateTransaction(ctx, record)
	})
	if err != nil {
		// Funds already moved; there is no local record of it. This line is
		// the hook for reconciliation alerting.
		s.logger.Error("ALERT: funds moved but transfer record not persisted",
			zap.String("transfer_url", transfer.URL),
			zap.String("sender_bank_id", senderBank.ID),
			zap.String("receiver_bank_id", receiverBank.ID),
			zap.String("amount", input.Amount),
			zap.Error(err))
		return nil, fmt.Errorf("failed to record transfer: %w", err)
	}

	return record, nil
}
