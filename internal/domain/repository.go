package domain

import "context"

type BankRepository interface {
	GetBank(ctx context.Context, id string) (*Bank, error)
	GetBankByAccountID(ctx context.Context, accountID string) (*Bank, error)
	GetBanks(ctx context.Context, userID string) ([]*Bank, error)
	CreateBank(ctx context.Context, bank *Bank) error
}

type TransactionRepository interface {
	CreateTransaction(ctx context.Context, transaction *Transaction) error
	// GetTransactionsByBankID returns every recorded transfer where the bank
	// appears as sender or receiver.
	GetTransactionsByBankID(ctx context.Context, bankID string) ([]*Transaction, error)
}
