package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/horizonbank/banking-service/internal/domain"
	"github.com/horizonbank/banking-service/internal/utils"
)

const uniqueViolation = "23505"

type PostgresRepo struct {
	db *Postgres
}

var (
	_ domain.BankRepository        = (*PostgresRepo)(nil)
	_ domain.TransactionRepository = (*PostgresRepo)(nil)
)

func NewPostgresRepo(db *Postgres) *PostgresRepo {
	return &PostgresRepo{db}
}

var bankColumns = []string{
	"id", "user_id", "account_id", "item_id", "access_token",
	"funding_source_url", "shareable_id", "created_at",
}

var transactionColumns = []string{
	"id", "name", "amount", "sender_id", "sender_bank_id",
	"receiver_id", "receiver_bank_id", "email", "channel", "category", "created_at",
}

func (r *PostgresRepo) GetBank(ctx context.Context, id string) (*domain.Bank, error) {
	query, args, err := r.db.Builder.
		Select(bankColumns...).
		From("banks").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build bank query: %w", err)
	}

	return r.scanBank(r.db.runner(ctx).QueryRow(ctx, query, args...))
}

func (r *PostgresRepo) GetBankByAccountID(ctx context.Context, accountID string) (*domain.Bank, error) {
	query, args, err := r.db.Builder.
		Select(bankColumns...).
		From("banks").
		Where(squirrel.Eq{"account_id": accountID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build bank query: %w", err)
	}

	return r.scanBank(r.db.runner(ctx).QueryRow(ctx, query, args...))
}

func (r *PostgresRepo) GetBanks(ctx context.Context, userID string) ([]*domain.Bank, error) {
	query, args, err := r.db.Builder.
		Select(bankColumns...).
		From("banks").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build banks query: %w", err)
	}

	rows, err := r.db.runner(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query banks for user %s: %w", userID, err)
	}
	defer rows.Close()

	var banks []*domain.Bank
	for rows.Next() {
		bank, err := r.scanBank(rows)
		if err != nil {
			return nil, err
		}
		banks = append(banks, bank)
	}

	return banks, rows.Err()
}

func (r *PostgresRepo) CreateBank(ctx context.Context, bank *domain.Bank) error {
	if bank.ID == "" {
		bank.ID = uuid.NewString()
	}

	query, args, err := r.db.Builder.
		Insert("banks").
		Columns("id", "user_id", "account_id", "item_id", "access_token",
			"funding_source_url", "shareable_id").
		Values(bank.ID, bank.UserID, bank.AccountID, bank.ItemID, bank.AccessToken,
			bank.FundingSourceURL, utils.NullStringToSQL(bank.ShareableID)).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build bank insert: %w", err)
	}

	err = r.db.runner(ctx).QueryRow(ctx, query, args...).Scan(&bank.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrBankExists
		}
		return fmt.Errorf("failed to insert bank: %w", err)
	}

	return nil
}

func (r *PostgresRepo) CreateTransaction(ctx context.Context, transaction *domain.Transaction) error {
	if transaction.ID == "" {
		transaction.ID = uuid.NewString()
	}

	query, args, err := r.db.Builder.
		Insert("transactions").
		Columns("id", "name", "amount", "sender_id", "sender_bank_id",
			"receiver_id", "receiver_bank_id", "email", "channel", "category", "created_at").
		Values(transaction.ID, transaction.Name, transaction.Amount,
			transaction.SenderID, transaction.SenderBankID,
			transaction.ReceiverID, transaction.ReceiverBankID,
			transaction.Email, transaction.Channel, transaction.Category,
			transaction.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build transaction insert: %w", err)
	}

	if _, err := r.db.runner(ctx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

func (r *PostgresRepo) GetTransactionsByBankID(ctx context.Context, bankID string) ([]*domain.Transaction, error) {
	query, args, err := r.db.Builder.
		Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Or{
			squirrel.Eq{"sender_bank_id": bankID},
			squirrel.Eq{"receiver_bank_id": bankID},
		}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build transactions query: %w", err)
	}

	rows, err := r.db.runner(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for bank %s: %w", bankID, err)
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		if err := rows.Scan(&tx.ID, &tx.Name, &tx.Amount, &tx.SenderID, &tx.SenderBankID,
			&tx.ReceiverID, &tx.ReceiverBankID, &tx.Email, &tx.Channel, &tx.Category,
			&tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &tx)
	}

	return transactions, rows.Err()
}

func (r *PostgresRepo) scanBank(row pgx.Row) (*domain.Bank, error) {
	var bank domain.Bank
	var shareableID sql.NullString

	err := row.Scan(&bank.ID, &bank.UserID, &bank.AccountID, &bank.ItemID,
		&bank.AccessToken, &bank.FundingSourceURL, &shareableID, &bank.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan bank: %w", err)
	}

	bank.ShareableID = utils.SqlToNullString(shareableID)

	return &bank, nil
}
