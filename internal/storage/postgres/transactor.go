package postgres

import (
	"context"
	"fmt"
	"log"

	"github.com/horizonbank/banking-service/internal/domain"
)

type PostgresTransactor struct {
	conn *Postgres
}

type PostgresTransactorInterface interface {
	domain.Transactor
}

func NewPostgresTransactor(conn *Postgres) *PostgresTransactor {
	return &PostgresTransactor{conn}
}

// WithinTransaction runs queries within a transaction.
//
// The transaction commits when the callback finishes without error and is
// rolled back otherwise.
func (p *PostgresTransactor) WithinTransaction(ctx context.Context, txFunc func(ctx context.Context) error) error {
	tx, err := p.conn.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error begin tx: %w", err)
	}

	err = txFunc(InjectTx(ctx, tx))
	if err != nil {
		if errRollback := tx.Rollback(ctx); errRollback != nil {
			log.Printf("rollback tx: %v", errRollback)
		}
		return err
	}

	if errCommit := tx.Commit(ctx); errCommit != nil {
		return fmt.Errorf("error commit tx: %w", errCommit)
	}

	return nil
}
