package domain

import "context"

// Transactor defines a Transaction Port interface. Repository calls made
// inside the callback share one database transaction.
type Transactor interface {
	WithinTransaction(context.Context, func(ctx context.Context) error) error
}
