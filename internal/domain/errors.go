package domain

import "errors"

var (
	// ErrNotFound is returned by repositories when a bank or transaction
	// lookup matches no record.
	ErrNotFound = errors.New("record not found")

	// ErrBankExists is returned when linking an account that is already linked.
	ErrBankExists = errors.New("bank account already linked")
)
