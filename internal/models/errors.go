package models

import "errors"

var (
	ErrInvalidPreferences = errors.New("invalid preferences")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrNoTransactions     = errors.New("no transaction data available")
)
