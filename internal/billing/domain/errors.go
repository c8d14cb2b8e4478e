package domain

import "errors"

var (
	ErrNegativeRate      = errors.New("billing: rate is negative")
	ErrEmptyInvoiceID    = errors.New("billing: invoice id is empty")
	ErrEmptyContractID   = errors.New("billing: contract id is empty")
	ErrInvalidTotal      = errors.New("billing: total does not match cost components")
	ErrInvoiceNotFound   = errors.New("billing: invoice not found")
	ErrInvalidTransition = errors.New("billing: invalid invoice status transition")
)
