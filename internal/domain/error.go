package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidSignature   = errors.New("invalid callback signature")
	ErrAmountMismatch     = errors.New("callback amount does not match record")
	ErrAttemptExpired     = errors.New("payment attempt expired")
	ErrUnsupportedMethod  = errors.New("unsupported payment method")
	ErrNotPending         = errors.New("record is not awaiting payment")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid database execution context")
)
