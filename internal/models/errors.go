package models

import "errors"

// Application-wide standard errors
var (
	// Resource errors
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("record already exists")
	ErrStorage       = errors.New("storage operation failed")

	// Request/authorization errors
	ErrValidation = errors.New("invalid input data")
	ErrForbidden  = errors.New("forbidden") // story access_id does not match caller

	// Ledger errors
	ErrInsufficientBalance = errors.New("not enough points to deduct")

	// Generation/assembly errors
	ErrProvider        = errors.New("provider call failed")
	ErrProviderTimeout = errors.New("provider call timed out")
	ErrAssembly        = errors.New("media assembly aborted")
)
