package domain

import (
	"errors"
	"fmt"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Reading errors
	ErrReadingNotFound = errors.New("reading not found")
	ErrInvalidValue    = errors.New("glucose value must be positive")

	// Ledger errors
	ErrInsufficientFunds = errors.New("insufficient coins")
	ErrNegativeAmount    = errors.New("amount must not be negative")

	// Shop errors
	ErrUnknownCollectible  = errors.New("collectible not in catalog")
	ErrCollectibleNotOwned = errors.New("collectible not owned")
	ErrCollectibleOwned    = errors.New("collectible already owned")

	// Catalog configuration errors
	ErrDuplicateCatalogID = errors.New("duplicate id in catalog")
	ErrEmptyCatalog       = errors.New("catalog must not be empty")
)

// DataAccessError wraps a failure of the reading store or persistence
// layer. The engine does not retry — the caller decides whether to
// re-run the whole evaluation.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("data access: %s: %v", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }

// DataErr wraps err as a DataAccessError, or returns nil.
func DataErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &DataAccessError{Op: op, Err: err}
}
