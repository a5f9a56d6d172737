package core

import (
	"fmt"
	"math/big"
)

// Validation failures are reported as data-carrying typed errors so callers
// can retry correctly: each variant carries the piece of ledger state that
// explains the rejection. Match with errors.As; the sets below are closed.

// BadFeeError reports a caller-supplied fee that does not match the ledger's
// configured fee.
type BadFeeError struct {
	ExpectedFee *big.Int
}

func (e *BadFeeError) Error() string {
	return fmt.Sprintf("ledger: bad fee, expected %s", e.ExpectedFee)
}

// InsufficientFundsError reports a debit exceeding the source balance.
type InsufficientFundsError struct {
	Balance *big.Int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("ledger: insufficient funds, balance %s", e.Balance)
}

// InsufficientAllowanceError reports a delegated spend exceeding the current
// (non-expired) allowance.
type InsufficientAllowanceError struct {
	Allowance *big.Int
}

func (e *InsufficientAllowanceError) Error() string {
	return fmt.Sprintf("ledger: insufficient allowance, current %s", e.Allowance)
}

// AllowanceChangedError reports a failed optimistic-concurrency check: the
// stored allowance no longer matches the caller's expectation.
type AllowanceChangedError struct {
	CurrentAllowance *big.Int
}

func (e *AllowanceChangedError) Error() string {
	return fmt.Sprintf("ledger: allowance changed, current %s", e.CurrentAllowance)
}

// AllowanceExpiredError reports an approval whose expiry is already in the
// past relative to ledger time.
type AllowanceExpiredError struct {
	LedgerTime uint64
}

func (e *AllowanceExpiredError) Error() string {
	return fmt.Sprintf("ledger: approval expired, ledger time %d", e.LedgerTime)
}

// TooOldError reports a client timestamp older than the transaction window.
type TooOldError struct{}

func (e *TooOldError) Error() string {
	return "ledger: transaction too old"
}

// CreatedInFutureError reports a client timestamp beyond ledger time plus the
// permitted clock drift.
type CreatedInFutureError struct {
	LedgerTime uint64
}

func (e *CreatedInFutureError) Error() string {
	return fmt.Sprintf("ledger: transaction created in future, ledger time %d", e.LedgerTime)
}

// BadBurnError reports a burn below the configured minimum.
type BadBurnError struct {
	MinBurnAmount *big.Int
}

func (e *BadBurnError) Error() string {
	return fmt.Sprintf("ledger: burn below minimum %s", e.MinBurnAmount)
}

// TemporarilyUnavailableError reports a transient capacity condition. It is
// the only error for which an unmodified client retry is appropriate.
type TemporarilyUnavailableError struct{}

func (e *TemporarilyUnavailableError) Error() string {
	return "ledger: temporarily unavailable"
}

// LedgerError is the generic escape hatch for conditions not otherwise
// classified.
type LedgerError struct {
	Code    uint64
	Message string
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger: %s (code %d)", e.Message, e.Code)
}

// Generic error codes.
const (
	CodeUnauthorized   uint64 = 1
	CodeInvalidRequest uint64 = 2
)

func errUnauthorized(message string) *LedgerError {
	return &LedgerError{Code: CodeUnauthorized, Message: message}
}

func errInvalidRequest(message string) *LedgerError {
	return &LedgerError{Code: CodeInvalidRequest, Message: message}
}
