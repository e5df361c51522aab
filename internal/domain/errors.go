package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors callers branch on with errors.Is. Policy violations
// carry computed values and use the typed PolicyError below instead.
var (
	// ErrNotConnected: no credential record exists for the owner ref.
	ErrNotConnected = errors.New("accounting integration is not connected")
	// ErrReauthorizationRequired: the refresh token was rejected by the
	// authorization server. Terminal; the owner must re-authorize.
	ErrReauthorizationRequired = errors.New("refresh token rejected, re-authorization required")
	// ErrDecryptionFailed: stored ciphertext could not be authenticated.
	ErrDecryptionFailed = errors.New("credential decryption failed")
	// ErrNotOwnerOfBooking: the booking exists but belongs to someone else
	// or is not an owner-type booking.
	ErrNotOwnerOfBooking = errors.New("booking does not belong to this owner")
	// ErrBookingAlreadyCancelled guards against double-crediting the
	// allowance ledger.
	ErrBookingAlreadyCancelled = errors.New("booking is already cancelled")
	// ErrBookingNotFound: the reservation system has no such booking.
	ErrBookingNotFound = errors.New("booking not found")
)

// InsufficientAllowanceError reports a reserve attempt that would push
// the owner past the annual quota.
type InsufficientAllowanceError struct {
	Requested     int
	DaysRemaining int
}

func (e *InsufficientAllowanceError) Error() string {
	return fmt.Sprintf("insufficient allowance: requested %d nights, %d remaining", e.Requested, e.DaysRemaining)
}

// PolicyRule identifies which booking policy was violated.
type PolicyRule string

const (
	RuleInvalidDateOrder         PolicyRule = "INVALID_DATE_ORDER"
	RuleMinStayNotMet            PolicyRule = "MIN_STAY_NOT_MET"
	RuleMaxStayExceeded          PolicyRule = "MAX_STAY_EXCEEDED"
	RuleAdvanceNoticeNotMet      PolicyRule = "ADVANCE_NOTICE_NOT_MET"
	RuleCancellationWindowPassed PolicyRule = "CANCELLATION_WINDOW_PASSED"
)

// PolicyViolation is one failed policy check with the values that were
// computed, so callers can render an actionable message.
type PolicyViolation struct {
	Rule    PolicyRule
	Message string
}

func (v PolicyViolation) Error() string {
	return fmt.Sprintf("%s: %s", v.Rule, v.Message)
}

// PolicyError wraps the ordered violations from a validation pass.
type PolicyError struct {
	Violations []PolicyViolation
}

func (e *PolicyError) Error() string {
	if len(e.Violations) == 0 {
		return "policy violation"
	}
	return e.Violations[0].Error()
}

// Has reports whether any violation matches the given rule.
func (e *PolicyError) Has(rule PolicyRule) bool {
	for _, v := range e.Violations {
		if v.Rule == rule {
			return true
		}
	}
	return false
}

// TransientError marks failures that are safe for the caller to retry
// with backoff: timeouts and 5xx responses from external systems. The
// core never retries internally.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient failure in %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err (or anything it wraps) is retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
