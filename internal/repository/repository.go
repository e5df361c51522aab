package repository

import (
	"context"
	"time"

	"cabinfolio-backend/internal/domain"
)

type AllowanceRepository interface {
	// GetOrCreate returns the allowance row for (owner, property, year),
	// inserting a zeroed one with the given limit and reset dates if none
	// exists yet.
	GetOrCreate(ctx context.Context, ownerID, propertyID string, year int, daysLimit int, lastReset, nextReset time.Time) (*domain.BookingAllowance, error)
	// Reserve atomically increments days_used by nights, but only when the
	// result stays within days_limit. Returns an
	// InsufficientAllowanceError when the conditional update matched no
	// row. Check and increment are a single SQL statement so two
	// concurrent reserves cannot both pass against a stale remainder.
	Reserve(ctx context.Context, ownerID, propertyID string, year, nights int) (*domain.BookingAllowance, error)
	// Release decrements days_used by nights, floored at zero.
	Release(ctx context.Context, ownerID, propertyID string, year, nights int) (*domain.BookingAllowance, error)
	// ListPastReset returns unflagged allowances whose next_reset_date is
	// at or before the cutoff.
	ListPastReset(ctx context.Context, cutoff time.Time) ([]domain.BookingAllowance, error)
	// FlagCloseoutRequired marks an allowance as awaiting an external
	// closeout. It never resets days_used.
	FlagCloseoutRequired(ctx context.Context, id int64) error
}

type CredentialRepository interface {
	// Upsert creates or fully replaces the credential record for
	// cred.OwnerRef.
	Upsert(ctx context.Context, cred *domain.ExternalCredential) error
	// GetByOwnerRef returns domain.ErrNotConnected when no record exists.
	GetByOwnerRef(ctx context.Context, ownerRef string) (*domain.ExternalCredential, error)
	// ReplaceTokens swaps both ciphertexts and the expiry in one
	// conditional update guarded by the previous refresh-token
	// fingerprint. Returns false without error when the guard did not
	// match, meaning another request already rotated the tokens.
	ReplaceTokens(ctx context.Context, ownerRef, oldFingerprint, accessCipher, refreshCipher, newFingerprint string, expiresAt time.Time) (bool, error)
	// Delete removes the record (disconnect). Deleting a missing record is
	// not an error.
	Delete(ctx context.Context, ownerRef string) error
	// ListExpiringBefore returns credentials whose token expiry is at or
	// before the cutoff, for the proactive refresh job.
	ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.ExternalCredential, error)
}

type ReconciliationRepository interface {
	Create(ctx context.Context, entry *domain.ReconciliationEntry) error
	ListUnresolved(ctx context.Context) ([]domain.ReconciliationEntry, error)
	MarkResolved(ctx context.Context, id string) error
}
