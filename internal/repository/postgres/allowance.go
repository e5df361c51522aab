package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cabinfolio-backend/internal/domain"
	"cabinfolio-backend/internal/repository"
)

type allowanceRepository struct {
	db *sql.DB
}

func NewAllowanceRepository(db *sql.DB) repository.AllowanceRepository {
	return &allowanceRepository{db: db}
}

const allowanceColumns = `id, owner_id, property_id, year, days_used, days_limit, last_reset_date, next_reset_date, closeout_required, created_at, updated_at`

func scanAllowance(row interface{ Scan(...any) error }) (*domain.BookingAllowance, error) {
	var a domain.BookingAllowance
	err := row.Scan(&a.ID, &a.OwnerID, &a.PropertyID, &a.Year, &a.DaysUsed, &a.DaysLimit,
		&a.LastResetDate, &a.NextResetDate, &a.CloseoutRequired, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *allowanceRepository) GetOrCreate(ctx context.Context, ownerID, propertyID string, year int, daysLimit int, lastReset, nextReset time.Time) (*domain.BookingAllowance, error) {
	// Insert-if-absent then read back. ON CONFLICT DO NOTHING keeps the
	// first-access race between two requests harmless.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO booking_allowances (owner_id, property_id, year, days_used, days_limit, last_reset_date, next_reset_date, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, $5, $6, now(), now())
		ON CONFLICT (owner_id, property_id, year) DO NOTHING`,
		ownerID, propertyID, year, daysLimit, lastReset, nextReset)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+allowanceColumns+` FROM booking_allowances
		WHERE owner_id = $1 AND property_id = $2 AND year = $3`, ownerID, propertyID, year)
	return scanAllowance(row)
}

func (r *allowanceRepository) Reserve(ctx context.Context, ownerID, propertyID string, year, nights int) (*domain.BookingAllowance, error) {
	// Single conditional UPDATE: the quota check and the increment happen
	// in one statement, so concurrent reserves serialize on the row and
	// at most one can consume the last remaining nights.
	row := r.db.QueryRowContext(ctx, `
		UPDATE booking_allowances
		SET days_used = days_used + $4, updated_at = now()
		WHERE owner_id = $1 AND property_id = $2 AND year = $3 AND days_used + $4 <= days_limit
		RETURNING `+allowanceColumns,
		ownerID, propertyID, year, nights)

	a, err := scanAllowance(row)
	if errors.Is(err, sql.ErrNoRows) {
		current, lookupErr := r.get(ctx, ownerID, propertyID, year)
		if lookupErr != nil {
			return nil, lookupErr
		}
		return nil, &domain.InsufficientAllowanceError{Requested: nights, DaysRemaining: current.DaysRemaining()}
	}
	return a, err
}

func (r *allowanceRepository) Release(ctx context.Context, ownerID, propertyID string, year, nights int) (*domain.BookingAllowance, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE booking_allowances
		SET days_used = GREATEST(days_used - $4, 0), updated_at = now()
		WHERE owner_id = $1 AND property_id = $2 AND year = $3
		RETURNING `+allowanceColumns,
		ownerID, propertyID, year, nights)
	return scanAllowance(row)
}

func (r *allowanceRepository) get(ctx context.Context, ownerID, propertyID string, year int) (*domain.BookingAllowance, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+allowanceColumns+` FROM booking_allowances
		WHERE owner_id = $1 AND property_id = $2 AND year = $3`, ownerID, propertyID, year)
	return scanAllowance(row)
}

func (r *allowanceRepository) ListPastReset(ctx context.Context, cutoff time.Time) ([]domain.BookingAllowance, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+allowanceColumns+` FROM booking_allowances
		WHERE next_reset_date <= $1 AND closeout_required = false ORDER BY next_reset_date`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BookingAllowance
	for rows.Next() {
		a, err := scanAllowance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *allowanceRepository) FlagCloseoutRequired(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE booking_allowances SET closeout_required = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
