package postgres

import (
	"context"
	"database/sql"

	"cabinfolio-backend/internal/domain"
	"cabinfolio-backend/internal/repository"
)

type reconciliationRepository struct {
	db *sql.DB
}

func NewReconciliationRepository(db *sql.DB) repository.ReconciliationRepository {
	return &reconciliationRepository{db: db}
}

func (r *reconciliationRepository) Create(ctx context.Context, entry *domain.ReconciliationEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reconciliation_entries (id, booking_id, owner_id, property_id, nights, cause, resolved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, now())`,
		entry.ID, entry.BookingID, entry.OwnerID, entry.PropertyID, entry.Nights, entry.Cause)
	return err
}

func (r *reconciliationRepository) ListUnresolved(ctx context.Context) ([]domain.ReconciliationEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, booking_id, owner_id, property_id, nights, cause, resolved, created_at
		FROM reconciliation_entries WHERE resolved = false ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ReconciliationEntry
	for rows.Next() {
		var e domain.ReconciliationEntry
		if err := rows.Scan(&e.ID, &e.BookingID, &e.OwnerID, &e.PropertyID, &e.Nights, &e.Cause, &e.Resolved, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *reconciliationRepository) MarkResolved(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE reconciliation_entries SET resolved = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
