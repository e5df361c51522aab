package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cabinfolio-backend/internal/domain"
	"cabinfolio-backend/internal/repository"
)

type credentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) repository.CredentialRepository {
	return &credentialRepository{db: db}
}

const credentialColumns = `id, owner_ref, organization_id, organization_name, access_token_cipher, refresh_token_cipher, refresh_fingerprint, token_type, scope, token_expires_at, created_at, updated_at`

func scanCredential(row interface{ Scan(...any) error }) (*domain.ExternalCredential, error) {
	var c domain.ExternalCredential
	err := row.Scan(&c.ID, &c.OwnerRef, &c.OrganizationID, &c.OrganizationName,
		&c.AccessTokenCipher, &c.RefreshTokenCipher, &c.RefreshFingerprint,
		&c.TokenType, &c.Scope, &c.TokenExpiresAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *credentialRepository) Upsert(ctx context.Context, cred *domain.ExternalCredential) error {
	// One record per owner ref, enforced by the unique constraint; a
	// repeat authorization handshake overwrites the previous tokens.
	return r.db.QueryRowContext(ctx, `
		INSERT INTO external_credentials
			(owner_ref, organization_id, organization_name, access_token_cipher, refresh_token_cipher, refresh_fingerprint, token_type, scope, token_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		ON CONFLICT (owner_ref) DO UPDATE SET
			organization_id = EXCLUDED.organization_id,
			organization_name = EXCLUDED.organization_name,
			access_token_cipher = EXCLUDED.access_token_cipher,
			refresh_token_cipher = EXCLUDED.refresh_token_cipher,
			refresh_fingerprint = EXCLUDED.refresh_fingerprint,
			token_type = EXCLUDED.token_type,
			scope = EXCLUDED.scope,
			token_expires_at = EXCLUDED.token_expires_at,
			updated_at = now()
		RETURNING id`,
		cred.OwnerRef, cred.OrganizationID, cred.OrganizationName,
		cred.AccessTokenCipher, cred.RefreshTokenCipher, cred.RefreshFingerprint,
		cred.TokenType, cred.Scope, cred.TokenExpiresAt).Scan(&cred.ID)
}

func (r *credentialRepository) GetByOwnerRef(ctx context.Context, ownerRef string) (*domain.ExternalCredential, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+credentialColumns+` FROM external_credentials WHERE owner_ref = $1`, ownerRef)
	cred, err := scanCredential(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotConnected
	}
	return cred, err
}

func (r *credentialRepository) ReplaceTokens(ctx context.Context, ownerRef, oldFingerprint, accessCipher, refreshCipher, newFingerprint string, expiresAt time.Time) (bool, error) {
	// Conditional write keyed on the previous refresh token's
	// fingerprint: only the first of two concurrent refreshes lands, the
	// loser sees zero rows and must re-read instead of re-refreshing.
	res, err := r.db.ExecContext(ctx, `
		UPDATE external_credentials
		SET access_token_cipher = $3, refresh_token_cipher = $4, refresh_fingerprint = $5, token_expires_at = $6, updated_at = now()
		WHERE owner_ref = $1 AND refresh_fingerprint = $2`,
		ownerRef, oldFingerprint, accessCipher, refreshCipher, newFingerprint, expiresAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *credentialRepository) Delete(ctx context.Context, ownerRef string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM external_credentials WHERE owner_ref = $1`, ownerRef)
	return err
}

func (r *credentialRepository) ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.ExternalCredential, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+credentialColumns+` FROM external_credentials
		WHERE token_expires_at <= $1 ORDER BY token_expires_at`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ExternalCredential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}
