package vault

import (
	"context"
	"time"

	"cabinfolio-backend/internal/domain"
	"cabinfolio-backend/internal/repository"
)

// RefreshSkew is how long before expiry a token is already considered
// stale. Refreshing early keeps a request from racing the expiry clock
// mid-flight.
const RefreshSkew = 5 * time.Minute

// Vault stores OAuth token pairs encrypted at rest and hands out
// decrypted copies per call. It is the only component that touches the
// cipher; everything above it sees plaintext TokenPairs in memory only.
type Vault struct {
	cipher *Cipher
	creds  repository.CredentialRepository
	now    func() time.Time
}

func New(cipher *Cipher, creds repository.CredentialRepository) *Vault {
	return &Vault{cipher: cipher, creds: creds, now: time.Now}
}

// Store encrypts and persists a token pair for the owner ref, creating
// or overwriting the record.
func (v *Vault) Store(ctx context.Context, ownerRef string, pair domain.TokenPair, orgID, orgName string) error {
	accessCipher, err := v.cipher.Encrypt(pair.AccessToken)
	if err != nil {
		return err
	}
	refreshCipher, err := v.cipher.Encrypt(pair.RefreshToken)
	if err != nil {
		return err
	}

	cred := &domain.ExternalCredential{
		OwnerRef:           ownerRef,
		OrganizationID:     orgID,
		OrganizationName:   orgName,
		AccessTokenCipher:  accessCipher,
		RefreshTokenCipher: refreshCipher,
		RefreshFingerprint: Fingerprint(pair.RefreshToken),
		TokenType:          pair.TokenType,
		Scope:              pair.Scope,
		TokenExpiresAt:     pair.ExpiresAt,
	}
	return v.creds.Upsert(ctx, cred)
}

// GetDecrypted loads and decrypts the owner's token pair. Returns
// domain.ErrNotConnected when no record exists and
// domain.ErrDecryptionFailed when ciphertext cannot be authenticated.
func (v *Vault) GetDecrypted(ctx context.Context, ownerRef string) (domain.TokenPair, error) {
	cred, err := v.creds.GetByOwnerRef(ctx, ownerRef)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return v.decrypt(cred)
}

func (v *Vault) decrypt(cred *domain.ExternalCredential) (domain.TokenPair, error) {
	access, err := v.cipher.Decrypt(cred.AccessTokenCipher)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := v.cipher.Decrypt(cred.RefreshTokenCipher)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    cred.TokenType,
		Scope:        cred.Scope,
		ExpiresAt:    cred.TokenExpiresAt,
	}, nil
}

// NeedsRefresh reports whether the stored access token is within
// RefreshSkew of expiry (or already expired).
func (v *Vault) NeedsRefresh(ctx context.Context, ownerRef string) (bool, error) {
	cred, err := v.creds.GetByOwnerRef(ctx, ownerRef)
	if err != nil {
		return false, err
	}
	return v.expiresSoon(cred.TokenExpiresAt), nil
}

func (v *Vault) expiresSoon(expiresAt time.Time) bool {
	return !v.now().Before(expiresAt.Add(-RefreshSkew))
}

// Remove deletes the owner's credential record (disconnect).
func (v *Vault) Remove(ctx context.Context, ownerRef string) error {
	return v.creds.Delete(ctx, ownerRef)
}

// Record returns the stored credential row without decrypting anything,
// for status displays.
func (v *Vault) Record(ctx context.Context, ownerRef string) (*domain.ExternalCredential, error) {
	return v.creds.GetByOwnerRef(ctx, ownerRef)
}

// DecryptRecord decrypts an already-loaded credential row.
func (v *Vault) DecryptRecord(cred *domain.ExternalCredential) (domain.TokenPair, error) {
	return v.decrypt(cred)
}

// ExpiresSoon reports whether the given expiry is within RefreshSkew of
// the vault clock.
func (v *Vault) ExpiresSoon(expiresAt time.Time) bool {
	return v.expiresSoon(expiresAt)
}

// EncryptPair seals both tokens of a pair and returns the ciphertexts
// plus the refresh-token fingerprint used for rotation guards.
func (v *Vault) EncryptPair(pair domain.TokenPair) (accessCipher, refreshCipher, fingerprint string, err error) {
	accessCipher, err = v.cipher.Encrypt(pair.AccessToken)
	if err != nil {
		return "", "", "", err
	}
	refreshCipher, err = v.cipher.Encrypt(pair.RefreshToken)
	if err != nil {
		return "", "", "", err
	}
	return accessCipher, refreshCipher, Fingerprint(pair.RefreshToken), nil
}
