package domain

import "time"

// ExternalCredential is the encrypted-at-rest OAuth token pair for the
// accounting integration. Token fields hold ciphertext only; plaintext
// exists in memory per call, never in this struct as persisted.
type ExternalCredential struct {
	ID                 int64
	OwnerRef           string // one record per identity
	OrganizationID     string
	OrganizationName   string
	AccessTokenCipher  string
	RefreshTokenCipher string
	// RefreshFingerprint is a SHA-256 hex digest of the plaintext refresh
	// token, used as the compare-and-swap guard when rotating tokens.
	RefreshFingerprint string
	TokenType          string
	Scope              string
	TokenExpiresAt     time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TokenPair is a decrypted credential as handed to callers. It must not
// be persisted or logged.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Scope        string
	ExpiresAt    time.Time
}

// ReconciliationEntry records a booking that mutated external state but
// whose ledger commit failed, so an operator can repair the gap
// out-of-band.
type ReconciliationEntry struct {
	ID         string // uuid
	BookingID  string
	OwnerID    string
	PropertyID string
	Nights     int
	Cause      string
	Resolved   bool
	CreatedAt  time.Time
}
