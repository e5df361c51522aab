package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"cabinfolio-backend/internal/domain"
)

const (
	keyLen               = 32 // AES-256
	pbkdf2Rounds         = 100_000
	gcmTagSize           = 16
	cipherFormatSegments = 3
)

// Cipher performs authenticated encryption of token material with
// AES-256-GCM. The serialized form is three base64 segments joined by
// colons: nonce:tag:payload, so decryption needs nothing beyond the key.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher derives an AES-256 key from the configured passphrase and
// salt with PBKDF2-SHA256.
func NewCipher(passphrase, salt string) (*Cipher, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("vault passphrase is required")
	}
	key := pbkdf2.Key([]byte(passphrase), []byte(salt), pbkdf2Rounds, keyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("initializing vault cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("initializing vault cipher: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	// GCM appends the tag to the ciphertext; split it back out so the
	// stored format self-describes all three parts.
	payload := sealed[:len(sealed)-gcmTagSize]
	tag := sealed[len(sealed)-gcmTagSize:]

	enc := base64.StdEncoding
	return strings.Join([]string{
		enc.EncodeToString(nonce),
		enc.EncodeToString(tag),
		enc.EncodeToString(payload),
	}, ":"), nil
}

// Decrypt opens a nonce:tag:payload ciphertext. Any malformed segment,
// tampered byte, or wrong key fails closed with ErrDecryptionFailed.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	parts := strings.Split(ciphertext, ":")
	if len(parts) != cipherFormatSegments {
		return "", domain.ErrDecryptionFailed
	}
	enc := base64.StdEncoding
	nonce, err := enc.DecodeString(parts[0])
	if err != nil || len(nonce) != c.aead.NonceSize() {
		return "", domain.ErrDecryptionFailed
	}
	tag, err := enc.DecodeString(parts[1])
	if err != nil || len(tag) != gcmTagSize {
		return "", domain.ErrDecryptionFailed
	}
	payload, err := enc.DecodeString(parts[2])
	if err != nil {
		return "", domain.ErrDecryptionFailed
	}

	plaintext, err := c.aead.Open(nil, nonce, append(payload, tag...), nil)
	if err != nil {
		return "", domain.ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// Fingerprint returns the SHA-256 hex digest of a token, used as the
// compare-and-swap guard when rotating refresh tokens.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
