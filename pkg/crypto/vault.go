package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

var (
	ErrInvalidKeyLength  = errors.New("encryption key must be exactly 32 bytes for AES-256")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	ErrDecryptionFailed  = errors.New("decryption failed: authentication error")
)

// Vault encrypts and decrypts account secrets with AES-256-GCM under a
// single process-lifetime key. It is stateless and safe for concurrent use.
type Vault struct {
	gcm cipher.AEAD
}

func NewVault(key string) (*Vault, error) {
	if len(key) != 32 {
		return nil, ErrInvalidKeyLength
	}

	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Vault{gcm: gcm}, nil
}

// Encrypt seals plaintext with a random nonce and returns the
// base64-encoded nonce||ciphertext||tag payload.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, v.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := v.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt opens a payload produced by Encrypt. A payload that was not
// produced under this key fails with ErrDecryptionFailed; callers must
// treat that as unrecoverable for the value, not as a retry signal.
func (v *Vault) Decrypt(encoded string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	nonceSize := v.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", ErrInvalidCiphertext
	}

	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := v.gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}

// GenerateKey returns a cryptographically random 32-byte key, useful for
// provisioning the vault config value.
func GenerateKey() (string, error) {
	key := make([]byte, 24)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", err
	}
	// base64 of 24 random bytes is exactly 32 characters
	return base64.StdEncoding.EncodeToString(key), nil
}
