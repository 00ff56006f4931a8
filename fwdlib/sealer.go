package fwdlib

import (
	"fmt"

	"github.com/portseal/portseal/fwdlib/internal/sealing"
)

const (
	// KeySize is a size of the encryption key in bytes.
	KeySize = sealing.KeySize

	// NonceSize is a size of the encryption nonce in bytes.
	NonceSize = sealing.NonceSize
)

// Sealer encrypts payloads of encrypted sides. Implementations have to be
// safe for concurrent use.
type Sealer interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
	EncryptAndFrame(plaintext []byte) ([]byte, error)
}

// NewSealer makes AES-256-GCM sealer with a given key and nonce.
func NewSealer(key, nonce []byte) (Sealer, error) {
	ctx, err := sealing.New(key, nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return ctx, nil
}

// NewSealerFromSecret derives both key and nonce from a passphrase. Both
// ends of an encrypted link have to use the same passphrase.
func NewSealerFromSecret(secret string) (Sealer, error) {
	ctx, err := sealing.NewFromSecret(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return ctx, nil
}

// NewDefaultSealer makes a sealer with a well-known key and nonce which are
// used by every peer unless configured otherwise.
func NewDefaultSealer() Sealer {
	return sealing.NewDefault()
}
