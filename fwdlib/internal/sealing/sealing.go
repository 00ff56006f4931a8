// Package sealing implements an encryption context which wraps payloads
// of encrypted sides of a forwarding rule.
//
// Context is an AES-256-GCM AEAD with a key and a nonce which are fixed
// for a lifetime of the process. This means that identical plaintexts
// produce identical ciphertexts and there is no replay protection. Wire
// compatibility with already deployed peers depends on this behaviour.
package sealing

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is a size of AES-256 key.
	KeySize = 32

	// NonceSize is a size of GCM nonce.
	NonceSize = 12

	// TagSize is a size of GCM authentication tag. Every ciphertext is
	// exactly TagSize bytes longer than its plaintext.
	TagSize = 16

	// HeaderSize is a size of big-endian length prefix of the frame.
	HeaderSize = 4

	hkdfInfo = "portseal frame key"
)

var (
	// DefaultKey is a key every peer uses unless configured otherwise.
	DefaultKey = [KeySize]byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10,
		0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17, 0x18,
		0x19, 0x1a, 0x1b, 0x1c, 0x1d, 0x1e, 0x1f, 0x20,
	}

	// DefaultNonce is a nonce every peer uses unless configured otherwise.
	DefaultNonce = [NonceSize]byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06,
		0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c,
	}

	ErrEncryption = errors.New("encryption failed")
	ErrDecryption = errors.New("decryption failed")
)

// Context is an immutable AEAD wrapper. It is safe to share between
// goroutines.
type Context struct {
	aead  cipher.AEAD
	nonce [NonceSize]byte
}

// Encrypt seals plaintext and returns ciphertext with appended tag.
func (c *Context) Encrypt(plaintext []byte) ([]byte, error) {
	return c.seal(make([]byte, 0, len(plaintext)+TagSize), plaintext), nil
}

// Decrypt opens ciphertext with appended tag. On any failure plaintext is
// nil: forged or corrupted input never leaks out.
func (c *Context) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < TagSize {
		return nil, fmt.Errorf("%w: ciphertext is %d bytes, shorter than tag", ErrDecryption, len(ciphertext))
	}

	plaintext, err := c.aead.Open(nil, c.nonce[:], ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryption, err)
	}

	return plaintext, nil
}

// EncryptAndFrame seals plaintext and prepends a 4-byte big-endian
// length of the sealed payload. The result is a complete frame.
func (c *Context) EncryptAndFrame(plaintext []byte) ([]byte, error) {
	size := len(plaintext) + TagSize
	if uint64(size) > uint64(^uint32(0)) {
		return nil, fmt.Errorf("%w: payload of %d bytes does not fit into frame", ErrEncryption, len(plaintext))
	}

	buf := make([]byte, HeaderSize, HeaderSize+size)
	binary.BigEndian.PutUint32(buf, uint32(size))

	return c.seal(buf, plaintext), nil
}

func (c *Context) seal(dst, plaintext []byte) []byte {
	return c.aead.Seal(dst, c.nonce[:], plaintext, nil)
}

// New builds a context from raw key and nonce.
func New(key, nonce []byte) (*Context, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("incorrect key size %d, expected %d", len(key), KeySize)
	}

	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("incorrect nonce size %d, expected %d", len(nonce), NonceSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cannot build aes cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cannot build gcm: %w", err)
	}

	rv := &Context{aead: aead}
	copy(rv.nonce[:], nonce)

	return rv, nil
}

// NewDefault builds a context with DefaultKey and DefaultNonce.
func NewDefault() *Context {
	ctx, err := New(DefaultKey[:], DefaultNonce[:])
	if err != nil {
		panic(err)
	}

	return ctx
}

// NewFromSecret derives key and nonce from a passphrase with
// HKDF-SHA256. Both sides of a link have to use the same secret.
func NewFromSecret(secret string) (*Context, error) {
	if secret == "" {
		return nil, errors.New("secret is empty")
	}

	material := make([]byte, KeySize+NonceSize)
	reader := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo))

	if _, err := io.ReadFull(reader, material); err != nil {
		return nil, fmt.Errorf("cannot derive key material: %w", err)
	}

	return New(material[:KeySize], material[KeySize:])
}
