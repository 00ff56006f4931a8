package cli

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/portseal/portseal/fwdlib"
)

// secretSize is a number of random bytes of generated passphrase.
const secretSize = 32

type GenerateKey struct {
	Secret bool `kong:"help='Generate a passphrase instead of raw key and nonce.',short='s'"`

	output io.Writer
}

func (g *GenerateKey) Run(cli *CLI, _ string) error {
	output := g.output
	if output == nil {
		output = os.Stdout
	}

	if g.Secret {
		secret := make([]byte, secretSize)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("cannot generate secret: %w", err)
		}

		fmt.Fprintf(output, "[encryption]\nsecret = %q\n", base64.RawURLEncoding.EncodeToString(secret))

		return nil
	}

	key := make([]byte, fwdlib.KeySize)
	nonce := make([]byte, fwdlib.NonceSize)

	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("cannot generate key: %w", err)
	}

	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("cannot generate nonce: %w", err)
	}

	fmt.Fprintf(output, "[encryption]\nkey = %q\nnonce = %q\n",
		hex.EncodeToString(key), hex.EncodeToString(nonce))

	return nil
}
