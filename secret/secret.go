// Package secret generates random credentials and PEM key pairs from
// named algorithm presets. All randomness flows through the source
// given to NewGenerator, never a hidden global, so tests can supply a
// deterministic reader.
package secret

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"
)

// Algorithm names a key-pair preset.
type Algorithm string

const (
	RSA2048 Algorithm = "rsa2048"
	RSA4096 Algorithm = "rsa4096"
	ECP256  Algorithm = "ec-p256"
	ECP384  Algorithm = "ec-p384"
	Ed25519 Algorithm = "ed25519"
)

// KeyPair holds one generated key pair in textual form. PrivateKey is
// PKCS#8 PEM, PublicKey is PKIX PEM, AuthorizedKey is the OpenSSH
// authorized_keys line for the public key.
type KeyPair struct {
	Algorithm     string `json:"algorithm"`
	PublicKey     string `json:"publicKey"`
	PrivateKey    string `json:"privateKey"`
	AuthorizedKey string `json:"authorizedKey"`
}

// Generator produces secrets from a single randomness source.
type Generator struct {
	rand io.Reader
}

// NewGenerator returns a Generator reading randomness from r. A nil r
// selects crypto/rand.
func NewGenerator(r io.Reader) *Generator {
	if r == nil {
		r = rand.Reader
	}
	return &Generator{rand: r}
}

// Hex returns n random bytes in lowercase hexadecimal.
func (g *Generator) Hex(n int) (string, error) {
	b, err := g.bytes(n)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Base64 returns n random bytes in unpadded URL-safe base64.
func (g *Generator) Base64(n int) (string, error) {
	b, err := g.bytes(n)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Alphanumeric returns a string of n characters drawn uniformly from
// [A-Za-z0-9]. Bytes outside the largest multiple of the charset size
// are rejected and redrawn to avoid modulo bias.
func (g *Generator) Alphanumeric(n int) (string, error) {
	if n < 0 {
		return "", fmt.Errorf("secret: negative length %d", n)
	}
	const limit = 248 // 4 * len(alphanumeric)
	var b strings.Builder
	b.Grow(n)
	buf := make([]byte, 1)
	for b.Len() < n {
		if _, err := io.ReadFull(g.rand, buf); err != nil {
			return "", fmt.Errorf("secret: reading randomness: %w", err)
		}
		if buf[0] >= limit {
			continue
		}
		b.WriteByte(alphanumeric[int(buf[0])%len(alphanumeric)])
	}
	return b.String(), nil
}

// UUID returns a random (version 4) UUID string.
func (g *Generator) UUID() (string, error) {
	u, err := uuid.NewRandomFromReader(g.rand)
	if err != nil {
		return "", fmt.Errorf("secret: generating uuid: %w", err)
	}
	return u.String(), nil
}

// KeyPair generates a key pair for the named preset.
func (g *Generator) KeyPair(alg Algorithm) (*KeyPair, error) {
	var (
		signer crypto.Signer
		err    error
	)
	switch alg {
	case RSA2048:
		signer, err = rsa.GenerateKey(g.rand, 2048)
	case RSA4096:
		signer, err = rsa.GenerateKey(g.rand, 4096)
	case ECP256:
		signer, err = ecdsa.GenerateKey(elliptic.P256(), g.rand)
	case ECP384:
		signer, err = ecdsa.GenerateKey(elliptic.P384(), g.rand)
	case Ed25519:
		_, signer, err = ed25519.GenerateKey(g.rand)
	default:
		return nil, fmt.Errorf("secret: unknown algorithm %q", alg)
	}
	if err != nil {
		return nil, fmt.Errorf("secret: generating %s key: %w", alg, err)
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(signer)
	if err != nil {
		return nil, fmt.Errorf("secret: marshaling private key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(signer.Public())
	if err != nil {
		return nil, fmt.Errorf("secret: marshaling public key: %w", err)
	}
	sshPub, err := ssh.NewPublicKey(signer.Public())
	if err != nil {
		return nil, fmt.Errorf("secret: converting public key: %w", err)
	}

	return &KeyPair{
		Algorithm:     string(alg),
		PublicKey:     string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})),
		PrivateKey:    string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})),
		AuthorizedKey: strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub))),
	}, nil
}

func (g *Generator) bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("secret: negative length %d", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(g.rand, b); err != nil {
		return nil, fmt.Errorf("secret: reading randomness: %w", err)
	}
	return b, nil
}
