package keygen

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"fmt"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/google/uuid"
)

// Generator produces a fresh asymmetric key pair for every issued token.
// The private form is handed to the client exactly once; the server keeps
// only the public form.
type Generator interface {
	GenerateKeyPair(ctx context.Context) (private, public jose.JSONWebKey, err error)
}

const (
	// DefaultBits is the RSA modulus size for generated token keys.
	DefaultBits = 2048

	// Alg is the signing algorithm advertised alongside generated keys.
	Alg = "RS256"
)

// RSAGenerator generates RSA key pairs in JWK form.
type RSAGenerator struct {
	bits int
}

func NewRSAGenerator() *RSAGenerator {
	return &RSAGenerator{bits: DefaultBits}
}

// NewRSAGeneratorWithBits is intended for tests that trade key strength for
// speed. Production callers should use NewRSAGenerator.
func NewRSAGeneratorWithBits(bits int) *RSAGenerator {
	return &RSAGenerator{bits: bits}
}

func (g *RSAGenerator) GenerateKeyPair(ctx context.Context) (jose.JSONWebKey, jose.JSONWebKey, error) {
	if err := ctx.Err(); err != nil {
		return jose.JSONWebKey{}, jose.JSONWebKey{}, err
	}

	key, err := rsa.GenerateKey(rand.Reader, g.bits)
	if err != nil {
		return jose.JSONWebKey{}, jose.JSONWebKey{}, fmt.Errorf("failed to generate RSA key pair: %w", err)
	}

	kid := uuid.New().String()

	private := jose.JSONWebKey{
		Key:       key,
		KeyID:     kid,
		Algorithm: Alg,
		Use:       "sig",
	}
	public := jose.JSONWebKey{
		Key:       &key.PublicKey,
		KeyID:     kid,
		Algorithm: Alg,
		Use:       "sig",
	}

	return private, public, nil
}
