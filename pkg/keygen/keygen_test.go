package keygen

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyPair(t *testing.T) {
	gen := NewRSAGeneratorWithBits(1024)

	private, public, err := gen.GenerateKeyPair(context.Background())
	require.NoError(t, err)

	assert.False(t, private.IsPublic())
	assert.True(t, public.IsPublic())
	assert.Equal(t, private.KeyID, public.KeyID)
	assert.Equal(t, Alg, private.Algorithm)
	assert.Equal(t, Alg, public.Algorithm)
}

func TestGenerateKeyPairFreshPerCall(t *testing.T) {
	gen := NewRSAGeneratorWithBits(1024)
	ctx := context.Background()

	_, first, err := gen.GenerateKeyPair(ctx)
	require.NoError(t, err)
	_, second, err := gen.GenerateKeyPair(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, first.KeyID, second.KeyID)
}

func TestPublicFormCarriesNoPrivateMaterial(t *testing.T) {
	gen := NewRSAGeneratorWithBits(1024)

	private, public, err := gen.GenerateKeyPair(context.Background())
	require.NoError(t, err)

	privateJSON, err := json.Marshal(private)
	require.NoError(t, err)
	publicJSON, err := json.Marshal(public)
	require.NoError(t, err)

	var privateFields, publicFields map[string]any
	require.NoError(t, json.Unmarshal(privateJSON, &privateFields))
	require.NoError(t, json.Unmarshal(publicJSON, &publicFields))

	// The private exponent travels to the client once; the persisted
	// public form must never carry it.
	assert.Contains(t, privateFields, "d")
	assert.NotContains(t, publicFields, "d")
	assert.Equal(t, "RSA", publicFields["kty"])
}

func TestGenerateKeyPairCancelledContext(t *testing.T) {
	gen := NewRSAGenerator()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := gen.GenerateKeyPair(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
