package redisstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andressep95/authz-server/internal/domain"
	"github.com/andressep95/authz-server/internal/repository"
	"github.com/andressep95/authz-server/pkg/keygen"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestRequestRepositoryTakeIsSingleUse(t *testing.T) {
	repo := NewRequestRepository(newTestRedis(t))
	ctx := context.Background()

	staged := &domain.AuthorizationRequest{
		ClientID:     "oauth-client-1",
		RedirectURI:  "http://localhost:9000/callback",
		Scope:        "foo",
		ResponseType: "code",
		State:        "xyz",
	}
	require.NoError(t, repo.Put(ctx, "reqid1", staged))

	got, err := repo.Take(ctx, "reqid1")
	require.NoError(t, err)
	assert.Equal(t, staged, got)

	_, err = repo.Take(ctx, "reqid1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCodeRepositoryTakeIsSingleUse(t *testing.T) {
	repo := NewCodeRepository(newTestRedis(t))
	ctx := context.Background()

	authCode := &domain.AuthorizationCode{
		Request: &domain.AuthorizationRequest{ClientID: "oauth-client-1", ResponseType: "code"},
		Scope:   []string{"foo", "bar"},
	}
	require.NoError(t, repo.Put(ctx, "abc12345", authCode))

	got, err := repo.Take(ctx, "abc12345")
	require.NoError(t, err)
	assert.Equal(t, authCode, got)

	_, err = repo.Take(ctx, "abc12345")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTokenRepository(t *testing.T) {
	repo := NewTokenRepository(newTestRedis(t))
	ctx := context.Background()

	_, public, err := keygen.NewRSAGeneratorWithBits(1024).GenerateKeyPair(ctx)
	require.NoError(t, err)

	token := &domain.Token{
		AccessToken:    "tok1",
		AccessTokenKey: public,
		ClientID:       "oauth-client-1",
		Scope:          []string{"foo"},
	}
	require.NoError(t, repo.Insert(ctx, token))

	got, err := repo.FindByAccessToken(ctx, "tok1")
	require.NoError(t, err)
	assert.Equal(t, token.AccessToken, got.AccessToken)
	assert.Equal(t, token.ClientID, got.ClientID)
	assert.Equal(t, token.Scope, got.Scope)
	assert.Equal(t, public.KeyID, got.AccessTokenKey.KeyID)
	assert.True(t, got.AccessTokenKey.IsPublic())
	assert.Nil(t, got.User)

	_, err = repo.FindByAccessToken(ctx, "never-issued")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.Clear(ctx))
	_, err = repo.FindByAccessToken(ctx, "tok1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTokenRepositoryClearEmpty(t *testing.T) {
	repo := NewTokenRepository(newTestRedis(t))
	require.NoError(t, repo.Clear(context.Background()))
}
