package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andressep95/authz-server/internal/domain"
	"github.com/andressep95/authz-server/internal/repository/memory"
	"github.com/andressep95/authz-server/pkg/hash"
	"github.com/andressep95/authz-server/pkg/keygen"
)

var testHashConfig = hash.Argon2Config{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func newTestService(t *testing.T) *OAuthService {
	t.Helper()

	clientHash, err := hash.HashSecretWithConfig("oauth-client-secret-1", testHashConfig)
	require.NoError(t, err)
	otherClientHash, err := hash.HashSecretWithConfig("oauth-client-secret-2", testHashConfig)
	require.NoError(t, err)
	resourceHash, err := hash.HashSecretWithConfig("protected-resource-secret-1", testHashConfig)
	require.NoError(t, err)

	clientRepo := memory.NewClientRepository([]domain.Client{
		{
			ClientID:         "oauth-client-1",
			ClientSecretHash: clientHash,
			RedirectURIs:     []string{"http://localhost:9000/callback"},
			Scope:            "foo bar",
		},
		{
			ClientID:         "oauth-client-2",
			ClientSecretHash: otherClientHash,
			RedirectURIs:     []string{"http://localhost:9000/callback"},
			Scope:            "foo",
		},
	})
	resourceRepo := memory.NewResourceRepository([]domain.ProtectedResource{
		{ResourceID: "protected-resource-1", ResourceSecretHash: resourceHash},
	})

	return NewOAuthService(
		clientRepo,
		resourceRepo,
		memory.NewRequestRepository(),
		memory.NewCodeRepository(),
		memory.NewTokenRepository(),
		keygen.NewRSAGeneratorWithBits(1024),
	)
}

func authRequest() *domain.AuthorizationRequest {
	return &domain.AuthorizationRequest{
		ClientID:     "oauth-client-1",
		RedirectURI:  "http://localhost:9000/callback",
		Scope:        "foo",
		ResponseType: "code",
		State:        "xyz",
	}
}

func TestBeginAuthorization(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*domain.AuthorizationRequest)
		wantErr error
	}{
		{name: "valid request", mutate: func(r *domain.AuthorizationRequest) {}},
		{
			name:    "unknown client",
			mutate:  func(r *domain.AuthorizationRequest) { r.ClientID = "nope" },
			wantErr: ErrUnknownClient,
		},
		{
			name:    "unregistered redirect URI",
			mutate:  func(r *domain.AuthorizationRequest) { r.RedirectURI = "http://evil.example/callback" },
			wantErr: ErrInvalidRedirectURI,
		},
		{
			name:    "scope exceeds allowed",
			mutate:  func(r *domain.AuthorizationRequest) { r.Scope = "foo bar baz" },
			wantErr: ErrInvalidScope,
		},
		{name: "empty scope", mutate: func(r *domain.AuthorizationRequest) { r.Scope = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t)
			req := authRequest()
			tt.mutate(req)

			pending, err := svc.BeginAuthorization(ctx, req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "oauth-client-1", pending.Client.ClientID)
			assert.Len(t, pending.ReqID, RequestIDLength)
			assert.Equal(t, req.RequestedScope(), pending.Scope)
		})
	}
}

func TestBeginAuthorizationValidatesClientBeforeRedirectURI(t *testing.T) {
	svc := newTestService(t)

	req := authRequest()
	req.ClientID = "nope"
	req.RedirectURI = "http://evil.example/callback"

	_, err := svc.BeginAuthorization(context.Background(), req)
	assert.ErrorIs(t, err, ErrUnknownClient)
}

func stage(t *testing.T, svc *OAuthService, req *domain.AuthorizationRequest) string {
	t.Helper()
	pending, err := svc.BeginAuthorization(context.Background(), req)
	require.NoError(t, err)
	return pending.ReqID
}

func TestApproveIssuesCode(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	reqID := stage(t, svc, authRequest())

	result, err := svc.Approve(ctx, reqID, true, []string{"foo"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/callback", result.RedirectURI)
	assert.Len(t, result.Code, CodeLength)
	assert.Equal(t, "xyz", result.State)
}

func TestApproveConsumesRequestID(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	reqID := stage(t, svc, authRequest())

	_, err := svc.Approve(ctx, reqID, false, nil)
	var redirectErr *RedirectError
	require.ErrorAs(t, err, &redirectErr)
	assert.Equal(t, "access_denied", redirectErr.Code)

	// Replaying the approval form finds no staged request, approve or not.
	_, err = svc.Approve(ctx, reqID, true, []string{"foo"})
	assert.ErrorIs(t, err, ErrNoMatchingRequest)
}

func TestApproveUnknownRequestID(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Approve(context.Background(), "missing1", true, []string{"foo"})
	assert.ErrorIs(t, err, ErrNoMatchingRequest)
}

func TestApproveUnsupportedResponseType(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	req := authRequest()
	req.ResponseType = "token"
	reqID := stage(t, svc, req)

	_, err := svc.Approve(ctx, reqID, true, []string{"foo"})
	var redirectErr *RedirectError
	require.ErrorAs(t, err, &redirectErr)
	assert.Equal(t, "unsupported_response_type", redirectErr.Code)
	assert.Equal(t, "http://localhost:9000/callback", redirectErr.RedirectURI)
}

func TestApproveRejectsWidenedScope(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	reqID := stage(t, svc, authRequest())

	// A tampered form cannot grant a scope the client is not allowed.
	_, err := svc.Approve(ctx, reqID, true, []string{"foo", "baz"})
	var redirectErr *RedirectError
	require.ErrorAs(t, err, &redirectErr)
	assert.Equal(t, "invalid_scope", redirectErr.Code)
}

func TestApproveNarrowsScope(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	req := authRequest()
	req.Scope = "foo bar"
	reqID := stage(t, svc, req)

	result, err := svc.Approve(ctx, reqID, true, []string{"foo"})
	require.NoError(t, err)

	client, err := svc.AuthenticateClient(ctx, "oauth-client-1", "oauth-client-secret-1")
	require.NoError(t, err)

	grant, err := svc.RedeemCode(ctx, client, result.Code)
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, grant.Scope)
}

func TestAuthenticateClient(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	client, err := svc.AuthenticateClient(ctx, "oauth-client-1", "oauth-client-secret-1")
	require.NoError(t, err)
	assert.Equal(t, "oauth-client-1", client.ClientID)

	_, err = svc.AuthenticateClient(ctx, "oauth-client-1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidClient)

	_, err = svc.AuthenticateClient(ctx, "nope", "oauth-client-secret-1")
	assert.ErrorIs(t, err, ErrInvalidClient)
}

func issueCode(t *testing.T, svc *OAuthService, scope string, approved []string) string {
	t.Helper()
	req := authRequest()
	req.Scope = scope
	reqID := stage(t, svc, req)
	result, err := svc.Approve(context.Background(), reqID, true, approved)
	require.NoError(t, err)
	return result.Code
}

func TestRedeemCode(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	code := issueCode(t, svc, "foo", []string{"foo"})

	client, err := svc.AuthenticateClient(ctx, "oauth-client-1", "oauth-client-secret-1")
	require.NoError(t, err)

	grant, err := svc.RedeemCode(ctx, client, code)
	require.NoError(t, err)
	assert.Len(t, grant.AccessToken, AccessTokenLength)
	assert.False(t, grant.AccessTokenKey.IsPublic())
	assert.Equal(t, []string{"foo"}, grant.Scope)

	// Only the public half is persisted.
	token, err := svc.Introspect(ctx, grant.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.True(t, token.AccessTokenKey.IsPublic())
	assert.Equal(t, grant.AccessTokenKey.KeyID, token.AccessTokenKey.KeyID)
	assert.Equal(t, "oauth-client-1", token.ClientID)
}

func TestRedeemCodeIsSingleUse(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	code := issueCode(t, svc, "foo", []string{"foo"})

	client, err := svc.AuthenticateClient(ctx, "oauth-client-1", "oauth-client-secret-1")
	require.NoError(t, err)

	_, err = svc.RedeemCode(ctx, client, code)
	require.NoError(t, err)

	_, err = svc.RedeemCode(ctx, client, code)
	assert.ErrorIs(t, err, ErrInvalidGrant)
}

func TestRedeemCodeBoundToClient(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	code := issueCode(t, svc, "foo", []string{"foo"})

	// The code string alone is not enough; it belongs to oauth-client-1.
	other, err := svc.AuthenticateClient(ctx, "oauth-client-2", "oauth-client-secret-2")
	require.NoError(t, err)

	_, err = svc.RedeemCode(ctx, other, code)
	assert.ErrorIs(t, err, ErrInvalidGrant)

	// The failed attempt burned the code for the rightful owner too.
	owner, err := svc.AuthenticateClient(ctx, "oauth-client-1", "oauth-client-secret-1")
	require.NoError(t, err)
	_, err = svc.RedeemCode(ctx, owner, code)
	assert.ErrorIs(t, err, ErrInvalidGrant)
}

func TestRedeemCodeConcurrent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	code := issueCode(t, svc, "foo", []string{"foo"})

	client, err := svc.AuthenticateClient(ctx, "oauth-client-1", "oauth-client-secret-1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RedeemCode(ctx, client, code)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, invalidGrants int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		require.ErrorIs(t, err, ErrInvalidGrant)
		invalidGrants++
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, invalidGrants)
}

func TestAuthenticateResource(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	resource, err := svc.AuthenticateResource(ctx, "protected-resource-1", "protected-resource-secret-1")
	require.NoError(t, err)
	assert.Equal(t, "protected-resource-1", resource.ResourceID)

	_, err = svc.AuthenticateResource(ctx, "protected-resource-1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidResource)

	_, err = svc.AuthenticateResource(ctx, "nope", "protected-resource-secret-1")
	assert.ErrorIs(t, err, ErrInvalidResource)
}

func TestIntrospectUnknownToken(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Introspect(context.Background(), "never-issued")
	require.NoError(t, err)
	assert.Nil(t, token)
}
