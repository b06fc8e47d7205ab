package service

import (
	"context"
	"errors"
	"fmt"

	jose "github.com/go-jose/go-jose/v4"

	"github.com/andressep95/authz-server/internal/domain"
	"github.com/andressep95/authz-server/internal/repository"
	"github.com/andressep95/authz-server/pkg/hash"
	"github.com/andressep95/authz-server/pkg/keygen"
	"github.com/andressep95/authz-server/pkg/random"
)

const (
	// RequestIDLength is the length of generated request ids.
	RequestIDLength = 8

	// CodeLength is the length of generated authorization codes.
	CodeLength = 8

	// AccessTokenLength is the length of generated access-token strings.
	AccessTokenLength = 32
)

// ResponseTypeCode is the only response type this server issues codes for.
const ResponseTypeCode = "code"

type OAuthService struct {
	clientRepo   repository.ClientRepository
	resourceRepo repository.ResourceRepository
	requestRepo  repository.RequestRepository
	codeRepo     repository.CodeRepository
	tokenRepo    repository.TokenRepository
	keys         keygen.Generator
}

func NewOAuthService(
	clientRepo repository.ClientRepository,
	resourceRepo repository.ResourceRepository,
	requestRepo repository.RequestRepository,
	codeRepo repository.CodeRepository,
	tokenRepo repository.TokenRepository,
	keys keygen.Generator,
) *OAuthService {
	return &OAuthService{
		clientRepo:   clientRepo,
		resourceRepo: resourceRepo,
		requestRepo:  requestRepo,
		codeRepo:     codeRepo,
		tokenRepo:    tokenRepo,
		keys:         keys,
	}
}

// PendingAuthorization is the view handed to the approval page after a
// request has been validated and staged.
type PendingAuthorization struct {
	Client *domain.Client `json:"client"`
	ReqID  string         `json:"reqid"`
	Scope  []string       `json:"scope"`
}

// ApprovalRedirect describes the success redirect issued after approval.
// State is the opaque value echoed back unchanged; empty means it was
// absent on the original request and must stay absent.
type ApprovalRedirect struct {
	RedirectURI string
	Code        string
	State       string
}

// Grant is the one-time result of redeeming an authorization code. The
// private key leaves the server here and is never retained.
type Grant struct {
	AccessToken    string
	AccessTokenKey jose.JSONWebKey // private JWK
	Scope          []string
}

// BeginAuthorization validates an incoming authorization request and stages
// it for user approval. Validation order matters: the client must be known
// before the redirect URI can be trusted, and the redirect URI must be
// registered before any error may be carried on it.
func (s *OAuthService) BeginAuthorization(ctx context.Context, req *domain.AuthorizationRequest) (*PendingAuthorization, error) {
	client, err := s.clientRepo.FindByClientID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownClient
		}
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}

	if !client.HasRedirectURI(req.RedirectURI) {
		return nil, ErrInvalidRedirectURI
	}

	requested := req.RequestedScope()
	if len(domain.ScopeDifference(requested, client.AllowedScope())) > 0 {
		// Client asked for a scope it could never have.
		return nil, ErrInvalidScope
	}

	reqID, err := random.String(RequestIDLength)
	if err != nil {
		return nil, err
	}

	if err := s.requestRepo.Put(ctx, reqID, req); err != nil {
		return nil, fmt.Errorf("failed to stage authorization request: %w", err)
	}

	return &PendingAuthorization{
		Client: client,
		ReqID:  reqID,
		Scope:  requested,
	}, nil
}

// Approve consumes a staged request and, on user approval, issues an
// authorization code. The staged request is removed before anything else is
// checked, so a second post with the same request id fails regardless of
// the outcome of the first.
//
// approvedScope holds the scope items the user actually checked on the
// approval form; items missing from the form are dropped even if
// originally requested. Approval narrows, never widens.
func (s *OAuthService) Approve(ctx context.Context, reqID string, approved bool, approvedScope []string) (*ApprovalRedirect, error) {
	req, err := s.requestRepo.Take(ctx, reqID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoMatchingRequest
		}
		return nil, fmt.Errorf("failed to take authorization request: %w", err)
	}

	if !approved {
		return nil, &RedirectError{RedirectURI: req.RedirectURI, Code: "access_denied"}
	}

	if req.ResponseType != ResponseTypeCode {
		return nil, &RedirectError{RedirectURI: req.RedirectURI, Code: "unsupported_response_type"}
	}

	client, err := s.clientRepo.FindByClientID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// The registration vanished between staging and approval.
			// Registries are static, so this cannot normally happen.
			return nil, ErrUnknownClient
		}
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}

	if len(domain.ScopeDifference(approvedScope, client.AllowedScope())) > 0 {
		return nil, &RedirectError{RedirectURI: req.RedirectURI, Code: "invalid_scope"}
	}

	code, err := random.String(CodeLength)
	if err != nil {
		return nil, err
	}

	authCode := &domain.AuthorizationCode{
		Request: req,
		Scope:   approvedScope,
	}
	if err := s.codeRepo.Put(ctx, code, authCode); err != nil {
		return nil, fmt.Errorf("failed to store authorization code: %w", err)
	}

	return &ApprovalRedirect{
		RedirectURI: req.RedirectURI,
		Code:        code,
		State:       req.State,
	}, nil
}

// AuthenticateClient resolves and authenticates a client at the token
// endpoint. Unknown id and wrong secret both yield ErrInvalidClient; the
// response never reveals which part failed.
func (s *OAuthService) AuthenticateClient(ctx context.Context, clientID, clientSecret string) (*domain.Client, error) {
	client, err := s.clientRepo.FindByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidClient
		}
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}

	ok, err := hash.VerifySecret(clientSecret, client.ClientSecretHash)
	if err != nil || !ok {
		return nil, ErrInvalidClient
	}

	return client, nil
}

// RedeemCode burns an authorization code and mints a PoP token for the
// authenticated client. The code is removed from the store before any
// validation, so a concurrent or replayed redemption finds it gone.
func (s *OAuthService) RedeemCode(ctx context.Context, client *domain.Client, code string) (*Grant, error) {
	authCode, err := s.codeRepo.Take(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidGrant
		}
		return nil, fmt.Errorf("failed to take authorization code: %w", err)
	}

	// Codes are bound to the client that requested them, not to whoever
	// holds the code string.
	if authCode.Request.ClientID != client.ClientID {
		return nil, ErrInvalidGrant
	}

	private, public, err := s.keys.GenerateKeyPair(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token key pair: %w", err)
	}

	accessToken, err := random.String(AccessTokenLength)
	if err != nil {
		return nil, err
	}

	token := &domain.Token{
		AccessToken:    accessToken,
		AccessTokenKey: public,
		ClientID:       client.ClientID,
		Scope:          authCode.Scope,
	}
	if err := s.tokenRepo.Insert(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}

	return &Grant{
		AccessToken:    accessToken,
		AccessTokenKey: private,
		Scope:          authCode.Scope,
	}, nil
}

// AuthenticateResource resolves and authenticates a protected resource for
// introspection, with the same no-detail failure policy as client
// authentication.
func (s *OAuthService) AuthenticateResource(ctx context.Context, resourceID, resourceSecret string) (*domain.ProtectedResource, error) {
	resource, err := s.resourceRepo.FindByResourceID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidResource
		}
		return nil, fmt.Errorf("failed to look up resource: %w", err)
	}

	ok, err := hash.VerifySecret(resourceSecret, resource.ResourceSecretHash)
	if err != nil || !ok {
		return nil, ErrInvalidResource
	}

	return resource, nil
}

// Introspect looks up a token by exact access-token match. An unknown token
// is a negative result, not an error: it returns (nil, nil).
func (s *OAuthService) Introspect(ctx context.Context, accessToken string) (*domain.Token, error) {
	token, err := s.tokenRepo.FindByAccessToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}
	return token, nil
}
