package handler

import (
	"errors"
	"log"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/gofiber/fiber/v2"

	"github.com/andressep95/authz-server/internal/domain"
	"github.com/andressep95/authz-server/internal/service"
	"github.com/andressep95/authz-server/pkg/keygen"
)

type OAuthHandler struct {
	oauthService *service.OAuthService
	renderer     PageRenderer
	issuer       string
	audience     string
}

func NewOAuthHandler(
	oauthService *service.OAuthService,
	renderer PageRenderer,
	issuer string,
	audience string,
) *OAuthHandler {
	return &OAuthHandler{
		oauthService: oauthService,
		renderer:     renderer,
		issuer:       issuer,
		audience:     audience,
	}
}

// TokenRequest represents the form-encoded OAuth2 token request
type TokenRequest struct {
	GrantType    string `form:"grant_type"`
	Code         string `form:"code"`          // Authorization code
	ClientID     string `form:"client_id"`     // Body credentials, if not using the header
	ClientSecret string `form:"client_secret"`
	RefreshToken string `form:"refresh_token"` // Echoed back, never issued here
}

// TokenResponse represents the OAuth2 token response for the PoP token
// variant: the private key pair travels to the client exactly once.
type TokenResponse struct {
	AccessToken    string          `json:"access_token"`
	AccessTokenKey jose.JSONWebKey `json:"access_token_key"` // private JWK
	TokenType      string          `json:"token_type"`
	RefreshToken   string          `json:"refresh_token,omitempty"`
	Scope          []string        `json:"scope"`
	Alg            string          `json:"alg"`
}

// IntrospectionResponse represents the introspection result for a token.
// Everything but Active is omitted for unknown tokens.
type IntrospectionResponse struct {
	Active         bool             `json:"active"`
	Issuer         string           `json:"iss,omitempty"`
	Audience       string           `json:"aud,omitempty"`
	Subject        string           `json:"sub,omitempty"`
	Username       string           `json:"username,omitempty"`
	Scope          string           `json:"scope,omitempty"`
	ClientID       string           `json:"client_id,omitempty"`
	AccessTokenKey *jose.JSONWebKey `json:"access_token_key,omitempty"` // public JWK
}

// Authorize validates an authorization request and stages it for approval
// GET /authorize
func (h *OAuthHandler) Authorize(c *fiber.Ctx) error {
	req := &domain.AuthorizationRequest{
		ClientID:     c.Query("client_id"),
		RedirectURI:  c.Query("redirect_uri"),
		Scope:        c.Query("scope"),
		ResponseType: c.Query("response_type"),
		State:        c.Query("state"),
	}

	pending, err := h.oauthService.BeginAuthorization(c.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownClient):
			log.Printf("[OAUTH_HANDLER] Unknown client %s", req.ClientID)
			return h.renderer.Error(c, "Unknown client")
		case errors.Is(err, service.ErrInvalidRedirectURI):
			log.Printf("[OAUTH_HANDLER] Mismatched redirect URI for client %s, got %s", req.ClientID, req.RedirectURI)
			return h.renderer.Error(c, "Invalid redirect URI")
		case errors.Is(err, service.ErrInvalidScope):
			// The redirect URI was verified before the scope check, so
			// it is safe to carry the error on it.
			return redirectWithParams(c, req.RedirectURI, map[string]string{"error": "invalid_scope"})
		}
		log.Printf("[OAUTH_HANDLER] Authorization failed: %v", err)
		return fiber.ErrInternalServerError
	}

	return h.renderer.Approval(c, pending)
}

// Approve consumes a staged request together with the user's decision
// POST /approve
func (h *OAuthHandler) Approve(c *fiber.Ctx) error {
	reqID := c.FormValue("reqid")
	approved := c.FormValue("approve") != ""

	result, err := h.oauthService.Approve(c.Context(), reqID, approved, scopesFromForm(c))
	if err != nil {
		var redirectErr *service.RedirectError
		switch {
		case errors.As(err, &redirectErr):
			return redirectWithParams(c, redirectErr.RedirectURI, map[string]string{"error": redirectErr.Code})
		case errors.Is(err, service.ErrNoMatchingRequest):
			log.Printf("[OAUTH_HANDLER] No matching authorization request for reqid %s", reqID)
			return h.renderer.Error(c, "No matching authorization request")
		case errors.Is(err, service.ErrUnknownClient):
			log.Printf("[OAUTH_HANDLER] Unknown client on approval of reqid %s", reqID)
			return h.renderer.Error(c, "Unknown client")
		}
		log.Printf("[OAUTH_HANDLER] Approval failed: %v", err)
		return fiber.ErrInternalServerError
	}

	params := map[string]string{"code": result.Code}
	if result.State != "" {
		// Absent state stays absent; it is never invented here.
		params["state"] = result.State
	}
	return redirectWithParams(c, result.RedirectURI, params)
}

// Token authenticates the client and exchanges an authorization code for a
// PoP token
// POST /token
func (h *OAuthHandler) Token(c *fiber.Ctx) error {
	var req TokenRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("[OAUTH_HANDLER] Body parser error: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid_request",
		})
	}

	clientID, clientSecret, hasBasic := parseBasicCredentials(c.Get(fiber.HeaderAuthorization))
	if req.ClientID != "" {
		if hasBasic {
			// Credentials in both the header and the body: ambiguous
			// authentication is itself an error, not a preference rule.
			log.Printf("[OAUTH_HANDLER] Client attempted to authenticate with multiple methods")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid_client",
			})
		}
		clientID = req.ClientID
		clientSecret = req.ClientSecret
	}

	client, err := h.oauthService.AuthenticateClient(c.Context(), clientID, clientSecret)
	if err != nil {
		if errors.Is(err, service.ErrInvalidClient) {
			log.Printf("[OAUTH_HANDLER] Failed client authentication for %s", clientID)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid_client",
			})
		}
		log.Printf("[OAUTH_HANDLER] Client authentication failed: %v", err)
		return fiber.ErrInternalServerError
	}

	if req.GrantType != "authorization_code" {
		log.Printf("[OAUTH_HANDLER] Unknown grant type %s", req.GrantType)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unsupported_grant_type",
		})
	}

	grant, err := h.oauthService.RedeemCode(c.Context(), client, req.Code)
	if err != nil {
		if errors.Is(err, service.ErrInvalidGrant) {
			log.Printf("[OAUTH_HANDLER] Invalid grant for code %s", req.Code)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid_grant",
			})
		}
		log.Printf("[OAUTH_HANDLER] Code exchange failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "server_error",
		})
	}

	log.Printf("[OAUTH_HANDLER] Issued tokens for code %s", req.Code)

	return c.Status(fiber.StatusOK).JSON(TokenResponse{
		AccessToken:    grant.AccessToken,
		AccessTokenKey: grant.AccessTokenKey,
		TokenType:      domain.TokenType,
		RefreshToken:   req.RefreshToken,
		Scope:          grant.Scope,
		Alg:            keygen.Alg,
	})
}

// Introspect authenticates a protected resource and reports a token's
// status and claims
// POST /introspect
func (h *OAuthHandler) Introspect(c *fiber.Ctx) error {
	resourceID, resourceSecret, ok := parseBasicCredentials(c.Get(fiber.HeaderAuthorization))
	if !ok {
		// Empty body: resources get the status code and nothing else.
		return c.Status(fiber.StatusUnauthorized).Send(nil)
	}

	if _, err := h.oauthService.AuthenticateResource(c.Context(), resourceID, resourceSecret); err != nil {
		if errors.Is(err, service.ErrInvalidResource) {
			log.Printf("[OAUTH_HANDLER] Failed resource authentication for %s", resourceID)
			return c.Status(fiber.StatusUnauthorized).Send(nil)
		}
		log.Printf("[OAUTH_HANDLER] Resource authentication failed: %v", err)
		return fiber.ErrInternalServerError
	}

	inToken := c.FormValue("token")
	log.Printf("[OAUTH_HANDLER] Introspecting token %s", inToken)

	token, err := h.oauthService.Introspect(c.Context(), inToken)
	if err != nil {
		log.Printf("[OAUTH_HANDLER] Token lookup failed: %v", err)
		return fiber.ErrInternalServerError
	}

	if token == nil {
		log.Printf("[OAUTH_HANDLER] No matching token was found")
		return c.Status(fiber.StatusOK).JSON(IntrospectionResponse{Active: false})
	}

	resp := IntrospectionResponse{
		Active:         true,
		Issuer:         h.issuer,
		Audience:       h.audience,
		Scope:          domain.JoinScope(token.Scope),
		ClientID:       token.ClientID,
		AccessTokenKey: &token.AccessTokenKey,
	}
	if token.User != nil {
		resp.Subject = token.User.Sub
		resp.Username = token.User.PreferredUsername
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}
