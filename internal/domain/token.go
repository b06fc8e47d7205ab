package domain

import (
	jose "github.com/go-jose/go-jose/v4"
)

// TokenType is the fixed tag identifying proof-of-possession semantics.
const TokenType = "PoP"

// TokenUser identifies the end user a token was issued on behalf of.
// Unset in the plain authorization-code flow, where approval is the only
// user interaction.
type TokenUser struct {
	Sub               string `json:"sub"`
	PreferredUsername string `json:"preferred_username"`
}

// Token is the persisted record of an issued access token. Only the public
// half of the token's key pair is stored; the private half is returned to
// the client exactly once and never retained.
type Token struct {
	AccessToken    string          `json:"access_token"`
	AccessTokenKey jose.JSONWebKey `json:"access_token_key"` // public JWK
	ClientID       string          `json:"client_id"`
	Scope          []string        `json:"scope"`
	User           *TokenUser      `json:"user,omitempty"`
}
