package domain

// Client is a statically registered OAuth client.
// Registrations are immutable for the lifetime of the process.
type Client struct {
	ClientID         string   `json:"client_id" validate:"required"`
	ClientSecretHash string   `json:"-" validate:"required"`
	RedirectURIs     []string `json:"redirect_uris" validate:"required,min=1,dive,uri"`
	Scope            string   `json:"scope"` // space-delimited allowed scopes
}

// HasRedirectURI reports whether uri is exactly one of the registered
// redirect URIs. Exact string match only; no normalization.
func (c *Client) HasRedirectURI(uri string) bool {
	for _, registered := range c.RedirectURIs {
		if registered == uri {
			return true
		}
	}
	return false
}

// AllowedScope returns the client's allowed scope as a list.
func (c *Client) AllowedScope() []string {
	return SplitScope(c.Scope)
}
