package domain

// AuthorizationRequest captures the query parameters of an /authorize call
// staged for user approval. It is keyed in the request store by an opaque
// request id and is consumed in a single read during approval.
type AuthorizationRequest struct {
	ClientID     string `json:"client_id"`
	RedirectURI  string `json:"redirect_uri"`
	Scope        string `json:"scope,omitempty"` // space-delimited, as requested
	ResponseType string `json:"response_type"`
	State        string `json:"state,omitempty"`
}

// RequestedScope returns the requested scope as a list.
func (r *AuthorizationRequest) RequestedScope() []string {
	return SplitScope(r.Scope)
}
