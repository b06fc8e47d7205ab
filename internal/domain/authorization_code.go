package domain

// AuthorizationCode ties an issued code back to the authorization request it
// was granted for, together with the scope the user actually approved. The
// granted scope may be narrower than the requested scope, never broader than
// the client's allowed scope.
//
// Codes are single-use: the code store deletes the record at the instant it
// is read during token exchange, before any further validation.
type AuthorizationCode struct {
	Request *AuthorizationRequest `json:"request"`
	Scope   []string              `json:"scope"`
}
