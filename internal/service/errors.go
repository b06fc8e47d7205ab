package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownClient means the authorize call named a client that is not
	// registered. Terminal: the redirect URI is unverified at that point.
	ErrUnknownClient = errors.New("unknown client")

	// ErrInvalidRedirectURI means the supplied redirect URI is not one of
	// the client's registered URIs. Terminal for the same reason.
	ErrInvalidRedirectURI = errors.New("invalid redirect URI")

	// ErrInvalidScope means the requested scope exceeds the client's
	// allowed scope. Carried back on the (trusted) redirect URI.
	ErrInvalidScope = errors.New("invalid scope")

	// ErrNoMatchingRequest means the approval referenced a request id
	// that was never staged or was already consumed.
	ErrNoMatchingRequest = errors.New("no matching authorization request")

	// ErrInvalidClient covers unknown client ids, wrong secrets and
	// ambiguous authentication at the token endpoint, without
	// distinguishing between them.
	ErrInvalidClient = errors.New("invalid client")

	// ErrInvalidResource covers unknown resource ids and wrong secrets at
	// the introspection endpoint.
	ErrInvalidResource = errors.New("invalid resource")

	// ErrInvalidGrant covers unknown, already-redeemed and
	// wrong-client authorization codes.
	ErrInvalidGrant = errors.New("invalid grant")
)

// RedirectError is a protocol failure reported to the client by redirecting
// to its registered redirect URI with an error query parameter, per the
// authorization-code grant.
type RedirectError struct {
	RedirectURI string
	Code        string // wire error code, e.g. "access_denied"
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirect error %q to %s", e.Code, e.RedirectURI)
}
