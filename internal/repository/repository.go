package repository

import "errors"

// ErrNotFound is returned by all repositories when a lookup matches nothing.
// Callers must treat it the same as invalid credentials where a secret is
// involved, to avoid identifier enumeration.
var ErrNotFound = errors.New("record not found")
