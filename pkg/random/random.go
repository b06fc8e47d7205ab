package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// String returns a cryptographically random alphanumeric string of the
// given length, used for opaque request ids, authorization codes and
// access-token strings.
func String(length int) (string, error) {
	charsetLen := big.NewInt(int64(len(alphanumeric)))

	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random string: %w", err)
		}
		out[i] = alphanumeric[n.Int64()]
	}

	return string(out), nil
}
