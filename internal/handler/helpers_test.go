package handler

import (
	"encoding/base64"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasicCredentials(t *testing.T) {
	encode := func(raw string) string {
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
	}

	tests := []struct {
		name   string
		header string
		id     string
		secret string
		ok     bool
	}{
		{
			name:   "plain credentials",
			header: encode("oauth-client-1:oauth-client-secret-1"),
			id:     "oauth-client-1",
			secret: "oauth-client-secret-1",
			ok:     true,
		},
		{
			name:   "percent-encoded credentials",
			header: encode("client%20one:s%3Acret"),
			id:     "client one",
			secret: "s:cret",
			ok:     true,
		},
		{
			name:   "literal plus is preserved",
			header: encode("client+one:sec+ret"),
			id:     "client+one",
			secret: "sec+ret",
			ok:     true,
		},
		{
			name:   "lowercase scheme",
			header: "basic " + base64.StdEncoding.EncodeToString([]byte("a:b")),
			id:     "a",
			secret: "b",
			ok:     true,
		},
		{
			name:   "missing header",
			header: "",
			ok:     false,
		},
		{
			name:   "garbled base64",
			header: "Basic !!!not-base64!!!",
			ok:     true, // present, but yields empty credentials
		},
		{
			name:   "no colon",
			header: encode("justanid"),
			id:     "justanid",
			ok:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, secret, ok := parseBasicCredentials(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.secret, secret)
		})
	}
}

func TestBuildRedirectURL(t *testing.T) {
	t.Run("appends params", func(t *testing.T) {
		got, err := buildRedirectURL("http://localhost:9000/callback", map[string]string{
			"code":  "abc12345",
			"state": "xyz",
		})
		require.NoError(t, err)

		u, err := url.Parse(got)
		require.NoError(t, err)
		assert.Equal(t, "abc12345", u.Query().Get("code"))
		assert.Equal(t, "xyz", u.Query().Get("state"))
	})

	t.Run("preserves existing query and fragment", func(t *testing.T) {
		got, err := buildRedirectURL("http://localhost:9000/callback?keep=1#frag", map[string]string{
			"error": "access_denied",
		})
		require.NoError(t, err)

		u, err := url.Parse(got)
		require.NoError(t, err)
		assert.Equal(t, "1", u.Query().Get("keep"))
		assert.Equal(t, "access_denied", u.Query().Get("error"))
		assert.Equal(t, "frag", u.Fragment)
	})
}
