package handler

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const basicPrefix = "Basic "

// parseBasicCredentials splits an HTTP Basic Authorization header into its
// id and secret halves. Both halves are percent-decoded after the base64
// decoding, matching how clients encode reserved characters into the
// header. ok reports whether a header was present at all; a present but
// garbled header yields empty credentials that fail authentication
// downstream.
func parseBasicCredentials(header string) (id, secret string, ok bool) {
	if header == "" {
		return "", "", false
	}

	encoded := header
	if len(header) >= len(basicPrefix) && strings.EqualFold(header[:len(basicPrefix)], basicPrefix) {
		encoded = header[len(basicPrefix):]
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", true
	}

	id, secret, _ = strings.Cut(string(decoded), ":")
	// PathUnescape decodes %XX sequences only; a literal "+" is not a
	// space in these credentials.
	if unescaped, err := url.PathUnescape(id); err == nil {
		id = unescaped
	}
	if unescaped, err := url.PathUnescape(secret); err == nil {
		secret = unescaped
	}

	return id, secret, true
}

// buildRedirectURL appends params to the base URI's query, preserving any
// query and fragment already present on it.
func buildRedirectURL(base string, params map[string]string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("failed to parse redirect URI: %w", err)
	}

	q := u.Query()
	for key, value := range params {
		q.Set(key, value)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func redirectWithParams(c *fiber.Ctx, base string, params map[string]string) error {
	target, err := buildRedirectURL(base, params)
	if err != nil {
		return err
	}
	return c.Redirect(target, fiber.StatusFound)
}

// scopesFromForm collects the names of the scope_<name> fields the user
// checked on the approval form. Scope items not present in the form are
// dropped even if originally requested.
func scopesFromForm(c *fiber.Ctx) []string {
	var scope []string
	c.Request().PostArgs().VisitAll(func(key, _ []byte) {
		if name, found := strings.CutPrefix(string(key), "scope_"); found {
			scope = append(scope, name)
		}
	})
	return scope
}
