package domain

import "strings"

// SplitScope splits a space-delimited scope string into its items.
// An empty string yields nil, not a single empty item.
func SplitScope(scope string) []string {
	if scope == "" {
		return nil
	}
	return strings.Split(scope, " ")
}

// JoinScope joins scope items back into the space-delimited wire form.
func JoinScope(scope []string) string {
	return strings.Join(scope, " ")
}

// ScopeDifference returns the items of requested that are not in allowed.
// A non-empty result means the requested scope exceeds what is allowed.
func ScopeDifference(requested, allowed []string) []string {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, s := range allowed {
		allowedSet[s] = struct{}{}
	}

	var diff []string
	for _, s := range requested {
		if _, ok := allowedSet[s]; !ok {
			diff = append(diff, s)
		}
	}
	return diff
}
