package githubapi

import (
	"os"
	"strings"
)

// TokenEnvironmentVariable names the fallback token source.
const TokenEnvironmentVariable = "GITHUB_TOKEN"

// EnvironmentLookup matches os.LookupEnv.
type EnvironmentLookup func(key string) (string, bool)

// ResolveToken returns the explicit token when set, otherwise GITHUB_TOKEN.
// A nil lookup reads the process environment.
func ResolveToken(explicitToken string, lookup EnvironmentLookup) (string, error) {
	if trimmed := strings.TrimSpace(explicitToken); len(trimmed) > 0 {
		return trimmed, nil
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if environmentToken, present := lookup(TokenEnvironmentVariable); present && len(strings.TrimSpace(environmentToken)) > 0 {
		return strings.TrimSpace(environmentToken), nil
	}
	return "", ErrTokenNotProvided
}
