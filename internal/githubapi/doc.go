// Package githubapi opens pull requests through the GitHub REST API.
//
// Client wraps github.com/google/go-github with a bearer token transport from
// golang.org/x/oauth2 and an optional zap round tripper for verbose HTTP
// diagnostics. Failures are classified as AuthError, APIError or NetworkError.
package githubapi
