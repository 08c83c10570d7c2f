package githubapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v81/github"
)

const (
	apiErrorTemplateConstant          = "Failed to create PR: %d %s"
	authErrorTemplateConstant         = "GitHub authentication failed: %d %s"
	networkErrorTemplateConstant      = "GitHub request failed: %v"
	errorDetailsSeparatorConstant     = "; "
	errorDetailTemplateConstant       = "%s %s"
	rateLimitMessageConstant          = "API rate limit exceeded"
	secondaryRateLimitMessageConstant = "secondary rate limit exceeded"
)

// ErrTokenNotProvided indicates that neither the flag nor the environment supplied a token.
var ErrTokenNotProvided = errors.New("GitHub token not provided. Use --token flag or set GITHUB_TOKEN environment variable.")

// APIError is a non-success response from the pull request endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

// Error describes the API failure.
func (apiError *APIError) Error() string {
	return fmt.Sprintf(apiErrorTemplateConstant, apiError.StatusCode, apiError.Message)
}

// AuthError is a 401 or 403 response caused by the credentials.
type AuthError struct {
	StatusCode int
	Message    string
}

// Error describes the authentication failure.
func (authError *AuthError) Error() string {
	return fmt.Sprintf(authErrorTemplateConstant, authError.StatusCode, authError.Message)
}

// NetworkError is a transport failure before any response arrived.
type NetworkError struct {
	Cause error
}

// Error describes the transport failure.
func (networkError *NetworkError) Error() string {
	return fmt.Sprintf(networkErrorTemplateConstant, networkError.Cause)
}

// Unwrap exposes the transport error.
func (networkError *NetworkError) Unwrap() error {
	return networkError.Cause
}

func classifyError(requestError error) error {
	var rateLimitError *github.RateLimitError
	if errors.As(requestError, &rateLimitError) {
		return &APIError{StatusCode: statusCodeOf(rateLimitError.Response), Message: messageOr(rateLimitError.Message, rateLimitMessageConstant)}
	}

	var abuseError *github.AbuseRateLimitError
	if errors.As(requestError, &abuseError) {
		return &APIError{StatusCode: statusCodeOf(abuseError.Response), Message: messageOr(abuseError.Message, secondaryRateLimitMessageConstant)}
	}

	var responseError *github.ErrorResponse
	if errors.As(requestError, &responseError) {
		statusCode := statusCodeOf(responseError.Response)
		message := describeErrorResponse(responseError)
		if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
			return &AuthError{StatusCode: statusCode, Message: message}
		}
		return &APIError{StatusCode: statusCode, Message: message}
	}

	return &NetworkError{Cause: requestError}
}

func describeErrorResponse(responseError *github.ErrorResponse) string {
	parts := []string{}
	if trimmed := strings.TrimSpace(responseError.Message); len(trimmed) > 0 {
		parts = append(parts, trimmed)
	}
	for _, detail := range responseError.Errors {
		if len(detail.Message) > 0 {
			parts = append(parts, detail.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf(errorDetailTemplateConstant, detail.Field, detail.Code))
	}
	if len(parts) == 0 && responseError.Response != nil {
		return http.StatusText(responseError.Response.StatusCode)
	}
	return strings.Join(parts, errorDetailsSeparatorConstant)
}

func statusCodeOf(response *http.Response) int {
	if response == nil {
		return 0
	}
	return response.StatusCode
}

func messageOr(message string, fallback string) string {
	if len(strings.TrimSpace(message)) == 0 {
		return fallback
	}
	return message
}
