package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v81/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	userAgentTemplateConstant          = "repofleet/%s"
	defaultVersionConstant             = "dev"
	enterpriseURLErrorTemplateConstant = "invalid GitHub API base URL %q: %w"
	logMessageRequestConstant          = "github api request"
	logMessageResponseConstant         = "github api response"
	logMessageTransportErrorConstant   = "github api transport error"
	logMessagePullRequestConstant      = "pull request created"
	logFieldMethodConstant             = "method"
	logFieldURLConstant                = "url"
	logFieldStatusConstant             = "status"
	logFieldDurationConstant           = "duration"
	logFieldRepositoryConstant         = "repository"
	logFieldHeadConstant               = "head"
	logFieldBaseConstant               = "base"
	logFieldPullRequestURLConstant     = "pull_request_url"
)

var (
	// ErrContextNotProvided indicates NewClient was called with a nil context.
	ErrContextNotProvided = errors.New("github client: context is nil")
	// ErrPullRequestURLMissing indicates a successful response without an html_url.
	ErrPullRequestURLMissing = errors.New("github response did not include a pull request URL")
)

// PullRequestRequest describes the pull request to open.
type PullRequestRequest struct {
	Owner      string
	Repository string
	Title      string
	Body       string
	Head       string
	Base       string
	Draft      bool
}

type clientOptions struct {
	baseURL     string
	version     string
	verboseHTTP bool
	logger      *zap.Logger
	transport   http.RoundTripper
}

// ClientOption customizes Client construction.
type ClientOption func(*clientOptions)

// WithBaseURL targets a GitHub Enterprise installation. An empty value keeps api.github.com.
func WithBaseURL(baseURL string) ClientOption {
	return func(options *clientOptions) {
		options.baseURL = strings.TrimSpace(baseURL)
	}
}

// WithVersion sets the version reported in the User-Agent header.
func WithVersion(version string) ClientOption {
	return func(options *clientOptions) {
		if len(strings.TrimSpace(version)) > 0 {
			options.version = strings.TrimSpace(version)
		}
	}
}

// WithVerboseHTTP logs every request and response through logger at info level.
func WithVerboseHTTP(enabled bool) ClientOption {
	return func(options *clientOptions) {
		options.verboseHTTP = enabled
	}
}

// WithLogger attaches a diagnostic logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(options *clientOptions) {
		if logger != nil {
			options.logger = logger
		}
	}
}

// WithTransport replaces the base HTTP transport beneath authentication and logging.
func WithTransport(transport http.RoundTripper) ClientOption {
	return func(options *clientOptions) {
		if transport != nil {
			options.transport = transport
		}
	}
}

// Client opens pull requests.
type Client struct {
	client *github.Client
	logger *zap.Logger
}

// NewClient constructs a Client authenticating with token as a bearer credential.
func NewClient(executionContext context.Context, token string, options ...ClientOption) (*Client, error) {
	if executionContext == nil {
		return nil, ErrContextNotProvided
	}

	resolved := &clientOptions{
		version:   defaultVersionConstant,
		logger:    zap.NewNop(),
		transport: http.DefaultTransport,
	}
	for _, option := range options {
		if option != nil {
			option(resolved)
		}
	}

	transport := resolved.transport
	if resolved.verboseHTTP {
		transport = &loggingRoundTripper{base: transport, logger: resolved.logger}
	}
	if len(token) > 0 {
		transport = &oauth2.Transport{Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}), Base: transport}
	}

	githubClient := github.NewClient(&http.Client{Transport: transport})
	if len(resolved.baseURL) > 0 {
		enterpriseClient, enterpriseError := githubClient.WithEnterpriseURLs(resolved.baseURL, resolved.baseURL)
		if enterpriseError != nil {
			return nil, fmt.Errorf(enterpriseURLErrorTemplateConstant, resolved.baseURL, enterpriseError)
		}
		githubClient = enterpriseClient
	}
	githubClient.UserAgent = fmt.Sprintf(userAgentTemplateConstant, resolved.version)

	return &Client{client: githubClient, logger: resolved.logger}, nil
}

// CreatePullRequest opens a pull request and returns its html_url.
func (client *Client) CreatePullRequest(executionContext context.Context, request PullRequestRequest) (string, error) {
	created, _, createError := client.client.PullRequests.Create(executionContext, request.Owner, request.Repository, &github.NewPullRequest{
		Title: github.Ptr(request.Title),
		Body:  github.Ptr(request.Body),
		Head:  github.Ptr(request.Head),
		Base:  github.Ptr(request.Base),
		Draft: github.Ptr(request.Draft),
	})
	if createError != nil {
		return "", classifyError(createError)
	}

	pullRequestURL := created.GetHTMLURL()
	if len(pullRequestURL) == 0 {
		return "", ErrPullRequestURLMissing
	}

	client.logger.Debug(
		logMessagePullRequestConstant,
		zap.String(logFieldRepositoryConstant, request.Owner+"/"+request.Repository),
		zap.String(logFieldHeadConstant, request.Head),
		zap.String(logFieldBaseConstant, request.Base),
		zap.String(logFieldPullRequestURLConstant, pullRequestURL),
	)
	return pullRequestURL, nil
}

// loggingRoundTripper emits one entry per request and per response.
type loggingRoundTripper struct {
	base   http.RoundTripper
	logger *zap.Logger
}

func (roundTripper *loggingRoundTripper) RoundTrip(request *http.Request) (*http.Response, error) {
	startedAt := time.Now()
	roundTripper.logger.Info(logMessageRequestConstant, zap.String(logFieldMethodConstant, request.Method), zap.String(logFieldURLConstant, request.URL.String()))

	response, transportError := roundTripper.base.RoundTrip(request)
	elapsed := time.Since(startedAt).Truncate(time.Millisecond)
	if transportError != nil {
		roundTripper.logger.Warn(logMessageTransportErrorConstant, zap.String(logFieldURLConstant, request.URL.String()), zap.Duration(logFieldDurationConstant, elapsed), zap.Error(transportError))
		return response, transportError
	}

	roundTripper.logger.Info(logMessageResponseConstant, zap.String(logFieldURLConstant, request.URL.String()), zap.Int(logFieldStatusConstant, response.StatusCode), zap.Duration(logFieldDurationConstant, elapsed))
	return response, nil
}
