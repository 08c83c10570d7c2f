// Package pullrequest commits local changes in a repository onto a fresh branch and opens a pull request for it.
package pullrequest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/temirov/repofleet/internal/catalog"
	"github.com/temirov/repofleet/internal/console"
	"github.com/temirov/repofleet/internal/githubapi"
	"github.com/temirov/repofleet/internal/gitrepo"
)

const (
	// DefaultBaseBranch is the pull request base when none is configured.
	DefaultBaseBranch = "main"
	// GeneratedBranchPrefix starts every generated branch name.
	GeneratedBranchPrefix = "automated-changes-"

	generatedSuffixLengthConstant         = 6
	uuidSeparatorConstant                 = "-"
	noChangesMessageConstant              = "No changes detected"
	creatingBranchMessageTemplateConstant = "Creating branch '%s'"
	committedMessageConstant              = "Changes committed"
	createOnlyMessageTemplateConstant     = "Branch '%s' created locally, skipping push and pull request"
	pushingMessageTemplateConstant        = "Pushing branch '%s'"
	pullRequestCreatedTemplateConstant    = "Pull request created: %s"
	logMessageWorkflowStartedConstant     = "pull request workflow started"
	logMessageWorkflowNoChangesConstant   = "pull request workflow found no changes"
	logMessageWorkflowCompletedConstant   = "pull request workflow completed"
	logFieldRepositoryConstant            = "repository"
	logFieldBranchConstant                = "branch"
	logFieldBaseConstant                  = "base"
	logFieldCreateOnlyConstant            = "create_only"
	logFieldPullRequestURLConstant        = "pull_request_url"
)

var (
	// ErrConsoleNotConfigured indicates a Workflow constructed without a console sink.
	ErrConsoleNotConfigured = errors.New("pull request console not configured")
	// ErrGitOperationsNotConfigured indicates a Workflow constructed without git operations.
	ErrGitOperationsNotConfigured = errors.New("pull request git operations not configured")
	// ErrPullRequestCreatorNotConfigured indicates a push was requested without a pull request creator.
	ErrPullRequestCreatorNotConfigured = errors.New("pull request creator not configured")
)

// GitOperations performs the git steps of the workflow.
type GitOperations interface {
	HasChanges(executionContext context.Context, repositoryPath string) (bool, error)
	CreateAndCheckoutBranch(executionContext context.Context, repositoryPath string, branch string) error
	AddAll(executionContext context.Context, repositoryPath string) error
	Commit(executionContext context.Context, repositoryPath string, message string) error
	PushBranch(executionContext context.Context, repositoryPath string, branch string) error
}

// PullRequestCreator opens a pull request and returns its URL.
type PullRequestCreator interface {
	CreatePullRequest(executionContext context.Context, request githubapi.PullRequestRequest) (string, error)
}

// BranchNameGenerator produces a branch name when Options.BranchName is empty.
type BranchNameGenerator func() string

// Options configures one workflow run.
type Options struct {
	Title         string
	Body          string
	BranchName    string
	BaseBranch    string
	CommitMessage string
	Draft         bool
	CreateOnly    bool
}

// WorkflowOption customizes a Workflow.
type WorkflowOption func(*Workflow)

// WithLogger attaches a diagnostic logger.
func WithLogger(logger *zap.Logger) WorkflowOption {
	return func(workflow *Workflow) {
		if logger != nil {
			workflow.logger = logger
		}
	}
}

// WithPullRequestCreator attaches the collaborator that opens pull requests.
func WithPullRequestCreator(creator PullRequestCreator) WorkflowOption {
	return func(workflow *Workflow) {
		workflow.creator = creator
	}
}

// WithBranchNameGenerator replaces the random branch name source.
func WithBranchNameGenerator(generator BranchNameGenerator) WorkflowOption {
	return func(workflow *Workflow) {
		if generator != nil {
			workflow.branchNameGenerator = generator
		}
	}
}

// Workflow runs the pull request steps for one repository per call.
type Workflow struct {
	console             *console.Console
	git                 GitOperations
	creator             PullRequestCreator
	branchNameGenerator BranchNameGenerator
	logger              *zap.Logger
}

// NewWorkflow constructs a Workflow.
func NewWorkflow(consoleSink *console.Console, git GitOperations, options ...WorkflowOption) (*Workflow, error) {
	if consoleSink == nil {
		return nil, ErrConsoleNotConfigured
	}
	if git == nil {
		return nil, ErrGitOperationsNotConfigured
	}

	workflow := &Workflow{
		console:             consoleSink,
		git:                 git,
		branchNameGenerator: GenerateBranchName,
		logger:              zap.NewNop(),
	}
	for _, option := range options {
		if option != nil {
			option(workflow)
		}
	}
	return workflow, nil
}

// GenerateBranchName returns automated-changes- followed by six random hex characters.
func GenerateBranchName() string {
	suffix := strings.ReplaceAll(uuid.NewString(), uuidSeparatorConstant, "")
	return GeneratedBranchPrefix + suffix[:generatedSuffixLengthConstant]
}

// Run commits the repository's pending changes onto a new branch and, unless CreateOnly, pushes it and opens a pull request.
// A repository without changes is reported and left untouched.
func (workflow *Workflow) Run(executionContext context.Context, repository catalog.Repository, options Options) error {
	repositoryPath := catalog.ResolveTargetDirectory(repository)
	workflow.logger.Debug(logMessageWorkflowStartedConstant, zap.String(logFieldRepositoryConstant, repository.Name), zap.Bool(logFieldCreateOnlyConstant, options.CreateOnly))

	hasChanges, statusError := workflow.git.HasChanges(executionContext, repositoryPath)
	if statusError != nil {
		return statusError
	}
	if !hasChanges {
		workflow.console.Warn(repository.Name, noChangesMessageConstant)
		workflow.logger.Debug(logMessageWorkflowNoChangesConstant, zap.String(logFieldRepositoryConstant, repository.Name))
		return nil
	}

	var remote gitrepo.RemoteURL
	if !options.CreateOnly {
		if workflow.creator == nil {
			return ErrPullRequestCreatorNotConfigured
		}
		parsedRemote, parseError := gitrepo.ParseRemoteURL(repository.URL)
		if parseError != nil {
			return parseError
		}
		remote = parsedRemote
	}

	branch := strings.TrimSpace(options.BranchName)
	if len(branch) == 0 {
		branch = workflow.branchNameGenerator()
	}
	workflow.console.Info(repository.Name, fmt.Sprintf(creatingBranchMessageTemplateConstant, branch))

	if branchError := workflow.git.CreateAndCheckoutBranch(executionContext, repositoryPath, branch); branchError != nil {
		return branchError
	}
	if addError := workflow.git.AddAll(executionContext, repositoryPath); addError != nil {
		return addError
	}
	if commitError := workflow.git.Commit(executionContext, repositoryPath, commitMessage(options)); commitError != nil {
		return commitError
	}
	workflow.console.Info(repository.Name, committedMessageConstant)

	if options.CreateOnly {
		workflow.console.Success(repository.Name, fmt.Sprintf(createOnlyMessageTemplateConstant, branch))
		workflow.logger.Debug(logMessageWorkflowCompletedConstant, zap.String(logFieldRepositoryConstant, repository.Name), zap.String(logFieldBranchConstant, branch))
		return nil
	}

	workflow.console.Info(repository.Name, fmt.Sprintf(pushingMessageTemplateConstant, branch))
	if pushError := workflow.git.PushBranch(executionContext, repositoryPath, branch); pushError != nil {
		return pushError
	}

	baseBranch := strings.TrimSpace(options.BaseBranch)
	if len(baseBranch) == 0 {
		baseBranch = DefaultBaseBranch
	}

	pullRequestURL, createError := workflow.creator.CreatePullRequest(executionContext, githubapi.PullRequestRequest{
		Owner:      remote.Owner,
		Repository: remote.Repository,
		Title:      options.Title,
		Body:       options.Body,
		Head:       branch,
		Base:       baseBranch,
		Draft:      options.Draft,
	})
	if createError != nil {
		return createError
	}

	workflow.console.Success(repository.Name, fmt.Sprintf(pullRequestCreatedTemplateConstant, pullRequestURL))
	workflow.logger.Debug(
		logMessageWorkflowCompletedConstant,
		zap.String(logFieldRepositoryConstant, repository.Name),
		zap.String(logFieldBranchConstant, branch),
		zap.String(logFieldBaseConstant, baseBranch),
		zap.String(logFieldPullRequestURLConstant, pullRequestURL),
	)
	return nil
}

func commitMessage(options Options) string {
	if trimmed := strings.TrimSpace(options.CommitMessage); len(trimmed) > 0 {
		return options.CommitMessage
	}
	return options.Title
}
