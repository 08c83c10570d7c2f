package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/repofleet/internal/execshell"
)

const (
	gitCloneSubcommandConstant           = "clone"
	gitStatusSubcommandConstant          = "status"
	gitPorcelainFlagConstant             = "--porcelain"
	gitCheckoutSubcommandConstant        = "checkout"
	gitNewBranchFlagConstant             = "-b"
	gitAddSubcommandConstant             = "add"
	gitAddAllPathspecConstant            = "."
	gitCommitSubcommandConstant          = "commit"
	gitMessageFlagConstant               = "-m"
	gitPushSubcommandConstant            = "push"
	gitSetUpstreamFlagConstant           = "--set-upstream"
	gitRemoteSubcommandConstant          = "remote"
	gitGetURLSubcommandConstant          = "get-url"
	defaultRemoteNameConstant            = "origin"
	operationErrorTemplateConstant       = "%s: %s"
	cloneFailureSummaryConstant          = "Failed to clone repository"
	statusFailureSummaryConstant         = "Failed to check repository status"
	branchFailureSummaryTemplateConstant = "Failed to create and checkout branch '%s'"
	addFailureSummaryConstant            = "Failed to add changes"
	commitFailureSummaryConstant         = "Failed to commit changes"
	pushFailureSummaryConstant           = "Failed to push branch"
	remoteFailureSummaryTemplateConstant = "Failed to read remote '%s'"
)

// ErrGitExecutorNotConfigured indicates a RepositoryManager constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New("git executor not configured")

// GitExecutor runs git subcommands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// OperationError reports a failed git step with the output git produced.
type OperationError struct {
	Summary string
	Detail  string
	Cause   error
}

// Error renders "<summary>: <detail>".
func (operationError *OperationError) Error() string {
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Summary, operationError.Detail)
}

// Unwrap exposes the underlying execution error.
func (operationError *OperationError) Unwrap() error {
	return operationError.Cause
}

// RepositoryManager performs the git steps needed by the fleet operations.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// Clone runs "git clone [-b branch] url target". An empty branch clones the default branch.
func (manager *RepositoryManager) Clone(executionContext context.Context, remoteURL string, branch string, targetDirectory string) error {
	arguments := []string{gitCloneSubcommandConstant}
	if len(strings.TrimSpace(branch)) > 0 {
		arguments = append(arguments, gitNewBranchFlagConstant, branch)
	}
	arguments = append(arguments, remoteURL, targetDirectory)

	_, cloneError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{Arguments: arguments})
	return wrapOperationError(cloneFailureSummaryConstant, cloneError)
}

// HasChanges reports whether "git status --porcelain" lists anything.
func (manager *RepositoryManager) HasChanges(executionContext context.Context, repositoryPath string) (bool, error) {
	result, statusError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitStatusSubcommandConstant, gitPorcelainFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if statusError != nil {
		return false, wrapOperationError(statusFailureSummaryConstant, statusError)
	}
	return len(strings.TrimSpace(result.StandardOutput)) > 0, nil
}

// CreateAndCheckoutBranch runs "git checkout -b branch".
func (manager *RepositoryManager) CreateAndCheckoutBranch(executionContext context.Context, repositoryPath string, branch string) error {
	_, checkoutError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCheckoutSubcommandConstant, gitNewBranchFlagConstant, branch},
		WorkingDirectory: repositoryPath,
	})
	return wrapOperationError(fmt.Sprintf(branchFailureSummaryTemplateConstant, branch), checkoutError)
}

// AddAll runs "git add .".
func (manager *RepositoryManager) AddAll(executionContext context.Context, repositoryPath string) error {
	_, addError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitAddSubcommandConstant, gitAddAllPathspecConstant},
		WorkingDirectory: repositoryPath,
	})
	return wrapOperationError(addFailureSummaryConstant, addError)
}

// Commit runs "git commit -m message".
func (manager *RepositoryManager) Commit(executionContext context.Context, repositoryPath string, message string) error {
	_, commitError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCommitSubcommandConstant, gitMessageFlagConstant, message},
		WorkingDirectory: repositoryPath,
	})
	return wrapOperationError(commitFailureSummaryConstant, commitError)
}

// PushBranch runs "git push --set-upstream origin branch".
func (manager *RepositoryManager) PushBranch(executionContext context.Context, repositoryPath string, branch string) error {
	_, pushError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitPushSubcommandConstant, gitSetUpstreamFlagConstant, defaultRemoteNameConstant, branch},
		WorkingDirectory: repositoryPath,
	})
	return wrapOperationError(pushFailureSummaryConstant, pushError)
}

// RemoteURL returns the URL of the named remote, "origin" when remoteName is empty.
func (manager *RepositoryManager) RemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	if len(strings.TrimSpace(remoteName)) == 0 {
		remoteName = defaultRemoteNameConstant
	}
	result, remoteError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant, gitGetURLSubcommandConstant, remoteName},
		WorkingDirectory: repositoryPath,
	})
	if remoteError != nil {
		return "", wrapOperationError(fmt.Sprintf(remoteFailureSummaryTemplateConstant, remoteName), remoteError)
	}
	return strings.TrimSpace(result.StandardOutput), nil
}

func wrapOperationError(summary string, executionError error) error {
	if executionError == nil {
		return nil
	}
	return &OperationError{Summary: summary, Detail: describeExecutionError(executionError), Cause: executionError}
}

func describeExecutionError(executionError error) string {
	var commandFailure execshell.CommandFailedError
	if errors.As(executionError, &commandFailure) {
		if standardError := strings.TrimSpace(commandFailure.Result.StandardError); len(standardError) > 0 {
			return standardError
		}
		if standardOutput := strings.TrimSpace(commandFailure.Result.StandardOutput); len(standardOutput) > 0 {
			return standardOutput
		}
	}
	var executionFailure execshell.CommandExecutionError
	if errors.As(executionError, &executionFailure) && executionFailure.Cause != nil {
		return executionFailure.Cause.Error()
	}
	return executionError.Error()
}
