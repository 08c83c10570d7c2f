package execshell

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandMessageFormatterDescribesGitSubcommands(testInstance *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		expectedStart   string
		expectedSuccess string
		expectedFailure string
	}{
		{
			name:            "clone_default_branch",
			arguments:       []string{"clone", "git@github.com:example/service-a.git", "/srv/service-a"},
			expectedStart:   "Cloning git@github.com:example/service-a.git into /srv/service-a",
			expectedSuccess: "Cloned git@github.com:example/service-a.git into /srv/service-a",
			expectedFailure: "Failed to clone git@github.com:example/service-a.git into /srv/service-a (exit code 128: fatal: denied)",
		},
		{
			name:            "clone_named_branch",
			arguments:       []string{"clone", "-b", "develop", "https://github.com/example/service-a", "/srv/service-a"},
			expectedStart:   "Cloning branch develop of https://github.com/example/service-a into /srv/service-a",
			expectedSuccess: "Cloned branch develop of https://github.com/example/service-a into /srv/service-a",
			expectedFailure: "Failed to clone branch develop of https://github.com/example/service-a into /srv/service-a (exit code 128: fatal: denied)",
		},
		{
			name:            "status",
			arguments:       []string{"status", "--porcelain"},
			expectedStart:   "Reviewing working tree status in /workspace/repo",
			expectedSuccess: "Collected working tree status for /workspace/repo",
			expectedFailure: "Failed to review working tree status in /workspace/repo (exit code 128: fatal: denied)",
		},
		{
			name:            "checkout_new_branch",
			arguments:       []string{"checkout", "-b", "automated-changes-abc123"},
			expectedStart:   "Creating and switching to branch automated-changes-abc123 in /workspace/repo",
			expectedSuccess: "Switched to new branch automated-changes-abc123 in /workspace/repo",
			expectedFailure: "Failed to create branch automated-changes-abc123 in /workspace/repo (exit code 128: fatal: denied)",
		},
		{
			name:            "commit",
			arguments:       []string{"commit", "-m", "Automated changes"},
			expectedStart:   "Creating commit in /workspace/repo with message \"Automated changes\"",
			expectedSuccess: "Created commit in /workspace/repo with message \"Automated changes\"",
			expectedFailure: "Failed to create commit in /workspace/repo with message \"Automated changes\" (exit code 128: fatal: denied)",
		},
		{
			name:            "push_upstream",
			arguments:       []string{"push", "--set-upstream", "origin", "feature"},
			expectedStart:   "Pushing feature to origin from /workspace/repo",
			expectedSuccess: "Pushed feature to origin from /workspace/repo",
			expectedFailure: "Failed to push feature to origin from /workspace/repo (exit code 128: fatal: denied)",
		},
		{
			name:            "remote_lookup",
			arguments:       []string{"remote", "get-url", "origin"},
			expectedStart:   "Checking origin remote for /workspace/repo",
			expectedSuccess: "Read origin remote for /workspace/repo",
			expectedFailure: "Failed to read origin remote for /workspace/repo (exit code 128: fatal: denied)",
		},
		{
			name:            "unknown_subcommand",
			arguments:       []string{"gc", "--prune=now"},
			expectedStart:   "Running git gc --prune=now (in /workspace/repo)",
			expectedSuccess: "Completed git gc --prune=now (in /workspace/repo)",
			expectedFailure: "git gc --prune=now (in /workspace/repo) failed with exit code 128: fatal: denied",
		},
	}

	formatter := CommandMessageFormatter{}
	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			command := ShellCommand{
				Name: CommandGit,
				Details: CommandDetails{
					Arguments:        testCase.arguments,
					WorkingDirectory: "/workspace/repo",
				},
			}

			require.Equal(testInstance, testCase.expectedStart, formatter.BuildStartedMessage(command))
			require.Equal(testInstance, testCase.expectedSuccess, formatter.BuildSuccessMessage(command))
			require.Equal(testInstance, testCase.expectedFailure, formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 128, StandardError: "fatal: denied\n"}))
		})
	}
}

func TestBuildExecutionFailureMessageUsesCause(testInstance *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: []string{"status", "--porcelain"}}}

	require.Equal(testInstance, "Unable to review working tree status in current directory: executable file not found", formatter.BuildExecutionFailureMessage(command, errors.New("executable file not found")))
	require.Equal(testInstance, "Unable to review working tree status in current directory: unknown error", formatter.BuildExecutionFailureMessage(command, nil))
}
