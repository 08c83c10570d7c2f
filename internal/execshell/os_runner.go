package execshell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sort"
)

const (
	terminalPromptVariableConstant = "GIT_TERMINAL_PROMPT"
	terminalPromptDisabledConstant = "0"
)

// OSCommandRunner executes commands with os/exec and buffers their output.
//
// Git never prompts for credentials through this runner; a missing credential
// surfaces as a failed command instead of a blocked batch.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes command and reports non-zero exits through ExecutionResult.ExitCode.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := exec.CommandContext(executionContext, string(command.Name), append([]string{}, command.Details.Arguments...)...)
	executable.Dir = command.Details.WorkingDirectory
	executable.Env = mergeEnvironment(os.Environ(), command)

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer
	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	exitCode := 0
	if runError := executable.Run(); runError != nil {
		var exitError *exec.ExitError
		if !errors.As(runError, &exitError) {
			return ExecutionResult{}, runError
		}
		exitCode = exitError.ExitCode()
	}

	return ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
		ExitCode:       exitCode,
	}, nil
}

func mergeEnvironment(baseEnvironment []string, command ShellCommand) []string {
	merged := append([]string{}, baseEnvironment...)
	if command.Name == CommandGit {
		merged = append(merged, terminalPromptVariableConstant+"="+terminalPromptDisabledConstant)
	}

	keys := make([]string, 0, len(command.Details.EnvironmentVariables))
	for environmentKey := range command.Details.EnvironmentVariables {
		keys = append(keys, environmentKey)
	}
	sort.Strings(keys)
	for _, environmentKey := range keys {
		merged = append(merged, environmentKey+"="+command.Details.EnvironmentVariables[environmentKey])
	}
	return merged
}
