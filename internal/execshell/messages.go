package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitCloneSubcommandNameConstant        = "clone"
	gitStatusSubcommandNameConstant       = "status"
	gitCheckoutSubcommandNameConstant     = "checkout"
	gitAddSubcommandNameConstant          = "add"
	gitCommitSubcommandNameConstant       = "commit"
	gitPushSubcommandNameConstant         = "push"
	gitRemoteSubcommandNameConstant       = "remote"
	gitRemoteGetURLSubcommandNameConstant = "get-url"
	gitBranchFlagConstant                 = "-b"
	gitMessageFlagConstant                = "-m"
)

const (
	gitCloneSubjectTemplateConstant       = "%s into %s"
	gitCloneBranchSubjectTemplateConstant = "branch %s of %s into %s"
	gitCheckoutSubjectTemplateConstant    = "branch %s in %s"
	gitAddSubjectTemplateConstant         = "%s in %s"
	gitCommitSubjectTemplateConstant      = "%s with message %q"
	gitPushSubjectTemplateConstant        = "%s to %s from %s"
	gitRemoteSubjectTemplateConstant      = "%s remote for %s"
)

// messageTemplates holds the four lifecycle templates of one git subcommand.
// Every template takes the subject first; failure templates then take the
// exit code and the stderr suffix, execution failure templates the cause.
type messageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

var (
	gitCloneTemplates = messageTemplates{
		start:            "Cloning %s",
		success:          "Cloned %s",
		failure:          "Failed to clone %s (exit code %d%s)",
		executionFailure: "Unable to clone %s: %s",
	}
	gitStatusTemplates = messageTemplates{
		start:            "Reviewing working tree status in %s",
		success:          "Collected working tree status for %s",
		failure:          "Failed to review working tree status in %s (exit code %d%s)",
		executionFailure: "Unable to review working tree status in %s: %s",
	}
	gitBranchCreationTemplates = messageTemplates{
		start:            "Creating and switching to %s",
		success:          "Switched to new %s",
		failure:          "Failed to create %s (exit code %d%s)",
		executionFailure: "Unable to create %s: %s",
	}
	gitCheckoutTemplates = messageTemplates{
		start:            "Switching to %s",
		success:          "Switched to %s",
		failure:          "Failed to switch to %s (exit code %d%s)",
		executionFailure: "Unable to switch to %s: %s",
	}
	gitAddTemplates = messageTemplates{
		start:            "Staging %s",
		success:          "Staged %s",
		failure:          "Failed to stage %s (exit code %d%s)",
		executionFailure: "Unable to stage %s: %s",
	}
	gitCommitTemplates = messageTemplates{
		start:            "Creating commit in %s",
		success:          "Created commit in %s",
		failure:          "Failed to create commit in %s (exit code %d%s)",
		executionFailure: "Unable to create commit in %s: %s",
	}
	gitPushTemplates = messageTemplates{
		start:            "Pushing %s",
		success:          "Pushed %s",
		failure:          "Failed to push %s (exit code %d%s)",
		executionFailure: "Unable to push %s: %s",
	}
	gitRemoteLookupTemplates = messageTemplates{
		start:            "Checking %s",
		success:          "Read %s",
		failure:          "Failed to read %s (exit code %d%s)",
		executionFailure: "Unable to read %s: %s",
	}
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a command that exited with status 0.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that exited with a non-zero status.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing a command that could not be run.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name == CommandGit {
		if templates, subject, described := formatter.describeGitCommand(command); described {
			return formatter.render(templates, subject, result, failure, stage)
		}
	}
	return formatter.render(messageTemplates{
		start:            genericStartTemplateConstant,
		success:          genericSuccessTemplateConstant,
		failure:          genericFailureTemplateConstant,
		executionFailure: genericExecutionFailureTemplateConstant,
	}, formatter.formatCommandLabel(command), result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitCommand(command ShellCommand) (messageTemplates, string, bool) {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return messageTemplates{}, "", false
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	switch strings.TrimSpace(arguments[0]) {
	case gitCloneSubcommandNameConstant:
		return gitCloneTemplates, formatter.describeClone(arguments[1:]), true
	case gitStatusSubcommandNameConstant:
		return gitStatusTemplates, workingDirectory, true
	case gitCheckoutSubcommandNameConstant:
		branchName := formatter.ensureValue(formatter.lastNonFlagArgument(arguments[1:]))
		subject := fmt.Sprintf(gitCheckoutSubjectTemplateConstant, branchName, workingDirectory)
		if containsArgument(arguments, gitBranchFlagConstant) {
			return gitBranchCreationTemplates, subject, true
		}
		return gitCheckoutTemplates, subject, true
	case gitAddSubcommandNameConstant:
		target := formatter.ensureValue(formatter.lastNonFlagArgument(arguments[1:]))
		return gitAddTemplates, fmt.Sprintf(gitAddSubjectTemplateConstant, target, workingDirectory), true
	case gitCommitSubcommandNameConstant:
		commitMessage := formatter.ensureValue(findFlagValue(arguments, gitMessageFlagConstant))
		return gitCommitTemplates, fmt.Sprintf(gitCommitSubjectTemplateConstant, workingDirectory, commitMessage), true
	case gitPushSubcommandNameConstant:
		remoteName, references := formatter.extractRemoteAndReferences(arguments[1:])
		subject := fmt.Sprintf(gitPushSubjectTemplateConstant, formatter.ensureValue(strings.Join(references, ", ")), formatter.ensureValue(remoteName), workingDirectory)
		return gitPushTemplates, subject, true
	case gitRemoteSubcommandNameConstant:
		if len(arguments) < 3 || strings.TrimSpace(arguments[1]) != gitRemoteGetURLSubcommandNameConstant {
			return messageTemplates{}, "", false
		}
		return gitRemoteLookupTemplates, fmt.Sprintf(gitRemoteSubjectTemplateConstant, formatter.ensureValue(arguments[2]), workingDirectory), true
	default:
		return messageTemplates{}, "", false
	}
}

func (formatter CommandMessageFormatter) describeClone(arguments []string) string {
	branchName := findFlagValue(arguments, gitBranchFlagConstant)
	positional := make([]string, 0, 2)
	for index := 0; index < len(arguments); index++ {
		trimmed := strings.TrimSpace(arguments[index])
		if trimmed == gitBranchFlagConstant {
			index++
			continue
		}
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		positional = append(positional, trimmed)
	}

	source := fallbackUnknownValueLabelConstant
	destination := fallbackUnknownValueLabelConstant
	if len(positional) > 0 {
		source = positional[0]
	}
	if len(positional) > 1 {
		destination = positional[1]
	}

	if len(branchName) > 0 {
		return fmt.Sprintf(gitCloneBranchSubjectTemplateConstant, branchName, source, destination)
	}
	return fmt.Sprintf(gitCloneSubjectTemplateConstant, source, destination)
}

func (formatter CommandMessageFormatter) render(templates messageTemplates, subject string, result ExecutionResult, failure error, stage messageStage) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, subject)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, subject)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, subject, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(templates.executionFailure, subject, formatter.describeFailure(failure))
	default:
		return ""
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return command.String()
	}
	return command.String() + fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) lastNonFlagArgument(arguments []string) string {
	for index := len(arguments) - 1; index >= 0; index-- {
		trimmed := strings.TrimSpace(arguments[index])
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		return trimmed
	}
	return ""
}

func (formatter CommandMessageFormatter) extractRemoteAndReferences(arguments []string) (string, []string) {
	remoteName := ""
	references := []string{}
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		if len(remoteName) == 0 {
			remoteName = trimmed
			continue
		}
		references = append(references, trimmed)
	}
	return remoteName, references
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return ""
}
