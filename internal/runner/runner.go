package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/temirov/repofleet/internal/catalog"
	"github.com/temirov/repofleet/internal/console"
	"github.com/temirov/repofleet/internal/transcript"
	"github.com/temirov/repofleet/internal/utils"
)

const (
	defaultShellConstant                 = "sh"
	shellCommandFlagConstant             = "-c"
	runningMessageTemplateConstant       = "Running '%s'"
	lineDelimiterConstant                = '\n'
	carriageReturnConstant               = "\r"
	pipeErrorTemplateConstant            = "unable to attach %s pipe: %w"
	standardOutputStreamNameConstant     = "stdout"
	standardErrorStreamNameConstant      = "stderr"
	logMessageInvocationStartedConstant  = "repository command started"
	logMessageInvocationFinishedConstant = "repository command finished"
	logMessageTranscriptAppendConstant   = "transcript append failed"
	logMessageTranscriptCloseConstant    = "transcript close failed"
	logFieldRepositoryConstant           = "repository"
	logFieldCommandConstant              = "command"
	logFieldDirectoryConstant            = "directory"
	logFieldTranscriptConstant           = "transcript"
	logFieldStateConstant                = "state"
	logFieldExitCodeConstant             = "exit_code"
	logFieldStreamConstant               = "stream"
	logFieldDurationConstant             = "duration"
	unknownExitCodeConstant              = -1
)

// Option customizes Runner construction.
type Option func(*Runner)

// WithLogger attaches a diagnostic logger.
func WithLogger(logger *zap.Logger) Option {
	return func(target *Runner) {
		if logger != nil {
			target.logger = logger
		}
	}
}

// WithClock overrides the time source used for transcript headers and names.
func WithClock(clock utils.Clock) Option {
	return func(target *Runner) {
		if clock != nil {
			target.clock = clock
		}
	}
}

// WithShell overrides the shell executable. The command is passed as "<shell> -c <command>".
func WithShell(shell string) Option {
	return func(target *Runner) {
		if len(strings.TrimSpace(shell)) > 0 {
			target.shell = shell
		}
	}
}

// Runner spawns repository commands and multiplexes their output.
type Runner struct {
	console *console.Console
	logger  *zap.Logger
	clock   utils.Clock
	shell   string
}

// NewRunner constructs a Runner that prints through consoleSink.
func NewRunner(consoleSink *console.Console, options ...Option) (*Runner, error) {
	if consoleSink == nil {
		return nil, ErrConsoleNotConfigured
	}

	created := &Runner{
		console: consoleSink,
		logger:  zap.NewNop(),
		clock:   utils.SystemClock{},
		shell:   defaultShellConstant,
	}
	for _, option := range options {
		if option != nil {
			option(created)
		}
	}
	return created, nil
}

// Run executes command in the repository directory.
//
// An empty logDirectory disables the transcript. The returned error is one of
// *DirectoryMissingError, *TranscriptError, *SpawnError or *ExitCodeError and
// is also recorded on the Outcome.
func (runner *Runner) Run(executionContext context.Context, repository catalog.Repository, command string, logDirectory string) (Outcome, error) {
	outcome := Outcome{
		RepositoryName: repository.Name,
		Directory:      catalog.ResolveTargetDirectory(repository),
		State:          StatePending,
		StartedAt:      runner.clock.Now(),
	}

	directoryInfo, statError := os.Stat(outcome.Directory)
	if statError != nil || !directoryInfo.IsDir() {
		return runner.fail(outcome, &DirectoryMissingError{Directory: outcome.Directory})
	}

	var invocationTranscript *transcript.Transcript
	if len(logDirectory) > 0 {
		opened, openError := transcript.Open(logDirectory, transcript.Header{
			RepositoryName: repository.Name,
			Command:        command,
			Directory:      outcome.Directory,
			StartedAt:      outcome.StartedAt,
		})
		if openError != nil {
			return runner.fail(outcome, &TranscriptError{Cause: openError})
		}
		invocationTranscript = opened
		outcome.TranscriptPath = opened.Path()
		defer runner.closeTranscript(repository.Name, invocationTranscript)
	}

	runner.console.Info(repository.Name, fmt.Sprintf(runningMessageTemplateConstant, command))

	executable := exec.CommandContext(executionContext, runner.shell, shellCommandFlagConstant, command)
	executable.Dir = outcome.Directory

	standardOutput, standardOutputPipeError := executable.StdoutPipe()
	if standardOutputPipeError != nil {
		return runner.fail(outcome, &SpawnError{Command: command, Cause: fmt.Errorf(pipeErrorTemplateConstant, standardOutputStreamNameConstant, standardOutputPipeError)})
	}
	standardError, standardErrorPipeError := executable.StderrPipe()
	if standardErrorPipeError != nil {
		return runner.fail(outcome, &SpawnError{Command: command, Cause: fmt.Errorf(pipeErrorTemplateConstant, standardErrorStreamNameConstant, standardErrorPipeError)})
	}

	if startError := executable.Start(); startError != nil {
		return runner.fail(outcome, &SpawnError{Command: command, Cause: startError})
	}
	outcome.State = StateRunning
	runner.logger.Debug(
		logMessageInvocationStartedConstant,
		zap.String(logFieldRepositoryConstant, repository.Name),
		zap.String(logFieldCommandConstant, command),
		zap.String(logFieldDirectoryConstant, outcome.Directory),
		zap.String(logFieldTranscriptConstant, outcome.TranscriptPath),
	)

	var pumpGroup sync.WaitGroup
	pumpGroup.Add(2)
	go func() {
		defer pumpGroup.Done()
		runner.pump(standardOutput, repository.Name, standardOutputStreamNameConstant, func(line string) error {
			runner.console.StandardOutputLine(repository.Name, line)
			if invocationTranscript == nil {
				return nil
			}
			return invocationTranscript.AppendStandardOutput(line)
		})
	}()
	go func() {
		defer pumpGroup.Done()
		runner.pump(standardError, repository.Name, standardErrorStreamNameConstant, func(line string) error {
			runner.console.StandardErrorLine(repository.Name, line)
			if invocationTranscript == nil {
				return nil
			}
			return invocationTranscript.AppendStandardError(line)
		})
	}()
	pumpGroup.Wait()

	waitError := executable.Wait()
	outcome.Duration = runner.clock.Now().Sub(outcome.StartedAt)
	if waitError != nil {
		return runner.fail(outcome, exitCodeErrorFor(waitError))
	}

	outcome.State = StateSucceeded
	runner.logFinished(outcome)
	return outcome, nil
}

// pump forwards complete lines from stream to handle until end of stream.
// A read error ends the stream.
func (runner *Runner) pump(stream io.Reader, repositoryName string, streamName string, handle func(line string) error) {
	reader := bufio.NewReader(stream)
	for {
		line, readError := reader.ReadString(lineDelimiterConstant)
		if len(line) > 0 {
			trimmed := strings.TrimSuffix(strings.TrimSuffix(line, string(lineDelimiterConstant)), carriageReturnConstant)
			if handleError := handle(trimmed); handleError != nil {
				runner.logger.Warn(
					logMessageTranscriptAppendConstant,
					zap.String(logFieldRepositoryConstant, repositoryName),
					zap.String(logFieldStreamConstant, streamName),
					zap.Error(handleError),
				)
			}
		}
		if readError != nil {
			return
		}
	}
}

func (runner *Runner) fail(outcome Outcome, failure error) (Outcome, error) {
	outcome.State = StateFailed
	outcome.Err = failure

	var exitCodeError *ExitCodeError
	if errors.As(failure, &exitCodeError) {
		outcome.ExitCode = exitCodeError.Code
	}

	runner.logFinished(outcome)
	return outcome, failure
}

func (runner *Runner) logFinished(outcome Outcome) {
	runner.logger.Debug(
		logMessageInvocationFinishedConstant,
		zap.String(logFieldRepositoryConstant, outcome.RepositoryName),
		zap.String(logFieldStateConstant, outcome.State.String()),
		zap.Int(logFieldExitCodeConstant, outcome.ExitCode),
		zap.Duration(logFieldDurationConstant, outcome.Duration),
		zap.Error(outcome.Err),
	)
}

func (runner *Runner) closeTranscript(repositoryName string, invocationTranscript *transcript.Transcript) {
	if closeError := invocationTranscript.Close(); closeError != nil {
		runner.logger.Warn(
			logMessageTranscriptCloseConstant,
			zap.String(logFieldRepositoryConstant, repositoryName),
			zap.String(logFieldTranscriptConstant, invocationTranscript.Path()),
			zap.Error(closeError),
		)
	}
}

func exitCodeErrorFor(waitError error) *ExitCodeError {
	var exitError *exec.ExitError
	if errors.As(waitError, &exitError) {
		return &ExitCodeError{Code: exitError.ExitCode(), Cause: waitError}
	}
	return &ExitCodeError{Code: unknownExitCodeConstant, Cause: waitError}
}
