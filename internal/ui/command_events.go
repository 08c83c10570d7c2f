package ui

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/repofleet/internal/execshell"
	"github.com/temirov/repofleet/internal/utils"
)

const (
	commandStartedLogMessageConstant  = "command started"
	commandFinishedLogMessageConstant = "command finished"
	commandFailedLogMessageConstant   = "command failed to start"
	commandFieldConstant              = "command"
	repositoryFieldConstant           = "repository"
	exitCodeFieldConstant             = "exit_code"
	durationFieldConstant             = "duration"
	summaryFieldConstant              = "summary"
	unknownRepositoryLabelConstant    = "-"
	commandKeySeparatorConstant       = "\x00"
)

// CommandTraceLoggerOption customizes a CommandTraceLogger.
type CommandTraceLoggerOption func(*CommandTraceLogger)

// WithClock replaces the time source used to measure commands.
func WithClock(clock utils.Clock) CommandTraceLoggerOption {
	return func(traceLogger *CommandTraceLogger) {
		if clock != nil {
			traceLogger.clock = clock
		}
	}
}

// CommandTraceLogger implements execshell.CommandEventObserver at debug level.
// It is safe for concurrent use by executors running in parallel repositories.
type CommandTraceLogger struct {
	logger    *zap.Logger
	clock     utils.Clock
	formatter execshell.CommandMessageFormatter

	mutex      sync.Mutex
	startTimes map[string][]time.Time
}

// NewCommandTraceLogger constructs a trace logger. A nil logger discards events.
func NewCommandTraceLogger(logger *zap.Logger, options ...CommandTraceLoggerOption) *CommandTraceLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	traceLogger := &CommandTraceLogger{
		logger:     logger,
		clock:      utils.SystemClock{},
		startTimes: make(map[string][]time.Time),
	}
	for _, option := range options {
		if option != nil {
			option(traceLogger)
		}
	}
	return traceLogger
}

// CommandStarted records the start time of command.
func (traceLogger *CommandTraceLogger) CommandStarted(command execshell.ShellCommand) {
	if traceLogger == nil {
		return
	}
	key := commandKey(command)
	traceLogger.mutex.Lock()
	traceLogger.startTimes[key] = append(traceLogger.startTimes[key], traceLogger.clock.Now())
	traceLogger.mutex.Unlock()

	traceLogger.logger.Debug(
		commandStartedLogMessageConstant,
		zap.String(commandFieldConstant, command.String()),
		zap.String(repositoryFieldConstant, repositoryLabel(command)),
	)
}

// CommandCompleted logs the exit code and elapsed time of command.
func (traceLogger *CommandTraceLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if traceLogger == nil {
		return
	}
	summary := traceLogger.formatter.BuildSuccessMessage(command)
	if result.ExitCode != 0 {
		summary = traceLogger.formatter.BuildFailureMessage(command, result)
	}
	traceLogger.logger.Debug(
		commandFinishedLogMessageConstant,
		zap.String(commandFieldConstant, command.String()),
		zap.String(repositoryFieldConstant, repositoryLabel(command)),
		zap.Int(exitCodeFieldConstant, result.ExitCode),
		zap.Duration(durationFieldConstant, traceLogger.elapsed(command)),
		zap.String(summaryFieldConstant, summary),
	)
}

// CommandExecutionFailed logs a command that never produced an exit status.
func (traceLogger *CommandTraceLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if traceLogger == nil {
		return
	}
	traceLogger.logger.Debug(
		commandFailedLogMessageConstant,
		zap.String(commandFieldConstant, command.String()),
		zap.String(repositoryFieldConstant, repositoryLabel(command)),
		zap.Duration(durationFieldConstant, traceLogger.elapsed(command)),
		zap.String(summaryFieldConstant, traceLogger.formatter.BuildExecutionFailureMessage(command, failure)),
	)
}

// elapsed pops the earliest pending start of an identical command.
func (traceLogger *CommandTraceLogger) elapsed(command execshell.ShellCommand) time.Duration {
	key := commandKey(command)
	traceLogger.mutex.Lock()
	defer traceLogger.mutex.Unlock()

	pending := traceLogger.startTimes[key]
	if len(pending) == 0 {
		return 0
	}
	startedAt := pending[0]
	if len(pending) == 1 {
		delete(traceLogger.startTimes, key)
	} else {
		traceLogger.startTimes[key] = pending[1:]
	}
	return traceLogger.clock.Now().Sub(startedAt)
}

func commandKey(command execshell.ShellCommand) string {
	return strings.Join([]string{command.Details.WorkingDirectory, command.String()}, commandKeySeparatorConstant)
}

func repositoryLabel(command execshell.ShellCommand) string {
	workingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(workingDirectory) == 0 {
		return unknownRepositoryLabelConstant
	}
	return filepath.Base(workingDirectory)
}
