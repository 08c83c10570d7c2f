package ui_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/repofleet/internal/execshell"
	"github.com/temirov/repofleet/internal/ui"
)

const (
	testWorkingDirectoryConstant       = "/work/service-a"
	testRepositoryLabelConstant        = "service-a"
	testStandardErrorConstant          = "fatal: remote error"
	testExecutionFailureReasonConstant = "executable file not found"
)

// steppingClock advances by one second on every reading.
type steppingClock struct {
	mutex   sync.Mutex
	current time.Time
}

func (clock *steppingClock) Now() time.Time {
	clock.mutex.Lock()
	defer clock.mutex.Unlock()
	reading := clock.current
	clock.current = clock.current.Add(time.Second)
	return reading
}

func statusCommand() execshell.ShellCommand {
	return execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{"status", "--porcelain"},
			WorkingDirectory: testWorkingDirectoryConstant,
		},
	}
}

func TestCommandTraceLoggerRecordsLifecycle(testInstance *testing.T) {
	command := statusCommand()

	testCases := []struct {
		name            string
		finish          func(traceLogger *ui.CommandTraceLogger)
		expectedMessage string
		expectedSummary string
		expectedExit    any
	}{
		{
			name: "successful_command",
			finish: func(traceLogger *ui.CommandTraceLogger) {
				traceLogger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 0})
			},
			expectedMessage: "command finished",
			expectedSummary: "Collected working tree status for /work/service-a",
			expectedExit:    int64(0),
		},
		{
			name: "non_zero_exit",
			finish: func(traceLogger *ui.CommandTraceLogger) {
				traceLogger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 128, StandardError: testStandardErrorConstant})
			},
			expectedMessage: "command finished",
			expectedSummary: "Failed to review working tree status in /work/service-a (exit code 128: fatal: remote error)",
			expectedExit:    int64(128),
		},
		{
			name: "execution_failure",
			finish: func(traceLogger *ui.CommandTraceLogger) {
				traceLogger.CommandExecutionFailed(command, errors.New(testExecutionFailureReasonConstant))
			},
			expectedMessage: "command failed to start",
			expectedSummary: "Unable to review working tree status in /work/service-a: executable file not found",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			clock := &steppingClock{current: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)}
			traceLogger := ui.NewCommandTraceLogger(zap.New(observerCore), ui.WithClock(clock))

			traceLogger.CommandStarted(command)
			testCase.finish(traceLogger)

			entries := observedLogs.All()
			require.Len(testInstance, entries, 2)
			for _, entry := range entries {
				require.Equal(testInstance, zapcore.DebugLevel, entry.Level)
			}

			require.Equal(testInstance, "command started", entries[0].Message)
			startedFields := entries[0].ContextMap()
			require.Equal(testInstance, "git status --porcelain", startedFields["command"])
			require.Equal(testInstance, testRepositoryLabelConstant, startedFields["repository"])

			require.Equal(testInstance, testCase.expectedMessage, entries[1].Message)
			finishedFields := entries[1].ContextMap()
			require.Equal(testInstance, time.Second, finishedFields["duration"])
			require.Equal(testInstance, testCase.expectedSummary, finishedFields["summary"])
			if testCase.expectedExit != nil {
				require.Equal(testInstance, testCase.expectedExit, finishedFields["exit_code"])
			} else {
				require.NotContains(testInstance, finishedFields, "exit_code")
			}
		})
	}
}

func TestCommandTraceLoggerWithoutStartReportsZeroDuration(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	traceLogger := ui.NewCommandTraceLogger(zap.New(observerCore))

	traceLogger.CommandCompleted(statusCommand(), execshell.ExecutionResult{})

	entries := observedLogs.All()
	require.Len(testInstance, entries, 1)
	require.Equal(testInstance, time.Duration(0), entries[0].ContextMap()["duration"])
}

func TestCommandTraceLoggerLabelsCommandsWithoutDirectory(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	traceLogger := ui.NewCommandTraceLogger(zap.New(observerCore))

	traceLogger.CommandStarted(execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: []string{"version"}}})

	entries := observedLogs.All()
	require.Len(testInstance, entries, 1)
	require.Equal(testInstance, "-", entries[0].ContextMap()["repository"])
}

func TestCommandTraceLoggerToleratesNilReceiver(testInstance *testing.T) {
	var traceLogger *ui.CommandTraceLogger
	require.NotPanics(testInstance, func() {
		traceLogger.CommandStarted(statusCommand())
		traceLogger.CommandCompleted(statusCommand(), execshell.ExecutionResult{})
		traceLogger.CommandExecutionFailed(statusCommand(), nil)
	})
}
