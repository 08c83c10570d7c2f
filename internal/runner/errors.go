package runner

import (
	"errors"
	"fmt"
)

const (
	directoryMissingMessageTemplateConstant = "Directory does not exist: %s"
	spawnErrorMessageTemplateConstant       = "Failed to spawn '%s': %v"
	exitCodeMessageTemplateConstant         = "Command failed with exit code %d"
	unknownTerminationMessageConstant       = "Command terminated without an exit code"
	transcriptErrorMessageTemplateConstant  = "Failed to open log file: %v"
)

// ErrConsoleNotConfigured indicates a runner constructed without a console sink.
var ErrConsoleNotConfigured = errors.New("runner console not configured")

// DirectoryMissingError reports that the repository directory does not exist.
type DirectoryMissingError struct {
	Directory string
}

// Error describes the missing directory.
func (missingError *DirectoryMissingError) Error() string {
	return fmt.Sprintf(directoryMissingMessageTemplateConstant, missingError.Directory)
}

// SpawnError reports that the shell process could not be started.
type SpawnError struct {
	Command string
	Cause   error
}

// Error describes the spawn failure.
func (spawnError *SpawnError) Error() string {
	return fmt.Sprintf(spawnErrorMessageTemplateConstant, spawnError.Command, spawnError.Cause)
}

// Unwrap exposes the underlying cause.
func (spawnError *SpawnError) Unwrap() error {
	return spawnError.Cause
}

// ExitCodeError reports a non-zero exit status. Code is -1 when the process
// was terminated by a signal or its status is unknown.
type ExitCodeError struct {
	Code  int
	Cause error
}

// Error describes the exit status.
func (exitCodeError *ExitCodeError) Error() string {
	if exitCodeError.Code < 0 {
		return unknownTerminationMessageConstant
	}
	return fmt.Sprintf(exitCodeMessageTemplateConstant, exitCodeError.Code)
}

// Unwrap exposes the underlying cause.
func (exitCodeError *ExitCodeError) Unwrap() error {
	return exitCodeError.Cause
}

// TranscriptError reports that the transcript could not be prepared.
type TranscriptError struct {
	Cause error
}

// Error describes the transcript failure.
func (transcriptError *TranscriptError) Error() string {
	return fmt.Sprintf(transcriptErrorMessageTemplateConstant, transcriptError.Cause)
}

// Unwrap exposes the underlying cause.
func (transcriptError *TranscriptError) Unwrap() error {
	return transcriptError.Cause
}
