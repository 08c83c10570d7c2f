// Package console renders user-facing, repository-prefixed output.
//
// A Console is an explicit output sink carried through the call graph. It owns
// its writers and its color styles, so nothing here mutates the process-wide
// color state of github.com/fatih/color. Every call writes one complete line
// under a mutex, which keeps lines from concurrently running repositories from
// interleaving mid-line.
package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

const (
	repositoryLineTemplateConstant = "%s | %s\n"
	plainLineTemplateConstant      = "%s\n"
)

// Console writes styled lines to standard output and standard error streams.
type Console struct {
	mutex          sync.Mutex
	standardOutput io.Writer
	standardError  io.Writer

	repositoryStyle   *color.Color
	outputPrefixStyle *color.Color
	errorPrefixStyle  *color.Color
	successStyle      *color.Color
	warningStyle      *color.Color
	failureStyle      *color.Color
}

// Option customizes Console construction.
type Option func(*Console)

// WithColor forces styled output on or off regardless of terminal detection.
func WithColor(enabled bool) Option {
	return func(target *Console) {
		for _, style := range target.styles() {
			if enabled {
				style.EnableColor()
			} else {
				style.DisableColor()
			}
		}
	}
}

// New constructs a Console writing to the provided streams; nil streams fall back to the process streams.
func New(standardOutput io.Writer, standardError io.Writer, options ...Option) *Console {
	if standardOutput == nil {
		standardOutput = os.Stdout
	}
	if standardError == nil {
		standardError = os.Stderr
	}

	created := &Console{
		standardOutput:    standardOutput,
		standardError:     standardError,
		repositoryStyle:   color.New(color.FgCyan, color.Bold),
		outputPrefixStyle: color.New(color.FgCyan),
		errorPrefixStyle:  color.New(color.FgRed, color.Bold),
		successStyle:      color.New(color.FgGreen),
		warningStyle:      color.New(color.FgYellow),
		failureStyle:      color.New(color.FgRed),
	}

	for _, option := range options {
		if option != nil {
			option(created)
		}
	}

	return created
}

// Discard returns a Console that drops every line.
func Discard() *Console {
	return New(io.Discard, io.Discard, WithColor(false))
}

// Info prints an informational repository line.
func (sink *Console) Info(repositoryName string, message string) {
	sink.writeRepositoryLine(sink.standardOutput, sink.repositoryStyle, repositoryName, message)
}

// Success prints a green repository line.
func (sink *Console) Success(repositoryName string, message string) {
	sink.writeRepositoryLine(sink.standardOutput, sink.repositoryStyle, repositoryName, sink.successStyle.Sprint(message))
}

// Warn prints a yellow repository line.
func (sink *Console) Warn(repositoryName string, message string) {
	sink.writeRepositoryLine(sink.standardOutput, sink.repositoryStyle, repositoryName, sink.warningStyle.Sprint(message))
}

// Error prints a red repository line to the error stream.
func (sink *Console) Error(repositoryName string, message string) {
	sink.writeRepositoryLine(sink.standardError, sink.repositoryStyle, repositoryName, sink.failureStyle.Sprint(message))
}

// StandardOutputLine echoes a child process stdout line.
func (sink *Console) StandardOutputLine(repositoryName string, line string) {
	sink.writeRepositoryLine(sink.standardOutput, sink.outputPrefixStyle, repositoryName, line)
}

// StandardErrorLine echoes a child process stderr line to the error stream.
func (sink *Console) StandardErrorLine(repositoryName string, line string) {
	sink.writeRepositoryLine(sink.standardError, sink.errorPrefixStyle, repositoryName, line)
}

// Banner prints a green line without a repository prefix.
func (sink *Console) Banner(format string, arguments ...any) {
	sink.writePlainLine(sink.standardOutput, sink.successStyle.Sprintf(format, arguments...))
}

// Notice prints a yellow line without a repository prefix.
func (sink *Console) Notice(format string, arguments ...any) {
	sink.writePlainLine(sink.standardOutput, sink.warningStyle.Sprintf(format, arguments...))
}

// Failure prints a red line without a repository prefix to the error stream.
func (sink *Console) Failure(format string, arguments ...any) {
	sink.writePlainLine(sink.standardError, sink.failureStyle.Sprintf(format, arguments...))
}

func (sink *Console) writeRepositoryLine(writer io.Writer, prefixStyle *color.Color, repositoryName string, message string) {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	fmt.Fprintf(writer, repositoryLineTemplateConstant, prefixStyle.Sprint(repositoryName), message)
}

func (sink *Console) writePlainLine(writer io.Writer, message string) {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	fmt.Fprintf(writer, plainLineTemplateConstant, message)
}

func (sink *Console) styles() []*color.Color {
	return []*color.Color{
		sink.repositoryStyle,
		sink.outputPrefixStyle,
		sink.errorPrefixStyle,
		sink.successStyle,
		sink.warningStyle,
		sink.failureStyle,
	}
}
