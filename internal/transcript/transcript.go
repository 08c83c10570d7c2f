// Package transcript persists the output of one command invocation in one repository.
//
// A Transcript starts with a header naming the repository, the command, the
// working directory and the start time, followed by the stdout section. The
// first stderr line introduces a single stderr marker. Both stream pumps of an
// invocation append through the same Transcript, whose lock writes each line
// atomically and flushes it to disk before returning.
package transcript

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/temirov/repofleet/internal/utils"
)

const (
	fileNameTemplateConstant               = "%s_%s.log"
	collisionFileNameTemplateConstant      = "%s_%s_%d.log"
	fileTimestampLayoutConstant            = "20060102_150405"
	headerTemplateConstant                 = "Repository: %s\nCommand: %s\nDirectory: %s\nTimestamp: %s\n\n=== STDOUT ===\n"
	standardErrorMarkerConstant            = "\n=== STDERR ===\n"
	lineTerminatorConstant                 = "\n"
	directoryPermissionsConstant           = 0o755
	filePermissionsConstant                = 0o644
	maximumCollisionAttemptsConstant       = 1000
	fileNameSeparatorReplacementConstant   = "_"
	createDirectoryErrorTemplateConstant   = "unable to create transcript directory %s: %w"
	createFileErrorTemplateConstant        = "unable to create transcript in %s: %w"
	writeHeaderErrorTemplateConstant       = "unable to write transcript header to %s: %w"
	writeLineErrorTemplateConstant         = "unable to append to transcript %s: %w"
	closeErrorTemplateConstant             = "unable to close transcript %s: %w"
	exhaustedFileNamesErrorMessageConstant = "no free transcript file name"
)

// StandardErrorMarker is the line introducing the stderr section.
const StandardErrorMarker = "=== STDERR ==="

// ErrTranscriptClosed indicates an append after Close.
var ErrTranscriptClosed = errors.New("transcript closed")

var errExhaustedFileNames = errors.New(exhaustedFileNamesErrorMessageConstant)

// Header describes the invocation a transcript records.
type Header struct {
	RepositoryName string
	Command        string
	Directory      string
	StartedAt      time.Time
}

// Transcript is an append-only, line-flushed log file owned by one invocation.
type Transcript struct {
	mutex                sync.Mutex
	path                 string
	file                 *os.File
	writer               io.Writer
	standardErrorStarted bool
	closed               bool
}

// Open creates directory when needed, creates a fresh transcript file and writes the header.
//
// The file is named <repository>_<yyyyMMdd_HHmmss>.log using the UTC start
// time. An existing file is never reused; a numeric suffix is added instead.
func Open(directory string, header Header) (*Transcript, error) {
	if mkdirError := os.MkdirAll(directory, directoryPermissionsConstant); mkdirError != nil {
		return nil, fmt.Errorf(createDirectoryErrorTemplateConstant, directory, mkdirError)
	}

	file, createError := createExclusive(directory, header)
	if createError != nil {
		return nil, fmt.Errorf(createFileErrorTemplateConstant, directory, createError)
	}

	created := &Transcript{
		path:   file.Name(),
		file:   file,
		writer: utils.NewFlushingWriter(bufio.NewWriter(file)),
	}

	headerText := fmt.Sprintf(headerTemplateConstant, header.RepositoryName, header.Command, header.Directory, header.StartedAt.UTC().Format(time.RFC3339))
	if _, writeError := io.WriteString(created.writer, headerText); writeError != nil {
		_ = file.Close()
		return nil, fmt.Errorf(writeHeaderErrorTemplateConstant, created.path, writeError)
	}

	return created, nil
}

// Path returns the transcript file location.
func (transcript *Transcript) Path() string {
	return transcript.path
}

// AppendStandardOutput appends one stdout line.
func (transcript *Transcript) AppendStandardOutput(line string) error {
	transcript.mutex.Lock()
	defer transcript.mutex.Unlock()
	return transcript.appendLocked(line)
}

// AppendStandardError appends one stderr line, preceded by the stderr marker the first time.
func (transcript *Transcript) AppendStandardError(line string) error {
	transcript.mutex.Lock()
	defer transcript.mutex.Unlock()

	if transcript.closed {
		return ErrTranscriptClosed
	}
	if !transcript.standardErrorStarted {
		if _, writeError := io.WriteString(transcript.writer, standardErrorMarkerConstant); writeError != nil {
			return fmt.Errorf(writeLineErrorTemplateConstant, transcript.path, writeError)
		}
		transcript.standardErrorStarted = true
	}
	return transcript.appendLocked(line)
}

// Close flushes and closes the file. Further appends fail with ErrTranscriptClosed.
func (transcript *Transcript) Close() error {
	transcript.mutex.Lock()
	defer transcript.mutex.Unlock()

	if transcript.closed {
		return nil
	}
	transcript.closed = true

	if flusher, flushable := transcript.writer.(utils.Flusher); flushable {
		if flushError := flusher.Flush(); flushError != nil {
			_ = transcript.file.Close()
			return fmt.Errorf(closeErrorTemplateConstant, transcript.path, flushError)
		}
	}
	if closeError := transcript.file.Close(); closeError != nil {
		return fmt.Errorf(closeErrorTemplateConstant, transcript.path, closeError)
	}
	return nil
}

func (transcript *Transcript) appendLocked(line string) error {
	if transcript.closed {
		return ErrTranscriptClosed
	}
	if _, writeError := io.WriteString(transcript.writer, line+lineTerminatorConstant); writeError != nil {
		return fmt.Errorf(writeLineErrorTemplateConstant, transcript.path, writeError)
	}
	return nil
}

// FileName returns the base transcript name for a repository and start time.
func FileName(repositoryName string, startedAt time.Time) string {
	return fmt.Sprintf(fileNameTemplateConstant, sanitizeRepositoryName(repositoryName), startedAt.UTC().Format(fileTimestampLayoutConstant))
}

func createExclusive(directory string, header Header) (*os.File, error) {
	repositoryName := sanitizeRepositoryName(header.RepositoryName)
	timestamp := header.StartedAt.UTC().Format(fileTimestampLayoutConstant)

	for attempt := 0; attempt < maximumCollisionAttemptsConstant; attempt++ {
		fileName := FileName(header.RepositoryName, header.StartedAt)
		if attempt > 0 {
			fileName = fmt.Sprintf(collisionFileNameTemplateConstant, repositoryName, timestamp, attempt)
		}

		file, openError := os.OpenFile(filepath.Join(directory, fileName), os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePermissionsConstant)
		if openError == nil {
			return file, nil
		}
		if !errors.Is(openError, fs.ErrExist) {
			return nil, openError
		}
	}

	return nil, errExhaustedFileNames
}

func sanitizeRepositoryName(repositoryName string) string {
	replacer := strings.NewReplacer("/", fileNameSeparatorReplacementConstant, string(os.PathSeparator), fileNameSeparatorReplacementConstant)
	return replacer.Replace(repositoryName)
}
