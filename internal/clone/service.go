// Package clone materializes catalog repositories on disk with git clone.
package clone

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/repofleet/internal/catalog"
	"github.com/temirov/repofleet/internal/console"
)

const (
	existingDirectoryMessageConstant      = "Repository directory already exists, skipping"
	cloningBranchMessageTemplateConstant  = "Cloning branch '%s' from %s"
	cloningDefaultMessageTemplateConstant = "Cloning default branch from %s"
	clonedMessageConstant                 = "Successfully cloned"
	logMessageCloneSkippedConstant        = "clone target exists"
	logFieldRepositoryConstant            = "repository"
	logFieldTargetConstant                = "target"
)

var (
	// ErrConsoleNotConfigured indicates a Service constructed without a console sink.
	ErrConsoleNotConfigured = errors.New("clone console not configured")
	// ErrClonerNotConfigured indicates a Service constructed without a git cloner.
	ErrClonerNotConfigured = errors.New("clone git cloner not configured")
)

// GitCloner clones a remote into a target directory.
type GitCloner interface {
	Clone(executionContext context.Context, remoteURL string, branch string, targetDirectory string) error
}

// Service clones one repository per call.
type Service struct {
	console *console.Console
	cloner  GitCloner
	logger  *zap.Logger
}

// NewService constructs a clone Service. A nil logger falls back to a no-op logger.
func NewService(consoleSink *console.Console, cloner GitCloner, logger *zap.Logger) (*Service, error) {
	if consoleSink == nil {
		return nil, ErrConsoleNotConfigured
	}
	if cloner == nil {
		return nil, ErrClonerNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{console: consoleSink, cloner: cloner, logger: logger}, nil
}

// Clone clones repository into its target directory. An existing target is left untouched.
func (service *Service) Clone(executionContext context.Context, repository catalog.Repository) error {
	targetDirectory := catalog.ResolveTargetDirectory(repository)
	if _, statError := os.Stat(targetDirectory); statError == nil {
		service.console.Warn(repository.Name, existingDirectoryMessageConstant)
		service.logger.Debug(logMessageCloneSkippedConstant, zap.String(logFieldRepositoryConstant, repository.Name), zap.String(logFieldTargetConstant, targetDirectory))
		return nil
	}

	if len(repository.Branch) > 0 {
		service.console.Info(repository.Name, fmt.Sprintf(cloningBranchMessageTemplateConstant, repository.Branch, repository.URL))
	} else {
		service.console.Info(repository.Name, fmt.Sprintf(cloningDefaultMessageTemplateConstant, repository.URL))
	}

	if cloneError := service.cloner.Clone(executionContext, repository.URL, repository.Branch, targetDirectory); cloneError != nil {
		return cloneError
	}

	service.console.Success(repository.Name, clonedMessageConstant)
	return nil
}
