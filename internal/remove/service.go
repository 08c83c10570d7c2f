// Package remove deletes the local checkouts of catalog repositories.
package remove

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/temirov/repofleet/internal/catalog"
	"github.com/temirov/repofleet/internal/console"
)

const (
	missingDirectoryMessageTemplateConstant = "Directory does not exist: %s"
	removedMessageConstant                  = "Successfully removed"
	removeErrorTemplateConstant             = "Failed to remove %s: %w"
)

// ErrConsoleNotConfigured indicates a Service constructed without a console sink.
var ErrConsoleNotConfigured = errors.New("remove console not configured")

// Service removes one repository directory per call.
type Service struct {
	console *console.Console
}

// NewService constructs a remove Service.
func NewService(consoleSink *console.Console) (*Service, error) {
	if consoleSink == nil {
		return nil, ErrConsoleNotConfigured
	}
	return &Service{console: consoleSink}, nil
}

// Remove deletes the repository target directory recursively. A missing directory is reported and is not an error.
func (service *Service) Remove(_ context.Context, repository catalog.Repository) error {
	targetDirectory := catalog.ResolveTargetDirectory(repository)
	if _, statError := os.Lstat(targetDirectory); errors.Is(statError, os.ErrNotExist) {
		service.console.Warn(repository.Name, fmt.Sprintf(missingDirectoryMessageTemplateConstant, targetDirectory))
		return nil
	}

	if removeError := os.RemoveAll(targetDirectory); removeError != nil {
		return fmt.Errorf(removeErrorTemplateConstant, targetDirectory, removeError)
	}

	service.console.Success(repository.Name, removedMessageConstant)
	return nil
}
