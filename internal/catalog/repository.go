package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	sshURLPrefixConstant                 = "git@"
	sshSchemeURLPrefixConstant           = "ssh://"
	httpsURLPrefixConstant               = "https://"
	httpURLPrefixConstant                = "http://"
	defaultCloneDirectoryNameConstant    = "cloned_repos"
	currentDirectoryFallbackConstant     = "."
	emptyRepositoryNameMessageConstant   = "Repository name cannot be empty"
	emptyRepositoryURLMessageConstant    = "Repository URL cannot be empty"
	invalidRepositoryURLTemplateConstant = "Invalid repository URL: %s"
)

// Repository describes a single catalog entry.
type Repository struct {
	Name   string   `yaml:"name"`
	URL    string   `yaml:"url"`
	Tags   []string `yaml:"tags"`
	Path   string   `yaml:"path,omitempty"`
	Branch string   `yaml:"branch,omitempty"`

	// CatalogDirectory is the directory of the catalog file this entry was loaded from.
	CatalogDirectory string `yaml:"-"`
}

// HasTag reports whether the repository carries the provided tag.
func (repository Repository) HasTag(tag string) bool {
	for _, repositoryTag := range repository.Tags {
		if repositoryTag == tag {
			return true
		}
	}
	return false
}

// HasValidURL reports whether the URL uses a recognized SSH or HTTP(S) shape.
func (repository Repository) HasValidURL() bool {
	return strings.HasPrefix(repository.URL, sshURLPrefixConstant) ||
		strings.HasPrefix(repository.URL, sshSchemeURLPrefixConstant) ||
		strings.HasPrefix(repository.URL, httpsURLPrefixConstant) ||
		strings.HasPrefix(repository.URL, httpURLPrefixConstant)
}

// Validate checks the invariants of a single repository entry.
func (repository Repository) Validate() error {
	if len(repository.Name) == 0 {
		return errors.New(emptyRepositoryNameMessageConstant)
	}
	if len(repository.URL) == 0 {
		return errors.New(emptyRepositoryURLMessageConstant)
	}
	if !repository.HasValidURL() {
		return fmt.Errorf(invalidRepositoryURLTemplateConstant, repository.URL)
	}
	return nil
}

// ResolveTargetDirectory resolves the working directory of a repository.
//
// Absolute paths are returned unchanged. Relative paths, and the default
// cloned_repos/<name> location, are joined with the catalog directory, or
// with the process working directory when the catalog directory is unknown.
func ResolveTargetDirectory(repository Repository) string {
	return resolveTargetDirectory(repository, os.Getwd)
}

func resolveTargetDirectory(repository Repository, workingDirectoryProvider func() (string, error)) string {
	if len(repository.Path) > 0 && filepath.IsAbs(repository.Path) {
		return repository.Path
	}

	relativePath := repository.Path
	if len(relativePath) == 0 {
		relativePath = filepath.Join(defaultCloneDirectoryNameConstant, repository.Name)
	}

	baseDirectory := repository.CatalogDirectory
	if len(baseDirectory) == 0 {
		workingDirectory, workingDirectoryError := workingDirectoryProvider()
		if workingDirectoryError != nil {
			workingDirectory = currentDirectoryFallbackConstant
		}
		baseDirectory = workingDirectory
	}

	return filepath.Join(baseDirectory, relativePath)
}
