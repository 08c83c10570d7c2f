package discovery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/repofleet/internal/catalog"
	"github.com/temirov/repofleet/internal/console"
)

const (
	// DefaultMaxDepth bounds how far below the scan root .git directories are looked for.
	DefaultMaxDepth = 3

	originRemoteNameConstant                = "origin"
	outputExistsTemplateConstant            = "Output file '%s' already exists. Use --overwrite to replace it."
	scanFailureTemplateConstant             = "failed to scan %s: %w"
	workingDirectoryFailureTemplateConstant = "failed to resolve working directory: %w"
	discoveringMessageConstant              = "Discovering Git repositories..."
	noRepositoriesMessageConstant           = "No Git repositories found in current directory"
	foundRepositoriesTemplateConstant       = "Found %d repositories"
	configurationSavedTemplateConstant      = "Configuration saved to '%s'"
	unsupportedRemoteTemplateConstant       = "Skipping repository with unsupported remote URL: %s"
	duplicateNameTemplateConstant           = "Skipping %s, a repository with this name was already found at %s"
	logMessageRemoteMissingConstant         = "repository without origin remote skipped"
	logMessageRepositoryDiscoveredConstant  = "repository discovered"
	logFieldPathConstant                    = "path"
	logFieldURLConstant                     = "url"
	logFieldTagsConstant                    = "tags"
)

var (
	// ErrConsoleNotConfigured indicates an Initializer constructed without a console sink.
	ErrConsoleNotConfigured = errors.New("init console not configured")
	// ErrRemoteReaderNotConfigured indicates an Initializer constructed without a remote reader.
	ErrRemoteReaderNotConfigured = errors.New("init remote reader not configured")
)

// OutputExistsError reports an init output that would be overwritten without --overwrite.
type OutputExistsError struct {
	Path string
}

// Error describes the refusal.
func (existsError *OutputExistsError) Error() string {
	return fmt.Sprintf(outputExistsTemplateConstant, existsError.Path)
}

// RepositoryDiscoverer finds repository directories below a root.
type RepositoryDiscoverer interface {
	DiscoverRepositories(root string, maxDepth int) ([]string, error)
}

// RemoteReader reads the URL of a named git remote.
type RemoteReader interface {
	RemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
}

// InitOptions configures one catalog initialisation.
type InitOptions struct {
	RootDirectory string
	OutputPath    string
	Overwrite     bool
	MaxDepth      int
}

// Initializer writes a catalog describing the git repositories found below a directory.
type Initializer struct {
	console    *console.Console
	discoverer RepositoryDiscoverer
	remotes    RemoteReader
	logger     *zap.Logger
}

// NewInitializer constructs an Initializer. A nil discoverer falls back to the filesystem walker.
func NewInitializer(consoleSink *console.Console, discoverer RepositoryDiscoverer, remotes RemoteReader, logger *zap.Logger) (*Initializer, error) {
	if consoleSink == nil {
		return nil, ErrConsoleNotConfigured
	}
	if remotes == nil {
		return nil, ErrRemoteReaderNotConfigured
	}
	if discoverer == nil {
		discoverer = NewFilesystemRepositoryDiscoverer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Initializer{console: consoleSink, discoverer: discoverer, remotes: remotes, logger: logger}, nil
}

// Initialize scans options.RootDirectory and saves the discovered repositories to options.OutputPath.
// It returns the number of repositories written. Finding nothing is reported and writes no file.
func (initializer *Initializer) Initialize(executionContext context.Context, options InitOptions) (int, error) {
	if _, statError := os.Stat(options.OutputPath); statError == nil && !options.Overwrite {
		return 0, &OutputExistsError{Path: options.OutputPath}
	}

	rootDirectory := options.RootDirectory
	if len(rootDirectory) == 0 {
		workingDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return 0, fmt.Errorf(workingDirectoryFailureTemplateConstant, workingDirectoryError)
		}
		rootDirectory = workingDirectory
	}
	maxDepth := options.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	initializer.console.Banner(discoveringMessageConstant)

	repositoryPaths, discoveryError := initializer.discoverer.DiscoverRepositories(rootDirectory, maxDepth)
	if discoveryError != nil {
		return 0, fmt.Errorf(scanFailureTemplateConstant, rootDirectory, discoveryError)
	}

	repositories := initializer.describeRepositories(executionContext, rootDirectory, repositoryPaths)
	if len(repositories) == 0 {
		initializer.console.Notice(noRepositoriesMessageConstant)
		return 0, nil
	}

	initializer.console.Banner(foundRepositoriesTemplateConstant, len(repositories))
	if saveError := catalog.New(repositories).Save(options.OutputPath); saveError != nil {
		return 0, saveError
	}
	initializer.console.Banner(configurationSavedTemplateConstant, options.OutputPath)
	return len(repositories), nil
}

func (initializer *Initializer) describeRepositories(executionContext context.Context, rootDirectory string, repositoryPaths []string) []catalog.Repository {
	repositories := make([]catalog.Repository, 0, len(repositoryPaths))
	pathsByName := map[string]string{}

	for _, repositoryPath := range repositoryPaths {
		remoteURL, remoteError := initializer.remotes.RemoteURL(executionContext, repositoryPath, originRemoteNameConstant)
		if remoteError != nil || len(remoteURL) == 0 {
			initializer.logger.Debug(logMessageRemoteMissingConstant, zap.String(logFieldPathConstant, repositoryPath), zap.Error(remoteError))
			continue
		}

		relativePath, relativeError := filepath.Rel(rootDirectory, repositoryPath)
		if relativeError != nil {
			relativePath = repositoryPath
		}
		name := filepath.Base(repositoryPath)

		repository := catalog.NewRepositoryBuilder(name, remoteURL).
			WithTags(DetectTags(repositoryPath, relativePath)...).
			WithPath(relativePath).
			Build()

		if !repository.HasValidURL() {
			initializer.console.Warn(name, fmt.Sprintf(unsupportedRemoteTemplateConstant, remoteURL))
			continue
		}
		if existingPath, duplicated := pathsByName[name]; duplicated {
			initializer.console.Warn(name, fmt.Sprintf(duplicateNameTemplateConstant, relativePath, existingPath))
			continue
		}
		pathsByName[name] = relativePath

		initializer.logger.Debug(
			logMessageRepositoryDiscoveredConstant,
			zap.String(logFieldPathConstant, relativePath),
			zap.String(logFieldURLConstant, remoteURL),
			zap.Strings(logFieldTagsConstant, repository.Tags),
		)
		repositories = append(repositories, repository)
	}

	return repositories
}
