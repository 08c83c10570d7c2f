package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repofleet/internal/console"
	"github.com/temirov/repofleet/internal/dispatch"
	"github.com/temirov/repofleet/internal/execshell"
	"github.com/temirov/repofleet/internal/gitrepo"
	"github.com/temirov/repofleet/internal/ui"
	"github.com/temirov/repofleet/internal/utils"
)

// LoggerProvider supplies the diagnostic logger.
type LoggerProvider func() *zap.Logger

// ConsoleProvider supplies the user-facing output sink.
type ConsoleProvider func() *console.Console

// SelectionProvider supplies the persistent repository selectors.
type SelectionProvider func() Selection

// Selection captures the flags shared by every catalog-driven subcommand.
type Selection struct {
	Tag        string
	Names      []string
	Concurrent bool
}

// Dependencies carries what every subcommand builder needs.
type Dependencies struct {
	LoggerProvider    LoggerProvider
	ConsoleProvider   ConsoleProvider
	SelectionProvider SelectionProvider
	// GitExecutor replaces the git binary; nil runs git through the operating system.
	GitExecutor gitrepo.GitExecutor
	// HomeExpander rewrites a leading ~ in path flags; nil uses the current user's home.
	HomeExpander *utils.HomeExpander
}

func (dependencies Dependencies) expandPath(candidatePath string) string {
	expander := dependencies.HomeExpander
	if expander == nil {
		expander = utils.NewHomeExpander(nil)
	}
	return expander.Expand(candidatePath)
}

func (dependencies Dependencies) logger() *zap.Logger {
	if dependencies.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := dependencies.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (dependencies Dependencies) console() *console.Console {
	if dependencies.ConsoleProvider == nil {
		return console.New(nil, nil)
	}
	sink := dependencies.ConsoleProvider()
	if sink == nil {
		return console.New(nil, nil)
	}
	return sink
}

func (dependencies Dependencies) selection() Selection {
	if dependencies.SelectionProvider == nil {
		return Selection{}
	}
	return dependencies.SelectionProvider()
}

// catalogPath reads the catalog chosen by --config from the command context.
func catalogPath(command *cobra.Command) string {
	if command != nil {
		if path, found := utils.NewCommandContextAccessor().CatalogPath(command.Context()); found && len(path) > 0 {
			return path
		}
	}
	return defaultCatalogPathConstant
}

func (dependencies Dependencies) repositoryManager(logger *zap.Logger) (*gitrepo.RepositoryManager, error) {
	if dependencies.GitExecutor != nil {
		return gitrepo.NewRepositoryManager(dependencies.GitExecutor)
	}

	shellExecutor, executorError := execshell.NewShellExecutor(
		logger,
		execshell.NewOSCommandRunner(),
		execshell.WithCommandEventObserver(ui.NewCommandTraceLogger(logger)),
	)
	if executorError != nil {
		return nil, executorError
	}
	return gitrepo.NewRepositoryManager(shellExecutor)
}

func (dependencies Dependencies) dispatcher(sink *console.Console, logger *zap.Logger, executors dispatch.Executors) (*dispatch.Dispatcher, error) {
	return dispatch.NewDispatcher(sink, executors, dispatch.WithLogger(logger))
}
