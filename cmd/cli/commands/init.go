package commands

import (
	"github.com/spf13/cobra"

	"github.com/temirov/repofleet/internal/discovery"
	"github.com/temirov/repofleet/internal/dispatch"
)

const (
	initCommandUseConstant              = "init"
	initCommandShortDescriptionConstant = "Write a catalog from the Git repositories below the current directory"
	initCommandLongDescriptionConstant  = "init scans the working tree for Git repositories with an origin remote and writes them, with detected tags, to a catalog file."
	outputFlagNameConstant              = "output"
	outputFlagShorthandConstant         = "o"
	outputFlagUsageConstant             = "Catalog file to write"
	overwriteFlagNameConstant           = "overwrite"
	overwriteFlagUsageConstant          = "Replace the output file when it already exists"
)

// InitConfigurationProvider supplies init settings.
type InitConfigurationProvider func() InitConfiguration

// InitCommandBuilder assembles the init subcommand.
type InitCommandBuilder struct {
	Dependencies          Dependencies
	ConfigurationProvider InitConfigurationProvider
	// WorkingDirectory is the scan root; empty means the process working directory.
	WorkingDirectory string
}

// Build constructs the init command.
func (builder *InitCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   initCommandUseConstant,
		Short: initCommandShortDescriptionConstant,
		Long:  initCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().StringP(outputFlagNameConstant, outputFlagShorthandConstant, DefaultCatalogPath, outputFlagUsageConstant)
	command.Flags().Bool(overwriteFlagNameConstant, false, overwriteFlagUsageConstant)

	return command, nil
}

func (builder *InitCommandBuilder) run(command *cobra.Command, _ []string) error {
	outputPath, _ := command.Flags().GetString(outputFlagNameConstant)
	overwrite, _ := command.Flags().GetBool(overwriteFlagNameConstant)

	maxDepth := discovery.DefaultMaxDepth
	if builder.ConfigurationProvider != nil {
		maxDepth = builder.ConfigurationProvider().MaxDepth
	}

	logger := builder.Dependencies.logger()
	sink := builder.Dependencies.console()
	manager, managerError := builder.Dependencies.repositoryManager(logger)
	if managerError != nil {
		return managerError
	}
	initializer, initializerError := discovery.NewInitializer(sink, nil, manager, logger)
	if initializerError != nil {
		return initializerError
	}
	dispatcher, dispatcherError := builder.Dependencies.dispatcher(sink, logger, dispatch.Executors{Initializer: initializer})
	if dispatcherError != nil {
		return dispatcherError
	}

	_, executeError := dispatcher.Execute(command.Context(), nil, dispatch.InitOperation(discovery.InitOptions{
		RootDirectory: builder.WorkingDirectory,
		OutputPath:    builder.Dependencies.expandPath(outputPath),
		Overwrite:     overwrite,
		MaxDepth:      maxDepth,
	}), false)
	return executeError
}
