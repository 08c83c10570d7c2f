package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/repofleet/internal/clone"
	"github.com/temirov/repofleet/internal/console"
	"github.com/temirov/repofleet/internal/dispatch"
)

const (
	cloneCommandUseConstant              = "clone"
	cloneCommandShortDescriptionConstant = "Clone repositories listed in the catalog"
	cloneCommandLongDescriptionConstant  = "clone fetches every selected repository that is not yet present on disk."
	cloneBannerTemplateConstant          = "Cloning %d repositories..."
	cloneDoneMessageConstant             = "Done cloning repositories"
)

// CloneCommandBuilder assembles the clone subcommand.
type CloneCommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the clone command.
func (builder *CloneCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   cloneCommandUseConstant,
		Short: cloneCommandShortDescriptionConstant,
		Long:  cloneCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}, nil
}

func (builder *CloneCommandBuilder) run(command *cobra.Command, _ []string) error {
	logger := builder.Dependencies.logger()
	return builder.Dependencies.runBatch(command, batchPlan{
		operation: dispatch.CloneOperation(),
		banner: func(repositoryCount int) string {
			return fmt.Sprintf(cloneBannerTemplateConstant, repositoryCount)
		},
		doneMessage: cloneDoneMessageConstant,
		executors: func(sink *console.Console) (dispatch.Executors, error) {
			manager, managerError := builder.Dependencies.repositoryManager(logger)
			if managerError != nil {
				return dispatch.Executors{}, managerError
			}
			service, serviceError := clone.NewService(sink, manager, logger)
			if serviceError != nil {
				return dispatch.Executors{}, serviceError
			}
			return dispatch.Executors{Cloner: service}, nil
		},
	})
}
