package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/repofleet/internal/console"
	"github.com/temirov/repofleet/internal/dispatch"
	"github.com/temirov/repofleet/internal/remove"
)

const (
	removeCommandUseConstant              = "rm"
	removeCommandShortDescriptionConstant = "Remove cloned repositories"
	removeCommandLongDescriptionConstant  = "rm deletes the working directory of every selected repository."
	removeBannerTemplateConstant          = "Removing %d repositories..."
	removeDoneMessageConstant             = "Done removing repositories"
)

// RemoveCommandBuilder assembles the rm subcommand.
type RemoveCommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the rm command.
func (builder *RemoveCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   removeCommandUseConstant,
		Short: removeCommandShortDescriptionConstant,
		Long:  removeCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}, nil
}

func (builder *RemoveCommandBuilder) run(command *cobra.Command, _ []string) error {
	return builder.Dependencies.runBatch(command, batchPlan{
		operation: dispatch.RemoveOperation(),
		banner: func(repositoryCount int) string {
			return fmt.Sprintf(removeBannerTemplateConstant, repositoryCount)
		},
		doneMessage: removeDoneMessageConstant,
		executors: func(sink *console.Console) (dispatch.Executors, error) {
			service, serviceError := remove.NewService(sink)
			if serviceError != nil {
				return dispatch.Executors{}, serviceError
			}
			return dispatch.Executors{Remover: service}, nil
		},
	})
}
