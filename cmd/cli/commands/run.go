package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/repofleet/internal/console"
	"github.com/temirov/repofleet/internal/dispatch"
	"github.com/temirov/repofleet/internal/runner"
)

const (
	runCommandUseConstant              = "run <command>"
	runCommandShortDescriptionConstant = "Run a shell command in every repository"
	runCommandLongDescriptionConstant  = "run executes the command through sh in each selected repository, streaming its output and writing a transcript per repository."
	runBannerTemplateConstant          = "Running '%s' in %d repositories..."
	runDoneMessageConstant             = "Done running commands"
	runLogsFlagNameConstant            = "logs"
	runLogsFlagShorthandConstant       = "l"
	runLogsFlagUsageConstant           = "Directory receiving one transcript per repository"
	runNoLogsFlagNameConstant          = "no-logs"
	runNoLogsFlagUsageConstant         = "Do not write transcripts"
	runCommandMissingMessageConstant   = "run requires exactly one command argument"
)

var errRunCommandMissing = errors.New(runCommandMissingMessageConstant)

// RunConfigurationProvider supplies run settings.
type RunConfigurationProvider func() RunConfiguration

// RunCommandBuilder assembles the run subcommand.
type RunCommandBuilder struct {
	Dependencies          Dependencies
	ConfigurationProvider RunConfigurationProvider
}

// Build constructs the run command.
func (builder *RunCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   runCommandUseConstant,
		Short: runCommandShortDescriptionConstant,
		Long:  runCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().StringP(runLogsFlagNameConstant, runLogsFlagShorthandConstant, defaultLogDirectoryConstant, runLogsFlagUsageConstant)
	command.Flags().Bool(runNoLogsFlagNameConstant, false, runNoLogsFlagUsageConstant)

	return command, nil
}

func (builder *RunCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) != 1 || len(strings.TrimSpace(arguments[0])) == 0 {
		return errRunCommandMissing
	}
	shellCommand := arguments[0]
	logDirectory := builder.Dependencies.expandPath(builder.resolveLogDirectory(command))

	logger := builder.Dependencies.logger()
	return builder.Dependencies.runBatch(command, batchPlan{
		operation: dispatch.RunOperation(shellCommand, logDirectory),
		banner: func(repositoryCount int) string {
			return fmt.Sprintf(runBannerTemplateConstant, shellCommand, repositoryCount)
		},
		doneMessage: runDoneMessageConstant,
		executors: func(sink *console.Console) (dispatch.Executors, error) {
			processRunner, runnerError := runner.NewRunner(sink, runner.WithLogger(logger))
			if runnerError != nil {
				return dispatch.Executors{}, runnerError
			}
			return dispatch.Executors{Runner: processRunner}, nil
		},
	})
}

// resolveLogDirectory prefers --no-logs, then --logs, then the configured directory.
func (builder *RunCommandBuilder) resolveLogDirectory(command *cobra.Command) string {
	if disabled, _ := command.Flags().GetBool(runNoLogsFlagNameConstant); disabled {
		return ""
	}
	if command.Flags().Changed(runLogsFlagNameConstant) {
		flagValue, _ := command.Flags().GetString(runLogsFlagNameConstant)
		return strings.TrimSpace(flagValue)
	}
	if builder.ConfigurationProvider != nil {
		if configured := strings.TrimSpace(builder.ConfigurationProvider().LogDirectory); len(configured) > 0 {
			return configured
		}
	}
	return defaultLogDirectoryConstant
}
