package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/repofleet/internal/console"
	"github.com/temirov/repofleet/internal/dispatch"
	"github.com/temirov/repofleet/internal/githubapi"
	"github.com/temirov/repofleet/internal/pullrequest"
)

const (
	pullRequestCommandUseConstant              = "pr"
	pullRequestCommandShortDescriptionConstant = "Open pull requests for repositories with changes"
	pullRequestCommandLongDescriptionConstant  = "pr commits pending changes on a new branch, pushes it and opens a GitHub pull request in every selected repository."
	pullRequestBannerTemplateConstant          = "Checking %d repositories for changes..."
	pullRequestDoneMessageConstant             = "Done processing pull requests"
	titleFlagNameConstant                      = "title"
	titleFlagUsageConstant                     = "Pull request title"
	bodyFlagNameConstant                       = "body"
	bodyFlagUsageConstant                      = "Pull request body"
	branchFlagNameConstant                     = "branch"
	branchFlagUsageConstant                    = "Branch to create (default automated-changes-<random>)"
	baseFlagNameConstant                       = "base"
	baseFlagUsageConstant                      = "Branch the pull request targets"
	messageFlagNameConstant                    = "message"
	messageFlagUsageConstant                   = "Commit message (default the title)"
	draftFlagNameConstant                      = "draft"
	draftFlagUsageConstant                     = "Open the pull request as a draft"
	tokenFlagNameConstant                      = "token"
	tokenFlagUsageConstant                     = "GitHub token (default $GITHUB_TOKEN)"
	createOnlyFlagNameConstant                 = "create-only"
	createOnlyFlagUsageConstant                = "Create and commit the branch locally without pushing or opening a pull request"
)

// PullRequestConfigurationProvider supplies pr settings.
type PullRequestConfigurationProvider func() PullRequestConfiguration

// PullRequestCommandBuilder assembles the pr subcommand.
type PullRequestCommandBuilder struct {
	Dependencies          Dependencies
	ConfigurationProvider PullRequestConfigurationProvider
	// Version is sent in the User-Agent header.
	Version string
	// EnvironmentLookup resolves GITHUB_TOKEN; nil reads the process environment.
	EnvironmentLookup githubapi.EnvironmentLookup
}

// Build constructs the pr command.
func (builder *PullRequestCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   pullRequestCommandUseConstant,
		Short: pullRequestCommandShortDescriptionConstant,
		Long:  pullRequestCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	flagSet := command.Flags()
	flagSet.String(titleFlagNameConstant, defaultPullRequestTitleConstant, titleFlagUsageConstant)
	flagSet.String(bodyFlagNameConstant, defaultPullRequestBodyConstant, bodyFlagUsageConstant)
	flagSet.String(branchFlagNameConstant, "", branchFlagUsageConstant)
	flagSet.String(baseFlagNameConstant, "", baseFlagUsageConstant)
	flagSet.String(messageFlagNameConstant, "", messageFlagUsageConstant)
	flagSet.Bool(draftFlagNameConstant, false, draftFlagUsageConstant)
	flagSet.String(tokenFlagNameConstant, "", tokenFlagUsageConstant)
	flagSet.Bool(createOnlyFlagNameConstant, false, createOnlyFlagUsageConstant)

	return command, nil
}

func (builder *PullRequestCommandBuilder) run(command *cobra.Command, _ []string) error {
	configuration := builder.configuration()
	options := builder.parseOptions(command, configuration)

	var creator pullrequest.PullRequestCreator
	if !options.CreateOnly {
		tokenValue, _ := command.Flags().GetString(tokenFlagNameConstant)
		token, tokenError := githubapi.ResolveToken(tokenValue, builder.EnvironmentLookup)
		if tokenError != nil {
			return tokenError
		}
		client, clientError := githubapi.NewClient(
			command.Context(),
			token,
			githubapi.WithBaseURL(configuration.APIBaseURL),
			githubapi.WithVersion(builder.Version),
			githubapi.WithVerboseHTTP(configuration.VerboseHTTP),
			githubapi.WithLogger(builder.Dependencies.logger()),
		)
		if clientError != nil {
			return clientError
		}
		creator = client
	}

	logger := builder.Dependencies.logger()
	return builder.Dependencies.runBatch(command, batchPlan{
		operation: dispatch.PullRequestOperation(options),
		banner: func(repositoryCount int) string {
			return fmt.Sprintf(pullRequestBannerTemplateConstant, repositoryCount)
		},
		doneMessage: pullRequestDoneMessageConstant,
		executors: func(sink *console.Console) (dispatch.Executors, error) {
			manager, managerError := builder.Dependencies.repositoryManager(logger)
			if managerError != nil {
				return dispatch.Executors{}, managerError
			}
			workflowOptions := []pullrequest.WorkflowOption{pullrequest.WithLogger(logger)}
			if creator != nil {
				workflowOptions = append(workflowOptions, pullrequest.WithPullRequestCreator(creator))
			}
			workflow, workflowError := pullrequest.NewWorkflow(sink, manager, workflowOptions...)
			if workflowError != nil {
				return dispatch.Executors{}, workflowError
			}
			return dispatch.Executors{PullRequest: workflow}, nil
		},
	})
}

func (builder *PullRequestCommandBuilder) configuration() PullRequestConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultToolsConfiguration().PullRequest
	}
	return builder.ConfigurationProvider()
}

// parseOptions lets explicit flags win over settings and settings win over flag defaults.
func (builder *PullRequestCommandBuilder) parseOptions(command *cobra.Command, configuration PullRequestConfiguration) pullrequest.Options {
	flagSet := command.Flags()
	branchValue, _ := flagSet.GetString(branchFlagNameConstant)
	messageValue, _ := flagSet.GetString(messageFlagNameConstant)
	draftValue, _ := flagSet.GetBool(draftFlagNameConstant)
	createOnlyValue, _ := flagSet.GetBool(createOnlyFlagNameConstant)

	return pullrequest.Options{
		Title:         stringSetting(command, titleFlagNameConstant, configuration.Title, defaultPullRequestTitleConstant),
		Body:          stringSetting(command, bodyFlagNameConstant, configuration.Body, defaultPullRequestBodyConstant),
		BranchName:    strings.TrimSpace(branchValue),
		BaseBranch:    stringSetting(command, baseFlagNameConstant, configuration.BaseBranch, defaultBaseBranchConstant),
		CommitMessage: messageValue,
		Draft:         draftValue,
		CreateOnly:    createOnlyValue,
	}
}

func stringSetting(command *cobra.Command, flagName string, configured string, fallback string) string {
	if command.Flags().Changed(flagName) {
		flagValue, _ := command.Flags().GetString(flagName)
		return flagValue
	}
	if len(strings.TrimSpace(configured)) > 0 {
		return configured
	}
	return fallback
}
