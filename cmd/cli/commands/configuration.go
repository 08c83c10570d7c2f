package commands

import (
	"github.com/temirov/repofleet/internal/discovery"
	"github.com/temirov/repofleet/internal/pullrequest"
)

// DefaultCatalogPath is the catalog read when --config is not given.
const DefaultCatalogPath = "config.yaml"

const (
	defaultCatalogPathConstant                 = DefaultCatalogPath
	defaultLogDirectoryConstant                = "logs"
	defaultPullRequestTitleConstant            = "Automated changes"
	defaultPullRequestBodyConstant             = "This PR was created automatically"
	defaultBaseBranchConstant                  = pullrequest.DefaultBaseBranch
	runLogDirectoryConfigurationKeyConstant    = "log_directory"
	pullRequestTitleConfigurationKeyConstant   = "title"
	pullRequestBodyConfigurationKeyConstant    = "body"
	pullRequestBaseConfigurationKeyConstant    = "base_branch"
	pullRequestAPIConfigurationKeyConstant     = "api_base_url"
	pullRequestVerboseConfigurationKeyConstant = "verbose_http"
	initMaxDepthConfigurationKeyConstant       = "max_depth"
	configurationKeySeparatorConstant          = "."
	runSectionKeyConstant                      = "run"
	pullRequestSectionKeyConstant              = "pr"
	initSectionKeyConstant                     = "init"
)

// ToolsConfiguration groups the per-subcommand settings stored under tools.
type ToolsConfiguration struct {
	Run         RunConfiguration         `mapstructure:"run"`
	PullRequest PullRequestConfiguration `mapstructure:"pr"`
	Init        InitConfiguration        `mapstructure:"init"`
}

// RunConfiguration holds settings for the run subcommand.
type RunConfiguration struct {
	LogDirectory string `mapstructure:"log_directory"`
}

// PullRequestConfiguration holds settings for the pr subcommand.
type PullRequestConfiguration struct {
	Title       string `mapstructure:"title"`
	Body        string `mapstructure:"body"`
	BaseBranch  string `mapstructure:"base_branch"`
	APIBaseURL  string `mapstructure:"api_base_url"`
	VerboseHTTP bool   `mapstructure:"verbose_http"`
}

// InitConfiguration holds settings for the init subcommand.
type InitConfiguration struct {
	MaxDepth int `mapstructure:"max_depth"`
}

// DefaultToolsConfiguration returns the settings used when nothing overrides them.
func DefaultToolsConfiguration() ToolsConfiguration {
	return ToolsConfiguration{
		Run: RunConfiguration{LogDirectory: defaultLogDirectoryConstant},
		PullRequest: PullRequestConfiguration{
			Title:      defaultPullRequestTitleConstant,
			Body:       defaultPullRequestBodyConstant,
			BaseBranch: defaultBaseBranchConstant,
		},
		Init: InitConfiguration{MaxDepth: discovery.DefaultMaxDepth},
	}
}

// DefaultConfigurationValues flattens DefaultToolsConfiguration into viper keys below prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultToolsConfiguration()
	runPrefix := joinKey(prefix, runSectionKeyConstant)
	pullRequestPrefix := joinKey(prefix, pullRequestSectionKeyConstant)
	initPrefix := joinKey(prefix, initSectionKeyConstant)

	values := map[string]any{}
	values[joinKey(runPrefix, runLogDirectoryConfigurationKeyConstant)] = defaults.Run.LogDirectory
	values[joinKey(pullRequestPrefix, pullRequestTitleConfigurationKeyConstant)] = defaults.PullRequest.Title
	values[joinKey(pullRequestPrefix, pullRequestBodyConfigurationKeyConstant)] = defaults.PullRequest.Body
	values[joinKey(pullRequestPrefix, pullRequestBaseConfigurationKeyConstant)] = defaults.PullRequest.BaseBranch
	values[joinKey(pullRequestPrefix, pullRequestAPIConfigurationKeyConstant)] = defaults.PullRequest.APIBaseURL
	values[joinKey(pullRequestPrefix, pullRequestVerboseConfigurationKeyConstant)] = defaults.PullRequest.VerboseHTTP
	values[joinKey(initPrefix, initMaxDepthConfigurationKeyConstant)] = defaults.Init.MaxDepth
	return values
}

func joinKey(parts ...string) string {
	key := ""
	for _, part := range parts {
		if len(part) == 0 {
			continue
		}
		if len(key) > 0 {
			key += configurationKeySeparatorConstant
		}
		key += part
	}
	return key
}
