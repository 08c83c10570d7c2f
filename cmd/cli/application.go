package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/repofleet/cmd/cli/commands"
	"github.com/temirov/repofleet/internal/catalog"
	"github.com/temirov/repofleet/internal/console"
	"github.com/temirov/repofleet/internal/gitrepo"
	"github.com/temirov/repofleet/internal/utils"
)

const (
	applicationNameConstant                 = "repofleet"
	applicationShortDescriptionConstant     = "Bulk operations across a fleet of Git repositories"
	applicationLongDescriptionConstant      = "repofleet clones, runs commands in, opens pull requests for and removes the repositories declared in a YAML catalog."
	configFileFlagNameConstant              = "config"
	configFileFlagShorthandConstant         = "c"
	configFileFlagUsageConstant             = "Catalog file listing the repositories; it may also carry common and tools settings."
	tagFlagNameConstant                     = "tag"
	tagFlagShorthandConstant                = "t"
	tagFlagUsageConstant                    = "Only act on repositories carrying this tag."
	reposFlagNameConstant                   = "repos"
	reposFlagShorthandConstant              = "r"
	reposFlagUsageConstant                  = "Only act on these comma-separated repository names."
	parallelFlagNameConstant                = "parallel"
	parallelFlagShorthandConstant           = "p"
	parallelFlagUsageConstant               = "Operate on every selected repository at once."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	toolsConfigurationKeyConstant           = "tools"
	environmentPrefixConstant               = "REPOFLEET"
	configurationTypeConstant               = "yaml"
	environmentFileNameConstant             = ".env"
	noColorEnvironmentVariableConstant      = "NO_COLOR"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	environmentFileFieldConstant            = "environment_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	environmentLoadErrorTemplateConstant    = "unable to load environment file %s: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	commandBuildErrorTemplateConstant       = "unable to build %s command: %v"
)

// applicationVersion is replaced at link time with -ldflags "-X".
var applicationVersion = "dev"

// ApplicationConfiguration describes the settings read from the embedded defaults, the catalog file and the environment.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  commands.ToolsConfiguration    `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationOption customizes an Application.
type ApplicationOption func(*Application)

// WithStandardStreams redirects console output and diagnostics.
func WithStandardStreams(standardOutput io.Writer, standardError io.Writer) ApplicationOption {
	return func(application *Application) {
		if standardOutput != nil {
			application.standardOutput = standardOutput
		}
		if standardError != nil {
			application.standardError = standardError
		}
	}
}

// WithGitExecutor replaces the git binary used by clone, pr and init.
func WithGitExecutor(executor gitrepo.GitExecutor) ApplicationOption {
	return func(application *Application) {
		application.gitExecutor = executor
	}
}

// WithWorkingDirectory sets the directory init scans.
func WithWorkingDirectory(workingDirectory string) ApplicationOption {
	return func(application *Application) {
		application.workingDirectory = workingDirectory
	}
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	logger                 *zap.Logger
	console                *console.Console
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	catalogPath            string
	selection              commands.Selection
	logLevelFlagValue      string
	logFormatFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
	homeExpander           *utils.HomeExpander
	standardOutput         io.Writer
	standardError          io.Writer
	gitExecutor            gitrepo.GitExecutor
	workingDirectory       string
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication(options ...ApplicationOption) *Application {
	configurationLoader := utils.NewConfigurationLoader(configurationTypeConstant, environmentPrefixConstant)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:    configurationLoader,
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		homeExpander:           utils.NewHomeExpander(nil),
		standardOutput:         os.Stdout,
		standardError:          os.Stderr,
	}
	for _, option := range options {
		if option != nil {
			option(application)
		}
	}
	application.console = console.New(application.standardOutput, application.standardError, console.WithColor(false))

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       applicationVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.SetOut(application.standardOutput)
	cobraCommand.SetErr(application.standardError)

	persistentFlags := cobraCommand.PersistentFlags()
	persistentFlags.StringVarP(&application.catalogPath, configFileFlagNameConstant, configFileFlagShorthandConstant, commands.DefaultCatalogPath, configFileFlagUsageConstant)
	persistentFlags.StringVarP(&application.selection.Tag, tagFlagNameConstant, tagFlagShorthandConstant, "", tagFlagUsageConstant)
	persistentFlags.StringSliceVarP(&application.selection.Names, reposFlagNameConstant, reposFlagShorthandConstant, nil, reposFlagUsageConstant)
	persistentFlags.BoolVarP(&application.selection.Concurrent, parallelFlagNameConstant, parallelFlagShorthandConstant, false, parallelFlagUsageConstant)
	persistentFlags.StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	persistentFlags.StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	dependencies := commands.Dependencies{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConsoleProvider: func() *console.Console {
			return application.console
		},
		SelectionProvider: application.currentSelection,
		GitExecutor:       application.gitExecutor,
		HomeExpander:      application.homeExpander,
	}

	cloneBuilder := commands.CloneCommandBuilder{Dependencies: dependencies}
	runBuilder := commands.RunCommandBuilder{
		Dependencies: dependencies,
		ConfigurationProvider: func() commands.RunConfiguration {
			return application.configuration.Tools.Run
		},
	}
	pullRequestBuilder := commands.PullRequestCommandBuilder{
		Dependencies: dependencies,
		ConfigurationProvider: func() commands.PullRequestConfiguration {
			return application.configuration.Tools.PullRequest
		},
		Version: applicationVersion,
	}
	removeBuilder := commands.RemoveCommandBuilder{Dependencies: dependencies}
	initBuilder := commands.InitCommandBuilder{
		Dependencies: dependencies,
		ConfigurationProvider: func() commands.InitConfiguration {
			return application.configuration.Tools.Init
		},
		WorkingDirectory: application.workingDirectory,
	}

	application.registerSubcommands(cobraCommand, []subcommandBuilder{
		{name: "clone", build: cloneBuilder.Build},
		{name: "run", build: runBuilder.Build},
		{name: "pr", build: pullRequestBuilder.Build},
		{name: "rm", build: removeBuilder.Build},
		{name: "init", build: initBuilder.Build},
	})

	application.rootCommand = cobraCommand

	return application
}

type subcommandBuilder struct {
	name  string
	build func() (*cobra.Command, error)
}

// registerSubcommands attaches every subcommand that builds; a failing builder is reported and skipped.
func (application *Application) registerSubcommands(rootCommand *cobra.Command, builders []subcommandBuilder) {
	for _, builder := range builders {
		subcommand, buildError := builder.build()
		if buildError != nil {
			application.console.Failure(commandBuildErrorTemplateConstant, builder.name, buildError)
			continue
		}
		rootCommand.AddCommand(subcommand)
	}
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// ExecuteWithArguments runs the command hierarchy against arguments instead of os.Args.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	application.rootCommand.SetArgs(arguments)
	return application.Execute()
}

// Configuration returns the settings resolved by the last run.
func (application *Application) Configuration() ApplicationConfiguration {
	return application.configuration
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) currentSelection() commands.Selection {
	names := make([]string, 0, len(application.selection.Names))
	for _, name := range application.selection.Names {
		if trimmed := strings.TrimSpace(name); len(trimmed) > 0 {
			names = append(names, trimmed)
		}
	}
	return commands.Selection{
		Tag:        strings.TrimSpace(application.selection.Tag),
		Names:      names,
		Concurrent: application.selection.Concurrent,
	}
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	application.catalogPath = application.homeExpander.Expand(strings.TrimSpace(application.catalogPath))

	if application.persistentFlagChanged(command, tagFlagNameConstant) {
		if tagError := catalog.ValidateTagFilter(application.selection.Tag); tagError != nil {
			return tagError
		}
	}

	environmentFile, environmentError := loadEnvironmentFile(application.catalogPath)
	if environmentError != nil {
		return environmentError
	}

	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}
	for configurationKey, configurationValue := range commands.DefaultConfigurationValues(toolsConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.catalogPath, defaultValues, &application.configuration)
	if loadError != nil {
		var settingsParseError *utils.SettingsParseError
		if errors.As(loadError, &settingsParseError) {
			return &catalog.CatalogError{Kind: catalog.ErrorKindParse, Path: application.catalogPath, Cause: settingsParseError.Cause}
		}
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logLevel, levelError := utils.ParseLogLevel(application.configuration.Common.LogLevel)
	if levelError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, levelError)
	}
	logFormat, formatError := utils.ParseLogFormat(application.configuration.Common.LogFormat)
	if formatError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, formatError)
	}

	loggerFactory := utils.NewLoggerFactory(utils.WithLoggerDestination(application.standardError))
	logger, loggerCreationError := loggerFactory.CreateLogger(logLevel, logFormat)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger
	application.console = console.New(
		application.standardOutput,
		application.standardError,
		console.WithColor(colorEnabled(application.standardOutput, application.standardError)),
	)

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, string(logLevel)),
		zap.String(configurationLogFormatFieldConstant, string(logFormat)),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(environmentFileFieldConstant, environmentFile),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithCatalogPath(command.Context(), application.catalogPath)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

// loadEnvironmentFile loads the .env beside the catalog without overriding variables that are already set.
// It returns the loaded path, or an empty string when there is no such file.
func loadEnvironmentFile(catalogPath string) (string, error) {
	environmentFile := filepath.Join(filepath.Dir(catalogPath), environmentFileNameConstant)
	fileInfo, statError := os.Stat(environmentFile)
	if errors.Is(statError, fs.ErrNotExist) {
		return "", nil
	}
	if statError == nil && fileInfo.IsDir() {
		return "", nil
	}
	if loadError := godotenv.Load(environmentFile); loadError != nil {
		return "", fmt.Errorf(environmentLoadErrorTemplateConstant, environmentFile, loadError)
	}
	return environmentFile, nil
}

// colorEnabled reports whether both console streams are terminals and NO_COLOR is unset.
func colorEnabled(writers ...io.Writer) bool {
	if _, disabled := os.LookupEnv(noColorEnvironmentVariableConstant); disabled {
		return false
	}
	for _, writer := range writers {
		file, isFile := writer.(*os.File)
		if !isFile {
			return false
		}
		if !isatty.IsTerminal(file.Fd()) && !isatty.IsCygwinTerminal(file.Fd()) {
			return false
		}
	}
	return true
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
