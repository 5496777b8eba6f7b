package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/repostates/internal/execshell"
	"github.com/temirov/repostates/internal/pipeline"
	"github.com/temirov/repostates/internal/report"
	"github.com/temirov/repostates/internal/repos/filesystem"
	"github.com/temirov/repostates/internal/repos/shared"
	"github.com/temirov/repostates/internal/ui"
	"github.com/temirov/repostates/internal/utils"
)

const (
	applicationNameConstant                 = "repostates"
	applicationShortDescriptionConstant     = "Report and update the state of many git repositories at once"
	applicationLongDescriptionConstant      = "repostates discovers git working copies under a directory, runs git against all of them concurrently, and reports branch, sync, and cleanliness state."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	directoryFlagNameConstant               = "dir"
	directoryFlagShorthandConstant          = "d"
	directoryFlagUsageConstant              = "Directory whose immediate subdirectories are inspected."
	nameFilterFlagNameConstant              = "reg"
	nameFilterFlagShorthandConstant         = "r"
	nameFilterFlagUsageConstant             = "Regular expression a repository directory name must contain."
	excludeFlagNameConstant                 = "exclude"
	excludeFlagUsageConstant                = "Glob pattern of repository directory names to skip (repeatable)."
	verboseFlagNameConstant                 = "verbose"
	verboseFlagShorthandConstant            = "v"
	verboseFlagUsageConstant                = "Increase log verbosity (-v warn, -vv info, -vvv debug)."
	outputFlagNameConstant                  = "output"
	outputFlagDescriptionConstant           = "Report format"
	colorFlagNameConstant                   = "color"
	colorFlagDescriptionConstant            = "Colorize the status table"
	timeoutFlagNameConstant                 = "timeout"
	timeoutFlagUsageConstant                = "Maximum duration of a single operation across all repositories (0 waits indefinitely)."
	environmentPrefixConstant               = "REPOSTATES"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	defaultConfigurationSearchPathConstant  = "."
	commonLogLevelConfigKeyConstant         = "common.log_level"
	commonLogFormatConfigKeyConstant        = "common.log_format"
	repositoriesRootConfigKeyConstant       = "repositories.root"
	executionTimeoutConfigKeyConstant       = "execution.timeout"
	outputFormatConfigKeyConstant           = "output.format"
	outputColorConfigKeyConstant            = "output.color"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationRootFieldConstant          = "root"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	logLevelErrorTemplateConstant           = "invalid log level: %w"
	logFormatErrorTemplateConstant          = "invalid log format: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	defaultRepositoriesRootConstant         = "."
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common       ApplicationCommonConfiguration       `mapstructure:"common"`
	Repositories ApplicationRepositoriesConfiguration `mapstructure:"repositories"`
	Execution    ApplicationExecutionConfiguration    `mapstructure:"execution"`
	Output       ApplicationOutputConfiguration       `mapstructure:"output"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationRepositoriesConfiguration selects the repositories a command operates on.
type ApplicationRepositoriesConfiguration struct {
	Root       string   `mapstructure:"root"`
	NameFilter string   `mapstructure:"name_filter"`
	Exclude    []string `mapstructure:"exclude"`
}

// ApplicationExecutionConfiguration bounds subprocess execution.
type ApplicationExecutionConfiguration struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// ApplicationOutputConfiguration controls report rendering.
type ApplicationOutputConfiguration struct {
	Format string `mapstructure:"format"`
	Color  string `mapstructure:"color"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	directoryFlagValue    string
	nameFilterFlagValue   string
	excludeFlagValues     []string
	verbosityFlagValue    int
	outputFlagValue       string
	colorFlagValue        string
	timeoutFlagValue      time.Duration
	commandRunner         execshell.CommandRunner
	fileSystem            shared.FileSystem
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
		commandRunner:       execshell.NewOSCommandRunner(),
		fileSystem:          filesystem.OSFileSystem{},
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runPipelineCommand(command, statusCommandDefinition, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	persistentFlags := cobraCommand.PersistentFlags()
	persistentFlags.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	persistentFlags.StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	persistentFlags.StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	persistentFlags.StringVarP(&application.directoryFlagValue, directoryFlagNameConstant, directoryFlagShorthandConstant, defaultRepositoriesRootConstant, directoryFlagUsageConstant)
	persistentFlags.StringVarP(&application.nameFilterFlagValue, nameFilterFlagNameConstant, nameFilterFlagShorthandConstant, "", nameFilterFlagUsageConstant)
	persistentFlags.StringArrayVar(&application.excludeFlagValues, excludeFlagNameConstant, nil, excludeFlagUsageConstant)
	persistentFlags.CountVarP(&application.verbosityFlagValue, verboseFlagNameConstant, verboseFlagShorthandConstant, verboseFlagUsageConstant)
	persistentFlags.StringVar(
		&application.outputFlagValue,
		outputFlagNameConstant,
		string(report.OutputFormatTable),
		utils.FormatChoiceUsage(outputFlagDescriptionConstant, string(report.OutputFormatTable), string(report.OutputFormatTable), string(report.OutputFormatYAML), string(report.OutputFormatJSON)),
	)
	persistentFlags.StringVar(
		&application.colorFlagValue,
		colorFlagNameConstant,
		string(report.ColorModeAuto),
		utils.FormatChoiceUsage(colorFlagDescriptionConstant, string(report.ColorModeAuto), string(report.ColorModeAuto), string(report.ColorModeAlways), string(report.ColorModeNever)),
	)
	persistentFlags.DurationVar(&application.timeoutFlagValue, timeoutFlagNameConstant, 0, timeoutFlagUsageConstant)

	statusCommandDefinition.registerFlags(cobraCommand)
	for _, definition := range pipelineCommandDefinitions {
		cobraCommand.AddCommand(application.buildPipelineCommand(definition))
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:   string(utils.LogLevelError),
		commonLogFormatConfigKeyConstant:  string(utils.LogFormatConsole),
		repositoriesRootConfigKeyConstant: defaultRepositoriesRootConstant,
		executionTimeoutConfigKeyConstant: time.Duration(0),
		outputFormatConfigKeyConstant:     string(report.OutputFormatTable),
		outputColorConfigKeyConstant:      string(report.ColorModeAuto),
	}

	application.configuration = ApplicationConfiguration{}
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration
	application.applyFlagOverrides(command)

	logLevel, logLevelError := utils.ParseLogLevel(application.configuration.Common.LogLevel)
	if logLevelError != nil {
		return fmt.Errorf(logLevelErrorTemplateConstant, logLevelError)
	}
	if application.persistentFlagChanged(command, verboseFlagNameConstant) {
		logLevel = utils.LogLevelForVerbosity(application.verbosityFlagValue)
		application.configuration.Common.LogLevel = string(logLevel)
	}

	logFormat, logFormatError := utils.ParseLogFormat(application.configuration.Common.LogFormat)
	if logFormatError != nil {
		return fmt.Errorf(logFormatErrorTemplateConstant, logFormatError)
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(logLevel, logFormat)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(configurationRootFieldConstant, application.configuration.Repositories.Root),
	)

	return nil
}

func (application *Application) applyFlagOverrides(command *cobra.Command) {
	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}
	if application.persistentFlagChanged(command, directoryFlagNameConstant) {
		application.configuration.Repositories.Root = application.directoryFlagValue
	}
	if application.persistentFlagChanged(command, nameFilterFlagNameConstant) {
		application.configuration.Repositories.NameFilter = application.nameFilterFlagValue
	}
	if application.persistentFlagChanged(command, excludeFlagNameConstant) {
		application.configuration.Repositories.Exclude = append([]string(nil), application.excludeFlagValues...)
	}
	if application.persistentFlagChanged(command, outputFlagNameConstant) {
		application.configuration.Output.Format = application.outputFlagValue
	}
	if application.persistentFlagChanged(command, colorFlagNameConstant) {
		application.configuration.Output.Color = application.colorFlagValue
	}
	if application.persistentFlagChanged(command, timeoutFlagNameConstant) {
		application.configuration.Execution.Timeout = application.timeoutFlagValue
	}
	if len(strings.TrimSpace(application.configuration.Repositories.Root)) == 0 {
		application.configuration.Repositories.Root = defaultRepositoriesRootConstant
	}
}

func (application *Application) newExecutor() (*pipeline.Executor, error) {
	shellExecutor, shellExecutorError := execshell.NewShellExecutor(application.logger, application.commandRunner)
	if shellExecutorError != nil {
		return nil, shellExecutorError
	}
	return pipeline.NewExecutor(
		application.logger,
		shellExecutor.WithObserver(ui.NewConsoleCommandEventLogger(application.logger)),
		pipeline.ExecutorOptions{OperationTimeout: application.configuration.Execution.Timeout},
	)
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
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
