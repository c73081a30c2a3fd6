package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/branchswitch/internal/branches"
	"github.com/temirov/branchswitch/internal/branches/cd"
	"github.com/temirov/branchswitch/internal/branches/picker"
	"github.com/temirov/branchswitch/internal/execshell"
	"github.com/temirov/branchswitch/internal/gitrepo"
	"github.com/temirov/branchswitch/internal/ui"
	"github.com/temirov/branchswitch/internal/utils"
	"github.com/temirov/branchswitch/internal/workflow"
)

const (
	applicationNameConstant                 = "branch-switch"
	applicationShortDescriptionConstant     = "Interactively switch to a recently used git branch"
	applicationLongDescriptionConstant      = "branch-switch lists the local branches that most recently received commits, lets you pick one, and checks it out. Uncommitted changes can be stashed before the switch."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	commonLogFileConfigKeyConstant          = commonConfigurationKeyConstant + ".log_file"
	toolsConfigurationKeyConstant           = "tools"
	switchConfigurationKeyConstant          = toolsConfigurationKeyConstant + ".switch"
	environmentPrefixConstant               = "BRANCHSWITCH"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	defaultConfigurationSearchPathConstant  = "."
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLimitFieldConstant         = "limit"
	configurationColorFieldConstant         = "color"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	dependencyErrorTemplateConstant         = "unable to assemble branch switch: %w"
	rootCommandDebugMessageConstant         = "branch switch started"
	logFieldWorkingDirectoryConstant        = "working_directory"
	logFieldInteractiveConstant             = "interactive"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	exitErrorTemplateConstant               = "branch switch finished with exit code %d (%s)"
)

// ExitError carries a non-zero exit code whose cause has already been shown to the user.
type ExitError struct {
	Code   int
	Reason workflow.Reason
}

// Error describes the exit code and its reason.
func (exitError ExitError) Error() string {
	return fmt.Sprintf(exitErrorTemplateConstant, exitError.Code, exitError.Reason)
}

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`
}

// ApplicationToolsConfiguration holds configuration grouped by tool.
type ApplicationToolsConfiguration struct {
	Switch branches.CommandConfiguration `mapstructure:"switch"`
}

// ApplicationStreams are the terminal streams the application reads from and writes to.
type ApplicationStreams struct {
	Input  io.Reader
	Output io.Writer
	Errors io.Writer
}

// ApplicationOptions customize a new Application. Zero values select the process defaults.
type ApplicationOptions struct {
	Streams          ApplicationStreams
	WorkingDirectory string
	CommandRunner    execshell.CommandRunner
	LoggerFactory    *utils.LoggerFactory
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
	streams               ApplicationStreams
	workingDirectory      string
	commandRunner         execshell.CommandRunner
}

// NewApplication assembles a CLI application bound to the process streams.
func NewApplication() *Application {
	return NewApplicationWithOptions(ApplicationOptions{})
}

// NewApplicationWithOptions assembles a fully wired CLI application instance.
func NewApplicationWithOptions(options ApplicationOptions) *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant, utils.UserConfigurationSearchPath(applicationNameConstant)},
	)
	embeddedConfiguration, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	configurationLoader.SetEmbeddedConfiguration(embeddedConfiguration, embeddedConfigurationType)

	streams := options.Streams
	if streams.Input == nil {
		streams.Input = os.Stdin
	}
	if streams.Output == nil {
		streams.Output = os.Stdout
	}
	if streams.Errors == nil {
		streams.Errors = os.Stderr
	}

	loggerFactory := options.LoggerFactory
	if loggerFactory == nil {
		loggerFactory = utils.NewLoggerFactoryWithOutput(streams.Errors)
	}

	commandRunner := options.CommandRunner
	if commandRunner == nil {
		commandRunner = execshell.NewOSCommandRunner()
	}

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       loggerFactory,
		logger:              zap.NewNop(),
		streams:             streams,
		workingDirectory:    options.WorkingDirectory,
		commandRunner:       commandRunner,
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
			return application.runSwitch(command)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.SetIn(streams.Input)
	cobraCommand.SetOut(streams.Output)
	cobraCommand.SetErr(streams.Errors)
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	application.rootCommand = cobraCommand

	return application
}

// SetArguments replaces the command-line arguments parsed by Execute.
func (application *Application) SetArguments(arguments []string) {
	application.rootCommand.SetArgs(arguments)
}

// Configuration returns the configuration resolved by the last execution.
func (application *Application) Configuration() ApplicationConfiguration {
	return application.configuration
}

// Execute runs the root command and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelError),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
		commonLogFileConfigKeyConstant:   "",
	}
	for configurationKey, configurationValue := range branches.DefaultConfigurationValues(switchConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration
	application.configuration.Tools.Switch = application.configuration.Tools.Switch.Sanitize()

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(utils.LoggerSettings{
		Level:    utils.LogLevel(application.configuration.Common.LogLevel),
		Format:   utils.LogFormat(application.configuration.Common.LogFormat),
		FilePath: application.configuration.Common.LogFile,
	})
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.Int(configurationLimitFieldConstant, application.configuration.Tools.Switch.Limit),
		zap.String(configurationColorFieldConstant, application.configuration.Tools.Switch.Color),
	)

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) interactiveTerminal() bool {
	return ui.IsTerminal(application.streams.Input) && ui.IsTerminal(application.streams.Output)
}

func (application *Application) runSwitch(command *cobra.Command) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	interactive := application.interactiveTerminal()
	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.String(logFieldWorkingDirectoryConstant, application.workingDirectory),
		zap.Bool(logFieldInteractiveConstant, interactive),
	)

	switchWorkflow, assemblyError := application.assembleWorkflow(interactive)
	if assemblyError != nil {
		return fmt.Errorf(dependencyErrorTemplateConstant, assemblyError)
	}

	outcome := switchWorkflow.Run(command.Context())
	if outcome.ExitCode != 0 {
		return ExitError{Code: outcome.ExitCode, Reason: outcome.Reason}
	}
	return nil
}

func (application *Application) assembleWorkflow(interactive bool) (*workflow.Workflow, error) {
	observers := make([]execshell.CommandEventObserver, 0, 1)
	if application.humanReadableLoggingEnabled() {
		observers = append(observers, ui.NewConsoleCommandEventLogger(application.logger))
	}

	shellExecutor, executorError := execshell.NewShellExecutor(application.logger, application.commandRunner, observers...)
	if executorError != nil {
		return nil, executorError
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(shellExecutor, application.workingDirectory)
	if managerError != nil {
		return nil, managerError
	}

	switchConfiguration := application.configuration.Tools.Switch
	renderer := ui.NewRenderer(application.streams.Output, ui.ParseColorMode(switchConfiguration.Color))
	palette := ui.NewPalette(renderer)
	reporter := ui.NewConsoleReporter(application.streams.Output, application.streams.Errors, palette)
	statusWriter := ui.NewStatusWriter(application.streams.Output, palette, interactive)

	probe, probeError := branches.NewProbe(branches.ProbeDependencies{
		Gateway:  repositoryManager,
		Reporter: reporter,
		Logger:   application.logger,
	})
	if probeError != nil {
		return nil, probeError
	}

	// Both line prompters must read through the same buffer.
	var lineInput io.Reader = bufio.NewReader(application.streams.Input)

	branchPicker, pickerError := picker.NewPicker(application.selectPrompter(interactive, lineInput, palette))
	if pickerError != nil {
		return nil, pickerError
	}

	switchService, serviceError := cd.NewService(cd.ServiceDependencies{
		Repository: repositoryManager,
		Prompter:   application.confirmationPrompter(interactive, lineInput),
		StartIndicator: func(text string) cd.StatusIndicator {
			return statusWriter.Start(text)
		},
		Logger:       application.logger,
		StashMessage: switchConfiguration.StashMessage,
	})
	if serviceError != nil {
		return nil, serviceError
	}

	return workflow.NewWorkflow(workflow.Dependencies{
		Probe:       probe,
		Picker:      branchPicker,
		Switcher:    switchService,
		Reporter:    reporter,
		Logger:      application.logger,
		BranchLimit: switchConfiguration.Limit,
	})
}

func (application *Application) selectPrompter(interactive bool, lineInput io.Reader, palette ui.Palette) picker.SelectPrompter {
	if interactive {
		return ui.NewTerminalSelectPrompter(application.streams.Input, application.streams.Output, palette)
	}
	return ui.NewLineSelectPrompter(lineInput, application.streams.Output, palette)
}

func (application *Application) confirmationPrompter(interactive bool, lineInput io.Reader) cd.ConfirmationPrompter {
	terminalInput, inputIsFile := application.streams.Input.(terminal.FileReader)
	terminalOutput, outputIsFile := application.streams.Output.(terminal.FileWriter)
	if interactive && inputIsFile && outputIsFile {
		return ui.NewSurveyConfirmationPrompter(terminalInput, terminalOutput, application.streams.Errors)
	}
	return ui.NewIOConfirmationPrompter(lineInput, application.streams.Output)
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

	if rootCommand := command.Root(); rootCommand != nil {
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
