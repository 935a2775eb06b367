package mirror

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ghmirror/internal/execshell"
	"github.com/temirov/ghmirror/internal/filesync"
	"github.com/temirov/ghmirror/internal/filesystem"
	"github.com/temirov/ghmirror/internal/githubapi"
	"github.com/temirov/ghmirror/internal/githubauth"
	"github.com/temirov/ghmirror/internal/gitlabapi"
	"github.com/temirov/ghmirror/internal/gitrepo"
	"github.com/temirov/ghmirror/internal/prerequisites"
	"github.com/temirov/ghmirror/internal/session"
	"github.com/temirov/ghmirror/internal/ui"
	"github.com/temirov/ghmirror/internal/utils"
)

const (
	commandUseConstant                             = "mirror"
	commandAliasConstant                           = "run"
	commandShortDescriptionConstant                = "Copy public GitHub repositories into one GitLab repository"
	commandLongDescriptionConstant                 = "mirror lists the public repositories of a GitHub account, copies the selected ones into subdirectories of a single GitLab repository with one commit each, and pushes the result."
	runErrorTemplateConstant                       = "mirror run failed: %w"
	executorCreationErrorTemplateConstant          = "unable to construct command executor: %w"
	checkerCreationErrorTemplateConstant           = "unable to construct dependency checker: %w"
	logDirectoryErrorTemplateConstant              = "unable to resolve log directory: %w"
	sessionOpenErrorTemplateConstant               = "unable to open session log: %w"
	repositoryManagerCreationErrorTemplateConstant = "unable to construct repository manager: %w"
	synchronizerCreationErrorTemplateConstant      = "unable to construct synchronizer: %w"
	sourceClientCreationErrorTemplateConstant      = "unable to construct GitHub client: %w"
	serviceCreationErrorTemplateConstant           = "unable to construct mirror service: %w"
	logMessageRunFailedConstant                    = "Mirror run failed"
	logMessageSessionCloseFailedConstant           = "Session log close failed"
	logMessageSessionOpenedConstant                = "Session log opened"
	logFieldLogFileConstant                        = "log_file"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ServiceRunner executes one mirror run.
type ServiceRunner interface {
	Run(executionContext context.Context) (RunSummary, error)
}

// ServiceProvider constructs a ServiceRunner from dependencies.
type ServiceProvider func(dependencies ServiceDependencies) (ServiceRunner, error)

// CommandBuilder assembles the mirror Cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	Input                 io.Reader
	Output                io.Writer
	ExecutableLocator     prerequisites.ExecutableLocator
	CommandRunner         execshell.CommandRunner
	HTTPClient            *http.Client
	EnvironmentLookup     githubauth.EnvironmentLookup
	LoggerFactory         *utils.LoggerFactory
	ServiceProvider       ServiceProvider
	Clock                 func() time.Time
}

// Build constructs the mirror command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Aliases:       []string{commandAliasConstant},
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.Run,
	}
	return command, nil
}

// Run checks prerequisites, opens the session log, wires the clients and runs the mirror service.
func (builder *CommandBuilder) Run(command *cobra.Command, arguments []string) error {
	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}

	configuration := builder.resolveConfiguration()
	consoleLogger := builder.resolveLogger()
	input := builder.resolveInput(command)
	output := builder.resolveOutput(command)
	reporter := ui.NewStatusPrinter(output)
	prompter := ui.NewIOPrompter(input, output)
	runner := builder.resolveCommandRunner()
	consoleObserver := ui.NewConsoleCommandEventLogger(consoleLogger)

	installExecutor, installExecutorError := execshell.NewShellExecutor(consoleLogger, runner, consoleObserver)
	if installExecutorError != nil {
		return fmt.Errorf(executorCreationErrorTemplateConstant, installExecutorError)
	}
	checker, checkerError := prerequisites.NewChecker(prerequisites.Dependencies{
		Logger:   consoleLogger,
		Locator:  builder.resolveExecutableLocator(),
		Executor: installExecutor,
		Prompter: prompter,
		Output:   output,
	})
	if checkerError != nil {
		return fmt.Errorf(checkerCreationErrorTemplateConstant, checkerError)
	}
	if ensureError := checker.Ensure(executionContext); ensureError != nil {
		return ensureError
	}

	fileSystem := filesystem.OSFileSystem{}
	pathResolver := filesystem.NewPathResolver(nil)
	logDirectory, logDirectoryError := pathResolver.Resolve(configuration.Session.LogDirectory)
	if logDirectoryError != nil {
		return fmt.Errorf(logDirectoryErrorTemplateConstant, logDirectoryError)
	}
	runSession, sessionError := session.Open(session.Options{
		Directory:        logDirectory,
		Level:            utils.LogLevel(configuration.Session.LogLevel),
		Format:           utils.LogFormat(configuration.Session.LogFormat),
		LoggerFactory:    builder.resolveLoggerFactory(),
		Clock:            builder.Clock,
		DirectoryCreator: fileSystem,
	})
	if sessionError != nil {
		return fmt.Errorf(sessionOpenErrorTemplateConstant, sessionError)
	}
	defer func() {
		if closeError := runSession.Close(); closeError != nil {
			consoleLogger.Warn(logMessageSessionCloseFailedConstant, zap.Error(closeError))
		}
	}()
	consoleLogger.Debug(logMessageSessionOpenedConstant, zap.String(logFieldLogFileConstant, runSession.LogFilePath))

	executor, executorError := execshell.NewShellExecutor(runSession.Logger, runner, consoleObserver)
	if executorError != nil {
		return fmt.Errorf(executorCreationErrorTemplateConstant, executorError)
	}
	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	if managerError != nil {
		return fmt.Errorf(repositoryManagerCreationErrorTemplateConstant, managerError)
	}
	synchronizer, synchronizerError := filesync.NewSynchronizer(executor, fileSystem)
	if synchronizerError != nil {
		return fmt.Errorf(synchronizerCreationErrorTemplateConstant, synchronizerError)
	}
	sourceToken, _ := githubauth.ResolveToken(builder.EnvironmentLookup)
	sourceClient, sourceClientError := githubapi.NewClient(githubapi.ClientOptions{
		BaseURL:    configuration.Source.APIBaseURL,
		HTTPClient: builder.HTTPClient,
		Token:      sourceToken,
	})
	if sourceClientError != nil {
		return fmt.Errorf(sourceClientCreationErrorTemplateConstant, sourceClientError)
	}

	service, serviceError := builder.resolveService(ServiceDependencies{
		Logger:                   runSession.Logger,
		Reporter:                 reporter,
		Prompter:                 prompter,
		SourceLister:             sourceClient,
		DestinationClientFactory: builder.destinationClientFactory(configuration.Destination.HTTPTimeout),
		RepositoryManager:        repositoryManager,
		Synchronizer:             synchronizer,
		FileSystem:               fileSystem,
		PathResolver:             pathResolver,
		CommitCounter:            gitrepo.CountCommits,
		Clock:                    builder.Clock,
		Configuration:            configuration,
		LogFilePath:              runSession.LogFilePath,
	})
	if serviceError != nil {
		return fmt.Errorf(serviceCreationErrorTemplateConstant, serviceError)
	}

	if _, runError := service.Run(executionContext); runError != nil {
		runSession.Logger.Error(logMessageRunFailedConstant, zap.Error(runError))
		return fmt.Errorf(runErrorTemplateConstant, runError)
	}
	return nil
}

func (builder *CommandBuilder) destinationClientFactory(timeout time.Duration) DestinationClientFactory {
	var transport http.RoundTripper
	if builder.HTTPClient != nil {
		transport = builder.HTTPClient.Transport
	}
	return func(configuration RunConfiguration) (DestinationProjectClient, error) {
		client, clientError := gitlabapi.NewClient(gitlabapi.ClientOptions{
			BaseURL:   configuration.DestinationBaseURL,
			Token:     configuration.DestinationToken,
			Timeout:   timeout,
			Transport: transport,
		})
		if clientError != nil {
			return nil, clientError
		}
		return client, nil
	}
}

func (builder *CommandBuilder) resolveService(dependencies ServiceDependencies) (ServiceRunner, error) {
	if builder.ServiceProvider != nil {
		return builder.ServiceProvider(dependencies)
	}
	service, serviceError := NewService(dependencies)
	if serviceError != nil {
		return nil, serviceError
	}
	return service, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveInput(command *cobra.Command) io.Reader {
	if builder.Input != nil {
		return builder.Input
	}
	return command.InOrStdin()
}

func (builder *CommandBuilder) resolveOutput(command *cobra.Command) io.Writer {
	if builder.Output != nil {
		return builder.Output
	}
	return command.OutOrStdout()
}

func (builder *CommandBuilder) resolveCommandRunner() execshell.CommandRunner {
	if builder.CommandRunner != nil {
		return builder.CommandRunner
	}
	return execshell.NewOSCommandRunner()
}

func (builder *CommandBuilder) resolveExecutableLocator() prerequisites.ExecutableLocator {
	if builder.ExecutableLocator != nil {
		return builder.ExecutableLocator
	}
	return exec.LookPath
}

func (builder *CommandBuilder) resolveLoggerFactory() *utils.LoggerFactory {
	if builder.LoggerFactory != nil {
		return builder.LoggerFactory
	}
	return utils.NewLoggerFactory()
}
