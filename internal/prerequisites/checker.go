package prerequisites

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ghmirror/internal/execshell"
)

const (
	gitToolNameConstant                   = "git"
	rsyncToolNameConstant                 = "rsync"
	aptPackageManagerNameConstant         = "apt-get"
	yumPackageManagerNameConstant         = "yum"
	brewPackageManagerNameConstant        = "brew"
	installSubcommandConstant             = "install"
	assumeYesFlagConstant                 = "-y"
	toolListSeparatorConstant             = ", "
	missingToolsMessageTemplateConstant   = "Missing required tools: %s\n"
	noPackageManagerMessageConstant       = "No supported package manager found (apt-get, yum, brew). Install the tools manually and run again.\n"
	installPromptTemplateConstant         = "Install missing tools using %s? (y/n) "
	stillMissingMessageTemplateConstant   = "Tools still missing after installation: %s\n"
	dependenciesMissingMessageConstant    = "required dependencies are missing"
	missingDependenciesTemplateConstant   = "required dependencies are missing: %s"
	installationErrorTemplateConstant     = "install %s with %s: %w"
	locatorMissingMessageConstant         = "executable locator not configured"
	logMessageToolsPresentConstant        = "All required tools are installed"
	logMessageToolsMissingConstant        = "Required tools are missing"
	logMessageInstallDeclinedConstant     = "Operator declined tool installation"
	logMessageInstallationFailedConstant  = "Tool installation failed"
	logMessagePackageManagerFoundConstant = "Detected package manager"
	logFieldToolsConstant                 = "tools"
	logFieldPackageManagerConstant        = "package_manager"
)

var (
	// ErrDependenciesMissing indicates required executables remain unavailable.
	ErrDependenciesMissing = errors.New(dependenciesMissingMessageConstant)
	// ErrExecutableLocatorNotConfigured indicates the checker was built without a PATH lookup.
	ErrExecutableLocatorNotConfigured = errors.New(locatorMissingMessageConstant)
)

// MissingDependenciesError lists the tools that could not be resolved.
type MissingDependenciesError struct {
	Tools []string
}

// Error describes the missing tools.
func (missingError MissingDependenciesError) Error() string {
	return fmt.Sprintf(missingDependenciesTemplateConstant, strings.Join(missingError.Tools, toolListSeparatorConstant))
}

// Is reports equivalence with ErrDependenciesMissing.
func (missingError MissingDependenciesError) Is(target error) bool {
	return target == ErrDependenciesMissing
}

// ExecutableLocator resolves an executable on PATH, matching exec.LookPath.
type ExecutableLocator func(executableName string) (string, error)

// CommandExecutor runs installation commands.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// ConfirmationPrompter asks the operator a yes/no question.
type ConfirmationPrompter interface {
	Confirm(prompt string) (bool, error)
}

// PackageManager describes how to install packages with one manager.
type PackageManager struct {
	Name            string
	Command         execshell.CommandName
	ArgumentsPrefix []string
}

// InstallCommand builds the invocation that installs the provided packages.
func (manager PackageManager) InstallCommand(packages []string) execshell.ShellCommand {
	arguments := append(append([]string{}, manager.ArgumentsPrefix...), packages...)
	return execshell.ShellCommand{Name: manager.Command, Details: execshell.CommandDetails{Arguments: arguments}}
}

// RequiredTools lists the executables a mirror run needs.
func RequiredTools() []string {
	return []string{gitToolNameConstant, rsyncToolNameConstant}
}

// SupportedPackageManagers lists package managers in detection order.
func SupportedPackageManagers() []PackageManager {
	return []PackageManager{
		{Name: aptPackageManagerNameConstant, Command: execshell.CommandSudo, ArgumentsPrefix: []string{aptPackageManagerNameConstant, installSubcommandConstant, assumeYesFlagConstant}},
		{Name: yumPackageManagerNameConstant, Command: execshell.CommandSudo, ArgumentsPrefix: []string{yumPackageManagerNameConstant, installSubcommandConstant, assumeYesFlagConstant}},
		{Name: brewPackageManagerNameConstant, Command: execshell.CommandBrew, ArgumentsPrefix: []string{installSubcommandConstant}},
	}
}

// Dependencies wires collaborators for Checker.
type Dependencies struct {
	Logger          *zap.Logger
	Locator         ExecutableLocator
	Executor        CommandExecutor
	Prompter        ConfirmationPrompter
	Output          io.Writer
	RequiredTools   []string
	PackageManagers []PackageManager
}

// Checker verifies and optionally installs required executables.
type Checker struct {
	logger          *zap.Logger
	locator         ExecutableLocator
	executor        CommandExecutor
	prompter        ConfirmationPrompter
	output          io.Writer
	requiredTools   []string
	packageManagers []PackageManager
}

// NewChecker constructs a Checker, defaulting tools and package managers when omitted.
func NewChecker(dependencies Dependencies) (*Checker, error) {
	if dependencies.Locator == nil {
		return nil, ErrExecutableLocatorNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	output := dependencies.Output
	if output == nil {
		output = io.Discard
	}

	requiredTools := dependencies.RequiredTools
	if len(requiredTools) == 0 {
		requiredTools = RequiredTools()
	}

	packageManagers := dependencies.PackageManagers
	if packageManagers == nil {
		packageManagers = SupportedPackageManagers()
	}

	return &Checker{
		logger:          logger,
		locator:         dependencies.Locator,
		executor:        dependencies.Executor,
		prompter:        dependencies.Prompter,
		output:          output,
		requiredTools:   requiredTools,
		packageManagers: packageManagers,
	}, nil
}

// Ensure returns nil when every required tool is available, installing missing ones if the operator agrees.
func (checker *Checker) Ensure(executionContext context.Context) error {
	missingTools := checker.missingTools()
	if len(missingTools) == 0 {
		checker.logger.Debug(logMessageToolsPresentConstant, zap.Strings(logFieldToolsConstant, checker.requiredTools))
		return nil
	}

	checker.logger.Warn(logMessageToolsMissingConstant, zap.Strings(logFieldToolsConstant, missingTools))
	fmt.Fprintf(checker.output, missingToolsMessageTemplateConstant, strings.Join(missingTools, toolListSeparatorConstant))

	packageManager, found := checker.detectPackageManager()
	if !found || checker.executor == nil || checker.prompter == nil {
		fmt.Fprint(checker.output, noPackageManagerMessageConstant)
		return MissingDependenciesError{Tools: missingTools}
	}
	checker.logger.Info(logMessagePackageManagerFoundConstant, zap.String(logFieldPackageManagerConstant, packageManager.Name))

	confirmed, promptError := checker.prompter.Confirm(fmt.Sprintf(installPromptTemplateConstant, packageManager.Name))
	if promptError != nil {
		return promptError
	}
	if !confirmed {
		checker.logger.Info(logMessageInstallDeclinedConstant, zap.Strings(logFieldToolsConstant, missingTools))
		return MissingDependenciesError{Tools: missingTools}
	}

	if _, installError := checker.executor.Execute(executionContext, packageManager.InstallCommand(missingTools)); installError != nil {
		checker.logger.Error(logMessageInstallationFailedConstant, zap.String(logFieldPackageManagerConstant, packageManager.Name), zap.Error(installError))
		if errors.Is(installError, context.Canceled) || errors.Is(installError, context.DeadlineExceeded) {
			return fmt.Errorf(installationErrorTemplateConstant, strings.Join(missingTools, toolListSeparatorConstant), packageManager.Name, installError)
		}
	}

	remainingTools := checker.missingTools()
	if len(remainingTools) > 0 {
		fmt.Fprintf(checker.output, stillMissingMessageTemplateConstant, strings.Join(remainingTools, toolListSeparatorConstant))
		return MissingDependenciesError{Tools: remainingTools}
	}

	return nil
}

func (checker *Checker) missingTools() []string {
	missingTools := make([]string, 0, len(checker.requiredTools))
	for _, toolName := range checker.requiredTools {
		if _, lookupError := checker.locator(toolName); lookupError != nil {
			missingTools = append(missingTools, toolName)
		}
	}
	return missingTools
}

func (checker *Checker) detectPackageManager() (PackageManager, bool) {
	for _, packageManager := range checker.packageManagers {
		if _, lookupError := checker.locator(packageManager.Name); lookupError == nil {
			return packageManager, true
		}
	}
	return PackageManager{}, false
}
