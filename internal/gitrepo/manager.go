package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/ghmirror/internal/execshell"
)

const (
	gitCloneSubcommandConstant             = "clone"
	gitInitSubcommandConstant              = "init"
	gitAddSubcommandConstant               = "add"
	gitCommitSubcommandConstant            = "commit"
	gitMessageFlagConstant                 = "-m"
	gitPathspecSeparatorConstant           = "--"
	gitBranchSubcommandConstant            = "branch"
	gitForceMoveFlagConstant               = "-M"
	gitRemoteSubcommandConstant            = "remote"
	gitConfigSubcommandConstant            = "config"
	gitCredentialHelperKeyConstant         = "credential.helper"
	gitReplaceAllFlagConstant              = "--replace-all"
	gitAddFlagConstant                     = "--add"
	gitEmptyHelperConstant                 = ""
	gitCredentialStoreTemplateConstant     = "store --file=%s"
	gitPushSubcommandConstant              = "push"
	gitSetUpstreamFlagConstant             = "-u"
	gitForceFlagConstant                   = "--force"
	gitTerminalPromptVariableConstant      = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledConstant      = "0"
	gitConfigCountVariableConstant         = "GIT_CONFIG_COUNT"
	gitConfigKeyVariableTemplateConstant   = "GIT_CONFIG_KEY_%d"
	gitConfigValueVariableTemplateConstant = "GIT_CONFIG_VALUE_%d"
	executorMissingMessageConstant         = "git executor not configured"
	operationErrorTemplateConstant         = "git %s in %s failed: %v"
	operationTargetErrorTemplateConstant   = "git %s failed: %v"
)

// Operation names used in OperationError.
const (
	OperationClone           = "clone"
	OperationInit            = "init"
	OperationStage           = "add"
	OperationCommit          = "commit"
	OperationRenameBranch    = "branch rename"
	OperationAddRemote       = "remote add"
	OperationConfigureHelper = "credential helper configuration"
	OperationPush            = "push"
)

// ErrGitExecutorNotConfigured indicates the manager was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// GitExecutor runs git invocations.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// OperationError reports a failed repository operation.
type OperationError struct {
	Operation      string
	RepositoryPath string
	Cause          error
}

// Error describes the failed operation.
func (operationError OperationError) Error() string {
	if len(operationError.RepositoryPath) == 0 {
		return fmt.Sprintf(operationTargetErrorTemplateConstant, operationError.Operation, operationError.Cause)
	}
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.RepositoryPath, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// RepositoryManager performs git operations on local repositories.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// Clone clones remoteURL into targetDirectory.
func (manager *RepositoryManager) Clone(executionContext context.Context, remoteURL string, targetDirectory string) error {
	return manager.run(executionContext, OperationClone, "", gitCloneSubcommandConstant, remoteURL, targetDirectory)
}

// CloneWithCredentialStore clones remoteURL into targetDirectory, reading credentials from credentialFilePath.
// The helpers are passed through the environment so they never land in the clone's configuration.
func (manager *RepositoryManager) CloneWithCredentialStore(executionContext context.Context, remoteURL string, targetDirectory string, credentialFilePath string) error {
	helpers := storeOnlyHelpers(credentialFilePath)
	environment := map[string]string{gitConfigCountVariableConstant: strconv.Itoa(len(helpers))}
	for helperIndex, helper := range helpers {
		environment[fmt.Sprintf(gitConfigKeyVariableTemplateConstant, helperIndex)] = gitCredentialHelperKeyConstant
		environment[fmt.Sprintf(gitConfigValueVariableTemplateConstant, helperIndex)] = helper
	}
	return manager.runWithEnvironment(executionContext, OperationClone, "", environment, gitCloneSubcommandConstant, remoteURL, targetDirectory)
}

// Init creates an empty repository in repositoryPath.
func (manager *RepositoryManager) Init(executionContext context.Context, repositoryPath string) error {
	return manager.run(executionContext, OperationInit, repositoryPath, gitInitSubcommandConstant)
}

// Stage adds the provided paths to the index.
func (manager *RepositoryManager) Stage(executionContext context.Context, repositoryPath string, paths ...string) error {
	arguments := append([]string{gitAddSubcommandConstant}, paths...)
	return manager.run(executionContext, OperationStage, repositoryPath, arguments...)
}

// Commit records message. When paths are given only changes under them are committed; anything else
// left in the index stays out of the commit.
func (manager *RepositoryManager) Commit(executionContext context.Context, repositoryPath string, message string, paths ...string) error {
	arguments := []string{gitCommitSubcommandConstant, gitMessageFlagConstant, message}
	if len(paths) > 0 {
		arguments = append(arguments, gitPathspecSeparatorConstant)
		arguments = append(arguments, paths...)
	}
	return manager.run(executionContext, OperationCommit, repositoryPath, arguments...)
}

// RenameCurrentBranch renames the checked out branch, overwriting any existing branch with that name.
func (manager *RepositoryManager) RenameCurrentBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	return manager.run(executionContext, OperationRenameBranch, repositoryPath, gitBranchSubcommandConstant, gitForceMoveFlagConstant, branchName)
}

// AddRemote registers a named remote.
func (manager *RepositoryManager) AddRemote(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error {
	return manager.run(executionContext, OperationAddRemote, repositoryPath, gitRemoteSubcommandConstant, gitAddSubcommandConstant, remoteName, remoteURL)
}

// ConfigureCredentialStore makes the store file the repository's only credential helper. The empty entry
// clears helpers inherited from global and system configuration, so git never hands the token to them.
func (manager *RepositoryManager) ConfigureCredentialStore(executionContext context.Context, repositoryPath string, credentialFilePath string) error {
	helpers := storeOnlyHelpers(credentialFilePath)
	if resetError := manager.run(executionContext, OperationConfigureHelper, repositoryPath, gitConfigSubcommandConstant, gitReplaceAllFlagConstant, gitCredentialHelperKeyConstant, helpers[0]); resetError != nil {
		return resetError
	}
	return manager.run(executionContext, OperationConfigureHelper, repositoryPath, gitConfigSubcommandConstant, gitAddFlagConstant, gitCredentialHelperKeyConstant, helpers[1])
}

func storeOnlyHelpers(credentialFilePath string) []string {
	return []string{gitEmptyHelperConstant, fmt.Sprintf(gitCredentialStoreTemplateConstant, credentialFilePath)}
}

// Push pushes branchName to remoteName and sets upstream tracking.
func (manager *RepositoryManager) Push(executionContext context.Context, repositoryPath string, remoteName string, branchName string, force bool) error {
	arguments := []string{gitPushSubcommandConstant, gitSetUpstreamFlagConstant, remoteName, branchName}
	if force {
		arguments = append(arguments, gitForceFlagConstant)
	}
	return manager.run(executionContext, OperationPush, repositoryPath, arguments...)
}

func (manager *RepositoryManager) run(executionContext context.Context, operation string, repositoryPath string, arguments ...string) error {
	return manager.runWithEnvironment(executionContext, operation, repositoryPath, nil, arguments...)
}

func (manager *RepositoryManager) runWithEnvironment(executionContext context.Context, operation string, repositoryPath string, environment map[string]string, arguments ...string) error {
	environmentVariables := map[string]string{gitTerminalPromptVariableConstant: gitTerminalPromptDisabledConstant}
	for variableName, variableValue := range environment {
		environmentVariables[variableName] = variableValue
	}

	details := execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     strings.TrimSpace(repositoryPath),
		EnvironmentVariables: environmentVariables,
	}

	if _, executionError := manager.executor.ExecuteGit(executionContext, details); executionError != nil {
		return OperationError{Operation: operation, RepositoryPath: repositoryPath, Cause: executionError}
	}

	return nil
}
