package mirror

import (
	"context"

	"github.com/temirov/ghmirror/internal/githubapi"
	"github.com/temirov/ghmirror/internal/gitlabapi"
)

// Prompter reads operator answers.
type Prompter interface {
	Ask(prompt string, defaultValue string) (string, error)
	AskSecret(prompt string) (string, error)
	Confirm(prompt string) (bool, error)
}

// StatusReporter renders console progress.
type StatusReporter interface {
	Heading(text string)
	Info(text string)
	Warning(text string)
	Success(text string)
	Failure(text string)
	StepStarted(label string)
	StepDone()
	StepFailed()
}

// SourceRepositoryLister lists public repositories of a source account.
type SourceRepositoryLister interface {
	ListPublicRepositories(executionContext context.Context, account string) ([]githubapi.Repository, error)
}

// DestinationProjectClient locates, creates, and probes destination projects.
type DestinationProjectClient interface {
	FindProject(executionContext context.Context, projectPath string) (gitlabapi.Project, bool, error)
	CreateProject(executionContext context.Context, request gitlabapi.CreateProjectRequest) (gitlabapi.Project, error)
	HasRepositoryContent(executionContext context.Context, projectReference string) (bool, error)
}

// DestinationClientFactory builds a destination client once the run configuration is known.
type DestinationClientFactory func(configuration RunConfiguration) (DestinationProjectClient, error)

// RepositoryManager performs the git operations of a run.
type RepositoryManager interface {
	Clone(executionContext context.Context, remoteURL string, targetDirectory string) error
	CloneWithCredentialStore(executionContext context.Context, remoteURL string, targetDirectory string, credentialFilePath string) error
	Init(executionContext context.Context, repositoryPath string) error
	Stage(executionContext context.Context, repositoryPath string, paths ...string) error
	Commit(executionContext context.Context, repositoryPath string, message string, paths ...string) error
	RenameCurrentBranch(executionContext context.Context, repositoryPath string, branchName string) error
	AddRemote(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error
	ConfigureCredentialStore(executionContext context.Context, repositoryPath string, credentialFilePath string) error
	Push(executionContext context.Context, repositoryPath string, remoteName string, branchName string, force bool) error
}

// ContentSynchronizer copies a working tree into another directory without Git metadata.
type ContentSynchronizer interface {
	Mirror(executionContext context.Context, sourceDirectory string, targetDirectory string) error
}

// CommitCounter counts commits reachable from HEAD of a repository.
type CommitCounter func(repositoryPath string) (int, error)

// PathResolver expands configured paths into absolute ones.
type PathResolver interface {
	Resolve(configuredPath string) (string, error)
}
