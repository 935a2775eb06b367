package mirror

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/ghmirror/internal/filesystem"
	"github.com/temirov/ghmirror/internal/gitlabapi"
	"github.com/temirov/ghmirror/internal/gitrepo"
)

const (
	initialCommitMessageConstant               = "Initial commit: add README"
	primaryBranchNameConstant                  = "main"
	workingCopyPermissionsConstant             = 0o755
	readmePermissionsConstant                  = 0o644
	provisionStepTemplateConstant              = "Preparing GitLab repository %s"
	projectCreationWarningTemplateConstant     = "Could not create GitLab project %s; continuing as if it exists"
	remoteURLErrorTemplateConstant             = "resolve remote url for %s: %w"
	prepareWorkingCopyErrorTemplateConstant    = "prepare working copy %s: %w"
	cloneDestinationErrorTemplateConstant      = "clone destination repository: %w"
	initializeDestinationErrorTemplateConstant = "initialize destination repository: %w"
	writeReadmeErrorTemplateConstant           = "write README: %w"
	credentialStoreMissingMessageConstant      = "credential store not configured"
	logMessageProjectFoundConstant             = "Destination project found"
	logMessageProjectSearchFailedConstant      = "Destination project search failed; treating project as absent"
	logMessageProjectCreatedConstant           = "Destination project created"
	logMessageProjectCreationFailedConstant    = "Destination project creation failed; continuing"
	logMessageContentProbeFailedConstant       = "Destination content probe failed; treating repository as empty"
	logMessageContentProbedConstant            = "Destination content probed"
	logMessageCredentialReleaseFailedConstant  = "Credential file removal failed"
	logMessageWorkingCopyReadyConstant         = "Destination working copy ready"
	logFieldProjectPathConstant                = "project_path"
	logFieldProjectIDConstant                  = "project_id"
	logFieldProjectNamespacePathConstant       = "path_with_namespace"
	logFieldProjectReferenceConstant           = "project_reference"
	logFieldRemoteURLConstant                  = "remote_url"
	logFieldHasContentConstant                 = "has_content"
	logFieldWorkingCopyConstant                = "working_copy"
	logFieldInitializedConstant                = "initialized"
)

var errCredentialStoreMissing = errors.New(credentialStoreMissingMessageConstant)

// ProvisionResult describes the prepared destination working copy.
type ProvisionResult struct {
	WorkingCopyPath string
	RemoteURL       string
	ProjectFound    bool
	ProjectCreated  bool
	CreationFailed  bool
	HadContent      bool
	Initialized     bool
}

// ProvisionerDependencies wires collaborators for Provisioner.
type ProvisionerDependencies struct {
	Logger             *zap.Logger
	Reporter           StatusReporter
	RepositoryManager  RepositoryManager
	CredentialStore    *CredentialStore
	FileSystem         filesystem.FileSystem
	Clock              func() time.Time
	ProjectDescription string
	ImportDirectory    string
	RemoteName         string
}

// Provisioner finds or creates the destination project and prepares its local working copy.
type Provisioner struct {
	logger             *zap.Logger
	reporter           StatusReporter
	repositoryManager  RepositoryManager
	credentialStore    *CredentialStore
	fileSystem         filesystem.FileSystem
	clock              func() time.Time
	projectDescription string
	importDirectory    string
	remoteName         string
}

// NewProvisioner constructs a Provisioner.
func NewProvisioner(dependencies ProvisionerDependencies) (*Provisioner, error) {
	if dependencies.RepositoryManager == nil {
		return nil, errRepositoryManagerMissing
	}
	if dependencies.CredentialStore == nil {
		return nil, errCredentialStoreMissing
	}

	provisioner := &Provisioner{
		logger:             dependencies.Logger,
		reporter:           dependencies.Reporter,
		repositoryManager:  dependencies.RepositoryManager,
		credentialStore:    dependencies.CredentialStore,
		fileSystem:         dependencies.FileSystem,
		clock:              dependencies.Clock,
		projectDescription: dependencies.ProjectDescription,
		importDirectory:    dependencies.ImportDirectory,
		remoteName:         dependencies.RemoteName,
	}
	if provisioner.logger == nil {
		provisioner.logger = zap.NewNop()
	}
	if provisioner.fileSystem == nil {
		provisioner.fileSystem = filesystem.OSFileSystem{}
	}
	if provisioner.clock == nil {
		provisioner.clock = time.Now
	}
	if len(provisioner.remoteName) == 0 {
		provisioner.remoteName = defaultRemoteNameConstant
	}
	if len(provisioner.importDirectory) == 0 {
		provisioner.importDirectory = defaultImportDirectoryConstant
	}
	if len(provisioner.projectDescription) == 0 {
		provisioner.projectDescription = defaultProjectDescriptionConstant
	}

	return provisioner, nil
}

// Provision prepares <workspaceRoot>/<repository>. Search and creation failures are logged and tolerated;
// a failure to build the local working copy is returned.
func (provisioner *Provisioner) Provision(executionContext context.Context, client DestinationProjectClient, configuration RunConfiguration, workspaceRoot string) (ProvisionResult, error) {
	repositoryName := configuration.DestinationRepository
	provisioner.reporter.StepStarted(fmt.Sprintf(provisionStepTemplateConstant, repositoryName))

	result, provisionError := provisioner.provision(executionContext, client, configuration, workspaceRoot)
	if provisionError != nil {
		provisioner.reporter.StepFailed()
		return result, provisionError
	}

	provisioner.reporter.StepDone()
	if result.CreationFailed {
		provisioner.reporter.Warning(fmt.Sprintf(projectCreationWarningTemplateConstant, repositoryName))
	}
	provisioner.logger.Info(logMessageWorkingCopyReadyConstant,
		zap.String(logFieldWorkingCopyConstant, result.WorkingCopyPath),
		zap.String(logFieldRemoteURLConstant, result.RemoteURL),
		zap.Bool(logFieldInitializedConstant, result.Initialized),
	)
	return result, nil
}

func (provisioner *Provisioner) provision(executionContext context.Context, client DestinationProjectClient, configuration RunConfiguration, workspaceRoot string) (ProvisionResult, error) {
	repositoryName := configuration.DestinationRepository
	result := ProvisionResult{WorkingCopyPath: filepath.Join(workspaceRoot, repositoryName)}

	project, found, searchError := client.FindProject(executionContext, repositoryName)
	if searchError != nil {
		if isContextError(searchError) {
			return result, searchError
		}
		provisioner.logger.Warn(logMessageProjectSearchFailedConstant, zap.String(logFieldProjectPathConstant, repositoryName), zap.Error(searchError))
	}
	result.ProjectFound = found

	if found {
		provisioner.logger.Info(logMessageProjectFoundConstant,
			zap.String(logFieldProjectPathConstant, repositoryName),
			zap.String(logFieldProjectNamespacePathConstant, project.PathWithNamespace),
			zap.Int(logFieldProjectIDConstant, project.ID),
		)
	} else {
		createdProject, createError := client.CreateProject(executionContext, gitlabapi.CreateProjectRequest{
			Name:        repositoryName,
			Path:        repositoryName,
			Description: provisioner.projectDescription,
		})
		if createError != nil {
			if isContextError(createError) {
				return result, createError
			}
			provisioner.logger.Error(logMessageProjectCreationFailedConstant, zap.String(logFieldProjectPathConstant, repositoryName), zap.Error(createError))
			result.CreationFailed = true
		} else {
			project = createdProject
			result.ProjectCreated = true
			provisioner.logger.Info(logMessageProjectCreatedConstant, zap.String(logFieldProjectPathConstant, repositoryName), zap.Int(logFieldProjectIDConstant, project.ID))
		}
	}

	remoteURL, remoteError := destinationRemoteURL(project, configuration)
	if remoteError != nil {
		return result, remoteError
	}
	result.RemoteURL = remoteURL

	projectReference := gitlabapi.ProjectReference(project, repositoryName)
	hasContent, probeError := client.HasRepositoryContent(executionContext, projectReference)
	if probeError != nil {
		if isContextError(probeError) {
			return result, probeError
		}
		provisioner.logger.Warn(logMessageContentProbeFailedConstant, zap.String(logFieldProjectReferenceConstant, projectReference), zap.Error(probeError))
		hasContent = false
	}
	result.HadContent = hasContent
	provisioner.logger.Info(logMessageContentProbedConstant, zap.String(logFieldProjectReferenceConstant, projectReference), zap.Bool(logFieldHasContentConstant, hasContent))

	if removeError := provisioner.fileSystem.RemoveAll(result.WorkingCopyPath); removeError != nil {
		return result, fmt.Errorf(prepareWorkingCopyErrorTemplateConstant, result.WorkingCopyPath, removeError)
	}

	if hasContent {
		if cloneError := provisioner.cloneExisting(executionContext, configuration, result); cloneError != nil {
			return result, fmt.Errorf(cloneDestinationErrorTemplateConstant, cloneError)
		}
		return result, nil
	}

	if initializeError := provisioner.initialize(executionContext, configuration, result); initializeError != nil {
		return result, fmt.Errorf(initializeDestinationErrorTemplateConstant, initializeError)
	}
	result.Initialized = true
	return result, nil
}

func (provisioner *Provisioner) cloneExisting(executionContext context.Context, configuration RunConfiguration, result ProvisionResult) (cloneError error) {
	release, acquireError := provisioner.credentialStore.Acquire(configuration.DestinationBaseURL, configuration.DestinationToken)
	if acquireError != nil {
		return acquireError
	}
	defer func() {
		if releaseError := release(); releaseError != nil {
			provisioner.logger.Error(logMessageCredentialReleaseFailedConstant, zap.Error(releaseError))
			if cloneError == nil {
				cloneError = releaseError
			}
		}
	}()

	return provisioner.repositoryManager.CloneWithCredentialStore(executionContext, result.RemoteURL, result.WorkingCopyPath, provisioner.credentialStore.Path())
}

func (provisioner *Provisioner) initialize(executionContext context.Context, configuration RunConfiguration, result ProvisionResult) error {
	workingCopyPath := result.WorkingCopyPath
	if mkdirError := provisioner.fileSystem.MkdirAll(workingCopyPath, workingCopyPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(prepareWorkingCopyErrorTemplateConstant, workingCopyPath, mkdirError)
	}

	if initError := provisioner.repositoryManager.Init(executionContext, workingCopyPath); initError != nil {
		return initError
	}

	readme := ReadmeContent{
		RepositoryName:  configuration.DestinationRepository,
		SourceAccount:   configuration.SourceAccount,
		ImportDirectory: provisioner.importDirectory,
		GeneratedAt:     provisioner.clock(),
	}
	readmePath := filepath.Join(workingCopyPath, readmeFileNameConstant)
	if writeError := provisioner.fileSystem.WriteFile(readmePath, []byte(readme.Render()), readmePermissionsConstant); writeError != nil {
		return fmt.Errorf(writeReadmeErrorTemplateConstant, writeError)
	}

	if stageError := provisioner.repositoryManager.Stage(executionContext, workingCopyPath, readmeFileNameConstant); stageError != nil {
		return stageError
	}
	if commitError := provisioner.repositoryManager.Commit(executionContext, workingCopyPath, initialCommitMessageConstant, readmeFileNameConstant); commitError != nil {
		return commitError
	}
	if renameError := provisioner.repositoryManager.RenameCurrentBranch(executionContext, workingCopyPath, primaryBranchNameConstant); renameError != nil {
		return renameError
	}
	return provisioner.repositoryManager.AddRemote(executionContext, workingCopyPath, provisioner.remoteName, result.RemoteURL)
}

func destinationRemoteURL(project gitlabapi.Project, configuration RunConfiguration) (string, error) {
	if len(project.HTTPURLToRepo) > 0 {
		return project.HTTPURLToRepo, nil
	}
	remoteURL, urlError := gitrepo.RepositoryURL(configuration.DestinationBaseURL, configuration.DestinationRepository)
	if urlError != nil {
		return "", fmt.Errorf(remoteURLErrorTemplateConstant, configuration.DestinationRepository, urlError)
	}
	return remoteURL, nil
}

func isContextError(candidate error) bool {
	return errors.Is(candidate, context.Canceled) || errors.Is(candidate, context.DeadlineExceeded)
}
