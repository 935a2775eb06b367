package mirror

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/ghmirror/internal/filesystem"
)

const (
	workspaceDirectoryPatternConstant        = "ghmirror-"
	workspacePermissionsConstant             = 0o755
	noPublicRepositoriesMessageConstant      = "no public repositories found"
	noPublicRepositoriesTemplateConstant     = "%w for %s"
	sourceListerMissingMessageConstant       = "source repository lister not configured"
	destinationFactoryMissingMessageConstant = "destination client factory not configured"
	prompterMissingMessageConstant           = "prompter not configured"
	credentialPathErrorTemplateConstant      = "resolve credential file path: %w"
	workspaceRootErrorTemplateConstant       = "prepare workspace root: %w"
	listRepositoriesErrorTemplateConstant    = "list public repositories of %s: %w"
	selectionErrorTemplateConstant           = "read repository selection: %w"
	destinationClientErrorTemplateConstant   = "construct destination client: %w"
	provisionErrorTemplateConstant           = "prepare destination repository %s: %w"
	cleanupErrorTemplateConstant             = "clean up workspace: %w"
	workspaceHeadingTemplateConstant         = "Workspace: %s"
	importHeadingConstant                    = "Importing repositories"
	summaryHeadingConstant                   = "Summary"
	logMessageRunConfiguredConstant          = "Run configuration collected"
	logMessageWorkspaceReadyConstant         = "Workspace ready"
	logMessageRepositoriesListedConstant     = "Source repositories listed"
	logMessageRepositoriesSelectedConstant   = "Source repositories selected"
	logMessagePublishErrorConstant           = "Publishing failed"
	logMessageCommitCountFailedConstant      = "Commit count unavailable"
	logMessageReportFailedConstant           = "Run report not written"
	logMessageRunFinishedConstant            = "Run finished"
	logFieldSourceAccountConstant            = "source_account"
	logFieldDestinationURLConstant           = "destination_url"
	logFieldDestinationRepositoryConstant    = "destination_repository"
	logFieldListedCountConstant              = "listed"
	logFieldSelectedCountConstant            = "selected"
	logFieldSucceededCountConstant           = "succeeded"
	logFieldPublishedConstant                = "published"
	logFieldCommitCountConstant              = "commit_count"
	logFieldReportPathConstant               = "report_path"
	logFieldSelectedRepositoriesConstant     = "repositories"
)

// ErrNoPublicRepositories indicates the source account has nothing to import.
var ErrNoPublicRepositories = errors.New(noPublicRepositoriesMessageConstant)

var (
	errSourceListerMissing       = errors.New(sourceListerMissingMessageConstant)
	errDestinationFactoryMissing = errors.New(destinationFactoryMissingMessageConstant)
	errPrompterMissing           = errors.New(prompterMissingMessageConstant)
)

// ServiceDependencies describes the collaborators of a mirror run.
type ServiceDependencies struct {
	Logger                   *zap.Logger
	Reporter                 StatusReporter
	Prompter                 Prompter
	SourceLister             SourceRepositoryLister
	DestinationClientFactory DestinationClientFactory
	RepositoryManager        RepositoryManager
	Synchronizer             ContentSynchronizer
	FileSystem               filesystem.FileSystem
	PathResolver             PathResolver
	CommitCounter            CommitCounter
	Clock                    func() time.Time
	Configuration            CommandConfiguration
	LogFilePath              string
}

// Service runs the interactive mirror workflow end to end.
type Service struct {
	logger                   *zap.Logger
	reporter                 StatusReporter
	prompter                 Prompter
	sourceLister             SourceRepositoryLister
	destinationClientFactory DestinationClientFactory
	fileSystem               filesystem.FileSystem
	pathResolver             PathResolver
	commitCounter            CommitCounter
	clock                    func() time.Time
	configuration            CommandConfiguration
	logFilePath              string
	collector                *ConfigurationCollector
	selector                 *RepositorySelector
	provisioner              *Provisioner
	importer                 *Importer
	publisher                *Publisher
	cleaner                  *WorkspaceCleaner
	reportWriter             *ReportWriter
}

// NewService validates dependencies and assembles the run stages.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Prompter == nil {
		return nil, errPrompterMissing
	}
	if dependencies.SourceLister == nil {
		return nil, errSourceListerMissing
	}
	if dependencies.DestinationClientFactory == nil {
		return nil, errDestinationFactoryMissing
	}

	service := &Service{
		logger:                   dependencies.Logger,
		reporter:                 dependencies.Reporter,
		prompter:                 dependencies.Prompter,
		sourceLister:             dependencies.SourceLister,
		destinationClientFactory: dependencies.DestinationClientFactory,
		fileSystem:               dependencies.FileSystem,
		pathResolver:             dependencies.PathResolver,
		commitCounter:            dependencies.CommitCounter,
		clock:                    dependencies.Clock,
		configuration:            dependencies.Configuration.Sanitize(),
		logFilePath:              dependencies.LogFilePath,
	}
	if service.logger == nil {
		service.logger = zap.NewNop()
	}
	if service.fileSystem == nil {
		service.fileSystem = filesystem.OSFileSystem{}
	}
	if service.pathResolver == nil {
		service.pathResolver = filesystem.NewPathResolver(nil)
	}
	if service.clock == nil {
		service.clock = time.Now
	}

	credentialPath, credentialPathError := service.pathResolver.Resolve(service.configuration.Publish.CredentialFile)
	if credentialPathError != nil {
		return nil, fmt.Errorf(credentialPathErrorTemplateConstant, credentialPathError)
	}
	credentialStore, credentialStoreError := NewCredentialStore(credentialPath, service.configuration.Publish.CredentialUsername, service.fileSystem)
	if credentialStoreError != nil {
		return nil, credentialStoreError
	}

	provisioner, provisionerError := NewProvisioner(ProvisionerDependencies{
		Logger:             service.logger,
		Reporter:           service.reporter,
		RepositoryManager:  dependencies.RepositoryManager,
		CredentialStore:    credentialStore,
		FileSystem:         service.fileSystem,
		Clock:              service.clock,
		ProjectDescription: service.configuration.Destination.ProjectDescription,
		ImportDirectory:    service.configuration.Workspace.ImportDirectory,
		RemoteName:         service.configuration.Publish.RemoteName,
	})
	if provisionerError != nil {
		return nil, provisionerError
	}

	importer, importerError := NewImporter(ImporterDependencies{
		Logger:            service.logger,
		Reporter:          service.reporter,
		RepositoryManager: dependencies.RepositoryManager,
		Synchronizer:      dependencies.Synchronizer,
		FileSystem:        service.fileSystem,
		ImportDirectory:   service.configuration.Workspace.ImportDirectory,
	})
	if importerError != nil {
		return nil, importerError
	}

	publisher, publisherError := NewPublisher(PublisherDependencies{
		Logger:            service.logger,
		Reporter:          service.reporter,
		RepositoryManager: dependencies.RepositoryManager,
		CredentialStore:   credentialStore,
		RemoteName:        service.configuration.Publish.RemoteName,
	})
	if publisherError != nil {
		return nil, publisherError
	}

	service.collector = NewConfigurationCollector(service.prompter, service.configuration)
	service.selector = NewRepositorySelector(service.prompter, service.reporter)
	service.provisioner = provisioner
	service.importer = importer
	service.publisher = publisher
	service.cleaner = NewWorkspaceCleaner(service.logger, service.prompter, service.reporter, service.fileSystem)
	service.reportWriter = NewReportWriter(service.fileSystem)

	return service, nil
}

// Run collects configuration, lists and selects source repositories, prepares the destination working copy,
// imports each selection, publishes, summarizes, and offers workspace cleanup.
// Per-repository and publish failures are folded into the summary; everything else is returned.
func (service *Service) Run(executionContext context.Context) (RunSummary, error) {
	startedAt := service.clock()

	runConfiguration, collectError := service.collector.Collect()
	if collectError != nil {
		return RunSummary{}, collectError
	}
	service.logger.Info(logMessageRunConfiguredConstant,
		zap.String(logFieldSourceAccountConstant, runConfiguration.SourceAccount),
		zap.String(logFieldDestinationURLConstant, runConfiguration.DestinationBaseURL),
		zap.String(logFieldDestinationRepositoryConstant, runConfiguration.DestinationRepository),
	)

	listing, listError := service.listSourceRepositories(executionContext, runConfiguration.SourceAccount)
	if listError != nil {
		return RunSummary{}, listError
	}

	selected, selectError := service.selector.Select(runConfiguration.SourceAccount, listing)
	if selectError != nil {
		return RunSummary{}, fmt.Errorf(selectionErrorTemplateConstant, selectError)
	}
	service.logger.Info(logMessageRepositoriesSelectedConstant,
		zap.Int(logFieldSelectedCountConstant, len(selected)),
		zap.Strings(logFieldSelectedRepositoriesConstant, repositoryNames(selected)),
	)

	destinationClient, clientError := service.destinationClientFactory(runConfiguration)
	if clientError != nil {
		return RunSummary{}, fmt.Errorf(destinationClientErrorTemplateConstant, clientError)
	}

	workspaceRoot, workspaceError := service.prepareWorkspace()
	if workspaceError != nil {
		return RunSummary{}, fmt.Errorf(workspaceRootErrorTemplateConstant, workspaceError)
	}
	service.reporter.Info(fmt.Sprintf(workspaceHeadingTemplateConstant, workspaceRoot))

	provisionResult, provisionError := service.provisioner.Provision(executionContext, destinationClient, runConfiguration, workspaceRoot)
	if provisionError != nil {
		return RunSummary{}, fmt.Errorf(provisionErrorTemplateConstant, runConfiguration.DestinationRepository, provisionError)
	}

	if len(selected) > 0 {
		service.reporter.Heading(importHeadingConstant)
	}
	importResults, importError := service.importer.ImportAll(executionContext, selected, runConfiguration.SourceAccount, provisionResult.WorkingCopyPath, workspaceRoot)
	if importError != nil {
		return NewRunSummary(runConfiguration, importResults, PublishResult{}), importError
	}

	publishResult, publishError := service.publisher.Publish(executionContext, provisionResult.WorkingCopyPath, runConfiguration)
	if publishError != nil {
		service.logger.Error(logMessagePublishErrorConstant, zap.Error(publishError))
		if isContextError(publishError) {
			return NewRunSummary(runConfiguration, importResults, publishResult), publishError
		}
	}

	summary := NewRunSummary(runConfiguration, importResults, publishResult)
	summary.WorkingCopy = provisionResult.WorkingCopyPath
	summary.LogFile = service.logFilePath
	summary.StartedAt = startedAt
	summary.CommitCount = service.countCommits(provisionResult.WorkingCopyPath)
	summary.FinishedAt = service.clock()

	service.reporter.Heading(summaryHeadingConstant)
	PrintSummary(service.reporter, summary, service.configuration.Publish.RemoteName)
	service.writeReport(summary)
	service.logger.Info(logMessageRunFinishedConstant,
		zap.Int(logFieldSelectedCountConstant, summary.Selected),
		zap.Int(logFieldSucceededCountConstant, summary.Succeeded),
		zap.Bool(logFieldPublishedConstant, summary.Published),
		zap.Int(logFieldCommitCountConstant, summary.CommitCount),
	)

	if _, cleanupError := service.cleaner.Clean(workspaceRoot); cleanupError != nil {
		return summary, fmt.Errorf(cleanupErrorTemplateConstant, cleanupError)
	}

	return summary, nil
}

func (service *Service) listSourceRepositories(executionContext context.Context, account string) ([]SourceRepository, error) {
	listed, listError := service.sourceLister.ListPublicRepositories(executionContext, account)
	if listError != nil {
		return nil, fmt.Errorf(listRepositoriesErrorTemplateConstant, account, listError)
	}
	service.logger.Info(logMessageRepositoriesListedConstant,
		zap.String(logFieldSourceAccountConstant, account),
		zap.Int(logFieldListedCountConstant, len(listed)),
	)
	if len(listed) == 0 {
		return nil, fmt.Errorf(noPublicRepositoriesTemplateConstant, ErrNoPublicRepositories, account)
	}
	return sourceRepositoriesFromListing(listed), nil
}

// prepareWorkspace uses the configured root when set and a fresh temporary directory otherwise.
func (service *Service) prepareWorkspace() (string, error) {
	configuredRoot := service.configuration.Workspace.Root
	if len(configuredRoot) == 0 {
		temporaryRoot, temporaryError := service.fileSystem.MkdirTemp("", workspaceDirectoryPatternConstant)
		if temporaryError != nil {
			return "", temporaryError
		}
		service.logger.Info(logMessageWorkspaceReadyConstant, zap.String(logFieldWorkspaceConstant, temporaryRoot))
		return temporaryRoot, nil
	}

	resolvedRoot, resolveError := service.pathResolver.Resolve(configuredRoot)
	if resolveError != nil {
		return "", resolveError
	}
	if mkdirError := service.fileSystem.MkdirAll(resolvedRoot, workspacePermissionsConstant); mkdirError != nil {
		return "", mkdirError
	}
	service.logger.Info(logMessageWorkspaceReadyConstant, zap.String(logFieldWorkspaceConstant, resolvedRoot))
	return resolvedRoot, nil
}

func (service *Service) countCommits(workingCopyPath string) int {
	if service.commitCounter == nil {
		return 0
	}
	commitCount, countError := service.commitCounter(workingCopyPath)
	if countError != nil {
		service.logger.Warn(logMessageCommitCountFailedConstant, zap.String(logFieldWorkingCopyConstant, workingCopyPath), zap.Error(countError))
		return 0
	}
	return commitCount
}

func (service *Service) writeReport(summary RunSummary) {
	if !service.configuration.Report.Enabled || len(service.logFilePath) == 0 {
		return
	}
	reportPath := ReportPath(service.logFilePath)
	if writeError := service.reportWriter.Write(reportPath, summary); writeError != nil {
		service.logger.Warn(logMessageReportFailedConstant, zap.String(logFieldReportPathConstant, reportPath), zap.Error(writeError))
		return
	}
	service.reporter.Info(fmt.Sprintf(reportWrittenTemplateConstant, reportPath))
}

func repositoryNames(repositories []SourceRepository) []string {
	names := make([]string, 0, len(repositories))
	for _, repository := range repositories {
		names = append(names, repository.Name)
	}
	return names
}
