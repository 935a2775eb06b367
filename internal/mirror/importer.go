package mirror

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/ghmirror/internal/filesystem"
)

const (
	scratchDirectoryNameConstant              = "sources"
	importCommitMessageTemplateConstant       = "Import %s from GitHub user %s"
	importStepTemplateConstant                = "Importing %s"
	repositoryManagerMissingMessageConstant   = "repository manager not configured"
	contentSynchronizerMissingMessageConstant = "content synchronizer not configured"
	logMessageImportStartedConstant           = "Repository import started"
	logMessageImportSucceededConstant         = "Repository imported"
	logMessageImportFailedConstant            = "Repository import failed"
	logMessageScratchCleanupFailedConstant    = "Scratch clone removal failed"
	logFieldRepositoryNameConstant            = "repository"
	logFieldCloneURLConstant                  = "clone_url"
	logFieldStageConstant                     = "stage"
	logFieldScratchDirectoryConstant          = "scratch_directory"
	logFieldImportDirectoryConstant           = "import_directory"
)

// ImportStage names the step at which an import failed.
type ImportStage string

// Import stages in execution order.
const (
	ImportStageClone  ImportStage = "clone"
	ImportStageCopy   ImportStage = "copy"
	ImportStageStage  ImportStage = "stage"
	ImportStageCommit ImportStage = "commit"
)

var (
	errRepositoryManagerMissing   = errors.New(repositoryManagerMissingMessageConstant)
	errContentSynchronizerMissing = errors.New(contentSynchronizerMissingMessageConstant)
)

// ImportResult records the outcome of one repository import.
type ImportResult struct {
	RepositoryName string      `yaml:"repository"`
	Succeeded      bool        `yaml:"succeeded"`
	FailedStage    ImportStage `yaml:"failed_stage,omitempty"`
	Error          error       `yaml:"-"`
}

// ImporterDependencies wires collaborators for Importer.
type ImporterDependencies struct {
	Logger            *zap.Logger
	Reporter          StatusReporter
	RepositoryManager RepositoryManager
	Synchronizer      ContentSynchronizer
	FileSystem        filesystem.FileSystem
	ImportDirectory   string
}

// Importer copies source repositories into the destination working copy, one commit each.
type Importer struct {
	logger            *zap.Logger
	reporter          StatusReporter
	repositoryManager RepositoryManager
	synchronizer      ContentSynchronizer
	fileSystem        filesystem.FileSystem
	importDirectory   string
}

// NewImporter constructs an Importer.
func NewImporter(dependencies ImporterDependencies) (*Importer, error) {
	if dependencies.RepositoryManager == nil {
		return nil, errRepositoryManagerMissing
	}
	if dependencies.Synchronizer == nil {
		return nil, errContentSynchronizerMissing
	}

	importer := &Importer{
		logger:            dependencies.Logger,
		reporter:          dependencies.Reporter,
		repositoryManager: dependencies.RepositoryManager,
		synchronizer:      dependencies.Synchronizer,
		fileSystem:        dependencies.FileSystem,
		importDirectory:   dependencies.ImportDirectory,
	}
	if importer.logger == nil {
		importer.logger = zap.NewNop()
	}
	if importer.fileSystem == nil {
		importer.fileSystem = filesystem.OSFileSystem{}
	}
	if len(importer.importDirectory) == 0 {
		importer.importDirectory = defaultImportDirectoryConstant
	}

	return importer, nil
}

// ImportAll imports repositories in order. A failed import does not stop the loop; a cancelled context does.
func (importer *Importer) ImportAll(executionContext context.Context, repositories []SourceRepository, sourceAccount string, workingCopyPath string, workspaceRoot string) ([]ImportResult, error) {
	results := make([]ImportResult, 0, len(repositories))
	for _, repository := range repositories {
		if contextError := executionContext.Err(); contextError != nil {
			return results, contextError
		}
		results = append(results, importer.Import(executionContext, repository, sourceAccount, workingCopyPath, workspaceRoot))
	}
	return results, nil
}

// Import clones repository into <workspaceRoot>/sources/<name>, copies it into <import directory>/<name>
// of the working copy without .git, stages and commits it, and removes the scratch clone.
func (importer *Importer) Import(executionContext context.Context, repository SourceRepository, sourceAccount string, workingCopyPath string, workspaceRoot string) ImportResult {
	importer.reporter.StepStarted(fmt.Sprintf(importStepTemplateConstant, repository.Name))

	scratchDirectory := filepath.Join(workspaceRoot, scratchDirectoryNameConstant, repository.Name)
	relativeImportPath := path.Join(importer.importDirectory, repository.Name)
	importer.logger.Info(logMessageImportStartedConstant,
		zap.String(logFieldRepositoryNameConstant, repository.Name),
		zap.String(logFieldCloneURLConstant, repository.CloneURL),
		zap.String(logFieldScratchDirectoryConstant, scratchDirectory),
		zap.String(logFieldImportDirectoryConstant, relativeImportPath),
	)

	defer importer.removeScratch(repository.Name, scratchDirectory)

	failedStage, importError := importer.transfer(executionContext, repository, sourceAccount, workingCopyPath, scratchDirectory, relativeImportPath)
	if importError != nil {
		importer.reporter.StepFailed()
		importer.logger.Error(logMessageImportFailedConstant,
			zap.String(logFieldRepositoryNameConstant, repository.Name),
			zap.String(logFieldStageConstant, string(failedStage)),
			zap.Error(importError),
		)
		return ImportResult{RepositoryName: repository.Name, FailedStage: failedStage, Error: importError}
	}

	importer.reporter.StepDone()
	importer.logger.Info(logMessageImportSucceededConstant, zap.String(logFieldRepositoryNameConstant, repository.Name))
	return ImportResult{RepositoryName: repository.Name, Succeeded: true}
}

func (importer *Importer) transfer(executionContext context.Context, repository SourceRepository, sourceAccount string, workingCopyPath string, scratchDirectory string, relativeImportPath string) (ImportStage, error) {
	if removeError := importer.fileSystem.RemoveAll(scratchDirectory); removeError != nil {
		return ImportStageClone, removeError
	}
	if cloneError := importer.repositoryManager.Clone(executionContext, repository.CloneURL, scratchDirectory); cloneError != nil {
		return ImportStageClone, cloneError
	}

	targetDirectory := filepath.Join(workingCopyPath, filepath.FromSlash(relativeImportPath))
	if copyError := importer.synchronizer.Mirror(executionContext, scratchDirectory, targetDirectory); copyError != nil {
		return ImportStageCopy, copyError
	}

	if stageError := importer.repositoryManager.Stage(executionContext, workingCopyPath, relativeImportPath); stageError != nil {
		return ImportStageStage, stageError
	}

	commitMessage := fmt.Sprintf(importCommitMessageTemplateConstant, repository.Name, sourceAccount)
	if commitError := importer.repositoryManager.Commit(executionContext, workingCopyPath, commitMessage, relativeImportPath); commitError != nil {
		return ImportStageCommit, commitError
	}

	return "", nil
}

func (importer *Importer) removeScratch(repositoryName string, scratchDirectory string) {
	if removeError := importer.fileSystem.RemoveAll(scratchDirectory); removeError != nil {
		importer.logger.Warn(logMessageScratchCleanupFailedConstant,
			zap.String(logFieldRepositoryNameConstant, repositoryName),
			zap.String(logFieldScratchDirectoryConstant, scratchDirectory),
			zap.Error(removeError),
		)
	}
}
