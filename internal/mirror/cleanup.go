package mirror

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/ghmirror/internal/filesystem"
)

const (
	cleanupPromptTemplateConstant        = "Delete the temporary workspace %s? (y/n) "
	workspaceRemovedTemplateConstant     = "Removed workspace %s"
	workspaceRetainedTemplateConstant    = "Workspace kept at %s"
	workspaceRemoveErrorTemplateConstant = "remove workspace %s: %w"
	logMessageWorkspaceRemovedConstant   = "Workspace removed"
	logMessageWorkspaceRetainedConstant  = "Workspace retained"
	logFieldWorkspaceConstant            = "workspace"
)

// WorkspaceCleaner offers to delete the workspace root at the end of a run.
type WorkspaceCleaner struct {
	logger     *zap.Logger
	prompter   Prompter
	reporter   StatusReporter
	fileSystem filesystem.FileSystem
}

// NewWorkspaceCleaner constructs a WorkspaceCleaner.
func NewWorkspaceCleaner(logger *zap.Logger, prompter Prompter, reporter StatusReporter, fileSystem filesystem.FileSystem) *WorkspaceCleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	return &WorkspaceCleaner{logger: logger, prompter: prompter, reporter: reporter, fileSystem: fileSystem}
}

// Clean asks for confirmation and removes workspaceRoot, or reports where it was kept.
func (cleaner *WorkspaceCleaner) Clean(workspaceRoot string) (bool, error) {
	confirmed, confirmError := cleaner.prompter.Confirm(fmt.Sprintf(cleanupPromptTemplateConstant, workspaceRoot))
	if confirmError != nil {
		return false, confirmError
	}

	if !confirmed {
		cleaner.logger.Info(logMessageWorkspaceRetainedConstant, zap.String(logFieldWorkspaceConstant, workspaceRoot))
		cleaner.reporter.Info(fmt.Sprintf(workspaceRetainedTemplateConstant, workspaceRoot))
		return false, nil
	}

	if removeError := cleaner.fileSystem.RemoveAll(workspaceRoot); removeError != nil {
		return false, fmt.Errorf(workspaceRemoveErrorTemplateConstant, workspaceRoot, removeError)
	}
	cleaner.logger.Info(logMessageWorkspaceRemovedConstant, zap.String(logFieldWorkspaceConstant, workspaceRoot))
	cleaner.reporter.Info(fmt.Sprintf(workspaceRemovedTemplateConstant, workspaceRoot))
	return true, nil
}
