// Package filesync copies repository working trees with rsync, leaving out Git metadata.
package filesync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/temirov/ghmirror/internal/execshell"
	"github.com/temirov/ghmirror/internal/filesystem"
)

const (
	rsyncArchiveFlagConstant             = "-a"
	rsyncExcludeGitFlagConstant          = "--exclude=.git"
	directoryTrailingSeparatorConstant   = string(filepath.Separator)
	targetDirectoryPermissionsConstant   = 0o755
	executorMissingMessageConstant       = "rsync executor not configured"
	directoryMissingMessageConstant      = "source and target directories are required"
	prepareTargetErrorTemplateConstant   = "prepare %s: %w"
	synchronizationErrorTemplateConstant = "copy %s to %s: %w"
)

var (
	// ErrRsyncExecutorNotConfigured indicates the synchronizer was built without an executor.
	ErrRsyncExecutorNotConfigured = errors.New(executorMissingMessageConstant)
	// ErrDirectoryMissing indicates an empty source or target argument.
	ErrDirectoryMissing = errors.New(directoryMissingMessageConstant)
)

// RsyncExecutor runs rsync invocations.
type RsyncExecutor interface {
	ExecuteRsync(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// DirectoryCreator creates the target directory before copying.
type DirectoryCreator interface {
	MkdirAll(path string, permissions fs.FileMode) error
}

// Synchronizer mirrors directory contents.
type Synchronizer struct {
	executor         RsyncExecutor
	directoryCreator DirectoryCreator
}

// NewSynchronizer constructs a Synchronizer. A nil directoryCreator uses the operating system.
func NewSynchronizer(executor RsyncExecutor, directoryCreator DirectoryCreator) (*Synchronizer, error) {
	if executor == nil {
		return nil, ErrRsyncExecutorNotConfigured
	}
	if directoryCreator == nil {
		directoryCreator = filesystem.OSFileSystem{}
	}
	return &Synchronizer{executor: executor, directoryCreator: directoryCreator}, nil
}

// Mirror copies the contents of sourceDirectory into targetDirectory recursively, preserving attributes and skipping .git.
func (synchronizer *Synchronizer) Mirror(executionContext context.Context, sourceDirectory string, targetDirectory string) error {
	trimmedSource := strings.TrimSpace(sourceDirectory)
	trimmedTarget := strings.TrimSpace(targetDirectory)
	if len(trimmedSource) == 0 || len(trimmedTarget) == 0 {
		return ErrDirectoryMissing
	}

	if mkdirError := synchronizer.directoryCreator.MkdirAll(trimmedTarget, targetDirectoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(prepareTargetErrorTemplateConstant, trimmedTarget, mkdirError)
	}

	details := execshell.CommandDetails{
		Arguments: []string{
			rsyncArchiveFlagConstant,
			rsyncExcludeGitFlagConstant,
			withTrailingSeparator(trimmedSource),
			withTrailingSeparator(trimmedTarget),
		},
	}

	if _, executionError := synchronizer.executor.ExecuteRsync(executionContext, details); executionError != nil {
		return fmt.Errorf(synchronizationErrorTemplateConstant, trimmedSource, trimmedTarget, executionError)
	}

	return nil
}

func withTrailingSeparator(directory string) string {
	return strings.TrimRight(directory, directoryTrailingSeparatorConstant) + directoryTrailingSeparatorConstant
}
