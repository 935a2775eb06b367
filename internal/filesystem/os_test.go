package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghmirror/internal/filesystem"
)

func TestOSFileSystemWriteFileTightensExistingPermissions(testInstance *testing.T) {
	filePath := filepath.Join(testInstance.TempDir(), "credentials")
	require.NoError(testInstance, os.WriteFile(filePath, []byte("stale"), 0o644))

	fileSystem := filesystem.OSFileSystem{}
	require.NoError(testInstance, fileSystem.WriteFile(filePath, []byte("fresh"), 0o600))

	fileInfo, statError := os.Stat(filePath)
	require.NoError(testInstance, statError)
	require.Equal(testInstance, os.FileMode(0o600), fileInfo.Mode().Perm())
}

func TestOSFileSystemRemoveIgnoresMissingFiles(testInstance *testing.T) {
	fileSystem := filesystem.OSFileSystem{}
	require.NoError(testInstance, fileSystem.Remove(filepath.Join(testInstance.TempDir(), "absent")))
}

func TestOSFileSystemWriteFileReplacesExistingFile(testInstance *testing.T) {
	filePath := filepath.Join(testInstance.TempDir(), "credentials")
	require.NoError(testInstance, os.WriteFile(filePath, []byte("stale content that is longer"), 0o644))
	staleInfo, staleStatError := os.Stat(filePath)
	require.NoError(testInstance, staleStatError)

	fileSystem := filesystem.OSFileSystem{}
	require.NoError(testInstance, fileSystem.WriteFile(filePath, []byte("fresh"), 0o600))

	freshInfo, freshStatError := os.Stat(filePath)
	require.NoError(testInstance, freshStatError)
	require.False(testInstance, os.SameFile(staleInfo, freshInfo))

	content, readError := os.ReadFile(filePath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "fresh", string(content))
}
