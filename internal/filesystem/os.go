// Package filesystem wraps the operating system file primitives used by a
// mirror run so workflows can be exercised against temporary directories.
package filesystem

import (
	"errors"
	"io/fs"
	"os"
)

// FileSystem lists the file operations a mirror run performs.
type FileSystem interface {
	MkdirAll(path string, permissions fs.FileMode) error
	MkdirTemp(parentDirectory string, pattern string) (string, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
	Remove(path string) error
	RemoveAll(path string) error
}

// OSFileSystem implements FileSystem using the operating system primitives.
type OSFileSystem struct{}

// MkdirAll ensures a directory hierarchy exists with the provided permissions.
func (OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}

// MkdirTemp creates a uniquely named directory.
func (OSFileSystem) MkdirTemp(parentDirectory string, pattern string) (string, error) {
	return os.MkdirTemp(parentDirectory, pattern)
}

// WriteFile replaces path with a new file created at the requested permissions, so data never sits
// on disk under the mode of a previous file.
func (fileSystem OSFileSystem) WriteFile(path string, data []byte, permissions fs.FileMode) error {
	if removeError := fileSystem.Remove(path); removeError != nil {
		return removeError
	}
	file, openError := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, permissions)
	if openError != nil {
		return openError
	}
	if chmodError := file.Chmod(permissions); chmodError != nil {
		return errors.Join(chmodError, file.Close())
	}
	if _, writeError := file.Write(data); writeError != nil {
		return errors.Join(writeError, file.Close())
	}
	return file.Close()
}

// Remove deletes a single file. Missing files are not an error.
func (OSFileSystem) Remove(path string) error {
	removeError := os.Remove(path)
	if removeError != nil && errors.Is(removeError, fs.ErrNotExist) {
		return nil
	}
	return removeError
}

// RemoveAll deletes a directory tree.
func (OSFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}
