package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	homeShortcutConstant = "~"
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// PathResolver turns configured paths into absolute paths.
type PathResolver struct {
	homeDirectoryProvider HomeDirectoryProvider
}

// NewPathResolver constructs a PathResolver; a nil provider uses os.UserHomeDir.
func NewPathResolver(provider HomeDirectoryProvider) PathResolver {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return PathResolver{homeDirectoryProvider: provider}
}

// Resolve expands a leading ~ to the home directory and makes the result absolute.
// Empty input stays empty. Paths such as ~alice are left unexpanded.
func (resolver PathResolver) Resolve(configuredPath string) (string, error) {
	trimmedPath := strings.TrimSpace(configuredPath)
	if len(trimmedPath) == 0 {
		return "", nil
	}

	if trimmedPath == homeShortcutConstant || strings.HasPrefix(trimmedPath, homeShortcutConstant+"/") || strings.HasPrefix(trimmedPath, homeShortcutConstant+string(filepath.Separator)) {
		homeDirectory, homeError := resolver.homeDirectoryProvider()
		if homeError != nil {
			return "", homeError
		}
		trimmedPath = filepath.Join(homeDirectory, trimmedPath[len(homeShortcutConstant):])
	}

	return filepath.Abs(trimmedPath)
}
