// Package workspace locates the project root and collects the ordered file
// selection that downstream rendering consumes.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mtelnov/code2llm/internal/utils"
)

// FindRepositoryRoot walks upward from startPath looking for a version-control
// metadata entry named .git (directory or file, to cover worktrees). The
// search starts at the containing directory when startPath is a file. Absence
// of a repository is not an error: the starting directory is returned
// unchanged and ignore-file features are simply skipped.
func FindRepositoryRoot(startPath string) (string, error) {
	absoluteStartPath, absolutePathError := filepath.Abs(startPath)
	if absolutePathError != nil {
		return "", fmt.Errorf("getting absolute path for %s: %w", startPath, absolutePathError)
	}

	startDirectory := absoluteStartPath
	if pathInformation, statError := os.Stat(absoluteStartPath); statError == nil && !pathInformation.IsDir() {
		startDirectory = filepath.Dir(absoluteStartPath)
	}

	currentDirectory := startDirectory
	for {
		gitEntryPath := filepath.Join(currentDirectory, utils.GitDirectoryName)
		if _, statError := os.Lstat(gitEntryPath); statError == nil {
			return currentDirectory, nil
		}
		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			break
		}
		currentDirectory = parentDirectory
	}

	return startDirectory, nil
}
