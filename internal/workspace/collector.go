package workspace

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mtelnov/code2llm/internal/gitignore"
	"github.com/mtelnov/code2llm/internal/types"
	"github.com/mtelnov/code2llm/internal/utils"
)

// CollectOptions configures one collection run.
type CollectOptions struct {
	// FollowSymlinks enables descent into directory symlinks. The default
	// treats them as opaque leaves so a link cycle cannot produce an
	// unbounded traversal.
	FollowSymlinks bool
	// LooksBinary is the injected binary-content predicate. Files for which
	// it returns true are recorded as skipped instead of selected. A nil
	// predicate selects every readable file.
	LooksBinary func(path string) bool
}

// collector threads the accumulating result through the traversal so the core
// stays re-entrant; no package-level state is touched.
type collector struct {
	rootPath   string
	patternSet *gitignore.PatternSet
	options    CollectOptions
	result     *types.SelectionResult
}

// Collect walks every input path depth-first and returns the ordered
// SelectionResult. Children of a directory are visited in lexicographic order
// so repeated runs over an unchanged tree produce identical output. A missing
// input path is recorded as a *types.PathNotFoundError on the result without
// aborting collection of the remaining inputs.
func Collect(inputPaths []string, rootPath string, patternSet *gitignore.PatternSet, options CollectOptions) *types.SelectionResult {
	selectionResult := &types.SelectionResult{RootPath: rootPath}
	pathCollector := &collector{
		rootPath:   rootPath,
		patternSet: patternSet,
		options:    options,
		result:     selectionResult,
	}

	visitedInputPaths := make(map[string]struct{})
	for _, inputPath := range inputPaths {
		absoluteInputPath, absolutePathError := filepath.Abs(inputPath)
		if absolutePathError != nil {
			selectionResult.Failures = append(selectionResult.Failures, &types.ReadError{Path: inputPath, Err: absolutePathError})
			continue
		}
		cleanInputPath := filepath.Clean(absoluteInputPath)
		if _, alreadyVisited := visitedInputPaths[cleanInputPath]; alreadyVisited {
			continue
		}
		visitedInputPaths[cleanInputPath] = struct{}{}

		pathInformation, statError := os.Stat(cleanInputPath)
		if statError != nil {
			if os.IsNotExist(statError) {
				selectionResult.Failures = append(selectionResult.Failures, &types.PathNotFoundError{Path: inputPath})
			} else {
				selectionResult.Failures = append(selectionResult.Failures, &types.ReadError{Path: inputPath, Err: statError})
			}
			continue
		}

		if pathInformation.IsDir() {
			// An explicitly named directory is traversed regardless of its
			// own exclusion state; patterns apply to its contents.
			pathCollector.collectDirectory(cleanInputPath, false)
		} else {
			pathCollector.collectFile(cleanInputPath, false)
		}
	}

	return selectionResult
}

// collectDirectory visits the children of directoryPath in sorted order,
// testing each against the pattern set before any descent. An excluded
// subdirectory is pruned unless a later negation could re-include one of its
// descendants, in which case traversal continues with the inherited exclusion
// state so only explicitly re-included paths surface.
func (pathCollector *collector) collectDirectory(directoryPath string, parentExcluded bool) {
	directoryEntries, readDirectoryError := os.ReadDir(directoryPath)
	if readDirectoryError != nil {
		pathCollector.result.Failures = append(pathCollector.result.Failures, &types.ReadError{Path: directoryPath, Err: readDirectoryError})
		return
	}

	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		if entryName == utils.GitDirectoryName {
			continue
		}

		childPath := filepath.Join(directoryPath, entryName)
		relativeChildPath := utils.RelativePathOrSelf(childPath, pathCollector.rootPath)

		isDirectory := directoryEntry.IsDir()
		if directoryEntry.Type()&fs.ModeSymlink != 0 {
			targetInformation, statError := os.Stat(childPath)
			if statError != nil {
				pathCollector.result.Skipped = append(pathCollector.result.Skipped, types.SkippedPath{Path: relativeChildPath, Reason: types.SkipReasonUnreadable})
				continue
			}
			if targetInformation.IsDir() {
				if !pathCollector.options.FollowSymlinks {
					pathCollector.result.Skipped = append(pathCollector.result.Skipped, types.SkippedPath{Path: relativeChildPath, Reason: types.SkipReasonSymlink})
					continue
				}
				isDirectory = true
			}
		}

		evaluation := pathCollector.patternSet.Evaluate(relativeChildPath, isDirectory)
		excluded := parentExcluded
		if evaluation.Matched {
			excluded = evaluation.Excluded
		}

		if isDirectory {
			if excluded && !pathCollector.patternSet.MayReincludeWithin(relativeChildPath) {
				continue
			}
			pathCollector.collectDirectory(childPath, excluded)
			continue
		}

		if excluded {
			continue
		}
		pathCollector.selectFile(childPath, relativeChildPath)
	}
}

// collectFile handles an explicitly named file input.
func (pathCollector *collector) collectFile(filePath string, parentExcluded bool) {
	relativeFilePath := utils.RelativePathOrSelf(filePath, pathCollector.rootPath)
	evaluation := pathCollector.patternSet.Evaluate(relativeFilePath, false)
	excluded := parentExcluded
	if evaluation.Matched {
		excluded = evaluation.Excluded
	}
	if excluded {
		return
	}
	pathCollector.selectFile(filePath, relativeFilePath)
}

// selectFile applies the binary predicate and appends the file to the result.
func (pathCollector *collector) selectFile(filePath string, relativeFilePath string) {
	if pathCollector.options.LooksBinary != nil && pathCollector.options.LooksBinary(filePath) {
		pathCollector.result.Skipped = append(pathCollector.result.Skipped, types.SkippedPath{Path: relativeFilePath, Reason: types.SkipReasonBinary})
		return
	}
	pathCollector.result.Files = append(pathCollector.result.Files, relativeFilePath)
}
