package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mtelnov/code2llm/internal/gitignore"
	"github.com/mtelnov/code2llm/internal/types"
)

const testFileContent = "package placeholder\n"

// writeTestFile creates a file with any missing parent directories.
func writeTestFile(testingHandle *testing.T, filePath string) {
	testingHandle.Helper()
	if directoryError := os.MkdirAll(filepath.Dir(filePath), 0o755); directoryError != nil {
		testingHandle.Fatalf("creating parent directories for %s: %v", filePath, directoryError)
	}
	if writeError := os.WriteFile(filePath, []byte(testFileContent), 0o644); writeError != nil {
		testingHandle.Fatalf("writing %s: %v", filePath, writeError)
	}
}

func compileTestPatternSet(testingHandle *testing.T, ignoreLines []string, userExclusions []string) *gitignore.PatternSet {
	testingHandle.Helper()
	patternSet, compileError := gitignore.CompilePatternSet(ignoreLines, userExclusions)
	if compileError != nil {
		testingHandle.Fatalf("compiling patterns: %v", compileError)
	}
	return patternSet
}

func TestCollectPrunesExcludedDirectories(testingHandle *testing.T) {
	rootPath := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootPath, "main.py"))
	writeTestFile(testingHandle, filepath.Join(rootPath, "debug.log"))
	writeTestFile(testingHandle, filepath.Join(rootPath, "dist", "bundle.js"))
	writeTestFile(testingHandle, filepath.Join(rootPath, "utils", "helpers.py"))

	patternSet := compileTestPatternSet(testingHandle, []string{"dist/", "*.log"}, nil)
	selectionResult := Collect([]string{rootPath}, rootPath, patternSet, CollectOptions{})

	expectedFiles := []string{"main.py", "utils/helpers.py"}
	if !reflect.DeepEqual(selectionResult.Files, expectedFiles) {
		testingHandle.Errorf("Files = %v, want %v", selectionResult.Files, expectedFiles)
	}
	if len(selectionResult.Failures) != 0 {
		testingHandle.Errorf("Failures = %v, want none", selectionResult.Failures)
	}
}

func TestCollectIsDeterministic(testingHandle *testing.T) {
	rootPath := testingHandle.TempDir()
	for _, relativePath := range []string{"b/two.go", "a/one.go", "c.go", "a/zz/deep.go"} {
		writeTestFile(testingHandle, filepath.Join(rootPath, relativePath))
	}

	patternSet := compileTestPatternSet(testingHandle, nil, nil)
	firstRun := Collect([]string{rootPath}, rootPath, patternSet, CollectOptions{})
	secondRun := Collect([]string{rootPath}, rootPath, patternSet, CollectOptions{})

	if !reflect.DeepEqual(firstRun.Files, secondRun.Files) {
		testingHandle.Errorf("repeated runs differ: %v vs %v", firstRun.Files, secondRun.Files)
	}
	expectedFiles := []string{"a/one.go", "a/zz/deep.go", "b/two.go", "c.go"}
	if !reflect.DeepEqual(firstRun.Files, expectedFiles) {
		testingHandle.Errorf("Files = %v, want lexicographic order %v", firstRun.Files, expectedFiles)
	}
}

func TestCollectRecordsMissingInputs(testingHandle *testing.T) {
	rootPath := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootPath, "present.go"))

	patternSet := compileTestPatternSet(testingHandle, nil, nil)
	missingPath := filepath.Join(rootPath, "no-such-file.go")
	selectionResult := Collect([]string{missingPath, rootPath}, rootPath, patternSet, CollectOptions{})

	if len(selectionResult.Failures) != 1 {
		testingHandle.Fatalf("Failures = %v, want exactly one", selectionResult.Failures)
	}
	var notFoundError *types.PathNotFoundError
	if !errors.As(selectionResult.Failures[0], &notFoundError) {
		testingHandle.Fatalf("failure type = %T, want *types.PathNotFoundError", selectionResult.Failures[0])
	}
	if notFoundError.Path != missingPath {
		testingHandle.Errorf("PathNotFoundError.Path = %q, want %q", notFoundError.Path, missingPath)
	}
	expectedFiles := []string{"present.go"}
	if !reflect.DeepEqual(selectionResult.Files, expectedFiles) {
		testingHandle.Errorf("Files = %v, want %v", selectionResult.Files, expectedFiles)
	}
}

func TestCollectAlwaysSkipsGitMetadata(testingHandle *testing.T) {
	rootPath := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootPath, ".git", "HEAD"))
	writeTestFile(testingHandle, filepath.Join(rootPath, ".git", "objects", "pack", "data.idx"))
	writeTestFile(testingHandle, filepath.Join(rootPath, "main.go"))

	patternSet := compileTestPatternSet(testingHandle, nil, nil)
	selectionResult := Collect([]string{rootPath}, rootPath, patternSet, CollectOptions{})

	expectedFiles := []string{"main.go"}
	if !reflect.DeepEqual(selectionResult.Files, expectedFiles) {
		testingHandle.Errorf("Files = %v, want %v", selectionResult.Files, expectedFiles)
	}
}

func TestCollectSkipsBinaryFiles(testingHandle *testing.T) {
	rootPath := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootPath, "main.go"))
	writeTestFile(testingHandle, filepath.Join(rootPath, "image.png"))

	binaryPredicate := func(path string) bool {
		return filepath.Ext(path) == ".png"
	}
	patternSet := compileTestPatternSet(testingHandle, nil, nil)
	selectionResult := Collect([]string{rootPath}, rootPath, patternSet, CollectOptions{LooksBinary: binaryPredicate})

	expectedFiles := []string{"main.go"}
	if !reflect.DeepEqual(selectionResult.Files, expectedFiles) {
		testingHandle.Errorf("Files = %v, want %v", selectionResult.Files, expectedFiles)
	}
	expectedSkipped := []types.SkippedPath{{Path: "image.png", Reason: types.SkipReasonBinary}}
	if !reflect.DeepEqual(selectionResult.Skipped, expectedSkipped) {
		testingHandle.Errorf("Skipped = %v, want %v", selectionResult.Skipped, expectedSkipped)
	}
}

func TestCollectNegationReincludesInsideExcludedDirectory(testingHandle *testing.T) {
	rootPath := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootPath, "logs", "keep.txt"))
	writeTestFile(testingHandle, filepath.Join(rootPath, "logs", "other.txt"))
	writeTestFile(testingHandle, filepath.Join(rootPath, "main.go"))

	patternSet := compileTestPatternSet(testingHandle, []string{"logs/", "!logs/keep.txt"}, nil)
	selectionResult := Collect([]string{rootPath}, rootPath, patternSet, CollectOptions{})

	expectedFiles := []string{"logs/keep.txt", "main.go"}
	if !reflect.DeepEqual(selectionResult.Files, expectedFiles) {
		testingHandle.Errorf("Files = %v, want %v", selectionResult.Files, expectedFiles)
	}
}

func TestCollectExplicitFileInputHonorsPatterns(testingHandle *testing.T) {
	rootPath := testingHandle.TempDir()
	excludedFilePath := filepath.Join(rootPath, "debug.log")
	selectedFilePath := filepath.Join(rootPath, "main.go")
	writeTestFile(testingHandle, excludedFilePath)
	writeTestFile(testingHandle, selectedFilePath)

	patternSet := compileTestPatternSet(testingHandle, []string{"*.log"}, nil)
	selectionResult := Collect([]string{excludedFilePath, selectedFilePath}, rootPath, patternSet, CollectOptions{})

	expectedFiles := []string{"main.go"}
	if !reflect.DeepEqual(selectionResult.Files, expectedFiles) {
		testingHandle.Errorf("Files = %v, want %v", selectionResult.Files, expectedFiles)
	}
}

func TestCollectDeduplicatesInputPaths(testingHandle *testing.T) {
	rootPath := testingHandle.TempDir()
	filePath := filepath.Join(rootPath, "main.go")
	writeTestFile(testingHandle, filePath)

	patternSet := compileTestPatternSet(testingHandle, nil, nil)
	selectionResult := Collect([]string{filePath, filePath}, rootPath, patternSet, CollectOptions{})

	expectedFiles := []string{"main.go"}
	if !reflect.DeepEqual(selectionResult.Files, expectedFiles) {
		testingHandle.Errorf("Files = %v, want %v", selectionResult.Files, expectedFiles)
	}
}

func TestCollectDirectorySymlinks(testingHandle *testing.T) {
	rootPath := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootPath, "real", "inner.go"))
	linkPath := filepath.Join(rootPath, "linked")
	if symlinkError := os.Symlink(filepath.Join(rootPath, "real"), linkPath); symlinkError != nil {
		testingHandle.Skipf("symlinks unavailable: %v", symlinkError)
	}

	patternSet := compileTestPatternSet(testingHandle, nil, nil)

	defaultResult := Collect([]string{rootPath}, rootPath, patternSet, CollectOptions{})
	expectedDefaultFiles := []string{"real/inner.go"}
	if !reflect.DeepEqual(defaultResult.Files, expectedDefaultFiles) {
		testingHandle.Errorf("Files without following symlinks = %v, want %v", defaultResult.Files, expectedDefaultFiles)
	}
	expectedSkipped := []types.SkippedPath{{Path: "linked", Reason: types.SkipReasonSymlink}}
	if !reflect.DeepEqual(defaultResult.Skipped, expectedSkipped) {
		testingHandle.Errorf("Skipped = %v, want %v", defaultResult.Skipped, expectedSkipped)
	}

	followedResult := Collect([]string{rootPath}, rootPath, patternSet, CollectOptions{FollowSymlinks: true})
	expectedFollowedFiles := []string{"linked/inner.go", "real/inner.go"}
	if !reflect.DeepEqual(followedResult.Files, expectedFollowedFiles) {
		testingHandle.Errorf("Files when following symlinks = %v, want %v", followedResult.Files, expectedFollowedFiles)
	}
}
