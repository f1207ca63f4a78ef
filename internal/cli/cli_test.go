package cli

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mtelnov/code2llm/internal/types"
)

// prepareProject builds a small project tree and makes it the working
// directory so root discovery and configuration lookup stay inside it.
func prepareProject(testingHandle *testing.T, files map[string]string) string {
	testingHandle.Helper()
	rootPath := testingHandle.TempDir()
	for relativePath, content := range files {
		absolutePath := filepath.Join(rootPath, filepath.FromSlash(relativePath))
		if mkdirError := os.MkdirAll(filepath.Dir(absolutePath), 0o755); mkdirError != nil {
			testingHandle.Fatalf("creating directories for %s: %v", relativePath, mkdirError)
		}
		if writeError := os.WriteFile(absolutePath, []byte(content), 0o644); writeError != nil {
			testingHandle.Fatalf("writing %s: %v", relativePath, writeError)
		}
	}
	testingHandle.Setenv("HOME", testingHandle.TempDir())
	originalWorkingDirectory, getwdError := os.Getwd()
	if getwdError != nil {
		testingHandle.Fatalf("getting working directory: %v", getwdError)
	}
	if chdirError := os.Chdir(rootPath); chdirError != nil {
		testingHandle.Fatalf("changing directory to %s: %v", rootPath, chdirError)
	}
	testingHandle.Cleanup(func() {
		if chdirError := os.Chdir(originalWorkingDirectory); chdirError != nil {
			testingHandle.Errorf("restoring working directory: %v", chdirError)
		}
	})
	return rootPath
}

// captureStandardOutput runs action with os.Stdout redirected to a pipe and
// returns everything written.
func captureStandardOutput(testingHandle *testing.T, action func() error) (string, error) {
	testingHandle.Helper()
	readEnd, writeEnd, pipeError := os.Pipe()
	if pipeError != nil {
		testingHandle.Fatalf("creating pipe: %v", pipeError)
	}
	originalStdout := os.Stdout
	os.Stdout = writeEnd
	defer func() { os.Stdout = originalStdout }()

	actionError := action()
	if closeError := writeEnd.Close(); closeError != nil {
		testingHandle.Fatalf("closing pipe: %v", closeError)
	}
	capturedBytes, readError := io.ReadAll(readEnd)
	if readError != nil {
		testingHandle.Fatalf("reading captured output: %v", readError)
	}
	return string(capturedBytes), actionError
}

func TestTreeCommandHonorsIgnoreFile(testingHandle *testing.T) {
	prepareProject(testingHandle, map[string]string{
		".gitignore":       "dist/\n*.log\n",
		"main.py":          "print('hello')\n",
		"debug.log":        "noise\n",
		"dist/bundle.js":   "generated\n",
		"utils/helpers.py": "def helper(): pass\n",
	})

	capturedOutput, runError := captureStandardOutput(testingHandle, func() error {
		return runBundleOrTreeCommand(types.CommandTree, []string{"."}, runOptions{format: types.FormatRaw})
	})
	if runError != nil {
		testingHandle.Fatalf("tree command failed: %v", runError)
	}

	expectedTree := ".gitignore\nmain.py\nutils\n    └── helpers.py\n"
	if capturedOutput != expectedTree {
		testingHandle.Errorf("tree output = %q, want %q", capturedOutput, expectedTree)
	}
}

func TestBundleCommandConcatenatesFileContents(testingHandle *testing.T) {
	prepareProject(testingHandle, map[string]string{
		"main.go":     "package main\n",
		"pkg/util.go": "package pkg\n",
	})

	capturedOutput, runError := captureStandardOutput(testingHandle, func() error {
		return runBundleOrTreeCommand(types.CommandBundle, []string{"."}, runOptions{
			format:              types.FormatRaw,
			disableSystemPrompt: true,
		})
	})
	if runError != nil {
		testingHandle.Fatalf("bundle command failed: %v", runError)
	}

	if !strings.HasPrefix(capturedOutput, "Files listed in this prompt:\n") {
		testingHandle.Errorf("bundle should open with the tree header:\n%s", capturedOutput)
	}
	for _, expectedFragment := range []string{
		"main.go:\n```\npackage main\n\n```\n",
		"pkg/util.go:\n```\npackage pkg\n\n```\n",
	} {
		if !strings.Contains(capturedOutput, expectedFragment) {
			testingHandle.Errorf("bundle missing %q:\n%s", expectedFragment, capturedOutput)
		}
	}
}

func TestBundleCommandUserExclusionsOverrideIgnoreFile(testingHandle *testing.T) {
	prepareProject(testingHandle, map[string]string{
		".gitignore":      "!config/keep.txt\n",
		"config/keep.txt": "secret\n",
		"config/app.yaml": "key: value\n",
		"main.go":         "package main\n",
	})

	capturedOutput, runError := captureStandardOutput(testingHandle, func() error {
		return runBundleOrTreeCommand(types.CommandTree, []string{"."}, runOptions{
			format:            types.FormatRaw,
			pathConfiguration: pathOptions{exclusionPatterns: []string{"config/*"}},
		})
	})
	if runError != nil {
		testingHandle.Fatalf("tree command failed: %v", runError)
	}
	if strings.Contains(capturedOutput, "keep.txt") {
		testingHandle.Errorf("user exclusion should override the ignore-file negation:\n%s", capturedOutput)
	}
	if !strings.Contains(capturedOutput, "main.go") {
		testingHandle.Errorf("unrelated files should stay selected:\n%s", capturedOutput)
	}
}

func TestCommandReportsMalformedIgnoreFile(testingHandle *testing.T) {
	prepareProject(testingHandle, map[string]string{
		".gitignore": "broken[\n",
		"main.go":    "package main\n",
	})

	_, runError := captureStandardOutput(testingHandle, func() error {
		return runBundleOrTreeCommand(types.CommandTree, []string{"."}, runOptions{format: types.FormatRaw})
	})
	if runError == nil {
		testingHandle.Fatalf("malformed ignore file should abort the run")
	}
	var configError *types.ConfigError
	if !errors.As(runError, &configError) {
		testingHandle.Errorf("error type = %T, want *types.ConfigError", runError)
	}
}

func TestCommandFailsWhenNothingSelected(testingHandle *testing.T) {
	rootPath := prepareProject(testingHandle, map[string]string{"main.go": "package main\n"})

	_, runError := captureStandardOutput(testingHandle, func() error {
		return runBundleOrTreeCommand(types.CommandTree, []string{filepath.Join(rootPath, "absent")}, runOptions{format: types.FormatRaw})
	})
	if runError == nil {
		testingHandle.Fatalf("a run selecting no files with failures should return an error")
	}
	var notFoundError *types.PathNotFoundError
	if !errors.As(runError, &notFoundError) {
		testingHandle.Errorf("error type = %T, want *types.PathNotFoundError", runError)
	}
}

func TestCommandToleratesPartialFailures(testingHandle *testing.T) {
	rootPath := prepareProject(testingHandle, map[string]string{"main.go": "package main\n"})

	capturedOutput, runError := captureStandardOutput(testingHandle, func() error {
		return runBundleOrTreeCommand(types.CommandTree, []string{filepath.Join(rootPath, "absent"), "."}, runOptions{format: types.FormatRaw})
	})
	if runError != nil {
		testingHandle.Fatalf("partial failure should not abort when files were selected: %v", runError)
	}
	if !strings.Contains(capturedOutput, "main.go") {
		testingHandle.Errorf("selected files missing from output:\n%s", capturedOutput)
	}
}

func TestBundleCommandJSONFormat(testingHandle *testing.T) {
	prepareProject(testingHandle, map[string]string{"main.go": "package main\n"})

	capturedOutput, runError := captureStandardOutput(testingHandle, func() error {
		return runBundleOrTreeCommand(types.CommandBundle, []string{"."}, runOptions{format: types.FormatJSON})
	})
	if runError != nil {
		testingHandle.Fatalf("bundle command failed: %v", runError)
	}
	for _, expectedFragment := range []string{`"root"`, `"tree"`, `"files"`, `"main.go"`} {
		if !strings.Contains(capturedOutput, expectedFragment) {
			testingHandle.Errorf("JSON output missing %s:\n%s", expectedFragment, capturedOutput)
		}
	}
}

func TestIsSupportedFormat(testingHandle *testing.T) {
	if !isSupportedFormat(types.FormatRaw) || !isSupportedFormat(types.FormatJSON) {
		testingHandle.Errorf("raw and json must be supported formats")
	}
	if isSupportedFormat("yaml") {
		testingHandle.Errorf("yaml is not a supported format")
	}
}
