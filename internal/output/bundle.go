package output

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mtelnov/code2llm/internal/types"
	"github.com/mtelnov/code2llm/internal/utils"
)

const (
	// treeBlockHeader introduces the selection tree inside the bundle.
	treeBlockHeader = "Files listed in this prompt:"
	// codeFence delimits each file's content block.
	codeFence = "```"
)

// DefaultSystemPrompt is the instruction header prepended to bundles unless
// the caller disables or overrides it.
const DefaultSystemPrompt = `Act as an experienced senior software engineer. Generate clean, well-structured, production-ready code that follows current best practices and avoids deprecated APIs.

Requirements:
- Code must be complete and ready to copy-paste without modifications
- Use current, non-deprecated APIs and libraries
- Follow proper naming conventions and code organization
- Include error handling where appropriate
- Ensure code is performant and follows security best practices

Comments policy:
- Good code comments itself
- Comment code, not your actions
- Since I use git for change tracking, never add placeholder comments marking changes that has been made
- Only add comments that explain complex logic, algorithms, or non-obvious decisions
- Avoid obvious comments that simply restate what the code does
- Remember: good code should be self-documenting through clear naming and structure

Changes policy:
- Apply only and only requested changes and nothing else
- Avoid removing existing comments or reformatting non-changed parts of the code
- Follow the same coding and documentation style as it is in the modified file

If the requirements are unclear, ask for clarification rather than making assumptions.`

// BundleOptions configures bundle assembly.
type BundleOptions struct {
	// SystemPrompt is prepended verbatim when non-empty.
	SystemPrompt string
	// Warn receives a human-readable message for every file skipped during
	// assembly. A nil Warn discards the messages.
	Warn func(message string)
}

// AssembleBundle renders the final prompt document: the system prompt, the
// selection tree, then one fenced block per selected file. A file that fails
// to read or turns out to contain binary data is skipped with a warning and a
// skip record; the remaining files are still bundled.
func AssembleBundle(selectionResult *types.SelectionResult, treeText string, options BundleOptions) (string, []types.SkippedPath) {
	warn := options.Warn
	if warn == nil {
		warn = func(string) {}
	}

	var bundleBuilder strings.Builder
	if options.SystemPrompt != "" {
		bundleBuilder.WriteString(options.SystemPrompt)
		bundleBuilder.WriteString("\n\n")
	}

	bundleBuilder.WriteString(treeBlockHeader)
	bundleBuilder.WriteString("\n")
	bundleBuilder.WriteString(treeText)
	bundleBuilder.WriteString("\n\n")

	var skippedPaths []types.SkippedPath
	for _, relativeFilePath := range selectionResult.Files {
		absoluteFilePath := filepath.Join(selectionResult.RootPath, filepath.FromSlash(relativeFilePath))
		fileBytes, fileReadError := os.ReadFile(absoluteFilePath)
		if fileReadError != nil {
			readError := &types.ReadError{Path: relativeFilePath, Err: fileReadError}
			warn(readError.Error())
			skippedPaths = append(skippedPaths, types.SkippedPath{Path: relativeFilePath, Reason: types.SkipReasonUnreadable})
			continue
		}
		if utils.IsBinary(fileBytes) {
			skippedPaths = append(skippedPaths, types.SkippedPath{Path: relativeFilePath, Reason: types.SkipReasonBinary})
			continue
		}

		bundleBuilder.WriteString(relativeFilePath)
		bundleBuilder.WriteString(":\n")
		bundleBuilder.WriteString(codeFence)
		bundleBuilder.WriteString("\n")
		bundleBuilder.WriteString(string(fileBytes))
		bundleBuilder.WriteString("\n")
		bundleBuilder.WriteString(codeFence)
		bundleBuilder.WriteString("\n\n")
	}

	return bundleBuilder.String(), skippedPaths
}
