package output

import (
	"encoding/json"
	"fmt"

	"github.com/mtelnov/code2llm/internal/types"
)

// BuildBundleDocument assembles the structured form of a run for JSON output.
// tokenCounts may be nil when token counting is disabled; when present it is
// indexed parallel to selectionResult.Files.
func BuildBundleDocument(selectionResult *types.SelectionResult, treeText string, tokenCounts []int, tokenModel string) types.BundleDocument {
	document := types.BundleDocument{
		Root:    selectionResult.RootPath,
		Tree:    treeText,
		Files:   make([]types.FileEntry, 0, len(selectionResult.Files)),
		Skipped: selectionResult.Skipped,
		Model:   tokenModel,
	}
	for fileIndex, relativeFilePath := range selectionResult.Files {
		fileEntry := types.FileEntry{Path: relativeFilePath}
		if fileIndex < len(tokenCounts) {
			fileEntry.Tokens = tokenCounts[fileIndex]
			document.TotalTokens += tokenCounts[fileIndex]
		}
		document.Files = append(document.Files, fileEntry)
	}
	return document
}

// RenderBundleJSON marshals the document with indentation for terminal use.
func RenderBundleJSON(document types.BundleDocument) (string, error) {
	jsonBytes, marshalError := json.MarshalIndent(document, "", "  ")
	if marshalError != nil {
		return "", fmt.Errorf("marshaling bundle document: %w", marshalError)
	}
	return string(jsonBytes), nil
}
