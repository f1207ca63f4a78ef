// Package types defines every cross-package data structure used by the code2llm CLI.
package types

const (
	CommandBundle = "bundle"
	CommandTree   = "tree"

	FormatRaw  = "raw"
	FormatJSON = "json"
)

// SkippedPath records a path that was visited but left out of the selection,
// together with the reason for the skip.
type SkippedPath struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Skip reasons recorded on SelectionResult.
const (
	SkipReasonBinary     = "binary"
	SkipReasonSymlink    = "symlink"
	SkipReasonUnreadable = "unreadable"
)

// SelectionResult is the ordered outcome of one collection run. Files holds
// root-relative, forward-slash paths in traversal order. Failures holds the
// structured errors recovered during traversal; the caller decides whether any
// of them is fatal.
type SelectionResult struct {
	RootPath string        `json:"root"`
	Files    []string      `json:"files"`
	Skipped  []SkippedPath `json:"skipped,omitempty"`
	Failures []error       `json:"-"`
}

// FileEntry is one bundled file in the JSON output document.
type FileEntry struct {
	Path   string `json:"path"`
	Tokens int    `json:"tokens,omitempty"`
}

// BundleDocument is the structured form of a rendered bundle.
type BundleDocument struct {
	Root        string        `json:"root"`
	Tree        string        `json:"tree"`
	Files       []FileEntry   `json:"files"`
	Skipped     []SkippedPath `json:"skipped,omitempty"`
	TotalTokens int           `json:"totalTokens,omitempty"`
	Model       string        `json:"model,omitempty"`
}
