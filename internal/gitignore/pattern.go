// Package gitignore compiles version-control-style ignore patterns and answers
// exclusion queries for candidate paths relative to the project root.
package gitignore

import (
	"strings"

	"github.com/mtelnov/code2llm/internal/types"
)

// Pattern is a single compiled ignore rule. Patterns are immutable once compiled.
type Pattern struct {
	rawText       string
	negated       bool
	directoryOnly bool
	anchored      bool
	segments      []patternSegment
}

// patternSegment is one part of a pattern split by "/". A segment is either a
// literal, a glob requiring character-level matching, or a double-star that
// spans zero or more path segments.
type patternSegment struct {
	value      string
	isGlob     bool
	doubleStar bool
}

// RawText returns the original pattern line.
func (pattern Pattern) RawText() string { return pattern.rawText }

// Negated reports whether the pattern re-includes previously excluded paths.
func (pattern Pattern) Negated() bool { return pattern.negated }

// parsePatternLine compiles one raw ignore line. It returns a nil Pattern for
// blank lines and comments. Structurally malformed patterns (unterminated
// escape or character class) produce a *types.ConfigError.
func parsePatternLine(line string, lineNumber int) (*Pattern, error) {
	originalLine := line
	line = strings.TrimLeft(line, " \t")
	line = trimTrailingWhitespace(line)

	if line == "" {
		return nil, nil
	}
	if strings.HasPrefix(line, "#") {
		return nil, nil
	}

	// A backslash escapes a leading ! or # so it is treated literally. The
	// \! check must precede the ! check or escaped bangs read as negations.
	negated := false
	if strings.HasPrefix(line, "\\!") {
		line = line[1:]
	} else if strings.HasPrefix(line, "!") {
		negated = true
		line = line[1:]
	}
	if strings.HasPrefix(line, "\\#") {
		line = line[1:]
	}

	directoryOnly := false
	if strings.HasSuffix(line, "/") {
		directoryOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	// Lines that reduce to an empty body ("!", "/") carry no rule; they are
	// dropped like blank lines rather than failing the run.
	if line == "" {
		return nil, nil
	}

	if trailingBackslashCount(line)%2 == 1 {
		return nil, &types.ConfigError{Pattern: originalLine, Line: lineNumber, Reason: "unterminated escape at end of pattern"}
	}

	anchored, line := determineAnchoring(line)
	if line == "" {
		return nil, nil
	}

	segments, segmentError := parsePatternSegments(line)
	if segmentError != nil {
		return nil, &types.ConfigError{Pattern: originalLine, Line: lineNumber, Reason: segmentError.Error()}
	}

	return &Pattern{
		rawText:       originalLine,
		negated:       negated,
		directoryOnly: directoryOnly,
		anchored:      anchored,
		segments:      segments,
	}, nil
}

// determineAnchoring resolves whether a pattern is rooted to the ignore file's
// directory. A pattern is anchored if it starts with a slash or contains a
// slash anywhere except as part of a leading "**/".
func determineAnchoring(line string) (bool, string) {
	if strings.HasPrefix(line, "/") {
		return true, line[1:]
	}
	if strings.Contains(line, "/") && !strings.HasPrefix(line, "**/") {
		return true, line
	}
	return false, line
}

// parsePatternSegments splits a pattern by "/" and classifies each segment,
// validating glob syntax so matching never encounters a malformed expression.
func parsePatternSegments(patternText string) ([]patternSegment, error) {
	parts := strings.Split(patternText, "/")
	segments := make([]patternSegment, 0, len(parts))

	for _, part := range parts {
		if part == "" {
			continue
		}

		segment := patternSegment{value: part}
		if part == "**" {
			segment.doubleStar = true
			segment.value = ""
		} else if strings.ContainsAny(part, "*?[\\") {
			if validationError := validateGlobSegment(part); validationError != nil {
				return nil, validationError
			}
			segment.isGlob = true
		}
		segments = append(segments, segment)
	}

	return segments, nil
}

// trimTrailingWhitespace removes trailing spaces and tabs from a line unless
// the final space is escaped with a backslash, in which case the escape is
// resolved and the space kept.
func trimTrailingWhitespace(line string) string {
	end := len(line)
	for end > 0 && (line[end-1] == ' ' || line[end-1] == '\t') {
		end--
	}
	if end == len(line) {
		return line
	}
	if trailingBackslashCount(line[:end])%2 == 1 && line[end] == ' ' {
		return line[:end-1] + " "
	}
	return line[:end]
}

// trailingBackslashCount counts consecutive backslashes at the end of text.
// An odd count means the final backslash escapes whatever follows.
func trailingBackslashCount(text string) int {
	count := 0
	for index := len(text) - 1; index >= 0 && text[index] == '\\'; index-- {
		count++
	}
	return count
}
