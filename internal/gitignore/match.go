package gitignore

import (
	"errors"
	"strings"
)

// matchPattern reports whether a compiled pattern matches the candidate path.
// pathSegments is the root-relative path split by "/". A directory-only
// pattern matches the directory itself and, via prefix matching, every
// candidate beneath it, directory or file.
func matchPattern(pattern *Pattern, pathSegments []string, isDirectory bool) bool {
	if len(pathSegments) == 0 {
		return false
	}

	if pattern.directoryOnly {
		// The named directory itself matches exactly; a file candidate can
		// only lie beneath the match, so it is restricted to the prefix form.
		if isDirectory && matchAgainstPath(pattern, pathSegments, false) {
			return true
		}
		return matchAgainstPath(pattern, pathSegments, true)
	}
	return matchAgainstPath(pattern, pathSegments, false)
}

// matchAgainstPath matches the pattern's segments against the path, either
// exactly or as a proper prefix of it.
func matchAgainstPath(pattern *Pattern, pathSegments []string, prefixMatch bool) bool {
	if pattern.anchored {
		if prefixMatch {
			return matchSegmentsPrefix(pattern.segments, pathSegments)
		}
		return matchSegmentsExact(pattern.segments, pathSegments)
	}

	// Floating patterns may match starting at any depth.
	maximumStart := len(pathSegments) - len(pattern.segments)
	if prefixMatch {
		maximumStart = len(pathSegments) - 1
	}
	for start := 0; start <= maximumStart; start++ {
		if prefixMatch {
			if matchSegmentsPrefix(pattern.segments, pathSegments[start:]) {
				return true
			}
		} else if matchSegmentsExact(pattern.segments, pathSegments[start:]) {
			return true
		}
	}

	// A leading ** can absorb zero segments, so the pattern may still match
	// even when it has more segments than the path.
	if len(pattern.segments) > 0 && pattern.segments[0].doubleStar {
		if prefixMatch {
			return matchSegmentsPrefix(pattern.segments, pathSegments)
		}
		return matchSegmentsExact(pattern.segments, pathSegments)
	}

	return false
}

// matchSegmentsExact matches pattern segments against the whole path.
func matchSegmentsExact(patternSegments []patternSegment, pathSegments []string) bool {
	if len(patternSegments) == 0 {
		return len(pathSegments) == 0
	}

	segment := patternSegments[0]
	if segment.doubleStar {
		for skip := 0; skip <= len(pathSegments); skip++ {
			if matchSegmentsExact(patternSegments[1:], pathSegments[skip:]) {
				return true
			}
		}
		return false
	}

	if len(pathSegments) == 0 {
		return false
	}
	if !matchSingleSegment(segment, pathSegments[0]) {
		return false
	}
	return matchSegmentsExact(patternSegments[1:], pathSegments[1:])
}

// matchSegmentsPrefix matches pattern segments as a proper prefix of the path.
// Used for directory-only patterns evaluated against files inside the
// directory: the file must lie strictly beneath the matched directory.
func matchSegmentsPrefix(patternSegments []patternSegment, pathSegments []string) bool {
	if len(patternSegments) == 0 {
		return len(pathSegments) > 0
	}

	segment := patternSegments[0]
	if segment.doubleStar {
		for skip := 0; skip <= len(pathSegments); skip++ {
			if matchSegmentsPrefix(patternSegments[1:], pathSegments[skip:]) {
				return true
			}
		}
		return false
	}

	if len(pathSegments) == 0 {
		return false
	}
	if !matchSingleSegment(segment, pathSegments[0]) {
		return false
	}
	return matchSegmentsPrefix(patternSegments[1:], pathSegments[1:])
}

// matchSingleSegment matches one pattern segment against one path segment.
func matchSingleSegment(segment patternSegment, pathSegment string) bool {
	if segment.doubleStar {
		return true
	}
	if !segment.isGlob {
		return segment.value == pathSegment
	}
	return matchGlobExpression(segment.value, pathSegment)
}

// matchGlobExpression matches a glob expression against a single path segment.
// Supported tokens: * (any run of non-separator characters), ? (exactly one
// character), [...] character classes with leading ! or ^ negation and ranges,
// and backslash escapes. Expressions are validated at compile time, so
// malformed syntax cannot reach this function.
func matchGlobExpression(globExpression, candidate string) bool {
	if globExpression == "*" {
		return true
	}
	return matchGlobRecursive(globExpression, candidate)
}

func matchGlobRecursive(globExpression, candidate string) bool {
	for len(globExpression) > 0 {
		switch globExpression[0] {
		case '*':
			for len(globExpression) > 0 && globExpression[0] == '*' {
				globExpression = globExpression[1:]
			}
			if len(globExpression) == 0 {
				return true
			}
			for skip := 0; skip <= len(candidate); skip++ {
				if matchGlobRecursive(globExpression, candidate[skip:]) {
					return true
				}
			}
			return false
		case '?':
			if len(candidate) == 0 {
				return false
			}
			globExpression = globExpression[1:]
			candidate = candidate[1:]
		case '[':
			if len(candidate) == 0 {
				return false
			}
			matched, nextIndex := matchCharacterClass(globExpression, candidate[0])
			if !matched {
				return false
			}
			globExpression = globExpression[nextIndex:]
			candidate = candidate[1:]
		case '\\':
			globExpression = globExpression[1:]
			fallthrough
		default:
			if len(candidate) == 0 || globExpression[0] != candidate[0] {
				return false
			}
			globExpression = globExpression[1:]
			candidate = candidate[1:]
		}
	}
	return len(candidate) == 0
}

// matchCharacterClass evaluates a [...] class starting at globExpression[0]
// against one candidate byte. It returns whether the byte is accepted and the
// index of the first byte after the closing bracket.
func matchCharacterClass(globExpression string, candidate byte) (bool, int) {
	index := 1
	negatedClass := false
	if index < len(globExpression) && (globExpression[index] == '!' || globExpression[index] == '^') {
		negatedClass = true
		index++
	}

	matched := false
	firstMember := true
	for index < len(globExpression) {
		if globExpression[index] == ']' && !firstMember {
			return matched != negatedClass, index + 1
		}
		firstMember = false

		memberCharacter := globExpression[index]
		if memberCharacter == '\\' && index+1 < len(globExpression) {
			index++
			memberCharacter = globExpression[index]
		}

		// Range member such as a-z; a trailing dash is a literal.
		if index+2 < len(globExpression) && globExpression[index+1] == '-' && globExpression[index+2] != ']' {
			rangeEnd := globExpression[index+2]
			if rangeEnd == '\\' && index+3 < len(globExpression) {
				index++
				rangeEnd = globExpression[index+2]
			}
			if memberCharacter <= candidate && candidate <= rangeEnd {
				matched = true
			}
			index += 3
			continue
		}

		if candidate == memberCharacter {
			matched = true
		}
		index++
	}

	// Validation guarantees a closing bracket; unreachable for compiled patterns.
	return false, len(globExpression)
}

// validateGlobSegment checks a glob segment for structural problems that would
// make matching undefined: an escape with nothing following it, or a character
// class with no closing bracket.
func validateGlobSegment(segmentValue string) error {
	index := 0
	for index < len(segmentValue) {
		switch segmentValue[index] {
		case '\\':
			if index+1 >= len(segmentValue) {
				return errors.New("unterminated escape")
			}
			index += 2
		case '[':
			closingIndex, found := findClassEnd(segmentValue, index)
			if !found {
				return errors.New("unterminated character class")
			}
			index = closingIndex + 1
		default:
			index++
		}
	}
	return nil
}

// findClassEnd locates the closing bracket of a character class opening at
// openIndex, honoring a leading !/^ and a literal ] as the first member.
func findClassEnd(segmentValue string, openIndex int) (int, bool) {
	index := openIndex + 1
	if index < len(segmentValue) && (segmentValue[index] == '!' || segmentValue[index] == '^') {
		index++
	}
	if index < len(segmentValue) && segmentValue[index] == ']' {
		index++
	}
	for index < len(segmentValue) {
		if segmentValue[index] == '\\' {
			index += 2
			continue
		}
		if segmentValue[index] == ']' {
			return index, true
		}
		index++
	}
	return 0, false
}

// splitPathSegments splits a normalized relative path into segments, dropping
// empties produced by duplicate or trailing slashes.
func splitPathSegments(relativePath string) []string {
	if relativePath == "" {
		return nil
	}
	parts := strings.Split(relativePath, "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// normalizeRelativePath prepares a candidate path for matching: backslashes
// become forward slashes, duplicate slashes collapse, and leading "./" and
// trailing "/" are removed.
func normalizeRelativePath(relativePath string) string {
	relativePath = strings.ReplaceAll(relativePath, "\\", "/")
	for strings.Contains(relativePath, "//") {
		relativePath = strings.ReplaceAll(relativePath, "//", "/")
	}
	for strings.HasPrefix(relativePath, "./") {
		relativePath = relativePath[2:]
	}
	relativePath = strings.TrimSuffix(relativePath, "/")
	if relativePath == "." {
		return ""
	}
	return relativePath
}
