package gitignore

// PatternSet is an ordered sequence of compiled patterns. Order is the
// original file order: later patterns override earlier ones when both match a
// path, which is what makes negation work. User exclusion patterns are
// appended after ignore-file patterns and therefore win ties.
type PatternSet struct {
	patterns      []Pattern
	negationCount int
}

// Evaluation reports how a candidate path fared against a PatternSet.
type Evaluation struct {
	// Matched is true when at least one pattern matched the path.
	Matched bool
	// Excluded is the final exclusion state after replaying every pattern.
	Excluded bool
	// Negated is true when the decisive (last matching) pattern was a negation.
	Negated bool
}

// CompilePatternSet compiles raw ignore-file lines followed by user exclusion
// patterns into a PatternSet. Comment lines and blank lines are skipped.
// The first structurally malformed pattern aborts compilation with a
// *types.ConfigError; a half-interpreted rule set could silently under- or
// over-exclude files.
func CompilePatternSet(ignoreLines []string, userExclusions []string) (*PatternSet, error) {
	patternSet := &PatternSet{}

	for lineIndex, line := range ignoreLines {
		pattern, parseError := parsePatternLine(line, lineIndex+1)
		if parseError != nil {
			return nil, parseError
		}
		if pattern != nil {
			patternSet.append(*pattern)
		}
	}

	for exclusionIndex, exclusion := range userExclusions {
		pattern, parseError := parsePatternLine(exclusion, exclusionIndex+1)
		if parseError != nil {
			return nil, parseError
		}
		if pattern != nil {
			patternSet.append(*pattern)
		}
	}

	return patternSet, nil
}

func (patternSet *PatternSet) append(pattern Pattern) {
	patternSet.patterns = append(patternSet.patterns, pattern)
	if pattern.negated {
		patternSet.negationCount++
	}
}

// Len returns the number of compiled patterns.
func (patternSet *PatternSet) Len() int {
	return len(patternSet.patterns)
}

// Evaluate replays every pattern in original order against the candidate path
// and returns the final state. Patterns that do not match leave the running
// state unchanged; the default state is "not excluded".
func (patternSet *PatternSet) Evaluate(relativePath string, isDirectory bool) Evaluation {
	normalizedPath := normalizeRelativePath(relativePath)
	if normalizedPath == "" {
		return Evaluation{}
	}
	pathSegments := splitPathSegments(normalizedPath)

	var evaluation Evaluation
	for patternIndex := range patternSet.patterns {
		pattern := &patternSet.patterns[patternIndex]
		if matchPattern(pattern, pathSegments, isDirectory) {
			evaluation.Matched = true
			evaluation.Negated = pattern.negated
			evaluation.Excluded = !pattern.negated
		}
	}
	return evaluation
}

// IsExcluded reports the final exclusion state for the candidate path.
func (patternSet *PatternSet) IsExcluded(relativePath string, isDirectory bool) bool {
	return patternSet.Evaluate(relativePath, isDirectory).Excluded
}

// MayReincludeWithin reports whether any negation pattern could re-include a
// path strictly beneath the given directory. When it returns false the caller
// may prune an excluded directory without testing any descendant; when true
// the caller must descend so descendant-level negations get their say.
func (patternSet *PatternSet) MayReincludeWithin(relativeDirectoryPath string) bool {
	if patternSet.negationCount == 0 {
		return false
	}
	directorySegments := splitPathSegments(normalizeRelativePath(relativeDirectoryPath))
	for patternIndex := range patternSet.patterns {
		pattern := &patternSet.patterns[patternIndex]
		if !pattern.negated {
			continue
		}
		if couldMatchBeneath(pattern, directorySegments) {
			return true
		}
	}
	return false
}

// couldMatchBeneath conservatively reports whether pattern could match some
// path strictly beneath the directory identified by directorySegments.
// Floating patterns can match at any depth, so they always qualify.
func couldMatchBeneath(pattern *Pattern, directorySegments []string) bool {
	if !pattern.anchored {
		return true
	}
	for segmentIndex, directorySegment := range directorySegments {
		if segmentIndex >= len(pattern.segments) {
			// Pattern targets a shallower path; only a directory-only
			// negation re-includes content beneath its match.
			return pattern.directoryOnly
		}
		patternSegment := pattern.segments[segmentIndex]
		if patternSegment.doubleStar {
			return true
		}
		if !matchSingleSegment(patternSegment, directorySegment) {
			return false
		}
	}
	if len(pattern.segments) > len(directorySegments) {
		return true
	}
	return pattern.directoryOnly
}
