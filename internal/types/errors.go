package types

import "fmt"

// ConfigError reports a structurally malformed ignore or exclusion pattern.
// Pattern compilation is load-bearing for correctness, so a ConfigError aborts
// the run before any traversal work begins.
type ConfigError struct {
	Pattern string
	Line    int
	Reason  string
}

// Error implements the error interface.
func (configError *ConfigError) Error() string {
	if configError.Line > 0 {
		return fmt.Sprintf("malformed pattern %q on line %d: %s", configError.Pattern, configError.Line, configError.Reason)
	}
	return fmt.Sprintf("malformed pattern %q: %s", configError.Pattern, configError.Reason)
}

// PathNotFoundError reports an input path that does not exist. It is recovered
// locally; remaining input paths are still processed.
type PathNotFoundError struct {
	Path string
}

// Error implements the error interface.
func (pathNotFoundError *PathNotFoundError) Error() string {
	return fmt.Sprintf("path %q does not exist", pathNotFoundError.Path)
}

// ReadError reports a file that could not be read during traversal or
// bundling. It is recovered locally; the file is skipped and the run continues.
type ReadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (readError *ReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", readError.Path, readError.Err)
}

// Unwrap exposes the underlying cause for errors.Is and errors.As.
func (readError *ReadError) Unwrap() error {
	return readError.Err
}
