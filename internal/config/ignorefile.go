// Package config loads the root ignore file and the optional application
// configuration consumed by the CLI.
package config

import (
	"bufio"
	"fmt"
	"os"
)

// LoadIgnoreFileLines reads the ignore file at ignoreFilePath and returns its
// raw lines in file order. Comment and blank lines are preserved here; pattern
// compilation decides what to skip, since escapes like \# change a line's
// meaning. A missing file yields no lines and no error; absence of ignore
// rules is not a failure.
//
// #nosec G304
func LoadIgnoreFileLines(ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer func() {
		closeError := fileHandle.Close()
		if closeError != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", ignoreFilePath, closeError)
		}
	}()

	var ignoreLines []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		ignoreLines = append(ignoreLines, scanner.Text())
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return ignoreLines, nil
}
