package tokenizer

import (
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// CountFiles estimates token counts for every selected file. Counting is
// read-only and independent per file, so it runs on a bounded worker pool
// outside the sequential collection core. The returned slice is indexed
// parallel to relativePaths; files whose content cannot be counted (binary,
// non-UTF-8) report zero.
func CountFiles(counter Counter, rootPath string, relativePaths []string) ([]int, int, error) {
	tokenCounts := make([]int, len(relativePaths))

	group := new(errgroup.Group)
	group.SetLimit(runtime.GOMAXPROCS(0))
	for fileIndex, relativeFilePath := range relativePaths {
		fileIndex, relativeFilePath := fileIndex, relativeFilePath
		group.Go(func() error {
			absoluteFilePath := filepath.Join(rootPath, filepath.FromSlash(relativeFilePath))
			countResult, countError := CountFile(counter, absoluteFilePath)
			if countError != nil {
				return countError
			}
			if countResult.Counted {
				tokenCounts[fileIndex] = countResult.Tokens
			}
			return nil
		})
	}
	if waitError := group.Wait(); waitError != nil {
		return nil, 0, waitError
	}

	totalTokens := 0
	for _, tokenCount := range tokenCounts {
		totalTokens += tokenCount
	}
	return tokenCounts, totalTokens, nil
}
