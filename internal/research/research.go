// Package research provides Researcher backends for the report workflow:
// a web-search API client and an optional headless-browser fetcher that
// deepens thin search results with full page text.
package research

import (
	"context"
	"os"
	"strings"

	"finsight/internal/report"
)

// Searcher is the capability the composing types in this package build on.
// It matches the workflow's Researcher contract.
type Searcher interface {
	Search(ctx context.Context, queries []string) ([]report.TextChunk, error)
}

// ReadAPIKey reads a key from the first line of a key file. If the file is
// missing, the named environment variable is consulted instead.
func ReadAPIKey(path, envVar string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
				return v, nil
			}
		}
		return "", err
	}
	return strings.TrimSpace(strings.Split(string(data), "\n")[0]), nil
}
