package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"finsight/internal/logging"
	"finsight/internal/report"
)

const (
	// DefaultBaseURL is the Tavily search API endpoint.
	DefaultBaseURL = "https://api.tavily.com"

	DefaultMaxResults  = 5
	DefaultSearchDepth = "advanced"
)

// Config holds search API connection settings.
type Config struct {
	BaseURL     string // e.g. https://api.tavily.com
	APIKey      string
	MaxResults  int    // per query; default 5
	SearchDepth string // "basic" or "advanced"; default "advanced"
}

// Client is a web-search API client. It satisfies the workflow's Researcher
// contract: each search result becomes one TextChunk with provenance.
type Client struct {
	HTTPClient *http.Client
	Config     Config
}

// NewClient returns a client with the given config. HTTPClient may be
// replaced by callers that need custom timeouts.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.SearchDepth == "" {
		cfg.SearchDepth = DefaultSearchDepth
	}
	return &Client{Config: cfg, HTTPClient: &http.Client{Timeout: 30 * time.Second}}
}

// Minimal search API request/response shapes.
type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type searchResponse struct {
	Results []struct {
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search runs each query against the search API and returns all result
// chunks. Per-query failures are logged and skipped; an error is returned
// only when every query fails, and callers must treat zero chunks as a
// legitimate (soft-failure) outcome either way.
func (c *Client) Search(ctx context.Context, queries []string) ([]report.TextChunk, error) {
	logger := logging.New("research")
	var chunks []report.TextChunk
	var lastErr error
	for _, q := range queries {
		results, err := c.searchOne(ctx, q)
		if err != nil {
			logger.Warn("search query failed", "query", q, "error", err)
			lastErr = err
			continue
		}
		chunks = append(chunks, results...)
	}
	if len(chunks) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return chunks, nil
}

func (c *Client) searchOne(ctx context.Context, query string) ([]report.TextChunk, error) {
	body, err := json.Marshal(searchRequest{
		APIKey:      c.Config.APIKey,
		Query:       query,
		MaxResults:  c.Config.MaxResults,
		SearchDepth: c.Config.SearchDepth,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}
	u := c.Config.BaseURL + "/search"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search %s: %s", resp.Status, string(b))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	now := time.Now().UTC()
	chunks := make([]report.TextChunk, 0, len(sr.Results))
	for _, r := range sr.Results {
		if r.Content == "" {
			continue
		}
		chunks = append(chunks, report.TextChunk{
			SourceURL:   r.URL,
			Text:        r.Content,
			RetrievedAt: now,
		})
	}
	return chunks, nil
}
