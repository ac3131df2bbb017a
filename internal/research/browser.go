package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"finsight/internal/logging"
	"finsight/internal/report"
)

// PageFetcher extracts readable page text with a headless browser, for
// sources whose search snippets are too thin to analyze.
type PageFetcher struct {
	Timeout time.Duration // per-page budget; default 20s
}

// FetchText navigates to the URL and returns the rendered body text.
func (f *PageFetcher) FetchText(ctx context.Context, url string) (string, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	runCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var text string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(`document.body.innerText`, &text),
	)
	if err != nil {
		return "", fmt.Errorf("fetch page %s: %w", url, err)
	}
	return strings.TrimSpace(text), nil
}

// TextFetcher turns a URL into readable text. PageFetcher is the browser
// implementation; tests substitute a stub.
type TextFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// DeepResearcher wraps a Searcher and expands thin chunks with full page
// text. It satisfies the same Researcher contract as the wrapped Searcher.
type DeepResearcher struct {
	Base     Searcher
	Fetcher  TextFetcher
	MaxPages int // pages fetched per search; default 3
	MinChars int // chunks shorter than this are candidates; default 400
}

// Search delegates to the base searcher, then replaces up to MaxPages thin
// chunks with rendered page text. Fetch failures leave the original snippet
// in place; deepening never loses data.
func (d *DeepResearcher) Search(ctx context.Context, queries []string) ([]report.TextChunk, error) {
	chunks, err := d.Base.Search(ctx, queries)
	if err != nil || len(chunks) == 0 {
		return chunks, err
	}

	maxPages := d.MaxPages
	if maxPages <= 0 {
		maxPages = 3
	}
	minChars := d.MinChars
	if minChars <= 0 {
		minChars = 400
	}

	logger := logging.New("research")
	fetched := 0
	for i := range chunks {
		if fetched >= maxPages {
			break
		}
		if len(chunks[i].Text) >= minChars || chunks[i].SourceURL == "" {
			continue
		}
		text, err := d.Fetcher.FetchText(ctx, chunks[i].SourceURL)
		if err != nil {
			logger.Warn("page fetch failed, keeping snippet", "url", chunks[i].SourceURL, "error", err)
			continue
		}
		if len(text) > len(chunks[i].Text) {
			chunks[i].Text = text
			chunks[i].RetrievedAt = time.Now().UTC()
		}
		fetched++
	}
	return chunks, nil
}
