// Package fetch retrieves readable article text from single web pages.
package fetch

import (
	"context"
	"net/http"
	"strings"
	"time"

	"newslistener/internal/logger"

	"github.com/PuerkitoBio/goquery"
)

const (
	// minContentChars is the smallest extraction considered substantial.
	minContentChars = 100

	defaultTimeout = 15 * time.Second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36 NewsListener/1.0"
)

// Fetcher performs best-effort single-page article fetches. Every failure is
// a soft miss: callers get ok=false, never an error.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher with a bounded per-request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// FetchArticleText fetches the page at url and extracts its readable text.
// Extraction tries <p> elements first, then semantic content containers, then
// the full body. Returns ok=false on timeout, network failure, non-2xx status,
// or insufficient content.
func (f *Fetcher) FetchArticleText(ctx context.Context, url string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logger.Warn("Invalid article URL", "url", url, "error", err.Error())
		return "", false
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("DNT", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := f.client.Do(req)
	if err != nil {
		logger.Warn("Failed to fetch article", "url", url, "error", err.Error())
		return "", false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("Article fetch returned non-2xx status", "url", url, "status", resp.StatusCode)
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		logger.Warn("Failed to parse article HTML", "url", url, "error", err.Error())
		return "", false
	}

	text := extractText(doc)
	if len(strings.TrimSpace(text)) < minContentChars {
		logger.Warn("No substantial text content found", "url", url, "extracted_chars", len(text))
		return "", false
	}
	return strings.TrimSpace(text), true
}

// extractText walks the fallback chain: paragraphs, semantic containers, body.
func extractText(doc *goquery.Document) string {
	var parts []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	text := strings.Join(parts, "\n")
	if len(strings.TrimSpace(text)) >= minContentChars {
		return text
	}

	// Paragraph extraction yielded little; try common main-content containers.
	parts = parts[:0]
	doc.Find("article, main, [role='main'], #content, .content").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if containerText := strings.Join(parts, "\n"); len(strings.TrimSpace(containerText)) >= minContentChars {
		return containerText
	}

	// Last resort: full body text, which can be noisy.
	body := strings.TrimSpace(doc.Find("body").Text())
	if len(body) >= minContentChars {
		return body
	}
	return text
}
