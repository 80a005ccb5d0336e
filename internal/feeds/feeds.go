// Package feeds retrieves and normalizes RSS/Atom feeds into candidate items.
package feeds

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"newslistener/internal/core"
	"newslistener/internal/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// Collector fetches and parses feeds. A feed that cannot be parsed at all is
// an error for the caller to isolate; a single bad entry never aborts the
// rest of its feed.
type Collector struct {
	parser *gofeed.Parser
}

// NewCollector creates a feed collector.
func NewCollector(timeout time.Duration) *Collector {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	p := gofeed.NewParser()
	p.UserAgent = "NewsListener/1.0"
	p.Client = &http.Client{Timeout: timeout}
	return &Collector{parser: p}
}

// FetchFeed retrieves the feed at url and returns its entries as normalized
// items in feed order. Entries lacking both title and link are dropped. For
// each entry the carried text prefers inline full content (HTML-stripped)
// over summary/description over title.
func (c *Collector) FetchFeed(ctx context.Context, url string) ([]core.FeedItem, error) {
	feed, err := c.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch or parse feed %s: %w", url, err)
	}

	items := make([]core.FeedItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil {
			continue
		}
		title := strings.TrimSpace(entry.Title)
		link := strings.TrimSpace(entry.Link)
		if title == "" || link == "" {
			logger.Debug("Dropping feed entry without title and link", "feed", url)
			continue
		}

		summary := strings.TrimSpace(stripHTML(entry.Description))
		content := strings.TrimSpace(stripHTML(entry.Content))

		items = append(items, core.FeedItem{
			Title:   title,
			Link:    link,
			Summary: summary,
			Content: content,
		})
	}

	logger.Info("Fetched feed", "url", url, "items", len(items))
	return items, nil
}

// stripHTML flattens inline feed content to plain text. Content that fails to
// parse as HTML is returned as-is.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}
