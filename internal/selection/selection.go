// Package selection turns resolved generation criteria into a bounded,
// deduplicated plain-text article corpus.
package selection

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"newslistener/internal/core"
	"newslistener/internal/logger"
)

const (
	// articleDelimiter separates articles in the assembled corpus.
	articleDelimiter = "\n\n---\nEND OF ARTICLE\n---\n\n"

	// unavailableMarker stands in for a specific URL whose fetch failed. The
	// URL stays represented in the corpus so the item count is predictable.
	unavailableMarker = "[Content could not be retrieved for this URL]"

	// noContentSentinel is returned when zero usable items survive selection.
	// Callers detect it with IsNoContent and treat it as a terminal failure.
	noContentSentinel = "No news content could be found or processed based on the provided criteria. " +
		"Please try different topics, keywords, or add RSS feeds to your preferences."

	noContentPrefix = "No news content"
)

// ArticleFetcher fetches readable text from a single page, best effort.
type ArticleFetcher interface {
	FetchArticleText(ctx context.Context, url string) (string, bool)
}

// FeedCollector fetches and normalizes one feed.
type FeedCollector interface {
	FetchFeed(ctx context.Context, url string) ([]core.FeedItem, error)
}

// Options bound the engine's output.
type Options struct {
	MaxArticles      int // total item cap across all sources
	EnrichBelowChars int // feed items with less carried text get a full-page fetch
}

// DefaultOptions returns the engine's standard bounds.
func DefaultOptions() Options {
	return Options{MaxArticles: 15, EnrichBelowChars: 150}
}

// Engine assembles the text corpus handed to script generation.
type Engine struct {
	fetcher   ArticleFetcher
	collector FeedCollector
	opts      Options
}

// NewEngine creates a selection engine.
func NewEngine(fetcher ArticleFetcher, collector FeedCollector, opts Options) *Engine {
	if opts.MaxArticles <= 0 {
		opts.MaxArticles = DefaultOptions().MaxArticles
	}
	if opts.EnrichBelowChars <= 0 {
		opts.EnrichBelowChars = DefaultOptions().EnrichBelowChars
	}
	return &Engine{fetcher: fetcher, collector: collector, opts: opts}
}

// IsNoContent reports whether a corpus string is the no-content sentinel
// rather than real article text.
func IsNoContent(corpus string) bool {
	return strings.HasPrefix(strings.TrimSpace(corpus), noContentPrefix)
}

// SelectContent resolves criteria into a corpus: one text block per selected
// article joined by an explicit delimiter, or the no-content sentinel when
// nothing usable survives.
func (e *Engine) SelectContent(ctx context.Context, criteria core.GenerationCriteria) (string, error) {
	var blocks []string

	switch criteria.SourceType {
	case core.SourceSpecificURLs:
		blocks = e.selectSpecificURLs(ctx, criteria.URLs)
	case core.SourceUserPreferences, core.SourceDirectInput, core.SourcePredefinedCategory:
		blocks = e.selectFromFeeds(ctx, criteria)
	default:
		logger.Warn("Unknown source type in criteria", "source_type", string(criteria.SourceType))
		return noContentSentinel, nil
	}

	if len(blocks) == 0 {
		logger.Warn("No news items could be processed for criteria", "source_type", string(criteria.SourceType))
		return noContentSentinel, nil
	}

	corpus := strings.Join(blocks, articleDelimiter)
	logger.Info("Assembled news corpus", "articles", len(blocks), "chars", len(corpus))
	return corpus, nil
}

// selectSpecificURLs fetches each requested URL up to the article cap. A URL
// that yields no content is still represented with an explicit marker; only
// successful fetches count toward the cap.
func (e *Engine) selectSpecificURLs(ctx context.Context, urls []string) []string {
	var blocks []string
	fetched := 0
	for _, u := range urls {
		if fetched >= e.opts.MaxArticles {
			break
		}
		text, ok := e.fetcher.FetchArticleText(ctx, u)
		if ok {
			blocks = append(blocks, fmt.Sprintf("Article from URL: %s\n\n%s", u, text))
			fetched++
		} else {
			blocks = append(blocks, fmt.Sprintf("Article from URL: %s\n\n%s", u, unavailableMarker))
		}
	}
	return blocks
}

// feedResult carries one feed's outcome so a failing feed never aborts its
// siblings.
type feedResult struct {
	url   string
	items []core.FeedItem
	err   error
}

// selectFromFeeds fetches all configured feeds concurrently, applies
// exclusion and inclusion filters, deduplicates by URL, enriches thin items,
// and caps the total.
func (e *Engine) selectFromFeeds(ctx context.Context, criteria core.GenerationCriteria) []string {
	results := make([]feedResult, len(criteria.RSSURLs))
	var wg sync.WaitGroup
	for i, feedURL := range criteria.RSSURLs {
		wg.Add(1)
		go func(i int, feedURL string) {
			defer wg.Done()
			items, err := e.collector.FetchFeed(ctx, feedURL)
			results[i] = feedResult{url: feedURL, items: items, err: err}
		}(i, feedURL)
	}
	wg.Wait()

	var rawItems []core.FeedItem
	for _, r := range results {
		if r.err != nil {
			logger.Error("Feed fetch failed", r.err, "feed", r.url)
			continue
		}
		rawItems = append(rawItems, r.items...)
	}
	logger.Info("Collected feed items", "feeds", len(criteria.RSSURLs), "items", len(rawItems))

	var blocks []string
	seen := make(map[string]bool)
	for _, item := range rawItems {
		if len(blocks) >= e.opts.MaxArticles {
			break
		}
		if item.Link == "" || seen[item.Link] {
			continue
		}
		if e.excludedByDomain(item, criteria.ExcludeSourceDomains) {
			continue
		}

		combined := strings.ToLower(item.Title + " " + item.Summary + " " + item.Text())
		if matchesAny(combined, criteria.ExcludeKeywords) != "" {
			logger.Debug("Excluding item due to excluded keyword", "title", item.Title)
			continue
		}

		matched, reason := matchCriteria(combined, criteria.Topics, criteria.Keywords)
		if !matched {
			continue
		}
		logger.Info("Item matched criteria", "title", item.Title, "reason", reason, "link", item.Link)

		text := e.enrich(ctx, item)
		if strings.TrimSpace(text) == "" {
			logger.Warn("No usable text for matched item", "title", item.Title, "link", item.Link)
			continue
		}

		blocks = append(blocks, fmt.Sprintf("News Item: %s\nSource: %s\n\n%s", item.Title, item.Link, strings.TrimSpace(text)))
		seen[item.Link] = true
	}
	return blocks
}

// excludedByDomain reports whether the item's source domain substring-matches
// any excluded domain. Items whose URL cannot be parsed are skipped entirely.
func (e *Engine) excludedByDomain(item core.FeedItem, excludeDomains []string) bool {
	parsed, err := url.Parse(item.Link)
	if err != nil || parsed.Host == "" {
		logger.Warn("Could not parse domain from item URL", "link", item.Link)
		return true
	}
	host := strings.ToLower(parsed.Host)
	for _, d := range excludeDomains {
		if d != "" && strings.Contains(host, strings.ToLower(d)) {
			logger.Debug("Excluding item from domain", "domain", host, "title", item.Title)
			return true
		}
	}
	return false
}

// matchCriteria applies topic-then-keyword inclusion. Empty topics and
// keywords means no filter: everything that survived exclusion is included.
func matchCriteria(combined string, topics, keywords []string) (bool, string) {
	if len(topics) == 0 && len(keywords) == 0 {
		return true, "no specific topic/keyword criteria"
	}
	if t := matchesAny(combined, topics); t != "" {
		return true, "topic: " + t
	}
	if k := matchesAny(combined, keywords); k != "" {
		return true, "keyword: " + k
	}
	return false, ""
}

// matchesAny returns the first term that substring-matches the combined text,
// case-insensitively.
func matchesAny(combined string, terms []string) string {
	for _, term := range terms {
		if term != "" && strings.Contains(combined, strings.ToLower(term)) {
			return term
		}
	}
	return ""
}

// enrich returns the item's body text, fetching the full page when the feed
// carried too little. A matched item is never dropped for lack of content:
// the final fallback is a synthetic placeholder built from title and summary.
func (e *Engine) enrich(ctx context.Context, item core.FeedItem) string {
	text := item.Text()
	if len(text) >= e.opts.EnrichBelowChars {
		return text
	}
	logger.Info("Feed content is short, fetching full article", "title", item.Title, "link", item.Link)
	if fetched, ok := e.fetcher.FetchArticleText(ctx, item.Link); ok {
		return fetched
	}
	if item.Summary != "" {
		return item.Summary
	}
	return fmt.Sprintf("Title: %s. Summary: Not available. [Full content retrieval failed or was insufficient]", item.Title)
}
