package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

// SourceType identifies how the content for a digest is selected.
type SourceType string

const (
	SourceSpecificURLs       SourceType = "specific_urls"
	SourcePredefinedCategory SourceType = "predefined_category"
	SourceUserPreferences    SourceType = "user_preferences"
	SourceDirectInput        SourceType = "direct_input"
)

// DigestStatus tracks a digest through the generation pipeline.
type DigestStatus string

const (
	StatusPendingScript   DigestStatus = "PENDING_SCRIPT"
	StatusPendingAudio    DigestStatus = "PENDING_AUDIO"
	StatusProcessingAudio DigestStatus = "PROCESSING_AUDIO"
	StatusCompleted       DigestStatus = "COMPLETED"
	StatusFailed          DigestStatus = "FAILED"
)

// Pipeline failure taxonomy. Each stage maps its terminal failures onto one
// of these so the orchestrator can record a distinguishable error message.
var (
	ErrNoContentFound      = errors.New("no usable news content found for criteria")
	ErrUnsupportedLanguage = errors.New("language is not supported for script generation")
	ErrUnsupportedStyle    = errors.New("audio style is not supported")
	ErrGenerationFailed    = errors.New("script generation produced unusable output")
	ErrSynthesisFailed     = errors.New("audio synthesis failed")
)

// GenerationCriteria is the fully-resolved set of filters and settings driving
// one generation run. It is immutable once resolved and, in canonical JSON
// form, doubles as the cache key for completed digests.
type GenerationCriteria struct {
	SourceType           SourceType `json:"source_type"`
	Language             string     `json:"language"`
	AudioStyle           string     `json:"audio_style"`
	Topics               []string   `json:"topics"`
	Keywords             []string   `json:"keywords"`
	ExcludeKeywords      []string   `json:"exclude_keywords"`
	ExcludeSourceDomains []string   `json:"exclude_source_domains"`
	RSSURLs              []string   `json:"rss_urls"`
	URLs                 []string   `json:"urls"`
	UserPreferenceID     int64      `json:"user_preference_id,omitempty"`
	PredefinedCategoryID int64      `json:"predefined_category_id,omitempty"`
}

// CanonicalJSON serializes the criteria deterministically: struct fields
// marshal in declaration order and nil slices are normalized to empty ones,
// so two semantically-equal criteria always produce identical bytes.
func (c GenerationCriteria) CanonicalJSON() (string, error) {
	c.Topics = normalizeSlice(c.Topics)
	c.Keywords = normalizeSlice(c.Keywords)
	c.ExcludeKeywords = normalizeSlice(c.ExcludeKeywords)
	c.ExcludeSourceDomains = normalizeSlice(c.ExcludeSourceDomains)
	c.RSSURLs = normalizeSlice(c.RSSURLs)
	c.URLs = normalizeSlice(c.URLs)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c); err != nil {
		return "", err
	}
	return string(bytes.TrimSpace(buf.Bytes())), nil
}

// Equal reports structural equality of two criteria via their canonical form.
func (c GenerationCriteria) Equal(other GenerationCriteria) bool {
	a, errA := c.CanonicalJSON()
	b, errB := other.CanonicalJSON()
	return errA == nil && errB == nil && a == b
}

func normalizeSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Digest is a single generation job tracking one user's request from intake
// to completion. It is created once per non-cached request and mutated only
// by the orchestrator and its pipeline stages.
type Digest struct {
	ID             int64        `json:"id"`
	UserID         int64        `json:"user_id"`
	Status         DigestStatus `json:"status"`
	SourceCriteria string       `json:"source_criteria"` // canonical criteria JSON, the cache key
	ScriptText     string       `json:"script_text,omitempty"`
	ErrorMessage   string       `json:"error_message,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Episode is the persisted audio artifact produced for a digest. At most one
// exists per (digest, language, style) tuple; AudioURL is non-empty exactly
// when synthesis for that tuple completed successfully.
type Episode struct {
	ID              int64      `json:"id"`
	DigestID        int64      `json:"digest_id"`
	AudioURL        string     `json:"audio_url,omitempty"`
	StoragePath     string     `json:"storage_path,omitempty"`
	Language        string     `json:"language"`
	AudioStyle      string     `json:"audio_style"`
	DurationSeconds int        `json:"duration_seconds,omitempty"`
	UserGivenName   string     `json:"user_given_name,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// FeedItem is a transient candidate article produced by the feed collector
// and consumed by the selection engine. It is never persisted.
type FeedItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Summary string `json:"summary"`
	Content string `json:"content"` // inline feed content with HTML stripped
}

// Text returns the best available body text for the item: inline content,
// then summary, then title.
func (f FeedItem) Text() string {
	if f.Content != "" {
		return f.Content
	}
	if f.Summary != "" {
		return f.Summary
	}
	return f.Title
}

// UserPreference stores a user's default selection criteria and generation
// settings. Request-level values override these field by field.
type UserPreference struct {
	ID                   int64     `json:"id"`
	UserID               int64     `json:"user_id"`
	PreferredTopics      []string  `json:"preferred_topics"`
	CustomKeywords       []string  `json:"custom_keywords"`
	IncludeSourceRSSURLs []string  `json:"include_source_rss_urls"`
	ExcludeKeywords      []string  `json:"exclude_keywords"`
	ExcludeSourceDomains []string  `json:"exclude_source_domains"`
	DefaultLanguage      string    `json:"default_language"`
	DefaultAudioStyle    string    `json:"default_audio_style"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// PredefinedCategory is a curated bundle of feeds and filters users can
// generate from without configuring preferences.
type PredefinedCategory struct {
	ID                   int64    `json:"id"`
	Name                 string   `json:"name"`
	Description          string   `json:"description,omitempty"`
	Theme                string   `json:"theme,omitempty"`
	Region               string   `json:"region,omitempty"`
	RSSURLs              []string `json:"rss_urls"`
	Topics               []string `json:"topics"`
	Keywords             []string `json:"keywords"`
	ExcludeKeywords      []string `json:"exclude_keywords"`
	ExcludeSourceDomains []string `json:"exclude_source_domains"`
	Language             string   `json:"language,omitempty"`
	AudioStyle           string   `json:"audio_style,omitempty"`
	IsActive             bool     `json:"is_active"`
}
