// Package criteria resolves a generation request against stored preferences
// and predefined categories into one immutable set of criteria.
package criteria

import (
	"fmt"

	"newslistener/internal/core"
	"newslistener/internal/prompts"
)

// Request carries the caller-supplied fields of a generation request. Zero
// values mean "not provided" and fall through to stored or system defaults.
type Request struct {
	SourceType           core.SourceType
	URLs                 []string
	CategoryID           int64
	Topics               []string
	Keywords             []string
	RSSURLs              []string
	ExcludeKeywords      []string
	ExcludeSourceDomains []string
	Language             string
	AudioStyle           string
}

// Resolve merges the request with stored preferences and the selected
// category (both optional) into final criteria. Precedence per field is
// request value, then category value, then stored preference, then the
// system defaults "en" and "standard". The result is what both content
// selection and the completed-digest cache key are computed from.
func Resolve(req Request, prefs *core.UserPreference, cat *core.PredefinedCategory) (core.GenerationCriteria, error) {
	c := core.GenerationCriteria{SourceType: req.SourceType}

	if req.AudioStyle != "" {
		if _, ok := prompts.AudioStyles[req.AudioStyle]; !ok {
			return c, fmt.Errorf("%w: %q", core.ErrUnsupportedStyle, req.AudioStyle)
		}
	}

	switch req.SourceType {
	case core.SourceSpecificURLs:
		if len(req.URLs) == 0 {
			return c, fmt.Errorf("source type %s requires at least one URL", req.SourceType)
		}
		c.URLs = req.URLs

	case core.SourcePredefinedCategory:
		if cat == nil {
			return c, fmt.Errorf("predefined category %d not found", req.CategoryID)
		}
		if !cat.IsActive {
			return c, fmt.Errorf("predefined category %q is not active", cat.Name)
		}
		c.PredefinedCategoryID = cat.ID
		c.RSSURLs = pickList(req.RSSURLs, cat.RSSURLs)
		c.Topics = pickList(req.Topics, cat.Topics)
		c.Keywords = pickList(req.Keywords, cat.Keywords)
		c.ExcludeKeywords = pickList(req.ExcludeKeywords, cat.ExcludeKeywords)
		c.ExcludeSourceDomains = pickList(req.ExcludeSourceDomains, cat.ExcludeSourceDomains)

	case core.SourceUserPreferences:
		if prefs == nil {
			return c, fmt.Errorf("no stored preferences for this user")
		}
		c.UserPreferenceID = prefs.ID
		c.RSSURLs = pickList(req.RSSURLs, prefs.IncludeSourceRSSURLs)
		c.Topics = pickList(req.Topics, prefs.PreferredTopics)
		c.Keywords = pickList(req.Keywords, prefs.CustomKeywords)
		c.ExcludeKeywords = pickList(req.ExcludeKeywords, prefs.ExcludeKeywords)
		c.ExcludeSourceDomains = pickList(req.ExcludeSourceDomains, prefs.ExcludeSourceDomains)
		if len(c.RSSURLs) == 0 {
			return c, fmt.Errorf("stored preferences include no RSS feeds")
		}

	case core.SourceDirectInput:
		if len(req.RSSURLs) == 0 {
			return c, fmt.Errorf("source type %s requires at least one RSS feed URL", req.SourceType)
		}
		c.RSSURLs = req.RSSURLs
		c.Topics = req.Topics
		c.Keywords = req.Keywords
		c.ExcludeKeywords = req.ExcludeKeywords
		c.ExcludeSourceDomains = req.ExcludeSourceDomains

	default:
		return c, fmt.Errorf("unknown source type %q", req.SourceType)
	}

	c.Language = pick(req.Language, categoryLanguage(cat, req.SourceType), prefLanguage(prefs), "en")
	c.AudioStyle = pick(req.AudioStyle, categoryStyle(cat, req.SourceType), prefStyle(prefs), prompts.StandardStyle)
	return c, nil
}

func categoryLanguage(cat *core.PredefinedCategory, st core.SourceType) string {
	if st == core.SourcePredefinedCategory && cat != nil {
		return cat.Language
	}
	return ""
}

func categoryStyle(cat *core.PredefinedCategory, st core.SourceType) string {
	if st == core.SourcePredefinedCategory && cat != nil {
		return cat.AudioStyle
	}
	return ""
}

func prefLanguage(prefs *core.UserPreference) string {
	if prefs != nil {
		return prefs.DefaultLanguage
	}
	return ""
}

func prefStyle(prefs *core.UserPreference) string {
	if prefs != nil {
		return prefs.DefaultAudioStyle
	}
	return ""
}

// pick returns the first non-empty candidate.
func pick(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

// pickList returns the override when provided, otherwise the stored list.
func pickList(override, stored []string) []string {
	if len(override) > 0 {
		return override
	}
	return stored
}
