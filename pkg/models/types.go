package models

import (
	"strings"
	"time"
)

// ConversionRequest is a single conversion attempt's input. RawText is the
// user's text exactly as entered; callers reject blank input before building
// one.
type ConversionRequest struct {
	RawText string
}

// IsBlank reports whether the request carries only whitespace.
func (r ConversionRequest) IsBlank() bool {
	return strings.TrimSpace(r.RawText) == ""
}

// ConversionResult is the HTML fragment produced by a backend for one
// request, stored verbatim.
type ConversionResult struct {
	HTML     string
	Provider string
	Model    string
}

// HistoryEntry is a persisted successful conversion.
type HistoryEntry struct {
	ID        string    `json:"id" yaml:"id"`
	Provider  string    `json:"provider" yaml:"provider"`
	Model     string    `json:"model" yaml:"model"`
	Input     string    `json:"input" yaml:"input"`
	HTML      string    `json:"html" yaml:"html"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Result returns the entry as a ConversionResult.
func (e HistoryEntry) Result() ConversionResult {
	return ConversionResult{
		HTML:     e.HTML,
		Provider: e.Provider,
		Model:    e.Model,
	}
}

// ShortID returns the first eight characters of the entry ID.
func (e HistoryEntry) ShortID() string {
	if len(e.ID) <= 8 {
		return e.ID
	}
	return e.ID[:8]
}

// Excerpt returns the input collapsed onto one line and truncated to max runes.
func (e HistoryEntry) Excerpt(max int) string {
	line := strings.Join(strings.Fields(e.Input), " ")
	runes := []rune(line)
	if max <= 0 || len(runes) <= max {
		return line
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
