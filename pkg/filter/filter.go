package filter

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"wordsmith/pkg/models"
)

type FilterMode int

const (
	FilterModeNone FilterMode = iota
	FilterModeExact
	FilterModeContains
	FilterModeRegex
	FilterModeFuzzy
)

type StringFilter struct {
	Pattern string
	Mode    FilterMode
	regex   *regexp.Regexp
}

func NewStringFilter(pattern string, mode FilterMode) (*StringFilter, error) {
	f := &StringFilter{
		Pattern: pattern,
		Mode:    mode,
	}

	if mode == FilterModeRegex {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern '%s': %w", pattern, err)
		}
		f.regex = re
	}

	return f, nil
}

func (f *StringFilter) Match(s string) bool {
	switch f.Mode {
	case FilterModeNone:
		return true
	case FilterModeExact:
		return strings.EqualFold(s, f.Pattern)
	case FilterModeContains:
		return strings.Contains(strings.ToLower(s), strings.ToLower(f.Pattern))
	case FilterModeRegex:
		return f.regex != nil && f.regex.MatchString(s)
	case FilterModeFuzzy:
		return FuzzyMatch(f.Pattern, s)
	default:
		return true
	}
}

// FuzzyMatch reports whether every rune of pattern appears in text in order,
// ignoring case.
func FuzzyMatch(pattern, text string) bool {
	if pattern == "" {
		return true
	}
	if text == "" {
		return false
	}

	p := []rune(strings.ToLower(pattern))
	i := 0
	for _, r := range strings.ToLower(text) {
		if r == p[i] {
			i++
			if i == len(p) {
				return true
			}
		}
	}
	return false
}

// LevenshteinDistance counts rune edits between s1 and s2, ignoring case.
func LevenshteinDistance(s1, s2 string) int {
	a, b := []rune(s1), []rune(s2)
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	previousRow := make([]int, len(b)+1)
	currentRow := make([]int, len(b)+1)
	for i := range previousRow {
		previousRow[i] = i
	}

	for i := range a {
		currentRow[0] = i + 1
		for j := range b {
			cost := 1
			if unicode.ToLower(a[i]) == unicode.ToLower(b[j]) {
				cost = 0
			}
			currentRow[j+1] = min(currentRow[j]+1, previousRow[j+1]+1, previousRow[j]+cost)
		}
		previousRow, currentRow = currentRow, previousRow
	}

	return previousRow[len(b)]
}

// Closest returns the candidate nearest to s, provided it is at most
// maxDistance edits away.
func Closest(s string, candidates []string, maxDistance int) (string, bool) {
	best, bestDistance := "", maxDistance+1
	for _, c := range candidates {
		if d := LevenshteinDistance(s, c); d < bestDistance {
			best, bestDistance = c, d
		}
	}
	return best, best != ""
}

// HistoryFilter selects stored conversions. Empty fields match everything.
// Input patterns apply to the raw text; Provider and Model compare exactly,
// ignoring case.
type HistoryFilter struct {
	InputRegex    string
	InputFuzzy    string
	InputContains string
	Provider      string
	Model         string
	Since         time.Time

	input    []*StringFilter
	provider *StringFilter
	model    *StringFilter
}

// Compile builds the string filters once so Match can be called per entry.
func (f *HistoryFilter) Compile() error {
	f.input, f.provider, f.model = nil, nil, nil

	inputs := []struct {
		pattern string
		mode    FilterMode
	}{
		{f.InputRegex, FilterModeRegex},
		{f.InputFuzzy, FilterModeFuzzy},
		{f.InputContains, FilterModeContains},
	}
	for _, in := range inputs {
		if in.pattern == "" {
			continue
		}
		sf, err := NewStringFilter(in.pattern, in.mode)
		if err != nil {
			return fmt.Errorf("invalid input filter: %w", err)
		}
		f.input = append(f.input, sf)
	}

	f.provider = exactFilter(f.Provider)
	f.model = exactFilter(f.Model)
	return nil
}

func exactFilter(pattern string) *StringFilter {
	if pattern == "" {
		return nil
	}
	return &StringFilter{Pattern: pattern, Mode: FilterModeExact}
}

func (f *HistoryFilter) IsEmpty() bool {
	return f.InputRegex == "" && f.InputFuzzy == "" && f.InputContains == "" &&
		f.Provider == "" && f.Model == "" && f.Since.IsZero()
}

// Match reports whether e passes every compiled filter.
func (f *HistoryFilter) Match(e models.HistoryEntry) bool {
	for _, sf := range f.input {
		if !sf.Match(e.Input) {
			return false
		}
	}
	if f.provider != nil && !f.provider.Match(e.Provider) {
		return false
	}
	if f.model != nil && !f.model.Match(e.Model) {
		return false
	}
	if !f.Since.IsZero() && e.CreatedAt.Before(f.Since) {
		return false
	}
	return true
}

// Apply compiles the filter and returns the matching entries in order.
func (f *HistoryFilter) Apply(entries []models.HistoryEntry) ([]models.HistoryEntry, error) {
	if err := f.Compile(); err != nil {
		return nil, err
	}
	if f.IsEmpty() {
		return entries, nil
	}

	out := make([]models.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}
