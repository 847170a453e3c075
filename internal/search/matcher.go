package search

import (
	"path/filepath"
	"strings"
	"time"
)

// NameMatcher decides whether a file belongs in the result set based on its
// base name and, optionally, its age. It is pure and immutable: construct
// once, evaluate from any number of workers.
type NameMatcher struct {
	pattern string
	cutoff  time.Time // zero when no recency cutoff is configured
}

// NewNameMatcher builds a matcher for a glob pattern. An empty pattern
// matches everything. months > 0 additionally restricts matches to files
// modified within the last N months, anchored at construction time.
func NewNameMatcher(pattern string, months int) *NameMatcher {
	if pattern == "" {
		pattern = DefaultPattern
	}
	m := &NameMatcher{pattern: pattern}
	if months > 0 {
		m.cutoff = time.Now().AddDate(0, -months, 0)
	}
	return m
}

// MatchName reports whether a base name satisfies the glob. A malformed
// pattern never matches; it never aborts a run.
func (m *NameMatcher) MatchName(name string) bool {
	ok, err := filepath.Match(m.pattern, name)
	return err == nil && ok
}

// HasCutoff reports whether a recency cutoff is configured.
func (m *NameMatcher) HasCutoff() bool {
	return !m.cutoff.IsZero()
}

// MatchModTime reports whether a last-modified timestamp satisfies the
// cutoff. Always true when no cutoff is configured.
func (m *NameMatcher) MatchModTime(modTime time.Time) bool {
	if m.cutoff.IsZero() {
		return true
	}
	return !modTime.Before(m.cutoff)
}

// ContentMatcher decides whether a single line of text satisfies the
// content criteria. Two strategies are available: a multi-term threshold
// (the fraction of configured terms present on the line) and single-keyword
// containment. The term strategy takes precedence whenever terms are
// configured; with neither terms nor keyword no line ever matches.
//
// Matching is case-insensitive; terms and keyword are lowered once at
// construction so per-line work is containment checks only.
type ContentMatcher struct {
	terms    []string
	keyword  string
	fraction float64
}

// NewContentMatcher builds a matcher from a term list, a fallback keyword,
// and a required fraction. Blank terms are dropped; the fraction is clamped
// to [0.1, 1.0].
func NewContentMatcher(terms []string, keyword string, fraction float64) *ContentMatcher {
	m := &ContentMatcher{
		keyword:  strings.ToLower(strings.TrimSpace(keyword)),
		fraction: ClampFraction(fraction),
	}
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			m.terms = append(m.terms, strings.ToLower(t))
		}
	}
	return m
}

// Active reports whether any strategy is configured. Inactive matchers
// report no match for every line.
func (m *ContentMatcher) Active() bool {
	return len(m.terms) > 0 || m.keyword != ""
}

// MatchLine reports whether one line satisfies the active strategy.
func (m *ContentMatcher) MatchLine(line string) bool {
	if len(m.terms) > 0 {
		return m.matchTerms(strings.ToLower(line))
	}
	if m.keyword != "" {
		return strings.Contains(strings.ToLower(line), m.keyword)
	}
	return false
}

// matchTerms counts how many distinct configured terms appear in the
// lowered line and compares the ratio against the threshold. Only reachable
// with a non-empty term list, so the division cannot be by zero.
func (m *ContentMatcher) matchTerms(lowered string) bool {
	hits := 0
	for _, term := range m.terms {
		if strings.Contains(lowered, term) {
			hits++
		}
	}
	return float64(hits)/float64(len(m.terms)) >= m.fraction
}
