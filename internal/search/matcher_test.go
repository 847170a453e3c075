package search

import (
	"testing"
	"time"
)

func TestNameMatcher_Globs(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		file    string
		want    bool
	}{
		{"extension match", "*.config", "app.config", true},
		{"extension mismatch", "*.config", "notes.txt", false},
		{"match everything", "*", "anything.at.all", true},
		{"dot star matches dotted names", "*.*", "Results.log", true},
		{"dot star rejects bare names", "*.*", "Makefile", false},
		{"question mark", "?.log", "x.log", true},
		{"question mark too long", "?.log", "xy.log", false},
		{"empty pattern matches everything", "", "whatever", true},
		{"case sensitive", "*.Config", "app.config", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewNameMatcher(tt.pattern, 0)
			if got := m.MatchName(tt.file); got != tt.want {
				t.Errorf("MatchName(%q) with pattern %q = %v, want %v", tt.file, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestNameMatcher_MalformedPatternNeverMatches(t *testing.T) {
	m := NewNameMatcher("[unclosed", 0)
	if m.MatchName("unclosed") {
		t.Error("expected malformed pattern to match nothing")
	}
	if m.MatchName("[unclosed") {
		t.Error("expected malformed pattern to match nothing, even itself")
	}
}

func TestNameMatcher_RecencyCutoff(t *testing.T) {
	m := NewNameMatcher("*.log", 6)

	if !m.HasCutoff() {
		t.Fatal("expected a cutoff to be configured")
	}
	if !m.MatchModTime(time.Now()) {
		t.Error("expected a just-modified file to pass the cutoff")
	}
	if m.MatchModTime(time.Now().AddDate(0, -7, 0)) {
		t.Error("expected a seven-month-old file to fail a six-month cutoff")
	}
	if m.MatchModTime(time.Now().AddDate(-2, 0, 0)) {
		t.Error("expected a two-year-old file to fail a six-month cutoff")
	}
}

func TestNameMatcher_NoCutoffAcceptsAnyAge(t *testing.T) {
	m := NewNameMatcher("*.log", 0)

	if m.HasCutoff() {
		t.Fatal("expected no cutoff with months = 0")
	}
	if !m.MatchModTime(time.Now().AddDate(-10, 0, 0)) {
		t.Error("expected a decade-old file to pass with no cutoff")
	}
}

func TestContentMatcher_Keyword(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		line    string
		want    bool
	}{
		{"exact", "error", "error", true},
		{"substring", "error", "fatal error occurred", true},
		{"case insensitive keyword", "ERROR", "an error happened", true},
		{"case insensitive line", "error", "ERROR: disk full", true},
		{"absent", "error", "all good here", false},
		{"empty line", "error", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewContentMatcher(nil, tt.keyword, 0.5)
			if got := m.MatchLine(tt.line); got != tt.want {
				t.Errorf("MatchLine(%q) with keyword %q = %v, want %v", tt.line, tt.keyword, got, tt.want)
			}
		})
	}
}

func TestContentMatcher_TermThreshold(t *testing.T) {
	terms := []string{"foo", "bar", "baz"}

	tests := []struct {
		name     string
		fraction float64
		line     string
		want     bool
	}{
		{"one of three below half", 0.5, "foo", false},
		{"two of three meets half", 0.5, "foo bar", true},
		{"all three meets half", 0.5, "foo bar baz", true},
		{"case folded terms", 0.5, "FOO and BAR", true},
		{"perfect match required", 1.0, "foo bar", false},
		{"perfect match satisfied", 1.0, "baz foo bar", true},
		{"low clamp matches single term", -0.2, "just foo here", true},
		{"above one collapses to perfect", 1.5, "foo bar", false},
		{"no terms present", 0.5, "nothing relevant", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewContentMatcher(terms, "", tt.fraction)
			if got := m.MatchLine(tt.line); got != tt.want {
				t.Errorf("MatchLine(%q) with fraction %v = %v, want %v", tt.line, tt.fraction, got, tt.want)
			}
		})
	}
}

func TestContentMatcher_TermsTakePrecedenceOverKeyword(t *testing.T) {
	m := NewContentMatcher([]string{"alpha", "beta"}, "gamma", 1.0)

	// The line contains the keyword but not the terms; the term strategy is
	// active, so the keyword must not rescue it.
	if m.MatchLine("gamma only") {
		t.Error("expected the term strategy to take precedence over the keyword")
	}
	if !m.MatchLine("alpha beta") {
		t.Error("expected a full term hit to match")
	}
}

func TestContentMatcher_NoTermsNoKeywordNeverMatches(t *testing.T) {
	m := NewContentMatcher(nil, "", 0.5)

	if m.Active() {
		t.Fatal("expected an unconfigured matcher to be inactive")
	}
	if m.MatchLine("anything at all") {
		t.Error("expected no match from an unconfigured matcher")
	}
	if m.MatchLine("") {
		t.Error("expected no match on an empty line")
	}
}

func TestContentMatcher_BlankTermsDropped(t *testing.T) {
	m := NewContentMatcher([]string{"  ", "", "\t"}, "", 0.5)

	// All-blank terms collapse to an empty list; without a keyword nothing
	// matches and, critically, nothing divides by zero.
	if m.Active() {
		t.Fatal("expected all-blank terms to leave the matcher inactive")
	}
	if m.MatchLine("some line") {
		t.Error("expected no match once blank terms are dropped")
	}
}

func TestClampFraction(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.5, 1.0},
		{-0.2, 0.1},
		{0, 0.1},
		{0.05, 0.1},
		{0.1, 0.1},
		{0.5, 0.5},
		{1.0, 1.0},
	}

	for _, tt := range tests {
		if got := ClampFraction(tt.in); got != tt.want {
			t.Errorf("ClampFraction(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
