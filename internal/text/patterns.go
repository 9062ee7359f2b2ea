package text

import (
	"fmt"
	"regexp"
)

// PatternSpec names a regular expression that marks an emotional cue
type PatternSpec struct {
	Label string `yaml:"label" json:"label"`
	Expr  string `yaml:"expr" json:"expr"`
}

// DefaultPatterns lists the built-in cues in evaluation order
func DefaultPatterns() []PatternSpec {
	return []PatternSpec{
		{Label: "laughter", Expr: `(?i)\b(ha+h+a+|he+h+e+)\b`},
		{Label: "exclamation", Expr: `(?i)\b(oh+|ah+|uh+)\b`},
		{Label: "repeated_punctuation", Expr: `!{2,}`},
		{Label: "all_caps", Expr: `[A-Z]{3,}`},
		{Label: "elongated", Expr: `(?i)\b(yes+|no+o+)\b`},
	}
}

type pattern struct {
	label string
	re    *regexp.Regexp
}

// PatternSet is an ordered list of compiled patterns. It is safe for
// concurrent use.
type PatternSet struct {
	patterns []pattern
}

// CompilePatterns compiles specs once, in order
func CompilePatterns(specs []PatternSpec) (*PatternSet, error) {
	set := &PatternSet{patterns: make([]pattern, 0, len(specs))}
	for _, s := range specs {
		re, err := regexp.Compile(s.Expr)
		if err != nil {
			return nil, fmt.Errorf("compiling pattern %q: %w", s.Label, err)
		}
		set.patterns = append(set.patterns, pattern{label: s.Label, re: re})
	}
	return set, nil
}

// DefaultPatternSet compiles DefaultPatterns
func DefaultPatternSet() *PatternSet {
	set, err := CompilePatterns(DefaultPatterns())
	if err != nil {
		panic(err)
	}
	return set
}

// PatternMatch holds every occurrence of one pattern in a piece of text
type PatternMatch struct {
	Label   string
	Expr    string
	Matches []string
}

// Find runs every pattern over s and reports those that matched at least once
func (p *PatternSet) Find(s string) []PatternMatch {
	var out []PatternMatch
	for _, pat := range p.patterns {
		if matches := pat.re.FindAllString(s, -1); len(matches) > 0 {
			out = append(out, PatternMatch{Label: pat.label, Expr: pat.re.String(), Matches: matches})
		}
	}
	return out
}

// Len returns the number of patterns in the set
func (p *PatternSet) Len() int {
	return len(p.patterns)
}
