// Package heuristics proposes mapping overrides from letter frequencies and
// short-word patterns.
package heuristics

import (
	"fmt"

	"github.com/verte-zerg/subcrack/internal/freq"
	"github.com/verte-zerg/subcrack/internal/mapping"
)

// Rule proposes Override when every letter in Letters is more frequent than
// Threshold percent.
type Rule struct {
	Name      string
	Letters   []rune
	Threshold float64
	Override  mapping.Mapping
	Note      string
}

// Match reports whether all rule letters exceed the threshold. Letters that
// never occur count as 0%.
func (r Rule) Match(pct freq.Table) bool {
	if len(r.Letters) == 0 {
		return false
	}
	for _, letter := range r.Letters {
		if pct.Get(letter) <= r.Threshold {
			return false
		}
	}
	return true
}

// Apply evaluates rules in order. Every rule is checked independently and a
// later rule overwrites earlier overrides for shared letters. It returns the
// combined overrides and the rules that fired.
func Apply(rules []Rule, pct freq.Table) (mapping.Mapping, []Rule) {
	overrides := mapping.Mapping{}
	var fired []Rule
	for _, rule := range rules {
		if !rule.Match(pct) {
			continue
		}
		overrides = mapping.Merge(overrides, rule.Override)
		fired = append(fired, rule)
	}
	return overrides, fired
}

// NewRule builds a rule from the config shape: a string of trigger letters and
// a "x=t,..." override string.
func NewRule(name, letters string, threshold float64, override, note string) (Rule, error) {
	if letters == "" {
		return Rule{}, fmt.Errorf("rule %q: letters must not be empty", name)
	}
	runes := make([]rune, 0, len(letters))
	for _, r := range letters {
		if !freq.IsLetter(r) {
			return Rule{}, fmt.Errorf("rule %q: invalid trigger letter %q", name, r)
		}
		runes = append(runes, freq.ToLower(r))
	}
	m, err := mapping.Parse(override)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: %w", name, err)
	}
	if len(m) == 0 {
		return Rule{}, fmt.Errorf("rule %q: map must not be empty", name)
	}
	if name == "" {
		name = string(runes)
	}
	return Rule{
		Name:      name,
		Letters:   runes,
		Threshold: threshold,
		Override:  m,
		Note:      note,
	}, nil
}

// DefaultRules returns the built-in guesses for common English words. They
// were tuned against a single sample ciphertext and are only a starting point.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:      "du",
			Letters:   []rune("du"),
			Threshold: 3,
			Override:  mapping.Mapping{'d': 'o', 'u': 'f'},
			Note:      "'du' -> 'of' (common preposition)",
		},
		{
			Name:      "cei",
			Letters:   []rune("cei"),
			Threshold: 3,
			Override:  mapping.Mapping{'c': 't', 'e': 'h', 'i': 'e'},
			Note:      "'cei' -> 'the' (most common word)",
		},
		{
			Name:      "pfg",
			Letters:   []rune("pfg"),
			Threshold: 2,
			Override:  mapping.Mapping{'p': 'a', 'f': 'n', 'g': 'd'},
			Note:      "'pfg' -> 'and' (common conjunction)",
		},
		{
			Name:      "p",
			Letters:   []rune("p"),
			Threshold: 3,
			Override:  mapping.Mapping{'p': 'a'},
			Note:      "'p' -> 'a' (article)",
		},
		{
			Name:      "cd",
			Letters:   []rune("cd"),
			Threshold: 3,
			Override:  mapping.Mapping{'c': 't', 'd': 'o'},
			Note:      "'cd' -> 'to' (common preposition)",
		},
	}
}
