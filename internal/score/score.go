// Package score rates how English-like a candidate plaintext is.
package score

import (
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/verte-zerg/subcrack/internal/freq"
	"github.com/verte-zerg/subcrack/internal/wordlist"
)

// Scorer rates a candidate plaintext. Higher is better.
type Scorer interface {
	Name() string
	Score(text string) float64
}

// FrequencyScorer averages the reference frequency of every letter in the
// text. Placeholders and other non-letters count as zero, so partially
// decrypted text scores lower.
type FrequencyScorer struct {
	Reference freq.Table
}

// NewFrequencyScorer returns a FrequencyScorer over the English table.
func NewFrequencyScorer() *FrequencyScorer {
	return &FrequencyScorer{Reference: freq.English()}
}

// Name implements Scorer.
func (s *FrequencyScorer) Name() string { return "letter-freq" }

// Score implements Scorer.
func (s *FrequencyScorer) Score(text string) float64 {
	var (
		weight float64
		n      int
	)
	for _, r := range text {
		if r == ' ' || r == '\t' || r == '\n' {
			continue
		}
		n++
		if freq.IsLetter(r) {
			weight += s.Reference.Get(r)
		}
	}
	if n == 0 {
		return 0
	}
	return weight / float64(n)
}

// DictionaryScorer reports the fraction of words found in a dictionary.
type DictionaryScorer struct {
	dict wordlist.Dictionary
}

// NewDictionaryScorer wraps a loaded dictionary.
func NewDictionaryScorer(dict wordlist.Dictionary) *DictionaryScorer {
	return &DictionaryScorer{dict: dict}
}

// Name implements Scorer.
func (s *DictionaryScorer) Name() string { return "dictionary" }

// Score implements Scorer.
func (s *DictionaryScorer) Score(text string) float64 {
	var hits, total int
	for _, field := range strings.Fields(text) {
		word := strings.TrimFunc(field, func(r rune) bool { return !freq.IsLetter(r) && r != '?' })
		if word == "" {
			continue
		}
		total++
		if s.dict.Contains(word) {
			hits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// LanguageScorer reports lingua's confidence that the text is English.
type LanguageScorer struct {
	detector lingua.LanguageDetector
}

// NewLanguageScorer builds a detector over a handful of Latin-script
// languages so confidence for English is relative to plausible alternatives.
func NewLanguageScorer() *LanguageScorer {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.English, lingua.French, lingua.German, lingua.Spanish, lingua.Italian, lingua.Dutch).
		Build()
	return &LanguageScorer{detector: detector}
}

// Name implements Scorer.
func (s *LanguageScorer) Name() string { return "english-confidence" }

// Score implements Scorer.
func (s *LanguageScorer) Score(text string) float64 {
	return s.detector.ComputeLanguageConfidence(text, lingua.English)
}

// Result is one scorer's verdict on a text.
type Result struct {
	Scorer string
	Value  float64
}

// All runs every scorer against text in order.
func All(scorers []Scorer, text string) []Result {
	out := make([]Result, 0, len(scorers))
	for _, s := range scorers {
		out = append(out, Result{Scorer: s.Name(), Value: s.Score(text)})
	}
	return out
}
