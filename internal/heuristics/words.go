package heuristics

import (
	"sort"
	"strings"

	"github.com/verte-zerg/subcrack/internal/freq"
)

// DefaultMaxWordLen is the longest word ShortWords keeps by default.
const DefaultMaxWordLen = 4

// WordCount is a cipher word and how often it occurs.
type WordCount struct {
	Word  string
	Count int
}

// ShortWords counts whitespace-separated words of 1..maxLen letters after
// lowercasing and stripping non-letters. The result is ordered by count, then
// alphabetically.
func ShortWords(text string, maxLen int) []WordCount {
	if maxLen <= 0 {
		maxLen = DefaultMaxWordLen
	}
	counts := map[string]int{}
	for _, field := range strings.Fields(text) {
		word := lettersOnly(field)
		if len(word) < 1 || len(word) > maxLen {
			continue
		}
		counts[word]++
	}
	out := make([]WordCount, 0, len(counts))
	for word, count := range counts {
		out = append(out, WordCount{Word: word, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Word < out[j].Word
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// Suggest returns likely English words for a frequent short cipher word, or
// an empty string when the word is too rare to guess.
func Suggest(wc WordCount) string {
	switch {
	case len(wc.Word) == 1 && wc.Count > 10:
		return "'I' or 'A'"
	case len(wc.Word) == 2 && wc.Count > 5:
		return "'OF', 'TO', 'IN', 'IT'"
	case len(wc.Word) == 3 && wc.Count > 5:
		return "'THE', 'AND', 'FOR'"
	case len(wc.Word) == 4 && wc.Count > 3:
		return "'THAT', 'WITH', 'HAVE'"
	default:
		return ""
	}
}

func lettersOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if freq.IsLetter(r) {
			b.WriteRune(freq.ToLower(r))
		}
	}
	return b.String()
}
