package score

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/subcrack/internal/wordlist"
)

func TestFrequencyScorerPrefersEnglish(t *testing.T) {
	s := NewFrequencyScorer()
	english := s.Score("the rain in spain stays mainly in the plain")
	gibberish := s.Score("qzj xvkq zzq jxq vkzj")
	assert.Greater(t, english, gibberish)
	assert.Equal(t, 0.0, s.Score("   "))
}

func TestFrequencyScorerPenalizesPlaceholders(t *testing.T) {
	s := NewFrequencyScorer()
	full := s.Score("the cat")
	partial := s.Score("t?e ?at")
	assert.Greater(t, full, partial)
}

func TestDictionaryScorer(t *testing.T) {
	dict, err := wordlist.Read(strings.NewReader("the\ncat\nsat\non\nmat\n"), wordlist.FilterForLang("en"))
	require.NoError(t, err)
	s := NewDictionaryScorer(dict)

	assert.InDelta(t, 1.0, s.Score("The cat sat on the mat."), 1e-9)
	assert.InDelta(t, 0.5, s.Score("the dog, on a"), 1e-9)
	assert.InDelta(t, 0.0, s.Score("-- !!"), 1e-9)
	// Words with placeholders never match.
	assert.InDelta(t, 0.5, s.Score("t?e cat"), 1e-9)
}

func TestLanguageScorer(t *testing.T) {
	if testing.Short() {
		t.Skip("loads language models")
	}
	s := NewLanguageScorer()
	english := s.Score("It was the best of times, it was the worst of times, it was the age of wisdom")
	garbled := s.Score("Oj xtd jmr frdj ui jozrd, oj xtd jmr xwedj ui jozrd")
	assert.Greater(t, english, 0.5)
	assert.Greater(t, english, garbled)
}

func TestAll(t *testing.T) {
	results := All([]Scorer{NewFrequencyScorer()}, "the")
	require.Len(t, results, 1)
	assert.Equal(t, "letter-freq", results[0].Scorer)
	assert.Greater(t, results[0].Value, 0.0)
}
