package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/verte-zerg/subcrack/internal/freq"
	"github.com/verte-zerg/subcrack/internal/heuristics"
	"github.com/verte-zerg/subcrack/internal/mapping"
	"github.com/verte-zerg/subcrack/internal/score"
)

func TestRunStages(t *testing.T) {
	ciphertext := "Cei pfg cei du cei. P cd p cei pfg!"
	runner := New(Options{
		Rules:   heuristics.DefaultRules(),
		Final:   mapping.Mapping{'c': 't', 'e': 'h', 'i': 'e'},
		Scorers: []score.Scorer{score.NewFrequencyScorer()},
	})
	res, err := runner.Run(context.Background(), ciphertext)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Empty {
		t.Fatalf("expected non-empty result")
	}
	if res.ReferenceName != freq.RefEnglish {
		t.Fatalf("expected english reference by default, got %q", res.ReferenceName)
	}
	if res.Analysis.Total != 24 {
		t.Fatalf("expected 24 letters, got %d", res.Analysis.Total)
	}
	if len(res.Base) != len(res.Analysis.Counts) || len(res.Pairs) != len(res.Base) {
		t.Fatalf("rank mapping must cover every observed letter")
	}
	if len(res.Fired) == 0 {
		t.Fatalf("expected heuristics to fire")
	}
	if !strings.HasPrefix(res.Improved.Plaintext, "The and the of the. A to a the and!") {
		t.Fatalf("unexpected improved plaintext: %q", res.Improved.Plaintext)
	}
	if res.Final == nil {
		t.Fatalf("expected final stage with manual overrides")
	}
	if !strings.HasPrefix(res.Final.Plaintext, "The") {
		t.Fatalf("unexpected final plaintext: %q", res.Final.Plaintext)
	}
	if res.Best().Title != res.Final.Title {
		t.Fatalf("expected final stage to be best")
	}
	if len(res.Initial.Scores) != 1 || res.Initial.Scores[0].Scorer != "letter-freq" {
		t.Fatalf("expected scores on every stage, got %+v", res.Initial.Scores)
	}
}

func TestRunWithoutFinal(t *testing.T) {
	res, err := New(Options{}).Run(context.Background(), "abc abc")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Final != nil {
		t.Fatalf("expected no final stage without overrides")
	}
	if res.Best().Title != res.Improved.Title {
		t.Fatalf("expected improved stage to be best")
	}
	if len(res.Fired) != 0 {
		t.Fatalf("expected no heuristics without rules")
	}
	if res.Improved.Plaintext != res.Initial.Plaintext {
		t.Fatalf("without overrides both decryptions must match")
	}
}

func TestRunEmptyInput(t *testing.T) {
	res, err := New(Options{Rules: heuristics.DefaultRules()}).Run(context.Background(), "1234 !!")
	if err != nil {
		t.Fatalf("empty input must not fail: %v", err)
	}
	if !res.Empty || res.Analysis.Total != 0 {
		t.Fatalf("expected empty result, got %+v", res.Analysis)
	}
	if len(res.Base) != 0 || len(res.Words) != 0 {
		t.Fatalf("expected no mapping or words")
	}
	if res.Initial.Plaintext != "1234 !!" {
		t.Fatalf("non-letters must pass through, got %q", res.Initial.Plaintext)
	}
}

func TestRunTopWordsLimit(t *testing.T) {
	res, err := New(Options{TopWords: 2}).Run(context.Background(), "a b c d e f")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.Words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(res.Words))
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(Options{}).Run(ctx, "abc"); err == nil {
		t.Fatalf("expected context error")
	}
}
