// Package analysis runs the staged frequency attack on a ciphertext.
package analysis

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/verte-zerg/subcrack/internal/decrypt"
	"github.com/verte-zerg/subcrack/internal/freq"
	"github.com/verte-zerg/subcrack/internal/heuristics"
	"github.com/verte-zerg/subcrack/internal/mapping"
	"github.com/verte-zerg/subcrack/internal/score"
)

// DefaultTopWords is how many short cipher words the report lists.
const DefaultTopWords = 15

// Options configures a Runner.
type Options struct {
	Reference     freq.Table
	ReferenceName string
	Rules         []heuristics.Rule
	// Final holds manual overrides. Like the heuristic overrides they apply
	// directly on top of the rank mapping.
	Final      mapping.Mapping
	TopWords   int
	MaxWordLen int
	Scorers    []score.Scorer
	Logger     *zap.Logger
}

// Stage is one decryption attempt.
type Stage struct {
	Title     string
	Mapping   mapping.Mapping
	Plaintext string
	Scores    []score.Result
}

// Result holds everything produced for one ciphertext.
type Result struct {
	Ciphertext    string
	ReferenceName string
	Reference     freq.Table
	Analysis      freq.Analysis
	Empty         bool

	Base  mapping.Mapping
	Pairs []mapping.Pair

	Words []heuristics.WordCount

	Overrides mapping.Mapping
	Fired     []heuristics.Rule

	Initial  Stage
	Improved Stage
	Final    *Stage
}

// Best returns the last stage that was produced.
func (r Result) Best() Stage {
	if r.Final != nil {
		return *r.Final
	}
	return r.Improved
}

// Runner executes the analysis stages.
type Runner struct {
	opts Options
	log  *zap.Logger
}

// New returns a Runner. Missing options fall back to defaults.
func New(opts Options) *Runner {
	if opts.Reference == nil {
		opts.Reference = freq.English()
		opts.ReferenceName = freq.RefEnglish
	}
	if opts.TopWords <= 0 {
		opts.TopWords = DefaultTopWords
	}
	if opts.MaxWordLen <= 0 {
		opts.MaxWordLen = heuristics.DefaultMaxWordLen
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{opts: opts, log: log}
}

// Run analyzes ciphertext: frequency count, rank mapping, initial decryption,
// short-word patterns, heuristic overrides and, when manual overrides are
// configured, a final decryption. Empty input is not an error; the result is
// marked Empty.
func (r *Runner) Run(ctx context.Context, ciphertext string) (Result, error) {
	res := Result{
		Ciphertext:    ciphertext,
		ReferenceName: r.opts.ReferenceName,
		Reference:     r.opts.Reference,
	}

	res.Analysis = freq.Analyze(ciphertext)
	if err := res.Analysis.Validate(); err != nil {
		if !errors.Is(err, freq.ErrEmptyInput) {
			return Result{}, err
		}
		r.log.Warn("no letters to analyze", zap.Int("length", len(ciphertext)))
		res.Empty = true
	}
	r.log.Debug("frequency analysis done",
		zap.Int("letters", res.Analysis.Total),
		zap.Int("distinct", len(res.Analysis.Counts)))
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res.Base, res.Pairs = mapping.Build(res.Analysis.Percent, r.opts.Reference)
	r.log.Debug("rank mapping built", zap.Stringer("mapping", res.Base))
	res.Initial = r.stage("Initial Decryption (Frequency Mapping)", res.Base, ciphertext)

	res.Words = heuristics.ShortWords(ciphertext, r.opts.MaxWordLen)
	if len(res.Words) > r.opts.TopWords {
		res.Words = res.Words[:r.opts.TopWords]
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res.Overrides, res.Fired = heuristics.Apply(r.opts.Rules, res.Analysis.Percent)
	for _, rule := range res.Fired {
		r.log.Debug("heuristic fired", zap.String("rule", rule.Name), zap.Stringer("override", rule.Override))
	}
	res.Improved = r.stage("Improved Decryption (Pattern-Based)", mapping.Merge(res.Base, res.Overrides), ciphertext)

	if len(r.opts.Final) > 0 {
		if conflicts := r.opts.Final.Conflicts(); len(conflicts) > 0 {
			r.log.Warn("manual mapping sends several cipher letters to one plain letter", zap.Int("conflicts", len(conflicts)))
		}
		final := r.stage("Final Decryption (Manual Adjustments)", mapping.Merge(res.Base, r.opts.Final), ciphertext)
		res.Final = &final
	}
	return res, nil
}

func (r *Runner) stage(title string, m mapping.Mapping, ciphertext string) Stage {
	plaintext := decrypt.Decrypt(ciphertext, m)
	return Stage{
		Title:     title,
		Mapping:   m,
		Plaintext: plaintext,
		Scores:    score.All(r.opts.Scorers, plaintext),
	}
}
