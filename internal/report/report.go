// Package report renders analysis results as text.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/verte-zerg/subcrack/internal/analysis"
	"github.com/verte-zerg/subcrack/internal/heuristics"
	"github.com/verte-zerg/subcrack/internal/score"
)

// Options controls optional report sections.
type Options struct {
	Chart      bool
	ChartWidth int
	ForceColor bool
}

// Render writes the staged report for r.
func Render(w io.Writer, r analysis.Result, opts Options) error {
	p := &printer{w: w}
	p.line("=== SUBSTITUTION CIPHER DECRYPTOR ===")
	p.line("")
	p.line("Original Cipher Text:")
	p.line(r.Ciphertext)
	p.line("")
	if p.err != nil {
		return p.err
	}

	if err := RenderFrequencyTable(w, r); err != nil {
		return err
	}
	if opts.Chart {
		if err := RenderChart(w, r.Analysis.Percent, r.Reference, opts.ChartWidth, opts.ForceColor); err != nil {
			return err
		}
	}
	if err := RenderMappingTable(w, r); err != nil {
		return err
	}
	if err := renderStage(w, r.Initial); err != nil {
		return err
	}
	if err := RenderWordTable(w, r.Words); err != nil {
		return err
	}
	if err := RenderFiredRules(w, r.Fired); err != nil {
		return err
	}
	if err := renderStage(w, r.Improved); err != nil {
		return err
	}
	if r.Final != nil {
		if err := renderConflicts(w, r.Final.Mapping.Conflicts()); err != nil {
			return err
		}
		if err := renderStage(w, *r.Final); err != nil {
			return err
		}
	}
	p.line("=== DECRYPTION COMPLETE ===")
	return p.err
}

// RenderFrequencyTable prints observed letter counts ranked by frequency.
func RenderFrequencyTable(w io.Writer, r analysis.Result) error {
	p := &printer{w: w}
	p.line("Cipher Frequency Analysis:")
	rows := r.Analysis.Rows()
	if len(rows) == 0 {
		p.line("No letters found.")
	} else {
		tableRows := make([][]string, 0, len(rows))
		for _, row := range rows {
			tableRows = append(tableRows, []string{
				string(row.Letter),
				fmt.Sprintf("%d", row.Count),
				fmt.Sprintf("%.2f%%", row.Percent),
			})
		}
		p.table([]string{"Letter", "Count", "Percentage"}, tableRows, map[int]bool{1: true, 2: true})
	}
	p.line("")
	p.line(fmt.Sprintf("Total letters: %d", r.Analysis.Total))
	p.line("")
	return p.err
}

// RenderMappingTable prints the rank-to-rank assignment.
func RenderMappingTable(w io.Writer, r analysis.Result) error {
	p := &printer{w: w}
	title := "Initial Frequency Mapping:"
	if r.ReferenceName != "" {
		title = fmt.Sprintf("Initial Frequency Mapping (%s reference):", r.ReferenceName)
	}
	p.line(title)
	if len(r.Pairs) == 0 {
		p.line("No mapping (no letters).")
	} else {
		rows := make([][]string, 0, len(r.Pairs))
		for _, pair := range r.Pairs {
			rows = append(rows, []string{
				fmt.Sprintf("%c -> %c", pair.Cipher, pair.Plain),
				fmt.Sprintf("%.1f%% -> %.1f%%", pair.CipherPct, pair.PlainPct),
			})
		}
		p.table([]string{"Cipher -> English", "Cipher% -> English%"}, rows, map[int]bool{1: true})
	}
	p.line("")
	return p.err
}

// RenderWordTable prints frequent short cipher words with naive suggestions.
func RenderWordTable(w io.Writer, words []heuristics.WordCount) error {
	p := &printer{w: w}
	p.line("Common Word Patterns Found:")
	if len(words) == 0 {
		p.line("No short words found.")
	} else {
		rows := make([][]string, 0, len(words))
		for _, wc := range words {
			rows = append(rows, []string{wc.Word, fmt.Sprintf("%d", wc.Count), heuristics.Suggest(wc)})
		}
		p.table([]string{"Word", "Count", "Likely English"}, rows, map[int]bool{0: true, 1: true})
	}
	p.line("")
	return p.err
}

// RenderFiredRules lists heuristic rules that produced overrides.
func RenderFiredRules(w io.Writer, fired []heuristics.Rule) error {
	p := &printer{w: w}
	p.line("Pattern-Based Mapping Suggestions:")
	if len(fired) == 0 {
		p.line("No pattern rules matched.")
	}
	for _, rule := range fired {
		note := rule.Note
		if note == "" {
			note = fmt.Sprintf("'%s' -> %s", rule.Name, rule.Override)
		}
		p.line(note)
	}
	p.line("")
	return p.err
}

func renderStage(w io.Writer, s analysis.Stage) error {
	p := &printer{w: w}
	p.line(s.Title + ":")
	p.line(s.Plaintext)
	if len(s.Scores) > 0 {
		p.line(formatScores(s.Scores))
	}
	p.line("")
	return p.err
}

func renderConflicts(w io.Writer, conflicts map[rune][]rune) error {
	if len(conflicts) == 0 {
		return nil
	}
	plains := make([]rune, 0, len(conflicts))
	for plain := range conflicts {
		plains = append(plains, plain)
	}
	sort.Slice(plains, func(i, j int) bool { return plains[i] < plains[j] })
	p := &printer{w: w}
	for _, plain := range plains {
		p.line(fmt.Sprintf("Warning: %s all map to '%c'", quoteRunes(conflicts[plain]), plain))
	}
	return p.err
}

func formatScores(results []score.Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("%s %.3f", r.Scorer, r.Value))
	}
	return "Score: " + strings.Join(parts, ", ")
}

func quoteRunes(rs []rune) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = fmt.Sprintf("'%c'", r)
	}
	return strings.Join(parts, ", ")
}

// printer keeps the first write error so sections read top to bottom.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, s)
}

func (p *printer) table(headers []string, rows [][]string, rightAlign map[int]bool) {
	for _, line := range formatTable(headers, rows, rightAlign) {
		p.line(line)
	}
}
