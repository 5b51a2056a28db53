package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/subcrack/internal/freq"
)

type ansiColor struct {
	name string
	code string
}

const (
	minBarWidth         = 10
	chartLabelWidth     = 15 // "x obs  12.34% "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
	barRune             = '#'
)

var (
	observedColor  = ansiColor{name: "cyan", code: "\x1b[36m"}
	referenceColor = ansiColor{name: "yellow", code: "\x1b[33m"}
)

// RenderChart draws paired horizontal bars of observed and reference
// percentages, one pair per observed letter in rank order. A width of 0 uses
// the terminal width.
func RenderChart(w io.Writer, observed, reference freq.Table, width int, forceColor bool) error {
	ranked := freq.Ranked(observed)
	if len(ranked) == 0 {
		return nil
	}
	if width <= 0 {
		width = terminalWidth(w)
	}
	barWidth := BarWidthFor(width)
	useColor := shouldUseColor(w, forceColor)

	maxPct := 0.0
	for _, lf := range ranked {
		maxPct = math.Max(maxPct, lf.Percent)
	}
	for _, v := range reference {
		maxPct = math.Max(maxPct, v)
	}

	if _, err := fmt.Fprintln(w, "Observed vs Reference Frequency:"); err != nil {
		return err
	}
	refRanked := freq.Ranked(reference)
	for i, lf := range ranked {
		if _, err := fmt.Fprintln(w, barLine(lf.Letter, "obs", lf.Percent, maxPct, barWidth, observedColor, useColor)); err != nil {
			return err
		}
		if i < len(refRanked) {
			ref := refRanked[i]
			if _, err := fmt.Fprintln(w, barLine(ref.Letter, "ref", ref.Percent, maxPct, barWidth, referenceColor, useColor)); err != nil {
				return err
			}
		}
	}
	legend := fmt.Sprintf("Legend: obs = ciphertext (%s), ref = reference at the same rank (%s)", observedColor.name, referenceColor.name)
	if _, err := fmt.Fprintln(w, legend); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// BarWidthFor returns the bar area available within a total line width.
func BarWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minBarWidth
	}
	barWidth := totalWidth - chartLabelWidth
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}
	return barWidth
}

func barLine(letter rune, kind string, pct, maxPct float64, barWidth int, color ansiColor, useColor bool) string {
	n := 0
	if maxPct > 0 {
		n = int(math.Round(pct / maxPct * float64(barWidth)))
	}
	bar := strings.Repeat(string(barRune), n)
	if useColor && bar != "" {
		bar = color.code + bar + colorReset
	}
	return fmt.Sprintf("%c %s %7.2f%% %s", letter, kind, pct, bar)
}

func terminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
