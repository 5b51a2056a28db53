package report

import (
	"fmt"
	"io"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/subcrack/internal/model"
)

const historyPreviewWidth = 32

// RenderHistory prints stored runs, newest first.
func RenderHistory(w io.Writer, runs []model.RunRecord) error {
	p := &printer{w: w}
	if len(runs) == 0 {
		p.line("No runs recorded.")
		return p.err
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			fmt.Sprintf("%d", run.ID),
			run.CreatedAt.Local().Format(time.DateTime),
			fmt.Sprintf("%d", run.Letters),
			run.Reference,
			fmt.Sprintf("%.3f", run.Score),
			preview(run.Plaintext, historyPreviewWidth),
		})
	}
	p.table([]string{"ID", "When", "Letters", "Reference", "Score", "Plaintext"}, rows, map[int]bool{0: true, 2: true, 4: true})
	return p.err
}

func preview(s string, width int) string {
	flat := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			r = ' '
		}
		flat = append(flat, r)
	}
	return runewidth.Truncate(string(flat), width, "...")
}
