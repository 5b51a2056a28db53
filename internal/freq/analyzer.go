package freq

import (
	"errors"
	"sort"
)

// ErrEmptyInput reports ciphertext without any alphabetic characters.
var ErrEmptyInput = errors.New("ciphertext contains no alphabetic characters")

// Analysis holds observed letter statistics for a ciphertext.
type Analysis struct {
	Total   int
	Counts  map[rune]int
	Percent Table
}

// LetterFreq is a single ranked table entry.
type LetterFreq struct {
	Letter  rune
	Percent float64
}

// Row is a display row of the observed frequency table.
type Row struct {
	Letter  rune
	Count   int
	Percent float64
}

// Analyze counts letters case-insensitively. Non-letters are ignored. Only
// letters that occur are present in Counts and Percent.
func Analyze(text string) Analysis {
	a := Analysis{
		Counts:  map[rune]int{},
		Percent: Table{},
	}
	for _, r := range text {
		if !IsLetter(r) {
			continue
		}
		a.Counts[ToLower(r)]++
		a.Total++
	}
	if a.Total == 0 {
		return a
	}
	for letter, count := range a.Counts {
		a.Percent[letter] = float64(count) / float64(a.Total) * 100
	}
	return a
}

// Validate returns ErrEmptyInput when no letters were counted.
func (a Analysis) Validate() error {
	if a.Total == 0 {
		return ErrEmptyInput
	}
	return nil
}

// Rows returns the observed letters ranked by percentage.
func (a Analysis) Rows() []Row {
	ranked := Ranked(a.Percent)
	rows := make([]Row, 0, len(ranked))
	for _, lf := range ranked {
		rows = append(rows, Row{
			Letter:  lf.Letter,
			Count:   a.Counts[lf.Letter],
			Percent: lf.Percent,
		})
	}
	return rows
}

// Ranked sorts a table by descending percentage. Equal percentages are
// ordered alphabetically so results are reproducible.
func Ranked(t Table) []LetterFreq {
	items := make([]LetterFreq, 0, len(t))
	for letter, pct := range t {
		items = append(items, LetterFreq{Letter: letter, Percent: pct})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Percent == items[j].Percent {
			return items[i].Letter < items[j].Letter
		}
		return items[i].Percent > items[j].Percent
	})
	return items
}

// IsLetter reports whether r is an ASCII letter.
func IsLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// IsUpper reports whether r is an ASCII uppercase letter.
func IsUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

// ToLower lowercases an ASCII letter and leaves everything else untouched.
func ToLower(r rune) rune {
	if IsUpper(r) {
		return r + ('a' - 'A')
	}
	return r
}

// ToUpper uppercases an ASCII letter and leaves everything else untouched.
func ToUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
