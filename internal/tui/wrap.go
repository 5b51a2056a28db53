package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/subcrack/internal/decrypt"
	"github.com/verte-zerg/subcrack/internal/freq"
	"github.com/verte-zerg/subcrack/internal/mapping"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildStyledRunes renders the current plaintext guess for every cipher rune.
// Letters taken from manual are highlighted over letters from the guess, and
// every occurrence of the selected cipher letter is underlined.
func buildStyledRunes(cipherRunes []rune, guess, manual mapping.Mapping, selected rune) []styledRune {
	out := make([]styledRune, 0, len(cipherRunes))
	for _, c := range cipherRunes {
		if c == '\n' || c == '\t' || c == '\r' {
			c = ' '
		}
		if !freq.IsLetter(c) {
			out = append(out, styledRune{
				s:       otherStyle.Render(string(c)),
				width:   runewidth.RuneWidth(c),
				isSpace: c == ' ',
			})
			continue
		}

		displayed := decrypt.Placeholder
		style := unknownStyle
		if plain, ok := manual.Lookup(c); ok {
			displayed = plain
			style = manualStyle
		} else if plain, ok := guess.Lookup(c); ok {
			displayed = plain
			style = guessStyle
		}
		if displayed != decrypt.Placeholder && freq.IsUpper(c) {
			displayed = freq.ToUpper(displayed)
		}
		if selected != 0 && freq.ToLower(c) == selected {
			style = style.Underline(true)
		}
		out = append(out, styledRune{
			s:     style.Render(string(displayed)),
			width: runewidth.RuneWidth(displayed),
		})
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
