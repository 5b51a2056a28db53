package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/subcrack/internal/mapping"
)

func TestBuildStyledRunesOrigins(t *testing.T) {
	guess := mapping.Mapping{'x': 't', 'i': 'h'}
	manual := mapping.Mapping{'i': 'a'}

	runes := buildStyledRunes([]rune("Xiq!"), guess, manual, 0)
	if len(runes) != 4 {
		t.Fatalf("expected 4 runes, got %d", len(runes))
	}
	if runes[0].s != guessStyle.Render("T") {
		t.Fatalf("expected guessed uppercase letter first")
	}
	if runes[1].s != manualStyle.Render("a") {
		t.Fatalf("expected manual assignment to win over guess")
	}
	if runes[2].s != unknownStyle.Render("?") {
		t.Fatalf("expected placeholder for unmapped letter")
	}
	if runes[3].s != otherStyle.Render("!") {
		t.Fatalf("expected punctuation to pass through")
	}
}

func TestBuildStyledRunesSelection(t *testing.T) {
	guess := mapping.Mapping{'x': 't'}
	runes := buildStyledRunes([]rune("xX q"), guess, nil, 'x')
	if runes[0].s != guessStyle.Underline(true).Render("t") {
		t.Fatalf("expected selected letter underlined")
	}
	if runes[1].s != guessStyle.Underline(true).Render("T") {
		t.Fatalf("expected selection to ignore case")
	}
	if !runes[2].isSpace {
		t.Fatalf("expected space marker")
	}
	if runes[3].s != unknownStyle.Render("?") {
		t.Fatalf("expected unselected letter without underline")
	}
}

func TestBuildStyledRunesNewlineAsSpace(t *testing.T) {
	runes := buildStyledRunes([]rune("a\nb"), nil, nil, 0)
	if !runes[1].isSpace {
		t.Fatalf("expected newline to wrap like a space")
	}
}

func TestWrapStyledRunesBreaksOnSpace(t *testing.T) {
	runes := buildStyledRunes([]rune("ab cd ef"), mapping.Mapping{'a': 'a', 'b': 'b', 'c': 'c', 'd': 'd', 'e': 'e', 'f': 'f'}, nil, 0)
	out := wrapStyledRunes(runes, 5)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}
	if lines[1] != renderStyledRunes(runes[3:]) {
		t.Fatalf("unexpected second line: %q", lines[1])
	}
}

func TestWrapStyledRunesHardBreak(t *testing.T) {
	runes := buildStyledRunes([]rune("abcdef"), nil, nil, 0)
	out := wrapStyledRunes(runes, 4)
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected one hard break, got %q", out)
	}
}
