package report

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Letter", "Count", "Percentage"}
	rows := [][]string{
		{"x", "12", "21.05%"},
		{"q", "3", "5.26%"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if lines[0] != "Letter | Count | Percentage" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "-------|-------|-----------" {
		t.Fatalf("unexpected rule line: %q", lines[1])
	}
	if lines[2] != "x      |    12 |     21.05%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
	if lines[3] != "q      |     3 |      5.26%" {
		t.Fatalf("unexpected row line: %q", lines[3])
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if lines := formatTable(nil, nil, nil); lines != nil {
		t.Fatalf("expected no lines, got %v", lines)
	}
}

func TestFormatRowTrimsTrailingPadding(t *testing.T) {
	lines := formatTable([]string{"Word", "Likely English"}, [][]string{{"cei", ""}}, nil)
	if lines[2] != "cei  |" {
		t.Fatalf("unexpected row: %q", lines[2])
	}
}
