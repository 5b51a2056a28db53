package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/subcrack/internal/analysis"
	"github.com/verte-zerg/subcrack/internal/config"
	"github.com/verte-zerg/subcrack/internal/model"
)

func isolateXDG(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReadInputSources(t *testing.T) {
	got, err := readInput(strings.NewReader("ignored"), inputOptions{text: "Xiq"})
	if err != nil || got != "Xiq" {
		t.Fatalf("expected --text to win, got %q (%v)", got, err)
	}

	path := filepath.Join(t.TempDir(), "cipher.txt")
	if err := os.WriteFile(path, []byte("line one\nline two\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	got, err = readInput(nil, inputOptions{file: path})
	if err != nil || got != "line one\nline two" {
		t.Fatalf("expected whole file, got %q (%v)", got, err)
	}

	got, err = readInput(strings.NewReader("first\r\nsecond\n"), inputOptions{})
	if err != nil || got != "first" {
		t.Fatalf("expected first stdin line, got %q (%v)", got, err)
	}

	got, err = readInput(strings.NewReader("no newline"), inputOptions{})
	if err != nil || got != "no newline" {
		t.Fatalf("expected text without newline, got %q (%v)", got, err)
	}

	if _, err := readInput(nil, inputOptions{text: "a", file: path}); err == nil {
		t.Fatalf("expected error for --text with --file")
	}
	if _, err := readInput(nil, inputOptions{file: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidateConfig(t *testing.T) {
	ok := model.Config{Reference: "english", TopWords: 15, MaxWordLen: 4}
	if err := validateConfig(ok); err != nil {
		t.Fatalf("expected valid config: %v", err)
	}
	bad := []model.Config{
		{Reference: "klingon", TopWords: 15, MaxWordLen: 4},
		{Reference: "english", TopWords: 0, MaxWordLen: 4},
		{Reference: "english", TopWords: 15, MaxWordLen: 0},
	}
	for _, cfg := range bad {
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	isolateXDG(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("template must decode: %v", err)
	}
	if cfg.Analyze.Reference != nil || len(cfg.Mapping.Overrides) != 0 {
		t.Fatalf("template values must all be commented out: %+v", cfg)
	}
}

func TestBuildScorers(t *testing.T) {
	isolateXDG(t)
	scorers, err := buildScorers(model.Config{})
	if err != nil {
		t.Fatalf("missing default dictionary must be ignored: %v", err)
	}
	if len(scorers) != 1 || scorers[0].Name() != "letter-freq" {
		t.Fatalf("expected only the frequency scorer, got %d", len(scorers))
	}

	if _, err := buildScorers(model.Config{DictPath: filepath.Join(t.TempDir(), "missing.txt")}); err == nil {
		t.Fatalf("expected error for an explicit missing dictionary")
	}

	dictPath := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(dictPath, []byte("the\nand\n"), 0o644); err != nil {
		t.Fatalf("write dict: %v", err)
	}
	scorers, err = buildScorers(model.Config{DictPath: dictPath})
	if err != nil {
		t.Fatalf("buildScorers failed: %v", err)
	}
	if len(scorers) != 2 || scorers[1].Name() != "dictionary" {
		t.Fatalf("expected dictionary scorer")
	}
}

func TestRunRecordUsesBestStage(t *testing.T) {
	res := analysis.Result{
		Ciphertext:    "xiq",
		ReferenceName: "english",
		Improved:      analysis.Stage{Plaintext: "the"},
	}
	res.Analysis.Total = 3
	rec := runRecord(res)
	if rec.Plaintext != "the" || rec.Letters != 3 || rec.Reference != "english" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Score != 0 {
		t.Fatalf("expected zero score without scorers")
	}
}

func TestAnalyzeCommand(t *testing.T) {
	isolateXDG(t)
	out, err := execute(t, "", "--text", "Cei pfg cei du cei. P cd p cei pfg!", "--map", "c=t")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	for _, s := range []string{
		"=== SUBSTITUTION CIPHER DECRYPTOR ===",
		"The and the of the. A to a the and!",
		"Final Decryption (Manual Adjustments):",
		"=== DECRYPTION COMPLETE ===",
	} {
		if !strings.Contains(out, s) {
			t.Fatalf("missing %q in output:\n%s", s, out)
		}
	}
}

func TestAnalyzeReadsStdin(t *testing.T) {
	isolateXDG(t)
	out, err := execute(t, "xiq xiq\nsecond line\n", "--no-heuristics")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if !strings.Contains(out, "Total letters: 6") {
		t.Fatalf("expected only the first stdin line to be analyzed:\n%s", out)
	}
	if strings.Contains(out, "'cei' -> 'the'") {
		t.Fatalf("heuristics must be disabled")
	}
}

func TestAnalyzeEmptyInputSucceeds(t *testing.T) {
	isolateXDG(t)
	out, err := execute(t, "", "--text", "123 !!")
	if err != nil {
		t.Fatalf("empty input must not fail: %v", err)
	}
	if !strings.Contains(out, "Total letters: 0") {
		t.Fatalf("expected empty report:\n%s", out)
	}
}

func TestAnalyzeWithoutUsableStore(t *testing.T) {
	isolateXDG(t)
	dataFile := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(dataFile, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("write data file: %v", err)
	}
	t.Setenv("XDG_DATA_HOME", dataFile)

	out, err := execute(t, "", "--text", "Xiq xiq")
	if err != nil {
		t.Fatalf("analysis must not depend on the store: %v", err)
	}
	if !strings.Contains(out, "=== DECRYPTION COMPLETE ===") {
		t.Fatalf("expected full report:\n%s", out)
	}

	if _, err := execute(t, "", "--text", "Xiq xiq", "--save"); err == nil {
		t.Fatalf("expected --save to fail without a store")
	}
}

func TestAnalyzeRejectsBadMap(t *testing.T) {
	isolateXDG(t)
	if _, err := execute(t, "", "--text", "abc", "--map", "ab=c"); err == nil {
		t.Fatalf("expected error for malformed --map")
	}
}

func TestSaveAndHistory(t *testing.T) {
	isolateXDG(t)
	out, err := execute(t, "", "history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "No runs recorded.") {
		t.Fatalf("expected empty history, got:\n%s", out)
	}

	if _, err := execute(t, "", "--text", "xiq xiq", "--save"); err != nil {
		t.Fatalf("analyze with --save failed: %v", err)
	}
	out, err = execute(t, "", "history", "--limit", "5")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[2], " 1 |") {
		t.Fatalf("expected one recorded run, got:\n%s", out)
	}
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	isolateXDG(t)
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	body := "[analyze]\nheuristics = false\n\n[mapping]\noverrides = { x = \"t\" }\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out, err := execute(t, "", "--text", "Cei pfg cei du cei.")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if !strings.Contains(out, "No pattern rules matched.") {
		t.Fatalf("expected heuristics disabled by config:\n%s", out)
	}
	if !strings.Contains(out, "Final Decryption (Manual Adjustments):") {
		t.Fatalf("expected config overrides to add a final stage:\n%s", out)
	}
}

func TestEncryptCommand(t *testing.T) {
	isolateXDG(t)
	out, err := execute(t, "", "encrypt", "--text", "Hello, World", "--seed", "7")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected ciphertext and key lines, got %q", out)
	}
	if len(lines[0]) != len("Hello, World") || lines[0][5:7] != ", " {
		t.Fatalf("expected layout preserved, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "key: ") {
		t.Fatalf("expected key line, got %q", lines[1])
	}

	again, err := execute(t, "", "encrypt", "--text", "Hello, World", "--seed", "7")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if again != out {
		t.Fatalf("same seed must give the same key")
	}
}
