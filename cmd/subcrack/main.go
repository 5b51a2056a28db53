// Package main provides the CLI entrypoint for subcrack.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/verte-zerg/subcrack/internal/analysis"
	"github.com/verte-zerg/subcrack/internal/config"
	"github.com/verte-zerg/subcrack/internal/freq"
	"github.com/verte-zerg/subcrack/internal/generator"
	"github.com/verte-zerg/subcrack/internal/heuristics"
	"github.com/verte-zerg/subcrack/internal/historyui"
	"github.com/verte-zerg/subcrack/internal/mapping"
	"github.com/verte-zerg/subcrack/internal/model"
	"github.com/verte-zerg/subcrack/internal/report"
	"github.com/verte-zerg/subcrack/internal/score"
	"github.com/verte-zerg/subcrack/internal/store"
	"github.com/verte-zerg/subcrack/internal/tui"
	"github.com/verte-zerg/subcrack/internal/wordlist"
)

const (
	defaultReference    = freq.RefEnglish
	defaultTopWords     = analysis.DefaultTopWords
	defaultMaxWordLen   = heuristics.DefaultMaxWordLen
	defaultHistoryLimit = 20
	defaultDictLang     = "en"
)

type inputOptions struct {
	text string
	file string
}

var (
	analyzeInput        inputOptions
	analyzeReference    string
	analyzeMap          string
	analyzeTopWords     int
	analyzeMaxWordLen   int
	analyzeNoHeuristics bool
	analyzeDict         string
	analyzeLangScore    bool
	analyzeChart        bool
	analyzeSave         bool

	solveInput     inputOptions
	solveReference string

	historyLimit int
	historyTUI   bool

	encryptInput inputOptions
	encryptSeed  int64

	verbose bool
	logger  = zap.NewNop()
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "subcrack",
		Short: "Frequency analysis for substitution ciphers",
		Long: `subcrack counts letter frequencies in a ciphertext, maps them rank by rank
onto an English reference, and refines the guess with short-word patterns.

The ciphertext is read from --text, --file, or the first line of stdin.`,
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: setupLogger,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			// Sync on stderr commonly fails with EINVAL; nothing to do about it.
			_ = logger.Sync()
		},
		RunE: runAnalyzeCmd,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	addInputFlags(rootCmd, &analyzeInput)
	rootCmd.Flags().StringVar(&analyzeReference, "reference", defaultReference, "reference frequency table (english, practical)")
	rootCmd.Flags().StringVar(&analyzeMap, "map", "", "manual overrides for the final decryption, e.g. \"x=t,i=h\"")
	rootCmd.Flags().IntVar(&analyzeTopWords, "top-words", defaultTopWords, "number of short cipher words to list")
	rootCmd.Flags().IntVar(&analyzeMaxWordLen, "max-word-len", defaultMaxWordLen, "longest cipher word considered a pattern")
	rootCmd.Flags().BoolVar(&analyzeNoHeuristics, "no-heuristics", false, "skip pattern-based overrides")
	rootCmd.Flags().StringVar(&analyzeDict, "dict", "", "dictionary file (one word per line) for scoring")
	rootCmd.Flags().BoolVar(&analyzeLangScore, "lang-score", false, "score candidates with a language detector")
	rootCmd.Flags().BoolVar(&analyzeChart, "chart", false, "draw observed vs reference frequency bars")
	rootCmd.Flags().BoolVar(&analyzeSave, "save", false, "record the run in the history database")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSolveCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newEncryptCmd())

	return rootCmd
}

func addInputFlags(cmd *cobra.Command, in *inputOptions) {
	cmd.Flags().StringVar(&in.text, "text", "", "input text")
	cmd.Flags().StringVar(&in.file, "file", "", "read input text from a file")
}

func setupLogger(_ *cobra.Command, _ []string) error {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	built, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = built
	return nil
}

func runAnalyzeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "reference", &analyzeReference, fileCfg.Analyze.Reference)
	applyIntConfig(cmd, "top-words", &analyzeTopWords, fileCfg.Analyze.TopWords)
	applyIntConfig(cmd, "max-word-len", &analyzeMaxWordLen, fileCfg.Analyze.MaxWordLen)
	applyNegatedBoolConfig(cmd, "no-heuristics", &analyzeNoHeuristics, fileCfg.Analyze.Heuristics)
	applyStringConfig(cmd, "dict", &analyzeDict, fileCfg.Analyze.Dict)
	applyBoolConfig(cmd, "lang-score", &analyzeLangScore, fileCfg.Analyze.LangScore)
	applyBoolConfig(cmd, "chart", &analyzeChart, fileCfg.Analyze.Chart)
	applyBoolConfig(cmd, "save", &analyzeSave, fileCfg.Analyze.Save)

	cfg := model.Config{
		Reference:  analyzeReference,
		TopWords:   analyzeTopWords,
		MaxWordLen: analyzeMaxWordLen,
		Heuristics: !analyzeNoHeuristics,
		DictPath:   analyzeDict,
		LangScore:  analyzeLangScore,
		Chart:      analyzeChart,
		Save:       analyzeSave,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	reference, err := freq.Reference(cfg.Reference)
	if err != nil {
		return err
	}
	var rules []heuristics.Rule
	if cfg.Heuristics {
		if rules, err = fileCfg.Rules(); err != nil {
			return err
		}
	}
	configOverrides, err := fileCfg.Overrides()
	if err != nil {
		return err
	}
	flagOverrides, err := mapping.Parse(analyzeMap)
	if err != nil {
		return fmt.Errorf("invalid --map value: %w", err)
	}

	ciphertext, err := readInput(cmd.InOrStdin(), analyzeInput)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	// The store only feeds saved mappings and --save; analysis runs without it.
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		if cfg.Save {
			return fmt.Errorf("failed to open db: %w", err)
		}
		logErrf("warning: history database unavailable, saved mappings ignored: %v\n", err)
	}
	var stored mapping.Mapping
	if st != nil {
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
		if stored, err = st.LoadMapping(ctx, ciphertext); err != nil {
			return fmt.Errorf("failed to load saved mapping: %w", err)
		}
		if stored != nil {
			logger.Debug("using saved mapping", zap.Stringer("mapping", stored))
		}
	}

	scorers, err := buildScorers(cfg)
	if err != nil {
		return err
	}

	runner := analysis.New(analysis.Options{
		Reference:     reference,
		ReferenceName: cfg.Reference,
		Rules:         rules,
		Final:         mapping.Merge(stored, configOverrides, flagOverrides),
		TopWords:      cfg.TopWords,
		MaxWordLen:    cfg.MaxWordLen,
		Scorers:       scorers,
		Logger:        logger,
	})
	res, err := runner.Run(ctx, ciphertext)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if res.Empty {
		logErrln("warning: input contains no letters; nothing to analyze")
	}

	if err := report.Render(cmd.OutOrStdout(), res, report.Options{Chart: cfg.Chart}); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if cfg.Save && !res.Empty {
		id, err := st.InsertRun(ctx, runRecord(res))
		if err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		logErrf("Saved run %d\n", id)
	}
	return nil
}

func buildScorers(cfg model.Config) ([]score.Scorer, error) {
	scorers := []score.Scorer{score.NewFrequencyScorer()}

	dictPath := cfg.DictPath
	explicit := dictPath != ""
	if !explicit {
		dictPath = config.DefaultDictPath(defaultDictLang)
	}
	dict, err := wordlist.Load(dictPath, wordlist.FilterForLang(defaultDictLang))
	switch {
	case err == nil:
		logger.Debug("dictionary loaded", zap.String("path", dictPath), zap.Int("words", len(dict)))
		scorers = append(scorers, score.NewDictionaryScorer(dict))
	case explicit:
		return nil, fmt.Errorf("failed to load dictionary: %w", err)
	case !errors.Is(err, os.ErrNotExist):
		logErrf("ignoring default dictionary: %v\n", err)
	}

	if cfg.LangScore {
		logger.Debug("building language detector")
		scorers = append(scorers, score.NewLanguageScorer())
	}
	return scorers, nil
}

func runRecord(res analysis.Result) model.RunRecord {
	best := res.Best()
	rec := model.RunRecord{
		CreatedAt:  time.Now(),
		Ciphertext: res.Ciphertext,
		Letters:    res.Analysis.Total,
		Reference:  res.ReferenceName,
		Mapping:    best.Mapping.String(),
		Plaintext:  best.Plaintext,
	}
	if len(best.Scores) > 0 {
		rec.Score = best.Scores[0].Value
	}
	return rec
}

func newSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Adjust the mapping interactively",
		Args:  cobra.NoArgs,
		RunE:  runSolveCmd,
	}
	addInputFlags(cmd, &solveInput)
	cmd.Flags().StringVar(&solveReference, "reference", defaultReference, "reference frequency table (english, practical)")
	return cmd
}

func runSolveCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "reference", &solveReference, fileCfg.Analyze.Reference)
	reference, err := freq.Reference(solveReference)
	if err != nil {
		return err
	}
	rules, err := fileCfg.Rules()
	if err != nil {
		return err
	}

	ciphertext, err := readInput(cmd.InOrStdin(), solveInput)
	if err != nil {
		return err
	}
	res, err := analysis.New(analysis.Options{
		Reference:     reference,
		ReferenceName: solveReference,
		Rules:         rules,
		Logger:        logger,
	}).Run(cmd.Context(), ciphertext)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if res.Empty {
		return fmt.Errorf("input contains no letters")
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	saved, err := st.LoadMapping(cmd.Context(), ciphertext)
	if err != nil {
		return fmt.Errorf("failed to load saved mapping: %w", err)
	}

	solver := tui.NewModel(ciphertext, res.Improved.Mapping, saved, st)
	program := tea.NewProgram(solver, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), solver.Plaintext()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLimit, "limit", defaultHistoryLimit, "number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&historyTUI, "tui", false, "browse runs interactively")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLimit < 0 {
		return fmt.Errorf("--limit must be >= 0")
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if historyTUI {
		program := tea.NewProgram(historyui.NewModel(st, historyLimit), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run history TUI: %w", err)
		}
		return nil
	}

	runs, err := st.ListRuns(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if err := report.RenderHistory(cmd.OutOrStdout(), runs); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newEncryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt text with a random substitution key",
		Args:  cobra.NoArgs,
		RunE:  runEncryptCmd,
	}
	addInputFlags(cmd, &encryptInput)
	cmd.Flags().Int64Var(&encryptSeed, "seed", 0, "random seed for a reproducible key (0 picks one)")
	return cmd
}

func runEncryptCmd(cmd *cobra.Command, _ []string) error {
	plaintext, err := readInput(cmd.InOrStdin(), encryptInput)
	if err != nil {
		return err
	}
	gen := generator.New()
	if encryptSeed != 0 {
		gen = generator.NewSeeded(encryptSeed)
	}
	ciphertext, key := gen.Encrypt(plaintext)
	logger.Debug("generated key", zap.Stringer("key", key))

	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintln(out, ciphertext); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	// The inverse key is what the analyzer should recover.
	if _, err := fmt.Fprintf(out, "key: %s\n", key.Invert()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// readInput returns --text, the contents of --file, or the first line of in.
func readInput(in io.Reader, opts inputOptions) (string, error) {
	switch {
	case opts.text != "" && opts.file != "":
		return "", fmt.Errorf("use either --text or --file, not both")
	case opts.text != "":
		return opts.text, nil
	case opts.file != "":
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		logErrf("Enter the cipher text: ")
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

// applyNegatedBoolConfig sets a --no-* flag from a positive config setting.
func applyNegatedBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = !*value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# subcrack configuration
# Uncomment a value to enable it. CLI flags override config values.

[analyze]
# reference = %q      # Reference table: english or practical
# top-words = %d           # Short cipher words listed in the report
# max-word-len = %d         # Longest cipher word considered a pattern
# heuristics = true         # Apply pattern-based overrides
# dict = ""                 # Dictionary for scoring (default %s)
# lang-score = false        # Score candidates with a language detector
# chart = false             # Draw observed vs reference frequency bars
# save = false              # Record every run in the history database

[mapping]
# Manual overrides for the final decryption (cipher = plain).
# overrides = { x = "t", i = "h" }

# Extra pattern rules: fire when every letter is more frequent than threshold%%.
# [heuristics]
# replace-defaults = false
#
# [[heuristics.rule]]
# name = "xiq"
# letters = "xiq"
# threshold = 3.0
# map = "x=t,i=h,q=e"
# note = "'xiq' -> 'the'"
`,
		defaultReference,
		defaultTopWords,
		defaultMaxWordLen,
		config.DefaultDictPath(defaultDictLang),
	)
}

func validateConfig(cfg model.Config) error {
	if _, err := freq.Reference(cfg.Reference); err != nil {
		return fmt.Errorf("--reference: %w", err)
	}
	if cfg.TopWords <= 0 {
		return fmt.Errorf("--top-words must be > 0")
	}
	if cfg.MaxWordLen <= 0 {
		return fmt.Errorf("--max-word-len must be > 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
