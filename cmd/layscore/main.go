// Package main provides the CLI entrypoint for layscore.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/layscore/internal/config"
	"github.com/verte-zerg/layscore/internal/corpus"
	"github.com/verte-zerg/layscore/internal/evaluator"
	"github.com/verte-zerg/layscore/internal/keyboard"
	"github.com/verte-zerg/layscore/internal/mapper"
	"github.com/verte-zerg/layscore/internal/metrics"
	"github.com/verte-zerg/layscore/internal/report"
	"github.com/verte-zerg/layscore/internal/resultsui"
	"github.com/verte-zerg/layscore/internal/store"
)

var (
	evalLayout  string
	evalNgrams  string
	evalParams  string
	evalCorpus  string
	evalWorkers int
	evalSave    bool
	evalVerbose bool

	rankLayout string
	rankCorpus string
	rankLimit  int
	rankTUI    bool

	corpusText string
	corpusOut  string
	corpusTop  int
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "layscore",
		Short:         "Keyboard layout cost evaluator",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runEvaluateCmd,
	}

	rootCmd.Flags().StringVar(&evalLayout, "layout", "", "layout file to evaluate (bare names resolve in the layouts directory)")
	rootCmd.Flags().StringVar(&evalNgrams, "ngrams", "", "directory with 1-grams.txt, 2-grams.txt, 3-grams.txt")
	rootCmd.Flags().StringVar(&evalParams, "params", "", "evaluation parameters file (built-in defaults if omitted)")
	rootCmd.Flags().StringVar(&evalCorpus, "corpus", "", "corpus label for stored results (default: ngram dir name)")
	rootCmd.Flags().IntVar(&evalWorkers, "workers", 0, "metric worker count (default: all CPUs)")
	rootCmd.Flags().BoolVar(&evalSave, "save", false, "store the result in the evaluation database")
	rootCmd.Flags().BoolVar(&evalVerbose, "verbose", false, "per-metric details and debug logging")

	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newRankCmd())
	rootCmd.AddCommand(newCorpusCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runEvaluateCmd(cmd *cobra.Command, _ []string) error {
	if err := applyEvaluateConfig(cmd); err != nil {
		return err
	}
	if evalLayout == "" {
		return fmt.Errorf("--layout is required")
	}
	results, corpusName, err := evaluateLayouts(cmd.Context(), []string{evalLayout})
	if err != nil {
		return err
	}
	if err := report.RenderResult(cmd.OutOrStdout(), results[0], evalVerbose); err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}
	if evalSave {
		return saveResults(cmd.Context(), results, corpusName)
	}
	return nil
}

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <layout>...",
		Short: "Evaluate several layouts and rank them side by side",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runCompareCmd,
	}
	cmd.Flags().StringVar(&evalNgrams, "ngrams", "", "directory with 1-grams.txt, 2-grams.txt, 3-grams.txt")
	cmd.Flags().StringVar(&evalParams, "params", "", "evaluation parameters file (built-in defaults if omitted)")
	cmd.Flags().StringVar(&evalCorpus, "corpus", "", "corpus label for stored results (default: ngram dir name)")
	cmd.Flags().IntVar(&evalWorkers, "workers", 0, "metric worker count (default: all CPUs)")
	cmd.Flags().BoolVar(&evalSave, "save", false, "store the results in the evaluation database")
	cmd.Flags().BoolVar(&evalVerbose, "verbose", false, "debug logging")
	return cmd
}

func runCompareCmd(cmd *cobra.Command, args []string) error {
	if err := applyEvaluateConfig(cmd); err != nil {
		return err
	}
	results, corpusName, err := evaluateLayouts(cmd.Context(), args)
	if err != nil {
		return err
	}
	if err := report.RenderComparison(cmd.OutOrStdout(), results); err != nil {
		return fmt.Errorf("failed to render comparison: %w", err)
	}
	if evalSave {
		return saveResults(cmd.Context(), results, corpusName)
	}
	return nil
}

func newRankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "List stored evaluations ordered by total cost",
		Args:  cobra.NoArgs,
		RunE:  runRankCmd,
	}
	cmd.Flags().StringVar(&rankLayout, "layout", "", "filter by layout name")
	cmd.Flags().StringVar(&rankCorpus, "corpus", "", "filter by corpus label")
	cmd.Flags().IntVar(&rankLimit, "limit", 0, "limit to best N evaluations")
	cmd.Flags().BoolVar(&rankTUI, "tui", false, "browse interactively")
	return cmd
}

func runRankCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("failed to close db")
		}
	}()

	filter := store.ListFilter{Layout: rankLayout, Corpus: rankCorpus, Limit: rankLimit}
	if rankTUI {
		model := resultsui.NewModel(st, filter)
		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run rank TUI: %w", err)
		}
		return nil
	}

	evaluations, err := st.ListEvaluations(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list evaluations: %w", err)
	}
	if len(evaluations) == 0 {
		return fmt.Errorf("no stored evaluations (run with --save first)")
	}
	for i, ev := range evaluations {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%3d  %-24s  %-18s  %12.4f  %s\n",
			i+1, ev.Layout, ev.Corpus, ev.Total, ev.CreatedAt.Format("2006-01-02 15:04:05")); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newCorpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Inspect an ngram corpus or build one from a text file",
		Args:  cobra.NoArgs,
		RunE:  runCorpusCmd,
	}
	cmd.Flags().StringVar(&corpusText, "text", "", "input text file to count ngrams from")
	cmd.Flags().StringVar(&evalNgrams, "ngrams", "", "existing ngram directory to inspect")
	cmd.Flags().StringVar(&corpusOut, "out", "", "write the counted ngrams to this directory")
	cmd.Flags().IntVar(&corpusTop, "top", 10, "show the N most frequent ngrams per class")
	return cmd
}

func runCorpusCmd(cmd *cobra.Command, _ []string) error {
	var c *corpus.Corpus
	switch {
	case corpusText != "":
		data, err := os.ReadFile(corpusText)
		if err != nil {
			return fmt.Errorf("failed to read text file: %w", err)
		}
		c = corpus.FromText(string(data))
	case evalNgrams != "":
		loaded, err := corpus.Load(evalNgrams)
		if err != nil {
			return fmt.Errorf("failed to load ngrams: %w", err)
		}
		c = loaded
	default:
		return fmt.Errorf("either --text or --ngrams is required")
	}

	if corpusOut != "" {
		if err := c.Save(corpusOut); err != nil {
			return fmt.Errorf("failed to save ngram files: %w", err)
		}
		log.Info().
			Str("dir", corpusOut).
			Int("unigrams", len(c.Unigrams)).
			Int("bigrams", len(c.Bigrams)).
			Int("trigrams", len(c.Trigrams)).
			Msg("wrote ngram files")
	}
	return renderCorpusStats(cmd.OutOrStdout(), c, corpusTop)
}

// renderCorpusStats prints the heaviest ngrams per class; the corpus slices
// are already ordered by descending weight.
func renderCorpusStats(w io.Writer, c *corpus.Corpus, top int) error {
	type row struct {
		gram string
		rel  float64
	}
	sections := []struct {
		title string
		rows  []row
	}{
		{"unigrams", nil},
		{"bigrams", nil},
		{"trigrams", nil},
	}
	for i, g := range c.Unigrams {
		if i >= top {
			break
		}
		sections[0].rows = append(sections[0].rows, row{string(g.Sym), g.Rel})
	}
	for i, g := range c.Bigrams {
		if i >= top {
			break
		}
		sections[1].rows = append(sections[1].rows, row{string([]rune{g.A, g.B}), g.Rel})
	}
	for i, g := range c.Trigrams {
		if i >= top {
			break
		}
		sections[2].rows = append(sections[2].rows, row{string([]rune{g.A, g.B, g.C}), g.Rel})
	}

	for _, s := range sections {
		if _, err := fmt.Fprintf(w, "top %s:\n", s.title); err != nil {
			return err
		}
		for _, r := range s.rows {
			if _, err := fmt.Fprintf(w, "  %-8q %7.4f%%\n", r.gram, r.rel*100); err != nil {
				return err
			}
		}
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
	return runEditor(parts, path)
}

func runEditor(parts []string, path string) error {
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyEvaluateConfig(cmd *cobra.Command) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "ngrams", &evalNgrams, fileCfg.Evaluate.Ngrams)
	applyStringConfig(cmd, "params", &evalParams, fileCfg.Evaluate.Params)
	applyStringConfig(cmd, "corpus", &evalCorpus, fileCfg.Evaluate.Corpus)
	applyIntConfig(cmd, "workers", &evalWorkers, fileCfg.Evaluate.Workers)
	applyBoolConfig(cmd, "save", &evalSave, fileCfg.Evaluate.Save)
	applyBoolConfig(cmd, "verbose", &evalVerbose, fileCfg.Evaluate.Verbose)

	if evalWorkers < 0 {
		return fmt.Errorf("--workers must not be negative")
	}
	if evalWorkers > 0 {
		runtime.GOMAXPROCS(evalWorkers)
	}
	if evalVerbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	return nil
}

// evaluateLayouts loads the shared inputs once, then evaluates each layout.
// The returned corpus name labels stored results.
func evaluateLayouts(ctx context.Context, layoutPaths []string) ([]*evaluator.Result, string, error) {
	if evalNgrams == "" {
		evalNgrams = config.DefaultNgramsDir()
	}
	paramsCfg, err := loadParams()
	if err != nil {
		return nil, "", err
	}

	c, err := corpus.Load(evalNgrams)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load ngrams: %w", err)
	}
	corpusName := evalCorpus
	if corpusName == "" {
		corpusName = filepath.Base(filepath.Clean(evalNgrams))
	}

	m := mapper.New(paramsCfg.NgramMapper)
	results := make([]*evaluator.Result, 0, len(layoutPaths))
	for _, path := range layoutPaths {
		layout, err := keyboard.LoadFile(resolveLayoutPath(path))
		if err != nil {
			return nil, "", fmt.Errorf("failed to load layout %s: %w", path, err)
		}
		registry, err := metrics.Build(paramsCfg, layout.Columns())
		if err != nil {
			return nil, "", fmt.Errorf("failed to build metrics: %w", err)
		}
		ev := evaluator.New(registry, m, c)
		res, err := ev.Evaluate(ctx, layout)
		if err != nil {
			return nil, "", fmt.Errorf("failed to evaluate %s: %w", layout.Name(), err)
		}
		results = append(results, res)
	}
	return results, corpusName, nil
}

// resolveLayoutPath lets a bare layout name refer to a file in the default
// layout directory. Paths that exist as given are used unchanged.
func resolveLayoutPath(path string) string {
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if strings.ContainsRune(path, os.PathSeparator) {
		return path
	}
	name := path
	if filepath.Ext(name) == "" {
		name += ".yml"
	}
	fallback := filepath.Join(config.DefaultLayoutDir(), name)
	if _, err := os.Stat(fallback); err == nil {
		return fallback
	}
	return path
}

func loadParams() (*metrics.FileConfig, error) {
	if evalParams == "" {
		if _, err := os.Stat(config.DefaultParamsPath()); err == nil {
			evalParams = config.DefaultParamsPath()
		}
	}
	if evalParams == "" {
		return metrics.DefaultConfig(), nil
	}
	cfg, err := metrics.LoadConfig(evalParams)
	if err != nil {
		return nil, fmt.Errorf("failed to load params: %w", err)
	}
	return cfg, nil
}

func saveResults(ctx context.Context, results []*evaluator.Result, corpusName string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("failed to close db")
		}
	}()

	for _, res := range results {
		rows := make([]store.MetricRow, 0, len(res.Metrics))
		for _, mr := range res.Metrics {
			rows = append(rows, store.MetricRow{
				Metric:     mr.Name,
				Class:      mr.Class.String(),
				Raw:        mr.Raw,
				Normalized: mr.Normalized,
				Weighted:   mr.Weighted,
			})
		}
		ev := store.Evaluation{
			CreatedAt: time.Now(),
			Layout:    res.Layout,
			Corpus:    corpusName,
			Total:     res.Total,
		}
		id, err := st.InsertEvaluation(ctx, ev, rows)
		if err != nil {
			return fmt.Errorf("failed to store evaluation: %w", err)
		}
		log.Info().Int64("id", id).Str("layout", res.Layout).Msg("stored evaluation")
	}
	return nil
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

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
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

func defaultConfigTemplate() string {
	return `# layscore configuration
# Uncomment a value to enable it. CLI flags override config values.

[evaluate]
# ngrams = ""        # Directory with 1-grams.txt, 2-grams.txt, 3-grams.txt
# params = ""        # Evaluation parameters file
# corpus = ""        # Corpus label for stored results
# workers = 0        # Metric worker count, 0 = all CPUs
# save = false       # Store results in the evaluation database
# verbose = false    # Per-metric details and debug logging
`
}
