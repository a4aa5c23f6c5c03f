// Package main provides the CLI entrypoint for swish.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/swish/internal/config"
	"github.com/verte-zerg/swish/internal/dtw"
	"github.com/verte-zerg/swish/internal/gesture"
	"github.com/verte-zerg/swish/internal/model"
	"github.com/verte-zerg/swish/internal/stats"
	"github.com/verte-zerg/swish/internal/statsui"
	"github.com/verte-zerg/swish/internal/store"
	"github.com/verte-zerg/swish/internal/tui"
)

const (
	defaultSampleRate    = 30
	defaultNullRejCoeff  = 3.0
	defaultWarpingRadius = 0.2
	defaultTrimThreshold = 0.1
	defaultTrimPercent   = 90.0
	defaultCurveWindow   = 20
	defaultGestureDims   = 2
)

var (
	captureDataset    string
	captureSampleRate int

	recogNullRejection  bool
	recogNullRejCoeff   float64
	recogConstrainPath  bool
	recogWarpingRadius  float64
	recogTrimTraining   bool
	recogTrimThreshold  float64
	recogTrimPercent    float64
	recogOffsetBySample bool

	trainDataset string

	classifyDataset string
	classifyMatrix  bool

	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsClasses     string
	statsPlain       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "swish",
		Short:         "TUI mouse gesture trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTrainerCmd,
	}

	addRecognitionFlags(rootCmd)
	rootCmd.Flags().StringVar(&captureDataset, "dataset", "", "training data file (default: XDG data dir)")
	rootCmd.Flags().IntVar(&captureSampleRate, "sample-rate", defaultSampleRate, "mouse samples per second")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newTrainCmd())
	rootCmd.AddCommand(newClassifyCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func addRecognitionFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&recogNullRejection, "null-rejection", true, "reject weak matches as the null class")
	cmd.Flags().Float64Var(&recogNullRejCoeff, "null-rejection-coeff", defaultNullRejCoeff, "rejection threshold coefficient")
	cmd.Flags().BoolVar(&recogConstrainPath, "constrain-warping-path", true, "constrain DTW alignment to a diagonal band")
	cmd.Flags().Float64Var(&recogWarpingRadius, "warping-radius", defaultWarpingRadius, "warping band radius (0-1)")
	cmd.Flags().BoolVar(&recogTrimTraining, "trim-training-data", true, "trim static segments from training gestures")
	cmd.Flags().Float64Var(&recogTrimThreshold, "trim-threshold", defaultTrimThreshold, "static-movement cutoff (0-1)")
	cmd.Flags().Float64Var(&recogTrimPercent, "trim-percent", defaultTrimPercent, "max percent of a gesture to trim (0-100)")
	cmd.Flags().BoolVar(&recogOffsetBySample, "offset-by-first-sample", true, "make gestures translation invariant")
}

func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "dataset", &captureDataset, fileCfg.Capture.Dataset)
	applyIntConfig(cmd, "sample-rate", &captureSampleRate, fileCfg.Capture.SampleRate)
	applyBoolConfig(cmd, "null-rejection", &recogNullRejection, fileCfg.Recognition.NullRejection)
	applyFloatConfig(cmd, "null-rejection-coeff", &recogNullRejCoeff, fileCfg.Recognition.NullRejectionCoeff)
	applyBoolConfig(cmd, "constrain-warping-path", &recogConstrainPath, fileCfg.Recognition.ConstrainWarpingPath)
	applyFloatConfig(cmd, "warping-radius", &recogWarpingRadius, fileCfg.Recognition.WarpingRadius)
	applyBoolConfig(cmd, "trim-training-data", &recogTrimTraining, fileCfg.Recognition.TrimTrainingData)
	applyFloatConfig(cmd, "trim-threshold", &recogTrimThreshold, fileCfg.Recognition.TrimThreshold)
	applyFloatConfig(cmd, "trim-percent", &recogTrimPercent, fileCfg.Recognition.TrimPercent)
	applyBoolConfig(cmd, "offset-by-first-sample", &recogOffsetBySample, fileCfg.Recognition.OffsetByFirstSample)

	datasetPath := captureDataset
	if datasetPath == "" {
		datasetPath = config.DefaultDatasetPath()
	}

	cfg := model.Config{
		DatasetPath:          datasetPath,
		SampleRate:           captureSampleRate,
		NullRejection:        recogNullRejection,
		NullRejectionCoeff:   recogNullRejCoeff,
		ConstrainWarpingPath: recogConstrainPath,
		WarpingRadius:        recogWarpingRadius,
		TrimTrainingData:     recogTrimTraining,
		TrimThreshold:        recogTrimThreshold,
		TrimPercent:          recogTrimPercent,
		OffsetByFirstSample:  recogOffsetBySample,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func classifierOptions(cfg model.Config) dtw.Options {
	return dtw.Options{
		NullRejection:        cfg.NullRejection,
		NullRejectionCoeff:   cfg.NullRejectionCoeff,
		ConstrainWarpingPath: cfg.ConstrainWarpingPath,
		WarpingRadius:        cfg.WarpingRadius,
		TrimTrainingData:     cfg.TrimTrainingData,
		TrimThreshold:        cfg.TrimThreshold,
		TrimPercent:          cfg.TrimPercent,
		OffsetByFirstSample:  cfg.OffsetByFirstSample,
	}
}

func runTrainerCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	dataset, err := loadOrCreateDataset(cfg.DatasetPath)
	if err != nil {
		return err
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

	classifier := dtw.New(classifierOptions(cfg))
	m := tui.NewModel(cfg, st, classifier, dataset)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// loadOrCreateDataset loads the training data if the file exists and
// starts with an empty dataset otherwise.
func loadOrCreateDataset(path string) (*gesture.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return gesture.NewDataset(defaultGestureDims), nil
		}
		return nil, fmt.Errorf("failed to stat training data: %w", err)
	}
	ds, err := gesture.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load training data: %w", err)
	}
	return ds, nil
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

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a model from saved training data",
		Args:  cobra.NoArgs,
		RunE:  runTrainCmd,
	}
	addRecognitionFlags(cmd)
	cmd.Flags().StringVar(&trainDataset, "dataset", "", "training data file (default: XDG data dir)")
	return cmd
}

func runTrainCmd(cmd *cobra.Command, _ []string) error {
	captureDataset = trainDataset
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ds, err := gesture.Load(cfg.DatasetPath)
	if err != nil {
		return fmt.Errorf("failed to load training data: %w", err)
	}

	classifier := dtw.New(classifierOptions(cfg))
	if err := classifier.Train(ds); err != nil {
		return fmt.Errorf("failed to train classifier: %w", err)
	}

	trained := classifier.Model()
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "Trained %d classes from %d examples (buffer %d samples)\n",
		len(trained.Templates), ds.NumExamples(), trained.BufferLen); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	for _, tpl := range trained.Templates {
		if _, err := fmt.Fprintf(out, "class %d: examples=%d template=%d samples threshold=%.4f (mu=%.4f sigma=%.4f)\n",
			tpl.Label, ds.CountForLabel(tpl.Label), len(tpl.Series), tpl.Threshold, tpl.Mu, tpl.Sigma); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <input-file>",
		Short: "Classify recorded gestures against saved training data",
		Args:  cobra.ExactArgs(1),
		RunE:  runClassifyCmd,
	}
	addRecognitionFlags(cmd)
	cmd.Flags().StringVar(&classifyDataset, "dataset", "", "training data file (default: XDG data dir)")
	cmd.Flags().BoolVar(&classifyMatrix, "matrix", false, "print the best-class cost matrix per gesture")
	return cmd
}

func runClassifyCmd(cmd *cobra.Command, args []string) error {
	captureDataset = classifyDataset
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	trainData, err := gesture.Load(cfg.DatasetPath)
	if err != nil {
		return fmt.Errorf("failed to load training data: %w", err)
	}
	input, err := gesture.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load input gestures: %w", err)
	}
	if input.NumDimensions() != trainData.NumDimensions() {
		return fmt.Errorf("input has %d dimensions, training data has %d",
			input.NumDimensions(), trainData.NumDimensions())
	}

	classifier := dtw.New(classifierOptions(cfg))
	if err := classifier.Train(trainData); err != nil {
		return fmt.Errorf("failed to train classifier: %w", err)
	}

	out := cmd.OutOrStdout()
	correct := 0
	for i, ex := range input.Examples() {
		pred, err := classifier.Predict(ex.Series)
		if err != nil {
			return fmt.Errorf("gesture %d: %w", i, err)
		}
		verdict := ""
		if pred.Label == ex.Label {
			correct++
			verdict = " ok"
		}
		if _, err := fmt.Fprintf(out, "gesture %d: label=%d predicted=%d likelihood=%.3f%s\n",
			i, ex.Label, pred.Label, pred.Likelihood, verdict); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if classifyMatrix {
			best := 0
			for j := range pred.Costs {
				if pred.Costs[j] < pred.Costs[best] {
					best = j
				}
			}
			matrices := classifier.DistanceMatrices()
			title := fmt.Sprintf("cost matrix vs class %d", pred.Labels[best])
			if err := stats.RenderHeatmap(out, title, matrices[best], 40, 10); err != nil {
				return fmt.Errorf("failed to render matrix: %w", err)
			}
		}
	}
	if input.NumExamples() > 0 {
		accuracy := float64(correct) / float64(input.NumExamples()) * 100
		if _, err := fmt.Fprintf(out, "accuracy: %d/%d (%.1f%%)\n", correct, input.NumExamples(), accuracy); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show recognition session stats",
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().StringVar(&statsClasses, "class", "", "class labels for per-class curves (comma-separated)")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print stats to stdout instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	cfg := model.StatsConfig{
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Labels:      statsClasses,
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

	if statsPlain {
		return printStats(cmd, st, cfg)
	}

	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

// printStats renders the full report to stdout for scripting and
// non-interactive terminals.
func printStats(cmd *cobra.Command, st *store.Store, cfg model.StatsConfig) error {
	ctx := context.Background()
	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Sessions); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	if err := stats.RenderCurves(out, report.Sessions, cfg.CurveWindow); err != nil {
		return fmt.Errorf("failed to render curves: %w", err)
	}
	if err := stats.RenderClassTable(out, report.ClassAggsAll); err != nil {
		return fmt.Errorf("failed to render class table: %w", err)
	}

	labels := parseStatsLabels(cfg.Labels)
	if len(labels) == 0 {
		labels = stats.TopClassesByPredictions(report.ClassAggsAll, 5)
	}
	if len(labels) == 0 || len(report.Sessions) == 0 {
		return nil
	}
	perSession, err := st.ListClassStatsForSessions(ctx, report.WindowSessionIDs, labels)
	if err != nil {
		return fmt.Errorf("failed to load class stats: %w", err)
	}
	windowSessions := report.Sessions
	if len(report.WindowSessionIDs) < len(report.Sessions) {
		windowSessions = report.Sessions[len(report.Sessions)-len(report.WindowSessionIDs):]
	}
	if err := stats.RenderClassCurves(out, windowSessions, perSession, labels, cfg.CurveWindow); err != nil {
		return fmt.Errorf("failed to render class curves: %w", err)
	}
	return nil
}

func parseStatsLabels(input string) []int {
	out := []int{}
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		label, err := strconv.Atoi(part)
		if err != nil || label < 1 {
			continue
		}
		out = append(out, label)
	}
	return out
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

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
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

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# swish configuration
# Uncomment a value to enable it. CLI flags override config values.

[capture]
# dataset = ""                     # Training data file (default: XDG data dir)
# sample-rate = %d                 # Mouse samples per second

[recognition]
# null-rejection = true            # Reject weak matches as the null class
# null-rejection-coeff = %.1f      # Rejection threshold coefficient
# constrain-warping-path = true    # Constrain DTW alignment to a diagonal band
# warping-radius = %.1f            # Warping band radius (0-1)
# trim-training-data = true        # Trim static segments from training gestures
# trim-threshold = %.1f            # Static-movement cutoff (0-1)
# trim-percent = %.0f              # Max percent of a gesture to trim (0-100)
# offset-by-first-sample = true    # Make gestures translation invariant
`,
		defaultSampleRate,
		defaultNullRejCoeff,
		defaultWarpingRadius,
		defaultTrimThreshold,
		defaultTrimPercent,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.SampleRate <= 0 {
		return fmt.Errorf("--sample-rate must be > 0")
	}
	if cfg.NullRejectionCoeff < 0 {
		return fmt.Errorf("--null-rejection-coeff must be >= 0")
	}
	if cfg.WarpingRadius <= 0 || cfg.WarpingRadius > 1 {
		return fmt.Errorf("--warping-radius must be between 0 and 1")
	}
	if cfg.TrimThreshold < 0 || cfg.TrimThreshold > 1 {
		return fmt.Errorf("--trim-threshold must be between 0 and 1")
	}
	if cfg.TrimPercent < 0 || cfg.TrimPercent > 100 {
		return fmt.Errorf("--trim-percent must be between 0 and 100")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
