package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openclause/clauseguard/internal/audit"
	"github.com/openclause/clauseguard/internal/model"
	"github.com/openclause/clauseguard/internal/pipeline"
)

var (
	historyDB    string
	historyLimit int

	compareReport    string
	compareTruth     string
	compareThreshold float64
)

// auditCmd represents the audit command group
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect run history and compare reports against ground truth",
}

var auditHistoryCmd = &cobra.Command{
	Use:   "history [fingerprint]",
	Short: "Show past verification runs",
	Long: `History lists stored runs, newest first. With a document fingerprint
argument only runs for that document are shown.

Example:
  clauseguard audit history
  clauseguard audit history 9f8b2c... --limit 5`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuditHistory,
}

var auditCompareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare a report against ground-truth records",
	Long: `Compare matches a report's records against hand-labeled ground truth
and prints precision, recall and F1 per record kind.

Example:
  clauseguard audit compare --report report.json --truth truth.json
  clauseguard audit compare --report report.json --truth truth.json --threshold 0.7`,
	RunE: runAuditCompare,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditHistoryCmd)
	auditCmd.AddCommand(auditCompareCmd)

	auditHistoryCmd.Flags().StringVar(&historyDB, "db", defaultDataPath("history.db"), "sqlite history database path")
	auditHistoryCmd.Flags().IntVar(&historyLimit, "limit", 20, "max runs to show")

	auditCompareCmd.Flags().StringVar(&compareReport, "report", "", "report JSON produced by analyze or verify (required)")
	auditCompareCmd.Flags().StringVar(&compareTruth, "truth", "", "ground-truth records JSON (required)")
	auditCompareCmd.Flags().Float64Var(&compareThreshold, "threshold", audit.DefaultMatchThreshold, "min pair score to count as a match")
	_ = auditCompareCmd.MarkFlagRequired("report")
	_ = auditCompareCmd.MarkFlagRequired("truth")
}

func runAuditHistory(cmd *cobra.Command, args []string) error {
	fingerprint := ""
	if len(args) == 1 {
		fingerprint = args[0]
	}

	store, err := audit.OpenStore(historyDB)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer func() { _ = store.Close() }()

	runs, err := store.History(fingerprint, historyLimit)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	fmt.Printf("%-20s  %-12s  %6s  %6s  %6s  %7s  %10s  %s\n",
		"ANALYZED", "FINGERPRINT", "TOTAL", "EXACT", "FLAG", "MATCH%", "CONFIDENCE", "SOURCE")
	for _, run := range runs {
		fp := run.Fingerprint
		if len(fp) > 12 {
			fp = fp[:12]
		}
		fmt.Printf("%-20s  %-12s  %6d  %6d  %6d  %6.1f%%  %10.2f  %s\n",
			run.AnalyzedAt.Format("2006-01-02 15:04:05"), fp,
			run.Total, run.Exact, run.Flagged, run.MatchRate, run.AvgConfidence, run.Source)
	}
	return nil
}

func runAuditCompare(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(compareReport)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}
	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return fmt.Errorf("parse report: %w", err)
	}

	truth, warnings, err := pipeline.LoadRecordsFile(compareTruth)
	if err != nil {
		return fmt.Errorf("load truth records: %w", err)
	}
	for _, warning := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}

	comparison := audit.Compare(report.Records, truth, compareThreshold)

	printMetrics := func(name string, m audit.Metrics) {
		fmt.Printf("%s:\n", name)
		fmt.Printf("  true positives:  %d\n", m.TruePositives)
		fmt.Printf("  false positives: %d\n", m.FalsePositives)
		fmt.Printf("  false negatives: %d\n", m.FalseNegatives)
		fmt.Printf("  precision: %.3f  recall: %.3f  f1: %.3f\n", m.Precision, m.Recall, m.F1)
	}

	printMetrics("obligations", comparison.Obligations)
	printMetrics("risk flags", comparison.RiskFlags)
	fmt.Printf("overall f1: %.3f\n", comparison.OverallF1)

	exactCount := 0
	for _, match := range comparison.Matches {
		if match.MatchType == "exact" {
			exactCount++
		}
	}
	fmt.Printf("matched pairs: %d (%d exact)\n", len(comparison.Matches), exactCount)

	return nil
}
