package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/openclause/clauseguard/internal/logging"
	"github.com/openclause/clauseguard/internal/pipeline"
)

var recordsFile string

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <file-or-url>",
	Short: "Verify existing candidate records against a contract",
	Long: `Verify checks externally produced records against a document without
calling any LLM. The records file is JSON: either a bare array of records
or the extraction envelope with "obligations" and "risk_flags" arrays.

Example:
  clauseguard verify lease.txt --records extracted.json
  clauseguard verify lease.txt --records extracted.json --json report.json --t-high 0.95`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&recordsFile, "records", "", "JSON file of candidate records (required)")
	_ = verifyCmd.MarkFlagRequired("records")

	verifyCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (\"-\" for stdout)")
	verifyCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	verifyCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout")
	verifyCmd.Flags().StringVar(&auditDB, "audit-db", "", "sqlite path for run history (empty disables)")

	addThresholdFlags(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	records, warnings, err := pipeline.LoadRecordsFile(recordsFile)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	for _, warning := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}

	p, err := pipeline.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	doc, err := p.LoadDocument(ctx, source)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	report, err := p.VerifyRecords(ctx, doc, records)
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}

	if err := p.RenderReport(report, outJSON, outMD, true); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}
