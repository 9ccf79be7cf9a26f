package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-coach/internal/logger"
	"github.com/jonathan/interview-coach/internal/observability"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a feedback report from a saved transcript",
	Long:  "Read a JSON array of chat messages, print the interview report as JSON, and optionally write it as a PDF.",
	RunE:  runReport,
}

var (
	reportTranscript string
	reportPDF        string
	reportSummary    bool
)

func init() {
	reportCmd.Flags().StringVarP(&reportTranscript, "transcript", "t", "", "Path to transcript JSON (required)")
	reportCmd.Flags().StringVar(&reportPDF, "pdf", "", "Also write the report to this PDF file")
	reportCmd.Flags().BoolVar(&reportSummary, "summary", false, "Print a readable summary instead of JSON")

	_ = reportCmd.MarkFlagRequired("transcript")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	transcript, err := readTranscript(reportTranscript)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.NewWriter(os.Stderr, cfg.Log.JSON, cfg.Log.Debug)
	defer log.Sync() //nolint:errcheck

	ctx, stop := cliContext(cmd)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	report, err := a.synthesizer.Generate(ctx, transcript)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	if reportSummary {
		observability.NewPrinter(cmd.OutOrStdout()).PrintReport(report)
	} else if err := writeReport(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	if reportPDF != "" {
		if err := writePDF(reportPDF, a.renderer, report, transcript); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "PDF: %s\n", reportPDF)
	}
	return nil
}
