package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/logger"
	"github.com/jonathan/interview-coach/internal/observability"
	"github.com/jonathan/interview-coach/internal/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a resume and job posting and print the opening question",
	Long: "Fetch and normalize the resume and job posting, store them under a session id, " +
		"and stream the interviewer's opening turn to stdout. Continue the session over the HTTP API.",
	RunE: runIngest,
}

var (
	ingestResume  string
	ingestJob     string
	ingestSession string
)

func init() {
	ingestCmd.Flags().StringVarP(&ingestResume, "resume", "r", "", "URL of the resume (required)")
	ingestCmd.Flags().StringVarP(&ingestJob, "job", "J", "", "URL of the job posting (required)")
	ingestCmd.Flags().StringVarP(&ingestSession, "session", "s", "", "Session id (generated when empty)")

	_ = ingestCmd.MarkFlagRequired("resume")
	_ = ingestCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
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

	sessionID := ingestSession
	if sessionID == "" {
		sessionID = types.NewSessionID()
	}
	log.Info("ingesting documents", zap.String(logger.FieldSessionID, sessionID))

	docs, err := a.orchestrator.Ingest(ctx, sessionID, ingestResume, ingestJob)
	if err != nil {
		return fmt.Errorf("failed to ingest documents: %w", err)
	}
	observability.NewPrinter(cmd.ErrOrStderr()).PrintDocuments(docs)

	out := cmd.OutOrStdout()
	if _, err := streamTo(out, a.orchestrator.Continue(ctx, sessionID, "", "", nil)); err != nil {
		return fmt.Errorf("failed to start interview: %w", err)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(cmd.ErrOrStderr(), "Session: %s\n", sessionID)
	return nil
}
