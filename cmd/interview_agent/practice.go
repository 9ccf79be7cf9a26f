package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/logger"
	"github.com/jonathan/interview-coach/internal/observability"
	"github.com/jonathan/interview-coach/internal/types"
	"github.com/jonathan/interview-coach/internal/validation"
)

// EndCommand finishes a practice session and produces the report.
const EndCommand = "/end"

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run an interactive mock interview in the terminal",
	Long: "Ingest the resume and job posting, then answer the interviewer's questions at the prompt. " +
		"Type " + EndCommand + " to finish and print the feedback report.",
	RunE: runPractice,
}

var (
	practiceResume  string
	practiceJob     string
	practiceSession string
	practicePDF     string
)

func init() {
	practiceCmd.Flags().StringVarP(&practiceResume, "resume", "r", "", "URL of the resume")
	practiceCmd.Flags().StringVarP(&practiceJob, "job", "J", "", "URL of the job posting")
	practiceCmd.Flags().StringVarP(&practiceSession, "session", "s", "", "Resume an already ingested session instead of fetching documents")
	practiceCmd.Flags().StringVar(&practicePDF, "pdf", "", "Also write the report to this PDF file")

	practiceCmd.MarkFlagsRequiredTogether("resume", "job")
	practiceCmd.MarkFlagsOneRequired("resume", "session")

	rootCmd.AddCommand(practiceCmd)
}

// turnSource is the part of the orchestrator a practice session drives.
type turnSource interface {
	Continue(ctx context.Context, sessionID, resumeKey, jobKey string, transcript types.Transcript) iter.Seq2[string, error]
}

func runPractice(cmd *cobra.Command, _ []string) error {
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

	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)

	sessionID := practiceSession
	if practiceResume != "" {
		if sessionID == "" {
			sessionID = types.NewSessionID()
		}
		docs, err := a.orchestrator.Ingest(ctx, sessionID, practiceResume, practiceJob)
		if err != nil {
			return fmt.Errorf("failed to ingest documents: %w", err)
		}
		printer.PrintDocuments(docs)
	}
	log.Info("practice session started", zap.String(logger.FieldSessionID, sessionID))

	opening := a.orchestrator.Continue(ctx, sessionID, "", "", nil)
	transcript, err := practiceLoop(ctx, out, a.orchestrator, sessionID, opening, promptAnswer)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "\nGenerating your report...")
	report, err := a.synthesizer.Generate(ctx, transcript)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	printer.PrintReport(report)
	if practicePDF != "" {
		if err := writePDF(practicePDF, a.renderer, report, transcript); err != nil {
			return err
		}
		fmt.Fprintf(out, "PDF: %s\n", practicePDF)
	}
	return nil
}

// practiceLoop alternates interviewer turns and candidate answers until the
// candidate types EndCommand or closes the prompt. It returns the transcript.
func practiceLoop(ctx context.Context, out io.Writer, turns turnSource, sessionID string,
	opening iter.Seq2[string, error], ask func() (string, error)) (types.Transcript, error) {
	var transcript types.Transcript

	reply, err := interviewerTurn(out, opening)
	if err != nil {
		return nil, fmt.Errorf("failed to start interview: %w", err)
	}
	transcript = append(transcript, types.ChatMessage{Role: types.RoleAssistant, Content: reply})

	for {
		answer, err := ask()
		if errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, io.EOF) {
			return transcript, nil
		}
		if err != nil {
			return nil, err
		}
		answer = strings.TrimSpace(answer)
		if answer == EndCommand {
			return transcript, nil
		}
		if answer == "" {
			continue
		}

		transcript = append(transcript, types.ChatMessage{Role: types.RoleUser, Content: answer})
		reply, err := interviewerTurn(out, turns.Continue(ctx, sessionID, "", "", transcript))
		if err != nil {
			return nil, err
		}
		transcript = append(transcript, types.ChatMessage{Role: types.RoleAssistant, Content: reply})
	}
}

func interviewerTurn(out io.Writer, seq iter.Seq2[string, error]) (string, error) {
	fmt.Fprint(out, "\nInterviewer: ")
	reply, err := streamTo(out, seq)
	fmt.Fprintln(out)
	return reply, err
}

// promptAnswer reads one answer, rejecting input the server would refuse.
func promptAnswer() (string, error) {
	prompt := promptui.Prompt{
		Label: "You (" + EndCommand + " to finish)",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == EndCommand {
				return nil
			}
			return validation.ValidateMessage(input)
		},
	}
	return prompt.Run()
}
