// Package report turns a finished interview transcript into a structured InterviewReport.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/logger"
	"github.com/jonathan/interview-coach/internal/prompts"
	"github.com/jonathan/interview-coach/internal/schemas"
	"github.com/jonathan/interview-coach/internal/types"
)

// Feedback messages carried by fallback reports. Each failure mode has its own text.
const (
	FeedbackEmptyResponse   = "No response received from the interview model. Please try generating the report again."
	FeedbackWrongFormat     = "The interview report came back in the wrong format. Please try generating it again."
	FeedbackUnexpectedError = "An unexpected error occurred while generating the interview report. Please try again later."
)

const logPreviewLen = 500

// Synthesizer generates end-of-session reports with a single non-streaming completion.
type Synthesizer struct {
	client   llm.Client
	tier     llm.ModelTier
	template *prompts.Template
	logger   *zap.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithTier selects the model tier used for the report call. Defaults to llm.TierAdvanced.
func WithTier(tier llm.ModelTier) Option {
	return func(s *Synthesizer) { s.tier = tier }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Synthesizer) { s.logger = l }
}

// NewSynthesizer creates a Synthesizer backed by client.
func NewSynthesizer(client llm.Client, opts ...Option) (*Synthesizer, error) {
	if client == nil {
		return nil, errors.New("report: llm client is required")
	}
	template, err := prompts.Load(prompts.InterviewFile, prompts.KeyReport)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	if err := template.Require("Transcript"); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	s := &Synthesizer{
		client:   client,
		tier:     llm.TierAdvanced,
		template: template,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logger.OrNop(s.logger)
	return s, nil
}

// Generate produces a report for transcript. It always returns a usable report
// unless ctx was cancelled or its deadline passed, in which case the context
// error is returned instead.
func (s *Synthesizer) Generate(ctx context.Context, transcript types.Transcript) (report *types.InterviewReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("report generation panicked", zap.Any("panic", r))
			report, err = types.NewFallbackReport(FeedbackUnexpectedError), nil
		}
	}()

	prompt := s.template.Render(map[string]string{
		"Transcript": transcript.Render(),
	})
	s.logger.Debug("requesting interview report",
		zap.Int("messages", len(transcript)),
		zap.String("model", s.client.GetModel(s.tier)),
		zap.String("prompt", logger.TruncateForLog(prompt, logPreviewLen)),
	)

	raw, err := s.client.GenerateJSON(ctx, prompt, s.tier)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if errors.Is(err, llm.ErrEmptyResponse) {
			s.logger.Warn("report model returned no content")
			return types.NewFallbackReport(FeedbackEmptyResponse), nil
		}
		s.logger.Error("report model call failed", zap.Error(err))
		return types.NewFallbackReport(FeedbackUnexpectedError), nil
	}

	if strings.TrimSpace(raw) == "" {
		s.logger.Warn("report model returned an empty response")
		return types.NewFallbackReport(FeedbackEmptyResponse), nil
	}

	parsed, err := ParseReport(raw)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			s.logger.Warn("report failed shape validation",
				zap.String("field", vErr.Field),
				zap.Error(err),
			)
		} else {
			s.logger.Warn("report response is not valid JSON",
				zap.Error(err),
				zap.String("response", logger.TruncateForLog(raw, logPreviewLen)),
			)
		}
		return types.NewFallbackReport(FeedbackWrongFormat), nil
	}

	s.logger.Info("interview report generated",
		zap.Int("strengths", len(parsed.Strengths)),
		zap.Int("weaknesses", len(parsed.Weaknesses)),
		zap.Int("questions", parsed.TotalQuestions()),
	)
	return parsed, nil
}

// ParseReport decodes a model response into a report. Code fences are
// stripped and field names match case-insensitively. A report whose chart
// labels and values differ in length, or that violates the report schema,
// is rejected with a *ValidationError.
func ParseReport(raw string) (*types.InterviewReport, error) {
	text := llm.CleanJSONObject(raw)
	if !strings.HasPrefix(text, "{") {
		return nil, &ParseError{Message: "response is not a JSON object"}
	}

	var report types.InterviewReport
	if err := json.Unmarshal([]byte(text), &report); err != nil {
		return nil, &ParseError{Message: "failed to parse JSON response", Cause: err}
	}
	report.Normalize()

	if !report.ChartConsistent() {
		return nil, &ValidationError{
			Field: "chartData",
			Message: fmt.Sprintf("%d labels but %d values",
				len(report.ChartData.Labels), len(report.ChartData.Values)),
		}
	}

	canonical, err := json.Marshal(&report)
	if err != nil {
		return nil, &ParseError{Message: "failed to re-encode report", Cause: err}
	}
	if err := schemas.ValidateReport(string(canonical)); err != nil {
		return nil, &ValidationError{Message: "report does not match schema", Cause: err}
	}

	return &report, nil
}
