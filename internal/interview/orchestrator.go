// Package interview drives the mock-interview conversation: document ingestion,
// per-turn context construction and streamed agent replies.
package interview

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/db"
	"github.com/jonathan/interview-coach/internal/ingestion"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/logger"
	"github.com/jonathan/interview-coach/internal/prompts"
	"github.com/jonathan/interview-coach/internal/throttle"
	"github.com/jonathan/interview-coach/internal/tools"
	"github.com/jonathan/interview-coach/internal/types"
	"github.com/jonathan/interview-coach/internal/validation"
)

// ErrNoDocuments is returned when a session has no complete resume and job description.
var ErrNoDocuments = errors.New("no session documents")

// DocumentNormalizer turns a document URL into normalized text.
type DocumentNormalizer interface {
	NormalizeURL(ctx context.Context, rawURL string) (*ingestion.Document, error)
}

// Orchestrator runs interview turns against the chat model. Every turn passes
// through the shared admission gate before the model is called.
type Orchestrator struct {
	client     llm.Client
	gate       *throttle.Gate
	store      db.SessionStore
	normalizer DocumentNormalizer
	tools      tools.Toolset
	tier       llm.ModelTier
	maxRounds  int
	logger     *zap.Logger

	instructions *prompts.Template
	startTrigger string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTools exposes a toolset the agent may call without confirmation.
func WithTools(ts tools.Toolset) Option {
	return func(o *Orchestrator) { o.tools = ts }
}

// WithNormalizer sets the document normalizer used by IngestAndStart.
func WithNormalizer(n DocumentNormalizer) Option {
	return func(o *Orchestrator) { o.normalizer = n }
}

// WithTier selects the model tier for conversation turns.
func WithTier(tier llm.ModelTier) Option {
	return func(o *Orchestrator) { o.tier = tier }
}

// WithMaxToolRounds bounds automatic tool rounds per turn.
func WithMaxToolRounds(n int) Option {
	return func(o *Orchestrator) { o.maxRounds = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an Orchestrator. The gate is shared by every caller of the
// returned value and should be constructed once per process.
func New(client llm.Client, gate *throttle.Gate, store db.SessionStore, opts ...Option) (*Orchestrator, error) {
	if client == nil {
		return nil, errors.New("interview: llm client is required")
	}
	if gate == nil {
		return nil, errors.New("interview: admission gate is required")
	}
	if store == nil {
		return nil, errors.New("interview: session store is required")
	}

	instructions, err := prompts.Load(prompts.InterviewFile, prompts.KeyAgentInstructions)
	if err != nil {
		return nil, fmt.Errorf("interview: %w", err)
	}
	if err := instructions.Require("Resume", "JobDescription"); err != nil {
		return nil, fmt.Errorf("interview: %w", err)
	}
	trigger, err := prompts.Load(prompts.InterviewFile, prompts.KeyStartTrigger)
	if err != nil {
		return nil, fmt.Errorf("interview: %w", err)
	}

	o := &Orchestrator{
		client:       client,
		gate:         gate,
		store:        store,
		tier:         llm.TierStandard,
		instructions: instructions,
		startTrigger: trigger.Text(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logger.OrNop(o.logger)
	return o, nil
}

// Turn is the model input for one conversational turn.
type Turn struct {
	History types.Transcript
	Input   string
	// Start is true when Input is the synthesized session-start trigger.
	Start bool
}

// BuildTurn splits transcript into history and new input. When the last
// message is not from the user the start trigger becomes the input.
func (o *Orchestrator) BuildTurn(transcript types.Transcript) Turn {
	history, latest, ok := transcript.Split()
	if !ok {
		return Turn{History: history, Input: o.startTrigger, Start: true}
	}
	return Turn{History: history, Input: latest}
}

func (o *Orchestrator) systemPrompt(docs *types.SessionDocuments) string {
	return o.instructions.Render(map[string]string{
		"Resume":         validation.QuoteExternalContentWithLabel(docs.ResumeText, "resume"),
		"JobDescription": validation.QuoteExternalContentWithLabel(docs.JobDescriptionText, "job description"),
	})
}

// InvokeTurn streams the agent's reply to transcript. The sequence is lazy and
// single-pass: nothing happens until it is ranged over, and a second range
// yields llm.ErrStreamConsumed. Chunks arrive in network order. Errors from
// the model end the sequence after any chunks already yielded.
func (o *Orchestrator) InvokeTurn(ctx context.Context, docs *types.SessionDocuments, transcript types.Transcript) iter.Seq2[string, error] {
	turn := o.BuildTurn(transcript)
	return llm.SingleUse(func(yield func(string, error) bool) {
		if !docs.Complete() {
			yield("", ErrNoDocuments)
			return
		}

		log := o.logger.With(zap.String(logger.FieldSessionID, docs.SessionID))
		waitStart := time.Now()
		if err := o.gate.Acquire(ctx); err != nil {
			yield("", err)
			return
		}
		log.Debug("admitted interview turn",
			zap.Duration("waited", time.Since(waitStart)),
			zap.Int("history", len(turn.History)),
			zap.Bool("start", turn.Start),
		)

		req := llm.ChatRequest{
			System:        o.systemPrompt(docs),
			History:       turn.History,
			Input:         turn.Input,
			Opening:       o.startTrigger,
			Tools:         o.tools,
			Tier:          o.tier,
			MaxToolRounds: o.maxRounds,
		}

		chunks := 0
		for chunk, err := range o.client.StreamChat(ctx, req) {
			if err != nil {
				log.Warn("interview turn failed", zap.Int("chunks", chunks), zap.Error(err))
				yield("", err)
				return
			}
			chunks++
			if !yield(chunk, nil) {
				log.Debug("interview turn abandoned by caller", zap.Int("chunks", chunks))
				return
			}
		}
		log.Info("interview turn complete", zap.Int("chunks", chunks))
	})
}

// Continue loads the session's documents and streams the next turn. Empty
// resumeKey or jobKey select the session's own document keys. When documents
// are missing the sequence yields ErrNoDocuments before anything else.
func (o *Orchestrator) Continue(ctx context.Context, sessionID, resumeKey, jobKey string, transcript types.Transcript) iter.Seq2[string, error] {
	return llm.SingleUse(func(yield func(string, error) bool) {
		docs, err := o.LoadDocuments(ctx, sessionID, resumeKey, jobKey)
		if err != nil {
			yield("", err)
			return
		}
		for chunk, err := range o.InvokeTurn(ctx, docs, transcript) {
			if !yield(chunk, err) || err != nil {
				return
			}
		}
	})
}

// LoadDocuments reads a session's documents, returning ErrNoDocuments when
// either is absent.
func (o *Orchestrator) LoadDocuments(ctx context.Context, sessionID, resumeKey, jobKey string) (*types.SessionDocuments, error) {
	if resumeKey == "" {
		resumeKey = db.ResumeKey(sessionID)
	}
	if jobKey == "" {
		jobKey = db.JobKey(sessionID)
	}
	docs, err := db.LoadDocumentsByKey(ctx, o.store, sessionID, resumeKey, jobKey)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if docs == nil {
		return nil, ErrNoDocuments
	}
	return docs, nil
}

// Ingest normalizes the resume and then the job posting and saves both as one
// unit. Nothing is written unless both documents normalize successfully.
func (o *Orchestrator) Ingest(ctx context.Context, sessionID, resumeURL, jobURL string) (*types.SessionDocuments, error) {
	if sessionID == "" {
		return nil, &validation.InputError{Field: "sessionId", Reason: "session id is required"}
	}
	if err := validation.ValidateURL(resumeURL); err != nil {
		return nil, fieldError("resumeUrl", err)
	}
	if err := validation.ValidateURL(jobURL); err != nil {
		return nil, fieldError("jobDescriptionUrl", err)
	}
	if o.normalizer == nil {
		return nil, errors.New("interview: no document normalizer configured")
	}

	log := o.logger.With(zap.String(logger.FieldSessionID, sessionID))

	resume, err := o.normalizer.NormalizeURL(ctx, resumeURL)
	if err != nil {
		return nil, fmt.Errorf("normalize resume: %w", err)
	}
	job, err := o.normalizer.NormalizeURL(ctx, jobURL)
	if err != nil {
		return nil, fmt.Errorf("normalize job description: %w", err)
	}

	docs := &types.SessionDocuments{
		SessionID:          sessionID,
		ResumeText:         resume.Text,
		JobDescriptionText: job.Text,
	}
	if err := db.SaveDocuments(ctx, o.store, docs); err != nil {
		return nil, fmt.Errorf("save session documents: %w", err)
	}

	log.Info("session documents ingested",
		zap.Int("resume_chars", len(docs.ResumeText)),
		zap.Int("job_chars", len(docs.JobDescriptionText)),
		zap.String("resume_source", documentSource(resume)),
		zap.String("job_source", documentSource(job)),
	)
	return docs, nil
}

// IngestAndStart ingests both documents and streams the opening interview
// turn. Ingestion failures are yielded before any model call is made.
func (o *Orchestrator) IngestAndStart(ctx context.Context, sessionID, resumeURL, jobURL string) iter.Seq2[string, error] {
	return llm.SingleUse(func(yield func(string, error) bool) {
		docs, err := o.Ingest(ctx, sessionID, resumeURL, jobURL)
		if err != nil {
			yield("", err)
			return
		}
		for chunk, err := range o.InvokeTurn(ctx, docs, nil) {
			if !yield(chunk, err) || err != nil {
				return
			}
		}
	})
}

func documentSource(doc *ingestion.Document) string {
	if doc.Metadata == nil {
		return ""
	}
	return string(doc.Metadata.Source)
}

func fieldError(field string, err error) error {
	var inputErr *validation.InputError
	if errors.As(err, &inputErr) {
		return &validation.InputError{Field: field, Reason: inputErr.Reason}
	}
	return err
}
