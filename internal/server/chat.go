package server

import (
	"context"
	"errors"
	"iter"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/server/middleware"
	"github.com/jonathan/interview-coach/internal/types"
	"github.com/jonathan/interview-coach/internal/validation"
)

// NoDataMessage is the single frame sent when a session has no documents.
const NoDataMessage = "no data"

// handleComplete streams the agent's next turn for an existing session.
func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req types.CompleteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, requestError(err))
		return
	}
	sessionID, err := requestSession(r, req.SessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	transcript, err := screenTranscript(types.Transcript(req.Messages))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.streamTurn(w, r, sessionID,
		s.interviewer.Continue(r.Context(), sessionID, req.ResumeID, req.JobDescriptionID, transcript))
}

// handleInterviewData ingests the resume and job posting and streams the
// opening question. A session id is generated when the caller has none.
func (s *Server) handleInterviewData(w http.ResponseWriter, r *http.Request) {
	var req types.InterviewDataRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, requestError(err))
		return
	}
	sessionID, err := requestSession(r, req.SessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if sessionID == "" {
		sessionID = types.NewSessionID()
	}

	s.streamTurn(w, r, sessionID,
		s.interviewer.IngestAndStart(r.Context(), sessionID, req.ResumeURL, req.JobDescriptionURL))
}

// requestSession prefers the body's session id over the X-Session-Id header.
func requestSession(r *http.Request, bodyID string) (string, error) {
	if bodyID != "" {
		if !middleware.ValidSessionID(bodyID) {
			return "", &ErrValidation{Field: "sessionId", Message: "malformed session id"}
		}
		return bodyID, nil
	}
	if id, err := middleware.GetSessionID(r); err == nil {
		return id, nil
	}
	return "", nil
}

// screenTranscript rejects a newest user message that fails validation.
// Earlier user turns were screened when they were sent, but the client
// replays them, so they are escaped and capped again.
func screenTranscript(transcript types.Transcript) (types.Transcript, error) {
	if _, latest, ok := transcript.Split(); ok {
		if err := validation.ValidateMessage(latest); err != nil {
			return nil, err
		}
	}
	screened := make(types.Transcript, len(transcript))
	for i, m := range transcript {
		if m.Role == types.RoleUser {
			m.Content = validation.SanitizeMessage(m.Content)
		}
		screened[i] = m
	}
	return screened, nil
}

// streamTurn pulls the first chunk before committing to a streamed response,
// so failures that happen before any output get a regular error status.
// Failures after that point end the stream with an error frame.
func (s *Server) streamTurn(w http.ResponseWriter, r *http.Request, sessionID string, seq iter.Seq2[string, error]) {
	log := s.requestLogger(r).With(zap.String("session", sessionID))

	next, stop := iter.Pull2(seq)
	defer stop()

	first, err, ok := next()
	if ok && err != nil && !errors.Is(err, interview.ErrNoDocuments) {
		s.writeError(w, r, err)
		return
	}

	fw, ferr := newFrameWriter(w, r)
	if ferr != nil {
		s.writeError(w, r, ferr)
		return
	}
	if sessionID != "" {
		w.Header().Set(middleware.SessionHeader, sessionID)
	}

	if ok && err != nil {
		log.Info("session has no documents")
		s.writeFrame(fw, log, types.StreamFrame{Message: NoDataMessage, SessionID: sessionID})
		return
	}

	chunks := 0
	for ok {
		if !s.writeFrame(fw, log, types.StreamFrame{Message: first, SessionID: sessionID}) {
			return
		}
		chunks++

		first, err, ok = next()
		if ok && err != nil {
			if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
				log.Debug("client went away mid-stream", zap.Int("chunks", chunks))
				return
			}
			log.Error("stream failed", zap.Int("chunks", chunks), zap.Error(err))
			s.writeFrame(fw, log, types.StreamFrame{
				Error:     err.Error(),
				SessionID: sessionID,
				Timestamp: s.now().UTC().Format(time.RFC3339),
			})
			return
		}
	}

	if err := fw.Done(); err != nil {
		log.Debug("failed to finish stream", zap.Error(err))
	}
}

func (s *Server) writeFrame(fw frameWriter, log *zap.Logger, frame types.StreamFrame) bool {
	if err := fw.WriteFrame(frame); err != nil {
		log.Debug("failed to write stream frame", zap.Error(err))
		return false
	}
	return true
}
