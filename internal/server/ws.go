package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/server/middleware"
	"github.com/jonathan/interview-coach/internal/types"
)

const wsReadLimit = maxBodyBytes

// handleWebSocket runs a chat session over one websocket. Every text message
// from the client is a CompleteRequest; the reply is a run of message frames
// closed by a done frame, or an error frame.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	log := s.requestLogger(r)
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(s.cfg.AllowedOrigins),
	})
	if err != nil {
		log.Warn("failed to accept websocket", zap.Error(err))
		return
	}
	defer conn.CloseNow() //nolint:errcheck
	conn.SetReadLimit(wsReadLimit)

	ctx := r.Context()
	headerSession, _ := middleware.GetSessionID(r)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				log.Debug("websocket closed by client")
			default:
				if ctx.Err() == nil {
					log.Warn("websocket read error", zap.Error(err))
				}
			}
			return
		}

		if !s.wsTurn(ctx, conn, log, headerSession, data) {
			return
		}
	}
}

// wsTurn answers one client message. It returns false once the connection is
// no longer writable.
func (s *Server) wsTurn(ctx context.Context, conn *websocket.Conn, log *zap.Logger, headerSession string, data []byte) bool {
	var req types.CompleteRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return s.wsError(ctx, conn, "", &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()})
	}
	if err := req.Validate(); err != nil {
		return s.wsError(ctx, conn, req.SessionID, requestError(err))
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = headerSession
	} else if !middleware.ValidSessionID(sessionID) {
		return s.wsError(ctx, conn, "", &ErrValidation{Field: "sessionId", Message: "malformed session id"})
	}
	transcript, err := screenTranscript(types.Transcript(req.Messages))
	if err != nil {
		return s.wsError(ctx, conn, sessionID, err)
	}

	chunks := 0
	for chunk, err := range s.interviewer.Continue(ctx, sessionID, req.ResumeID, req.JobDescriptionID, transcript) {
		if errors.Is(err, interview.ErrNoDocuments) {
			return s.wsWrite(ctx, conn, types.StreamFrame{Message: NoDataMessage, SessionID: sessionID, Done: true})
		}
		if err != nil {
			log.Error("websocket turn failed", zap.Int("chunks", chunks), zap.Error(err))
			return s.wsError(ctx, conn, sessionID, err)
		}
		if !s.wsWrite(ctx, conn, types.StreamFrame{Message: chunk, SessionID: sessionID}) {
			return false
		}
		chunks++
	}
	return s.wsWrite(ctx, conn, types.StreamFrame{SessionID: sessionID, Done: true})
}

func (s *Server) wsError(ctx context.Context, conn *websocket.Conn, sessionID string, err error) bool {
	return s.wsWrite(ctx, conn, types.StreamFrame{
		Error:     err.Error(),
		SessionID: sessionID,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) wsWrite(ctx context.Context, conn *websocket.Conn, frame types.StreamFrame) bool {
	if err := wsjson.Write(ctx, conn, frame); err != nil {
		s.logger.Debug("websocket write failed", zap.Error(err))
		return false
	}
	return true
}
