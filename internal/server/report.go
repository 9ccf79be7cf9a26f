package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/schemas"
	"github.com/jonathan/interview-coach/internal/types"
)

// ReportFilename is the attachment name of downloaded reports.
const ReportFilename = "interview-report.pdf"

// handleReport turns a transcript into an InterviewReport. Model failures come
// back as a normal report with apologetic feedback, so the only errors here
// are a malformed body or a cancelled request.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !json.Valid(body) {
		s.writeError(w, r, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}
	if err := schemas.ValidateTranscript(string(body)); err != nil {
		s.writeError(w, r, err)
		return
	}
	var transcript types.Transcript
	if err := json.Unmarshal(body, &transcript); err != nil {
		s.writeError(w, r, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}

	report, err := s.reports.Generate(r.Context(), transcript)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// handleDownloadReport renders a report and its transcript as a PDF attachment.
func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	var req types.PDFRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, requestError(err))
		return
	}

	req.Report.Normalize()
	raw, err := json.Marshal(req.Report)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("encode report: %w", err))
		return
	}
	if err := schemas.ValidateReport(string(raw)); err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, req.Report, types.Transcript(req.ChatHistory)); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ReportFilename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.requestLogger(r).Debug("failed to write PDF", zap.Error(err))
	}
}
