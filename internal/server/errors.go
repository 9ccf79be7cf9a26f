package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/fetch"
	"github.com/jonathan/interview-coach/internal/ingestion"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/rendering"
	"github.com/jonathan/interview-coach/internal/schemas"
	"github.com/jonathan/interview-coach/internal/tools"
	"github.com/jonathan/interview-coach/internal/validation"
)

// StatusClientClosedRequest is reported when the caller went away before the
// response was ready.
const StatusClientClosedRequest = 499

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Status    int    `json:"status"`
	Timestamp string `json:"timestamp"`
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		reqErr    *ErrValidation
		inputErr  *validation.InputError
		schemaErr *schemas.ValidationError
		renderErr *rendering.InputError
	)
	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.As(err, &reqErr), errors.As(err, &inputErr), errors.As(err, &schemaErr),
		errors.As(err, &renderErr), errors.Is(err, fetch.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, fetch.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, interview.ErrNoDocuments):
		return http.StatusNotFound
	case errors.Is(err, tools.ErrToolNotFound):
		return http.StatusInternalServerError
	case errors.Is(err, ingestion.ErrUnsupportedEncoding), errors.Is(err, ingestion.ErrConversion):
		return http.StatusUnprocessableEntity
	case errors.Is(err, fetch.ErrTransientNetwork):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// requestError converts validator output into an ErrValidation naming the
// first failing field.
func requestError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		return &ErrValidation{Field: field, Message: fmt.Sprintf("failed %q check", fe.Tag())}
	}
	return err
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(r *http.Request, v any) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, &ErrValidation{Field: "body", Message: fmt.Sprintf("exceeds %d bytes", maxBodyBytes)}
	}
	if len(body) == 0 {
		return nil, &ErrValidation{Field: "body", Message: "request body is required"}
	}
	return body, nil
}

// writeError is the single place where errors become HTTP responses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	log := s.requestLogger(r)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		log.Info("request rejected", zap.Int("status", status), zap.Error(err))
	}

	s.writeJSON(w, status, ErrorResponse{
		Error:     err.Error(),
		Status:    status,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("error encoding JSON response", zap.Error(err))
	}
}
