package types

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CompleteRequest is the body of POST /chat/complete.
type CompleteRequest struct {
	SessionID        string        `json:"sessionId,omitempty"`
	ResumeID         string        `json:"resumeId,omitempty"`
	JobDescriptionID string        `json:"jobDescriptionId,omitempty"`
	Messages         []ChatMessage `json:"messages" validate:"dive"`
}

// InterviewDataRequest is the body of POST /chat/interview-data.
type InterviewDataRequest struct {
	SessionID         string `json:"sessionId,omitempty"`
	ResumeURL         string `json:"resumeUrl" validate:"required"`
	JobDescriptionURL string `json:"jobDescriptionUrl" validate:"required"`
}

// PDFRequest is the body of POST /pdf/download-report.
type PDFRequest struct {
	Report      *InterviewReport `json:"report" validate:"required"`
	ChatHistory []ChatMessage    `json:"chatHistory" validate:"dive"`
}

// StreamFrame is one element of a streamed chat response.
type StreamFrame struct {
	Message   string `json:"message,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Done      bool   `json:"done,omitempty"`
}

var validate = newValidator()

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate validates the CompleteRequest.
func (r *CompleteRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the InterviewDataRequest.
func (r *InterviewDataRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the PDFRequest.
func (r *PDFRequest) Validate() error {
	return validate.Struct(r)
}
