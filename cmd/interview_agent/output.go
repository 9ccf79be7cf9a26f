package main

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/jonathan/interview-coach/internal/rendering"
	"github.com/jonathan/interview-coach/internal/schemas"
	"github.com/jonathan/interview-coach/internal/types"
)

// streamTo copies chunks to w as they arrive and returns the full text.
func streamTo(w io.Writer, seq iter.Seq2[string, error]) (string, error) {
	var full []byte
	for chunk, err := range seq {
		if err != nil {
			return string(full), err
		}
		if _, werr := io.WriteString(w, chunk); werr != nil {
			return string(full), werr
		}
		full = append(full, chunk...)
	}
	return string(full), nil
}

// readTranscript loads and validates a JSON array of chat messages.
func readTranscript(path string) (types.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript %s: %w", path, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("transcript %s is not valid JSON", path)
	}
	if err := schemas.ValidateTranscript(string(data)); err != nil {
		return nil, fmt.Errorf("transcript %s: %w", path, err)
	}
	var transcript types.Transcript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return nil, fmt.Errorf("failed to parse transcript %s: %w", path, err)
	}
	return transcript, nil
}

// writeReport prints the report as indented JSON.
func writeReport(w io.Writer, report *types.InterviewReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// writePDF renders report and transcript to path.
func writePDF(path string, r *rendering.Renderer, report *types.InterviewReport, transcript types.Transcript) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := r.Render(f, report, transcript); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
