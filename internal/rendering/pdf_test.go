package rendering

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-coach/internal/types"
)

func sampleReport() *types.InterviewReport {
	return &types.InterviewReport{
		OverallFeedback: "Clear answers with good depth on distributed systems.",
		Strengths:       []string{"Concrete examples", "Calm delivery", "Strong Go knowledge"},
		Weaknesses:      []string{"Long answers", "Few metrics", "Vague on testing"},
		ChartData: types.ChartData{
			Labels: types.ReportCategories,
			Values: []int{3, 2, 1},
		},
	}
}

func TestRenderReportPDF(t *testing.T) {
	var buf bytes.Buffer
	transcript := types.Transcript{
		{Role: types.RoleAssistant, Content: "Tell me about yourself."},
		{Role: types.RoleUser, Content: "I build backend services in Go — mostly APIs."},
	}

	err := RenderReportPDF(&buf, sampleReport(), transcript)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Contains(t, buf.String(), "%%EOF")
}

func TestRender_FallbackReport(t *testing.T) {
	var buf bytes.Buffer
	err := RenderReportPDF(&buf, types.NewFallbackReport("No response received."), nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRender_Deterministic(t *testing.T) {
	fixed := func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC) }
	r := NewRenderer(WithClock(fixed))

	var a, b bytes.Buffer
	require.NoError(t, r.Render(&a, sampleReport(), nil))
	require.NoError(t, r.Render(&b, sampleReport(), nil))
	assert.Equal(t, a.Len(), b.Len())
}

func TestRender_RejectsInconsistentChart(t *testing.T) {
	report := sampleReport()
	report.ChartData.Values = []int{1, 2}

	err := RenderReportPDF(&bytes.Buffer{}, report, nil)
	var inputErr *InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Contains(t, err.Error(), "3 labels but 2 values")
}

func TestRender_RejectsNegativeValue(t *testing.T) {
	report := sampleReport()
	report.ChartData.Values = []int{1, -2, 1}

	var inputErr *InputError
	assert.ErrorAs(t, RenderReportPDF(&bytes.Buffer{}, report, nil), &inputErr)
}

func TestRender_NilReport(t *testing.T) {
	var inputErr *InputError
	assert.ErrorAs(t, RenderReportPDF(&bytes.Buffer{}, nil, nil), &inputErr)
}

func TestRender_MissingFontFile(t *testing.T) {
	r := NewRenderer(WithUTF8Font("/nonexistent/font.ttf"))
	err := r.Render(&bytes.Buffer{}, sampleReport(), nil)
	var renderErr *RenderError
	assert.ErrorAs(t, err, &renderErr)
}

func TestToWinAnsi(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ascii", "Hello", "Hello"},
		{"empty", "", ""},
		{"latin accents", "café", "caf\xe9"},
		{"smart quotes", "“yes”", "\x93yes\x94"},
		{"em dash", "a—b", "a\x97b"},
		{"hangul", "안녕", "??"},
		{"tabs and carriage returns", "a\tb\r\n", "a    b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toWinAnsi(tt.input))
		})
	}
}

func TestRoleLabel(t *testing.T) {
	assert.Equal(t, "Interviewer", roleLabel(types.RoleAssistant))
	assert.Equal(t, "Candidate", roleLabel(types.RoleUser))
	assert.Equal(t, "custom", roleLabel(types.Role("custom")))
}
