package schemas

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportSchema_IsValidJSON(t *testing.T) {
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(ReportSchema()), &v))
	assert.Equal(t, "InterviewReport", v["title"])
}

func TestValidateReport(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{
			name:  "well formed",
			input: `{"overallFeedback":"Good","strengths":["A","B","C"],"weaknesses":["X","Y","Z"],"chartData":{"labels":["Technical","Experience","Personality"],"values":[1,1,1]}}`,
			valid: true,
		},
		{
			name:  "empty lists",
			input: `{"overallFeedback":"","strengths":[],"weaknesses":[],"chartData":{"labels":[],"values":[]}}`,
			valid: true,
		},
		{
			name:  "missing chart data",
			input: `{"overallFeedback":"Good","strengths":[],"weaknesses":[]}`,
		},
		{
			name:  "negative count",
			input: `{"overallFeedback":"Good","strengths":[],"weaknesses":[],"chartData":{"labels":["Technical"],"values":[-1]}}`,
		},
		{
			name:  "string counts",
			input: `{"overallFeedback":"Good","strengths":[],"weaknesses":[],"chartData":{"labels":["Technical"],"values":["two"]}}`,
		},
		{
			name:  "strengths not a list",
			input: `{"overallFeedback":"Good","strengths":"many","weaknesses":[],"chartData":{"labels":[],"values":[]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReport(tt.input)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.NotEmpty(t, vErr.Errors)
		})
	}
}

func TestValidateReport_NotJSON(t *testing.T) {
	err := ValidateReport("not json at all")
	require.Error(t, err)
	var vErr *ValidationError
	assert.False(t, errors.As(err, &vErr))
}

func TestValidateTranscript(t *testing.T) {
	assert.NoError(t, ValidateTranscript(`[]`))
	assert.NoError(t, ValidateTranscript(`[{"role":"User","content":"Hi"},{"role":"assistant","content":"Hello"}]`))
	assert.Error(t, ValidateTranscript(`[{"role":"narrator","content":"Hi"}]`))
	assert.Error(t, ValidateTranscript(`[{"role":"user"}]`))
	assert.Error(t, ValidateTranscript(`{"role":"user","content":"Hi"}`))
}

func TestValidateTranscript_FieldPaths(t *testing.T) {
	err := ValidateTranscript(`[{"role":"user","content":"Hi"},{"role":"narrator","content":"Hello"}]`)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "transcript", vErr.Document)
	require.NotEmpty(t, vErr.Errors)
	assert.Equal(t, "1.role", vErr.Errors[0].Field)
}

func TestValidateReport_NestedFieldPath(t *testing.T) {
	err := ValidateReport(`{"overallFeedback":"Good","strengths":[],"weaknesses":[],"chartData":{"labels":[]}}`)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "report", vErr.Document)
	assert.Equal(t, "chartData", vErr.Errors[0].Field)
	assert.Contains(t, vErr.Errors[0].Message, "values")
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Document: "report",
		Errors: []FieldError{
			{Field: "strengths", Message: "Invalid type. Expected: array, given: string"},
			{Field: "chartData.values.0", Message: "Must be greater than or equal to 0"},
		},
	}

	assert.Equal(t,
		"invalid report: strengths: Invalid type. Expected: array, given: string; chartData.values.0: Must be greater than or equal to 0",
		err.Error())
}
