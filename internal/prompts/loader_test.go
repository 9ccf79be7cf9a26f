package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpl, err := Load(InterviewFile, KeyAgentInstructions)
	require.NoError(t, err)
	assert.Equal(t, KeyAgentInstructions, tmpl.Name)
	assert.Contains(t, tmpl.Text(), "{{.Resume}}")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")

	_, err = Load(InterviewFile, "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustLoad(t *testing.T) {
	assert.Panics(t, func() { MustLoad("nonexistent.json", "some-key") })
	assert.NotPanics(t, func() { MustLoad(InterviewFile, KeyStartTrigger) })
}

func TestLoad_ReturnsSameTemplate(t *testing.T) {
	first := MustLoad(InterviewFile, KeyReport)
	second := MustLoad(InterviewFile, KeyReport)
	assert.Same(t, first, second)
}

func TestKeys(t *testing.T) {
	keys, err := Keys(InterviewFile)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyAgentInstructions, KeyReport, KeyStartTrigger}, keys)
}

func TestInterviewPrompts_Placeholders(t *testing.T) {
	assert.NoError(t, MustLoad(InterviewFile, KeyAgentInstructions).Require("Resume", "JobDescription"))
	assert.NoError(t, MustLoad(InterviewFile, KeyReport).Require("Transcript"))
	assert.NoError(t, MustLoad(InterviewFile, KeyStartTrigger).Require())

	report := MustLoad(InterviewFile, KeyReport).Text()
	assert.Contains(t, report, "Technical")
	assert.Contains(t, report, "Experience")
	assert.Contains(t, report, "Personality")
}

func TestTemplate_Placeholders(t *testing.T) {
	tmpl := parse("greeting", "Hello {{.Name}} from {{.Company}}, {{.Name}}! {{.bad-key}} {{ .Spaced }}")
	assert.Equal(t, []string{"Name", "Company"}, tmpl.Placeholders())
}

func TestTemplate_Require(t *testing.T) {
	tmpl := parse("greeting", "Hello {{.Name}} from {{.Company}}")

	assert.NoError(t, tmpl.Require("Company", "Name"))

	err := tmpl.Require("Name")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected placeholder {{.Company}}")

	err = tmpl.Require("Name", "Company", "Role")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no placeholder {{.Role}}")
}

func TestTemplate_Render(t *testing.T) {
	tests := []struct {
		name string
		text string
		data map[string]string
		want string
	}{
		{
			name: "all values",
			text: "Hello {{.Name}}, welcome to {{.Company}}!",
			data: map[string]string{"Name": "Alice", "Company": "Acme Corp"},
			want: "Hello Alice, welcome to Acme Corp!",
		},
		{
			name: "no placeholders",
			text: "No placeholders here",
			data: map[string]string{"Key": "Value"},
			want: "No placeholders here",
		},
		{
			name: "missing value kept",
			text: "Hello {{.Name}}",
			data: map[string]string{},
			want: "Hello {{.Name}}",
		},
		{
			name: "substituted values are not expanded",
			text: "A={{.A}} B={{.B}}",
			data: map[string]string{"A": "{{.B}}", "B": "b"},
			want: "A={{.B}} B=b",
		},
		{
			name: "dollar signs are literal",
			text: "Salary: {{.Pay}}",
			data: map[string]string{"Pay": "$1 ${2}"},
			want: "Salary: $1 ${2}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parse("t", tt.text).Render(tt.data))
		})
	}
}
