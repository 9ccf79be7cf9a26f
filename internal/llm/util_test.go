package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleReport = `{"overallFeedback": "Good", "chartData": {"labels": ["Technical"], "values": [2]}}`

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain object", sampleReport, sampleReport},
		{"json fence", "```json\n" + sampleReport + "\n```", sampleReport},
		{"bare fence", "```\n" + sampleReport + "\n```", sampleReport},
		{"other language tag", "```javascript\n" + sampleReport + "\n```", sampleReport},
		{"single-line fence", "```" + sampleReport + "```", sampleReport},
		{"dangling closing fence", sampleReport + "\n```", sampleReport},
		{"unclosed opening fence", "```json\n" + sampleReport, sampleReport},
		{"preamble", "Here is the evaluation of the interview:\n\n" + sampleReport, sampleReport},
		{"trailing chatter", sampleReport + "\n\nLet me know if you need anything else!", sampleReport},
		{"array", "Categories:\n[\"Technical\", \"Experience\"]", `["Technical", "Experience"]`},
		{"braces inside strings", `Result: {"note": "uses {curly} and [square] text"}`, `{"note": "uses {curly} and [square] text"}`},
		{"escaped quotes", `Result: {"quote": "He said \"hi {\""}`, `{"quote": "He said \"hi {\""}`},
		{"skips undecodable braces", "Scores {see below}: " + sampleReport, sampleReport},
		{"no json", "I cannot evaluate this interview.", "I cannot evaluate this interview."},
		{"truncated object", `{"overallFeedback": "Go`, `{"overallFeedback": "Go`},
		{"whitespace only", "  \n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.input))
		})
	}
}

func TestCleanJSONObject_SkipsArrays(t *testing.T) {
	input := "Per the rubric [1], here you go: " + sampleReport
	assert.Equal(t, `[1]`, CleanJSONBlock(input))
	assert.Equal(t, sampleReport, CleanJSONObject(input))
	assert.Equal(t, `["a"]`, CleanJSONObject(`["a"]`))
}
