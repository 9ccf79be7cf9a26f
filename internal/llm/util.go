package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// fencePattern matches a whole response wrapped in a markdown code fence,
// with an optional language tag on the opening line.
var fencePattern = regexp.MustCompile("(?s)^```[A-Za-z0-9_+-]*[ \t]*\n?(.*?)\n?[ \t]*```$")

// CleanJSONBlock returns the first JSON object or array in a model response.
// Models wrap JSON in ```json fences or add chatter around it even when told
// not to. Text with no decodable JSON value is returned trimmed but otherwise
// unchanged.
func CleanJSONBlock(text string) string {
	return cleanJSON(text, "{[")
}

// CleanJSONObject is CleanJSONBlock restricted to objects, so a bracketed
// aside such as "[1]" in the preamble is skipped.
func CleanJSONObject(text string) string {
	return cleanJSON(text, "{")
}

func cleanJSON(text, openers string) string {
	text = stripCodeFence(strings.TrimSpace(text))
	if value, ok := firstJSONValue(text, openers); ok {
		return value
	}
	return text
}

func stripCodeFence(text string) string {
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(strings.TrimSuffix(text, "```"))
}

// firstJSONValue decodes, at each candidate opener in turn, one JSON value
// and returns its exact source text.
func firstJSONValue(text, openers string) (string, bool) {
	for offset := 0; offset < len(text); {
		i := strings.IndexAny(text[offset:], openers)
		if i < 0 {
			return "", false
		}
		start := offset + i
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(text[start:])).Decode(&raw); err == nil {
			return string(raw), true
		}
		offset = start + 1
	}
	return "", false
}
