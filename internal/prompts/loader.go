// Package prompts holds the embedded prompt templates used to drive the model.
// Templates live in JSON files keyed by name; placeholders are written {{.Name}}.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// InterviewFile is the prompt file for interview turns and reports.
const InterviewFile = "interview.json"

// Keys in InterviewFile.
const (
	KeyAgentInstructions = "agent-instructions"
	KeyStartTrigger      = "start-trigger"
	KeyReport            = "report-prompt"
)

var placeholderPattern = regexp.MustCompile(`\{\{\.([A-Za-z][A-Za-z0-9_]*)\}\}`)

// Template is one named prompt with the placeholders it expects.
type Template struct {
	Name         string
	text         string
	placeholders []string
}

// Text returns the raw template text.
func (t *Template) Text() string {
	return t.text
}

// Placeholders returns the placeholder names in order of first appearance.
func (t *Template) Placeholders() []string {
	return slices.Clone(t.placeholders)
}

// Require fails unless every name is a placeholder of t and every placeholder
// of t is named. Callers check this once at construction so Render cannot
// silently leave a placeholder unfilled.
func (t *Template) Require(names ...string) error {
	for _, name := range names {
		if !slices.Contains(t.placeholders, name) {
			return fmt.Errorf("prompt %s has no placeholder {{.%s}}", t.Name, name)
		}
	}
	for _, p := range t.placeholders {
		if !slices.Contains(names, p) {
			return fmt.Errorf("prompt %s has unexpected placeholder {{.%s}}", t.Name, p)
		}
	}
	return nil
}

// Render substitutes data into the template in a single pass: placeholders
// that appear inside substituted values are left as-is. Placeholders without
// a value are kept verbatim.
func (t *Template) Render(data map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(t.text, func(match string) string {
		name := match[3 : len(match)-2]
		if v, ok := data[name]; ok {
			return v
		}
		return match
	})
}

var (
	files   = make(map[string]map[string]*Template)
	filesMu sync.Mutex
)

// Load returns the template stored under key in filename.
func Load(filename, key string) (*Template, error) {
	templates, err := loadFile(filename)
	if err != nil {
		return nil, err
	}
	t, ok := templates[key]
	if !ok {
		return nil, fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return t, nil
}

// MustLoad is Load for prompts required at initialization; it panics on error.
func MustLoad(filename, key string) *Template {
	t, err := Load(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return t
}

// Keys returns the sorted prompt keys in filename.
func Keys(filename string) ([]string, error) {
	templates, err := loadFile(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(templates))
	for key := range templates {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}

func loadFile(filename string) (map[string]*Template, error) {
	filesMu.Lock()
	defer filesMu.Unlock()

	if templates, ok := files[filename]; ok {
		return templates, nil
	}

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	templates := make(map[string]*Template, len(raw))
	for key, text := range raw {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("prompt %q in %s is empty", key, filename)
		}
		templates[key] = parse(key, text)
	}
	files[filename] = templates
	return templates, nil
}

func parse(name, text string) *Template {
	t := &Template{Name: name, text: text}
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		if !slices.Contains(t.placeholders, m[1]) {
			t.placeholders = append(t.placeholders, m[1])
		}
	}
	return t
}
