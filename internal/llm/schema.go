package llm

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/jonathan/interview-coach/internal/tools"
	"github.com/mitchellh/mapstructure"
)

// jsonSchema is the subset of JSON Schema Gemini function declarations understand.
type jsonSchema struct {
	Type        string                 `mapstructure:"type"`
	Format      string                 `mapstructure:"format"`
	Description string                 `mapstructure:"description"`
	Nullable    bool                   `mapstructure:"nullable"`
	Enum        []string               `mapstructure:"enum"`
	Items       *jsonSchema            `mapstructure:"items"`
	Properties  map[string]*jsonSchema `mapstructure:"properties"`
	Required    []string               `mapstructure:"required"`
}

var geminiTypes = map[string]genai.Type{
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
	"array":   genai.TypeArray,
	"object":  genai.TypeObject,
}

// flattenTypeUnion rewrites {"type": ["string","null"]} into a single type plus nullable.
func flattenTypeUnion(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(jsonSchema{}) {
		return data, nil
	}
	m, ok := data.(map[string]any)
	if !ok {
		return data, nil
	}
	union, ok := m["type"].([]any)
	if !ok {
		return data, nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	out["type"] = "string"
	for _, t := range union {
		s, _ := t.(string)
		if s == "null" {
			out["nullable"] = true
			continue
		}
		if s != "" {
			out["type"] = s
		}
	}
	return out, nil
}

func decodeSchema(params map[string]any) (*jsonSchema, error) {
	var s jsonSchema
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: flattenTypeUnion,
		Result:     &s,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(params); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *jsonSchema) toGemini() *genai.Schema {
	if s == nil {
		return nil
	}
	t, ok := geminiTypes[strings.ToLower(s.Type)]
	if !ok {
		t = genai.TypeString
	}
	out := &genai.Schema{
		Type:        t,
		Format:      s.Format,
		Description: s.Description,
		Nullable:    s.Nullable,
		Enum:        s.Enum,
		Items:       s.Items.toGemini(),
		Required:    s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = prop.toGemini()
		}
	}
	return out
}

// geminiFunctions converts tool definitions to Gemini function declarations.
func geminiFunctions(defs []tools.Definition) ([]*genai.FunctionDeclaration, error) {
	decls := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, def := range defs {
		decl := &genai.FunctionDeclaration{Name: def.Name, Description: def.Description}
		if len(def.Parameters) > 0 {
			schema, err := decodeSchema(def.Parameters)
			if err != nil {
				return nil, fmt.Errorf("tool %s: invalid parameter schema: %w", def.Name, err)
			}
			// Gemini rejects object schemas without properties
			if schema.Type != "object" || len(schema.Properties) > 0 {
				decl.Parameters = schema.toGemini()
			}
		}
		decls = append(decls, decl)
	}
	return decls, nil
}
