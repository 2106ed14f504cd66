package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Entry schemas for the JSON catalog files. Each record is validated on its
// own so a single malformed entry never rejects the whole file.
var entrySchemas = map[string]string{
	"objective": `{
		"type": "object",
		"required": ["id"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"title": {"type": "string"},
			"domain_id": {"type": "string"}
		}
	}`,
	"domain": `{
		"type": "object",
		"required": ["id"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"title": {"type": "string"}
		}
	}`,
	"question": `{
		"type": "object",
		"required": ["id", "type", "stem", "objective_ids", "difficulty"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"type": {"enum": ["single-choice", "multi-select", "match-pairs", "ordering"]},
			"stem": {"type": "string"},
			"choices": {"type": "array", "items": {"type": "string"}},
			"answer": {"type": "integer", "minimum": 0},
			"answers": {"type": "array", "items": {"type": "integer", "minimum": 0}},
			"pairs": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["left", "right"],
					"properties": {"left": {"type": "string"}, "right": {"type": "string"}}
				}
			},
			"steps": {"type": "array", "items": {"type": "string"}},
			"tags": {"type": "array", "items": {"type": "string"}},
			"objective_ids": {"type": "array", "items": {"type": "string"}},
			"misconception_tags": {"type": "array", "items": {"type": "string"}},
			"difficulty": {"type": "integer"},
			"origin_section": {"type": "string"},
			"bundle_id": {"type": "string"},
			"scenario": {"type": "boolean"}
		},
		"allOf": [
			{"if": {"properties": {"type": {"const": "single-choice"}}},
			 "then": {"required": ["choices", "answer"]}},
			{"if": {"properties": {"type": {"const": "multi-select"}}},
			 "then": {"required": ["choices", "answers"]}},
			{"if": {"properties": {"type": {"const": "match-pairs"}}},
			 "then": {"required": ["pairs"]}},
			{"if": {"properties": {"type": {"const": "ordering"}}},
			 "then": {"required": ["steps"]}}
		]
	}`,
	"section": `{
		"type": "object",
		"required": ["title", "objective_ids"],
		"properties": {
			"id": {"type": "string"},
			"title": {"type": "string", "minLength": 1},
			"link": {"type": "string"},
			"objective_ids": {"type": "array", "items": {"type": "string"}},
			"bundle_id": {"type": "string"},
			"tags": {"type": "array", "items": {"type": "string"}},
			"lesson_ids": {"type": "array", "items": {"type": "string"}}
		}
	}`,
	"lesson": `{
		"type": "object",
		"required": ["id", "link"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"title": {"type": "string"},
			"link": {"type": "string", "minLength": 1},
			"objective_ids": {"type": "array", "items": {"type": "string"}},
			"section_ids": {"type": "array", "items": {"type": "string"}}
		}
	}`,
}

// schemaCache caches compiled entry schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

func compiledSchema(name string) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}
	src, ok := entrySchemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown entry schema %q", name)
	}
	var doc any
	if err := json.Unmarshal([]byte(src), &doc); err != nil {
		return nil, fmt.Errorf("parse schema %q: %w", name, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://catalog/%s.json", name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", name, err)
	}
	schemaCache.Store(name, compiled)
	return compiled, nil
}

// validateEntry checks one raw record against the named schema.
func validateEntry(name string, raw json.RawMessage) error {
	schema, err := compiledSchema(name)
	if err != nil {
		return err
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		// The first line names the failing keyword; the rest is detail.
		msg, _, _ := strings.Cut(err.Error(), "\n")
		return fmt.Errorf("schema: %s", msg)
	}
	return nil
}
