package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/qri-io/jsonschema"
)

// Output contracts for the collaborator stages. Validation happens
// before decoding so a malformed payload is reported as such instead of
// surfacing as a partial decode.

var classifySchema = mustSchema(`{
	"type": "object",
	"required": ["status"],
	"properties": {
		"status": {"type": "string"},
		"message": {"type": "string"},
		"commits": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["hash"],
				"properties": {
					"hash": {"type": "string"},
					"message": {"type": "string"},
					"classification": {"type": "string"},
					"author_name": {"type": "string"},
					"author_email": {"type": "string"},
					"authored_date": {"type": "string"},
					"committer_name": {"type": "string"},
					"committer_email": {"type": "string"},
					"committed_date": {"type": "string"},
					"parent_hashes": {"type": "array", "items": {"type": "string"}},
					"is_merged": {"type": "boolean"}
				}
			}
		},
		"corrective_commits": {"type": "array", "items": {"type": "string"}}
	}
}`)

var linkSchema = mustSchema(`{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["buggy_commit"],
		"properties": {
			"buggy_commit": {"type": "string"},
			"linked_to": {"type": "array", "items": {"type": "string"}}
		}
	}
}`)

var metricsSchema = mustSchema(`{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["commit_hash"],
		"properties": {
			"commit_hash": {"type": "string"},
			"stats": {
				"type": "object",
				"properties": {
					"ns": {"type": "number"},
					"nd": {"type": "number"},
					"nf": {"type": "number"},
					"entropy": {"type": "number"},
					"la": {"type": "number"},
					"ld": {"type": "number"},
					"lt": {"type": "number"},
					"ndev": {"type": "number"},
					"age": {"type": "number"},
					"nuc": {"type": "number"},
					"exp": {"type": "number"},
					"rexp": {"type": "number"},
					"sexp": {"type": "number"}
				}
			}
		}
	}
}`)

func mustSchema(raw string) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(raw), rs); err != nil {
		panic(fmt.Sprintf("invalid stage schema: %v", err))
	}
	return rs
}

// validateOutput checks a collaborator's stdout against the stage schema.
func validateOutput(ctx context.Context, stage string, schema *jsonschema.Schema, data []byte) error {
	keyErrors, err := schema.ValidateBytes(ctx, data)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", stage, ErrMalformedOutput, err)
	}
	if len(keyErrors) > 0 {
		return fmt.Errorf("%s: %w: %s", stage, ErrMalformedOutput, keyErrors[0].Error())
	}
	return nil
}
