package pipeline

import (
	"encoding/json"

	"github.com/brieflab/brief/internal/providers"
)

// Response schemas, one per stage. All are strict: required fields are
// enumerated and no additional properties are permitted, so any deviation
// from the remote service is a malformed response.

const takeawaysSchema = `{
	"type": "object",
	"properties": {
		"takeaways": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"point": {"type": "string"},
					"importance": {"type": "string", "enum": ["high", "medium", "low"]}
				},
				"required": ["point", "importance"],
				"additionalProperties": false
			}
		}
	},
	"required": ["takeaways"],
	"additionalProperties": false
}`

const sectionsSchema = `{
	"type": "object",
	"properties": {
		"sections": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"title": {"type": "string"},
					"summary": {"type": "string"},
					"key_points": {"type": "array", "items": {"type": "string"}},
					"visual_concept": {"type": "string"}
				},
				"required": ["title", "summary", "key_points", "visual_concept"],
				"additionalProperties": false
			}
		}
	},
	"required": ["sections"],
	"additionalProperties": false
}`

const synthesisSchema = `{
	"type": "object",
	"properties": {
		"executive_summary": {"type": "string"},
		"detailed_analysis": {"type": "string"},
		"recommendations": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["executive_summary", "detailed_analysis", "recommendations"],
	"additionalProperties": false
}`

const keyTermsSchema = `{
	"type": "object",
	"properties": {
		"terms": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"term": {"type": "string"},
					"definition": {"type": "string"},
					"context": {"type": "string"}
				},
				"required": ["term", "definition", "context"],
				"additionalProperties": false
			}
		}
	},
	"required": ["terms"],
	"additionalProperties": false
}`

const limitationsSchema = `{
	"type": "object",
	"properties": {
		"methodological_limitations": {"type": "array", "items": {"type": "string"}},
		"cognitive_biases": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"bias": {"type": "string"},
					"manifestation": {"type": "string"},
					"impact": {"type": "string"},
					"mitigation": {"type": "string"}
				},
				"required": ["bias", "manifestation", "impact", "mitigation"],
				"additionalProperties": false
			}
		},
		"missing_perspectives": {"type": "array", "items": {"type": "string"}},
		"critical_evaluation": {"type": "string"}
	},
	"required": ["methodological_limitations", "cognitive_biases", "missing_perspectives", "critical_evaluation"],
	"additionalProperties": false
}`

const socialPostSchema = `{
	"type": "object",
	"properties": {
		"post_text": {"type": "string"}
	},
	"required": ["post_text"],
	"additionalProperties": false
}`

const articleSchema = `{
	"type": "object",
	"properties": {
		"headline": {"type": "string"},
		"introduction": {"type": "string"},
		"key_points": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"title": {"type": "string"},
					"detail": {"type": "string"}
				},
				"required": ["title", "detail"],
				"additionalProperties": false
			}
		},
		"conclusion": {"type": "string"},
		"call_to_action": {"type": "string"},
		"visual_concept": {"type": "string"}
	},
	"required": ["headline", "introduction", "key_points", "conclusion", "call_to_action", "visual_concept"],
	"additionalProperties": false
}`

// stageSchemas maps stage identifiers to their response schemas.
var stageSchemas = map[string]string{
	StageTakeaways:   takeawaysSchema,
	StageSections:    sectionsSchema,
	StageSynthesis:   synthesisSchema,
	StageKeyTerms:    keyTermsSchema,
	StageLimitations: limitationsSchema,
	StageSocialPost:  socialPostSchema,
	StageArticle:     articleSchema,
}

// responseFormat builds the strict structured-output request for a stage.
func responseFormat(stage string) *providers.ResponseFormat {
	return &providers.ResponseFormat{
		Name:   stage,
		Schema: json.RawMessage(stageSchemas[stage]),
	}
}
