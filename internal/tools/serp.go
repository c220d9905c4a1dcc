package tools

import (
	"context"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/rankpilot/rankpilot-api/internal/dto"
)

// The SERP contract is cardinality-strict: ten organic listings and four
// "people also ask" questions, no more, no fewer.
var serpSchema = jsonschema.MustCompileString("serp.json", `{
	"type": "object",
	"required": ["organic_results", "people_also_ask"],
	"properties": {
		"organic_results": {
			"type": "array",
			"minItems": 10,
			"maxItems": 10,
			"items": {
				"type": "object",
				"required": ["position", "title", "url", "snippet"],
				"properties": {
					"position": {"type": "integer", "minimum": 1, "maximum": 10},
					"title": {"type": "string"},
					"url": {"type": "string"},
					"snippet": {"type": "string"}
				}
			}
		},
		"people_also_ask": {
			"type": "array",
			"minItems": 4,
			"maxItems": 4,
			"items": {
				"type": "object",
				"required": ["question"],
				"properties": {
					"question": {"type": "string"}
				}
			}
		}
	}
}`)

// SerpAnalysis simulates the results page for a keyword.
func (t *Toolbox) SerpAnalysis(ctx context.Context, req dto.SerpAnalysisRequest) (dto.SerpAnalysisResult, error) {
	if err := t.validate.Struct(req); err != nil {
		return dto.SerpAnalysisResult{}, err
	}

	user := strings.Builder{}
	user.WriteString("Simulate the first search results page for the keyword: ")
	user.WriteString(req.Keyword)
	user.WriteString("\nReturn JSON.")

	var result dto.SerpAnalysisResult
	if err := t.invoke(ctx, serpSystemPrompt, user.String(), serpSchema, &result); err != nil {
		return dto.SerpAnalysisResult{}, err
	}

	return result, nil
}

const serpSystemPrompt = "You are a SERP simulator. Respond with a JSON object containing organic_results, " +
	"an array of exactly 10 entries {position, title, url, snippet} with positions 1 through 10, and " +
	"people_also_ask, an array of exactly 4 entries {question}."
