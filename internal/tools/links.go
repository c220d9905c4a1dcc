package tools

import (
	"context"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/rankpilot/rankpilot-api/internal/dto"
)

var linkSchema = jsonschema.MustCompileString("links.json", `{
	"type": "object",
	"required": ["internal_links", "external_links", "issues", "opportunities"],
	"properties": {
		"internal_links": {"type": "integer", "minimum": 0},
		"external_links": {"type": "integer", "minimum": 0},
		"issues": {"type": "array", "items": {"type": "string"}},
		"opportunities": {"type": "array", "items": {"type": "string"}}
	}
}`)

// LinkAnalysis reviews the link profile of a page.
func (t *Toolbox) LinkAnalysis(ctx context.Context, req dto.LinkAnalysisRequest) (dto.LinkAnalysisResult, error) {
	if err := t.validate.Struct(req); err != nil {
		return dto.LinkAnalysisResult{}, err
	}

	user := strings.Builder{}
	user.WriteString("Analyze the link profile of the page at: ")
	user.WriteString(req.URL)
	user.WriteString("\nEstimate internal and external link counts, flag issues, and list opportunities. Return JSON.")

	var result dto.LinkAnalysisResult
	if err := t.invoke(ctx, linkSystemPrompt, user.String(), linkSchema, &result); err != nil {
		return dto.LinkAnalysisResult{}, err
	}

	return result, nil
}

const linkSystemPrompt = "You are a link analysis assistant. Respond with a JSON object containing internal_links " +
	"(integer), external_links (integer), issues (array of strings), and opportunities (array of strings)."
