package tools

import (
	"context"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/rankpilot/rankpilot-api/internal/dto"
)

var competitorSchema = jsonschema.MustCompileString("competitor.json", `{
	"type": "object",
	"required": ["overlap_keywords", "content_gaps", "summary"],
	"properties": {
		"overlap_keywords": {"type": "array", "items": {"type": "string"}},
		"content_gaps": {"type": "array", "items": {"type": "string"}},
		"summary": {"type": "string", "minLength": 1}
	}
}`)

// CompetitorAnalysis compares a domain against a competitor.
func (t *Toolbox) CompetitorAnalysis(ctx context.Context, req dto.CompetitorAnalysisRequest) (dto.CompetitorAnalysisResult, error) {
	if err := t.validate.Struct(req); err != nil {
		return dto.CompetitorAnalysisResult{}, err
	}

	user := strings.Builder{}
	user.WriteString("Compare the SEO posture of two domains.\n\nDomain: ")
	user.WriteString(req.Domain)
	user.WriteString("\nCompetitor: ")
	user.WriteString(req.CompetitorDomain)
	user.WriteString("\n\nIdentify overlapping keywords and content gaps. Return JSON.")

	var result dto.CompetitorAnalysisResult
	if err := t.invoke(ctx, competitorSystemPrompt, user.String(), competitorSchema, &result); err != nil {
		return dto.CompetitorAnalysisResult{}, err
	}

	return result, nil
}

const competitorSystemPrompt = "You are a competitive SEO analyst. Respond with a JSON object containing " +
	"overlap_keywords (array of strings), content_gaps (array of strings), and summary (string)."
