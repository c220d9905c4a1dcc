package tools

import (
	"context"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/rankpilot/rankpilot-api/internal/dto"
)

var contentSchema = jsonschema.MustCompileString("content.json", `{
	"type": "object",
	"required": ["readability_suggestions", "keyword_density_suggestions", "semantic_relevance_suggestions", "overall_score"],
	"properties": {
		"readability_suggestions": {"type": "string", "minLength": 1},
		"keyword_density_suggestions": {"type": "string", "minLength": 1},
		"semantic_relevance_suggestions": {"type": "string", "minLength": 1},
		"overall_score": {"type": "number", "minimum": 0, "maximum": 100}
	}
}`)

// ContentAnalysis reviews a draft against target keywords. User-supplied
// content may contain markup, so it is stripped before prompting.
func (t *Toolbox) ContentAnalysis(ctx context.Context, req dto.ContentAnalysisRequest) (dto.ContentAnalysisResult, error) {
	if err := t.validate.Struct(req); err != nil {
		return dto.ContentAnalysisResult{}, err
	}

	clean := strings.TrimSpace(t.sanitizer.Sanitize(req.Content))
	if clean == "" {
		return dto.ContentAnalysisResult{}, errValidation("content is empty after sanitization")
	}

	user := strings.Builder{}
	user.WriteString("Review this draft for SEO optimization.\n\nTarget keywords: ")
	user.WriteString(req.TargetKeywords)
	user.WriteString("\n\nContent:\n")
	user.WriteString(clean)
	user.WriteString("\n\nReturn JSON.")

	var result dto.ContentAnalysisResult
	if err := t.invoke(ctx, contentSystemPrompt, user.String(), contentSchema, &result); err != nil {
		return dto.ContentAnalysisResult{}, err
	}

	return result, nil
}

const contentSystemPrompt = "You are a content optimization assistant. Respond with a JSON object containing " +
	"readability_suggestions, keyword_density_suggestions, semantic_relevance_suggestions (strings) and " +
	"overall_score (0-100)."
