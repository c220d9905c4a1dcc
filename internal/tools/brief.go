package tools

import (
	"context"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/rankpilot/rankpilot-api/internal/dto"
)

var briefSchema = jsonschema.MustCompileString("brief.json", `{
	"type": "object",
	"required": ["title", "outline", "talking_points", "target_word_count"],
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"outline": {"type": "array", "minItems": 1, "items": {"type": "string"}},
		"talking_points": {"type": "array", "minItems": 1, "items": {"type": "string"}},
		"target_word_count": {"type": "integer", "minimum": 1}
	}
}`)

// ContentBrief generates a writing brief for a topic.
func (t *Toolbox) ContentBrief(ctx context.Context, req dto.ContentBriefRequest) (dto.ContentBriefResult, error) {
	if err := t.validate.Struct(req); err != nil {
		return dto.ContentBriefResult{}, err
	}

	user := strings.Builder{}
	user.WriteString("Produce a content brief for the topic: ")
	user.WriteString(req.Topic)
	if audience := strings.TrimSpace(req.Audience); audience != "" {
		user.WriteString("\nTarget audience: ")
		user.WriteString(audience)
	}
	user.WriteString("\nReturn JSON.")

	var result dto.ContentBriefResult
	if err := t.invoke(ctx, briefSystemPrompt, user.String(), briefSchema, &result); err != nil {
		return dto.ContentBriefResult{}, err
	}

	return result, nil
}

const briefSystemPrompt = "You are a content strategist. Respond with a JSON object containing title (string), " +
	"outline (array of section headings), talking_points (array of strings), and target_word_count (integer)."
