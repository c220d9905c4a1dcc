package tools

import (
	"context"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/rankpilot/rankpilot-api/internal/dto"
)

var keywordSchema = jsonschema.MustCompileString("keywords.json", `{
	"type": "object",
	"required": ["keywords"],
	"properties": {
		"keywords": {
			"type": "array",
			"minItems": 1,
			"items": {"type": "string", "minLength": 1}
		}
	}
}`)

// KeywordResearch suggests keywords around a topic.
func (t *Toolbox) KeywordResearch(ctx context.Context, req dto.KeywordResearchRequest) (dto.KeywordResearchResult, error) {
	if err := t.validate.Struct(req); err != nil {
		return dto.KeywordResearchResult{}, err
	}

	user := strings.Builder{}
	user.WriteString("Suggest search keywords for the topic: ")
	user.WriteString(req.Topic)
	if req.IncludeLongTail {
		user.WriteString("\nInclude long-tail variations alongside head terms.")
	} else {
		user.WriteString("\nHead terms only, no long-tail variations.")
	}
	user.WriteString("\nReturn JSON.")

	var result dto.KeywordResearchResult
	if err := t.invoke(ctx, keywordSystemPrompt, user.String(), keywordSchema, &result); err != nil {
		return dto.KeywordResearchResult{}, err
	}

	return result, nil
}

const keywordSystemPrompt = "You are a keyword research assistant. Respond with a JSON object containing " +
	"keywords, a non-empty array of keyword strings ordered by estimated search volume."
