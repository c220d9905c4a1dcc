package tools

import (
	"context"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/rankpilot/rankpilot-api/internal/dto"
)

var auditSchema = jsonschema.MustCompileString("audit.json", `{
	"type": "object",
	"required": ["overall_score", "findings"],
	"properties": {
		"overall_score": {"type": "number", "minimum": 0, "maximum": 100},
		"findings": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["category", "severity", "recommendation"],
				"properties": {
					"category": {"type": "string"},
					"severity": {"type": "string", "enum": ["low", "medium", "high", "critical"]},
					"recommendation": {"type": "string"}
				}
			}
		}
	}
}`)

// Audit reviews a single page for on-page SEO issues.
func (t *Toolbox) Audit(ctx context.Context, req dto.AuditRequest) (dto.AuditResult, error) {
	if err := t.validate.Struct(req); err != nil {
		return dto.AuditResult{}, err
	}

	user := strings.Builder{}
	user.WriteString("Audit the following page for on-page SEO quality.\n\nURL: ")
	user.WriteString(req.URL)
	user.WriteString("\n\nScore the page from 0 to 100 and itemize findings. Return JSON.")

	var result dto.AuditResult
	if err := t.invoke(ctx, auditSystemPrompt, user.String(), auditSchema, &result); err != nil {
		return dto.AuditResult{}, err
	}

	return result, nil
}

const auditSystemPrompt = "You are an SEO auditor. Respond with a JSON object containing overall_score " +
	"(0-100) and findings, an array of {category, severity, recommendation} where severity is one of " +
	"low, medium, high, critical. Cover titles, meta descriptions, headings, internal linking, and page speed signals."
