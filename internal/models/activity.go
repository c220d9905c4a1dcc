package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityType is the normalized key identifying which tool produced an activity.
type ActivityType string

// The closed set of activity types. New writes must use these keys only;
// the legacy display-name forms survive solely in pre-migration rows.
const (
	ActivityTypeAudit              ActivityType = "audit"
	ActivityTypeKeywordResearch    ActivityType = "keyword-research"
	ActivityTypeSerpAnalysis       ActivityType = "serp-analysis"
	ActivityTypeCompetitorAnalysis ActivityType = "competitor-analysis"
	ActivityTypeContentAnalysis    ActivityType = "content-analysis"
	ActivityTypeContentBrief       ActivityType = "content-brief"
	ActivityTypeLinkAnalysis       ActivityType = "link-analysis"
)

var toolNames = map[ActivityType]string{
	ActivityTypeAudit:              "SEO Audit",
	ActivityTypeKeywordResearch:    "Keyword Research",
	ActivityTypeSerpAnalysis:       "SERP Analysis",
	ActivityTypeCompetitorAnalysis: "Competitor Analysis",
	ActivityTypeContentAnalysis:    "Content Analysis",
	ActivityTypeContentBrief:       "Content Brief",
	ActivityTypeLinkAnalysis:       "Link Analysis",
}

// LegacyTypeMap translates historical display-name type labels to normalized
// keys. It exists for the one-shot schema migration and must never feed new
// writes.
var LegacyTypeMap = map[string]ActivityType{
	"SEO Audit":                ActivityTypeAudit,
	"Keyword Search":           ActivityTypeKeywordResearch,
	"SERP View":                ActivityTypeSerpAnalysis,
	"Competitor Analysis":      ActivityTypeCompetitorAnalysis,
	"Content Analysis":         ActivityTypeContentAnalysis,
	"Content Brief Generation": ActivityTypeContentBrief,
	"Link Analysis":            ActivityTypeLinkAnalysis,
}

// Valid reports whether t belongs to the closed activity type set.
func (t ActivityType) Valid() bool {
	_, ok := toolNames[t]
	return ok
}

// ToolName returns the display name paired with the type, or "" for unknown types.
func (t ActivityType) ToolName() string {
	return toolNames[t]
}

// ActivityTypes lists every member of the closed type set.
func ActivityTypes() []ActivityType {
	types := make([]ActivityType, 0, len(toolNames))
	for t := range toolNames {
		types = append(types, t)
	}
	return types
}

// Activity records one user-initiated tool invocation and its outcome summary.
// Rows are append-only; the schema migration is the single sanctioned
// exception and stamps OriginalType plus SchemaMigrationDate when it rewrites
// a legacy type.
type Activity struct {
	ID                  uint              `gorm:"primaryKey" json:"id"`
	UserID              uint              `gorm:"not null;index" json:"user_id"`
	Type                string            `gorm:"size:64;not null;index" json:"type"`
	Tool                string            `gorm:"size:64;not null" json:"tool"`
	Details             datatypes.JSONMap `gorm:"type:json" json:"details"`
	ResultsSummary      string            `gorm:"size:512" json:"results_summary"`
	OriginalType        *string           `gorm:"size:64" json:"original_type,omitempty"`
	SchemaMigrationDate *time.Time        `json:"schema_migration_date,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
}

// NewActivity assembles an activity record for the given type. It is a pure
// factory: CreatedAt is deliberately left zero so the persistence layer
// assigns the server clock at insert, keeping ordering consistent across
// clients with skewed clocks.
func NewActivity(t ActivityType, details map[string]interface{}, resultsSummary string) Activity {
	payload := datatypes.JSONMap{}
	for key, value := range details {
		payload[key] = value
	}

	return Activity{
		Type:           string(t),
		Tool:           t.ToolName(),
		Details:        payload,
		ResultsSummary: resultsSummary,
	}
}
