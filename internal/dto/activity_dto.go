package dto

import (
	"time"

	"github.com/rankpilot/rankpilot-api/internal/models"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// ActivityListRequest filters a user's activity history.
type ActivityListRequest struct {
	UserID   uint
	Type     string
	Page     int
	PageSize int
}

// ActivityResponse is the serialized view of one activity record.
type ActivityResponse struct {
	ID                  uint                   `json:"id"`
	Type                string                 `json:"type"`
	Tool                string                 `json:"tool"`
	Details             map[string]interface{} `json:"details"`
	ResultsSummary      string                 `json:"results_summary"`
	OriginalType        *string                `json:"original_type,omitempty"`
	SchemaMigrationDate *time.Time             `json:"schema_migration_date,omitempty"`
	CreatedAt           time.Time              `json:"created_at"`
}

// ActivityListResponse pages through a user's activity history.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
	CacheHit   bool               `json:"cache_hit"`
}

// NewActivityResponse converts a persisted activity into its API view.
func NewActivityResponse(activity models.Activity) ActivityResponse {
	return ActivityResponse{
		ID:                  activity.ID,
		Type:                activity.Type,
		Tool:                activity.Tool,
		Details:             map[string]interface{}(activity.Details),
		ResultsSummary:      activity.ResultsSummary,
		OriginalType:        activity.OriginalType,
		SchemaMigrationDate: activity.SchemaMigrationDate,
		CreatedAt:           activity.CreatedAt,
	}
}
