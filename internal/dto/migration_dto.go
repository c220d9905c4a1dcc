package dto

// ActivityTypeMigration describes one rewritten activity row.
type ActivityTypeMigration struct {
	UserID      uint   `json:"user_id"`
	ActivityID  uint   `json:"activity_id"`
	CurrentType string `json:"current_type"`
	NewType     string `json:"new_type"`
}

// MigrationSummary reports the outcome of a type-normalization run.
type MigrationSummary struct {
	Success      bool                    `json:"success"`
	TotalScanned int                     `json:"total_scanned"`
	Updated      int                     `json:"updated"`
	Migrations   []ActivityTypeMigration `json:"migrations"`
}
