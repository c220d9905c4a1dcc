package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/rankpilot/rankpilot-api/internal/models"
)

// ActivityFilter narrows activity history queries.
type ActivityFilter struct {
	Page     int
	PageSize int
	UserID   *uint
	Type     string
}

// TypeMigration is one queued rewrite from a legacy type to a normalized one.
type TypeMigration struct {
	ActivityID  uint
	UserID      uint
	CurrentType string
	NewType     models.ActivityType
}

// ActivityRepository persists tool invocation records.
type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	List(ctx context.Context, filter ActivityFilter) ([]models.Activity, int64, error)
	ScanPage(ctx context.Context, offset, limit int) ([]models.Activity, error)
	ApplyTypeMigrations(ctx context.Context, migrations []TypeMigration, migratedAt time.Time) error
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository constructs the activity repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepository) List(ctx context.Context, filter ActivityFilter) ([]models.Activity, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Activity{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var activities []models.Activity
	if err := query.Order("created_at DESC").Find(&activities).Error; err != nil {
		return nil, 0, err
	}

	return activities, total, nil
}

// ScanPage returns one bounded page of the full activity table in stable id
// order, for the migration scan.
func (r *activityRepository) ScanPage(ctx context.Context, offset, limit int) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// ApplyTypeMigrations rewrites all queued rows in a single transaction. Each
// update is guarded on the row still carrying the expected legacy type, so a
// concurrent normal write can never be clobbered and re-runs are no-ops.
func (r *activityRepository) ApplyTypeMigrations(ctx context.Context, migrations []TypeMigration, migratedAt time.Time) error {
	if len(migrations) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range migrations {
			update := tx.Model(&models.Activity{}).
				Where("id = ? AND type = ?", m.ActivityID, m.CurrentType).
				Updates(map[string]interface{}{
					"type":                  string(m.NewType),
					"original_type":         m.CurrentType,
					"schema_migration_date": migratedAt,
				})
			if update.Error != nil {
				return update.Error
			}
		}
		return nil
	})
}
