package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rankpilot/rankpilot-api/internal/dto"
	"github.com/rankpilot/rankpilot-api/internal/models"
	"github.com/rankpilot/rankpilot-api/internal/repository"
)

// MigrationService normalizes historical activity types that still carry
// legacy display-name labels.
type MigrationService interface {
	NormalizeActivityTypes(ctx context.Context) (dto.MigrationSummary, error)
}

type migrationService struct {
	repo     repository.ActivityRepository
	pageSize int
	logger   zerolog.Logger
	now      func() time.Time
}

// NewMigrationService constructs the migration service with a bounded scan
// page size.
func NewMigrationService(repo repository.ActivityRepository, pageSize int, logger zerolog.Logger) MigrationService {
	if pageSize <= 0 {
		pageSize = 500
	}
	return &migrationService{
		repo:     repo,
		pageSize: pageSize,
		logger:   logger.With().Str("component", "migration_service").Logger(),
		now:      time.Now,
	}
}

// NormalizeActivityTypes scans every activity page by page, queues rows whose
// type matches a legacy label, and applies all rewrites in one transaction.
// Already-normalized rows are skipped, so re-running after a failure is safe.
func (s *migrationService) NormalizeActivityTypes(ctx context.Context) (dto.MigrationSummary, error) {
	var (
		queued       []repository.TypeMigration
		totalScanned int
		offset       int
	)

	for {
		page, err := s.repo.ScanPage(ctx, offset, s.pageSize)
		if err != nil {
			return dto.MigrationSummary{}, err
		}
		if len(page) == 0 {
			break
		}

		totalScanned += len(page)
		for _, activity := range page {
			target, ok := models.LegacyTypeMap[activity.Type]
			if !ok || string(target) == activity.Type {
				continue
			}
			queued = append(queued, repository.TypeMigration{
				ActivityID:  activity.ID,
				UserID:      activity.UserID,
				CurrentType: activity.Type,
				NewType:     target,
			})
		}

		offset += len(page)
		if len(page) < s.pageSize {
			break
		}
	}

	if err := s.repo.ApplyTypeMigrations(ctx, queued, s.now().UTC()); err != nil {
		return dto.MigrationSummary{}, err
	}

	migrations := make([]dto.ActivityTypeMigration, 0, len(queued))
	for _, m := range queued {
		migrations = append(migrations, dto.ActivityTypeMigration{
			UserID:      m.UserID,
			ActivityID:  m.ActivityID,
			CurrentType: m.CurrentType,
			NewType:     string(m.NewType),
		})
	}

	s.logger.Info().
		Int("total_scanned", totalScanned).
		Int("updated", len(migrations)).
		Msg("activity type normalization completed")

	return dto.MigrationSummary{
		Success:      true,
		TotalScanned: totalScanned,
		Updated:      len(migrations),
		Migrations:   migrations,
	}, nil
}
