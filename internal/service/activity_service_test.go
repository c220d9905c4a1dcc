package service

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rankpilot/rankpilot-api/internal/dto"
	"github.com/rankpilot/rankpilot-api/internal/models"
	"github.com/rankpilot/rankpilot-api/internal/repository"
)

// memoryActivityRepo is shared across the service tests. Writes may arrive
// from a detached goroutine when the async write mode is under test, so all
// access goes through the mutex.
type memoryActivityRepo struct {
	mu         sync.Mutex
	activities []models.Activity
}

func (m *memoryActivityRepo) Create(_ context.Context, activity *models.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	activity.ID = uint(len(m.activities) + 1)
	activity.CreatedAt = time.Now()
	m.activities = append(m.activities, *activity)
	return nil
}

func (m *memoryActivityRepo) List(_ context.Context, filter repository.ActivityFilter) ([]models.Activity, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []models.Activity
	for _, activity := range m.activities {
		if filter.UserID != nil && activity.UserID != *filter.UserID {
			continue
		}
		if filter.Type != "" && activity.Type != filter.Type {
			continue
		}
		matched = append(matched, activity)
	}
	return matched, int64(len(matched)), nil
}

func (m *memoryActivityRepo) ScanPage(_ context.Context, offset, limit int) ([]models.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if offset >= len(m.activities) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.activities) {
		end = len(m.activities)
	}
	return append([]models.Activity(nil), m.activities[offset:end]...), nil
}

func (m *memoryActivityRepo) ApplyTypeMigrations(_ context.Context, migrations []repository.TypeMigration, migratedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, migration := range migrations {
		for i := range m.activities {
			if m.activities[i].ID != migration.ActivityID || m.activities[i].Type != migration.CurrentType {
				continue
			}
			original := m.activities[i].Type
			stamp := migratedAt
			m.activities[i].Type = string(migration.NewType)
			m.activities[i].OriginalType = &original
			m.activities[i].SchemaMigrationDate = &stamp
		}
	}
	return nil
}

func (m *memoryActivityRepo) snapshot() []models.Activity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Activity(nil), m.activities...)
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func TestActivityServiceRecordRejectsUnknownType(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, nil, 0, nil, testLogger())

	_, err := svc.Record(context.Background(), 1, models.ActivityType("Keyword Search"), nil, "legacy write")
	require.Error(t, err)
	require.Empty(t, repo.activities)
}

func TestActivityServiceRecordStoresNormalizedTypeAndToolName(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, nil, 0, nil, testLogger())

	activity, err := svc.Record(context.Background(), 7, models.ActivityTypeSerpAnalysis, map[string]interface{}{"keyword": "seo"}, "Simulated results page for \"seo\"")
	require.NoError(t, err)
	require.Equal(t, "serp-analysis", activity.Type)
	require.Equal(t, "SERP Analysis", activity.Tool)
	require.Equal(t, uint(7), activity.UserID)
	require.True(t, models.ActivityType(activity.Type).Valid())
}

func TestActivityServiceRecordBoundsDetailValues(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, nil, 0, nil, testLogger())

	oversized := strings.Repeat("x", 4096)
	activity, err := svc.Record(context.Background(), 1, models.ActivityTypeContentAnalysis, map[string]interface{}{
		"target_keywords": oversized,
		"content_length":  4096,
	}, "Content scored")
	require.NoError(t, err)

	stored, ok := activity.Details["target_keywords"].(string)
	require.True(t, ok)
	require.Len(t, stored, maxDetailValueLen)
	require.Equal(t, 4096, activity.Details["content_length"])
}

func TestActivityServiceRecordTruncatesOnRuneBoundary(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, nil, 0, nil, testLogger())

	// Three-byte runes, so the byte limit falls mid-rune.
	oversized := strings.Repeat("日", 120)
	activity, err := svc.Record(context.Background(), 1, models.ActivityTypeContentAnalysis, map[string]interface{}{
		"target_keywords": oversized,
	}, "Content scored")
	require.NoError(t, err)

	stored, ok := activity.Details["target_keywords"].(string)
	require.True(t, ok)
	require.LessOrEqual(t, len(stored), maxDetailValueLen)
	require.True(t, utf8.ValidString(stored))
}

func TestActivityServiceRecordRequiresUser(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, nil, 0, nil, testLogger())

	_, err := svc.Record(context.Background(), 0, models.ActivityTypeAudit, nil, "no owner")
	require.Error(t, err)
	require.Empty(t, repo.activities)
}

func TestActivityServiceListScopesToUserAndType(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, nil, 0, nil, testLogger())

	_, err := svc.Record(context.Background(), 1, models.ActivityTypeAudit, nil, "user 1 audit")
	require.NoError(t, err)
	_, err = svc.Record(context.Background(), 1, models.ActivityTypeKeywordResearch, nil, "user 1 keywords")
	require.NoError(t, err)
	_, err = svc.Record(context.Background(), 2, models.ActivityTypeAudit, nil, "user 2 audit")
	require.NoError(t, err)

	response, err := svc.List(context.Background(), dto.ActivityListRequest{UserID: 1, Type: "audit"})
	require.NoError(t, err)
	require.Len(t, response.Items, 1)
	require.Equal(t, "user 1 audit", response.Items[0].ResultsSummary)
	require.Equal(t, int64(1), response.Pagination.TotalItems)
	require.Equal(t, 1, response.Pagination.Page)
	require.Equal(t, 20, response.Pagination.PageSize)
	require.False(t, response.CacheHit)
}

func TestActivityServiceListClampsPageSize(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, nil, 0, nil, testLogger())

	response, err := svc.List(context.Background(), dto.ActivityListRequest{UserID: 1, PageSize: 5000})
	require.NoError(t, err)
	require.Equal(t, 100, response.Pagination.PageSize)
}

func TestActivityServiceListCachesResponses(t *testing.T) {
	server := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: server.Addr()})

	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, cache, time.Minute, nil, testLogger())

	_, err := svc.Record(context.Background(), 1, models.ActivityTypeAudit, nil, "first audit")
	require.NoError(t, err)

	first, err := svc.List(context.Background(), dto.ActivityListRequest{UserID: 1})
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Len(t, first.Items, 1)

	// A new write lands between the two reads but the cached page wins
	// until the TTL expires.
	_, err = svc.Record(context.Background(), 1, models.ActivityTypeKeywordResearch, nil, "second entry")
	require.NoError(t, err)

	second, err := svc.List(context.Background(), dto.ActivityListRequest{UserID: 1})
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Len(t, second.Items, 1)
}
