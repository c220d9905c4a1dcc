package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rankpilot/rankpilot-api/internal/dto"
	"github.com/rankpilot/rankpilot-api/internal/models"
	"github.com/rankpilot/rankpilot-api/internal/repository"
)

// Details values longer than this are truncated before persisting so full
// content bodies never land in the activity store.
const maxDetailValueLen = 256

const activityEventSubject = "rankpilot.activities"

// ActivityRecorder defines behaviour for recording tool activities.
type ActivityRecorder interface {
	Record(ctx context.Context, userID uint, activityType models.ActivityType, details map[string]interface{}, resultsSummary string) (models.Activity, error)
}

// ActivityService exposes methods to record and query tool activities.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error)
}

type activityService struct {
	repo   repository.ActivityRepository
	cache  *redis.Client
	ttl    time.Duration
	events *nats.Conn
	logger zerolog.Logger
}

// NewActivityService constructs the activity service. The cache and events
// connections are optional; nil disables the respective behaviour.
func NewActivityService(repo repository.ActivityRepository, cache *redis.Client, ttl time.Duration, events *nats.Conn, logger zerolog.Logger) ActivityService {
	if ttl <= 0 {
		ttl = 45 * time.Second
	}
	return &activityService{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		events: events,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, userID uint, activityType models.ActivityType, details map[string]interface{}, resultsSummary string) (models.Activity, error) {
	if !activityType.Valid() {
		return models.Activity{}, fmt.Errorf("unknown activity type %q", activityType)
	}
	if userID == 0 {
		return models.Activity{}, fmt.Errorf("user id is required")
	}

	activity := models.NewActivity(activityType, boundDetails(details), resultsSummary)
	activity.UserID = userID

	if err := s.repo.Create(ctx, &activity); err != nil {
		s.logger.Error().Err(err).Str("type", string(activityType)).Msg("failed to persist activity")
		return models.Activity{}, err
	}

	s.publish(activity)

	return activity, nil
}

func (s *activityService) List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	page := maxInt(req.Page, 1)
	pageSize := clampPageSize(req.PageSize)

	filter := repository.ActivityFilter{
		Page:     page,
		PageSize: pageSize,
	}
	if req.UserID > 0 {
		filter.UserID = &req.UserID
	}
	if trimmed := strings.TrimSpace(req.Type); trimmed != "" {
		filter.Type = trimmed
	}

	cacheKey := s.cacheKey(filter)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			var response dto.ActivityListResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				response.CacheHit = true
				return response, nil
			}
		}
	}

	activities, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	items := make([]dto.ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		items = append(items, dto.NewActivityResponse(activity))
	}

	pagination := dto.PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
	}
	if pageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	} else {
		pagination.TotalPages = 1
	}

	response := dto.ActivityListResponse{Items: items, Pagination: pagination}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to write activity list cache")
			}
		}
	}

	return response, nil
}

// publish emits the recorded activity to the broker, best effort.
func (s *activityService) publish(activity models.Activity) {
	if s.events == nil {
		return
	}

	payload, err := json.Marshal(activity)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode activity event")
		return
	}

	if err := s.events.Publish(activityEventSubject, payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish activity event")
	}
}

func (s *activityService) cacheKey(filter repository.ActivityFilter) string {
	userID := uint(0)
	if filter.UserID != nil {
		userID = *filter.UserID
	}
	return fmt.Sprintf("activities:%d:%s:%d:%d", userID, filter.Type, filter.Page, filter.PageSize)
}

func boundDetails(details map[string]interface{}) map[string]interface{} {
	if details == nil {
		return map[string]interface{}{}
	}

	bounded := make(map[string]interface{}, len(details))
	for key, value := range details {
		if str, ok := value.(string); ok && len(str) > maxDetailValueLen {
			cut := maxDetailValueLen
			// Never split a multi-byte rune.
			for cut > 0 && !utf8.RuneStart(str[cut]) {
				cut--
			}
			bounded[key] = str[:cut]
			continue
		}
		bounded[key] = value
	}
	return bounded
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampPageSize(size int) int {
	switch {
	case size <= 0:
		return 20
	case size > 100:
		return 100
	default:
		return size
	}
}
