package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rankpilot/rankpilot-api/internal/models"
	"github.com/rankpilot/rankpilot-api/internal/repository"
)

// ErrToolNotInPlan indicates the caller's subscription tier does not include the tool.
var ErrToolNotInPlan = errors.New("tool not included in current plan")

// Minimum tier required per tool. Admins bypass the table entirely.
var toolMinimumTier = map[models.ActivityType]string{
	models.ActivityTypeKeywordResearch:    models.TierFree,
	models.ActivityTypeSerpAnalysis:       models.TierFree,
	models.ActivityTypeAudit:              models.TierStarter,
	models.ActivityTypeContentBrief:       models.TierStarter,
	models.ActivityTypeContentAnalysis:    models.TierStarter,
	models.ActivityTypeCompetitorAnalysis: models.TierAgency,
	models.ActivityTypeLinkAnalysis:       models.TierAgency,
}

// EntitlementService resolves subscription tiers and gates tool access.
type EntitlementService interface {
	Tier(ctx context.Context, userID uint) (string, error)
	Allow(ctx context.Context, userID uint, role string, tool models.ActivityType) error
}

type entitlementService struct {
	repo   repository.SubscriptionRepository
	cache  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewEntitlementService constructs the subscription gate.
func NewEntitlementService(repo repository.SubscriptionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) EntitlementService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &entitlementService{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "entitlement_service").Logger(),
	}
}

// Tier returns the user's subscription tier. Users without a subscription
// row are on the free tier.
func (s *entitlementService) Tier(ctx context.Context, userID uint) (string, error) {
	cacheKey := fmt.Sprintf("entitlement:tier:%d", userID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			return cached, nil
		}
	}

	tier := models.TierFree
	subscription, err := s.repo.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		if strings.EqualFold(subscription.Status, "active") {
			tier = strings.ToLower(subscription.Tier)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// no subscription row, free tier
	default:
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, tier, s.ttl).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to cache entitlement tier")
		}
	}

	return tier, nil
}

// Allow returns nil when the user may invoke the tool, ErrToolNotInPlan otherwise.
func (s *entitlementService) Allow(ctx context.Context, userID uint, role string, tool models.ActivityType) error {
	if strings.EqualFold(strings.TrimSpace(role), "admin") {
		return nil
	}

	required, ok := toolMinimumTier[tool]
	if !ok {
		return fmt.Errorf("unknown tool %q", tool)
	}

	tier, err := s.Tier(ctx, userID)
	if err != nil {
		return err
	}

	if !models.TierAtLeast(tier, required) {
		return ErrToolNotInPlan
	}

	return nil
}
