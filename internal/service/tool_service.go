package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rankpilot/rankpilot-api/internal/config"
	"github.com/rankpilot/rankpilot-api/internal/dto"
	"github.com/rankpilot/rankpilot-api/internal/models"
	"github.com/rankpilot/rankpilot-api/internal/tools"
)

const asyncWriteTimeout = 10 * time.Second

// Actor identifies the authenticated caller of a tool.
type Actor struct {
	ID   uint
	Role string
}

// ToolService wraps every tool invocation in the same control flow:
// entitlement gate, cache lookup, validated invocation, activity write.
// The activity write never gates the tool result; depending on
// configuration it is awaited (failures logged and swallowed) or detached.
type ToolService interface {
	RunAudit(ctx context.Context, actor Actor, req dto.AuditRequest) (dto.AuditResult, error)
	RunKeywordResearch(ctx context.Context, actor Actor, req dto.KeywordResearchRequest) (dto.KeywordResearchResult, error)
	RunSerpAnalysis(ctx context.Context, actor Actor, req dto.SerpAnalysisRequest) (dto.SerpAnalysisResult, error)
	RunCompetitorAnalysis(ctx context.Context, actor Actor, req dto.CompetitorAnalysisRequest) (dto.CompetitorAnalysisResult, error)
	RunContentAnalysis(ctx context.Context, actor Actor, req dto.ContentAnalysisRequest) (dto.ContentAnalysisResult, error)
	RunContentBrief(ctx context.Context, actor Actor, req dto.ContentBriefRequest) (dto.ContentBriefResult, error)
	RunLinkAnalysis(ctx context.Context, actor Actor, req dto.LinkAnalysisRequest) (dto.LinkAnalysisResult, error)
}

type toolService struct {
	toolbox    *tools.Toolbox
	gate       EntitlementService
	activities ActivityRecorder
	cache      *redis.Client
	cacheTTL   time.Duration
	writeMode  string
	logger     zerolog.Logger
}

// NewToolService constructs the orchestration service. A nil cache disables
// response replay.
func NewToolService(toolbox *tools.Toolbox, gate EntitlementService, activities ActivityRecorder, cache *redis.Client, cacheTTL time.Duration, writeMode string, logger zerolog.Logger) ToolService {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	if writeMode != config.ActivityWriteAsync {
		writeMode = config.ActivityWriteSync
	}
	return &toolService{
		toolbox:    toolbox,
		gate:       gate,
		activities: activities,
		cache:      cache,
		cacheTTL:   cacheTTL,
		writeMode:  writeMode,
		logger:     logger.With().Str("component", "tool_service").Logger(),
	}
}

func (s *toolService) RunAudit(ctx context.Context, actor Actor, req dto.AuditRequest) (dto.AuditResult, error) {
	if err := s.gate.Allow(ctx, actor.ID, actor.Role, models.ActivityTypeAudit); err != nil {
		return dto.AuditResult{}, err
	}

	key := s.cacheKey(models.ActivityTypeAudit, req)
	var result dto.AuditResult
	if s.cacheGet(ctx, key, &result) {
		return result, nil
	}

	result, err := s.toolbox.Audit(ctx, req)
	if err != nil {
		return dto.AuditResult{}, err
	}

	s.recordActivity(ctx, actor, models.ActivityTypeAudit,
		map[string]interface{}{"url": req.URL},
		fmt.Sprintf("Audited %s: %.0f/100 with %d findings", req.URL, result.OverallScore, len(result.Findings)))
	s.cacheSet(ctx, key, result)

	return result, nil
}

func (s *toolService) RunKeywordResearch(ctx context.Context, actor Actor, req dto.KeywordResearchRequest) (dto.KeywordResearchResult, error) {
	if err := s.gate.Allow(ctx, actor.ID, actor.Role, models.ActivityTypeKeywordResearch); err != nil {
		return dto.KeywordResearchResult{}, err
	}

	key := s.cacheKey(models.ActivityTypeKeywordResearch, req)
	var result dto.KeywordResearchResult
	if s.cacheGet(ctx, key, &result) {
		return result, nil
	}

	result, err := s.toolbox.KeywordResearch(ctx, req)
	if err != nil {
		return dto.KeywordResearchResult{}, err
	}

	s.recordActivity(ctx, actor, models.ActivityTypeKeywordResearch,
		map[string]interface{}{"topic": req.Topic, "include_long_tail": req.IncludeLongTail},
		fmt.Sprintf("%d keywords suggested for %q", len(result.Keywords), req.Topic))
	s.cacheSet(ctx, key, result)

	return result, nil
}

func (s *toolService) RunSerpAnalysis(ctx context.Context, actor Actor, req dto.SerpAnalysisRequest) (dto.SerpAnalysisResult, error) {
	if err := s.gate.Allow(ctx, actor.ID, actor.Role, models.ActivityTypeSerpAnalysis); err != nil {
		return dto.SerpAnalysisResult{}, err
	}

	key := s.cacheKey(models.ActivityTypeSerpAnalysis, req)
	var result dto.SerpAnalysisResult
	if s.cacheGet(ctx, key, &result) {
		return result, nil
	}

	result, err := s.toolbox.SerpAnalysis(ctx, req)
	if err != nil {
		return dto.SerpAnalysisResult{}, err
	}

	s.recordActivity(ctx, actor, models.ActivityTypeSerpAnalysis,
		map[string]interface{}{"keyword": req.Keyword},
		fmt.Sprintf("Simulated results page for %q", req.Keyword))
	s.cacheSet(ctx, key, result)

	return result, nil
}

func (s *toolService) RunCompetitorAnalysis(ctx context.Context, actor Actor, req dto.CompetitorAnalysisRequest) (dto.CompetitorAnalysisResult, error) {
	if err := s.gate.Allow(ctx, actor.ID, actor.Role, models.ActivityTypeCompetitorAnalysis); err != nil {
		return dto.CompetitorAnalysisResult{}, err
	}

	key := s.cacheKey(models.ActivityTypeCompetitorAnalysis, req)
	var result dto.CompetitorAnalysisResult
	if s.cacheGet(ctx, key, &result) {
		return result, nil
	}

	result, err := s.toolbox.CompetitorAnalysis(ctx, req)
	if err != nil {
		return dto.CompetitorAnalysisResult{}, err
	}

	s.recordActivity(ctx, actor, models.ActivityTypeCompetitorAnalysis,
		map[string]interface{}{"domain": req.Domain, "competitor_domain": req.CompetitorDomain},
		fmt.Sprintf("Compared %s against %s", req.Domain, req.CompetitorDomain))
	s.cacheSet(ctx, key, result)

	return result, nil
}

func (s *toolService) RunContentAnalysis(ctx context.Context, actor Actor, req dto.ContentAnalysisRequest) (dto.ContentAnalysisResult, error) {
	if err := s.gate.Allow(ctx, actor.ID, actor.Role, models.ActivityTypeContentAnalysis); err != nil {
		return dto.ContentAnalysisResult{}, err
	}

	key := s.cacheKey(models.ActivityTypeContentAnalysis, req)
	var result dto.ContentAnalysisResult
	if s.cacheGet(ctx, key, &result) {
		return result, nil
	}

	result, err := s.toolbox.ContentAnalysis(ctx, req)
	if err != nil {
		return dto.ContentAnalysisResult{}, err
	}

	// The draft body stays out of the activity store; only its size is kept.
	s.recordActivity(ctx, actor, models.ActivityTypeContentAnalysis,
		map[string]interface{}{"target_keywords": req.TargetKeywords, "content_length": len(req.Content)},
		fmt.Sprintf("Content scored %.0f/100 against %q", result.OverallScore, req.TargetKeywords))
	s.cacheSet(ctx, key, result)

	return result, nil
}

func (s *toolService) RunContentBrief(ctx context.Context, actor Actor, req dto.ContentBriefRequest) (dto.ContentBriefResult, error) {
	if err := s.gate.Allow(ctx, actor.ID, actor.Role, models.ActivityTypeContentBrief); err != nil {
		return dto.ContentBriefResult{}, err
	}

	key := s.cacheKey(models.ActivityTypeContentBrief, req)
	var result dto.ContentBriefResult
	if s.cacheGet(ctx, key, &result) {
		return result, nil
	}

	result, err := s.toolbox.ContentBrief(ctx, req)
	if err != nil {
		return dto.ContentBriefResult{}, err
	}

	s.recordActivity(ctx, actor, models.ActivityTypeContentBrief,
		map[string]interface{}{"topic": req.Topic, "audience": req.Audience},
		fmt.Sprintf("Brief generated: %s", result.Title))
	s.cacheSet(ctx, key, result)

	return result, nil
}

func (s *toolService) RunLinkAnalysis(ctx context.Context, actor Actor, req dto.LinkAnalysisRequest) (dto.LinkAnalysisResult, error) {
	if err := s.gate.Allow(ctx, actor.ID, actor.Role, models.ActivityTypeLinkAnalysis); err != nil {
		return dto.LinkAnalysisResult{}, err
	}

	key := s.cacheKey(models.ActivityTypeLinkAnalysis, req)
	var result dto.LinkAnalysisResult
	if s.cacheGet(ctx, key, &result) {
		return result, nil
	}

	result, err := s.toolbox.LinkAnalysis(ctx, req)
	if err != nil {
		return dto.LinkAnalysisResult{}, err
	}

	s.recordActivity(ctx, actor, models.ActivityTypeLinkAnalysis,
		map[string]interface{}{"url": req.URL},
		fmt.Sprintf("Found %d internal and %d external links at %s", result.InternalLinks, result.ExternalLinks, req.URL))
	s.cacheSet(ctx, key, result)

	return result, nil
}

// recordActivity appends the invocation record. Persistence is auxiliary
// telemetry: a failed write is logged, never surfaced as a tool failure, and
// a failed invocation never reaches this point.
func (s *toolService) recordActivity(ctx context.Context, actor Actor, activityType models.ActivityType, details map[string]interface{}, summary string) {
	write := func(ctx context.Context) {
		if _, err := s.activities.Record(ctx, actor.ID, activityType, details, summary); err != nil {
			s.logger.Warn().Err(err).Str("type", string(activityType)).Msg("activity write failed")
		}
	}

	if s.writeMode == config.ActivityWriteAsync {
		go func() {
			detached, cancel := context.WithTimeout(context.Background(), asyncWriteTimeout)
			defer cancel()
			write(detached)
		}()
		return
	}

	write(ctx)
}

func (s *toolService) cacheKey(activityType models.ActivityType, input interface{}) string {
	payload, err := json.Marshal(input)
	if err != nil {
		return ""
	}
	digest := sha256.Sum256(payload)
	return fmt.Sprintf("toolcache:%s:%s", activityType, hex.EncodeToString(digest[:]))
}

func (s *toolService) cacheGet(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil || key == "" {
		return false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil || cached == "" {
		return false
	}

	if err := json.Unmarshal([]byte(cached), out); err != nil {
		return false
	}

	return true
}

func (s *toolService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil || key == "" {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write tool response cache")
	}
}
