package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/rankpilot/rankpilot-api/internal/config"
	"github.com/rankpilot/rankpilot-api/internal/dto"
	"github.com/rankpilot/rankpilot-api/internal/models"
	"github.com/rankpilot/rankpilot-api/internal/tools"
	"github.com/rankpilot/rankpilot-api/pkg/ai"
)

type stubEngine struct {
	calls    int
	response string
	err      error
}

func (e *stubEngine) Complete(_ context.Context, _ ai.CompletionRequest) (string, error) {
	e.calls++
	if e.err != nil {
		return "", e.err
	}
	return e.response, nil
}

type allowAllGate struct{}

func (allowAllGate) Tier(_ context.Context, _ uint) (string, error) {
	return models.TierEnterprise, nil
}

func (allowAllGate) Allow(_ context.Context, _ uint, _ string, _ models.ActivityType) error {
	return nil
}

type denyGate struct{}

func (denyGate) Tier(_ context.Context, _ uint) (string, error) {
	return models.TierFree, nil
}

func (denyGate) Allow(_ context.Context, _ uint, _ string, _ models.ActivityType) error {
	return ErrToolNotInPlan
}

func newToolServiceFixture(t *testing.T, engine ai.Engine, gate EntitlementService, cache *redis.Client, writeMode string) (ToolService, *memoryActivityRepo) {
	t.Helper()

	validate := validator.New(validator.WithRequiredStructEnabled())
	toolbox := tools.New(engine, validate, testLogger())

	repo := &memoryActivityRepo{}
	activities := NewActivityService(repo, nil, 0, nil, testLogger())

	svc := NewToolService(toolbox, gate, activities, cache, time.Minute, writeMode, testLogger())
	return svc, repo
}

func TestRunKeywordResearchRecordsActivity(t *testing.T) {
	engine := &stubEngine{response: `{"keywords": ["podcast hosting", "podcast seo", "how to start a podcast"]}`}
	svc, repo := newToolServiceFixture(t, engine, allowAllGate{}, nil, config.ActivityWriteSync)

	result, err := svc.RunKeywordResearch(context.Background(), Actor{ID: 1, Role: "user"}, dto.KeywordResearchRequest{
		Topic:           "podcasts",
		IncludeLongTail: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Keywords)

	require.Len(t, repo.activities, 1)
	activity := repo.activities[0]
	require.Equal(t, "keyword-research", activity.Type)
	require.Equal(t, "Keyword Research", activity.Tool)
	require.Equal(t, uint(1), activity.UserID)
	require.Equal(t, "podcasts", activity.Details["topic"])
	require.NotEmpty(t, activity.ResultsSummary)
}

func TestRunAuditEngineFailureWritesNoActivity(t *testing.T) {
	boom := errors.New("engine exploded")
	engine := &stubEngine{err: boom}
	svc, repo := newToolServiceFixture(t, engine, allowAllGate{}, nil, config.ActivityWriteSync)

	_, err := svc.RunAudit(context.Background(), Actor{ID: 1, Role: "user"}, dto.AuditRequest{URL: "https://example.com"})
	require.ErrorIs(t, err, boom)
	require.Empty(t, repo.activities)
}

func TestRunToolDeniedByPlanSkipsEngine(t *testing.T) {
	engine := &stubEngine{response: `{"keywords": ["ignored"]}`}
	svc, repo := newToolServiceFixture(t, engine, denyGate{}, nil, config.ActivityWriteSync)

	_, err := svc.RunKeywordResearch(context.Background(), Actor{ID: 1, Role: "user"}, dto.KeywordResearchRequest{Topic: "podcasts"})
	require.ErrorIs(t, err, ErrToolNotInPlan)
	require.Zero(t, engine.calls)
	require.Empty(t, repo.activities)
}

func TestRunValidationFailureWritesNoActivity(t *testing.T) {
	engine := &stubEngine{response: `{"keywords": ["ignored"]}`}
	svc, repo := newToolServiceFixture(t, engine, allowAllGate{}, nil, config.ActivityWriteSync)

	_, err := svc.RunKeywordResearch(context.Background(), Actor{ID: 1, Role: "user"}, dto.KeywordResearchRequest{Topic: ""})
	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
	require.Zero(t, engine.calls)
	require.Empty(t, repo.activities)
}

func TestCachedReplaySkipsEngineAndActivity(t *testing.T) {
	server := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: server.Addr()})

	engine := &stubEngine{response: `{"keywords": ["podcast hosting"]}`}
	svc, repo := newToolServiceFixture(t, engine, allowAllGate{}, cache, config.ActivityWriteSync)

	req := dto.KeywordResearchRequest{Topic: "podcasts", IncludeLongTail: true}

	first, err := svc.RunKeywordResearch(context.Background(), Actor{ID: 1, Role: "user"}, req)
	require.NoError(t, err)

	second, err := svc.RunKeywordResearch(context.Background(), Actor{ID: 1, Role: "user"}, req)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, 1, engine.calls)
	require.Len(t, repo.activities, 1)
}

func TestAsyncWriteModeEventuallyRecordsActivity(t *testing.T) {
	engine := &stubEngine{response: `{"keywords": ["podcast hosting"]}`}
	svc, repo := newToolServiceFixture(t, engine, allowAllGate{}, nil, config.ActivityWriteAsync)

	result, err := svc.RunKeywordResearch(context.Background(), Actor{ID: 1, Role: "user"}, dto.KeywordResearchRequest{Topic: "podcasts"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Keywords)

	// The write happens on a detached goroutine after the response.
	require.Eventually(t, func() bool {
		return len(repo.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	recorded := repo.snapshot()[0]
	require.Equal(t, "keyword-research", recorded.Type)
	require.Equal(t, uint(1), recorded.UserID)
}

func TestAsyncWriteModeFailureWritesNoActivity(t *testing.T) {
	boom := errors.New("engine exploded")
	engine := &stubEngine{err: boom}
	svc, repo := newToolServiceFixture(t, engine, allowAllGate{}, nil, config.ActivityWriteAsync)

	_, err := svc.RunAudit(context.Background(), Actor{ID: 1, Role: "user"}, dto.AuditRequest{URL: "https://example.com"})
	require.ErrorIs(t, err, boom)

	require.Never(t, func() bool {
		return len(repo.snapshot()) > 0
	}, 200*time.Millisecond, 20*time.Millisecond)
}

func TestDistinctInputsBypassCache(t *testing.T) {
	server := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: server.Addr()})

	engine := &stubEngine{response: `{"keywords": ["podcast hosting"]}`}
	svc, _ := newToolServiceFixture(t, engine, allowAllGate{}, cache, config.ActivityWriteSync)

	_, err := svc.RunKeywordResearch(context.Background(), Actor{ID: 1, Role: "user"}, dto.KeywordResearchRequest{Topic: "podcasts"})
	require.NoError(t, err)

	_, err = svc.RunKeywordResearch(context.Background(), Actor{ID: 1, Role: "user"}, dto.KeywordResearchRequest{Topic: "newsletters"})
	require.NoError(t, err)

	require.Equal(t, 2, engine.calls)
}
