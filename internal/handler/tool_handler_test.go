package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rankpilot/rankpilot-api/internal/config"
	"github.com/rankpilot/rankpilot-api/internal/dto"
	"github.com/rankpilot/rankpilot-api/internal/handler"
	"github.com/rankpilot/rankpilot-api/internal/models"
	"github.com/rankpilot/rankpilot-api/internal/repository"
	"github.com/rankpilot/rankpilot-api/internal/service"
	"github.com/rankpilot/rankpilot-api/internal/tools"
	"github.com/rankpilot/rankpilot-api/pkg/ai"
)

type fakeEngine struct {
	calls    int
	response string
	err      error
}

func (e *fakeEngine) Complete(_ context.Context, _ ai.CompletionRequest) (string, error) {
	e.calls++
	if e.err != nil {
		return "", e.err
	}
	return e.response, nil
}

func setupToolApp(t *testing.T, engine ai.Engine, role string) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Activity{}, &models.Subscription{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	toolbox := tools.New(engine, validate, logger)
	activityRepo := repository.NewActivityRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	activities := service.NewActivityService(activityRepo, nil, 0, nil, logger)
	gate := service.NewEntitlementService(subscriptionRepo, nil, time.Minute, logger)
	toolService := service.NewToolService(toolbox, gate, activities, nil, time.Minute, config.ActivityWriteSync, logger)

	app := fiber.New()
	group := app.Group("/api/v1/tools", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		c.Locals("user_role", role)
		return c.Next()
	})
	handler.NewToolHandler(toolService, logger).Register(group)

	return app, db
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(body, target))
}

func TestToolHandler_KeywordResearchSuccess(t *testing.T) {
	engine := &fakeEngine{response: `{"keywords": ["podcast hosting", "podcast seo checklist"]}`}
	app, db := setupToolApp(t, engine, "admin")

	resp := postJSON(t, app, "/api/v1/tools/keyword-research", dto.KeywordResearchRequest{
		Topic:           "podcasts",
		IncludeLongTail: true,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                      `json:"success"`
		Data    dto.KeywordResearchResult `json:"data"`
		Message string                    `json:"message"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, "keywords suggested", response.Message)
	require.NotEmpty(t, response.Data.Keywords)

	var activities []models.Activity
	require.NoError(t, db.Find(&activities).Error)
	require.Len(t, activities, 1)
	require.Equal(t, "keyword-research", activities[0].Type)
	require.Equal(t, uint(1), activities[0].UserID)
}

func TestToolHandler_EngineFailurePropagatesMessage(t *testing.T) {
	engine := &fakeEngine{err: errors.New("provider quota exhausted")}
	app, db := setupToolApp(t, engine, "admin")

	resp := postJSON(t, app, "/api/v1/tools/seo-audit", dto.AuditRequest{URL: "https://example.com"})
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &response)

	require.False(t, response.Success)
	require.Contains(t, response.Message, "provider quota exhausted")

	var count int64
	require.NoError(t, db.Model(&models.Activity{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestToolHandler_ValidationFailureSkipsEngine(t *testing.T) {
	engine := &fakeEngine{response: `{"keywords": ["ignored"]}`}
	app, db := setupToolApp(t, engine, "admin")

	resp := postJSON(t, app, "/api/v1/tools/keyword-research", map[string]interface{}{"topic": ""})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Zero(t, engine.calls)

	var count int64
	require.NoError(t, db.Model(&models.Activity{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestToolHandler_PlanDeniedReturnsForbidden(t *testing.T) {
	engine := &fakeEngine{response: `{"internal_links": 12, "external_links": 5, "issues": [], "opportunities": []}`}
	app, db := setupToolApp(t, engine, "user")

	// No subscription row, so the caller sits on the free tier and link
	// analysis requires agency.
	resp := postJSON(t, app, "/api/v1/tools/link-analysis", dto.LinkAnalysisRequest{URL: "https://example.com"})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Zero(t, engine.calls)

	var response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.False(t, response.Success)
	require.Contains(t, response.Message, "plan")

	var count int64
	require.NoError(t, db.Model(&models.Activity{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestToolHandler_InvalidAIOutputReturnsBadGateway(t *testing.T) {
	engine := &fakeEngine{response: "not json at all"}
	app, _ := setupToolApp(t, engine, "admin")

	resp := postJSON(t, app, "/api/v1/tools/serp-analysis", dto.SerpAnalysisRequest{Keyword: "seo tools"})
	require.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	var response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.False(t, response.Success)
	require.Contains(t, response.Message, "AI did not return valid data")
}

func TestToolHandler_SubscribedTierUnlocksTool(t *testing.T) {
	engine := &fakeEngine{response: `{
		"readability_suggestions": "Shorten sentences.",
		"keyword_density_suggestions": "Mention the keyword earlier.",
		"semantic_relevance_suggestions": "Add related entities.",
		"overall_score": 68
	}`}
	app, db := setupToolApp(t, engine, "user")

	require.NoError(t, db.Create(&models.Subscription{UserID: 1, Tier: models.TierStarter, Status: "active"}).Error)

	resp := postJSON(t, app, "/api/v1/tools/content-analysis", dto.ContentAnalysisRequest{
		Content:        "A long article about technical SEO audits and crawl budgets for large sites.",
		TargetKeywords: "technical seo",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                      `json:"success"`
		Data    dto.ContentAnalysisResult `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, 68.0, response.Data.OverallScore)

	var activities []models.Activity
	require.NoError(t, db.Find(&activities).Error)
	require.Len(t, activities, 1)
	require.Equal(t, "content-analysis", activities[0].Type)
	require.NotContains(t, activities[0].Details, "content")
}
