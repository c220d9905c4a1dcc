package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rankpilot/rankpilot-api/internal/dto"
	"github.com/rankpilot/rankpilot-api/internal/service"
	"github.com/rankpilot/rankpilot-api/internal/tools"
	"github.com/rankpilot/rankpilot-api/internal/utils"
)

// ToolHandler exposes the seven SEO tool endpoints.
type ToolHandler struct {
	service service.ToolService
	logger  zerolog.Logger
}

// NewToolHandler builds a tool handler instance.
func NewToolHandler(service service.ToolService, logger zerolog.Logger) *ToolHandler {
	return &ToolHandler{
		service: service,
		logger:  logger.With().Str("component", "tool_handler").Logger(),
	}
}

// Register attaches the tool routes to the provided router group.
func (h *ToolHandler) Register(router fiber.Router) {
	router.Post("/seo-audit", h.audit)
	router.Post("/keyword-research", h.keywordResearch)
	router.Post("/serp-analysis", h.serpAnalysis)
	router.Post("/competitor-analysis", h.competitorAnalysis)
	router.Post("/content-analysis", h.contentAnalysis)
	router.Post("/content-brief", h.contentBrief)
	router.Post("/link-analysis", h.linkAnalysis)
}

func (h *ToolHandler) audit(c *fiber.Ctx) error {
	var payload dto.AuditRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.RunAudit(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "audit completed", result)
}

func (h *ToolHandler) keywordResearch(c *fiber.Ctx) error {
	var payload dto.KeywordResearchRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.RunKeywordResearch(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "keywords suggested", result)
}

func (h *ToolHandler) serpAnalysis(c *fiber.Ctx) error {
	var payload dto.SerpAnalysisRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.RunSerpAnalysis(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "serp simulated", result)
}

func (h *ToolHandler) competitorAnalysis(c *fiber.Ctx) error {
	var payload dto.CompetitorAnalysisRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.RunCompetitorAnalysis(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "competitor analysis completed", result)
}

func (h *ToolHandler) contentAnalysis(c *fiber.Ctx) error {
	var payload dto.ContentAnalysisRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.RunContentAnalysis(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "content analyzed", result)
}

func (h *ToolHandler) contentBrief(c *fiber.Ctx) error {
	var payload dto.ContentBriefRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.RunContentBrief(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "brief generated", result)
}

func (h *ToolHandler) linkAnalysis(c *fiber.Ctx) error {
	var payload dto.LinkAnalysisRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.RunLinkAnalysis(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "link analysis completed", result)
}

// handleError maps orchestration errors to HTTP responses. Engine failures
// keep their original message so callers retain diagnostic detail.
func (h *ToolHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrToolNotInPlan):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	case errors.Is(err, tools.ErrRejectedInput):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, tools.ErrInvalidAIOutput):
		return utils.SendError(c, fiber.StatusBadGateway, err.Error())
	default:
		h.logger.Error().Err(err).Msg("tool invocation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	}
}
