package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rankpilot/rankpilot-api/internal/service"
)

// AdminMigrationHandler exposes the one-shot schema normalization endpoint.
type AdminMigrationHandler struct {
	service service.MigrationService
	logger  zerolog.Logger
}

// NewAdminMigrationHandler builds the migration handler.
func NewAdminMigrationHandler(service service.MigrationService, logger zerolog.Logger) *AdminMigrationHandler {
	return &AdminMigrationHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_migration_handler").Logger(),
	}
}

// Register attaches the migration routes to the provided router group.
func (h *AdminMigrationHandler) Register(router fiber.Router) {
	router.Post("/activity-types", h.normalizeActivityTypes)
}

// normalizeActivityTypes responds with the bare summary shape rather than the
// common envelope: the migration contract predates it and its consumers
// expect top-level fields.
func (h *AdminMigrationHandler) normalizeActivityTypes(c *fiber.Ctx) error {
	summary, err := h.service.NormalizeActivityTypes(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("activity type migration failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}
