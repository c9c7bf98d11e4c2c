package sync

import (
	"errors"

	"equipment-inventory/core/logger"
	"equipment-inventory/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for synchronization.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/api/sync")
	group.Post("/", h.HandleRun)
	group.Get("/last", h.HandleLast)
	group.Get("/status", h.HandleStatus)
}

// HandleRun runs one synchronization pass.
// @Summary Run synchronization
// @Description Reconciles the local and remote stores. With dry_run=true only the plan is reported.
// @Tags sync
// @Produce json
// @Param dry_run query bool false "Plan only, write nothing"
// @Success 200 {object} Outcome
// @Failure 500 {object} map[string]any
// @Failure 503 {object} map[string]string
// @Router /api/sync [post]
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	opts := reconcile.Options{DryRun: c.QueryBool("dry_run", false)}
	l := logger.WithRayID(h.logger, c)

	out, err := h.service.Run(c.UserContext(), opts)
	if err != nil {
		if errors.Is(err, ErrSyncDisabled) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
		}
		l.Error("Sync request failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  err.Error(),
			"report": out,
		})
	}
	return c.JSON(out)
}

// HandleLast returns the outcome of the latest pass.
// @Summary Last synchronization
// @Tags sync
// @Produce json
// @Success 200 {object} Outcome
// @Failure 404 {object} map[string]string
// @Router /api/sync/last [get]
func (h *Handler) HandleLast(c *fiber.Ctx) error {
	out := h.service.Last()
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no synchronization has run yet"})
	}
	return c.JSON(out)
}

// HandleStatus reports whether sync is enabled and running.
// @Summary Synchronization status
// @Tags sync
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /api/sync/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"enabled": h.service.Enabled(),
		"running": h.service.Running(),
	})
}
