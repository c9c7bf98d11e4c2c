package equipment

import (
	"errors"
	"time"

	"equipment-inventory/core/logger"
	"equipment-inventory/feature/equipment/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for equipment.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the equipment routes and the health check.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/health", h.HandleHealth)

	group := app.Group("/api/equipos")
	group.Get("/", h.HandleList)
	group.Get("/:id", h.HandleGet)
	group.Post("/", h.HandleSave)
	group.Delete("/:id", h.HandleDelete)
}

// HandleHealth reports service status.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	status, code := "ok", fiber.StatusOK
	if err := h.service.Ping(c.UserContext()); err != nil {
		logger.WithRayID(h.logger, c).Warn("Health check failed", zap.Error(err))
		status, code = "degraded", fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database":  h.service.Driver(),
	})
}

// HandleList returns equipment that is not deleted.
// @Summary List equipment
// @Description Lists equipment ordered by INE. q filters over every field and specification.
// @Tags equipos
// @Produce json
// @Param q query string false "Search text"
// @Success 200 {array} models.Equipment
// @Failure 500 {object} map[string]string
// @Router /api/equipos [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	list, err := h.service.List(c.UserContext(), c.Query("q"))
	if err != nil {
		return h.fail(c, "List equipment failed", err)
	}
	return c.JSON(list)
}

// HandleGet returns one equipment record.
// @Summary Get equipment
// @Tags equipos
// @Produce json
// @Param id path string true "Equipment ID"
// @Success 200 {object} models.Equipment
// @Failure 404 {object} map[string]string
// @Router /api/equipos/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	e, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Get equipment failed", err)
	}
	return c.JSON(e)
}

// HandleSave creates or updates an equipment record.
// @Summary Save equipment
// @Description Creates the record when id is empty, otherwise updates it. Specifications are replaced.
// @Tags equipos
// @Accept json
// @Produce json
// @Param equipo body models.Equipment true "Equipment"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /api/equipos [post]
func (h *Handler) HandleSave(c *fiber.Ctx) error {
	var input models.Equipment
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	id, err := h.service.Save(c.UserContext(), &input)
	if err != nil {
		return h.fail(c, "Save equipment failed", err)
	}
	return c.JSON(fiber.Map{"id": id, "success": true})
}

// HandleDelete soft-deletes an equipment record.
// @Summary Delete equipment
// @Tags equipos
// @Produce json
// @Param id path string true "Equipment ID"
// @Success 200 {object} map[string]bool
// @Router /api/equipos/{id} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	deleted, err := h.service.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Delete equipment failed", err)
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	code := StatusFor(err)
	if code >= fiber.StatusInternalServerError {
		logger.WithRayID(h.logger, c).Error(msg, zap.Error(err))
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
