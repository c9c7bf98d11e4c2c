package export

import (
	"errors"

	"equipment-inventory/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for spreadsheet exports.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the export routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/api/exports")
	group.Post("/", h.HandleCreate)
	group.Get("/", h.HandleList)
	group.Get("/:name", h.HandleDownload)
}

// HandleCreate writes a new export of the local store.
// @Summary Create export
// @Description Builds an XLSX of all equipment that is not deleted and uploads it to object storage.
// @Tags exports
// @Produce json
// @Success 201 {object} Export
// @Failure 500 {object} map[string]string
// @Router /api/exports [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	export, err := h.service.Create(c.UserContext())
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(export)
}

// HandleList lists stored exports.
// @Summary List exports
// @Tags exports
// @Produce json
// @Success 200 {array} Export
// @Failure 500 {object} map[string]string
// @Router /api/exports [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	list, err := h.service.List(c.UserContext())
	if err != nil {
		logger.WithRayID(h.logger, c).Error("List exports failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if list == nil {
		list = []Export{}
	}
	return c.JSON(list)
}

// HandleDownload streams one export.
// @Summary Download export
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param name path string true "Export file name"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/exports/{name} [get]
func (h *Handler) HandleDownload(c *fiber.Ctx) error {
	name := c.Params("name")
	data, err := h.service.Download(c.UserContext(), name)
	switch {
	case errors.Is(err, ErrInvalidName):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		logger.WithRayID(h.logger, c).Error("Download export failed", zap.String("name", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(data)
}
