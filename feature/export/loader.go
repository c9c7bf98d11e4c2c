package export

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	handler *Handler
	enabled bool
}

// NewFeature creates the export feature. It stays disabled without a service,
// which is the case when no object storage is configured.
func NewFeature(svc *Service, cfg Config, logger *zap.Logger) *Feature {
	f := &Feature{enabled: cfg.Enabled && svc != nil}
	if svc != nil {
		f.handler = NewHandler(svc, logger)
	}
	return f
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "export"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.enabled
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
