// Package schools provides the school directory bounded context: colegios
// CRUD proxied to the CMS and the spreadsheet import pipeline.
package schools

import (
	"backoffice_backend/internal/cms"
	"backoffice_backend/internal/events"
	apphttp "backoffice_backend/internal/http"
	"backoffice_backend/internal/schools/handler"
	"backoffice_backend/internal/schools/importer"
	"backoffice_backend/internal/schools/service"
	"backoffice_backend/platform/config"
	"backoffice_backend/platform/logger"
	"backoffice_backend/platform/validator"
)

// Module is the schools bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the importer and CRUD service. archive may be nil when
// MinIO is not configured.
func NewModule(cmsClient *cms.Client, archive importer.Archiver, cfg config.ImportConfig, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	imp := importer.New(cmsClient, archive, cfg.GetImportReadTimeout(), log)
	svc := service.New(cmsClient, imp, bus, log)

	return &Module{
		handler: handler.New(svc, val, cfg.GetImportMaxFileSize()),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "schools"
}

// Service exposes the school service for the import CLI.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts school routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/schools")
	group.Use(ctx.RateLimiter.RateLimit())
	m.handler.RegisterRoutes(group)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
