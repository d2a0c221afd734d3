// Package audit provides the persistent sync-run trail: one Postgres row per
// orchestration, fed by the domain events on the in-memory bus.
package audit

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"backoffice_backend/internal/audit/handler"
	"backoffice_backend/internal/audit/repository"
	"backoffice_backend/internal/audit/service"
	"backoffice_backend/internal/events"
	apphttp "backoffice_backend/internal/http"
	"backoffice_backend/platform/logger"
)

// Module is the audit bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the repository and subscribes the recorder to the bus.
func NewModule(pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	svc.Subscribe(bus)

	return &Module{handler: handler.New(svc)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "audit"
}

// RegisterRoutes mounts the sync-run trail on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/sync-runs")
	m.handler.RegisterRoutes(group)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
