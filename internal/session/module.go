package session

import (
	apphttp "gsr_locator/internal/http"
	"gsr_locator/internal/notification/sse"
	"gsr_locator/platform/validator"
)

// Module wires the lookup session routes.
type Module struct {
	handler *Handler
	Manager *Manager
}

// NewModule creates the session module around an existing manager.
func NewModule(mgr *Manager, hub *sse.Service, val *validator.Validator) *Module {
	return &Module{
		handler: NewHandler(mgr, hub, val),
		Manager: mgr,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "session"
}

// RegisterRoutes registers the module's routes under /api/v1/sessions
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/sessions"), ctx.Limited.Group("/sessions"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
