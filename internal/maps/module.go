package maps

import (
	apphttp "gsr_locator/internal/http"
	"gsr_locator/internal/lookup"
	"gsr_locator/platform/validator"
)

// Module wires the one-shot lookup HTTP routes.
type Module struct {
	handler *Handler
}

func NewModule(places lookup.PlaceResolver, offices lookup.OfficeResolver, val *validator.Validator, minLength int) *Module {
	svc := NewService(places, offices)
	h := NewHandler(svc, val, minLength)
	return &Module{handler: h}
}

func (m *Module) Name() string {
	return "maps"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Limited.Group("/maps")
	group.GET("/place-lookup", m.handler.LookupPlace)
	group.POST("/office-lookup", m.handler.LookupOffice)
}

var _ apphttp.Module = (*Module)(nil)
