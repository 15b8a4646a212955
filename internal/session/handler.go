package session

import (
	"errors"
	"net/http"

	"gsr_locator/internal/lookup"
	"gsr_locator/internal/notification/sse"
	"gsr_locator/platform/apperr"
	"gsr_locator/platform/httpkit"
	"gsr_locator/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest = "invalid request"
	msgInvalidID      = "invalid session id"
)

// Handler exposes lookup sessions over HTTP.
type Handler struct {
	mgr *Manager
	hub *sse.Service
	val *validator.Validator
}

// NewHandler creates a session handler.
func NewHandler(mgr *Manager, hub *sse.Service, val *validator.Validator) *Handler {
	return &Handler{mgr: mgr, hub: hub, val: val}
}

// RegisterRoutes mounts the read routes on rg and the event sink on limited.
func (h *Handler) RegisterRoutes(rg, limited *gin.RouterGroup) {
	limited.POST("", h.Create)
	limited.POST("/:id/events", h.PostEvent)

	rg.GET("/:id", h.Get)
	rg.GET("/:id/stream", h.Stream)
	rg.DELETE("/:id", h.Delete)
}

// Create handles POST /api/v1/sessions
func (h *Handler) Create(c *gin.Context) {
	id, ctrl, err := h.mgr.Create()
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, SessionResponse{SessionID: id, State: ctrl.State()})
}

// Get handles GET /api/v1/sessions/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctrl, err := h.mgr.Get(id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, ctrl.State())
}

// PostEvent handles POST /api/v1/sessions/:id/events
func (h *Handler) PostEvent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if httpkit.HandleError(c, h.val.Struct(req)) {
		return
	}

	ctrl, err := h.mgr.Get(id)
	if httpkit.HandleError(c, err) {
		return
	}

	state, err := ctrl.Dispatch(c.Request.Context(), req.toEvent())
	if httpkit.HandleError(c, mapDispatchError(err)) {
		return
	}

	httpkit.OK(c, state)
}

// Stream handles GET /api/v1/sessions/:id/stream
func (h *Handler) Stream(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctrl, release, err := h.mgr.Attach(id)
	if httpkit.HandleError(c, err) {
		return
	}
	defer release()

	h.hub.Stream(c, id, func() interface{} { return ctrl.State() }, ctrl.Done())
}

// Delete handles DELETE /api/v1/sessions/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.mgr.Close(id)) {
		return
	}

	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}

func mapDispatchError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, lookup.ErrUnknownPlace):
		return apperr.NotFound("place is not among the current suggestions")
	case errors.Is(err, lookup.ErrSessionClosed):
		return apperr.NotFound("lookup session not found")
	case errors.Is(err, lookup.ErrUnknownEvent):
		return apperr.Validation("unknown event type")
	default:
		return apperr.Wrap(apperr.KindBadRequest, "event not processed", err)
	}
}
