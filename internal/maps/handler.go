package maps

import (
	"bytes"
	"fmt"
	"net/http"
	"unicode/utf8"

	"gsr_locator/internal/lookup"
	"gsr_locator/platform/httpkit"
	"gsr_locator/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler exposes the one-shot lookup endpoints.
type Handler struct {
	svc       *Service
	val       *validator.Validator
	minLength int
}

func NewHandler(svc *Service, val *validator.Validator, minLength int) *Handler {
	return &Handler{svc: svc, val: val, minLength: minLength}
}

// LookupPlace handles GET /api/v1/maps/place-lookup?q=...
// The query goes through the same trim and NFC normalisation as session input.
func (h *Handler) LookupPlace(c *gin.Context) {
	var req LookupRequest
	err := c.ShouldBindQuery(&req)
	query := lookup.Normalize(req.Query)
	if err != nil || utf8.RuneCountInString(query) < h.minLength {
		httpkit.Error(c, http.StatusBadRequest, fmt.Sprintf("query 'q' is required (min %d chars)", h.minLength), nil)
		return
	}

	places, err := h.svc.SearchPlaces(c.Request.Context(), query)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, PlaceLookupResponse{Query: query, Places: places})
}

// LookupOffice handles POST /api/v1/maps/office-lookup
func (h *Handler) LookupOffice(c *gin.Context) {
	var req OfficeLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if httpkit.HandleError(c, h.val.Struct(req)) {
		return
	}
	if string(bytes.TrimSpace(req.Geometry)) == "null" {
		httpkit.Error(c, http.StatusBadRequest, "geometry is required", nil)
		return
	}

	info, err := h.svc.FindOffice(c.Request.Context(), req.toPlace())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, info)
}
