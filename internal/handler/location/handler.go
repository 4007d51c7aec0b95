package location

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careops/registry-api/internal/model"
	"github.com/careops/registry-api/internal/service/registry"
	apperrors "github.com/careops/registry-api/pkg/errors"
	"github.com/careops/registry-api/pkg/httputil"
)

type Handler struct {
	service registry.RegistryService
}

func NewHandler(service registry.RegistryService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	locations := r.Group("/locations")
	{
		locations.POST("", h.AddLocation)
		locations.GET("", h.ListLocations)
	}
}

func (h *Handler) AddLocation(c *gin.Context) {
	var req model.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidationMessage("location", err.Error()))
		return
	}

	location, err := h.service.AddLocation(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, location)
}

func (h *Handler) ListLocations(c *gin.Context) {
	locations, err := h.service.ListLocations(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, locations)
}
