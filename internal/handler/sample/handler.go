package sample

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
	samples := r.Group("/samples")
	{
		samples.GET("", h.ListSamples)
		samples.GET("/test-types", h.ListTestTypes)
		samples.POST("/:code/results", h.RecordTestResults)
		samples.POST("/:code/deliver", h.DeliverResults)
	}
}

func (h *Handler) ListSamples(c *gin.Context) {
	samples, err := h.service.ListAllBloodSamples(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, samples)
}

func (h *Handler) ListTestTypes(c *gin.Context) {
	httputil.RespondWithSuccess(c, http.StatusOK, h.service.TestTypes())
}

func (h *Handler) RecordTestResults(c *gin.Context) {
	var req model.RecordTestResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidationMessage("blood_sample", err.Error()))
		return
	}

	sample, err := h.service.RecordTestResults(c.Request.Context(), c.Param("code"), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, sample)
}

func (h *Handler) DeliverResults(c *gin.Context) {
	sample, err := h.service.DeliverResults(c.Request.Context(), c.Param("code"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, sample)
}
