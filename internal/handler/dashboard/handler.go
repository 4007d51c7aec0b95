package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careops/registry-api/internal/service/registry"
	"github.com/careops/registry-api/pkg/httputil"
)

type Handler struct {
	service registry.RegistryService
}

func NewHandler(service registry.RegistryService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", h.Summary)
}

func (h *Handler) Summary(c *gin.Context) {
	summary, err := h.service.DashboardSummary(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, summary)
}
