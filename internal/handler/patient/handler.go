package patient

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
	patients := r.Group("/patients")
	{
		patients.POST("", h.RegisterPatient)
		patients.GET("", h.ListPatients)
		patients.GET("/search", h.SearchPatient)
		patients.GET("/:code", h.GetPatient)

		patients.POST("/:code/records", h.AddHealthRecord)
		patients.POST("/:code/samples", h.CollectBloodSample)
	}
}

func (h *Handler) RegisterPatient(c *gin.Context) {
	var req model.RegisterPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidationMessage("patient", err.Error()))
		return
	}

	patient, err := h.service.RegisterPatient(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, patient)
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.service.ListPatients(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	detail, err := h.service.PatientDetail(c.Request.Context(), c.Param("code"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, detail)
}

// SearchPatient resolves a scanned or typed code. Input is normalized, so
// "pat000001" finds PAT000001.
func (h *Handler) SearchPatient(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		httputil.RespondWithError(c, apperrors.NewValidation("patient", "code"))
		return
	}

	detail, err := h.service.PatientDetail(c.Request.Context(), code)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, detail)
}

func (h *Handler) AddHealthRecord(c *gin.Context) {
	var req model.AddHealthRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidationMessage("health_record", err.Error()))
		return
	}

	record, err := h.service.AddHealthRecord(c.Request.Context(), c.Param("code"), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, record)
}

func (h *Handler) CollectBloodSample(c *gin.Context) {
	var req model.CollectSampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidationMessage("blood_sample", err.Error()))
		return
	}

	sample, err := h.service.CollectBloodSample(c.Request.Context(), c.Param("code"), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, sample)
}
