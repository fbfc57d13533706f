package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dentalcare-api/internal/dto"
	"github.com/noah-isme/dentalcare-api/internal/middleware"
	"github.com/noah-isme/dentalcare-api/internal/models"
	appErrors "github.com/noah-isme/dentalcare-api/pkg/errors"
	"github.com/noah-isme/dentalcare-api/pkg/response"
)

type patientService interface {
	Search(ctx context.Context, q dto.PatientSearchQuery) ([]models.Patient, error)
	Get(ctx context.Context, id string) (*models.Patient, error)
	Create(ctx context.Context, req dto.CreatePatientRequest) (*models.Patient, error)
}

// PatientHandler exposes patient lookup for the booking form.
type PatientHandler struct {
	service patientService
}

// NewPatientHandler builds a new handler.
func NewPatientHandler(service patientService) *PatientHandler {
	return &PatientHandler{service: service}
}

// Search godoc
// @Summary Search patients
// @Description The seq parameter is echoed in meta so clients can ignore stale responses.
// @Tags Patients
// @Produce json
// @Param search query string false "Name, phone or email fragment"
// @Param seq query string false "Client request sequence"
// @Param limit query int false "Maximum results"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /patients [get]
func (h *PatientHandler) Search(c *gin.Context) {
	q := dto.PatientSearchQuery{
		Search: c.Query("search"),
		Seq:    c.Query("seq"),
		Limit:  queryInt(c, "limit", 10),
	}
	patients, err := h.service.Search(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	if q.Seq != "" {
		middleware.SetMeta(c, "seq", q.Seq)
	}
	response.JSON(c, http.StatusOK, patients, nil, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get patient
// @Tags Patients
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /patients/{id} [get]
func (h *PatientHandler) Get(c *gin.Context) {
	patient, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, patient, nil)
}

// Create godoc
// @Summary Register a patient
// @Tags Patients
// @Accept json
// @Produce json
// @Param payload body dto.CreatePatientRequest true "Patient"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /patients [post]
func (h *PatientHandler) Create(c *gin.Context) {
	var req dto.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid patient payload"))
		return
	}
	patient, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, patient)
}
