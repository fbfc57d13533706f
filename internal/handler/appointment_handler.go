package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dentalcare-api/internal/dto"
	"github.com/noah-isme/dentalcare-api/internal/models"
	appErrors "github.com/noah-isme/dentalcare-api/pkg/errors"
	"github.com/noah-isme/dentalcare-api/pkg/response"
)

type appointmentService interface {
	Get(ctx context.Context, id string) (*models.AppointmentDetail, error)
	List(ctx context.Context, q dto.AppointmentListQuery) ([]models.AppointmentDetail, *models.Pagination, error)
	Create(ctx context.Context, form dto.AppointmentForm, actor *models.JWTClaims) (*models.AppointmentDetail, error)
	Update(ctx context.Context, id string, form dto.AppointmentForm, actor *models.JWTClaims) (*dto.AppointmentMutation, error)
	UpdateStatus(ctx context.Context, id string, req dto.StatusUpdateRequest, actor *models.JWTClaims) (*models.AppointmentDetail, error)
	Reschedule(ctx context.Context, id string, req dto.RescheduleRequest, actor *models.JWTClaims) (*models.AppointmentDetail, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
	SuggestPriority(notes string) dto.PrioritySuggestion
}

// AppointmentHandler exposes appointment booking endpoints.
type AppointmentHandler struct {
	service appointmentService
}

// NewAppointmentHandler builds a new handler.
func NewAppointmentHandler(service appointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

// List godoc
// @Summary List appointments
// @Tags Appointments
// @Produce json
// @Param dentist_id query string false "Dentist ID"
// @Param patient_id query string false "Patient ID"
// @Param status query string false "Comma separated statuses"
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /appointments [get]
func (h *AppointmentHandler) List(c *gin.Context) {
	q := dto.AppointmentListQuery{
		DentistID: c.Query("dentist_id"),
		PatientID: c.Query("patient_id"),
		From:      c.Query("from"),
		To:        c.Query("to"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "limit", 50),
	}
	for _, raw := range c.QueryArray("status") {
		for _, status := range strings.Split(raw, ",") {
			if status = strings.TrimSpace(status); status != "" {
				q.Statuses = append(q.Statuses, models.AppointmentStatus(status))
			}
		}
	}

	items, pagination, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []models.AppointmentDetail{}
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get appointment
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /appointments/{id} [get]
func (h *AppointmentHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// SuggestPriority godoc
// @Summary Suggest a priority from free-text notes
// @Tags Appointments
// @Produce json
// @Param notes query string false "Notes"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /appointments/priority-suggestion [get]
func (h *AppointmentHandler) SuggestPriority(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.SuggestPriority(c.Query("notes")), nil)
}

// Create godoc
// @Summary Book an appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param payload body dto.AppointmentForm true "Appointment form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /appointments [post]
func (h *AppointmentHandler) Create(c *gin.Context) {
	var form dto.AppointmentForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid appointment payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), form, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Edit an appointment
// @Description Only fields that differ from the stored appointment are written.
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param payload body dto.AppointmentForm true "Appointment form"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /appointments/{id} [put]
func (h *AppointmentHandler) Update(c *gin.Context) {
	var form dto.AppointmentForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid appointment payload"))
		return
	}
	res, err := h.service.Update(c.Request.Context(), c.Param("id"), form, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// UpdateStatus godoc
// @Summary Change appointment status
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param payload body dto.StatusUpdateRequest true "New status"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /appointments/{id}/status [patch]
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	var req dto.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	item, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Reschedule godoc
// @Summary Move or resize an appointment from the calendar
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param payload body dto.RescheduleRequest true "New start and end"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /appointments/{id}/reschedule [post]
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	var req dto.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "start and end must be RFC 3339 timestamps"))
		return
	}
	item, err := h.service.Reschedule(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete an appointment
// @Tags Appointments
// @Param id path string true "Appointment ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
