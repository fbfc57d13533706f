package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dentalcare-api/internal/dto"
	"github.com/noah-isme/dentalcare-api/internal/middleware"
	"github.com/noah-isme/dentalcare-api/internal/service"
	appErrors "github.com/noah-isme/dentalcare-api/pkg/errors"
	"github.com/noah-isme/dentalcare-api/pkg/response"
)

type calendarService interface {
	Slots(rawDate string) (*dto.SlotsResponse, error)
	ValidateDate(rawDate string) dto.DateValidation
	CalendarEvents(ctx context.Context, q dto.CalendarQuery) ([]dto.CalendarEvent, bool, error)
	Location() *time.Location
}

// CalendarHandler serves the booking form's slot picker and the calendar view.
type CalendarHandler struct {
	service calendarService
}

// NewCalendarHandler builds a new handler.
func NewCalendarHandler(service calendarService) *CalendarHandler {
	return &CalendarHandler{service: service}
}

// Slots godoc
// @Summary Time slots of a clinic day
// @Tags Scheduling
// @Produce json
// @Param date query string false "Day to check (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /slots [get]
func (h *CalendarHandler) Slots(c *gin.Context) {
	res, err := h.service.Slots(c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// ValidateDate godoc
// @Summary Check whether a day can be booked
// @Tags Scheduling
// @Produce json
// @Param date query string true "Day (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /slots/validate-date [get]
func (h *CalendarHandler) ValidateDate(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date is required"))
		return
	}
	response.JSON(c, http.StatusOK, h.service.ValidateDate(date), nil)
}

// Events godoc
// @Summary Calendar events in a range
// @Description start and end accept RFC 3339 timestamps or clinic-local dates; end is exclusive.
// @Tags Scheduling
// @Produce json
// @Param start query string true "Range start"
// @Param end query string true "Range end"
// @Param dentist_id query string false "Dentist ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /calendar/events [get]
func (h *CalendarHandler) Events(c *gin.Context) {
	loc := h.service.Location()
	start, err := parseCalendarBound(c.Query("start"), loc)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "start must be a date or RFC 3339 timestamp"))
		return
	}
	end, err := parseCalendarBound(c.Query("end"), loc)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "end must be a date or RFC 3339 timestamp"))
		return
	}

	events, hit, err := h.service.CalendarEvents(c.Request.Context(), dto.CalendarQuery{
		Start:     start,
		End:       end,
		DentistID: c.Query("dentist_id"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, events, nil, middleware.ExtractMeta(c))
}

func parseCalendarBound(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return service.ParseLocalDate(raw, loc)
}
