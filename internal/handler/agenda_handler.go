package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dentalcare-api/internal/dto"
	appErrors "github.com/noah-isme/dentalcare-api/pkg/errors"
	"github.com/noah-isme/dentalcare-api/pkg/response"
)

type agendaExporter interface {
	Agenda(ctx context.Context, q dto.AgendaExportQuery) (*dto.AgendaFile, error)
}

// AgendaHandler serves printable day agendas.
type AgendaHandler struct {
	exporter agendaExporter
}

// NewAgendaHandler builds a new handler.
func NewAgendaHandler(exporter agendaExporter) *AgendaHandler {
	return &AgendaHandler{exporter: exporter}
}

// Export godoc
// @Summary Download a day's agenda
// @Tags Scheduling
// @Produce text/csv
// @Produce application/pdf
// @Param date query string true "Day (YYYY-MM-DD)"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Param dentist_id query string false "Dentist ID"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /agenda/export [get]
func (h *AgendaHandler) Export(c *gin.Context) {
	q := dto.AgendaExportQuery{
		Date:      c.Query("date"),
		Format:    c.DefaultQuery("format", "csv"),
		DentistID: c.Query("dentist_id"),
	}
	if q.Date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date is required"))
		return
	}
	file, err := h.exporter.Agenda(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
