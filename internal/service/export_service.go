package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dentalcare-api/internal/dto"
	"github.com/noah-isme/dentalcare-api/internal/models"
	appErrors "github.com/noah-isme/dentalcare-api/pkg/errors"
	"github.com/noah-isme/dentalcare-api/pkg/export"
)

// Agenda export formats.
const (
	AgendaFormatCSV = "csv"
	AgendaFormatPDF = "pdf"
)

type agendaSource interface {
	DayAppointments(ctx context.Context, rawDate, dentistID string) (time.Time, []models.AppointmentDetail, error)
	Location() *time.Location
}

type datasetRenderer interface {
	ContentType() string
	Render(data export.Dataset) ([]byte, error)
}

var agendaColumns = []export.Column{
	{Key: "time", Title: "Time", Width: 18},
	{Key: "duration", Title: "Min", Width: 12},
	{Key: "patient", Title: "Patient"},
	{Key: "dentist", Title: "Dentist"},
	{Key: "title", Title: "Title"},
	{Key: "type", Title: "Type", Width: 28},
	{Key: "priority", Title: "Priority", Width: 18},
	{Key: "status", Title: "Status", Width: 22},
}

// ExportService renders a clinic day's agenda for printing or spreadsheets.
type ExportService struct {
	agenda    agendaSource
	renderers map[string]datasetRenderer
	logger    *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(agenda agendaSource, logger *zap.Logger, csv, pdf datasetRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		agenda:    agenda,
		renderers: map[string]datasetRenderer{AgendaFormatCSV: csv, AgendaFormatPDF: pdf},
		logger:    logger,
	}
}

// Agenda renders the appointments of q.Date ordered by start time.
func (s *ExportService) Agenda(ctx context.Context, q dto.AgendaExportQuery) (*dto.AgendaFile, error) {
	format := strings.ToLower(strings.TrimSpace(q.Format))
	if format == "" {
		format = AgendaFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be one of: csv pdf")
	}

	day, items, err := s.agenda.DayAppointments(ctx, q.Date, q.DentistID)
	if err != nil {
		return nil, err
	}

	payload, err := renderer.Render(s.buildDataset(day, items))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render agenda")
	}
	s.logger.Debug("agenda exported", zap.String("date", q.Date), zap.String("format", format), zap.Int("appointments", len(items)))

	return &dto.AgendaFile{
		Filename:    fmt.Sprintf("agenda_%s.%s", day.Format("20060102"), format),
		ContentType: renderer.ContentType(),
		Payload:     payload,
	}, nil
}

func (s *ExportService) buildDataset(day time.Time, items []models.AppointmentDetail) export.Dataset {
	loc := s.agenda.Location()
	sorted := append([]models.AppointmentDetail(nil), items...)
	// same start: most pressing first
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.ScheduledDate.Equal(b.ScheduledDate) {
			return a.ScheduledDate.Before(b.ScheduledDate)
		}
		return a.Priority.Rank() > b.Priority.Rank()
	})

	rows := make([]map[string]string, 0, len(sorted))
	for _, item := range sorted {
		rows = append(rows, map[string]string{
			"time":     item.ScheduledDate.In(loc).Format("15:04"),
			"duration": strconv.Itoa(item.DurationMinutes),
			"patient":  item.PatientName,
			"dentist":  item.DentistName,
			"title":    item.Title,
			"type":     string(item.AppointmentType),
			"priority": string(item.Priority),
			"status":   string(item.Status),
		})
	}

	return export.Dataset{
		Title:    "Agenda " + day.Format("Monday 02 January 2006"),
		Subtitle: fmt.Sprintf("%d appointments", len(rows)),
		Columns:  agendaColumns,
		Rows:     rows,
	}
}
