package dto

import (
	"time"

	"github.com/noah-isme/dentalcare-api/internal/models"
)

// TimeSlot is a selectable start time in the booking form.
type TimeSlot struct {
	Value   string `json:"value"`
	Display string `json:"display"`
}

// SlotsResponse lists a clinic day's slots. Bookable is set only when a date was given.
type SlotsResponse struct {
	Date     string     `json:"date,omitempty"`
	Bookable *bool      `json:"bookable,omitempty"`
	Slots    []TimeSlot `json:"slots"`
}

// DateValidation answers whether a date can still be booked.
type DateValidation struct {
	Date     string `json:"date"`
	Bookable bool   `json:"bookable"`
}

// CalendarEventProps holds the appointment data the calendar needs on click.
type CalendarEventProps struct {
	AppointmentID   string                   `json:"appointmentId"`
	PatientID       string                   `json:"patientId"`
	PatientName     string                   `json:"patientName"`
	DentistID       string                   `json:"dentistId"`
	Status          models.AppointmentStatus `json:"status"`
	Priority        models.Priority          `json:"priority"`
	AppointmentType models.AppointmentType   `json:"appointmentType"`
	DurationMinutes int                      `json:"durationMinutes"`
	Description     string                   `json:"description"`
	Notes           string                   `json:"notes"`
}

// CalendarEvent is the projection of an appointment onto the calendar widget.
type CalendarEvent struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Start           time.Time          `json:"start"`
	End             time.Time          `json:"end"`
	BackgroundColor string             `json:"backgroundColor"`
	BorderColor     string             `json:"borderColor"`
	ExtendedProps   CalendarEventProps `json:"extendedProps"`
}

// CalendarQuery bounds the visible calendar range. End is exclusive.
type CalendarQuery struct {
	Start     time.Time
	End       time.Time
	DentistID string
}

// AgendaExportQuery selects the day and format of an agenda export.
type AgendaExportQuery struct {
	Date      string
	Format    string
	DentistID string
}

// AgendaFile is a rendered agenda ready for download.
type AgendaFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}
