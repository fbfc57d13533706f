package dto

import (
	"time"

	"github.com/noah-isme/dentalcare-api/internal/models"
)

// AppointmentForm is what the create and edit screens submit. Date and time
// are clinic-local wall values ("2025-06-15", "09:30").
type AppointmentForm struct {
	PatientID       string                   `json:"patient_id" validate:"required"`
	DentistID       string                   `json:"dentist_id" validate:"required"`
	Date            string                   `json:"date" validate:"required,datetime=2006-01-02"`
	Time            string                   `json:"time" validate:"required,hhmm"`
	DurationMinutes int                      `json:"duration_minutes" validate:"required,oneof=15 30 45 60 90 120"`
	AppointmentType models.AppointmentType   `json:"appointment_type" validate:"required,oneof=consultation cleaning filling extraction root_canal crown implant orthodontics follow_up checkup"`
	Priority        models.Priority          `json:"priority" validate:"omitempty,oneof=normal high urgent"`
	Status          models.AppointmentStatus `json:"status" validate:"omitempty,oneof=scheduled confirmed in_progress completed cancelled no_show"`
	Title           string                   `json:"title" validate:"required,max=200"`
	Description     string                   `json:"description" validate:"max=2000"`
	Notes           string                   `json:"notes" validate:"max=2000"`
}

// AppointmentCreatePayload is the full record handed to persistence on create.
type AppointmentCreatePayload struct {
	PatientID       string                   `db:"patient_id" json:"patient_id"`
	DentistID       string                   `db:"dentist_id" json:"dentist_id"`
	ScheduledDate   time.Time                `db:"scheduled_date" json:"scheduled_date"`
	DurationMinutes int                      `db:"duration_minutes" json:"duration_minutes"`
	AppointmentType models.AppointmentType   `db:"appointment_type" json:"appointment_type"`
	Priority        models.Priority          `db:"priority" json:"priority"`
	Status          models.AppointmentStatus `db:"status" json:"status"`
	Title           string                   `db:"title" json:"title"`
	Description     string                   `db:"description" json:"description"`
	Notes           string                   `db:"notes" json:"notes"`
}

// AppointmentPatch carries only the fields that changed. Nil means untouched.
type AppointmentPatch struct {
	PatientID       *string                   `json:"patient_id,omitempty"`
	DentistID       *string                   `json:"dentist_id,omitempty"`
	ScheduledDate   *time.Time                `json:"scheduled_date,omitempty"`
	DurationMinutes *int                      `json:"duration_minutes,omitempty"`
	AppointmentType *models.AppointmentType   `json:"appointment_type,omitempty"`
	Priority        *models.Priority          `json:"priority,omitempty"`
	Status          *models.AppointmentStatus `json:"status,omitempty"`
	Title           *string                   `json:"title,omitempty"`
	Description     *string                   `json:"description,omitempty"`
	Notes           *string                   `json:"notes,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p AppointmentPatch) IsEmpty() bool {
	return p.PatientID == nil && p.DentistID == nil && p.ScheduledDate == nil &&
		p.DurationMinutes == nil && p.AppointmentType == nil && p.Priority == nil &&
		p.Status == nil && p.Title == nil && p.Description == nil && p.Notes == nil
}


// StatusUpdateRequest sets the status from the detail screen.
type StatusUpdateRequest struct {
	Status models.AppointmentStatus `json:"status" validate:"required,oneof=scheduled confirmed in_progress completed cancelled no_show"`
}

// RescheduleRequest is sent when an event is dragged or resized on the calendar.
type RescheduleRequest struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required"`
}

// AppointmentListQuery captures GET /appointments filters.
type AppointmentListQuery struct {
	DentistID string
	PatientID string
	Statuses  []models.AppointmentStatus
	From      string
	To        string
	Page      int
	PageSize  int
}

// PrioritySuggestion is the advisory result shown next to the priority picker.
type PrioritySuggestion struct {
	Priority models.Priority `json:"priority"`
	Source   string          `json:"source"`
}

// AppointmentMutation is returned by update endpoints.
type AppointmentMutation struct {
	Appointment *models.AppointmentDetail `json:"appointment"`
	Changed     []string                  `json:"changed"`
}
