package models

import "time"

// AppointmentType classifies the treatment booked.
type AppointmentType string

const (
	AppointmentTypeConsultation AppointmentType = "consultation"
	AppointmentTypeCleaning     AppointmentType = "cleaning"
	AppointmentTypeFilling      AppointmentType = "filling"
	AppointmentTypeExtraction   AppointmentType = "extraction"
	AppointmentTypeRootCanal    AppointmentType = "root_canal"
	AppointmentTypeCrown        AppointmentType = "crown"
	AppointmentTypeImplant      AppointmentType = "implant"
	AppointmentTypeOrthodontics AppointmentType = "orthodontics"
	AppointmentTypeFollowUp     AppointmentType = "follow_up"
	AppointmentTypeCheckup      AppointmentType = "checkup"
)

// Priority is ordered normal < high < urgent.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank orders priorities for sorting; unknown values rank lowest.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 2
	case PriorityHigh:
		return 1
	default:
		return 0
	}
}

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "scheduled"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
	StatusNoShow     AppointmentStatus = "no_show"
)

// Appointment is a row of the appointments table.
type Appointment struct {
	ID              string            `db:"id" json:"id"`
	PatientID       string            `db:"patient_id" json:"patient_id"`
	DentistID       string            `db:"dentist_id" json:"dentist_id"`
	ScheduledDate   time.Time         `db:"scheduled_date" json:"scheduled_date"`
	DurationMinutes int               `db:"duration_minutes" json:"duration_minutes"`
	AppointmentType AppointmentType   `db:"appointment_type" json:"appointment_type"`
	Priority        Priority          `db:"priority" json:"priority"`
	Status          AppointmentStatus `db:"status" json:"status"`
	Title           string            `db:"title" json:"title"`
	Description     string            `db:"description" json:"description"`
	Notes           string            `db:"notes" json:"notes"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

// End returns the instant the appointment finishes.
func (a Appointment) End() time.Time {
	return a.ScheduledDate.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// AppointmentDetail joins the display names used by calendar and list views.
type AppointmentDetail struct {
	Appointment
	PatientName  string  `db:"patient_name" json:"patient_name"`
	PatientEmail *string `db:"patient_email" json:"-"`
	DentistName  string  `db:"dentist_name" json:"dentist_name"`
}

// AppointmentFilter narrows appointment listings. From is inclusive, To exclusive.
type AppointmentFilter struct {
	DentistID string
	PatientID string
	Statuses  []AppointmentStatus
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}
