package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/dentalcare-api/internal/dto"
	"github.com/noah-isme/dentalcare-api/internal/models"
	appErrors "github.com/noah-isme/dentalcare-api/pkg/errors"
)

// Clock returns the current instant. Services take one so "today" can be pinned in tests.
type Clock func() time.Time

// SlotOptions describes the bookable clinic day.
type SlotOptions struct {
	OpenHour    int
	CloseHour   int
	StepMinutes int
}

// DefaultSlotOptions is 07:00 to 20:00 in 15 minute steps.
func DefaultSlotOptions() SlotOptions {
	return SlotOptions{OpenHour: 7, CloseHour: 20, StepMinutes: 15}
}

func (o SlotOptions) normalized() SlotOptions {
	if o.StepMinutes <= 0 || o.OpenHour < 0 || o.CloseHour > 23 || o.CloseHour < o.OpenHour {
		return DefaultSlotOptions()
	}
	return o
}

// GenerateTimeSlots lists every start time in [open:00, close:00]. The closing
// hour itself is a slot; nothing after it is.
func GenerateTimeSlots(opts SlotOptions) []dto.TimeSlot {
	opts = opts.normalized()
	first := opts.OpenHour * 60
	last := opts.CloseHour * 60

	slots := make([]dto.TimeSlot, 0, (last-first)/opts.StepMinutes+1)
	for m := first; m <= last; m += opts.StepMinutes {
		label := formatClock(m)
		slots = append(slots, dto.TimeSlot{Value: label, Display: label})
	}
	return slots
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseLocalDate reads "YYYY-MM-DD" as midnight of that calendar day in loc.
// The components are read as integers so no UTC conversion can shift the day.
func ParseLocalDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	parts := strings.Split(strings.TrimSpace(raw), "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 ||
		!allDigits(parts[0]+parts[1]+parts[2]) {
		return time.Time{}, fmt.Errorf("date %q is not YYYY-MM-DD", raw)
	}
	y, errY := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	d, errD := strconv.Atoi(parts[2])
	if errY != nil || errM != nil || errD != nil {
		return time.Time{}, fmt.Errorf("date %q is not YYYY-MM-DD", raw)
	}

	date := time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc)
	// time.Date normalises 2025-02-30 to March; reject instead.
	if date.Year() != y || int(date.Month()) != m || date.Day() != d {
		return time.Time{}, fmt.Errorf("date %q does not exist", raw)
	}
	return date, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// StartOfDay truncates t to midnight of its calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// IsBookableDate reports whether raw is today or later in loc. Time of day is
// ignored on both sides. Malformed input is never bookable.
func IsBookableDate(raw string, today time.Time, loc *time.Location) bool {
	candidate, err := ParseLocalDate(raw, loc)
	if err != nil {
		return false
	}
	return !candidate.Before(StartOfDay(today, loc))
}

// ParseClock reads "HH:MM" in 24 hour form and returns minutes since midnight.
func ParseClock(hhmm string) (int, error) {
	if len(hhmm) != 5 || hhmm[2] != ':' || !allDigits(hhmm[:2]+hhmm[3:]) {
		return 0, fmt.Errorf("time %q is not HH:MM", hhmm)
	}
	h, errH := strconv.Atoi(hhmm[:2])
	m, errM := strconv.Atoi(hhmm[3:])
	if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time %q is not HH:MM", hhmm)
	}
	return h*60 + m, nil
}

// IsBookableTime reports whether hhmm is one of the generated slots.
func IsBookableTime(hhmm string, opts SlotOptions) bool {
	minutes, err := ParseClock(hhmm)
	if err != nil {
		return false
	}
	opts = opts.normalized()
	first := opts.OpenHour * 60
	if minutes < first || minutes > opts.CloseHour*60 {
		return false
	}
	return (minutes-first)%opts.StepMinutes == 0
}

// CombineDateTime builds the clinic-local instant for a form's date and time.
func CombineDateTime(date, hhmm string, loc *time.Location) (time.Time, error) {
	day, err := ParseLocalDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	minutes, err := ParseClock(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, day.Location()), nil
}

var priorityKeywords = []string{"dolor", "urgente"}

// SuggestPriority is an advisory guess from free-text notes: any mention of
// pain or urgency suggests high. It never suggests urgent.
func SuggestPriority(notes string) models.Priority {
	lower := strings.ToLower(notes)
	for _, kw := range priorityKeywords {
		if strings.Contains(lower, kw) {
			return models.PriorityHigh
		}
	}
	return models.PriorityNormal
}

// Priority sources reported alongside a resolved priority.
const (
	PrioritySourceUser      = "user"
	PrioritySourceSuggested = "suggested"
)

// ResolvePriority keeps an explicit selection and only falls back to the suggestion when none was made.
func ResolvePriority(selected models.Priority, notes string) (models.Priority, string) {
	if selected != "" {
		return selected, PrioritySourceUser
	}
	return SuggestPriority(notes), PrioritySourceSuggested
}

// StatusColor is the background/border pair for a status.
type StatusColor struct {
	Background string
	Border     string
}

// StatusColors maps each status to its calendar colors.
var StatusColors = map[models.AppointmentStatus]StatusColor{
	models.StatusScheduled:  {Background: "#3b82f6", Border: "#2563eb"},
	models.StatusConfirmed:  {Background: "#10b981", Border: "#059669"},
	models.StatusInProgress: {Background: "#f59e0b", Border: "#d97706"},
	models.StatusCompleted:  {Background: "#6b7280", Border: "#4b5563"},
	models.StatusCancelled:  {Background: "#ef4444", Border: "#dc2626"},
	models.StatusNoShow:     {Background: "#8b5cf6", Border: "#7c3aed"},
}

// ProjectCalendarEvent maps an appointment onto the calendar widget.
func ProjectCalendarEvent(a models.AppointmentDetail) dto.CalendarEvent {
	colors, ok := StatusColors[a.Status]
	if !ok {
		colors = StatusColors[models.StatusScheduled]
	}
	return dto.CalendarEvent{
		ID:              a.ID,
		Title:           fmt.Sprintf("%s - %s", a.PatientName, a.Title),
		Start:           a.ScheduledDate,
		End:             a.End(),
		BackgroundColor: colors.Background,
		BorderColor:     colors.Border,
		ExtendedProps: dto.CalendarEventProps{
			AppointmentID:   a.ID,
			PatientID:       a.PatientID,
			PatientName:     a.PatientName,
			DentistID:       a.DentistID,
			Status:          a.Status,
			Priority:        a.Priority,
			AppointmentType: a.AppointmentType,
			DurationMinutes: a.DurationMinutes,
			Description:     a.Description,
			Notes:           a.Notes,
		},
	}
}

// ProjectCalendarEvents projects a list, preserving order.
func ProjectCalendarEvents(items []models.AppointmentDetail) []dto.CalendarEvent {
	events := make([]dto.CalendarEvent, 0, len(items))
	for _, item := range items {
		events = append(events, ProjectCalendarEvent(item))
	}
	return events
}

// RescheduleFromCalendar turns a drag or resize into a patch holding only the
// new start and duration. Overlaps with other appointments are allowed.
func RescheduleFromCalendar(start, end time.Time) (dto.AppointmentPatch, error) {
	if start.IsZero() || end.IsZero() {
		return dto.AppointmentPatch{}, appErrors.Clone(appErrors.ErrValidation, "start and end are required")
	}
	duration := int(end.Sub(start) / time.Minute)
	if duration <= 0 {
		return dto.AppointmentPatch{}, appErrors.Clone(appErrors.ErrValidation, "end must be at least one minute after start")
	}
	return dto.AppointmentPatch{ScheduledDate: &start, DurationMinutes: &duration}, nil
}

var conventionalTransitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.StatusScheduled:  {models.StatusConfirmed, models.StatusInProgress, models.StatusCancelled, models.StatusNoShow},
	models.StatusConfirmed:  {models.StatusInProgress, models.StatusCancelled, models.StatusNoShow},
	models.StatusInProgress: {models.StatusCompleted},
}

// IsConventionalTransition reports whether from -> to follows the usual
// lifecycle. Any transition is accepted; this only decides whether to warn.
func IsConventionalTransition(from, to models.AppointmentStatus) bool {
	if from == to {
		return true
	}
	for _, next := range conventionalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// BuildAppointmentPatch compares an edit form with the stored appointment and
// keeps only what changed. scheduled_date is included only when the date or
// time differs; empty priority/status on the form mean "leave as is".
func BuildAppointmentPatch(original models.Appointment, form dto.AppointmentForm, loc *time.Location) (dto.AppointmentPatch, error) {
	if loc == nil {
		loc = time.Local
	}
	var patch dto.AppointmentPatch

	current := original.ScheduledDate.In(loc)
	if form.Date != current.Format("2006-01-02") || form.Time != current.Format("15:04") {
		scheduled, err := CombineDateTime(form.Date, form.Time, loc)
		if err != nil {
			return dto.AppointmentPatch{}, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		patch.ScheduledDate = &scheduled
	}
	if form.DurationMinutes != original.DurationMinutes {
		d := form.DurationMinutes
		patch.DurationMinutes = &d
	}
	if form.PatientID != original.PatientID {
		v := form.PatientID
		patch.PatientID = &v
	}
	if form.DentistID != original.DentistID {
		v := form.DentistID
		patch.DentistID = &v
	}
	if form.AppointmentType != original.AppointmentType {
		v := form.AppointmentType
		patch.AppointmentType = &v
	}
	if form.Priority != "" && form.Priority != original.Priority {
		v := form.Priority
		patch.Priority = &v
	}
	if form.Status != "" && form.Status != original.Status {
		v := form.Status
		patch.Status = &v
	}
	if form.Title != original.Title {
		v := form.Title
		patch.Title = &v
	}
	if form.Description != original.Description {
		v := form.Description
		patch.Description = &v
	}
	if form.Notes != original.Notes {
		v := form.Notes
		patch.Notes = &v
	}
	return patch, nil
}

// RegisterSchedulingValidations adds the "hhmm" tag used by appointment forms.
func RegisterSchedulingValidations(v *validator.Validate) error {
	return v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := ParseClock(fl.Field().String())
		return err == nil
	})
}
