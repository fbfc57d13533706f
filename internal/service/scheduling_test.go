package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dentalcare-api/internal/dto"
	"github.com/noah-isme/dentalcare-api/internal/models"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestGenerateTimeSlotsCoversClinicDay(t *testing.T) {
	slots := GenerateTimeSlots(DefaultSlotOptions())

	require.Len(t, slots, 53)
	assert.Equal(t, "07:00", slots[0].Value)
	assert.Equal(t, "20:00", slots[len(slots)-1].Value)

	seen := map[string]bool{}
	prev := -1
	for _, s := range slots {
		assert.Equal(t, s.Value, s.Display)
		m, err := ParseClock(s.Value)
		require.NoError(t, err)
		if prev >= 0 {
			assert.Equal(t, 15, m-prev)
		}
		assert.False(t, seen[s.Value], "duplicate slot %s", s.Value)
		seen[s.Value] = true
		prev = m
	}

	assert.Equal(t, slots, GenerateTimeSlots(DefaultSlotOptions()))
}

func TestGenerateTimeSlotsFallsBackOnInvalidOptions(t *testing.T) {
	assert.Len(t, GenerateTimeSlots(SlotOptions{OpenHour: 9, CloseHour: 8, StepMinutes: 15}), 53)
	assert.Len(t, GenerateTimeSlots(SlotOptions{OpenHour: 7, CloseHour: 20}), 53)
	assert.Len(t, GenerateTimeSlots(SlotOptions{OpenHour: 9, CloseHour: 10, StepMinutes: 30}), 3)
}

func TestIsBookableDateIgnoresTimeOfDay(t *testing.T) {
	loc := mustLoc(t, "Europe/Madrid")
	for _, hour := range []int{0, 9, 23} {
		today := time.Date(2025, 6, 15, hour, 59, 59, 0, loc)
		assert.True(t, IsBookableDate("2025-06-15", today, loc), "hour %d", hour)
		assert.False(t, IsBookableDate("2025-06-14", today, loc), "hour %d", hour)
		assert.True(t, IsBookableDate("2025-06-16", today, loc), "hour %d", hour)
	}
}

func TestIsBookableDateUsesClinicCalendarForNow(t *testing.T) {
	loc := mustLoc(t, "America/Mexico_City")
	// 03:00 UTC on the 16th is still the 15th in Mexico City.
	now := time.Date(2025, 6, 16, 3, 0, 0, 0, time.UTC)
	assert.True(t, IsBookableDate("2025-06-15", now, loc))
}

func TestIsBookableDateRejectsMalformed(t *testing.T) {
	today := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	for _, raw := range []string{"", "15/06/2025", "2025-6-15", "2025-02-30", "abcd-ef-gh", "2025-06-15T00:00:00Z"} {
		assert.False(t, IsBookableDate(raw, today, time.UTC), raw)
	}
}

func TestParseLocalDateKeepsCalendarDay(t *testing.T) {
	for _, name := range []string{"UTC", "Pacific/Kiritimati", "Pacific/Pago_Pago", "America/Los_Angeles", "Asia/Tokyo"} {
		loc := mustLoc(t, name)
		got, err := ParseLocalDate("2025-01-01", loc)
		require.NoError(t, err, name)
		assert.Equal(t, 2025, got.Year(), name)
		assert.Equal(t, time.January, got.Month(), name)
		assert.Equal(t, 1, got.Day(), name)
		assert.Equal(t, 0, got.Hour(), name)
		assert.Equal(t, loc, got.Location(), name)
	}
}

func TestIsBookableTime(t *testing.T) {
	opts := DefaultSlotOptions()
	assert.True(t, IsBookableTime("07:00", opts))
	assert.True(t, IsBookableTime("20:00", opts))
	assert.True(t, IsBookableTime("13:45", opts))
	assert.False(t, IsBookableTime("20:15", opts))
	assert.False(t, IsBookableTime("06:45", opts))
	assert.False(t, IsBookableTime("09:10", opts))
	assert.False(t, IsBookableTime("9:00", opts))
}

func TestSuggestPriority(t *testing.T) {
	assert.Equal(t, models.PriorityHigh, SuggestPriority("El paciente tiene mucho dolor"))
	assert.Equal(t, models.PriorityHigh, SuggestPriority("Cita URGENTE"))
	assert.Equal(t, models.PriorityNormal, SuggestPriority("Revisión de rutina"))
	assert.Equal(t, models.PriorityNormal, SuggestPriority(""))
}

func TestResolvePriorityKeepsUserChoice(t *testing.T) {
	p, source := ResolvePriority(models.PriorityUrgent, "Revisión de rutina")
	assert.Equal(t, models.PriorityUrgent, p)
	assert.Equal(t, PrioritySourceUser, source)

	p, _ = ResolvePriority(models.PriorityNormal, "mucho dolor")
	assert.Equal(t, models.PriorityNormal, p)

	p, source = ResolvePriority("", "mucho dolor")
	assert.Equal(t, models.PriorityHigh, p)
	assert.Equal(t, PrioritySourceSuggested, source)
}

func TestProjectCalendarEvent(t *testing.T) {
	start := time.Date(2025, 6, 16, 9, 30, 0, 0, time.UTC)
	detail := models.AppointmentDetail{
		Appointment: models.Appointment{
			ID: "a1", PatientID: "p1", DentistID: "d1",
			ScheduledDate: start, DurationMinutes: 30,
			Status: models.StatusConfirmed, Priority: models.PriorityHigh,
			AppointmentType: models.AppointmentTypeCleaning, Title: "Limpieza",
		},
		PatientName: "Ana Pérez",
	}

	ev := ProjectCalendarEvent(detail)
	assert.Equal(t, 30*time.Minute, ev.End.Sub(ev.Start))
	assert.Equal(t, "Ana Pérez - Limpieza", ev.Title)
	assert.Equal(t, "#10b981", ev.BackgroundColor)
	assert.Equal(t, "#059669", ev.BorderColor)
	assert.Equal(t, "a1", ev.ExtendedProps.AppointmentID)
	assert.Equal(t, 30, ev.ExtendedProps.DurationMinutes)
}

func TestStatusColorsAreDistinct(t *testing.T) {
	require.Len(t, StatusColors, 6)
	seen := map[string]bool{}
	for _, c := range StatusColors {
		assert.False(t, seen[c.Background])
		seen[c.Background] = true
	}
}

func TestRescheduleFromCalendar(t *testing.T) {
	start := time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC)
	patch, err := RescheduleFromCalendar(start, start.Add(45*time.Minute))
	require.NoError(t, err)
	require.NotNil(t, patch.ScheduledDate)
	require.NotNil(t, patch.DurationMinutes)
	assert.Equal(t, 45, *patch.DurationMinutes)
	assert.True(t, start.Equal(*patch.ScheduledDate))

	raw, err := json.Marshal(patch)
	require.NoError(t, err)
	var keys map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &keys))
	assert.Len(t, keys, 2)

	_, err = RescheduleFromCalendar(start, start)
	assert.Error(t, err)
}

func editForm(a models.Appointment, loc *time.Location) dto.AppointmentForm {
	local := a.ScheduledDate.In(loc)
	return dto.AppointmentForm{
		PatientID:       a.PatientID,
		DentistID:       a.DentistID,
		Date:            local.Format("2006-01-02"),
		Time:            local.Format("15:04"),
		DurationMinutes: a.DurationMinutes,
		AppointmentType: a.AppointmentType,
		Priority:        a.Priority,
		Status:          a.Status,
		Title:           a.Title,
		Description:     a.Description,
		Notes:           a.Notes,
	}
}

func TestBuildAppointmentPatchIsMinimal(t *testing.T) {
	loc := mustLoc(t, "Europe/Madrid")
	original := models.Appointment{
		ID: "a1", PatientID: "p1", DentistID: "d1",
		ScheduledDate:   time.Date(2025, 6, 16, 9, 0, 0, 0, loc),
		DurationMinutes: 30, AppointmentType: models.AppointmentTypeCheckup,
		Priority: models.PriorityNormal, Status: models.StatusScheduled,
		Title: "Revisión",
	}

	unchanged, err := BuildAppointmentPatch(original, editForm(original, loc), loc)
	require.NoError(t, err)
	assert.True(t, unchanged.IsEmpty())

	titleOnly := editForm(original, loc)
	titleOnly.Title = "Revisión anual"
	patch, err := BuildAppointmentPatch(original, titleOnly, loc)
	require.NoError(t, err)
	assert.Nil(t, patch.ScheduledDate)
	assert.Nil(t, patch.DurationMinutes)
	require.NotNil(t, patch.Title)
	assert.Equal(t, "Revisión anual", *patch.Title)

	timeOnly := editForm(original, loc)
	timeOnly.Time = "10:15"
	patch, err = BuildAppointmentPatch(original, timeOnly, loc)
	require.NoError(t, err)
	require.NotNil(t, patch.ScheduledDate)
	assert.True(t, patch.ScheduledDate.Equal(time.Date(2025, 6, 16, 10, 15, 0, 0, loc)))
	assert.Nil(t, patch.DurationMinutes)
	assert.Nil(t, patch.Title)
	assert.Nil(t, patch.Status)
}

func TestBuildAppointmentPatchComparesInClinicZone(t *testing.T) {
	loc := mustLoc(t, "America/Bogota")
	// Stored in UTC; 01:00 UTC on the 17th is 20:00 on the 16th in Bogotá.
	original := models.Appointment{
		ScheduledDate:   time.Date(2025, 6, 17, 1, 0, 0, 0, time.UTC),
		DurationMinutes: 15,
	}
	form := editForm(original, loc)
	assert.Equal(t, "2025-06-16", form.Date)

	patch, err := BuildAppointmentPatch(original, form, loc)
	require.NoError(t, err)
	assert.True(t, patch.IsEmpty())
}

func TestIsConventionalTransition(t *testing.T) {
	assert.True(t, IsConventionalTransition(models.StatusScheduled, models.StatusConfirmed))
	assert.True(t, IsConventionalTransition(models.StatusConfirmed, models.StatusNoShow))
	assert.True(t, IsConventionalTransition(models.StatusInProgress, models.StatusCompleted))
	assert.False(t, IsConventionalTransition(models.StatusCompleted, models.StatusScheduled))
	assert.False(t, IsConventionalTransition(models.StatusCancelled, models.StatusConfirmed))
}

func TestHHMMValidationTag(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterSchedulingValidations(v))

	type probe struct {
		At string `validate:"hhmm"`
	}
	assert.NoError(t, v.Struct(probe{At: "09:45"}))
	assert.Error(t, v.Struct(probe{At: "9:45"}))
	assert.Error(t, v.Struct(probe{At: "24:00"}))
}
