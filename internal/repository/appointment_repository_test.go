package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dentalcare-api/internal/dto"
	"github.com/noah-isme/dentalcare-api/internal/models"
)

var appointmentDetailRowColumns = []string{"id", "patient_id", "dentist_id", "scheduled_date", "duration_minutes", "appointment_type", "priority", "status", "title", "description", "notes", "created_at", "updated_at", "patient_name", "patient_email", "dentist_name"}

func TestAppointmentCreateAllowsOverlap(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	start := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)
	payload := dto.AppointmentCreatePayload{
		PatientID: "p1", DentistID: "d1", ScheduledDate: start, DurationMinutes: 60,
		AppointmentType: models.AppointmentTypeCleaning, Priority: models.PriorityNormal,
		Status: models.StatusScheduled, Title: "Limpieza",
	}

	mock.ExpectExec("INSERT INTO appointments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO appointments").WillReturnResult(sqlmock.NewResult(1, 1))

	first, err := repo.Create(context.Background(), payload)
	require.NoError(t, err)
	payload.DurationMinutes = 30
	second, err := repo.Create(context.Background(), payload)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, first.ScheduledDate.Equal(second.ScheduledDate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.id = $1 LIMIT 1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	now := time.Now().UTC()
	from := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(appointmentDetailRowColumns).
		AddRow("a1", "p1", "d1", from.Add(9*time.Hour), 30, "cleaning", "normal", "scheduled", "Limpieza", "", "", now, now, "Ana", nil, "Dr. Ruiz")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND a.dentist_id = $1 AND a.status = ANY($2) AND a.scheduled_date >= $3 ORDER BY a.scheduled_date ASC, a.id ASC LIMIT 50 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM appointments a WHERE 1=1 AND a.dentist_id = $1 AND a.status = ANY($2) AND a.scheduled_date >= $3")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, total, err := repo.List(context.Background(), models.AppointmentFilter{
		DentistID: "d1",
		Statuses:  []models.AppointmentStatus{models.StatusScheduled},
		From:      &from,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Ana", items[0].PatientName)
	assert.Equal(t, 30, items[0].DurationMinutes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentApplyPatchOnlyTouchesChangedColumns(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	title := "Revisión anual"
	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET title = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(title, now, "a1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ApplyPatch(context.Background(), "a1", dto.AppointmentPatch{Title: &title}, now)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentApplyPatchMissingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	start := time.Date(2025, 6, 16, 11, 0, 0, 0, time.UTC)
	duration := 45
	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET scheduled_date = $1, duration_minutes = $2, updated_at = $3 WHERE id = $4")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ApplyPatch(context.Background(), "gone", dto.AppointmentPatch{ScheduledDate: &start, DurationMinutes: &duration}, time.Now())
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentApplyEmptyPatchIsNoop(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	require.NoError(t, repo.ApplyPatch(context.Background(), "a1", dto.AppointmentPatch{}, time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM appointments WHERE id = $1")).
		WithArgs("a1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM appointments WHERE id = $1")).
		WithArgs("a1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "a1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "a1"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
