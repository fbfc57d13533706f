package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/dentalcare-api/internal/dto"
	"github.com/noah-isme/dentalcare-api/internal/models"
)

const (
	appointmentDetailColumns = `a.id, a.patient_id, a.dentist_id, a.scheduled_date, a.duration_minutes, a.appointment_type, a.priority, a.status, a.title, a.description, a.notes, a.created_at, a.updated_at, p.full_name AS patient_name, p.email AS patient_email, u.full_name AS dentist_name`
	appointmentDetailFrom    = `FROM appointments a JOIN patients p ON p.id = a.patient_id JOIN users u ON u.id = a.dentist_id`
)

// AppointmentRepository persists appointments.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository creates a new instance of AppointmentRepository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// Create inserts the payload as a new appointment. Overlapping rows for the
// same dentist are accepted.
func (r *AppointmentRepository) Create(ctx context.Context, payload dto.AppointmentCreatePayload) (*models.Appointment, error) {
	now := time.Now().UTC()
	appt := &models.Appointment{
		ID:              uuid.NewString(),
		PatientID:       payload.PatientID,
		DentistID:       payload.DentistID,
		ScheduledDate:   payload.ScheduledDate,
		DurationMinutes: payload.DurationMinutes,
		AppointmentType: payload.AppointmentType,
		Priority:        payload.Priority,
		Status:          payload.Status,
		Title:           payload.Title,
		Description:     payload.Description,
		Notes:           payload.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	const query = `INSERT INTO appointments (id, patient_id, dentist_id, scheduled_date, duration_minutes, appointment_type, priority, status, title, description, notes, created_at, updated_at) VALUES (:id, :patient_id, :dentist_id, :scheduled_date, :duration_minutes, :appointment_type, :priority, :status, :title, :description, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, appt); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return appt, nil
}

// FindByID returns an appointment with patient and dentist names.
func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*models.AppointmentDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE a.id = $1 LIMIT 1", appointmentDetailColumns, appointmentDetailFrom)
	var detail models.AppointmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find appointment: %w", err)
	}
	return &detail, nil
}

func buildAppointmentWhere(filter models.AppointmentFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.DentistID != "" {
		args = append(args, filter.DentistID)
		conditions = append(conditions, fmt.Sprintf("a.dentist_id = $%d", len(args)))
	}
	if filter.PatientID != "" {
		args = append(args, filter.PatientID)
		conditions = append(conditions, fmt.Sprintf("a.patient_id = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		conditions = append(conditions, fmt.Sprintf("a.status = ANY($%d)", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("a.scheduled_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("a.scheduled_date < $%d", len(args)))
	}

	where := "WHERE 1=1"
	if len(conditions) > 0 {
		where += " AND " + strings.Join(conditions, " AND ")
	}
	return where, args
}

// List returns a page of appointments ordered by start time, with the total count.
func (r *AppointmentRepository) List(ctx context.Context, filter models.AppointmentFilter) ([]models.AppointmentDetail, int, error) {
	where, args := buildAppointmentWhere(filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s %s ORDER BY a.scheduled_date ASC, a.id ASC LIMIT %d OFFSET %d", appointmentDetailColumns, appointmentDetailFrom, where, pageSize, offset)
	var items []models.AppointmentDetail
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM appointments a %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}
	return items, total, nil
}

// ListRange returns every appointment starting in [from, to), unpaged, for
// calendar and agenda views.
func (r *AppointmentRepository) ListRange(ctx context.Context, from, to time.Time, dentistID string) ([]models.AppointmentDetail, error) {
	where, args := buildAppointmentWhere(models.AppointmentFilter{DentistID: dentistID, From: &from, To: &to})
	query := fmt.Sprintf("SELECT %s %s %s ORDER BY a.scheduled_date ASC, a.id ASC", appointmentDetailColumns, appointmentDetailFrom, where)
	var items []models.AppointmentDetail
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list appointments in range: %w", err)
	}
	return items, nil
}

// ApplyPatch updates only the columns present in patch. It returns
// sql.ErrNoRows when the appointment does not exist.
func (r *AppointmentRepository) ApplyPatch(ctx context.Context, id string, patch dto.AppointmentPatch, updatedAt time.Time) error {
	var sets []string
	var args []interface{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.PatientID != nil {
		add("patient_id", *patch.PatientID)
	}
	if patch.DentistID != nil {
		add("dentist_id", *patch.DentistID)
	}
	if patch.ScheduledDate != nil {
		add("scheduled_date", *patch.ScheduledDate)
	}
	if patch.DurationMinutes != nil {
		add("duration_minutes", *patch.DurationMinutes)
	}
	if patch.AppointmentType != nil {
		add("appointment_type", *patch.AppointmentType)
	}
	if patch.Priority != nil {
		add("priority", *patch.Priority)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	if len(sets) == 0 {
		return nil
	}
	add("updated_at", updatedAt)

	args = append(args, id)
	query := fmt.Sprintf("UPDATE appointments SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	return requireAffected(res)
}

// Delete removes an appointment. It returns sql.ErrNoRows when nothing was deleted.
func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM appointments WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
