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

	"github.com/noah-isme/dentalcare-api/internal/models"
)

const patientColumns = `id, full_name, phone, email, birth_date, notes, active, created_at, updated_at`

// PatientRepository provides lookup and registration of patients.
type PatientRepository struct {
	db *sqlx.DB
}

// NewPatientRepository creates a new instance of PatientRepository.
func NewPatientRepository(db *sqlx.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// FindByID returns a patient by identifier.
func (r *PatientRepository) FindByID(ctx context.Context, id string) (*models.Patient, error) {
	query := fmt.Sprintf("SELECT %s FROM patients WHERE id = $1 LIMIT 1", patientColumns)
	var patient models.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find patient: %w", err)
	}
	return &patient, nil
}

// Search matches name, phone or email, active patients first, by name.
func (r *PatientRepository) Search(ctx context.Context, filter models.PatientFilter) ([]models.Patient, error) {
	var conditions []string
	var args []interface{}

	if term := strings.TrimSpace(filter.Search); term != "" {
		args = append(args, "%"+strings.ToLower(term)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(COALESCE(email, '')) LIKE $%d OR COALESCE(phone, '') LIKE $%d)", n, n, n))
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "active = TRUE")
	}

	limit := filter.Limit
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	query := fmt.Sprintf("SELECT %s FROM patients", patientColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY full_name ASC LIMIT %d", limit)

	var patients []models.Patient
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, fmt.Errorf("search patients: %w", err)
	}
	return patients, nil
}

// Create inserts a new patient.
func (r *PatientRepository) Create(ctx context.Context, patient *models.Patient) error {
	if patient.ID == "" {
		patient.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if patient.CreatedAt.IsZero() {
		patient.CreatedAt = now
	}
	patient.UpdatedAt = now

	const query = `INSERT INTO patients (id, full_name, phone, email, birth_date, notes, active, created_at, updated_at) VALUES (:id, :full_name, :phone, :email, :birth_date, :notes, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, patient); err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	return nil
}
