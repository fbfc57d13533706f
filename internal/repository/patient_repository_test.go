package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dentalcare-api/internal/models"
)

var patientRowColumns = []string{"id", "full_name", "phone", "email", "birth_date", "notes", "active", "created_at", "updated_at"}

func TestPatientSearch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPatientRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(patientRowColumns).
		AddRow("p1", "Ana Pérez", "+34612345678", nil, nil, "", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, phone, email, birth_date, notes, active, created_at, updated_at FROM patients WHERE (LOWER(full_name) LIKE $1 OR LOWER(COALESCE(email, '')) LIKE $1 OR COALESCE(phone, '') LIKE $1) AND active = TRUE ORDER BY full_name ASC LIMIT 10")).
		WithArgs("%ana%").
		WillReturnRows(rows)

	patients, err := repo.Search(context.Background(), models.PatientFilter{Search: " Ana ", ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, patients, 1)
	require.NotNil(t, patients[0].Phone)
	assert.Equal(t, "+34612345678", *patients[0].Phone)
	assert.Nil(t, patients[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPatientRepository(db)

	mock.ExpectExec("INSERT INTO patients").WillReturnResult(sqlmock.NewResult(1, 1))

	p := &models.Patient{FullName: "Luis Gómez", Active: true}
	require.NoError(t, repo.Create(context.Background(), p))
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
