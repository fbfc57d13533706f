package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dentalcare-api/internal/dto"
	"github.com/noah-isme/dentalcare-api/internal/models"
	appErrors "github.com/noah-isme/dentalcare-api/pkg/errors"
	"github.com/noah-isme/dentalcare-api/pkg/phone"
)

type patientStore interface {
	FindByID(ctx context.Context, id string) (*models.Patient, error)
	Search(ctx context.Context, filter models.PatientFilter) ([]models.Patient, error)
	Create(ctx context.Context, patient *models.Patient) error
}

type phoneNormalizer interface {
	Normalize(raw string) (string, error)
}

// PatientService backs the patient picker on the appointment form.
type PatientService struct {
	repo      patientStore
	phones    phoneNormalizer
	validator *validator.Validate
	logger    *zap.Logger
	clock     Clock
}

// NewPatientService constructs a PatientService.
func NewPatientService(repo patientStore, phones phoneNormalizer, validate *validator.Validate, logger *zap.Logger) *PatientService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if phones == nil {
		phones = phone.NewNormalizer("")
	}
	return &PatientService{repo: repo, phones: phones, validator: validate, logger: logger, clock: time.Now}
}

// Search returns active patients matching the term. Blank terms return nothing.
func (s *PatientService) Search(ctx context.Context, q dto.PatientSearchQuery) ([]models.Patient, error) {
	term := strings.TrimSpace(q.Search)
	if term == "" {
		return []models.Patient{}, nil
	}
	patients, err := s.repo.Search(ctx, models.PatientFilter{Search: term, ActiveOnly: true, Limit: q.Limit})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search patients")
	}
	if patients == nil {
		patients = []models.Patient{}
	}
	return patients, nil
}

// Get returns a single patient.
func (s *PatientService) Get(ctx context.Context, id string) (*models.Patient, error) {
	patient, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if appErrors.IsMissingRow(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "patient not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load patient")
	}
	return patient, nil
}

// Create registers a patient. Phones are stored in E.164 and emails lower case.
func (s *PatientService) Create(ctx context.Context, req dto.CreatePatientRequest) (*models.Patient, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	patient := &models.Patient{
		FullName: strings.TrimSpace(req.FullName),
		Notes:    strings.TrimSpace(req.Notes),
		Active:   true,
	}

	if raw := strings.TrimSpace(req.Phone); raw != "" {
		normalized, err := s.phones.Normalize(raw)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "phone is not a valid phone number")
		}
		patient.Phone = &normalized
	}
	if mail := strings.ToLower(strings.TrimSpace(req.Email)); mail != "" {
		patient.Email = &mail
	}
	if req.BirthDate != "" {
		born, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil || born.After(s.clock()) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "birth_date must be a past date")
		}
		patient.BirthDate = &born
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, appErrors.FromStore(err, "failed to create patient")
	}
	s.logger.Info("patient created", zap.String("patient_id", patient.ID))
	return patient, nil
}
