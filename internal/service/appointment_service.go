package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dentalcare-api/internal/dto"
	"github.com/noah-isme/dentalcare-api/internal/models"
	appErrors "github.com/noah-isme/dentalcare-api/pkg/errors"
)

const maxCalendarRange = 93 * 24 * time.Hour

type appointmentStore interface {
	Create(ctx context.Context, payload dto.AppointmentCreatePayload) (*models.Appointment, error)
	FindByID(ctx context.Context, id string) (*models.AppointmentDetail, error)
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.AppointmentDetail, int, error)
	ListRange(ctx context.Context, from, to time.Time, dentistID string) ([]models.AppointmentDetail, error)
	ApplyPatch(ctx context.Context, id string, patch dto.AppointmentPatch, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

type patientFinder interface {
	FindByID(ctx context.Context, id string) (*models.Patient, error)
}

type dentistFinder interface {
	FindDentist(ctx context.Context, id string) (*models.User, error)
}

type appointmentNotifier interface {
	Notify(kind string, detail models.AppointmentDetail)
}

// AppointmentServiceConfig carries the clinic calendar settings.
type AppointmentServiceConfig struct {
	Location    *time.Location
	Slots       SlotOptions
	CalendarTTL time.Duration
}

// AppointmentService implements booking, editing and calendar projection.
type AppointmentService struct {
	repo      appointmentStore
	patients  patientFinder
	dentists  dentistFinder
	cache     *CacheService
	notifier  appointmentNotifier
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	clock     Clock
	cfg       AppointmentServiceConfig
}

// NewAppointmentService wires the service. cache, notifier and metrics may be nil.
func NewAppointmentService(
	repo appointmentStore,
	patients patientFinder,
	dentists dentistFinder,
	cache *CacheService,
	notifier appointmentNotifier,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	clock Clock,
	cfg AppointmentServiceConfig,
) *AppointmentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	cfg.Slots = cfg.Slots.normalized()
	return &AppointmentService{
		repo:      repo,
		patients:  patients,
		dentists:  dentists,
		cache:     cache,
		notifier:  notifier,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		clock:     clock,
		cfg:       cfg,
	}
}

// Slots lists the clinic day's slots; with a date it also reports whether that day is bookable.
func (s *AppointmentService) Slots(rawDate string) (*dto.SlotsResponse, error) {
	resp := &dto.SlotsResponse{Slots: GenerateTimeSlots(s.cfg.Slots)}
	if rawDate == "" {
		return resp, nil
	}
	if _, err := ParseLocalDate(rawDate, s.cfg.Location); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be a valid YYYY-MM-DD date")
	}
	bookable := IsBookableDate(rawDate, s.clock(), s.cfg.Location)
	resp.Date = rawDate
	resp.Bookable = &bookable
	return resp, nil
}

// ValidateDate reports whether rawDate may be booked. Malformed dates are simply not bookable.
func (s *AppointmentService) ValidateDate(rawDate string) dto.DateValidation {
	return dto.DateValidation{Date: rawDate, Bookable: IsBookableDate(rawDate, s.clock(), s.cfg.Location)}
}

// SuggestPriority returns the advisory priority for the given notes.
func (s *AppointmentService) SuggestPriority(notes string) dto.PrioritySuggestion {
	return dto.PrioritySuggestion{Priority: SuggestPriority(notes), Source: PrioritySourceSuggested}
}

// Get returns an appointment with display names.
func (s *AppointmentService) Get(ctx context.Context, id string) (*models.AppointmentDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if appErrors.IsMissingRow(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, appErrors.MsgAppointmentGone)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}
	return detail, nil
}

// List returns a page of appointments. From and To are clinic-local dates, both inclusive.
func (s *AppointmentService) List(ctx context.Context, q dto.AppointmentListQuery) ([]models.AppointmentDetail, *models.Pagination, error) {
	filter := models.AppointmentFilter{
		DentistID: q.DentistID,
		PatientID: q.PatientID,
		Statuses:  q.Statuses,
		Page:      q.Page,
		PageSize:  q.PageSize,
	}
	if q.From != "" {
		from, err := ParseLocalDate(q.From, s.cfg.Location)
		if err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "from must be a valid YYYY-MM-DD date")
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := ParseLocalDate(q.To, s.cfg.Location)
		if err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "to must be a valid YYYY-MM-DD date")
		}
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}
	if filter.From != nil && filter.To != nil && !filter.To.After(*filter.From) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 200 {
		filter.PageSize = 50
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.FromStore(err, "failed to list appointments")
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Create validates a booking form and stores the appointment. Another
// appointment for the same dentist at the same time does not block it.
func (s *AppointmentService) Create(ctx context.Context, form dto.AppointmentForm, actor *models.JWTClaims) (*models.AppointmentDetail, error) {
	if err := s.validator.Struct(form); err != nil {
		return nil, validationError(err)
	}
	scheduled, err := s.checkSchedule(form.Date, form.Time)
	if err != nil {
		return nil, err
	}
	if err := s.ensurePatient(ctx, form.PatientID); err != nil {
		return nil, err
	}
	if err := s.ensureDentist(ctx, form.DentistID); err != nil {
		return nil, err
	}

	priority, source := ResolvePriority(form.Priority, form.Notes)
	status := form.Status
	if status == "" {
		status = models.StatusScheduled
	}

	created, err := s.repo.Create(ctx, dto.AppointmentCreatePayload{
		PatientID:       form.PatientID,
		DentistID:       form.DentistID,
		ScheduledDate:   scheduled,
		DurationMinutes: form.DurationMinutes,
		AppointmentType: form.AppointmentType,
		Priority:        priority,
		Status:          status,
		Title:           form.Title,
		Description:     form.Description,
		Notes:           form.Notes,
	})
	if err != nil {
		return nil, appErrors.FromStore(err, "failed to create appointment")
	}

	s.metrics.RecordPriority(priority, source)
	s.logger.Info("appointment created",
		zap.String("appointment_id", created.ID),
		zap.String("dentist_id", created.DentistID),
		zap.String("priority", string(priority)),
		zap.String("priority_source", source),
		zap.String("actor_id", actorID(actor)),
	)

	detail, err := s.afterMutation(ctx, created.ID, MutationCreate)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.Notify(NoticeAppointmentCreated, *detail)
	}
	return detail, nil
}

// Update applies an edit form as a minimal patch.
func (s *AppointmentService) Update(ctx context.Context, id string, form dto.AppointmentForm, actor *models.JWTClaims) (*dto.AppointmentMutation, error) {
	current, err := s.loadForWrite(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if err := s.validateEdit(form, current); err != nil {
		return nil, validationError(err)
	}

	patch, err := BuildAppointmentPatch(current.Appointment, form, s.cfg.Location)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return &dto.AppointmentMutation{Appointment: current, Changed: []string{}}, nil
	}
	if patch.ScheduledDate != nil {
		if _, err := s.checkSchedule(form.Date, form.Time); err != nil {
			return nil, err
		}
	}
	if patch.PatientID != nil {
		if err := s.ensurePatient(ctx, *patch.PatientID); err != nil {
			return nil, err
		}
	}
	if patch.DentistID != nil {
		if err := s.ensureDentist(ctx, *patch.DentistID); err != nil {
			return nil, err
		}
		if actor != nil && actor.Role == models.RoleDentist && *patch.DentistID != actor.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, appErrors.MsgAppointmentForbidden)
		}
	}
	if patch.Status != nil {
		s.warnUnconventional(current, *patch.Status, actor)
	}

	detail, err := s.applyPatch(ctx, current.ID, patch, MutationUpdate)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil && *patch.Status == models.StatusCancelled && s.notifier != nil {
		s.notifier.Notify(NoticeAppointmentCancelled, *detail)
	}
	return &dto.AppointmentMutation{Appointment: detail, Changed: changedFields(patch)}, nil
}

// UpdateStatus sets any status; unusual transitions are only logged.
func (s *AppointmentService) UpdateStatus(ctx context.Context, id string, req dto.StatusUpdateRequest, actor *models.JWTClaims) (*models.AppointmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	current, err := s.loadForWrite(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if current.Status == req.Status {
		return current, nil
	}
	s.warnUnconventional(current, req.Status, actor)

	status := req.Status
	detail, err := s.applyPatch(ctx, current.ID, dto.AppointmentPatch{Status: &status}, MutationStatus)
	if err != nil {
		return nil, err
	}
	if status == models.StatusCancelled && s.notifier != nil {
		s.notifier.Notify(NoticeAppointmentCancelled, *detail)
	}
	return detail, nil
}

// Reschedule handles a calendar drag or resize. Only start and duration change.
func (s *AppointmentService) Reschedule(ctx context.Context, id string, req dto.RescheduleRequest, actor *models.JWTClaims) (*models.AppointmentDetail, error) {
	current, err := s.loadForWrite(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	patch, err := RescheduleFromCalendar(req.Start, req.End)
	if err != nil {
		return nil, err
	}
	if current.ScheduledDate.Equal(*patch.ScheduledDate) {
		patch.ScheduledDate = nil
	}
	if current.DurationMinutes == *patch.DurationMinutes {
		patch.DurationMinutes = nil
	}
	if patch.IsEmpty() {
		return current, nil
	}
	return s.applyPatch(ctx, current.ID, patch, MutationReschedule)
}

// Delete removes an appointment the caller may modify.
func (s *AppointmentService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	current, err := s.loadForWrite(ctx, id, actor)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, current.ID); err != nil {
		if appErrors.IsMissingRow(err) {
			return appErrors.Clone(appErrors.ErrNotFound, appErrors.MsgAppointmentGone)
		}
		return appErrors.FromStore(err, "failed to delete appointment")
	}
	s.metrics.RecordAppointmentMutation(MutationDelete)
	s.invalidateCalendar(ctx)
	s.logger.Info("appointment deleted", zap.String("appointment_id", current.ID), zap.String("actor_id", actorID(actor)))
	return nil
}

// CalendarEvents projects the appointments starting in [Start, End). The
// boolean reports whether the events came from the cache.
func (s *AppointmentService) CalendarEvents(ctx context.Context, q dto.CalendarQuery) ([]dto.CalendarEvent, bool, error) {
	if q.Start.IsZero() || q.End.IsZero() || !q.End.After(q.Start) {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "end must be after start")
	}
	if q.End.Sub(q.Start) > maxCalendarRange {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "calendar range is limited to three months")
	}

	key := CalendarKey(q)
	var cached []dto.CalendarEvent
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, true, nil
	}

	items, err := s.repo.ListRange(ctx, q.Start, q.End, q.DentistID)
	if err != nil {
		return nil, false, appErrors.FromStore(err, "failed to load calendar")
	}
	events := ProjectCalendarEvents(items)
	_ = s.cache.Set(ctx, key, events, s.cfg.CalendarTTL)
	return events, false, nil
}

// DayAppointments returns one clinic day's appointments in start order.
func (s *AppointmentService) DayAppointments(ctx context.Context, rawDate, dentistID string) (time.Time, []models.AppointmentDetail, error) {
	day, err := ParseLocalDate(rawDate, s.cfg.Location)
	if err != nil {
		return time.Time{}, nil, appErrors.Clone(appErrors.ErrValidation, "date must be a valid YYYY-MM-DD date")
	}
	items, err := s.repo.ListRange(ctx, day, day.AddDate(0, 0, 1), dentistID)
	if err != nil {
		return time.Time{}, nil, appErrors.FromStore(err, "failed to load agenda")
	}
	return day, items, nil
}

// Location is the clinic timezone used for all date handling.
func (s *AppointmentService) Location() *time.Location {
	return s.cfg.Location
}

func (s *AppointmentService) checkSchedule(date, hhmm string) (time.Time, error) {
	if !IsBookableDate(date, s.clock(), s.cfg.Location) {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "appointment date cannot be in the past")
	}
	if !IsBookableTime(hhmm, s.cfg.Slots) {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf(
			"time must be a %d minute slot between %02d:00 and %02d:00",
			s.cfg.Slots.StepMinutes, s.cfg.Slots.OpenHour, s.cfg.Slots.CloseHour,
		))
	}
	scheduled, err := CombineDateTime(date, hhmm, s.cfg.Location)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	return scheduled, nil
}

// validateEdit checks an edit form. A length set from the calendar may fall
// outside the picker choices; it is only checked against them when changed.
func (s *AppointmentService) validateEdit(form dto.AppointmentForm, current *models.AppointmentDetail) error {
	if form.DurationMinutes == current.DurationMinutes {
		return s.validator.StructExcept(form, "DurationMinutes")
	}
	return s.validator.Struct(form)
}

func (s *AppointmentService) ensurePatient(ctx context.Context, id string) error {
	patient, err := s.patients.FindByID(ctx, id)
	if err != nil {
		if appErrors.IsMissingRow(err) {
			return appErrors.Clone(appErrors.ErrValidation, "patient not found; select a patient from the search results")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up patient")
	}
	if !patient.Active {
		return appErrors.Clone(appErrors.ErrValidation, "patient is inactive")
	}
	return nil
}

func (s *AppointmentService) ensureDentist(ctx context.Context, id string) error {
	if _, err := s.dentists.FindDentist(ctx, id); err != nil {
		if appErrors.IsMissingRow(err) {
			return appErrors.Clone(appErrors.ErrValidation, "dentist not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up dentist")
	}
	return nil
}

// loadForWrite fetches the appointment and checks that actor may change it.
// Dentists may only modify their own appointments.
func (s *AppointmentService) loadForWrite(ctx context.Context, id string, actor *models.JWTClaims) (*models.AppointmentDetail, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, appErrors.MsgAppointmentForbidden)
	}
	if actor.Role == models.RoleDentist && current.DentistID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, appErrors.MsgAppointmentForbidden)
	}
	return current, nil
}

func (s *AppointmentService) applyPatch(ctx context.Context, id string, patch dto.AppointmentPatch, kind string) (*models.AppointmentDetail, error) {
	if err := s.repo.ApplyPatch(ctx, id, patch, s.clock().UTC()); err != nil {
		if appErrors.IsMissingRow(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, appErrors.MsgAppointmentGone)
		}
		return nil, appErrors.FromStore(err, "failed to update appointment")
	}
	return s.afterMutation(ctx, id, kind)
}

func (s *AppointmentService) afterMutation(ctx context.Context, id, kind string) (*models.AppointmentDetail, error) {
	s.metrics.RecordAppointmentMutation(kind)
	s.invalidateCalendar(ctx)
	return s.Get(ctx, id)
}

func (s *AppointmentService) invalidateCalendar(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, CalendarCachePattern)
}

func (s *AppointmentService) warnUnconventional(current *models.AppointmentDetail, next models.AppointmentStatus, actor *models.JWTClaims) {
	if IsConventionalTransition(current.Status, next) {
		return
	}
	s.logger.Warn("unconventional appointment status transition",
		zap.String("appointment_id", current.ID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next)),
		zap.String("actor_id", actorID(actor)),
	)
}

func changedFields(p dto.AppointmentPatch) []string {
	fields := make([]string, 0, 10)
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}
	add(p.PatientID != nil, "patient_id")
	add(p.DentistID != nil, "dentist_id")
	add(p.ScheduledDate != nil, "scheduled_date")
	add(p.DurationMinutes != nil, "duration_minutes")
	add(p.AppointmentType != nil, "appointment_type")
	add(p.Priority != nil, "priority")
	add(p.Status != nil, "status")
	add(p.Title != nil, "title")
	add(p.Description != nil, "description")
	add(p.Notes != nil, "notes")
	return fields
}

func actorID(actor *models.JWTClaims) string {
	if actor == nil {
		return ""
	}
	return actor.UserID
}
