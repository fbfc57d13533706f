package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dentalcare-api/internal/models"
	"github.com/noah-isme/dentalcare-api/pkg/email"
	"github.com/noah-isme/dentalcare-api/pkg/jobs"
)

// Notification job types.
const (
	NoticeAppointmentCreated   = "appointment.created"
	NoticeAppointmentCancelled = "appointment.cancelled"
)

// Notification outcomes recorded in metrics.
const (
	notifyEnqueued = "enqueued"
	notifyDropped  = "dropped"
	notifySkipped  = "skipped"
	notifySent     = "sent"
	notifyFailed   = "failed"
)

type jobQueue interface {
	Register(jobType string, handler jobs.Handler)
	Enqueue(job jobs.Job) error
}

// NotificationService emails patients about their appointments from a
// background queue so request handlers never wait on SMTP.
type NotificationService struct {
	queue    jobQueue
	sender   email.Sender
	metrics  *MetricsService
	logger   *zap.Logger
	location *time.Location
}

// NewNotificationService registers the notification handlers on queue.
func NewNotificationService(queue jobQueue, sender email.Sender, metrics *MetricsService, logger *zap.Logger, loc *time.Location) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	s := &NotificationService{queue: queue, sender: sender, metrics: metrics, logger: logger, location: loc}
	queue.Register(NoticeAppointmentCreated, s.handle)
	queue.Register(NoticeAppointmentCancelled, s.handle)
	return s
}

// Notify enqueues a notice for detail. It never blocks the caller; a full
// queue drops the notice with a warning.
func (s *NotificationService) Notify(kind string, detail models.AppointmentDetail) {
	if detail.PatientEmail == nil || strings.TrimSpace(*detail.PatientEmail) == "" {
		s.metrics.RecordNotification(notifySkipped)
		return
	}
	if err := s.queue.Enqueue(jobs.Job{Type: kind, Payload: detail}); err != nil {
		s.metrics.RecordNotification(notifyDropped)
		s.logger.Warn("notification dropped", zap.String("kind", kind), zap.String("appointment_id", detail.ID), zap.Error(err))
		return
	}
	s.metrics.RecordNotification(notifyEnqueued)
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	detail, ok := job.Payload.(models.AppointmentDetail)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}

	msg, err := s.compose(job.Type, detail)
	if err != nil {
		s.logger.Error("cannot compose notification", zap.String("appointment_id", detail.ID), zap.Error(err))
		return nil
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		if errors.Is(err, email.ErrDisabled) {
			s.metrics.RecordNotification(notifySkipped)
			return nil
		}
		s.metrics.RecordNotification(notifyFailed)
		return err
	}
	s.metrics.RecordNotification(notifySent)
	s.logger.Info("notification sent", zap.String("kind", job.Type), zap.String("appointment_id", detail.ID))
	return nil
}

func (s *NotificationService) compose(kind string, detail models.AppointmentDetail) (email.Message, error) {
	when := detail.ScheduledDate.In(s.location).Format("Monday 02 January 2006 at 15:04")
	var subject, body string
	switch kind {
	case NoticeAppointmentCreated:
		subject = "Your dental appointment is booked"
		body = fmt.Sprintf("Hello %s,\n\nYour appointment \"%s\" with %s is booked for %s (%d minutes).\n",
			detail.PatientName, detail.Title, detail.DentistName, when, detail.DurationMinutes)
	case NoticeAppointmentCancelled:
		subject = "Your dental appointment was cancelled"
		body = fmt.Sprintf("Hello %s,\n\nYour appointment \"%s\" with %s on %s has been cancelled. Please call the clinic to book a new time.\n",
			detail.PatientName, detail.Title, detail.DentistName, when)
	default:
		return email.Message{}, fmt.Errorf("unknown notice %q", kind)
	}
	return email.Message{To: []string{*detail.PatientEmail}, Subject: subject, TextBody: body}, nil
}
