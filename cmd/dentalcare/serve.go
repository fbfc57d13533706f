package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/dentalcare-api/internal/handler"
	"github.com/noah-isme/dentalcare-api/internal/repository"
	"github.com/noah-isme/dentalcare-api/internal/server"
	"github.com/noah-isme/dentalcare-api/internal/service"
	"github.com/noah-isme/dentalcare-api/pkg/cache"
	"github.com/noah-isme/dentalcare-api/pkg/config"
	"github.com/noah-isme/dentalcare-api/pkg/database"
	"github.com/noah-isme/dentalcare-api/pkg/email"
	"github.com/noah-isme/dentalcare-api/pkg/export"
	"github.com/noah-isme/dentalcare-api/pkg/jobs"
	"github.com/noah-isme/dentalcare-api/pkg/logger"
	"github.com/noah-isme/dentalcare-api/pkg/phone"
)

func runServer(cfg *config.Config) error {
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	metrics := service.NewMetricsService()
	loc := cfg.Clinic.Location()

	deps := map[string]handler.Pinger{"postgres": handler.PingFunc(db.PingContext)}

	var cacheRepo service.CacheRepository
	if cfg.Calendar.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("calendar cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			redisRepo := repository.NewCacheRepository(client)
			cacheRepo = redisRepo
			deps["redis"] = redisRepo
		}
	}
	calendarCache := service.NewCacheService(cacheRepo, metrics, cfg.Calendar.CacheTTL, logr, cacheRepo != nil)

	queue := jobs.NewQueue("notifications", jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		MaxRetries: cfg.Notifications.Retries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	})
	notifier := service.NewNotificationService(queue, email.New(cfg.Notifications), metrics, logr, loc)
	queue.Start(ctx)
	defer queue.Stop()

	users := repository.NewUserRepository(db)
	patients := repository.NewPatientRepository(db)
	appointments := repository.NewAppointmentRepository(db)

	validate := service.NewValidator()
	appointmentSvc := service.NewAppointmentService(
		appointments, patients, users, calendarCache, notifier, metrics, validate, logr, nil,
		service.AppointmentServiceConfig{Location: loc, Slots: slotOptions(cfg.Clinic), CalendarTTL: cfg.Calendar.CacheTTL},
	)
	authSvc := service.NewAuthService(users, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	patientSvc := service.NewPatientService(patients, phone.NewNormalizer(cfg.Clinic.PhoneRegion), validate, logr)
	exportSvc := service.NewExportService(appointmentSvc, logr, export.NewCSVExporter(), export.NewPDFExporter())

	router := server.NewRouter(server.Deps{
		Config:  cfg,
		Logger:  logr,
		Metrics: metrics,
		Tokens:  authSvc,
		Audit:   users,
	}, server.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		Appointments: handler.NewAppointmentHandler(appointmentSvc),
		Calendar:     handler.NewCalendarHandler(appointmentSvc),
		Agenda:       handler.NewAgendaHandler(exportSvc),
		Patients:     handler.NewPatientHandler(patientSvc),
		Metrics:      handler.NewMetricsHandler(metrics, deps, logr),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logr.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logr.Info("server stopped")
	return nil
}
