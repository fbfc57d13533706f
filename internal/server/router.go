package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/dentalcare-api/api/swagger"
	"github.com/noah-isme/dentalcare-api/internal/handler"
	"github.com/noah-isme/dentalcare-api/internal/middleware"
	"github.com/noah-isme/dentalcare-api/internal/models"
	"github.com/noah-isme/dentalcare-api/internal/service"
	"github.com/noah-isme/dentalcare-api/pkg/config"
	"github.com/noah-isme/dentalcare-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/dentalcare-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/dentalcare-api/pkg/middleware/requestid"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Auth         *handler.AuthHandler
	Appointments *handler.AppointmentHandler
	Calendar     *handler.CalendarHandler
	Agenda       *handler.AgendaHandler
	Patients     *handler.PatientHandler
	Metrics      *handler.MetricsHandler
}

// Deps carries everything the router needs besides the handlers.
type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *service.MetricsService
	Tokens  middleware.TokenValidator
	Audit   middleware.AuditWriter
}

// NewRouter builds the gin engine with probes, docs and the versioned API.
func NewRouter(deps Deps, h Handlers) *gin.Engine {
	cfg := deps.Config
	logr := deps.Logger
	if logr == nil {
		logr = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)

	auth := api.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	secured := api.Group("")
	secured.Use(middleware.JWT(deps.Tokens))

	secured.POST("/auth/logout", h.Auth.Logout)
	secured.GET("/auth/me", h.Auth.Me)
	secured.GET("/metrics/summary", middleware.RequireRoles(models.RoleAdmin), h.Metrics.Summary)

	secured.GET("/slots", h.Calendar.Slots)
	secured.GET("/slots/validate-date", h.Calendar.ValidateDate)
	secured.GET("/calendar/events", h.Calendar.Events)
	secured.GET("/agenda/export", h.Agenda.Export)

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleReceptionist, models.RoleDentist)
	audit := func(action string) gin.HandlerFunc {
		return middleware.Audit(deps.Audit, logr, action, "appointment")
	}

	appointments := secured.Group("/appointments")
	appointments.GET("", h.Appointments.List)
	appointments.GET("/priority-suggestion", h.Appointments.SuggestPriority)
	appointments.GET("/:id", h.Appointments.Get)
	appointments.POST("", staff, audit(models.AuditActionAppointmentCreate), h.Appointments.Create)
	appointments.PUT("/:id", staff, audit(models.AuditActionAppointmentUpdate), h.Appointments.Update)
	appointments.PATCH("/:id/status", staff, audit(models.AuditActionAppointmentUpdate), h.Appointments.UpdateStatus)
	appointments.POST("/:id/reschedule", staff, audit(models.AuditActionAppointmentUpdate), h.Appointments.Reschedule)
	appointments.DELETE("/:id", staff, audit(models.AuditActionAppointmentDelete), h.Appointments.Delete)

	patients := secured.Group("/patients")
	patients.GET("", h.Patients.Search)
	patients.GET("/:id", h.Patients.Get)
	patients.POST("",
		middleware.RequireRoles(models.RoleAdmin, models.RoleReceptionist),
		middleware.Audit(deps.Audit, logr, models.AuditActionPatientCreate, "patient"),
		h.Patients.Create,
	)

	return r
}
