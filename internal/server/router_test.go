package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/dentalcare-api/internal/handler"
	"github.com/noah-isme/dentalcare-api/internal/models"
	"github.com/noah-isme/dentalcare-api/internal/service"
	"github.com/noah-isme/dentalcare-api/pkg/config"
	appErrors "github.com/noah-isme/dentalcare-api/pkg/errors"
	"github.com/noah-isme/dentalcare-api/pkg/export"
)

type staticTokens map[string]*models.JWTClaims

func (s staticTokens) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

func newTestRouter(env string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logr := zap.NewNop()
	cfg := &config.Config{Env: env, APIPrefix: "/api/v1"}

	appointments := service.NewAppointmentService(nil, nil, nil, nil, nil, nil, nil, logr, nil, service.AppointmentServiceConfig{})
	auth := service.NewAuthService(nil, nil, logr, service.AuthConfig{AccessTokenSecret: "test"})
	patients := service.NewPatientService(nil, nil, nil, logr)
	exports := service.NewExportService(appointments, logr, export.NewCSVExporter(), export.NewPDFExporter())

	tokens := staticTokens{
		"reception": {UserID: "r1", Role: models.RoleReceptionist},
		"dentist":   {UserID: "d1", Role: models.RoleDentist},
	}

	return NewRouter(Deps{Config: cfg, Logger: logr, Tokens: tokens}, Handlers{
		Auth:         handler.NewAuthHandler(auth),
		Appointments: handler.NewAppointmentHandler(appointments),
		Calendar:     handler.NewCalendarHandler(appointments),
		Agenda:       handler.NewAgendaHandler(exports),
		Patients:     handler.NewPatientHandler(patients),
		Metrics:      handler.NewMetricsHandler(nil, nil, logr),
	})
}

func perform(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouterProbesArePublic(t *testing.T) {
	r := newTestRouter(config.EnvDevelopment)

	w := perform(r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(r, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterRequiresToken(t *testing.T) {
	r := newTestRouter(config.EnvDevelopment)

	w := perform(r, http.MethodGet, "/api/v1/slots", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, http.MethodGet, "/api/v1/slots", "forged", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouterServesSlots(t *testing.T) {
	r := newTestRouter(config.EnvDevelopment)

	w := perform(r, http.MethodGet, "/api/v1/slots", "reception", "")
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data struct {
			Slots []struct {
				Value string `json:"value"`
			} `json:"slots"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data.Slots, 53)
	assert.Equal(t, "07:00", env.Data.Slots[0].Value)
	assert.Equal(t, "20:00", env.Data.Slots[52].Value)
}

func TestRouterRestrictsPatientCreation(t *testing.T) {
	r := newTestRouter(config.EnvDevelopment)

	w := perform(r, http.MethodPost, "/api/v1/patients", "dentist", `{"full_name":"Ana"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouterHidesDocsInProduction(t *testing.T) {
	w := perform(newTestRouter(config.EnvProduction), http.MethodGet, "/docs/index.html", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(newTestRouter(config.EnvDevelopment), http.MethodGet, "/docs/index.html", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
