package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dentalcare-api/internal/dto"
	"github.com/noah-isme/dentalcare-api/internal/middleware"
	"github.com/noah-isme/dentalcare-api/internal/models"
	appErrors "github.com/noah-isme/dentalcare-api/pkg/errors"
)

type appointmentServiceMock struct {
	item       *models.AppointmentDetail
	err        error
	lastQuery  dto.AppointmentListQuery
	lastForm   dto.AppointmentForm
	lastActor  *models.JWTClaims
	lastID     string
	deleteCall bool
}

func (m *appointmentServiceMock) Get(ctx context.Context, id string) (*models.AppointmentDetail, error) {
	m.lastID = id
	return m.item, m.err
}

func (m *appointmentServiceMock) List(ctx context.Context, q dto.AppointmentListQuery) ([]models.AppointmentDetail, *models.Pagination, error) {
	m.lastQuery = q
	if m.err != nil {
		return nil, nil, m.err
	}
	return nil, &models.Pagination{Page: q.Page, PageSize: q.PageSize}, nil
}

func (m *appointmentServiceMock) Create(ctx context.Context, form dto.AppointmentForm, actor *models.JWTClaims) (*models.AppointmentDetail, error) {
	m.lastForm = form
	m.lastActor = actor
	return m.item, m.err
}

func (m *appointmentServiceMock) Update(ctx context.Context, id string, form dto.AppointmentForm, actor *models.JWTClaims) (*dto.AppointmentMutation, error) {
	m.lastID = id
	m.lastForm = form
	if m.err != nil {
		return nil, m.err
	}
	return &dto.AppointmentMutation{Appointment: m.item, Changed: []string{"title"}}, nil
}

func (m *appointmentServiceMock) UpdateStatus(ctx context.Context, id string, req dto.StatusUpdateRequest, actor *models.JWTClaims) (*models.AppointmentDetail, error) {
	m.lastID = id
	return m.item, m.err
}

func (m *appointmentServiceMock) Reschedule(ctx context.Context, id string, req dto.RescheduleRequest, actor *models.JWTClaims) (*models.AppointmentDetail, error) {
	m.lastID = id
	return m.item, m.err
}

func (m *appointmentServiceMock) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	m.lastID = id
	m.deleteCall = true
	return m.err
}

func (m *appointmentServiceMock) SuggestPriority(notes string) dto.PrioritySuggestion {
	return dto.PrioritySuggestion{Priority: models.PriorityHigh, Source: "suggested"}
}

func newTestContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "r1", Role: models.RoleReceptionist})
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestAppointmentHandlerListParsesFilters(t *testing.T) {
	svc := &appointmentServiceMock{}
	h := NewAppointmentHandler(svc)

	c, w := newTestContext(http.MethodGet, "/appointments?dentist_id=d1&status=scheduled,confirmed&status=no_show&from=2030-03-01&page=2&limit=20", "")
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "d1", svc.lastQuery.DentistID)
	assert.Equal(t, []models.AppointmentStatus{models.StatusScheduled, models.StatusConfirmed, models.StatusNoShow}, svc.lastQuery.Statuses)
	assert.Equal(t, "2030-03-01", svc.lastQuery.From)
	assert.Equal(t, 2, svc.lastQuery.Page)
	assert.Equal(t, 20, svc.lastQuery.PageSize)

	env := decodeEnvelope(t, w)
	assert.JSONEq(t, "[]", string(env["data"]))
	assert.Contains(t, env, "pagination")
}

func TestAppointmentHandlerCreate(t *testing.T) {
	svc := &appointmentServiceMock{item: &models.AppointmentDetail{Appointment: models.Appointment{ID: "a1"}}}
	h := NewAppointmentHandler(svc)

	c, w := newTestContext(http.MethodPost, "/appointments", `{"patient_id":"p1","dentist_id":"d1","date":"2030-03-11","time":"09:30","duration_minutes":30,"appointment_type":"cleaning","title":"Cleaning"}`)
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "09:30", svc.lastForm.Time)
	assert.Equal(t, 30, svc.lastForm.DurationMinutes)
	require.NotNil(t, svc.lastActor)
	assert.Equal(t, "r1", svc.lastActor.UserID)
}

func TestAppointmentHandlerCreateInvalidBody(t *testing.T) {
	h := NewAppointmentHandler(&appointmentServiceMock{})

	c, w := newTestContext(http.MethodPost, "/appointments", `{"patient_id":`)
	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAppointmentHandlerMapsServiceErrors(t *testing.T) {
	cases := []struct {
		err  *appErrors.Error
		want int
	}{
		{appErrors.Clone(appErrors.ErrNotFound, appErrors.MsgAppointmentGone), http.StatusNotFound},
		{appErrors.Clone(appErrors.ErrForbidden, appErrors.MsgAppointmentForbidden), http.StatusForbidden},
		{appErrors.Clone(appErrors.ErrConflict, appErrors.MsgScheduleConflict), http.StatusConflict},
	}
	for _, tc := range cases {
		h := NewAppointmentHandler(&appointmentServiceMock{err: tc.err})
		c, w := newTestContext(http.MethodDelete, "/appointments/a1", "")
		c.Params = gin.Params{{Key: "id", Value: "a1"}}
		h.Delete(c)

		require.Equal(t, tc.want, w.Code)
		var env struct {
			Error appErrors.Error `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, tc.err.Message, env.Error.Message)
	}
}

func TestAppointmentHandlerDelete(t *testing.T) {
	svc := &appointmentServiceMock{}
	h := NewAppointmentHandler(svc)

	c, w := newTestContext(http.MethodDelete, "/appointments/a1", "")
	c.Params = gin.Params{{Key: "id", Value: "a1"}}
	h.Delete(c)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, svc.deleteCall)
	assert.Equal(t, "a1", svc.lastID)
}

func TestAppointmentHandlerRescheduleRejectsBadTimestamps(t *testing.T) {
	h := NewAppointmentHandler(&appointmentServiceMock{})

	c, w := newTestContext(http.MethodPost, "/appointments/a1/reschedule", `{"start":"tomorrow","end":"later"}`)
	c.Params = gin.Params{{Key: "id", Value: "a1"}}
	h.Reschedule(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAppointmentHandlerSuggestPriority(t *testing.T) {
	h := NewAppointmentHandler(&appointmentServiceMock{})

	c, w := newTestContext(http.MethodGet, "/appointments/priority-suggestion?notes=dolor", "")
	h.SuggestPriority(c)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.JSONEq(t, `{"priority":"high","source":"suggested"}`, string(env["data"]))
}
