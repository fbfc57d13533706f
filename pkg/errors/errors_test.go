package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	typed := Clone(ErrNotFound, MsgAppointmentGone)
	got := FromError(typed)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, MsgAppointmentGone, got.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	got := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
}

func TestClonedErrorsMatchSentinel(t *testing.T) {
	err := Clone(ErrForbidden, MsgAppointmentForbidden)
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestFromStoreMapsConstraintViolations(t *testing.T) {
	unique := FromStore(&pq.Error{Code: "23505"}, "failed")
	assert.Equal(t, http.StatusConflict, unique.Status)
	assert.Equal(t, MsgScheduleConflict, unique.Message)

	fk := FromStore(&pq.Error{Code: "23503"}, "failed")
	assert.Equal(t, ErrValidation.Code, fk.Code)

	malformed := FromStore(&pq.Error{Code: "22P02"}, "failed")
	assert.Equal(t, ErrValidation.Code, malformed.Code)
	assert.Equal(t, http.StatusBadRequest, malformed.Status)

	other := FromStore(sql.ErrConnDone, "failed to save")
	assert.Equal(t, ErrInternal.Code, other.Code)
	assert.Equal(t, "failed to save", other.Message)
}

func TestIsMissingRow(t *testing.T) {
	assert.True(t, IsMissingRow(sql.ErrNoRows))
	assert.True(t, IsMissingRow(fmt.Errorf("find appointment: %w", sql.ErrNoRows)))
	assert.True(t, IsMissingRow(&pq.Error{Code: "22P02"}))
	assert.False(t, IsMissingRow(&pq.Error{Code: "23505"}))
	assert.False(t, IsMissingRow(sql.ErrConnDone))
	assert.False(t, IsMissingRow(nil))
}
