package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dentalcare-api/internal/service"
	"github.com/noah-isme/dentalcare-api/pkg/config"
)

func TestPrintSlotsListsClinicDay(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printSlots(&buf, service.DefaultSlotOptions(), "", time.Now(), time.UTC))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 53)
	assert.Equal(t, "07:00", lines[0])
	assert.Equal(t, "20:00", lines[52])
}

func TestPrintSlotsReportsBookability(t *testing.T) {
	now := time.Date(2025, 6, 15, 23, 30, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, printSlots(&buf, service.DefaultSlotOptions(), "2025-06-14", now, time.UTC))
	assert.True(t, strings.HasPrefix(buf.String(), "2025-06-14 is not bookable\n"))

	buf.Reset()
	require.NoError(t, printSlots(&buf, service.DefaultSlotOptions(), "2025-06-15", now, time.UTC))
	assert.True(t, strings.HasPrefix(buf.String(), "2025-06-15 is bookable\n"))

	assert.Error(t, printSlots(&buf, service.DefaultSlotOptions(), "15/06/2025", now, time.UTC))
}

func TestSlotOptionsFromClinicConfig(t *testing.T) {
	opts := slotOptions(config.ClinicConfig{OpenHour: 8, CloseHour: 14, SlotMinutes: 30})
	assert.Equal(t, service.SlotOptions{OpenHour: 8, CloseHour: 14, StepMinutes: 30}, opts)
	assert.Len(t, service.GenerateTimeSlots(opts), 13)
}
