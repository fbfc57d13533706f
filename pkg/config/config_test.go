package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsDescribeClinicDay(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 7, cfg.Clinic.OpenHour)
	assert.Equal(t, 20, cfg.Clinic.CloseHour)
	assert.Equal(t, 15, cfg.Clinic.SlotMinutes)
	assert.Equal(t, "ES", cfg.Clinic.PhoneRegion)
	assert.Equal(t, 2*time.Minute, cfg.Calendar.CacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshExpiration)
	assert.False(t, cfg.Notifications.Enabled)
}

func TestOverridesAndParsing(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	v.Set("CALENDAR_CACHE_TTL", "not-a-duration")
	v.Set("PHONE_DEFAULT_REGION", "mx")
	v.Set("NOTIFY_RETRY_DELAY", "30s")
	cfg := fromViper(v)

	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 2*time.Minute, cfg.Calendar.CacheTTL)
	assert.Equal(t, "MX", cfg.Clinic.PhoneRegion)
	assert.Equal(t, 30*time.Second, cfg.Notifications.RetryDelay)
}

func TestClinicLocation(t *testing.T) {
	assert.Equal(t, time.Local, ClinicConfig{Timezone: "Local"}.Location())
	assert.Equal(t, time.Local, ClinicConfig{Timezone: "Nowhere/Special"}.Location())

	loc := ClinicConfig{Timezone: "Europe/Madrid"}.Location()
	require.NotNil(t, loc)
	assert.Equal(t, "Europe/Madrid", loc.String())
}
