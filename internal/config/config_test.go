package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1, cfg.Redis.CacheDB)
	assert.Equal(t, 0, cfg.Redis.QueueDB)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "exports", cfg.Export.Dir)
	assert.Equal(t, 4, cfg.Jobs.Workers)
	assert.Equal(t, 7*24*time.Hour, cfg.Jobs.Retention)
	assert.Equal(t, 18, cfg.Schedule.ReminderHour)
	assert.Equal(t, 9, cfg.Schedule.ReportHour)
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9999")
	t.Setenv("JOB_WORKERS", "2")
	t.Setenv("REMINDER_HOUR", "20")
	t.Setenv("JWT_EXPIRY", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Jobs.Workers)
	assert.Equal(t, 20, cfg.Schedule.ReminderHour)
	assert.Equal(t, time.Hour, cfg.JWT.Expiry)
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:    "db.internal",
		Port:    "3306",
		Name:    "quizhub",
		User:    "quiz",
		Pass:    "secret",
		Charset: "utf8mb4",
	}
	assert.Equal(t,
		"quiz:secret@tcp(db.internal:3306)/quizhub?charset=utf8mb4&parseTime=True&loc=Local",
		d.DSN(),
	)
}
