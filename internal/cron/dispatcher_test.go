package cron

import (
	"testing"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizhub/internal/config"
	"quizhub/internal/jobs"
)

func TestSchedule(t *testing.T) {
	entries := Schedule(&config.ScheduleConfig{ReminderHour: 18, ReportHour: 9})
	require.Len(t, entries, 2)

	assert.Equal(t, jobs.KindDailyReminder, entries[0].Kind)
	assert.Equal(t, "0 0 18 * * *", entries[0].Spec)
	assert.Nil(t, entries[0].Args)

	assert.Equal(t, jobs.KindMonthlyReport, entries[1].Kind)
	assert.Equal(t, "0 0 9 1 * *", entries[1].Spec)
	assert.Nil(t, entries[1].Args)
}

func TestScheduleSpecsParse(t *testing.T) {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	for _, entry := range Schedule(&config.ScheduleConfig{ReminderHour: 18, ReportHour: 9}) {
		_, err := parser.Parse(entry.Spec)
		assert.NoError(t, err, entry.Spec)
	}
}
