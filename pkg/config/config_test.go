package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}, cfg.Scheduler.Days)
	assert.Equal(t, ShiftWindowConfig{Start: "08:00", End: "12:00"}, cfg.Scheduler.Morning)
	assert.Equal(t, ShiftWindowConfig{Start: "13:00", End: "17:00"}, cfg.Scheduler.Afternoon)
	assert.Equal(t, 10*time.Minute, cfg.Scheduler.TimetableCacheTTL)
	assert.Equal(t, "schedule.generated", cfg.Events.GeneratedQueue)
	assert.False(t, cfg.Events.Enabled)
}

func TestLoadReadsEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SCHEDULER_DAYS", "Monday, Wednesday ,Friday")
	t.Setenv("SCHEDULER_TIMETABLE_CACHE_TTL", "not-a-duration")
	t.Setenv("DB_MIGRATE_ON_START", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"Monday", "Wednesday", "Friday"}, cfg.Scheduler.Days)
	assert.Equal(t, 10*time.Minute, cfg.Scheduler.TimetableCacheTTL)
	assert.True(t, cfg.Database.MigrateOnStart)
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
