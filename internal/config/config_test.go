package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "./data/attendance.db", cfg.Database.SQLitePath)
	assert.Equal(t, "UTC", cfg.Attendance.Timezone)
	assert.Equal(t, 9*time.Hour, cfg.Attendance.LateCutoffOffset())
	assert.Zero(t, cfg.Attendance.GracePeriod())
	assert.Equal(t, 4.5, cfg.Attendance.HalfDayHours)
	assert.Equal(t, 2*time.Minute, cfg.Attendance.ClockSkewTolerance)
	assert.Equal(t, 16*time.Hour, cfg.Attendance.StaleAfter())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_HOST", "db")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("ATTENDANCE_TIMEZONE", "Asia/Jakarta")
	t.Setenv("LATE_CUTOFF", "08:30")
	t.Setenv("GRACE_PERIOD_MINUTES", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8*time.Hour+30*time.Minute, cfg.Attendance.LateCutoffOffset())
	assert.Equal(t, 10*time.Minute, cfg.Attendance.GracePeriod())
	assert.Equal(t, "postgres://postgres:pw@db:5432/attendance?sslmode=disable", cfg.DatabaseURL())
}

func TestLoad_InvalidNumber(t *testing.T) {
	t.Setenv("APP_PORT", "eighty")

	_, err := Load()
	assert.ErrorContains(t, err, "APP_PORT")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Database: DatabaseConfig{Driver: DriverMemory},
			JWT:      JWTConfig{Secret: "s", AccessExpiration: "1h"},
			Attendance: AttendanceConfig{
				Timezone:           "UTC",
				LateCutoff:         "09:00",
				HalfDayHours:       4.5,
				ClockSkewTolerance: time.Minute,
				StaleSessionHours:  16,
				StaleCheckInterval: time.Minute,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "DB_DRIVER"},
		{"postgres without password", func(c *Config) { c.Database.Driver = DriverPostgres }, "DB_PASSWORD"},
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }, "JWT_SECRET_KEY"},
		{"bad timezone", func(c *Config) { c.Attendance.Timezone = "Mars/Olympus" }, "ATTENDANCE_TIMEZONE"},
		{"bad cutoff", func(c *Config) { c.Attendance.LateCutoff = "9am" }, "LATE_CUTOFF"},
		{"negative grace", func(c *Config) { c.Attendance.GracePeriodMinutes = -1 }, "GRACE_PERIOD_MINUTES"},
		{"zero half day", func(c *Config) { c.Attendance.HalfDayHours = 0 }, "HALF_DAY_HOURS"},
		{"zero stale hours", func(c *Config) { c.Attendance.StaleSessionHours = 0 }, "STALE_SESSION_HOURS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
