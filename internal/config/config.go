package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Attendance AttendanceConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
	SeedDemo    bool
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AttendanceConfig holds the shift policy and session limits.
type AttendanceConfig struct {
	Timezone           string
	LateCutoff         string // HH:MM
	GracePeriodMinutes int
	HalfDayHours       float64
	ClockSkewTolerance time.Duration
	StaleSessionHours  int
	StaleCheckInterval time.Duration
}

// LateCutoffOffset is LateCutoff as an offset from local midnight.
func (a AttendanceConfig) LateCutoffOffset() time.Duration {
	d, _ := validator.IsValidTimeOfDay(a.LateCutoff)
	return d
}

func (a AttendanceConfig) GracePeriod() time.Duration {
	return time.Duration(a.GracePeriodMinutes) * time.Minute
}

func (a AttendanceConfig) StaleAfter() time.Duration {
	return time.Duration(a.StaleSessionHours) * time.Hour
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		SeedDemo:    getEnv("SEED_DEMO", "false") == "true",
	}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Driver:     strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		Host:       getEnv("DB_HOST", "localhost"),
		Port:       dbPort,
		User:       getEnv("DB_USER", "postgres"),
		Password:   getEnv("DB_PASSWORD", ""),
		Name:       getEnv("DB_NAME", "attendance"),
		SSLMode:    getEnv("DB_SSL_MODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "./data/attendance.db"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Attendance policy
	grace, err := strconv.Atoi(getEnv("GRACE_PERIOD_MINUTES", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid GRACE_PERIOD_MINUTES: %w", err)
	}
	halfDay, err := strconv.ParseFloat(getEnv("HALF_DAY_HOURS", "4.5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid HALF_DAY_HOURS: %w", err)
	}
	skew, err := time.ParseDuration(getEnv("CLOCK_SKEW_TOLERANCE", "2m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLOCK_SKEW_TOLERANCE: %w", err)
	}
	stale, err := strconv.Atoi(getEnv("STALE_SESSION_HOURS", "16"))
	if err != nil {
		return nil, fmt.Errorf("invalid STALE_SESSION_HOURS: %w", err)
	}
	staleInterval, err := time.ParseDuration(getEnv("STALE_CHECK_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid STALE_CHECK_INTERVAL: %w", err)
	}

	config.Attendance = AttendanceConfig{
		Timezone:           getEnv("ATTENDANCE_TIMEZONE", "UTC"),
		LateCutoff:         getEnv("LATE_CUTOFF", "09:00"),
		GracePeriodMinutes: grace,
		HalfDayHours:       halfDay,
		ClockSkewTolerance: skew,
		StaleSessionHours:  stale,
		StaleCheckInterval: staleInterval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER must be one of %s, %s, %s", DriverPostgres, DriverSQLite, DriverMemory)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME is invalid: %w", err)
	}

	if _, err := time.LoadLocation(c.Attendance.Timezone); err != nil {
		return fmt.Errorf("ATTENDANCE_TIMEZONE is invalid: %w", err)
	}
	if _, ok := validator.IsValidTimeOfDay(c.Attendance.LateCutoff); !ok {
		return fmt.Errorf("LATE_CUTOFF must be HH:MM")
	}
	if c.Attendance.GracePeriodMinutes < 0 {
		return fmt.Errorf("GRACE_PERIOD_MINUTES must not be negative")
	}
	if c.Attendance.HalfDayHours <= 0 {
		return fmt.Errorf("HALF_DAY_HOURS must be positive")
	}
	if c.Attendance.ClockSkewTolerance < 0 {
		return fmt.Errorf("CLOCK_SKEW_TOLERANCE must not be negative")
	}
	if c.Attendance.StaleSessionHours <= 0 {
		return fmt.Errorf("STALE_SESSION_HOURS must be positive")
	}
	if c.Attendance.StaleCheckInterval <= 0 {
		return fmt.Errorf("STALE_CHECK_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
