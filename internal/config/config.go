package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	KPI       KPIConfig
	Storage   StorageConfig
	SFTP      SFTPConfig
	Metrics   MetricsConfig
	Dashboard DashboardConfig
}

// DatabaseConfig points at the read-only CRM replica.
type DatabaseConfig struct {
	Host             string
	Port             int
	User             string
	Password         string
	Name             string
	SSLMode          string
	MaxConns         int32
	StatementTimeout time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	AccessExpiration  string
	RefreshExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
	Timezone string
	// AllowedOrigins feeds CORS for the dashboard frontend
	AllowedOrigins []string
}

// KPIConfig scopes the extraction and tunes the computation.
type KPIConfig struct {
	Divisions       []string
	CompanyCode     string
	Affiliate       string
	CallDayActivity string
	BoundaryRule    string
	RunInterval     time.Duration
	HierarchyFile   string
}

type StorageConfig struct {
	Type      string
	BasePath  string
	BaseURL   string
	RemoteDir string
}

type SFTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	HostKey  string
	BasePath string
	Timeout  time.Duration
}

type MetricsConfig struct {
	PushURL string
	Job     string
}

// DashboardConfig carries the static login table, one "user:bcrypt-hash:role" entry per item.
type DashboardConfig struct {
	Users []string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	dbMaxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	dbStatementTimeout, err := time.ParseDuration(getEnv("DB_STATEMENT_TIMEOUT", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_STATEMENT_TIMEOUT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:             getEnv("DB_HOST", "localhost"),
		Port:             dbPort,
		User:             getEnv("DB_USER", "postgres"),
		Password:         getEnv("DB_PASSWORD", ""),
		Name:             getEnv("DB_NAME", "crm_replica"),
		SSLMode:          getEnv("DB_SSL_MODE", "disable"),
		MaxConns:         int32(dbMaxConns),
		StatementTimeout: dbStatementTimeout,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Timezone: getEnv("APP_TIMEZONE", "Asia/Kolkata"),
	}
	config.App.AllowedOrigins = getEnvSlice("APP_ALLOWED_ORIGINS")

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
	}

	// KPI configuration
	runInterval, err := time.ParseDuration(getEnv("KPI_RUN_INTERVAL", "60m"))
	if err != nil {
		return nil, fmt.Errorf("invalid KPI_RUN_INTERVAL: %w", err)
	}

	config.KPI = KPIConfig{
		Divisions:       getEnvSlice("KPI_DIVISIONS"),
		CompanyCode:     getEnv("KPI_COMPANY_CODE", ""),
		Affiliate:       getEnv("KPI_AFFILIATE", ""),
		CallDayActivity: getEnv("KPI_CALL_DAY_ACTIVITY", "Field Work"),
		BoundaryRule:    getEnv("LEAVE_BOUNDARY_RULE", "year_month"),
		RunInterval:     runInterval,
		HierarchyFile:   getEnv("HIERARCHY_FILE", ""),
	}

	// Export storage
	config.Storage = StorageConfig{
		Type:      getEnv("STORAGE_TYPE", "local"),
		BasePath:  getEnv("STORAGE_BASE_PATH", "./exports"),
		BaseURL:   getEnv("STORAGE_BASE_URL", ""),
		RemoteDir: getEnv("REMOTE_EXPORT_DIR", "KPI"),
	}

	sftpPort, err := strconv.Atoi(getEnv("SFTP_PORT", "22"))
	if err != nil {
		return nil, fmt.Errorf("invalid SFTP_PORT: %w", err)
	}
	sftpTimeout, err := time.ParseDuration(getEnv("SFTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SFTP_TIMEOUT: %w", err)
	}

	config.SFTP = SFTPConfig{
		Host:     getEnv("SFTP_HOST", ""),
		Port:     sftpPort,
		User:     getEnv("SFTP_USER", ""),
		Password: getEnv("SFTP_PASSWORD", ""),
		HostKey:  getEnv("SFTP_HOST_KEY", ""),
		BasePath: getEnv("SFTP_BASE_PATH", "/"),
		Timeout:  sftpTimeout,
	}

	config.Metrics = MetricsConfig{
		PushURL: getEnv("METRICS_PUSH_URL", ""),
		Job:     getEnv("METRICS_JOB", "kpi_report"),
	}

	config.Dashboard = DashboardConfig{
		Users: getEnvSlice("DASHBOARD_USERS"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return errors.New("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET_KEY is required")
	}
	if len(c.KPI.Divisions) == 0 {
		return errors.New("KPI_DIVISIONS is required")
	}
	if c.KPI.CompanyCode == "" {
		return errors.New("KPI_COMPANY_CODE is required")
	}
	if c.KPI.RunInterval <= 0 {
		return errors.New("KPI_RUN_INTERVAL must be positive")
	}
	switch c.Storage.Type {
	case "local":
	case "sftp":
		if c.SFTP.Host == "" || c.SFTP.User == "" {
			return errors.New("SFTP_HOST and SFTP_USER are required when STORAGE_TYPE is sftp")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE %q", c.Storage.Type)
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
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

// Location returns the timezone runs pick their reporting period in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SlogLevel maps LOG_LEVEL onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
