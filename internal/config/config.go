package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Device    DeviceConfig    `yaml:"device"`
	Storage   StorageConfig   `yaml:"storage"`
	Admin     AdminConfig     `yaml:"admin"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP/WebSocket server settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	WebRoot  string `yaml:"web_root"` // operator and admin pages
	Timezone string `yaml:"timezone"` // calendar used for the finalized-date partition
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// DeviceConfig contains weight indicator settings
type DeviceConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
	Simulate bool   `yaml:"simulate"`
}

// StorageConfig contains captured image storage settings
type StorageConfig struct {
	UploadDir string `yaml:"upload_dir"`
}

// AdminConfig contains the shared operator secrets
type AdminConfig struct {
	LoginPassword string `yaml:"login_password"`
	ActionSecret  string `yaml:"action_secret"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings. An empty schedule disables the job.
type SchedulerConfig struct {
	DayRollover  string `yaml:"day_rollover"`
	ResetSerials string `yaml:"reset_serials"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, applies environment overrides and validates the result
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Device
	if val := os.Getenv("SERIAL_PORT"); val != "" {
		c.Device.Port = val
	}
	if val := os.Getenv("SERIAL_BAUD_RATE"); val != "" {
		fmt.Sscanf(val, "%d", &c.Device.BaudRate)
	}
	if val := os.Getenv("SERIAL_SIMULATE"); val != "" {
		c.Device.Simulate = strings.EqualFold(val, "true") || val == "1"
	}

	// Storage
	if val := os.Getenv("UPLOAD_DIR"); val != "" {
		c.Storage.UploadDir = val
	}

	// Admin
	if val := os.Getenv("ADMIN_LOGIN_PASS"); val != "" {
		c.Admin.LoginPassword = val
	}
	if val := os.Getenv("ADMIN_ACTION_SECRET"); val != "" {
		c.Admin.ActionSecret = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	// Server defaults
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 4000
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.WebRoot == "" {
		c.Server.WebRoot = "web"
	}
	if c.Server.Timezone == "" {
		c.Server.Timezone = "Local"
	}
	if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
		return fmt.Errorf("invalid server timezone %q: %w", c.Server.Timezone, err)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	// Device defaults
	if c.Device.Port == "" {
		c.Device.Port = "COM3"
	}
	if c.Device.BaudRate == 0 {
		c.Device.BaudRate = 2400
	}
	if c.Device.BaudRate < 0 {
		return fmt.Errorf("invalid device baud rate: %d", c.Device.BaudRate)
	}

	// Storage validation
	if c.Storage.UploadDir == "" {
		return fmt.Errorf("upload directory is required")
	}

	// Admin validation
	if c.Admin.LoginPassword == "" {
		return fmt.Errorf("admin login password is required")
	}
	if c.Admin.ActionSecret == "" {
		return fmt.Errorf("admin action secret is required")
	}

	// Scheduler defaults
	if c.Scheduler.DayRollover == "" {
		c.Scheduler.DayRollover = "5 0 0 * * *" // 00:00:05 every day
	}

	return nil
}

// Location returns the timezone used to derive calendar days
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetBaseURL returns the URL operators use to reach the server
func (c *Config) GetBaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
}
