package config

import (
	"fmt"
	"strings"
	"time"
)

// IP display modes for the repeaters table.
const (
	ShowFullIP        = "ShowFullIP"
	ShowLast1ByteOfIP = "ShowLast1ByteOfIP"
	ShowLast2ByteOfIP = "ShowLast2ByteOfIP"
	ShowLast3ByteOfIP = "ShowLast3ByteOfIP"
	HideIP            = "HideIP"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Reflector ReflectorConfig `koanf:"reflector"`
	Dashboard DashboardConfig `koanf:"dashboard"`
	Gateways  []GatewaySource `koanf:"gateways"`
	Database  DatabaseConfig  `koanf:"database"`
	Portal    PortalConfig    `koanf:"portal"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// ReflectorConfig points at the files the reflector daemon maintains.
type ReflectorConfig struct {
	XMLFile  string `koanf:"xml_file"`
	PIDFile  string `koanf:"pid_file"`
	FlagFile string `koanf:"flag_file"`
	FlagDir  string `koanf:"flag_dir"`
	// Timezone the daemon writes its XML timestamps in.
	Timezone string `koanf:"timezone"`
}

// Location resolves Timezone, falling back to UTC.
func (r ReflectorConfig) Location() *time.Location {
	if r.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type DashboardConfig struct {
	Version      string `koanf:"version"`
	ContactEmail string `koanf:"contact_email"`
	URL          string `koanf:"url"`
	IPMode       string `koanf:"ip_mode"`
	MaskChar     string `koanf:"mask_char"`
	// LimitTo caps the node rows of the repeaters table, 0 means no limit.
	LimitTo int `koanf:"limit_to"`
}

// GatewaySource describes one auxiliary-protocol daily log.
type GatewaySource struct {
	Protocol string `koanf:"protocol"`
	Service  string `koanf:"service"`
	// Path contains a {date} placeholder expanded to YYYY-MM-DD.
	Path string `koanf:"path"`
}

type DatabaseConfig struct {
	Driver   string `koanf:"driver"`
	DSN      string `koanf:"dsn"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`
}

// ConnString builds the driver-specific connection string.
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	if d.Driver == "sqlite" {
		return d.Name
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type PortalConfig struct {
	Enabled       bool          `koanf:"enabled"`
	SessionSecret string        `koanf:"session_secret"`
	SessionTTL    time.Duration `koanf:"session_ttl"`
	CookieSecure  bool          `koanf:"cookie_secure"`
}

type SecurityConfig struct {
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Validate checks the loaded configuration for values the server cannot use.
func (c *Config) Validate() error {
	switch c.Dashboard.IPMode {
	case ShowFullIP, ShowLast1ByteOfIP, ShowLast2ByteOfIP, ShowLast3ByteOfIP, HideIP:
	default:
		return fmt.Errorf("dashboard.ip_mode: unknown mode %q", c.Dashboard.IPMode)
	}
	if c.Dashboard.MaskChar == "" {
		return fmt.Errorf("dashboard.mask_char must not be empty")
	}
	if c.Dashboard.LimitTo < 0 {
		return fmt.Errorf("dashboard.limit_to must not be negative")
	}
	if c.Reflector.XMLFile == "" {
		return fmt.Errorf("reflector.xml_file is required")
	}
	if c.Reflector.Timezone != "" {
		if _, err := time.LoadLocation(c.Reflector.Timezone); err != nil {
			return fmt.Errorf("reflector.timezone: %w", err)
		}
	}
	for i, g := range c.Gateways {
		if g.Protocol == "" || g.Path == "" || g.Service == "" {
			return fmt.Errorf("gateways[%d]: protocol, service and path are required", i)
		}
	}
	switch strings.ToLower(c.Database.Driver) {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver)
	}
	if c.Security.RateLimitRequests <= 0 || c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("security: rate limit requests and window must be positive")
	}
	if c.Portal.Enabled && c.Portal.SessionTTL <= 0 {
		return fmt.Errorf("portal.session_ttl must be positive")
	}
	return nil
}
