package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the YAML config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reflector-dashboard/config.yaml",
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Reflector: ReflectorConfig{
			XMLFile:  "/var/log/xlxd.xml",
			PIDFile:  "/var/run/xlxd.pid",
			FlagFile: "country.csv",
			FlagDir:  "img/flags",
			Timezone: "UTC",
		},
		Dashboard: DashboardConfig{
			Version:  "2.5.0",
			IPMode:   ShowLast1ByteOfIP,
			MaskChar: "*",
			LimitTo:  99,
		},
		Database: DatabaseConfig{
			Driver:  "postgres",
			Host:    "localhost",
			Port:    5432,
			Name:    "wiresx",
			SSLMode: "disable",
		},
		Portal: PortalConfig{
			Enabled:    false,
			SessionTTL: 24 * time.Hour,
		},
		Security: SecurityConfig{
			RateLimitRequests: 100,
			RateLimitWindow:   5 * time.Minute,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// DefaultGateways are the auxiliary protocol logs scanned when none are configured.
func DefaultGateways() []GatewaySource {
	return []GatewaySource{
		{Protocol: "P25", Service: "P25Reflector", Path: "/var/log/reflectors/P25-9846-{date}.log"},
		{Protocol: "NXDN", Service: "NXDNReflector", Path: "/var/log/reflectors/NXDNReflector-{date}.log"},
	}
}

// Load layers defaults, an optional YAML file and the environment, in that order.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if len(cfg.Gateways) == 0 {
		cfg.Gateways = DefaultGateways()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envMappings maps environment variables onto config keys. Unlisted
// variables are ignored.
var envMappings = map[string]string{
	"listen_addr":      "server.addr",
	"read_timeout":     "server.read_timeout",
	"write_timeout":    "server.write_timeout",
	"shutdown_timeout": "server.shutdown_timeout",

	"xml_file":           "reflector.xml_file",
	"pid_file":           "reflector.pid_file",
	"flag_file":          "reflector.flag_file",
	"flag_dir":           "reflector.flag_dir",
	"reflector_timezone": "reflector.timezone",

	"dashboard_version":  "dashboard.version",
	"contact_email":      "dashboard.contact_email",
	"dashboard_url":      "dashboard.url",
	"ip_modus":           "dashboard.ip_mode",
	"masquerade_char":    "dashboard.mask_char",
	"repeaters_limit_to": "dashboard.limit_to",

	"db_driver":   "database.driver",
	"db_dsn":      "database.dsn",
	"db_host":     "database.host",
	"db_port":     "database.port",
	"db_user":     "database.user",
	"db_password": "database.password",
	"db_name":     "database.name",
	"db_sslmode":  "database.sslmode",

	"portal_enabled":        "portal.enabled",
	"session_secret":        "portal.session_secret",
	"session_ttl":           "portal.session_ttl",
	"session_cookie_secure": "portal.cookie_secure",

	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"cors_origins":        "security.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
