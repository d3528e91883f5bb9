package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv(ConfigPathEnvVar, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Dashboard.IPMode != ShowLast1ByteOfIP {
		t.Errorf("ip mode = %q", cfg.Dashboard.IPMode)
	}
	if cfg.Security.RateLimitWindow != 5*time.Minute {
		t.Errorf("rate limit window = %v", cfg.Security.RateLimitWindow)
	}
	if len(cfg.Gateways) != 2 || cfg.Gateways[0].Protocol != "P25" || cfg.Gateways[1].Protocol != "NXDN" {
		t.Errorf("gateways = %+v", cfg.Gateways)
	}
	if cfg.Portal.Enabled {
		t.Error("portal should be disabled by default")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.yaml")
	yaml := `
reflector:
  xml_file: /tmp/status.xml
dashboard:
  ip_mode: ShowLast2ByteOfIP
  limit_to: 10
gateways:
  - protocol: P25
    service: P25Reflector
    path: /logs/P25-{date}.log
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("IP_MODUS", "HideIP")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("SESSION_TTL", "2h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Reflector.XMLFile != "/tmp/status.xml" {
		t.Errorf("xml file = %q", cfg.Reflector.XMLFile)
	}
	if cfg.Dashboard.IPMode != HideIP {
		t.Errorf("env should override file, got %q", cfg.Dashboard.IPMode)
	}
	if cfg.Dashboard.LimitTo != 10 {
		t.Errorf("limit to = %d", cfg.Dashboard.LimitTo)
	}
	if cfg.Database.Port != 6543 {
		t.Errorf("db port = %d", cfg.Database.Port)
	}
	if cfg.Portal.SessionTTL != 2*time.Hour {
		t.Errorf("session ttl = %v", cfg.Portal.SessionTTL)
	}
	if len(cfg.Gateways) != 1 || cfg.Gateways[0].Path != "/logs/P25-{date}.log" {
		t.Errorf("gateways = %+v", cfg.Gateways)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad ip mode", func(c *Config) { c.Dashboard.IPMode = "ShowSome" }, "ip_mode"},
		{"empty mask", func(c *Config) { c.Dashboard.MaskChar = "" }, "mask_char"},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, "driver"},
		{"bad zone", func(c *Config) { c.Reflector.Timezone = "Mars/Olympus" }, "timezone"},
		{"zero rate", func(c *Config) { c.Security.RateLimitRequests = 0 }, "rate limit"},
		{"incomplete gateway", func(c *Config) { c.Gateways = []GatewaySource{{Protocol: "P25"}} }, "gateways[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Gateways = DefaultGateways()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConnString(t *testing.T) {
	pg := DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", Name: "wiresx", SSLMode: "disable"}
	if got := pg.ConnString(); got != "host=db port=5432 user=u password=p dbname=wiresx sslmode=disable" {
		t.Errorf("postgres conn string = %q", got)
	}
	lite := DatabaseConfig{Driver: "sqlite", Name: "/data/portal.db"}
	if got := lite.ConnString(); got != "/data/portal.db" {
		t.Errorf("sqlite conn string = %q", got)
	}
	explicit := DatabaseConfig{Driver: "postgres", DSN: "postgres://x"}
	if got := explicit.ConnString(); got != "postgres://x" {
		t.Errorf("dsn conn string = %q", got)
	}
}
