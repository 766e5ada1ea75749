package config

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// File is the optional YAML overlay. Unset fields leave the env value alone.
//
//	timeout: 5s
//	workers: 10
//	output_dir: ./reports
//	log_dir: /var/log/runnercheck
//	history_db: ./runnercheck.db
//	slack_webhook: ${SLACK_WEBHOOK_URL}
//	scan_interval: 5m
type File struct {
	Timeout         *Duration `yaml:"timeout"`
	Workers         *int      `yaml:"workers"`
	OutputDir       *string   `yaml:"output_dir"`
	LogDir          *string   `yaml:"log_dir"`
	LogLevel        *string   `yaml:"log_level"`
	NoColor         *bool     `yaml:"no_color"`
	Addr            *string   `yaml:"addr"`
	DatabaseURL     *string   `yaml:"database_url"`
	HistoryDB       *string   `yaml:"history_db"`
	SlackWebhook    *string   `yaml:"slack_webhook"`
	AlertOnRecovery *bool     `yaml:"alert_on_recovery"`
	AlertCooldown   *Duration `yaml:"alert_cooldown"`
	ScanInterval    *Duration `yaml:"scan_interval"`
	PublicAPIKeys   []string  `yaml:"public_api_keys"`
	AdminAPIKeys    []string  `yaml:"admin_api_keys"`
	AllowedOrigins  []string  `yaml:"allowed_origins"`
}

// Duration accepts strings like "5s", "1m", "500ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load is Read followed by Validate.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Read builds env config and overlays the YAML file at path, if any, without
// validating, so callers can apply further overrides first.
func Read(path string) (Config, error) {
	cfg := FromEnv()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cfg.Apply(data); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Apply overlays YAML data onto cfg. ${VAR} references are expanded first.
func (c *Config) Apply(data []byte) error {
	var f File
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &f); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	if f.Timeout != nil {
		c.Timeout = f.Timeout.Duration()
	}
	if f.Workers != nil {
		c.Workers = *f.Workers
	}
	setString(&c.OutputDir, f.OutputDir)
	setString(&c.LogDir, f.LogDir)
	setString(&c.LogLevel, f.LogLevel)
	setString(&c.Addr, f.Addr)
	setString(&c.DatabaseURL, f.DatabaseURL)
	setString(&c.HistoryDB, f.HistoryDB)
	setString(&c.SlackWebhook, f.SlackWebhook)
	if f.NoColor != nil {
		c.NoColor = *f.NoColor
	}
	if f.AlertOnRecovery != nil {
		c.AlertOnRecovery = *f.AlertOnRecovery
	}
	if f.AlertCooldown != nil {
		c.AlertCooldown = f.AlertCooldown.Duration()
	}
	if f.ScanInterval != nil {
		c.ScanInterval = f.ScanInterval.Duration()
	}
	if f.PublicAPIKeys != nil {
		c.PublicAPIKeys = f.PublicAPIKeys
	}
	if f.AdminAPIKeys != nil {
		c.AdminAPIKeys = f.AdminAPIKeys
	}
	if f.AllowedOrigins != nil {
		c.AllowedOrigins = f.AllowedOrigins
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Validate rejects values the scanner can't run with.
func (c Config) Validate() error {
	var errs error
	if c.Timeout <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.Workers < 1 {
		errs = multierr.Append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.ScanInterval != 0 && c.ScanInterval < 10*time.Second {
		errs = multierr.Append(errs, fmt.Errorf("scan_interval must be 0 or at least 10s, got %s", c.ScanInterval))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = multierr.Append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	return errs
}
