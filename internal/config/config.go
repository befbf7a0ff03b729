package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Export    ExportConfig    `yaml:"export"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Transport TransportConfig `yaml:"transport"`
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type ExportConfig struct {
	Dir                 string  `yaml:"dir"`
	LowQualityThreshold float64 `yaml:"low_quality_threshold"`
}

type ScheduleConfig struct {
	Triggers     []string      `yaml:"triggers"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Path: "registros_defeitos.json",
		},
		Export: ExportConfig{
			Dir:                 "Relatorios_Defeitos",
			LowQualityThreshold: 96,
		},
		Schedule: ScheduleConfig{
			Triggers:     []string{"05:44", "18:10"},
			PollInterval: time.Minute,
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the YAML file named by DEFECTLOG_CONFIG_PATH,
// if any, and environment variables.
func Load() (Config, error) {
	return LoadFile(os.Getenv("DEFECTLOG_CONFIG_PATH"))
}

// LoadFile is Load with an explicit config file path. An empty path skips the
// file. Environment variables still override file values.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if path := os.Getenv("DEFECTLOG_STORE_PATH"); path != "" {
		cfg.Store.Path = path
	}
	if dir := os.Getenv("DEFECTLOG_EXPORT_DIR"); dir != "" {
		cfg.Export.Dir = dir
	}
	if triggers := os.Getenv("DEFECTLOG_TRIGGERS"); triggers != "" {
		cfg.Schedule.Triggers = splitList(triggers)
	}
	if interval := os.Getenv("DEFECTLOG_POLL_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DEFECTLOG_POLL_INTERVAL: %w", err)
		}
		cfg.Schedule.PollInterval = d
	}
	if mode := os.Getenv("DEFECTLOG_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if host := os.Getenv("DEFECTLOG_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("DEFECTLOG_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DEFECTLOG_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if token := os.Getenv("DEFECTLOG_AUTH_TOKEN"); token != "" {
		cfg.Auth.Enabled = true
		cfg.Auth.Token = token
	}
	if level := os.Getenv("DEFECTLOG_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if path := os.Getenv("DEFECTLOG_LOG_PATH"); path != "" {
		cfg.Log.Path = path
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store.path is required")
	}
	if strings.TrimSpace(c.Export.Dir) == "" {
		return fmt.Errorf("export.dir is required")
	}
	if c.Export.LowQualityThreshold <= 0 || c.Export.LowQualityThreshold > 100 {
		return fmt.Errorf("export.low_quality_threshold must be within (0,100]")
	}
	if len(c.Schedule.Triggers) == 0 {
		return fmt.Errorf("schedule.triggers needs at least one HH:MM time")
	}
	if c.Schedule.PollInterval <= 0 || c.Schedule.PollInterval > time.Minute {
		return fmt.Errorf("schedule.poll_interval must be within (0, 1m]")
	}
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("transport.mode must be stdio or http, got %q", c.Transport.Mode)
	}
	if c.Auth.Enabled && c.Auth.Token == "" {
		return fmt.Errorf("auth.token is required when auth is enabled")
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
