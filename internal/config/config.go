package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Session   SessionConfig   `yaml:"session"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type CatalogConfig struct {
	Path            string `yaml:"path"`
	Watch           bool   `yaml:"watch"`
	WatchDebounceMS int    `yaml:"watch_debounce_ms"`
}

type SessionConfig struct {
	DefaultExercise      string  `yaml:"default_exercise"`
	CorrectPoseThreshold float64 `yaml:"correct_pose_threshold"`
	MaxFeedbackCooldown  int     `yaml:"max_feedback_cooldown"`
	// MaxSessions of 0 means unlimited.
	MaxSessions int `yaml:"max_sessions"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Host: "0.0.0.0", Port: 8000},
		Catalog: CatalogConfig{Path: "exercises.txt", Watch: true, WatchDebounceMS: 500},
		Session: SessionConfig{
			DefaultExercise:      "LEFT_ARM_RAISE",
			CorrectPoseThreshold: 0.8,
			MaxFeedbackCooldown:  300,
			MaxSessions:          64,
		},
		Metrics:   MetricsConfig{Enabled: true, Path: "/metrics"},
		Tailscale: TailscaleConfig{Hostname: "posecoach", StateDir: "tsnet-state"},
	}
}

// Load reads config from a YAML file on top of Default, then applies
// environment variable overrides. An empty path skips the file.
// Env vars use the prefix POSECOACH_ and underscore-separated paths:
//
//	POSECOACH_SERVER_HOST, POSECOACH_SERVER_PORT,
//	POSECOACH_CATALOG, POSECOACH_CATALOG_WATCH,
//	POSECOACH_DEFAULT_EXERCISE, POSECOACH_THRESHOLD, POSECOACH_COOLDOWN,
//	POSECOACH_MAX_SESSIONS, POSECOACH_METRICS_ENABLED,
//	POSECOACH_TAILSCALE_ENABLED, POSECOACH_TAILSCALE_HOSTNAME
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POSECOACH_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("POSECOACH_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("POSECOACH_CATALOG"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("POSECOACH_CATALOG_WATCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Catalog.Watch = b
		}
	}
	if v := os.Getenv("POSECOACH_DEFAULT_EXERCISE"); v != "" {
		cfg.Session.DefaultExercise = v
	}
	if v := os.Getenv("POSECOACH_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Session.CorrectPoseThreshold = f
		}
	}
	if v := os.Getenv("POSECOACH_COOLDOWN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Session.MaxFeedbackCooldown = n
		}
	}
	if v := os.Getenv("POSECOACH_MAX_SESSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Session.MaxSessions = n
		}
	}
	if v := os.Getenv("POSECOACH_METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if v := os.Getenv("POSECOACH_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	if v := os.Getenv("POSECOACH_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}
	if c.Catalog.WatchDebounceMS < 0 {
		return fmt.Errorf("catalog.watch_debounce_ms must not be negative")
	}
	if c.Session.DefaultExercise == "" {
		return fmt.Errorf("session.default_exercise is required")
	}
	if t := c.Session.CorrectPoseThreshold; !(t >= 0 && t <= 1) {
		return fmt.Errorf("session.correct_pose_threshold must be within [0, 1]")
	}
	if c.Session.MaxFeedbackCooldown < 0 {
		return fmt.Errorf("session.max_feedback_cooldown must not be negative")
	}
	if c.Session.MaxSessions < 0 {
		return fmt.Errorf("session.max_sessions must not be negative")
	}
	if c.Metrics.Enabled && c.Metrics.Path == "" {
		return fmt.Errorf("metrics.path is required when metrics are enabled")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
