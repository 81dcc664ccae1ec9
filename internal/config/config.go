package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so yaml values like "30m" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Worker struct {
		Concurrency   int      `yaml:"concurrency"`
		VisibilityTTL Duration `yaml:"visibility_ttl"`
		RunTimeout    Duration `yaml:"run_timeout"`
	} `yaml:"worker"`
	Downloads struct {
		Dir          string `yaml:"dir"`
		HistoryLimit int64  `yaml:"history_limit"`
	} `yaml:"downloads"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Redis.Addr = "127.0.0.1:6379"
	cfg.Worker.Concurrency = 2
	cfg.Worker.VisibilityTTL = Duration(5 * time.Minute)
	cfg.Worker.RunTimeout = Duration(30 * time.Minute)
	cfg.Downloads.Dir = "downloads"
	cfg.Downloads.HistoryLimit = 100
	cfg.Log.Level = "info"
	return cfg
}

// Load reads the yaml file at path on top of the defaults. A missing file is
// not an error; the defaults are used. REDIS_ADDR and REDIS_PASSWORD
// environment variables override the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	return cfg, nil
}
