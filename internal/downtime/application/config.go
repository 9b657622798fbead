package application

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from yaml strings like "15m".
type Duration time.Duration

// UnmarshalYAML parses the duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard library duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config defines the downtime calculation service configuration.
type Config struct {
	Interval   Duration `yaml:"interval"`
	Workers    int      `yaml:"workers"`
	FetchLimit int      `yaml:"fetch_limit"`
	Lines      []string `yaml:"lines"`
}

// LoadConfig loads config from yaml or env. DOWNTIME_CONFIG points at the
// yaml file; individual env vars fill the gaps.
func LoadConfig() (Config, error) {
	cfg := Config{
		Interval:   Duration(15 * time.Minute),
		Workers:    4,
		FetchLimit: defaultFetchLimit,
	}

	if path := os.Getenv("DOWNTIME_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if value := os.Getenv("DOWNTIME_INTERVAL"); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return cfg, err
		}
		cfg.Interval = Duration(parsed)
	}
	cfg.Workers = getenvIntDefault("DOWNTIME_WORKERS", cfg.Workers)
	cfg.FetchLimit = getenvIntDefault("DOWNTIME_FETCH_LIMIT", cfg.FetchLimit)
	if len(cfg.Lines) == 0 {
		cfg.Lines = splitCSV(os.Getenv("DOWNTIME_LINES"))
	}

	if cfg.Interval <= 0 {
		return cfg, errors.New("downtime config: interval must be positive")
	}
	if cfg.Workers <= 0 {
		return cfg, errors.New("downtime config: workers must be positive")
	}
	return cfg, nil
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
