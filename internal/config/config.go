package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file at the root of a data directory.
const FileName = "tamogatas.yaml"

// Config represents the top-level tamogatas.yaml configuration.
type Config struct {
	Organization OrganizationConfig `yaml:"organization"`
	Database     DatabaseConfig     `yaml:"database"`
	Import       ImportConfig       `yaml:"import"`
	Log          LogConfig          `yaml:"log"`
}

// OrganizationConfig identifies the organization receiving donations.
type OrganizationConfig struct {
	Name string `yaml:"name"`
}

// DatabaseConfig locates the SQLite database, relative to the data directory.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ImportConfig controls how bank statements are read and recorded.
type ImportConfig struct {
	Dir           string `yaml:"dir"`
	Format        string `yaml:"format"`
	Encoding      string `yaml:"encoding"` // utf-8, windows-1250 or iso-8859-2
	Currency      string `yaml:"currency"`
	PaymentMethod string `yaml:"payment_method"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // human or json
}

// Load reads a tamogatas.yaml file from disk. Missing settings take their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new data directory.
func Default(organization string) *Config {
	return &Config{
		Organization: OrganizationConfig{Name: organization},
		Database:     DatabaseConfig{Path: "tamogatas.db"},
		Import: ImportConfig{
			Dir:           "import",
			Format:        "huf",
			Encoding:      "utf-8",
			Currency:      "HUF",
			PaymentMethod: "Átutalás",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "human",
		},
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if strings.TrimSpace(c.Import.Dir) == "" {
		errs = append(errs, errors.New("import.dir is required"))
	}
	if len(c.Import.Currency) != 3 {
		errs = append(errs, fmt.Errorf("import.currency %q must be a 3-letter code", c.Import.Currency))
	}
	switch c.Log.Format {
	case "human", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be human or json", c.Log.Format))
	}
	return errors.Join(errs...)
}
