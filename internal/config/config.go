// Package config loads formatter settings from .gopretty.yaml files, a .env
// file and GOPRETTY_* environment variables.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/caarlos0/env/v6"
	"github.com/cespare/xxhash/v2"
	"github.com/joho/godotenv"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"gopretty/internal/printer"
)

// FileName is the config file looked up in each directory.
const FileName = ".gopretty.yaml"

type Config struct {
	Width            int      `yaml:"width" json:"width" env:"GOPRETTY_WIDTH"`
	TabWidth         int      `yaml:"tabWidth" json:"tabWidth" env:"GOPRETTY_TAB_WIDTH"`
	UseTabs          bool     `yaml:"useTabs" json:"useTabs" env:"GOPRETTY_USE_TABS"`
	EndOfLine        string   `yaml:"endOfLine" json:"endOfLine" env:"GOPRETTY_END_OF_LINE"` // auto, lf or crlf
	TrimInitialLines bool     `yaml:"trimInitialLines" json:"trimInitialLines" env:"GOPRETTY_TRIM_INITIAL_LINES"`
	Validate         bool     `yaml:"validate" json:"validate" env:"GOPRETTY_VALIDATE"`
	Ignore           []string `yaml:"ignore" json:"ignore,omitempty" env:"GOPRETTY_IGNORE" envSeparator:","`
	Cache            string   `yaml:"cache" json:"cache" env:"GOPRETTY_CACHE"` // sqlite path, empty disables

	// Path is the file the settings were read from, empty for defaults.
	Path string `yaml:"-" json:"-"`
}

// Default returns the settings used when no file overrides them.
func Default() *Config {
	return &Config{
		Width:            100,
		TabWidth:         4,
		UseTabs:          true,
		EndOfLine:        "auto",
		TrimInitialLines: true,
		Validate:         true,
		Ignore:           []string{".git", "vendor", "node_modules", "testdata"},
		Cache:            ".gopretty-cache.db",
	}
}

// LoadConfig reads the YAML file at path over the defaults and applies
// environment overrides. An empty path loads defaults and environment only.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.decode(file); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", path, err)
		}
		cfg.Path = path
	}

	// 3. Override with Environment Variables if present
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) decode(file []byte) error {
	var raw map[string]any
	if err := yaml.Unmarshal(file, &raw); err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	if err := validate(raw); err != nil {
		return err
	}
	return yaml.Unmarshal(file, c)
}

// PrinterOptions derives the printer settings for formatting src. An "auto"
// line ending follows the first line break of src.
func (c *Config) PrinterOptions(src []byte) printer.Options {
	eol := "\n"
	switch c.EndOfLine {
	case "crlf":
		eol = "\r\n"
	case "auto":
		if i := bytes.IndexByte(src, '\n'); i > 0 && src[i-1] == '\r' {
			eol = "\r\n"
		}
	}
	return printer.Options{
		Width:            c.Width,
		TabWidth:         c.TabWidth,
		UseTabs:          c.UseTabs,
		TrimInitialLines: c.TrimInitialLines,
		EndOfLine:        eol,
	}
}

// Hash identifies the settings that affect formatted output.
func (c *Config) Hash() uint64 {
	h := xxhash.New()
	fmt.Fprintf(h, "%d|%d|%t|%s|%t|%t", c.Width, c.TabWidth, c.UseTabs, c.EndOfLine, c.TrimInitialLines, c.Validate)
	return h.Sum64()
}

//go:embed schema.json
var schemaJSON string

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("gopretty.schema.json", schemaJSON)
})

// validate checks v against the config schema. v is normalized through JSON
// first so YAML and struct values validate alike.
func validate(v any) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile config schema: %w", err)
	}

	var doc any
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal config for schema validation: %w", err)
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to normalize config for schema validation: %w", err)
	}
	return schema.Validate(doc)
}
