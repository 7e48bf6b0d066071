package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shapestone/shape-csvrow/pkg/csv"
)

// Config is the optional YAML configuration file.
//
//	dialect:
//	  field_separator: ";"
//	  record_separator: auto
//	  quote: "'"
//	state: rows.db
type Config struct {
	Dialect DialectConfig `yaml:"dialect"`
	State   string        `yaml:"state"`
}

// DialectConfig holds dialect bytes as strings; only the first byte is used.
// An empty value keeps the default.
type DialectConfig struct {
	FieldSeparator  string `yaml:"field_separator"`
	RecordSeparator string `yaml:"record_separator"`
	Quote           string `yaml:"quote"`
}

func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// apply overlays the configured bytes onto d.
func (c DialectConfig) apply(d csv.Dialect) csv.Dialect {
	if c.FieldSeparator != "" {
		d.Comma = c.FieldSeparator[0]
	}
	switch c.RecordSeparator {
	case "":
	case "auto":
		d.AutoTerminator = true
	default:
		d = d.WithTerminator(c.RecordSeparator[0])
	}
	if c.Quote != "" {
		d.Quote = c.Quote[0]
	}
	return d
}
