// Package config defines the configuration model for the hotel-bookings
// pipeline: which database to talk to, where the raw bookings live and where
// the cleaned and summary tables are written.
//
// A Pipeline starts from Default(), is overlaid by an optional JSON or YAML
// file and then by HOTELETL_* environment variables (see Load).
//
// Example:
//
//	{
//	  "job": "hoteletl",
//	  "storage": { "kind": "postgres", "db": { "host": "127.0.0.1", "port": 5432,
//	               "user": "postgres", "database": "postgres" } },
//	  "source": { "namespace": "raw_data", "table": "hotel_bookings" },
//	  "destination": { "namespace": "production",
//	                   "cleaned_table": "cleaned_hotel_bookings",
//	                   "summary_table": "monthly_summary" },
//	  "runtime": { "batch_size": 5000 }
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment override, e.g. HOTELETL_STORAGE_DB_HOST.
const EnvPrefix = "HOTELETL"

// Pipeline is the top-level configuration passed to the pipeline entry point.
type Pipeline struct {
	// Job labels metrics and log lines.
	Job string `json:"job" yaml:"job" validate:"required"`

	Storage     Storage     `json:"storage" yaml:"storage"`
	Source      Source      `json:"source" yaml:"source"`
	Destination Destination `json:"destination" yaml:"destination"`
	Runtime     Runtime     `json:"runtime" yaml:"runtime"`
}

// Storage selects the database backend.
type Storage struct {
	// Kind is a storage registry key: postgres, mysql, mssql or sqlite.
	Kind string `json:"kind" yaml:"kind" validate:"required,oneof=postgres mysql mssql sqlite"`
	DB   DB     `json:"db" yaml:"db"`
}

// DB holds connection settings. DSN, when set, is used verbatim and the
// remaining fields are ignored.
type DB struct {
	DSN      string `json:"dsn" yaml:"dsn"`
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port" validate:"omitempty,min=1,max=65535"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	// Database is the database name, or the file path for sqlite.
	Database string `json:"database" yaml:"database"`
	// SSLMode is passed through to postgres (disable, require, ...).
	SSLMode string `json:"sslmode" yaml:"sslmode" split_words:"true"`
}

// Source locates the raw bookings table.
type Source struct {
	Namespace string `json:"namespace" yaml:"namespace" validate:"required,ident"`
	Table     string `json:"table" yaml:"table" validate:"required,ident"`
}

// Destination names the namespace and the two tables the pipeline replaces.
type Destination struct {
	Namespace    string `json:"namespace" yaml:"namespace" validate:"required,ident"`
	CleanedTable string `json:"cleaned_table" yaml:"cleaned_table" split_words:"true" validate:"required,ident"`
	SummaryTable string `json:"summary_table" yaml:"summary_table" split_words:"true" validate:"required,ident"`
}

// Runtime tunes the write path.
type Runtime struct {
	// BatchSize bounds rows per bulk insert call; zero selects the storage
	// default.
	BatchSize int `json:"batch_size" yaml:"batch_size" split_words:"true" validate:"gte=0"`
}

// Default returns the configuration the job historically ran with: a local
// Postgres, raw_data.hotel_bookings in, production.* out. The password is
// left empty and is expected from HOTELETL_STORAGE_DB_PASSWORD.
func Default() Pipeline {
	return Pipeline{
		Job: "hoteletl",
		Storage: Storage{
			Kind: "postgres",
			DB: DB{
				Host:     "127.0.0.1",
				Port:     5432,
				User:     "postgres",
				Database: "postgres",
			},
		},
		Source: Source{Namespace: "raw_data", Table: "hotel_bookings"},
		Destination: Destination{
			Namespace:    "production",
			CleanedTable: "cleaned_hotel_bookings",
			SummaryTable: "monthly_summary",
		},
	}
}

// Load builds a Pipeline from Default(), the file at path (skipped when path
// is empty) and the environment, then normalises identifiers. Files ending in
// .yaml or .yml are decoded as YAML, anything else as JSON.
func Load(path string) (Pipeline, error) {
	p := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Pipeline{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Decode(b, filepath.Ext(path), &p); err != nil {
			return Pipeline{}, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &p); err != nil {
		return Pipeline{}, fmt.Errorf("config: env: %w", err)
	}
	p.Normalize()
	return p, nil
}

// Decode overlays the encoded document b onto p. ext picks the format.
func Decode(b []byte, ext string, p *Pipeline) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.UnmarshalStrict(b, p)
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		return dec.Decode(p)
	}
}

// Normalize trims identifiers and puts them in Unicode NFC so that visually
// identical names compare equal.
func (p *Pipeline) Normalize() {
	for _, s := range []*string{
		&p.Job,
		&p.Storage.Kind,
		&p.Source.Namespace,
		&p.Source.Table,
		&p.Destination.Namespace,
		&p.Destination.CleanedTable,
		&p.Destination.SummaryTable,
	} {
		*s = norm.NFC.String(strings.TrimSpace(*s))
	}
	p.Storage.Kind = strings.ToLower(p.Storage.Kind)
}
