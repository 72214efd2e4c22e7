// =============================================================================
// Order Consolidation - Configuration Module
// =============================================================================
//
// This module is responsible for loading and validating the configuration.
// A single Config is built once at process start and passed explicitly into
// every component; nothing reads paths or colors from package-level state.
//
// CONFIGURATION SECTIONS:
//   1. sources.primary   : single workbook with a transaction sheet and a
//                          group lookup sheet
//   2. sources.secondary : one workbook per reporting period plus the typed
//                          header mapping table
//   3. store             : the Consolidated Store workbook
//   4. history           : the SQLite run ledger
//   5. export / theme    : presentation settings
//   6. logging
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/order-consolidation/internal/types"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the whole application configuration.
type Config struct {
	Sources Sources       `yaml:"sources"`
	Store   StoreConfig   `yaml:"store"`
	History HistoryConfig `yaml:"history"`
	Export  ExportConfig  `yaml:"export"`
	Theme   Theme         `yaml:"theme"`
	Logging LoggingConfig `yaml:"logging"`
}

// Sources groups the two source systems.
type Sources struct {
	Primary   PrimarySource   `yaml:"primary"`
	Secondary SecondarySource `yaml:"secondary"`
}

// =============================================================================
// PRIMARY SOURCE
// =============================================================================

// PrimarySource describes the single-file source with a positional
// transaction sheet and a named lookup sheet.
type PrimarySource struct {
	// System is the tag attached to every record from this source.
	// Default: "Reserve"
	System string `yaml:"system"`

	// Path is the workbook location.
	// Default: "base.xlsx"
	Path string `yaml:"path"`

	// TransactionSheet is the sheet holding the flat transaction table.
	// Default: "base"
	TransactionSheet string `yaml:"transaction_sheet"`

	// SkipRows is the number of header rows before the first transaction.
	// Default: 1
	SkipRows int `yaml:"skip_rows"`

	// Columns is the positional layout of the transaction sheet.
	// Default: date, order_id, group_code, company, group_name
	Columns []types.Field `yaml:"columns"`

	// Lookup describes the group code -> group name table.
	Lookup LookupSheet `yaml:"lookup"`
}

// LookupSheet describes the group lookup table inside the primary workbook.
type LookupSheet struct {
	// Sheet is the name of the lookup sheet.
	// Default: "GRUPOS"
	Sheet string `yaml:"sheet"`

	// CodeColumn is the header text of the group code column.
	// Default: "Codigo"
	CodeColumn string `yaml:"code_column"`

	// NameColumn is the header text of the group display name column.
	// Default: "Nome do Grupo"
	NameColumn string `yaml:"name_column"`
}

// =============================================================================
// SECONDARY SOURCE
// =============================================================================

// SecondarySource describes the one-file-per-period source.
type SecondarySource struct {
	// System is the tag attached to every record from this source.
	// Default: "ARGOIT"
	System string `yaml:"system"`

	// Sheet is the sheet to read. Empty means the first sheet.
	Sheet string `yaml:"sheet"`

	// HeaderRow is the 1-based row holding the column headers.
	// Data starts on the row after it.
	// Default: 2 (row 1 is blank in the exports)
	HeaderRow int `yaml:"header_row"`

	// Delimiter is used when a period file is a .csv export.
	// Default: ";"
	Delimiter string `yaml:"delimiter"`

	// Files lists the period files in iteration order. The order matters:
	// when two periods carry the same order id, the earlier file wins.
	Files []PeriodFile `yaml:"files"`

	// Columns maps source header text to canonical fields.
	Columns []ColumnMapping `yaml:"columns"`
}

// PeriodFile maps a reporting period label (MM/YYYY) to a file location.
type PeriodFile struct {
	Period string `yaml:"period"`
	Path   string `yaml:"path"`
}

// ColumnMapping is one entry of a typed header mapping table.
type ColumnMapping struct {
	Header string      `yaml:"header"`
	Field  types.Field `yaml:"field"`
}

// Headers returns the source header texts in mapping order.
func (s SecondarySource) Headers() []string {
	headers := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		headers[i] = c.Header
	}
	return headers
}

// =============================================================================
// STORE, HISTORY, EXPORT, THEME, LOGGING
// =============================================================================

// StoreConfig describes the Consolidated Store workbook.
type StoreConfig struct {
	// Path is the workbook location.
	// Default: "base_consolidada.xlsx"
	Path string `yaml:"path"`

	// Sheet is the single sheet of the store.
	// Default: "Consolidated"
	Sheet string `yaml:"sheet"`

	// BackupCorrupt copies an unreadable store aside before it is rebuilt.
	// Default: true
	BackupCorrupt *bool `yaml:"backup_corrupt"`
}

// KeepCorruptBackup reports whether unreadable stores are copied aside.
func (s StoreConfig) KeepCorruptBackup() bool {
	return s.BackupCorrupt == nil || *s.BackupCorrupt
}

// HistoryConfig describes the run ledger. An empty path disables it.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	// Dir is where exports are written.
	// Default: "./exports"
	Dir string `yaml:"dir"`

	// RawSheet is the sheet name of the raw export.
	// Default: "Consolidated"
	RawSheet string `yaml:"raw_sheet"`

	// PivotSheet is the sheet name of the pivot export.
	// Default: "Pivot"
	PivotSheet string `yaml:"pivot_sheet"`
}

// Theme holds the presentation colors as #RRGGBB strings.
type Theme struct {
	Accent     string `yaml:"accent"`
	Primary    string `yaml:"primary"`
	Secondary  string `yaml:"secondary"`
	Background string `yaml:"background"`
	Contrast   string `yaml:"contrast"`
	AltRow     string `yaml:"alt_row"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level"`

	// Encoding is "console" or "json".
	// Default: "console"
	Encoding string `yaml:"encoding"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load loads, defaults and validates the configuration from a YAML file.
// Relative paths inside the file are resolved against the file's directory.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	cfg.resolvePaths(filepath.Dir(configPath))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	p := &cfg.Sources.Primary
	if p.System == "" {
		p.System = "Reserve"
	}
	if p.Path == "" {
		p.Path = "base.xlsx"
	}
	if p.TransactionSheet == "" {
		p.TransactionSheet = "base"
	}
	if p.SkipRows == 0 {
		p.SkipRows = 1
	}
	if len(p.Columns) == 0 {
		p.Columns = []types.Field{
			types.FieldDate,
			types.FieldOrderID,
			types.FieldGroupCode,
			types.FieldCompany,
			types.FieldGroupName,
		}
	}
	if p.Lookup.Sheet == "" {
		p.Lookup.Sheet = "GRUPOS"
	}
	if p.Lookup.CodeColumn == "" {
		p.Lookup.CodeColumn = "Codigo"
	}
	if p.Lookup.NameColumn == "" {
		p.Lookup.NameColumn = "Nome do Grupo"
	}

	s := &cfg.Sources.Secondary
	if s.System == "" {
		s.System = "ARGOIT"
	}
	if s.HeaderRow == 0 {
		s.HeaderRow = 2
	}
	if s.Delimiter == "" {
		s.Delimiter = ";"
	}
	if len(s.Columns) == 0 {
		s.Columns = []ColumnMapping{
			{Header: "Data Inclusao", Field: types.FieldDate},
			{Header: "Numero da Solicitacao", Field: types.FieldOrderID},
			{Header: "Empresa de Débito", Field: types.FieldCompany},
			{Header: "Cliente", Field: types.FieldGroupName},
		}
	}

	if cfg.Store.Path == "" {
		cfg.Store.Path = "base_consolidada.xlsx"
	}
	if cfg.Store.Sheet == "" {
		cfg.Store.Sheet = "Consolidated"
	}

	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "./exports"
	}
	if cfg.Export.RawSheet == "" {
		cfg.Export.RawSheet = "Consolidated"
	}
	if cfg.Export.PivotSheet == "" {
		cfg.Export.PivotSheet = "Pivot"
	}

	t := &cfg.Theme
	if t.Accent == "" {
		t.Accent = "#ff8c00"
	}
	if t.Primary == "" {
		t.Primary = "#ff8c00"
	}
	if t.Secondary == "" {
		t.Secondary = "#FFD700"
	}
	if t.Background == "" {
		t.Background = "#131B36"
	}
	if t.Contrast == "" {
		t.Contrast = "#1D2A4A"
	}
	if t.AltRow == "" {
		t.AltRow = "#f0f2f6"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Encoding == "" {
		cfg.Logging.Encoding = "console"
	}
}

// resolvePaths makes relative file locations relative to baseDir.
func (c *Config) resolvePaths(baseDir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	c.Sources.Primary.Path = resolve(c.Sources.Primary.Path)
	for i := range c.Sources.Secondary.Files {
		c.Sources.Secondary.Files[i].Path = resolve(c.Sources.Secondary.Files[i].Path)
	}
	c.Store.Path = resolve(c.Store.Path)
	c.History.Path = resolve(c.History.Path)
	c.Export.Dir = resolve(c.Export.Dir)
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for errors that would make a run
// meaningless. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	p := c.Sources.Primary
	s := c.Sources.Secondary

	if strings.TrimSpace(p.System) == "" || strings.TrimSpace(s.System) == "" {
		errs = append(errs, errors.New("source system names must not be blank"))
	}
	if p.System == s.System {
		errs = append(errs, fmt.Errorf("primary and secondary systems share the name %q", p.System))
	}

	if p.SkipRows < 0 {
		errs = append(errs, fmt.Errorf("sources.primary.skip_rows must not be negative, got %d", p.SkipRows))
	}
	errs = append(errs, validatePositional(p.Columns)...)

	if s.HeaderRow < 1 {
		errs = append(errs, fmt.Errorf("sources.secondary.header_row must be at least 1, got %d", s.HeaderRow))
	}
	errs = append(errs, validateMapping(s.Columns)...)
	errs = append(errs, validatePeriods(s.Files)...)

	if c.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required"))
	} else if !strings.EqualFold(filepath.Ext(c.Store.Path), ".xlsx") {
		errs = append(errs, fmt.Errorf("store.path must be an .xlsx file, got %q", c.Store.Path))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	if c.Logging.Encoding != "console" && c.Logging.Encoding != "json" {
		errs = append(errs, fmt.Errorf("logging.encoding %q is not one of console, json", c.Logging.Encoding))
	}

	return errors.Join(errs...)
}

// requiredFields are the canonical fields every source must supply.
var requiredFields = []types.Field{types.FieldDate, types.FieldOrderID, types.FieldCompany}

func validatePositional(columns []types.Field) []error {
	var errs []error
	seen := make(map[types.Field]bool)
	for i, f := range columns {
		if f == "" {
			// Empty positions are ignored columns.
			continue
		}
		if !types.KnownField(f) || f == types.FieldSourceSystem {
			errs = append(errs, fmt.Errorf("sources.primary.columns[%d]: unknown field %q", i, f))
			continue
		}
		if seen[f] {
			errs = append(errs, fmt.Errorf("sources.primary.columns: field %q listed twice", f))
		}
		seen[f] = true
	}
	for _, f := range requiredFields {
		if !seen[f] {
			errs = append(errs, fmt.Errorf("sources.primary.columns: required field %q is missing", f))
		}
	}
	return errs
}

func validateMapping(columns []ColumnMapping) []error {
	var errs []error
	headers := make(map[string]bool)
	fields := make(map[types.Field]bool)
	for i, c := range columns {
		if strings.TrimSpace(c.Header) == "" {
			errs = append(errs, fmt.Errorf("sources.secondary.columns[%d]: header is blank", i))
		}
		if !types.KnownField(c.Field) || c.Field == types.FieldSourceSystem {
			errs = append(errs, fmt.Errorf("sources.secondary.columns[%d]: unknown field %q", i, c.Field))
		}
		if headers[c.Header] {
			errs = append(errs, fmt.Errorf("sources.secondary.columns: header %q mapped twice", c.Header))
		}
		if fields[c.Field] {
			errs = append(errs, fmt.Errorf("sources.secondary.columns: field %q is the target of two headers", c.Field))
		}
		headers[c.Header] = true
		fields[c.Field] = true
	}
	for _, f := range requiredFields {
		if !fields[f] {
			errs = append(errs, fmt.Errorf("sources.secondary.columns: required field %q is not mapped", f))
		}
	}
	return errs
}

func validatePeriods(files []PeriodFile) []error {
	var errs []error
	seen := make(map[string]bool)
	for i, f := range files {
		if _, err := time.Parse("01/2006", f.Period); err != nil {
			errs = append(errs, fmt.Errorf("sources.secondary.files[%d]: period %q is not MM/YYYY", i, f.Period))
		}
		if f.Path == "" {
			errs = append(errs, fmt.Errorf("sources.secondary.files[%d]: path is required", i))
		}
		if seen[f.Period] {
			errs = append(errs, fmt.Errorf("sources.secondary.files: period %q listed twice", f.Period))
		}
		seen[f.Period] = true
	}
	return errs
}

// InputPaths returns every source and store file location, in the order the
// pipeline reads them.
func (c *Config) InputPaths() []string {
	paths := []string{c.Store.Path, c.Sources.Primary.Path}
	for _, f := range c.Sources.Secondary.Files {
		paths = append(paths, f.Path)
	}
	return paths
}
