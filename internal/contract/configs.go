package contract

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/cgmprep/core/algo"
	"github.com/huangsam/cgmprep/schema"
)

// Default values for configuration.
const (
	DefaultWorkbook         = "Sugarmate-Report.xlsx"
	DefaultDays             = 1
	DefaultHeaderRow        = 14 // 0-based sheet row; row 15 in the spreadsheet
	DefaultGlucosePrecision = 2
	DefaultPrecision        = 2
	MaxPrecision            = 6
	DefaultLimit            = 25
	MaxLimit                = 10000
	DefaultOtherActivity    = "other"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for a cleaning run.
// This struct is the "final, validated" config.
type Config struct {
	Workbook    string
	StartSheet  string
	Days        int
	HeaderRow   int
	DropColumns []string

	SamplingInterval time.Duration
	OverrunThreshold float64 // minutes, negative
	GapMarkers       []string
	GlucosePrecision int

	// Activities is a closed activity catalog; empty means columns follow the data
	Activities    []string
	OtherActivity string

	Workers    int
	Output     schema.OutputMode
	OutputFile string
	Precision  int // Decimal precision for text and csv output
	Limit      int // Rows shown in the text preview
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext

	MetricsFile string
	Verbose     bool
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Output        string `mapstructure:"output"`
	OutputFile    string `mapstructure:"output-file"`
	Precision     int    `mapstructure:"precision"`
	Limit         int    `mapstructure:"limit"`
	Width         int    `mapstructure:"width"`
	Color         string `mapstructure:"color"`
	Workers       int    `mapstructure:"workers"`
	RunsBackend   string `mapstructure:"runs-backend"`
	RunsDBConnect string `mapstructure:"runs-db-connect"`
	Verbose       bool   `mapstructure:"verbose"`

	// --- Fields from cleanCmd.Flags() and sheetsCmd.Flags() ---
	Workbook         string  `mapstructure:"workbook"`
	Start            string  `mapstructure:"start"`
	Days             string  `mapstructure:"days"`
	HeaderRow        int     `mapstructure:"header-row"`
	Drop             string  `mapstructure:"drop"`
	Interval         string  `mapstructure:"sampling-interval"`
	OverrunThreshold float64 `mapstructure:"overrun-threshold"`
	GapMarkers       string  `mapstructure:"gap-markers"`
	GlucosePrecision int     `mapstructure:"glucose-precision"`
	Activities       string  `mapstructure:"activities"`
	OtherActivity    string  `mapstructure:"other-activity"`
	MetricsFile      string  `mapstructure:"metrics-file"`
}

// DefaultConfig returns a cleaning configuration holding the default parameters.
// StartSheet is left empty.
func DefaultConfig() *Config {
	return &Config{
		Workbook:         DefaultWorkbook,
		Days:             DefaultDays,
		HeaderRow:        DefaultHeaderRow,
		DropColumns:      slices.Clone(schema.DefaultDropColumns),
		SamplingInterval: algo.DefaultSamplingInterval,
		OverrunThreshold: algo.DefaultOverrunThreshold,
		GapMarkers:       slices.Clone(algo.DefaultGapMarkers),
		GlucosePrecision: DefaultGlucosePrecision,
		OtherActivity:    DefaultOtherActivity,
		Workers:          DefaultWorkers,
		Output:           schema.TextOut,
		Precision:        DefaultPrecision,
		Limit:            DefaultLimit,
		RunsBackend:      schema.NoneBackend,
	}
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.DropColumns = slices.Clone(c.DropColumns)
	clone.GapMarkers = slices.Clone(c.GapMarkers)
	clone.Activities = slices.Clone(c.Activities)
	return &clone
}

// Params returns the run parameters worth recording in the run ledger.
func (c *Config) Params() map[string]any {
	return map[string]any{
		"workbook":          c.Workbook,
		"start":             c.StartSheet,
		"days":              c.Days,
		"header_row":        c.HeaderRow,
		"drop":              c.DropColumns,
		"sampling_interval": c.SamplingInterval.String(),
		"overrun_threshold": c.OverrunThreshold,
		"gap_markers":       c.GapMarkers,
		"glucose_precision": c.GlucosePrecision,
		"activities":        c.Activities,
		"workers":           c.Workers,
		"output":            string(c.Output),
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct. Every failure wraps schema.ErrConfig.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	return runSteps(cfg, input,
		validateOutputInputs,
		validateWorkbookInputs,
		validateRangeInputs,
		validateCleaningInputs,
		validateBackendConfigs,
	)
}

// ProcessServerConfig validates everything except the sheet range, which
// server clients supply per request.
func ProcessServerConfig(cfg *Config, input *ConfigRawInput) error {
	return runSteps(cfg, input,
		validateOutputInputs,
		validateWorkbookInputs,
		validateCleaningInputs,
		validateBackendConfigs,
	)
}

func runSteps(cfg *Config, input *ConfigRawInput, steps ...func(*Config, *ConfigRawInput) error) error {
	for _, step := range steps {
		if err := step(cfg, input); err != nil {
			if errors.Is(err, schema.ErrConfig) {
				return err
			}
			return fmt.Errorf("%w: %w", schema.ErrConfig, err)
		}
	}
	return nil
}

// ParseDays parses the requested day count. It must be a positive integer.
func ParseDays(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: days is required", schema.ErrConfig)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: days must be an integer (received %q)", schema.ErrConfig, s)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: days must be at least 1 (received %d)", schema.ErrConfig, n)
	}
	return n, nil
}

// ProcessProfilingConfig enables profiling when a file prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	profilePrefix = strings.TrimSpace(profilePrefix)
	if profilePrefix == "" {
		return nil
	}
	if strings.HasSuffix(profilePrefix, "/") {
		return fmt.Errorf("%w: profile prefix must name a file, not a directory (received %q)", schema.ErrConfig, profilePrefix)
	}
	profile.Enabled = true
	profile.Prefix = profilePrefix
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("runs-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("runs-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateOutputInputs processes the presentation fields.
func validateOutputInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.MetricsFile = input.MetricsFile
	cfg.Verbose = input.Verbose

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet, xlsx", input.Output)
	}
	if (cfg.Output == schema.ParquetOut || cfg.Output == schema.XLSXOut) && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for %s output", cfg.Output)
	}

	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	if input.Limit <= 0 || input.Limit > MaxLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxLimit, input.Limit)
	}
	cfg.Limit = input.Limit

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers
	return nil
}

// validateWorkbookInputs processes the workbook layout fields.
func validateWorkbookInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Workbook = strings.TrimSpace(input.Workbook)
	if cfg.Workbook == "" {
		return fmt.Errorf("workbook is required")
	}

	if input.HeaderRow < 0 {
		return fmt.Errorf("header-row cannot be negative (received %d)", input.HeaderRow)
	}
	cfg.HeaderRow = input.HeaderRow

	cfg.DropColumns = splitList(input.Drop)
	if input.Drop == "" {
		cfg.DropColumns = slices.Clone(schema.DefaultDropColumns)
	}
	return nil
}

// validateRangeInputs processes the start sheet and day count.
func validateRangeInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.StartSheet = strings.TrimSpace(input.Start)
	if _, err := ParseSheetName(cfg.StartSheet); err != nil {
		return err
	}

	days, err := ParseDays(input.Days)
	if err != nil {
		return err
	}
	cfg.Days = days
	return nil
}

// validateCleaningInputs processes the imputation and activity fields.
func validateCleaningInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.SamplingInterval = algo.DefaultSamplingInterval
	if input.Interval != "" {
		d, err := time.ParseDuration(input.Interval)
		if err != nil {
			return fmt.Errorf("invalid sampling-interval %q: %w", input.Interval, err)
		}
		cfg.SamplingInterval = d
	}
	if cfg.SamplingInterval <= 0 {
		return fmt.Errorf("sampling-interval must be positive (received %s)", cfg.SamplingInterval)
	}

	if input.OverrunThreshold >= 0 {
		return fmt.Errorf("overrun-threshold must be negative (received %g)", input.OverrunThreshold)
	}
	cfg.OverrunThreshold = input.OverrunThreshold

	cfg.GapMarkers = splitList(input.GapMarkers)

	if input.GlucosePrecision < 0 {
		return fmt.Errorf("glucose-precision cannot be negative (received %d)", input.GlucosePrecision)
	}
	cfg.GlucosePrecision = input.GlucosePrecision

	cfg.Activities = splitList(input.Activities)
	cfg.OtherActivity = strings.TrimSpace(input.OtherActivity)
	if cfg.OtherActivity == "" {
		cfg.OtherActivity = DefaultOtherActivity
	}
	if slices.Contains(cfg.Activities, cfg.OtherActivity) {
		return fmt.Errorf("activity catalog cannot contain the other-activity bucket %q", cfg.OtherActivity)
	}
	return nil
}

// validateBackendConfigs validates the run ledger backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend == "" {
		cfg.RunsBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	return ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect)
}

// splitList splits a comma-separated list and drops blank entries.
func splitList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
