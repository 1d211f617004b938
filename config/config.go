// Package config loads root finder settings from TOML or YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/btracey/rootfind/common"
	"github.com/btracey/rootfind/root"
	"github.com/btracey/rootfind/write"
)

// Format is the encoding of a configuration file
type Format int

const (
	// FormatAuto picks the format from the file extension
	FormatAuto Format = iota
	FormatTOML
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Trace formats
const (
	TraceNone  = "none"
	TraceTable = "table"
	TraceCSV   = "csv"
)

// DefaultTolerance is used by the command line when neither a flag nor a
// file sets one
const DefaultTolerance = 1e-8

// Config holds solver settings as written in a configuration file. Zero
// values are replaced by defaults when the file is loaded.
type Config struct {
	Tolerance              float64  `toml:"tolerance" yaml:"tolerance"`
	MaxIterations          int      `toml:"max_iterations" yaml:"max_iterations"`
	MaxFunctionEvaluations int      `toml:"max_function_evaluations" yaml:"max_function_evaluations"`
	MaxRuntime             Duration `toml:"max_runtime" yaml:"max_runtime"`
	DerivativeStep         float64  `toml:"derivative_step" yaml:"derivative_step"`
	SingularTol            float64  `toml:"singular_tol" yaml:"singular_tol"`
	Digits                 *int     `toml:"digits" yaml:"digits"` // nil keeps root.DefaultDigits, negative disables rounding
	Trace                  Trace    `toml:"trace" yaml:"trace"`
}

// Trace holds the iteration trace settings
type Trace struct {
	Format   string   `toml:"format" yaml:"format"` // none, table or csv
	Interval Duration `toml:"interval" yaml:"interval"`
}

// Duration wraps time.Duration for parsing strings such as "250ms"
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration string
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a configuration file. The format is detected from the
// extension (.toml, .yaml or .yml).
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	format := detectFormat(path)
	if format == FormatAuto {
		return nil, fmt.Errorf("unsupported config file extension %q", filepath.Ext(path))
	}
	cfg, err := Parse(content, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes configuration content, applies defaults and validates it
func Parse(content []byte, format Format) (*Config, error) {
	var cfg Config
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(bytes.NewReader(content)).Decode(&cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown config key %q", undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		// An empty document decodes to nothing
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %v", format)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func detectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatAuto
}

func (c *Config) applyDefaults() {
	if c.Tolerance == 0 {
		c.Tolerance = DefaultTolerance
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = common.DefaultMaximumIterations
	}
	if c.MaxFunctionEvaluations == 0 {
		c.MaxFunctionEvaluations = -1
	}
	if c.MaxRuntime.Duration == 0 {
		c.MaxRuntime.Duration = -1
	}
	if c.DerivativeStep == 0 {
		c.DerivativeStep = root.DefaultDerivativeStep
	}
	if c.SingularTol == 0 {
		c.SingularTol = root.DefaultSingularTol
	}
	if c.Digits == nil {
		d := root.DefaultDigits
		c.Digits = &d
	}
	if c.Trace.Format == "" {
		c.Trace.Format = TraceNone
	}
	if c.Trace.Interval.Duration == 0 {
		c.Trace.Interval.Duration = write.DefaultWriteSettings().Interval
	}
}

func (c *Config) validate() error {
	if !(c.Tolerance > 0) {
		return fmt.Errorf("tolerance must be positive, got %v", c.Tolerance)
	}
	if c.MaxIterations < -1 {
		return fmt.Errorf("max_iterations must be -1 or more, got %d", c.MaxIterations)
	}
	if c.MaxFunctionEvaluations < -1 {
		return fmt.Errorf("max_function_evaluations must be -1 or more, got %d", c.MaxFunctionEvaluations)
	}
	if !(c.DerivativeStep > 0) {
		return fmt.Errorf("derivative_step must be positive, got %v", c.DerivativeStep)
	}
	if c.SingularTol < 0 {
		return fmt.Errorf("singular_tol must not be negative, got %v", c.SingularTol)
	}
	switch c.Trace.Format {
	case TraceNone, TraceTable, TraceCSV:
	default:
		return fmt.Errorf("trace format must be one of %s, %s or %s, got %q", TraceNone, TraceTable, TraceCSV, c.Trace.Format)
	}
	return nil
}

// Settings converts the configuration into solver settings. Trace writers
// are left for the caller to attach.
func (c *Config) Settings() *root.Settings {
	s := root.DefaultSettings()
	s.MaximumIterations = c.MaxIterations
	s.MaximumFunctionEvaluations = c.MaxFunctionEvaluations
	s.MaximumRuntime = c.MaxRuntime.Duration
	s.DerivativeStep = c.DerivativeStep
	s.SingularTol = c.SingularTol
	if c.Digits != nil {
		s.Digits = *c.Digits
	}
	s.Interval = c.Trace.Interval.Duration
	return s
}
