package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/banshee-data/moc/internal/quadrature"
)

// DefaultConfigPath is the path to the canonical evaluator defaults file.
const DefaultConfigPath = "config/expeval.defaults.json"

// Built-in defaults used when a field is absent from the JSON file.
const (
	DefaultExpPrecision     = 1e-5
	DefaultMaxOpticalLength = 10.0
	DefaultQuadrature       = "tabuchi-yamamoto"
	DefaultNumPolarAngles   = 3
	DefaultNumWorkers       = 4
)

// EvaluatorConfig is the root configuration for the exponential evaluator
// and the sweep harness that drives it. Fields are pointers so that a
// partial file keeps the defaults for everything it omits.
type EvaluatorConfig struct {
	ExpPrecision     *float64 `json:"exp_precision,omitempty"`
	MaxOpticalLength *float64 `json:"max_optical_length,omitempty"`
	Interpolate      *bool    `json:"interpolate,omitempty"`
	LinearSource     *bool    `json:"linear_source,omitempty"`

	// Polar quadrature
	Quadrature     *string `json:"quadrature,omitempty"` // kind name, e.g. "gauss-legendre"
	NumPolarAngles *int    `json:"num_polar_angles,omitempty"`

	// Sweep harness
	NumWorkers *int `json:"num_workers,omitempty"`

	// TableCache is a SQLite path for persisted tables; empty disables caching.
	TableCache *string `json:"table_cache,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyEvaluatorConfig returns an EvaluatorConfig with all fields set to nil.
func EmptyEvaluatorConfig() *EvaluatorConfig {
	return &EvaluatorConfig{}
}

// DefaultEvaluatorConfig returns a config with every field populated from
// the built-in defaults.
func DefaultEvaluatorConfig() *EvaluatorConfig {
	return &EvaluatorConfig{
		ExpPrecision:     ptrFloat64(DefaultExpPrecision),
		MaxOpticalLength: ptrFloat64(DefaultMaxOpticalLength),
		Interpolate:      ptrBool(true),
		LinearSource:     ptrBool(false),
		Quadrature:       ptrString(DefaultQuadrature),
		NumPolarAngles:   ptrInt(DefaultNumPolarAngles),
		NumWorkers:       ptrInt(DefaultNumWorkers),
		TableCache:       ptrString(""),
	}
}

// LoadEvaluatorConfig loads an EvaluatorConfig from a JSON file.
// The file must have a .json extension and be at most 1MB.
func LoadEvaluatorConfig(path string) (*EvaluatorConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyEvaluatorConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents. Panics if the file cannot be loaded; intended
// for test setup.
func MustLoadDefaultConfig() *EvaluatorConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from internal/storage/sqlite/
	}
	for _, path := range candidates {
		if cfg, err := LoadEvaluatorConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configured values are usable.
func (c *EvaluatorConfig) Validate() error {
	if c.ExpPrecision != nil {
		if v := *c.ExpPrecision; !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("exp_precision must be positive and finite, got %g", v)
		}
	}
	if c.MaxOpticalLength != nil {
		if v := *c.MaxOpticalLength; !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("max_optical_length must be positive and finite, got %g", v)
		}
	}
	if c.NumPolarAngles != nil && *c.NumPolarAngles < 1 {
		return fmt.Errorf("num_polar_angles must be at least 1, got %d", *c.NumPolarAngles)
	}
	if c.NumWorkers != nil && *c.NumWorkers < 1 {
		return fmt.Errorf("num_workers must be at least 1, got %d", *c.NumWorkers)
	}
	if c.Quadrature != nil && !quadrature.IsValidKind(*c.Quadrature) {
		return fmt.Errorf("quadrature must be one of %v, got %q", quadrature.ValidKinds, *c.Quadrature)
	}
	return nil
}

// GetExpPrecision returns the exp_precision value or the default.
func (c *EvaluatorConfig) GetExpPrecision() float64 {
	if c.ExpPrecision == nil {
		return DefaultExpPrecision
	}
	return *c.ExpPrecision
}

// GetMaxOpticalLength returns the max_optical_length value or the default.
func (c *EvaluatorConfig) GetMaxOpticalLength() float64 {
	if c.MaxOpticalLength == nil {
		return DefaultMaxOpticalLength
	}
	return *c.MaxOpticalLength
}

// GetInterpolate returns the interpolate value or the default.
func (c *EvaluatorConfig) GetInterpolate() bool {
	if c.Interpolate == nil {
		return true // default: table lookup
	}
	return *c.Interpolate
}

// GetLinearSource returns the linear_source value or the default.
func (c *EvaluatorConfig) GetLinearSource() bool {
	if c.LinearSource == nil {
		return false
	}
	return *c.LinearSource
}

// GetQuadrature returns the quadrature kind or the default.
func (c *EvaluatorConfig) GetQuadrature() string {
	if c.Quadrature == nil {
		return DefaultQuadrature
	}
	return *c.Quadrature
}

// GetNumPolarAngles returns the num_polar_angles value or the default.
func (c *EvaluatorConfig) GetNumPolarAngles() int {
	if c.NumPolarAngles == nil {
		return DefaultNumPolarAngles
	}
	return *c.NumPolarAngles
}

// GetNumWorkers returns the num_workers value or the default.
func (c *EvaluatorConfig) GetNumWorkers() int {
	if c.NumWorkers == nil {
		return DefaultNumWorkers
	}
	return *c.NumWorkers
}

// GetTableCache returns the table_cache path, or "" when caching is off.
func (c *EvaluatorConfig) GetTableCache() string {
	if c.TableCache == nil {
		return ""
	}
	return *c.TableCache
}
