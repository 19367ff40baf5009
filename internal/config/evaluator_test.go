package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultEvaluatorConfig(t *testing.T) {
	cfg := DefaultEvaluatorConfig()

	if cfg.ExpPrecision == nil || *cfg.ExpPrecision != 1e-5 {
		t.Errorf("Expected ExpPrecision 1e-5, got %v", cfg.ExpPrecision)
	}
	if cfg.Interpolate == nil || *cfg.Interpolate != true {
		t.Errorf("Expected Interpolate true, got %v", cfg.Interpolate)
	}

	if cfg.GetMaxOpticalLength() != 10 {
		t.Errorf("GetMaxOpticalLength() = %f, want 10", cfg.GetMaxOpticalLength())
	}
	if cfg.GetLinearSource() != false {
		t.Errorf("GetLinearSource() = %v, want false", cfg.GetLinearSource())
	}
	if cfg.GetQuadrature() != "tabuchi-yamamoto" {
		t.Errorf("GetQuadrature() = %q, want tabuchi-yamamoto", cfg.GetQuadrature())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults: %v", err)
	}
}

func TestEmptyConfigGetters(t *testing.T) {
	cfg := EmptyEvaluatorConfig()

	if cfg.GetExpPrecision() != DefaultExpPrecision {
		t.Errorf("GetExpPrecision() = %g, want %g", cfg.GetExpPrecision(), DefaultExpPrecision)
	}
	if !cfg.GetInterpolate() {
		t.Error("GetInterpolate() = false, want true")
	}
	if cfg.GetNumPolarAngles() != DefaultNumPolarAngles {
		t.Errorf("GetNumPolarAngles() = %d, want %d", cfg.GetNumPolarAngles(), DefaultNumPolarAngles)
	}
	if cfg.GetNumWorkers() != DefaultNumWorkers {
		t.Errorf("GetNumWorkers() = %d, want %d", cfg.GetNumWorkers(), DefaultNumWorkers)
	}
	if cfg.GetTableCache() != "" {
		t.Errorf("GetTableCache() = %q, want empty", cfg.GetTableCache())
	}
}

func TestLoadEvaluatorConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "expeval.json")

	testJSON := `{
  "exp_precision": 1e-7,
  "max_optical_length": 20,
  "linear_source": true,
  "quadrature": "gauss-legendre",
  "num_polar_angles": 6
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadEvaluatorConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	want := &EvaluatorConfig{
		ExpPrecision:     ptrFloat64(1e-7),
		MaxOpticalLength: ptrFloat64(20),
		LinearSource:     ptrBool(true),
		Quadrature:       ptrString("gauss-legendre"),
		NumPolarAngles:   ptrInt(6),
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("LoadEvaluatorConfig mismatch (-want +got):\n%s", diff)
	}

	// Omitted fields fall back to defaults.
	if !cfg.GetInterpolate() {
		t.Error("GetInterpolate() = false, want default true")
	}
}

func TestLoadEvaluatorConfigMissing(t *testing.T) {
	_, err := LoadEvaluatorConfig("/nonexistent/path/to/config.json")
	if err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadEvaluatorConfigErrors(t *testing.T) {
	tmpDir := t.TempDir()

	testCases := []struct {
		name     string
		filename string
		content  string
	}{
		{"wrong_extension", "config.yaml", `{}`},
		{"invalid_json", "bad.json", `{"exp_precision": }`},
		{"zero_precision", "zero.json", `{"exp_precision": 0}`},
		{"negative_length", "neg.json", `{"max_optical_length": -1}`},
		{"no_polar_angles", "polar.json", `{"num_polar_angles": 0}`},
		{"no_workers", "workers.json", `{"num_workers": 0}`},
		{"empty_quadrature", "quad.json", `{"quadrature": ""}`},
		{"unknown_quadrature", "bogus.json", `{"quadrature": "bogus"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tc.filename)
			if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
				t.Fatalf("Failed to write test config: %v", err)
			}
			if _, err := LoadEvaluatorConfig(path); err == nil {
				t.Errorf("Expected error for %s, got nil", tc.name)
			}
		})
	}
}

func TestLoadEvaluatorConfigTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "large.json")
	big := make([]byte, 1024*1024+1)
	for i := range big {
		big[i] = ' '
	}
	if err := os.WriteFile(path, big, 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	if _, err := LoadEvaluatorConfig(path); err == nil {
		t.Error("Expected error for oversized config, got nil")
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if diff := cmp.Diff(DefaultEvaluatorConfig(), cfg); diff != "" {
		t.Errorf("defaults file differs from built-in defaults (-want +got):\n%s", diff)
	}
}
