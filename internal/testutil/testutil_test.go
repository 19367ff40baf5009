package testutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// TestAssertNoError_NilErr tests nil error path.
func TestAssertNoError_NilErr(t *testing.T) {
	fakeT := &testing.T{}
	AssertNoError(fakeT, nil)
	if fakeT.Failed() {
		t.Error("expected no failure for nil error")
	}
}

// TestAssertError_WithErr tests non-nil error path.
func TestAssertError_WithErr(t *testing.T) {
	fakeT := &testing.T{}
	AssertError(fakeT, errors.New("something wrong"))
	if fakeT.Failed() {
		t.Error("expected no failure when error is present")
	}
}

// TestAssertErrorIs_Wrapped verifies wrapped sentinels are matched.
func TestAssertErrorIs_Wrapped(t *testing.T) {
	sentinel := errors.New("sentinel")
	fakeT := &testing.T{}
	AssertErrorIs(fakeT, fmt.Errorf("context: %w", sentinel), sentinel)
	if fakeT.Failed() {
		t.Error("expected no failure for wrapped sentinel")
	}
}

func TestAssertClose(t *testing.T) {
	fakeT := &testing.T{}
	AssertClose(fakeT, "x", 1.0+1e-12, 1.0, 1e-9)
	if fakeT.Failed() {
		t.Error("expected no failure within tolerance")
	}

	fakeT = &testing.T{}
	AssertClose(fakeT, "x", 1.1, 1.0, 1e-9)
	if !fakeT.Failed() {
		t.Error("expected failure outside tolerance")
	}
}

func TestTempDBPath(t *testing.T) {
	p := TempDBPath(t)
	if filepath.Base(p) != "test.db" {
		t.Errorf("base = %s, want test.db", filepath.Base(p))
	}
	if fi, err := os.Stat(filepath.Dir(p)); err != nil || !fi.IsDir() {
		t.Errorf("parent of %s is not a directory: %v", p, err)
	}
}

func TestPolarSet(t *testing.T) {
	p := PolarSet{0.5, 1}
	if p.NumPolarAngles() != 2 {
		t.Errorf("NumPolarAngles = %d, want 2", p.NumPolarAngles())
	}
	if p.SinTheta(0) != 0.5 {
		t.Errorf("SinTheta(0) = %g, want 0.5", p.SinTheta(0))
	}
}
