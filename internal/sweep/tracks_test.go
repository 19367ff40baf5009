package sweep

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGenerateTracks_Deterministic(t *testing.T) {
	a, err := GenerateTracks(42, 5, 7, 3)
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateTracks(42, 5, 7, 3)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different tracks (-a +b):\n%s", diff)
	}

	c, err := GenerateTracks(43, 5, 7, 3)
	if err != nil {
		t.Fatal(err)
	}
	if cmp.Equal(a, c) {
		t.Error("different seeds produced identical tracks")
	}
}

func TestGenerateTracks_Ranges(t *testing.T) {
	tracks, err := GenerateTracks(1, 20, 50, 2.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 20 {
		t.Fatalf("tracks = %d, want 20", len(tracks))
	}
	if n := CountSegments(tracks); n != 1000 {
		t.Errorf("CountSegments = %d, want 1000", n)
	}
	for _, tr := range tracks {
		for _, s := range tr.Segments {
			if s.Tau <= 0 || s.Tau > 2.5 {
				t.Errorf("tau %g outside (0, 2.5]", s.Tau)
			}
			if s.Sigma < 0.1 || s.Sigma > 2 {
				t.Errorf("sigma %g outside [0.1, 2]", s.Sigma)
			}
			if s.Source < 0 || s.Source >= 1 {
				t.Errorf("source %g outside [0, 1)", s.Source)
			}
		}
	}
}

func TestGenerateTracks_Invalid(t *testing.T) {
	cases := []struct {
		tracks, segs int
		maxTau       float64
	}{
		{0, 1, 1},
		{1, 0, 1},
		{1, 1, 0},
		{1, 1, -2},
	}
	for _, c := range cases {
		if _, err := GenerateTracks(1, c.tracks, c.segs, c.maxTau); err == nil {
			t.Errorf("GenerateTracks(%d, %d, %g) expected error", c.tracks, c.segs, c.maxTau)
		}
	}
}
