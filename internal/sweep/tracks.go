package sweep

import (
	"fmt"
	"math/rand"
)

// Segment is one constant-material piece of a characteristic track.
type Segment struct {
	// Tau is the optical length σ·l projected onto the azimuthal plane.
	Tau float64
	// Sigma is the total cross section.
	Sigma float64
	// Source is the mean isotropic source q₀.
	Source float64
	// Slope is the linear source gradient q₁ along the track.
	Slope float64
}

// Track is an ordered list of segments traversed by one characteristic.
type Track struct {
	Segments []Segment
}

// GenerateTracks returns numTracks synthetic tracks of segmentsPerTrack
// segments each. Optical lengths are uniform on (0, maxTau]. The same seed
// always yields the same tracks.
func GenerateTracks(seed int64, numTracks, segmentsPerTrack int, maxTau float64) ([]Track, error) {
	if numTracks < 1 || segmentsPerTrack < 1 {
		return nil, fmt.Errorf("need at least one track and segment, got %d tracks of %d segments", numTracks, segmentsPerTrack)
	}
	if !(maxTau > 0) {
		return nil, fmt.Errorf("max optical length must be positive, got %g", maxTau)
	}

	rng := rand.New(rand.NewSource(seed))
	tracks := make([]Track, numTracks)
	for i := range tracks {
		segs := make([]Segment, segmentsPerTrack)
		for j := range segs {
			segs[j] = Segment{
				Tau:    maxTau * (1 - rng.Float64()),
				Sigma:  0.1 + 1.9*rng.Float64(),
				Source: rng.Float64(),
				Slope:  0.2 * (rng.Float64() - 0.5),
			}
		}
		tracks[i].Segments = segs
	}
	return tracks, nil
}

// CountSegments returns the total number of segments in tracks.
func CountSegments(tracks []Track) int64 {
	var n int64
	for _, t := range tracks {
		n += int64(len(t.Segments))
	}
	return n
}
