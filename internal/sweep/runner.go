package sweep

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/banshee-data/moc/internal/expeval"
	"github.com/banshee-data/moc/internal/monitoring"
	"github.com/banshee-data/moc/internal/timeutil"
)

// Runner attenuates angular flux along tracks using a shared evaluator.
type Runner struct {
	// Evaluator must be initialized unless it is in intrinsic mode.
	// Linear-source evaluators also need a quadrature.
	Evaluator *expeval.Evaluator
	// Workers is the number of goroutines; values below 1 mean 1.
	Workers int
	// CloneEvaluators gives each worker a DeepCopy instead of sharing.
	CloneEvaluators bool
	// Clock times the sweep; nil means the wall clock.
	Clock timeutil.Clock
}

// Result summarises one sweep.
type Result struct {
	Workers     int
	Tracks      int
	Segments    int64
	Evaluations int64
	// Tally is the weighted outgoing angular flux summed over tracks in
	// track order, so it does not depend on the worker count.
	Tally   float64
	Elapsed time.Duration
}

// weighted is implemented by quadratures that carry polar weights.
type weighted interface {
	Weight(polar int) float64
}

type polarSet struct {
	inv    []float64
	weight []float64
}

func (r *Runner) polarSet() (polarSet, error) {
	ev := r.Evaluator
	q := ev.Quadrature()
	if q == nil {
		if ev.IsUsingLinearSource() {
			return polarSet{}, expeval.ErrNoQuadrature
		}
		return polarSet{inv: []float64{1}, weight: []float64{1}}, nil
	}

	n := q.NumPolarAngles()
	ps := polarSet{inv: make([]float64, n), weight: make([]float64, n)}
	w, hasWeights := q.(weighted)
	for p := 0; p < n; p++ {
		inv, err := ev.InverseSinTheta(p)
		if err != nil {
			return polarSet{}, err
		}
		ps.inv[p] = inv
		if hasWeights {
			ps.weight[p] = w.Weight(p)
		} else {
			ps.weight[p] = 1 / float64(n)
		}
	}
	return ps, nil
}

// Run sweeps every track once. It stops at the first evaluation error or
// when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, tracks []Track) (Result, error) {
	if r.Evaluator == nil {
		return Result{}, errors.New("sweep: nil evaluator")
	}
	if r.Evaluator.IsUsingInterpolation() && !r.Evaluator.IsInitialized() {
		return Result{}, expeval.ErrNotInitialized
	}
	ps, err := r.polarSet()
	if err != nil {
		return Result{}, fmt.Errorf("sweep: %w", err)
	}
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	clock := r.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	start := clock.Now()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	tallies := make([]float64, len(tracks))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for w := 0; w < workers; w++ {
		ev := r.Evaluator
		if r.CloneEvaluators {
			ev = ev.DeepCopy()
		}
		wg.Add(1)
		go func(ev *expeval.Evaluator) {
			defer wg.Done()
			for i := range jobs {
				v, err := sweepTrack(ev, ps, tracks[i])
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("track %d: %w", i, err)
					}
					mu.Unlock()
					cancel()
					return
				}
				tallies[i] = v
			}
		}(ev)
	}

feed:
	for i := range tracks {
		select {
		case jobs <- i:
		case <-runCtx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return Result{}, firstErr
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{
		Workers:  workers,
		Tracks:   len(tracks),
		Segments: CountSegments(tracks),
		Elapsed:  clock.Since(start),
	}
	res.Evaluations = res.Segments * int64(len(ps.inv))
	for _, v := range tallies {
		res.Tally += v
	}
	monitoring.Debugf("sweep: %d tracks, %d segments on %d workers in %v", res.Tracks, res.Segments, workers, res.Elapsed)
	return res, nil
}

// sweepTrack attenuates a vacuum-incident flux along t for every polar
// angle and returns the weighted outgoing flux.
func sweepTrack(ev *expeval.Evaluator, ps polarSet, t Track) (float64, error) {
	linear := ev.IsUsingLinearSource()
	var tally float64
	for p, inv := range ps.inv {
		psi := 0.0
		for _, s := range t.Segments {
			var err error
			if linear {
				psi, err = attenuateLinear(ev, psi, s, p, inv)
			} else {
				psi, err = attenuateFlat(ev, psi, s, inv)
			}
			if err != nil {
				return 0, err
			}
		}
		tally += ps.weight[p] * psi
	}
	return tally, nil
}

// attenuateFlat applies ψ_out = ψ_in − (ψ_in − q/σ)·E(τ).
func attenuateFlat(ev *expeval.Evaluator, psi float64, s Segment, inv float64) (float64, error) {
	e, err := ev.ComputeExponential(s.Tau * inv)
	if err != nil {
		return 0, err
	}
	return psi - (psi-s.Source/s.Sigma)*e, nil
}

// attenuateLinear adds the linear source term q₁·l²·(F1 − F2/2)/2 to the
// flat-source update, where l is the 3D segment length.
func attenuateLinear(ev *expeval.Evaluator, psi float64, s Segment, polar int, inv float64) (float64, error) {
	c, err := ev.RetrieveExponentialComponents(s.Tau, polar)
	if err != nil {
		return 0, err
	}
	l := s.Tau * inv / s.Sigma
	return psi - (psi-s.Source/s.Sigma)*c.Exponential + s.Slope*l*l*(c.F1-c.F2/2)/2, nil
}
