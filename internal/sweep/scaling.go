package sweep

import (
	"context"
	"fmt"
)

// ScalingPoint is the timing of one thread count in a strong-scaling study.
type ScalingPoint struct {
	Threads       int
	MeanSeconds   float64
	StddevSeconds float64
	// Speedup is relative to the first thread count in the study.
	Speedup  float64
	Segments int64
}

// ScalingStudy times base.Run over tracks iterations times for each thread
// count. base.Workers is overridden.
func ScalingStudy(ctx context.Context, base Runner, tracks []Track, threads []int, iterations int) ([]ScalingPoint, error) {
	if len(threads) == 0 {
		return nil, fmt.Errorf("no thread counts given")
	}
	if iterations < 1 {
		return nil, fmt.Errorf("iterations must be positive, got %d", iterations)
	}

	points := make([]ScalingPoint, 0, len(threads))
	for _, n := range threads {
		if n < 1 {
			return nil, fmt.Errorf("thread count must be positive, got %d", n)
		}
		r := base
		r.Workers = n

		times := make([]float64, iterations)
		var segments int64
		for it := range times {
			res, err := r.Run(ctx, tracks)
			if err != nil {
				return nil, fmt.Errorf("%d threads, iteration %d: %w", n, it, err)
			}
			times[it] = res.Elapsed.Seconds()
			segments = res.Segments
		}
		mean, sd := MeanStddev(times)
		points = append(points, ScalingPoint{
			Threads:       n,
			MeanSeconds:   mean,
			StddevSeconds: sd,
			Segments:      segments,
		})
	}

	baseline := points[0].MeanSeconds
	for i := range points {
		if points[i].MeanSeconds > 0 {
			points[i].Speedup = baseline / points[i].MeanSeconds
		}
	}
	return points, nil
}
