package sweep

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/moc/internal/timeutil"
)

func TestScalingStudy(t *testing.T) {
	tracks, err := GenerateTracks(11, 16, 50, 5)
	require.NoError(t, err)
	base := Runner{Evaluator: newEvaluator(t, true), CloneEvaluators: true}

	points, err := ScalingStudy(context.Background(), base, tracks, []int{1, 2, 4}, 2)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, 1.0, points[0].Speedup)
	for i, p := range points {
		assert.Equal(t, []int{1, 2, 4}[i], p.Threads)
		assert.Equal(t, int64(800), p.Segments)
		assert.GreaterOrEqual(t, p.MeanSeconds, 0.0)
		assert.GreaterOrEqual(t, p.StddevSeconds, 0.0)
	}
	assert.Equal(t, 0, base.Workers, "base runner is not modified")
}

func TestScalingStudy_Invalid(t *testing.T) {
	tracks, err := GenerateTracks(1, 1, 1, 1)
	require.NoError(t, err)
	base := Runner{Evaluator: newEvaluator(t, false)}
	ctx := context.Background()

	_, err = ScalingStudy(ctx, base, tracks, nil, 1)
	assert.Error(t, err)
	_, err = ScalingStudy(ctx, base, tracks, []int{1}, 0)
	assert.Error(t, err)
	_, err = ScalingStudy(ctx, base, tracks, []int{1, 0}, 1)
	assert.Error(t, err)
}

func TestScalingStudy_SteppingClock(t *testing.T) {
	tracks, err := GenerateTracks(5, 4, 4, 2)
	require.NoError(t, err)
	clock := timeutil.NewSteppingClock(time.Unix(0, 0), 500*time.Millisecond)
	base := Runner{Evaluator: newEvaluator(t, false), Clock: clock}

	points, err := ScalingStudy(context.Background(), base, tracks, []int{1, 3}, 4)
	require.NoError(t, err)
	for _, p := range points {
		assert.Equal(t, 0.5, p.MeanSeconds)
		assert.Equal(t, 0.0, p.StddevSeconds)
		assert.Equal(t, 1.0, p.Speedup)
	}
}
