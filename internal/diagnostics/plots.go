package diagnostics

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/moc/internal/sweep"
)

// WriteErrorPlot renders p as a PNG (or any format plot.Save accepts by
// extension) with one line per kernel and the precision bound.
func WriteErrorPlot(p *Profile, path string) error {
	if p == nil || len(p.Taus) == 0 {
		return fmt.Errorf("empty profile")
	}

	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("Interpolation error (precision %g)", p.Precision)
	pl.X.Label.Text = "Optical length τ"
	pl.Y.Label.Text = "|interpolated − intrinsic|"

	colors := generateColors(len(p.Kernels))
	for k, name := range p.Kernels {
		pts := make(plotter.XYs, len(p.Taus))
		for i, tau := range p.Taus {
			pts[i] = plotter.XY{X: tau, Y: p.Errors[k][i]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = colors[k]
		line.Width = vg.Points(1)
		pl.Add(line)
		pl.Legend.Add(name, line)
	}

	bound, err := plotter.NewLine(plotter.XYs{
		{X: p.Taus[0], Y: p.Precision},
		{X: p.Taus[len(p.Taus)-1], Y: p.Precision},
	})
	if err != nil {
		return err
	}
	bound.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	pl.Add(bound)
	pl.Legend.Add("precision", bound)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create plot directory: %w", err)
	}
	if err := pl.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// WriteScalingPlots writes runtime.png and speedup.png into dir and
// returns their paths.
func WriteScalingPlots(points []sweep.ScalingPoint, dir string) ([]string, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("no scaling points")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create plot directory: %w", err)
	}

	runtime := plot.New()
	runtime.Title.Text = "Sweep runtime"
	runtime.X.Label.Text = "Threads"
	runtime.Y.Label.Text = "Time (s)"

	type errXY struct {
		plotter.XYs
		plotter.YErrors
	}
	data := errXY{XYs: make(plotter.XYs, len(points)), YErrors: make(plotter.YErrors, len(points))}
	for i, p := range points {
		data.XYs[i] = plotter.XY{X: float64(p.Threads), Y: p.MeanSeconds}
		data.YErrors[i].Low = p.StddevSeconds
		data.YErrors[i].High = p.StddevSeconds
	}
	rLine, rPoints, err := plotter.NewLinePoints(data.XYs)
	if err != nil {
		return nil, err
	}
	bars, err := plotter.NewYErrorBars(data)
	if err != nil {
		return nil, err
	}
	runtime.Add(rLine, rPoints, bars)

	speedup := plot.New()
	speedup.Title.Text = "Strong scaling"
	speedup.X.Label.Text = "Threads"
	speedup.Y.Label.Text = "Speedup"

	measured := make(plotter.XYs, len(points))
	ideal := make(plotter.XYs, len(points))
	base := float64(points[0].Threads)
	for i, p := range points {
		measured[i] = plotter.XY{X: float64(p.Threads), Y: p.Speedup}
		ideal[i] = plotter.XY{X: float64(p.Threads), Y: float64(p.Threads) / base}
	}
	mLine, mPoints, err := plotter.NewLinePoints(measured)
	if err != nil {
		return nil, err
	}
	iLine, err := plotter.NewLine(ideal)
	if err != nil {
		return nil, err
	}
	iLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	speedup.Add(mLine, mPoints, iLine)
	speedup.Legend.Add("measured", mLine, mPoints)
	speedup.Legend.Add("ideal", iLine)

	paths := []string{filepath.Join(dir, "runtime.png"), filepath.Join(dir, "speedup.png")}
	for i, pl := range []*plot.Plot{runtime, speedup} {
		if err := pl.Save(8*vg.Inch, 5*vg.Inch, paths[i]); err != nil {
			return nil, fmt.Errorf("failed to save %s: %w", paths[i], err)
		}
	}
	return paths, nil
}
