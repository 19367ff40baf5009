package diagnostics

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteErrorChart renders p as a standalone HTML line chart.
func WriteErrorChart(p *Profile, w io.Writer) error {
	if p == nil || len(p.Taus) == 0 {
		return fmt.Errorf("empty profile")
	}

	xs := make([]string, len(p.Taus))
	for i, tau := range p.Taus {
		xs[i] = strconv.FormatFloat(tau, 'f', 4, 64)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Exponential table error", Width: "1100px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Interpolation error", Subtitle: fmt.Sprintf("precision=%g samples=%d", p.Precision, len(p.Taus))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "τ", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "|error|", NameLocation: "middle", NameGap: 60}),
	)
	line.SetXAxis(xs)

	for k, name := range p.Kernels {
		data := make([]opts.LineData, len(p.Errors[k]))
		for i, v := range p.Errors[k] {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(name, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}

	bound := make([]opts.LineData, len(p.Taus))
	for i := range bound {
		bound[i] = opts.LineData{Value: p.Precision}
	}
	line.AddSeries("precision", bound,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}),
	)

	return line.Render(w)
}
