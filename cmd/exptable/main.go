// Command exptable builds an exponential interpolation table, reports its
// size and accuracy, and optionally caches it in SQLite and plots its error.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/moc/internal/config"
	"github.com/banshee-data/moc/internal/db"
	"github.com/banshee-data/moc/internal/diagnostics"
	"github.com/banshee-data/moc/internal/expeval"
	"github.com/banshee-data/moc/internal/monitoring"
	"github.com/banshee-data/moc/internal/quadrature"
	"github.com/banshee-data/moc/internal/storage/sqlite"
	"github.com/banshee-data/moc/internal/sweep"
	"github.com/banshee-data/moc/internal/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("exptable: %v", err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("exptable", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to evaluator JSON config (defaults built in)")
	precision := fs.Float64("precision", 0, "Maximum interpolation error (overrides config)")
	maxTau := fs.Float64("max-tau", 0, "Maximum tabulated optical length (overrides config)")
	linear := fs.Bool("linear", false, "Tabulate linear-source kernels F2, H and G2")
	intrinsic := fs.Bool("intrinsic", false, "Evaluate kernels directly instead of by table lookup")
	dbPath := fs.String("db", "", "SQLite table cache (overrides config table_cache)")
	label := fs.String("label", "", "Store the table under this label instead of reusing the cache")
	plotPath := fs.String("plot", "", "Write an error plot PNG to this path")
	htmlPath := fs.String("html", "", "Write an interactive error chart to this HTML path")
	samples := fs.Int("samples", 2001, "Sample points for the error profile")
	evalList := fs.String("eval", "", "Comma-separated optical lengths to evaluate the kernels at (e.g., 0.1,1,5)")
	debug := fs.Bool("debug", false, "Enable debug logging")
	showVersion := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.String("exptable"))
		return nil
	}
	monitoring.SetDebug(*debug)

	taus, err := sweep.ParseCSVFloat64s(*evalList)
	if err != nil {
		return fmt.Errorf("invalid -eval: %w", err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	q, err := quadrature.New(cfg.GetQuadrature(), cfg.GetNumPolarAngles())
	if err != nil {
		return err
	}
	e, err := expeval.FromConfig(cfg, q)
	if err != nil {
		return err
	}
	if *precision > 0 {
		if err := e.SetExpPrecision(*precision); err != nil {
			return err
		}
	}
	if *maxTau > 0 {
		if err := e.SetMaxOpticalLength(*maxTau); err != nil {
			return err
		}
	}
	if *linear {
		e.UseLinearSource()
	}
	if *intrinsic {
		e.UseIntrinsic()
	}

	cachePath := cfg.GetTableCache()
	if *dbPath != "" {
		cachePath = *dbPath
	}
	source := "built"
	if cachePath != "" {
		database, err := db.Open(cachePath)
		if err != nil {
			return fmt.Errorf("open table cache: %w", err)
		}
		defer database.Close()
		store := sqlite.NewTableStore(database.DB)

		if *label != "" {
			if err := e.Initialize(); err != nil {
				return err
			}
			id, err := e.Persist(store, *label)
			if err != nil {
				return err
			}
			source = "stored as " + id
		} else {
			cached, err := e.LoadOrInitialize(store)
			if err != nil {
				return err
			}
			if cached {
				source = "cached"
			}
		}
	} else if err := e.Initialize(); err != nil {
		return err
	}

	if err := printStats(stdout, e, source); err != nil {
		return err
	}
	if err := printEvaluations(stdout, e, taus); err != nil {
		return err
	}

	if *plotPath == "" && *htmlPath == "" {
		return nil
	}
	profile, err := diagnostics.ErrorProfile(e, *samples)
	if err != nil {
		return err
	}
	if *plotPath != "" {
		if err := diagnostics.WriteErrorPlot(profile, *plotPath); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "plot: %s\n", *plotPath)
	}
	if *htmlPath != "" {
		f, err := os.Create(*htmlPath)
		if err != nil {
			return err
		}
		if err := diagnostics.WriteErrorChart(profile, f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "chart: %s\n", *htmlPath)
	}
	return nil
}

func loadConfig(path string) (*config.EvaluatorConfig, error) {
	if path == "" {
		return config.DefaultEvaluatorConfig(), nil
	}
	return config.LoadEvaluatorConfig(path)
}

func printStats(w io.Writer, e *expeval.Evaluator, source string) error {
	n, err := e.NumIntervals()
	if err != nil {
		return err
	}
	spacing, _ := e.TableSpacing()
	size, _ := e.TableSize()
	maxDiff, _ := e.MaxDifference()

	kernels := 2
	if e.IsUsingLinearSource() {
		kernels = 5
	}
	fmt.Fprintf(w, "table:          %s\n", source)
	fmt.Fprintf(w, "mode:           %s\n", e.Mode())
	fmt.Fprintf(w, "kernels:        %d\n", kernels)
	fmt.Fprintf(w, "precision:      %g\n", e.ExpPrecision())
	fmt.Fprintf(w, "max tau:        %g\n", e.MaxOpticalLength())
	fmt.Fprintf(w, "intervals:      %d\n", n)
	fmt.Fprintf(w, "spacing:        %.6g\n", spacing)
	fmt.Fprintf(w, "entries:        %d (%d bytes)\n", size, 8*size)
	fmt.Fprintf(w, "max difference: %.3g\n", maxDiff)
	return nil
}

// printEvaluations prints every enabled kernel at each optical length.
func printEvaluations(w io.Writer, e *expeval.Evaluator, taus []float64) error {
	kernels := []struct {
		name string
		fn   func(float64) (float64, error)
	}{
		{"E", e.ComputeExponential},
		{"F1", e.ComputeExponentialF1},
	}
	if e.IsUsingLinearSource() {
		kernels = append(kernels, []struct {
			name string
			fn   func(float64) (float64, error)
		}{
			{"F2", e.ComputeExponentialF2},
			{"H", e.ComputeExponentialH},
			{"G2", e.ComputeExponentialG2},
		}...)
	}
	for _, tau := range taus {
		fmt.Fprintf(w, "tau %-10g", tau)
		for _, k := range kernels {
			v, err := k.fn(tau)
			if err != nil {
				return fmt.Errorf("evaluate %s(%g): %w", k.name, tau, err)
			}
			fmt.Fprintf(w, " %s=%.9f", k.name, v)
		}
		fmt.Fprintln(w)
	}
	return nil
}
