// Command scaling runs a thread strong-scaling study of the segment sweep
// and prints one CSV row per thread count.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"

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
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("scaling: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("scaling", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to evaluator JSON config (defaults built in)")
	threadList := fs.String("threads", "", "Comma-separated thread counts (default 1..num_workers doubling)")
	iterations := fs.Int("iters", 3, "Timed sweeps per thread count")
	numTracks := fs.Int("tracks", 2000, "Number of synthetic tracks")
	segments := fs.Int("segments", 50, "Segments per track")
	seed := fs.Int64("seed", 1, "Track generator seed")
	clone := fs.Bool("clone", false, "Give each worker its own evaluator copy")
	linear := fs.Bool("linear", false, "Use the linear-source update")
	intrinsic := fs.Bool("intrinsic", false, "Evaluate kernels directly instead of by table lookup")
	dbPath := fs.String("db", "", "SQLite database for cached tables and run results")
	label := fs.String("label", "scaling", "Label for stored runs")
	plotDir := fs.String("plot-dir", "", "Write runtime and speedup plots into this directory")
	debug := fs.Bool("debug", false, "Enable debug logging")
	showVersion := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.String("scaling"))
		return nil
	}
	monitoring.SetDebug(*debug)

	cfg := config.DefaultEvaluatorConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadEvaluatorConfig(*configPath); err != nil {
			return err
		}
	}

	threads, err := sweep.ParseCSVInts(*threadList)
	if err != nil {
		return err
	}
	if len(threads) == 0 {
		for n := 1; n <= cfg.GetNumWorkers(); n *= 2 {
			threads = append(threads, n)
		}
	}

	q, err := quadrature.New(cfg.GetQuadrature(), cfg.GetNumPolarAngles())
	if err != nil {
		return err
	}
	e, err := expeval.FromConfig(cfg, q)
	if err != nil {
		return err
	}
	if *linear {
		e.UseLinearSource()
	}
	if *intrinsic {
		e.UseIntrinsic()
	}

	var runs *sqlite.ScalingRunStore
	if *dbPath != "" {
		database, err := db.Open(*dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer database.Close()
		if _, err := e.LoadOrInitialize(sqlite.NewTableStore(database.DB)); err != nil {
			return err
		}
		runs = sqlite.NewScalingRunStore(database.DB)
	} else if e.IsUsingInterpolation() {
		if err := e.Initialize(); err != nil {
			return err
		}
	}

	tracks, err := sweep.GenerateTracks(*seed, *numTracks, *segments, e.MaxOpticalLength())
	if err != nil {
		return err
	}

	base := sweep.Runner{Evaluator: e, CloneEvaluators: *clone}
	points, err := sweep.ScalingStudy(ctx, base, tracks, threads, *iterations)
	if err != nil {
		return err
	}

	if err := writeCSV(stdout, points); err != nil {
		return err
	}

	if runs != nil {
		for _, p := range points {
			r := &sqlite.ScalingRun{
				Label:         *label,
				Threads:       p.Threads,
				MeanSeconds:   p.MeanSeconds,
				StddevSeconds: p.StddevSeconds,
				Speedup:       p.Speedup,
				Segments:      p.Segments,
			}
			if err := runs.InsertRun(r); err != nil {
				return fmt.Errorf("store run: %w", err)
			}
		}
	}

	if *plotDir != "" {
		paths, err := diagnostics.WriteScalingPlots(points, *plotDir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			monitoring.Logf("wrote %s", p)
		}
	}
	return nil
}

func writeCSV(w io.Writer, points []sweep.ScalingPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"threads", "mean_seconds", "stddev_seconds", "speedup", "segments"}); err != nil {
		return err
	}
	for _, p := range points {
		row := []string{
			strconv.Itoa(p.Threads),
			strconv.FormatFloat(p.MeanSeconds, 'g', 6, 64),
			strconv.FormatFloat(p.StddevSeconds, 'g', 6, 64),
			strconv.FormatFloat(p.Speedup, 'f', 3, 64),
			strconv.FormatInt(p.Segments, 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
