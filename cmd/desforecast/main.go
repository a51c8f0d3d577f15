package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-json"
	"github.com/pkg/profile"

	forecaster "github.com/ginilab/go-desforecaster"
	"github.com/ginilab/go-desforecaster/dataset"
	"github.com/ginilab/go-desforecaster/forecast"
	"github.com/ginilab/go-desforecaster/internal/config"
	"github.com/ginilab/go-desforecaster/internal/logging"
)

type cliOptions struct {
	dataPath   string
	sheet      string
	alpha      float64
	horizon    int
	asJSON     bool
	cpuProfile string
}

func main() {
	os.Exit(realMain())
}

// realMain owns every deferred cleanup so they run before the process exits
func realMain() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	var opt cliOptions
	flag.StringVar(&opt.dataPath, "data", cfg.Data.Path, "path of the xlsx workbook")
	flag.StringVar(&opt.sheet, "sheet", cfg.Data.Sheet, "sheet to read, defaults to the first sheet")
	flag.Float64Var(&opt.alpha, "alpha", cfg.Forecast.DefaultAlpha, "smoothing factor in (0, 1]")
	flag.IntVar(&opt.horizon, "horizon", cfg.Forecast.DefaultHorizon, "number of years to forecast")
	flag.BoolVar(&opt.asJSON, "json", false, "print the results as JSON")
	flag.StringVar(&opt.cpuProfile, "cpuprofile", "", "write a cpu profile into this directory")
	flag.Parse()

	logger, closer, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		return 1
	}
	defer closer.Close()

	if opt.cpuProfile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(opt.cpuProfile), profile.Quiet).Stop()
	}

	return execute(os.Stdout, os.Stderr, logger, opt)
}

// execute runs the forecast and maps its outcome to a process exit code
func execute(stdout, stderr io.Writer, logger *slog.Logger, opt cliOptions) int {
	if err := run(stdout, opt); err != nil {
		logger.Error("forecast failed", "path", opt.dataPath, "alpha", opt.alpha, "horizon", opt.horizon, "error", err)
		if errors.Is(err, forecast.ErrInsufficientData) {
			fmt.Fprintf(stderr, "at least %d observations are required\n", forecast.MinObservations)
		}
		return 1
	}
	return 0
}

func run(w io.Writer, opt cliOptions) error {
	loadOpt := dataset.DefaultLoadOptions()
	loadOpt.Sheet = opt.sheet
	raw, err := dataset.Load(opt.dataPath, loadOpt)
	if err != nil {
		return err
	}
	years, y, err := dataset.Clean(raw).Gini()
	if err != nil {
		return fmt.Errorf("unable to read gini series, %w", err)
	}

	f, err := forecaster.New(forecaster.NewOptions(opt.alpha, opt.horizon))
	if err != nil {
		return err
	}
	if err := f.Fit(years, y); err != nil {
		return err
	}

	if opt.asJSON {
		out, err := json.MarshalIndent(f.FitResults(), "", "  ")
		if err != nil {
			return fmt.Errorf("unable to encode results, %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}

	m, err := f.Model()
	if err != nil {
		return err
	}
	if err := m.TablePrint(w); err != nil {
		return err
	}
	return f.FitResults().TablePrint(w, "", "  ")
}
