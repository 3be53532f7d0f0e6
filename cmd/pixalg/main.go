// Command pixalg evaluates per-pixel raster algebra run files.
//
// Usage:
//
//	pixalg [options] RUN.hcl...
//
// Each run file is parsed, its source images are loaded, the assignments
// are evaluated once per pixel of the processing area and the destination
// images are written. Final variable values are printed in a summary.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/gogpu/pixalg"
	"github.com/gogpu/pixalg/internal/cache"
	"github.com/gogpu/pixalg/internal/parallel"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run is the testable body of main.
func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	cfg, shouldExit, err := parseArgs(args, stdout)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat, stderr)
	pixalg.SetLogger(logger)
	defer pixalg.SetLogger(nil)

	batch := parallel.NewBatch(cfg.Jobs)
	inPlace := len(cfg.Files) == 1 || batch.Workers() == 1
	var mu sync.Mutex
	sources := cache.New[string, *pixalg.Grid](sourceCacheSize)

	results := make([]*result, len(cfg.Files))
	jobs := make([]parallel.Job, len(cfg.Files))
	for i, file := range cfg.Files {
		jobs[i] = func(ctx context.Context) error {
			var listener pixalg.ProgressListener = pixalg.NullProgress{}
			if cfg.Progress {
				listener = newProgressBar(&mu, stderr, file, inPlace)
			}
			res, err := runFile(ctx, file, cfg, sources, listener)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		}
	}

	logger.Info("pixalg: starting", "files", len(cfg.Files), "jobs", batch.Workers())
	var errs []error
	if cfg.FailFast {
		errs = make([]error, len(jobs))
		if err := batch.RunFailFast(ctx, jobs); err != nil {
			// The failing run is not known by index; report it once.
			writeSummary(stdout, cfg.Files, results, errs)
			return &ExitError{Code: 1, Message: err.Error()}
		}
	} else {
		errs = batch.Run(ctx, jobs)
	}

	writeSummary(stdout, cfg.Files, results, errs)
	st := sources.Stats()
	logger.Debug("pixalg: source cache", "entries", st.Len, "hits", st.Hits, "misses", st.Misses)
	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed > 0 {
		return &ExitError{Code: 1, Message: fmt.Sprintf("%d of %d runs failed", failed, len(cfg.Files))}
	}
	return nil
}
