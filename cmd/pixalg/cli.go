package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ExitError is an error that carries a process exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// config is the parsed command line.
type config struct {
	Files     []string
	Jobs      int
	Progress  bool
	FailFast  bool
	Seed      uint64
	SeedSet   bool
	LogLevel  string
	LogFormat string
}

// parseArgs processes command-line arguments. It returns the config, a
// flag telling the caller to exit cleanly (help was printed), or an
// *ExitError.
func parseArgs(args []string, output io.Writer) (*config, bool, error) {
	fs := flag.NewFlagSet("pixalg", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, `
pixalg - run per-pixel raster algebra scripts.

Usage:
  pixalg [options] RUN.hcl...

Each run file declares images, variables and per-pixel assignments.
Independent run files are evaluated concurrently.

Options:
`)
		fs.PrintDefaults()
	}

	cfg := &config{}
	fs.IntVar(&cfg.Jobs, "jobs", 0, "Maximum number of run files evaluated at once. 0 uses GOMAXPROCS.")
	fs.BoolVar(&cfg.Progress, "progress", false, "Show a progress bar for each run.")
	fs.BoolVar(&cfg.FailFast, "fail-fast", false, "Cancel the remaining runs after the first failure.")
	fs.Func("seed", "Seed for rand and randInt. Unset means a random seed.", func(s string) error {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return errors.New("must be an unsigned integer")
		}
		cfg.Seed, cfg.SeedSet = v, true
		return nil
	})
	fs.StringVar(&cfg.LogLevel, "log-level", "warn", "Logging level. Options: 'debug', 'info', 'warn', 'error'.")
	fs.StringVar(&cfg.LogFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	cfg.Files = fs.Args()
	if len(cfg.Files) == 0 {
		fs.Usage()
		return nil, false, &ExitError{Code: 2, Message: "no run files given"}
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	if cfg.Jobs < 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid jobs: must not be negative"}
	}
	return cfg, false, nil
}
