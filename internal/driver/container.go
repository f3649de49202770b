package driver

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/samber/do"

	"github.com/you-not-fish/stc/internal/diag"
)

// Options configures a pipeline run.
type Options struct {
	// Units are the files holding the compilation units, in order.
	Units []string

	// ErrorConfig is a TOML or JSON file overriding code severities.
	ErrorConfig string
	// Format names the diagnostics reporter.
	Format diag.Format

	// HeaderDir receives one C header per unit if set.
	HeaderDir string
	// HardwareConf is the hardware configuration file written if set.
	HardwareConf string

	// Jobs bounds the goroutines indexing and linking units.
	// Zero means GOMAXPROCS.
	Jobs int

	// Verbose enables debug logging.
	Verbose bool

	// Diagnostics receives the reported diagnostics; Log receives the
	// log output. Both default to os.Stderr.
	Diagnostics io.Writer
	Log         io.Writer
}

// NewContainer returns an injector providing every service of a pipeline
// run configured by opts. The injector's own log lines go to the debug
// logger.
func NewContainer(opts Options) *do.Injector {
	if opts.Diagnostics == nil {
		opts.Diagnostics = os.Stderr
	}
	if opts.Log == nil {
		opts.Log = os.Stderr
	}
	logger := newLogger(opts.Log, opts.Verbose)

	i := do.NewWithOpts(&do.InjectorOpts{
		Logf: logger.debugf,
	})
	do.ProvideValue(i, opts)
	do.ProvideValue(i, logger)

	do.Provide(i, func(i *do.Injector) (*diag.Registry, error) {
		opts := do.MustInvoke[Options](i)
		r := diag.NewRegistry()
		if opts.ErrorConfig == "" {
			return r, nil
		}
		cfg, err := diag.LoadConfig(opts.ErrorConfig)
		if err != nil {
			return nil, err
		}
		if err := r.Configure(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", opts.ErrorConfig, err)
		}
		return r, nil
	})
	do.Provide(i, func(i *do.Injector) (diag.Reporter, error) {
		opts := do.MustInvoke[Options](i)
		return diag.NewReporter(opts.Format, opts.Diagnostics)
	})
	do.Provide(i, func(i *do.Injector) (*diag.Diagnostician, error) {
		registry, err := do.Invoke[*diag.Registry](i)
		if err != nil {
			return nil, err
		}
		reporter, err := do.Invoke[diag.Reporter](i)
		if err != nil {
			return nil, err
		}
		return &diag.Diagnostician{Assessor: registry, Reporter: reporter}, nil
	})
	do.Provide(i, NewPipeline)
	return i
}

// Logger writes the driver's messages. Debug lines are dropped unless
// verbose output was requested.
type Logger struct {
	*log.Logger
	verbose bool
}

func newLogger(w io.Writer, verbose bool) *Logger {
	return &Logger{Logger: log.New(w, "stc: ", 0), verbose: verbose}
}

func (l *Logger) debugf(format string, args ...any) {
	if l.verbose {
		l.Printf(format, args...)
	}
}

// Run builds a container for opts and runs its pipeline.
func Run(ctx context.Context, opts Options) (*Result, error) {
	i := NewContainer(opts)
	defer i.Shutdown()

	p, err := do.Invoke[*Pipeline](i)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx)
}
