// Package env bundles the process-wide services the analysis driver hands
// to every component: mode flags, the diagnostic reporter and checked
// allocation.
package env

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"sapec/internal/config"
	"sapec/internal/diag"
	"sapec/internal/metrics"
	"sapec/internal/mode"
	"sapec/internal/xalloc"
)

// Env is owned by the driver and passed by pointer.
type Env struct {
	Flags   *mode.Flags
	Diag    *diag.Reporter
	Mem     *xalloc.Checked
	Metrics *metrics.Metrics
	Config  config.Config
}

// Options configure New.
type Options struct {
	// Config supplies mode defaults, color policy and memory limit.
	Config config.Config
	// Out is the diagnostic stream; nil means os.Stderr.
	Out io.Writer
	// Registerer receives the counters; nil keeps them unregistered.
	Registerer prometheus.Registerer
	// Exit replaces os.Exit on the fatal path.
	Exit func(code int)
}

// New builds an Env with flags seeded from opts.Config.
func New(opts Options) (*Env, error) {
	m, err := metrics.New(opts.Registerer)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	maxBlock, err := opts.Config.MaxBlock()
	if err != nil {
		return nil, err
	}

	reporter := diag.New(opts.Out,
		diag.WithPrefix(opts.Config.Diagnostics.Prefix),
		diag.WithColor(opts.Config.ColorMode()),
		diag.WithExit(opts.Exit),
		diag.WithSink(m),
	)
	alloc := xalloc.New(xalloc.WithMaxBlock(maxBlock), xalloc.WithObserver(m))

	flags := new(mode.Flags)
	opts.Config.ApplyMode(flags)

	return &Env{
		Flags:   flags,
		Diag:    reporter,
		Mem:     xalloc.NewChecked(alloc, reporter),
		Metrics: m,
		Config:  opts.Config,
	}, nil
}

// Verbose writes msg to the diagnostic stream when verbose mode is on.
func (e *Env) Verbose(msg string) {
	if !e.Flags.Verbose() {
		return
	}
	_, _ = io.WriteString(e.Diag.Writer(), msg)
}

// Verbosef formats and writes when verbose mode is on.
func (e *Env) Verbosef(format string, args ...any) {
	if !e.Flags.Verbose() {
		return
	}
	_, _ = fmt.Fprintf(e.Diag.Writer(), format, args...)
}

// Ready reports whether the analysis may run: the environment was marked
// runnable and no help request is pending.
func (e *Env) Ready() bool {
	return e.Flags.Runnable() && !e.Flags.Help()
}

// Reset clears every mode bit.
func (e *Env) Reset() { e.Flags.Reset() }

// Restart starts a fresh processing cycle: every mode is cleared and the
// configured defaults are applied again.
func (e *Env) Restart() {
	e.Flags.Reset()
	e.Config.ApplyMode(e.Flags)
}
