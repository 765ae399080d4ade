package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"sapec/internal/exitcodes"
)

// Sink receives one notification per reported message.
type Sink interface {
	ObserveDiagnostic(sev Severity)
}

// Reporter writes diagnostics to a single stream.
// It is not safe for concurrent use.
type Reporter struct {
	out    io.Writer
	prefix string
	labels [numSeverities]*color.Color
	exit   func(code int)
	sink   Sink
	counts [numSeverities]int
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithPrefix sets the program name printed before the severity.
func WithPrefix(prefix string) Option {
	return func(r *Reporter) { r.prefix = prefix }
}

// WithColor sets the color policy. The default is ColorOff.
func WithColor(mode ColorMode) Option {
	return func(r *Reporter) {
		on := mode.enabled(r.out)
		for _, c := range r.labels {
			if on {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

// WithExit replaces os.Exit on the fatal path.
func WithExit(exit func(code int)) Option {
	return func(r *Reporter) {
		if exit != nil {
			r.exit = exit
		}
	}
}

// WithSink attaches a counter sink.
func WithSink(s Sink) Option {
	return func(r *Reporter) { r.sink = s }
}

// New returns a Reporter writing to out. A nil out means os.Stderr.
func New(out io.Writer, opts ...Option) *Reporter {
	if out == nil {
		out = os.Stderr
	}
	r := &Reporter{out: out, exit: os.Exit}
	for _, sev := range Severities() {
		r.labels[sev] = severityColor(sev)
		r.labels[sev].DisableColor()
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stderr returns a Reporter on os.Stderr with automatic color.
func Stderr(prefix string) *Reporter {
	return New(os.Stderr, WithPrefix(prefix), WithColor(ColorAuto))
}

// Writer exposes the diagnostic stream for callers that print raw text
// (verbose traces) next to reported messages.
func (r *Reporter) Writer() io.Writer { return r.out }

// Warning reports msg and returns.
func (r *Reporter) Warning(msg string) { r.report(SevWarning, msg) }

// Error reports msg and returns. Aborting is up to the caller.
func (r *Reporter) Error(msg string) { r.report(SevError, msg) }

// Fatal reports msg and terminates the process with exitcodes.Failure.
func (r *Reporter) Fatal(msg string) {
	r.report(SevFatal, msg)
	r.exit(exitcodes.Failure)
	// exit funcs injected by tests may return; Fatal must not.
	panic(fatalReturned{msg: msg})
}

func (r *Reporter) Warningf(format string, args ...any) { r.Warning(fmt.Sprintf(format, args...)) }
func (r *Reporter) Errorf(format string, args ...any)   { r.Error(fmt.Sprintf(format, args...)) }
func (r *Reporter) Fatalf(format string, args ...any)   { r.Fatal(fmt.Sprintf(format, args...)) }

// Count returns how many messages of sev were reported.
func (r *Reporter) Count(sev Severity) int {
	if sev >= numSeverities {
		return 0
	}
	return r.counts[sev]
}

// HasErrors reports whether any error or fatal message was emitted.
func (r *Reporter) HasErrors() bool {
	return r.counts[SevError] > 0 || r.counts[SevFatal] > 0
}

func (r *Reporter) report(sev Severity, msg string) {
	var b strings.Builder
	if r.prefix != "" {
		b.WriteString(r.prefix)
		b.WriteString(": ")
	}
	b.WriteString(r.labels[sev].Sprint(sev.String()))
	b.WriteString(": ")
	b.WriteString(msg)
	if !strings.HasSuffix(msg, "\n") {
		b.WriteByte('\n')
	}
	// diagnostics are best effort
	_, _ = io.WriteString(r.out, b.String())

	r.counts[sev]++
	if r.sink != nil {
		r.sink.ObserveDiagnostic(sev)
	}
}

type fatalReturned struct{ msg string }

func (f fatalReturned) String() string {
	return "diag: exit func returned after fatal: " + f.msg
}
