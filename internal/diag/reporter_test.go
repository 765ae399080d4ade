package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sapec/internal/exitcodes"
)

type exitSignal int

// catchExit runs fn and returns the exit code passed to the reporter's
// exit func, or -1 when fn returned normally.
func catchExit(t *testing.T, fn func()) (code int) {
	t.Helper()
	code = -1
	defer func() {
		if v := recover(); v != nil {
			sig, ok := v.(exitSignal)
			require.True(t, ok, "unexpected panic: %v", v)
			code = int(sig)
		}
	}()
	fn()
	return code
}

func newTestReporter(buf *bytes.Buffer, opts ...Option) *Reporter {
	opts = append([]Option{
		WithPrefix("sapec"),
		WithExit(func(code int) { panic(exitSignal(code)) }),
	}, opts...)
	return New(buf, opts...)
}

func TestReporter_WarningAndErrorReturn(t *testing.T) {
	var buf bytes.Buffer
	r := newTestReporter(&buf)

	code := catchExit(t, func() {
		r.Warning("node 3 is floating")
		r.Error("missing ground reference\n")
	})

	assert.Equal(t, -1, code)
	assert.Equal(t,
		"sapec: warning: node 3 is floating\nsapec: error: missing ground reference\n",
		buf.String())
	assert.Equal(t, 1, r.Count(SevWarning))
	assert.Equal(t, 1, r.Count(SevError))
	assert.True(t, r.HasErrors())
}

func TestReporter_FatalExitsWithFailure(t *testing.T) {
	var buf bytes.Buffer
	r := newTestReporter(&buf)

	reached := false
	code := catchExit(t, func() {
		r.Fatal("memory exhausted")
		reached = true
	})

	assert.Equal(t, exitcodes.Failure, code)
	assert.False(t, reached, "Fatal returned to its caller")
	assert.Equal(t, "sapec: fatal: memory exhausted\n", buf.String())
	assert.Equal(t, 1, r.Count(SevFatal))
}

func TestReporter_FatalPanicsWhenExitReturns(t *testing.T) {
	var buf bytes.Buffer
	var got int
	r := New(&buf, WithExit(func(code int) { got = code }))

	assert.Panics(t, func() { r.Fatal("boom") })
	assert.Equal(t, exitcodes.Failure, got)
	assert.Equal(t, "fatal: boom\n", buf.String())
}

func TestReporter_FormattedVariants(t *testing.T) {
	var buf bytes.Buffer
	r := newTestReporter(&buf)

	r.Warningf("%d components ignored", 2)
	r.Errorf("bad value %q", "1k2")
	code := catchExit(t, func() { r.Fatalf("cannot allocate %d bytes", 64) })

	assert.Equal(t, exitcodes.Failure, code)
	assert.Equal(t,
		"sapec: warning: 2 components ignored\n"+
			"sapec: error: bad value \"1k2\"\n"+
			"sapec: fatal: cannot allocate 64 bytes\n",
		buf.String())
}

func TestReporter_ColorOn(t *testing.T) {
	var buf bytes.Buffer
	r := newTestReporter(&buf, WithColor(ColorOn))
	r.Warning("x")
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "warning")
}

func TestReporter_ColorAutoOnBufferIsPlain(t *testing.T) {
	var buf bytes.Buffer
	r := newTestReporter(&buf, WithColor(ColorAuto))
	r.Error("x")
	assert.Equal(t, "sapec: error: x\n", buf.String())
}

type countingSink map[Severity]int

func (s countingSink) ObserveDiagnostic(sev Severity) { s[sev]++ }

func TestReporter_Sink(t *testing.T) {
	var buf bytes.Buffer
	sink := countingSink{}
	r := newTestReporter(&buf, WithSink(sink))

	r.Warning("a")
	r.Warning("b")
	catchExit(t, func() { r.Fatal("c") })

	assert.Equal(t, 2, sink[SevWarning])
	assert.Equal(t, 0, sink[SevError])
	assert.Equal(t, 1, sink[SevFatal])
}

func TestParseColorMode(t *testing.T) {
	cases := map[string]ColorMode{
		"":       ColorAuto,
		"auto":   ColorAuto,
		"ON":     ColorOn,
		"always": ColorOn,
		"off":    ColorOff,
		"never":  ColorOff,
	}
	for in, want := range cases {
		got, err := ParseColorMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseColorMode("rainbow")
	assert.Error(t, err)
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "warning", SevWarning.String())
	assert.Equal(t, "error", SevError.String())
	assert.Equal(t, "fatal", SevFatal.String())
	assert.Equal(t, "unknown", Severity(9).String())
}
