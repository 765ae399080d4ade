package xalloc

import (
	"bytes"
	"errors"
	"math"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sapec/internal/diag"
	"sapec/internal/exitcodes"
)

type exitSignal int

func newTestChecked(buf *bytes.Buffer, opts ...Option) *Checked {
	r := diag.New(buf,
		diag.WithPrefix("sapec"),
		diag.WithExit(func(code int) { panic(exitSignal(code)) }),
	)
	return NewChecked(New(opts...), r)
}

func expectExit(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		v := recover()
		require.Equal(t, exitSignal(exitcodes.Failure), v)
	}()
	fn()
	t.Fatal("checked allocation returned after failure")
}

func TestChecked_Success(t *testing.T) {
	var buf bytes.Buffer
	c := newTestChecked(&buf)

	assert.Len(t, c.Bytes(4, 8), 32)
	assert.Len(t, c.Malloc(10), 10)
	assert.Equal(t, []byte("ab"), c.Realloc([]byte("abc"), 2))
	assert.Equal(t, []byte("L1\x00"), c.Strdup("L1"))
	assert.Equal(t, "C2", c.DupString("C2"))

	nodes := CheckedCalloc[complexPair](c, 3)
	assert.Len(t, nodes, 3)
	nodes = CheckedRealloc(c, nodes, 6)
	assert.Len(t, nodes, 6)
	assert.Len(t, CheckedMalloc[int64](c, 2), 2)

	assert.Empty(t, buf.String())
}

func TestChecked_ExhaustionIsFatal(t *testing.T) {
	var buf bytes.Buffer
	c := newTestChecked(&buf, WithMaxBlock(64))

	expectExit(t, func() { c.Malloc(65) })
	assert.Contains(t, buf.String(), "sapec: fatal: malloc: memory exhausted")

	buf.Reset()
	expectExit(t, func() { CheckedCalloc[complexPair](c, 5) })
	assert.Contains(t, buf.String(), "calloc: memory exhausted")

	buf.Reset()
	expectExit(t, func() { c.Strdup(string(make([]byte, 64))) })
	assert.Contains(t, buf.String(), "strdup: memory exhausted")
}

func TestChecked_RuntimeRefusalIsFatal(t *testing.T) {
	var buf bytes.Buffer
	c := newTestChecked(&buf)
	expectExit(t, func() { c.Malloc(math.MaxInt) })
	assert.Contains(t, buf.String(), "memory exhausted")
}

func TestNewChecked_DefaultsFataler(t *testing.T) {
	c := NewChecked(nil, nil)
	require.NotNil(t, c.f)
	assert.IsType(t, &diag.Reporter{}, c.f)
	assert.NotNil(t, c.Allocator())
}

const crasherEnv = "SAPEC_XALLOC_CRASHER"

// runCrasher re-runs the named test in a child binary with crasherEnv set
// to size, and returns the child's exit code and stderr.
func runCrasher(t *testing.T, name, size string) (int, string) {
	t.Helper()
	cmd := exec.Command(os.Args[0], "-test.run=^"+name+"$")
	cmd.Env = append(os.Environ(), crasherEnv+"="+size)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "expected exit error, got %v", err)
	return exitErr.ExitCode(), stderr.String()
}

func crash(size int) {
	c := NewChecked(New(), diag.New(os.Stderr, diag.WithPrefix("sapec")))
	c.Malloc(size)
}

// TestChecked_ExhaustionTerminatesProcess runs the real exit path in a
// child test binary.
func TestChecked_ExhaustionTerminatesProcess(t *testing.T) {
	if os.Getenv(crasherEnv) == "max" {
		crash(math.MaxInt)
		return
	}
	code, stderr := runCrasher(t, "TestChecked_ExhaustionTerminatesProcess", "max")
	assert.Equal(t, exitcodes.Failure, code)
	assert.Contains(t, stderr, "sapec: fatal: malloc: memory exhausted")
}

// A terabyte passes the runtime's length check but cannot be mapped; the
// default limit must turn it into a reported fatal instead of a runtime
// abort.
func TestChecked_TerabyteOnDefaultConfigIsReported(t *testing.T) {
	if os.Getenv(crasherEnv) == "tera" {
		crash(1 << 40)
		return
	}
	if phys := physicalMemory(); phys == 0 || phys >= 1<<40 {
		t.Skip("needs a known physical memory size below 1 TiB")
	}
	code, stderr := runCrasher(t, "TestChecked_TerabyteOnDefaultConfigIsReported", "tera")
	assert.Equal(t, exitcodes.Failure, code)
	assert.Contains(t, stderr, "sapec: fatal: malloc: memory exhausted")
	assert.NotContains(t, stderr, "runtime: out of memory")
}
