package xalloc

import (
	"fmt"
	"math"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"fortio.org/safecast"
)

// Operation names passed to the Observer.
const (
	OpCalloc    = "calloc"
	OpMalloc    = "malloc"
	OpRealloc   = "realloc"
	OpStrdup    = "strdup"
	OpDupString = "dupstring"
)

// Observer is notified of every allocation outcome.
type Observer interface {
	ObserveAllocation(op string, n int)
	ObserveAllocationFailure(op, reason string)
}

// defaultMaxBlock caps single requests when no limit is configured. A block
// larger than physical memory cannot be served, and the runtime aborts
// instead of returning an error when it tries.
var defaultMaxBlock = sync.OnceValue(physicalMemory)

// Allocator serves allocation requests. The zero value limits single blocks
// to physical memory and has no observer; a nil *Allocator behaves like the
// zero value.
type Allocator struct {
	maxBlock int
	obs      Observer
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithMaxBlock refuses any single request larger than n bytes with
// ErrExhausted. n <= 0 keeps the physical memory default.
func WithMaxBlock(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.maxBlock = n
		}
	}
}

// WithObserver attaches an allocation observer.
func WithObserver(o Observer) Option {
	return func(a *Allocator) { a.obs = o }
}

// New returns a configured Allocator.
func New(opts ...Option) *Allocator {
	a := &Allocator{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MaxBlock returns the block limit in bytes. It is 0, meaning unlimited,
// only when no limit is configured and physical memory is unknown.
func (a *Allocator) MaxBlock() int {
	if a != nil && a.maxBlock > 0 {
		return a.maxBlock
	}
	return defaultMaxBlock()
}

// size validates count elements of elemSize bytes and returns the byte total.
func (a *Allocator) size(count, elemSize int) (int, error) {
	if count < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegative, count)
	}
	if elemSize != 0 && count > math.MaxInt/elemSize {
		return 0, fmt.Errorf("%w: %d x %d bytes", ErrOverflow, count, elemSize)
	}
	n := count * elemSize
	if limit := a.MaxBlock(); limit > 0 && n > limit {
		return 0, fmt.Errorf("%w: requested %d bytes, limit %d", ErrExhausted, n, limit)
	}
	return n, nil
}

func (a *Allocator) done(op string, n int) {
	if a != nil && a.obs != nil {
		a.obs.ObserveAllocation(op, n)
	}
}

func (a *Allocator) failed(op string, err error) error {
	if a != nil && a.obs != nil {
		a.obs.ObserveAllocationFailure(op, reason(err))
	}
	return err
}

func elemSize[T any]() (int, error) {
	var zero T
	return safecast.Conv[int](unsafe.Sizeof(zero))
}

// makeSlice turns the runtime's "len out of range" panic into ErrExhausted.
func makeSlice[T any](n int) (s []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			re, ok := r.(runtime.Error)
			if !ok {
				panic(r)
			}
			s, err = nil, fmt.Errorf("%w: %v", ErrExhausted, re)
		}
	}()
	return make([]T, n), nil
}

func alloc[T any](a *Allocator, op string, count int) ([]T, error) {
	es, err := elemSize[T]()
	if err != nil {
		return nil, a.failed(op, fmt.Errorf("%w: %v", ErrOverflow, err))
	}
	n, err := a.size(count, es)
	if err != nil {
		return nil, a.failed(op, err)
	}
	s, err := makeSlice[T](count)
	if err != nil {
		return nil, a.failed(op, err)
	}
	a.done(op, n)
	return s, nil
}

// Calloc returns count zeroed elements of T.
func Calloc[T any](a *Allocator, count int) ([]T, error) {
	return alloc[T](a, OpCalloc, count)
}

// CallocBytes returns count*size zeroed bytes.
func CallocBytes(a *Allocator, count, size int) ([]byte, error) {
	if size < 0 {
		return nil, a.failed(OpCalloc, fmt.Errorf("%w: element size %d", ErrNegative, size))
	}
	n, err := a.size(count, size)
	if err != nil {
		return nil, a.failed(OpCalloc, err)
	}
	b, err := makeSlice[byte](n)
	if err != nil {
		return nil, a.failed(OpCalloc, err)
	}
	a.done(OpCalloc, n)
	return b, nil
}

// Malloc returns count elements of T. Callers must not rely on the
// contents.
func Malloc[T any](a *Allocator, count int) ([]T, error) {
	return alloc[T](a, OpMalloc, count)
}

// Realloc resizes block to count elements, keeping the first
// min(len(block), count) of them. A nil block allocates fresh storage.
// Shrinking, or growing within cap, reuses the backing array.
//
// On failure block is returned unchanged and remains valid.
func Realloc[T any](a *Allocator, block []T, count int) ([]T, error) {
	if block == nil {
		return alloc[T](a, OpRealloc, count)
	}
	es, err := elemSize[T]()
	if err != nil {
		return block, a.failed(OpRealloc, fmt.Errorf("%w: %v", ErrOverflow, err))
	}
	n, err := a.size(count, es)
	if err != nil {
		return block, a.failed(OpRealloc, err)
	}
	if count <= cap(block) {
		a.done(OpRealloc, n)
		return block[:count], nil
	}
	grown, err := makeSlice[T](count)
	if err != nil {
		return block, a.failed(OpRealloc, err)
	}
	copy(grown, block)
	a.done(OpRealloc, n)
	return grown, nil
}

// Strdup copies s into a fresh block followed by a NUL terminator.
// The empty string yields a one-byte block holding the terminator.
func Strdup(a *Allocator, s string) ([]byte, error) {
	if len(s) == math.MaxInt {
		return nil, a.failed(OpStrdup, fmt.Errorf("%w: string of %d bytes", ErrOverflow, len(s)))
	}
	n, err := a.size(len(s)+1, 1)
	if err != nil {
		return nil, a.failed(OpStrdup, err)
	}
	b, err := makeSlice[byte](n)
	if err != nil {
		return nil, a.failed(OpStrdup, err)
	}
	copy(b, s)
	a.done(OpStrdup, n)
	return b, nil
}

// DupString returns a copy of s that shares no memory with it.
func DupString(a *Allocator, s string) (string, error) {
	n, err := a.size(len(s), 1)
	if err != nil {
		return "", a.failed(OpDupString, err)
	}
	a.done(OpDupString, n)
	return strings.Clone(s), nil
}

// Free drops the caller's reference to *block.
func Free[T any](block *[]T) {
	if block != nil {
		*block = nil
	}
}

// Zero clears block in place.
func Zero[T any](block []T) {
	clear(block)
}
