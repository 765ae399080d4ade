package mode

import "go.uber.org/atomic"

// Shared is a Flags that may be read and set from several goroutines.
// Single-threaded callers should keep using Flags.
type Shared struct {
	v atomic.Uint32
}

// NewShared returns a Shared seeded with f.
func NewShared(f Flags) *Shared {
	s := &Shared{}
	s.v.Store(uint32(f))
	return s
}

// Reset clears every bit.
func (s *Shared) Reset() { s.v.Store(0) }

// Set turns b on.
func (s *Shared) Set(b Bit) {
	for {
		old := s.v.Load()
		if s.v.CAS(old, old|uint32(b.mask())) {
			return
		}
	}
}

// Has reports whether b is on.
func (s *Shared) Has(b Bit) bool { return s.v.Load()&uint32(b.mask()) != 0 }

// Snapshot copies the current bits into a plain Flags.
func (s *Shared) Snapshot() Flags { return Flags(s.v.Load()) }
