// Package mode holds the runtime operating-mode switchboard.
//
// Flags is a small bitset: every bit is an independent toggle and every
// combination is a legal state. Bits are only ever turned on individually;
// the single way to turn them off is Reset. The driver owns one Flags value
// and hands a pointer to the components that read or declare modes.
package mode

import (
	"fmt"
	"strings"
)

// Bit identifies one mode toggle.
type Bit uint8

const (
	Runnable Bit = iota // environment ready to run the analysis
	Verbose             // verbose diagnostics on stderr
	Info                // informational output
	Help                // help/usage request pending
	SapWin              // SapWin file-format compatibility
	Binary              // binary (vs. text) file I/O

	numBits
)

var bitNames = [numBits]string{
	Runnable: "runnable",
	Verbose:  "verbose",
	Info:     "info",
	Help:     "help",
	SapWin:   "sapwin",
	Binary:   "binary",
}

// String returns the lower-case name of the bit.
func (b Bit) String() string {
	if b < numBits {
		return bitNames[b]
	}
	return fmt.Sprintf("bit(%d)", uint8(b))
}

func (b Bit) mask() uint8 { return 1 << b }

// AllBits lists every known bit in ascending order.
func AllBits() []Bit {
	out := make([]Bit, 0, numBits)
	for b := Runnable; b < numBits; b++ {
		out = append(out, b)
	}
	return out
}

// ParseBit converts a mode name to a Bit.
func ParseBit(s string) (Bit, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for b, n := range bitNames {
		if n == name {
			return Bit(b), nil
		}
	}
	return 0, fmt.Errorf("invalid mode %q (expected: %s)", s, strings.Join(bitNames[:], "|"))
}

// Flags is the mode bitset. The zero value has every mode off.
type Flags uint8

// Reset clears every bit.
func (f *Flags) Reset() { *f = 0 }

// Set turns b on. Setting a bit that is already on changes nothing.
func (f *Flags) Set(b Bit) { *f |= Flags(b.mask()) }

// Has reports whether b is on.
func (f Flags) Has(b Bit) bool { return uint8(f)&b.mask() != 0 }

func (f *Flags) SetRunnable()  { f.Set(Runnable) }
func (f Flags) Runnable() bool { return f.Has(Runnable) }

func (f *Flags) SetVerbose()  { f.Set(Verbose) }
func (f Flags) Verbose() bool { return f.Has(Verbose) }

func (f *Flags) SetInfo()  { f.Set(Info) }
func (f Flags) Info() bool { return f.Has(Info) }

func (f *Flags) SetHelp()  { f.Set(Help) }
func (f Flags) Help() bool { return f.Has(Help) }

func (f *Flags) SetSapWin()  { f.Set(SapWin) }
func (f Flags) SapWin() bool { return f.Has(SapWin) }

func (f *Flags) SetBinary()  { f.Set(Binary) }
func (f Flags) Binary() bool { return f.Has(Binary) }

// Bits returns the set bits in ascending order.
func (f Flags) Bits() []Bit {
	var out []Bit
	for b := Runnable; b < numBits; b++ {
		if f.Has(b) {
			out = append(out, b)
		}
	}
	return out
}

// String renders the set bits as "verbose|binary", or "none".
func (f Flags) String() string {
	bits := f.Bits()
	if len(bits) == 0 {
		return "none"
	}
	names := make([]string, len(bits))
	for i, b := range bits {
		names[i] = b.String()
	}
	return strings.Join(names, "|")
}
