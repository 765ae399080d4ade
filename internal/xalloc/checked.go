package xalloc

import "sapec/internal/diag"

// Fataler ends the process after reporting msg. *diag.Reporter satisfies it.
type Fataler interface {
	Fatal(msg string)
}

// Checked serves allocations that never fail from the caller's point of
// view: a refused request goes to Fatal.
type Checked struct {
	a *Allocator
	f Fataler
}

// NewChecked binds an Allocator to a fatal reporter. A nil a uses a
// default Allocator; a nil f reports on os.Stderr.
func NewChecked(a *Allocator, f Fataler) *Checked {
	if a == nil {
		a = New()
	}
	if f == nil {
		f = diag.New(nil)
	}
	return &Checked{a: a, f: f}
}

// Allocator returns the underlying error-returning allocator.
func (c *Checked) Allocator() *Allocator { return c.a }

func (c *Checked) fail(op string, err error) {
	c.f.Fatal(op + ": " + err.Error())
	// Fatal does not return.
	panic(err)
}

// Bytes returns count*size zeroed bytes.
func (c *Checked) Bytes(count, size int) []byte {
	b, err := CallocBytes(c.a, count, size)
	if err != nil {
		c.fail(OpCalloc, err)
	}
	return b
}

// Malloc returns n bytes with unspecified contents.
func (c *Checked) Malloc(n int) []byte {
	b, err := Malloc[byte](c.a, n)
	if err != nil {
		c.fail(OpMalloc, err)
	}
	return b
}

// Realloc resizes a byte block; see Realloc.
func (c *Checked) Realloc(block []byte, n int) []byte {
	b, err := Realloc(c.a, block, n)
	if err != nil {
		c.fail(OpRealloc, err)
	}
	return b
}

// Strdup returns a NUL-terminated copy of s.
func (c *Checked) Strdup(s string) []byte {
	b, err := Strdup(c.a, s)
	if err != nil {
		c.fail(OpStrdup, err)
	}
	return b
}

// DupString returns a distinct copy of s.
func (c *Checked) DupString(s string) string {
	out, err := DupString(c.a, s)
	if err != nil {
		c.fail(OpDupString, err)
	}
	return out
}

// CheckedCalloc returns count zeroed elements of T or ends the process.
func CheckedCalloc[T any](c *Checked, count int) []T {
	s, err := Calloc[T](c.a, count)
	if err != nil {
		c.fail(OpCalloc, err)
	}
	return s
}

// CheckedMalloc returns count elements of T or ends the process.
func CheckedMalloc[T any](c *Checked, count int) []T {
	s, err := Malloc[T](c.a, count)
	if err != nil {
		c.fail(OpMalloc, err)
	}
	return s
}

// CheckedRealloc resizes block to count elements or ends the process.
func CheckedRealloc[T any](c *Checked, block []T, count int) []T {
	s, err := Realloc(c.a, block, count)
	if err != nil {
		c.fail(OpRealloc, err)
	}
	return s
}
