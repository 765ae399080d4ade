package xalloc

import "errors"

var (
	// ErrExhausted indicates the request cannot be served.
	ErrExhausted = errors.New("memory exhausted")

	// ErrOverflow indicates count * element size overflows int.
	ErrOverflow = errors.New("allocation size overflows int")

	// ErrNegative indicates a negative element count.
	ErrNegative = errors.New("negative allocation count")
)

// reason maps an allocation error to a short metrics label.
func reason(err error) string {
	switch {
	case errors.Is(err, ErrNegative):
		return "negative"
	case errors.Is(err, ErrOverflow):
		return "overflow"
	default:
		return "exhausted"
	}
}
