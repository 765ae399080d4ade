// Package xalloc provides allocation primitives with a single failure
// policy.
//
// The generic functions (Calloc, Malloc, Realloc, Strdup, DupString) return
// an error instead of a block when the request cannot be served:
//
//   - ErrNegative: the element count is below zero.
//   - ErrOverflow: count * element size does not fit an int.
//   - ErrExhausted: the request exceeds the allocator's block limit, or the
//     runtime refused the size.
//
// Checked wraps an Allocator and a fatal reporter. Its methods never return
// an error: a refused request is reported through Fatal and the process
// ends. Application code uses Checked; tests use the error-returning forms
// to observe failures without exiting.
//
// Ownership of every returned block passes to the caller. The package keeps
// no references, pools or caches.
package xalloc
