// Package diag reports warnings, errors and fatal conditions on the
// diagnostic stream.
//
// # Severities
//
//   - Warning: something looks off; execution continues.
//   - Error: a serious but recoverable problem. The reporter returns and
//     the caller decides whether to stop.
//   - Fatal: the message is written and the process ends with
//     exitcodes.Failure. Fatal never returns to its caller.
//
// # Output
//
// Each message becomes one line on the reporter's sink (os.Stderr by
// default):
//
//	sapec: warning: node 3 is floating
//
// The severity label is colorized when color is enabled. ColorAuto only
// enables it when the sink is a terminal.
//
// The reporter does not keep messages. It only counts them per severity and
// forwards the counts to an optional Sink (see internal/metrics).
//
// # Testing
//
// WithExit replaces os.Exit. Tests pass a function that panics with a known
// value and recover it, which keeps the "never returns" contract observable
// without ending the test binary.
package diag
