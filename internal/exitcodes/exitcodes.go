// Package exitcodes names the process exit statuses used by sapec.
package exitcodes

// Exit codes returned by the sapec CLI.
const (
	// Success indicates the run completed.
	Success = 0

	// Failure indicates a fatal diagnostic ended the process
	// (memory exhaustion included).
	Failure = 1

	// Usage indicates invalid command-line input or configuration.
	Usage = 2
)
