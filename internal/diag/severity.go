package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevWarning is for diagnostics that never interrupt the run.
	SevWarning Severity = iota
	// SevError is for serious problems the caller may recover from.
	SevError
	SevFatal

	numSeverities
)

func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	case SevFatal:
		return "fatal"
	}
	return "unknown"
}

// Severities lists every severity, lowest first.
func Severities() []Severity {
	return []Severity{SevWarning, SevError, SevFatal}
}
