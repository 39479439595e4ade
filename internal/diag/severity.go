package diag

// Severity ranks a diagnostic. Every stage of the V# pipeline fails with
// SevError; the lower levels never fail a build.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	// SevError stops the build at the end of the current stage.
	SevError
)

// IsError reports whether s fails a compilation.
func (s Severity) IsError() bool { return s >= SevError }

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}
