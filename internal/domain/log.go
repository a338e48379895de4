package domain

// Severity tags a log line for the presentation layer
type Severity int

const (
	SeverityPlain Severity = iota
	SeverityInfo
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityError:
		return "error"
	default:
		return "plain"
	}
}

// Logger receives human readable progress lines from the installer.
// Implementations must be safe for concurrent use.
type Logger interface {
	Log(msg string, sev Severity)
}

// LoggerFunc adapts a function to Logger
type LoggerFunc func(msg string, sev Severity)

// Log implements Logger
func (f LoggerFunc) Log(msg string, sev Severity) {
	f(msg, sev)
}

// NopLogger discards everything
var NopLogger Logger = LoggerFunc(func(string, Severity) {})
