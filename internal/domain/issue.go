package domain

import "fmt"

// Severity classifies a lint finding.
type Severity int

const (
	SeverityViolation Severity = iota
	SeverityWarning
)

// String returns the report-level name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityViolation:
		return "Violation"
	case SeverityWarning:
		return "Warning"
	default:
		return "Unknown"
	}
}

// Level returns the tag printed in text reports.
func (s Severity) Level() string {
	if s == SeverityWarning {
		return "WARN"
	}
	return "ERROR"
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Violation":
		*s = SeverityViolation
	case "Warning":
		*s = SeverityWarning
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Location points at a node inside a source file. Line and Column are zero
// when the node carries no position information.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// String renders the location as file or file:line:column.
func (l Location) String() string {
	if l.Line <= 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Issue is a single lint finding.
type Issue struct {
	Source   Location `json:"location"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func NewViolation(src Location, format string, args ...any) Issue {
	return Issue{Source: src, Message: fmt.Sprintf(format, args...), Severity: SeverityViolation}
}

func NewWarning(src Location, format string, args ...any) Issue {
	return Issue{Source: src, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning}
}

// ValidationOutcome holds every issue found in one input file, in discovery order.
type ValidationOutcome struct {
	File   string  `json:"file"`
	Issues []Issue `json:"issues"`
}

// Valid reports whether the outcome carries no issues.
func (o ValidationOutcome) Valid() bool { return len(o.Issues) == 0 }
