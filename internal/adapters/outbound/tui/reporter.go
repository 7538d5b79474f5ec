package tui

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/Mike-Gough/raml-enforcer/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/camelcase"
)

var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	magenta = lipgloss.Color("#C084FC")
)

// Reporter renders lint outcomes as text lines:
//
//	[<location>] WARN <message>
//	[<location>] ERROR <message>
//	[<file>] VALID
//
// With color off the lines are plain, byte for byte.
type Reporter struct {
	color bool

	heading lipgloss.Style
	key     lipgloss.Style
	value   lipgloss.Style
	source  lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
	valid   lipgloss.Style
}

// NewReporter builds a Reporter whose styles match the color support of w.
func NewReporter(w io.Writer, color bool) *Reporter {
	r := lipgloss.NewRenderer(w)
	return &Reporter{
		color:   color,
		heading: r.NewStyle().Bold(true).Foreground(accent),
		key:     r.NewStyle().Foreground(fg),
		value:   r.NewStyle().Foreground(magenta),
		source:  r.NewStyle().Foreground(dim),
		warn:    r.NewStyle().Foreground(warning),
		fail:    r.NewStyle().Foreground(danger),
		valid:   r.NewStyle().Foreground(success),
	}
}

func (r *Reporter) paint(style lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return style.Render(text)
}

// Parameters renders the effective options, start-cased, followed by the
// "report:" heading that the outcome lines sit under.
func (r *Reporter) Parameters(opts domain.Options) string {
	var b strings.Builder
	b.WriteString(r.paint(r.heading, "parameters:") + "\n")

	v := reflect.ValueOf(opts)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := strings.Join(camelcase.Split(t.Field(i).Name), " ")
		fmt.Fprintf(&b, "  %s %s\n", r.paint(r.key, name+":"), r.paint(r.value, fmt.Sprint(v.Field(i).Interface())))
	}

	b.WriteString(r.paint(r.heading, "report:") + "\n")
	return b.String()
}

// Outcome renders one line per issue in the order found, or the VALID line.
func (r *Reporter) Outcome(outcome domain.ValidationOutcome) string {
	if outcome.Valid() {
		return fmt.Sprintf("[%s] %s\n", r.paint(r.source, outcome.File), r.paint(r.valid, "VALID"))
	}

	var b strings.Builder
	for _, issue := range outcome.Issues {
		style := r.warn
		if issue.Severity == domain.SeverityViolation {
			style = r.fail
		}
		fmt.Fprintf(&b, "[%s] %s %s\n",
			r.paint(r.source, issue.Source.String()),
			r.paint(style, issue.Severity.Level()),
			r.paint(style, issue.Message))
	}
	return b.String()
}

// Exit renders the closing line naming the process exit code.
func (r *Reporter) Exit(code int) string {
	style := r.valid
	if code != 0 {
		style = r.fail
	}
	return r.paint(style, fmt.Sprintf("Exiting with code %d", code)) + "\n"
}
