// Package diag defines compiler diagnostics, the catalog of error codes
// with their default severities, and the reporters that print them.
package diag

import (
	"fmt"
	"strings"

	"github.com/you-not-fish/stc/internal/syntax"
)

// Severity orders how serious a diagnostic is. Ignore < Info < Warning < Error.
type Severity uint8

const (
	Ignore Severity = iota
	Info
	Warning
	Error
)

var severityNames = [...]string{
	Ignore:  "ignore",
	Info:    "info",
	Warning: "warning",
	Error:   "error",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return fmt.Sprintf("Severity(%d)", s)
}

// ParseSeverity parses "error", "warning", "info" or "ignore" in any case.
func ParseSeverity(s string) (Severity, error) {
	for i, n := range severityNames {
		if strings.EqualFold(n, s) {
			return Severity(i), nil
		}
	}
	return Error, fmt.Errorf("unknown severity %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Diagnostic is a problem found in the compiled units. Its severity is not
// fixed at creation; a Diagnostician assesses it from the code.
type Diagnostic struct {
	Code      string
	Message   string
	Span      syntax.Span
	Secondary []syntax.Span
	Sub       []*Diagnostic
	Err       error // underlying cause, if any
}

// New returns a diagnostic with the default code E001.
func New(message string) *Diagnostic {
	return &Diagnostic{Code: DefaultCode, Message: message}
}

// Errorf returns a diagnostic with the given code and formatted message.
func Errorf(code string, span syntax.Span, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Code: code, Message: fmt.Sprintf(format, args...), Span: span}
}

// WithCode sets the error code.
func (d *Diagnostic) WithCode(code string) *Diagnostic {
	d.Code = code
	return d
}

// WithSpan sets the primary location.
func (d *Diagnostic) WithSpan(s syntax.Span) *Diagnostic {
	d.Span = s
	return d
}

// WithSecondary adds further related locations.
func (d *Diagnostic) WithSecondary(spans ...syntax.Span) *Diagnostic {
	d.Secondary = append(d.Secondary, spans...)
	return d
}

// WithSub attaches sub-diagnostics that are reported after d.
func (d *Diagnostic) WithSub(subs ...*Diagnostic) *Diagnostic {
	d.Sub = append(d.Sub, subs...)
	return d
}

// WithErr records the error that caused d.
func (d *Diagnostic) WithErr(err error) *Diagnostic {
	d.Err = err
	return d
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	if d.Span.IsValid() {
		return fmt.Sprintf("%s: error[%s]: %s", d.Span, d.Code, d.Message)
	}
	return fmt.Sprintf("error[%s]: %s", d.Code, d.Message)
}

// Unwrap returns the underlying cause.
func (d *Diagnostic) Unwrap() error {
	return d.Err
}

// Flatten returns ds followed by their sub-diagnostics, depth first.
func Flatten(ds []*Diagnostic) []*Diagnostic {
	var out []*Diagnostic
	for _, d := range ds {
		out = append(out, d)
		out = append(out, Flatten(d.Sub)...)
	}
	return out
}

// List collects diagnostics. The zero value is ready to use.
type List struct {
	items []*Diagnostic
}

// Add appends d to the list.
func (l *List) Add(d *Diagnostic) {
	l.items = append(l.items, d)
}

// Addf appends a new diagnostic.
func (l *List) Addf(code string, span syntax.Span, format string, args ...interface{}) *Diagnostic {
	d := Errorf(code, span, format, args...)
	l.Add(d)
	return d
}

// Items returns the collected diagnostics in insertion order.
func (l *List) Items() []*Diagnostic {
	return l.items
}

// Len returns the number of collected diagnostics.
func (l *List) Len() int {
	return len(l.items)
}
