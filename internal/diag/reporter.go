package diag

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Reporter presents assessed diagnostics.
type Reporter interface {
	Report(d *Diagnostic, sev Severity)
}

// Format names a reporter.
type Format string

const (
	FormatClang    Format = "clang"
	FormatCodespan Format = "codespan"
	FormatNone     Format = "none"
)

// NewReporter returns the reporter for format writing to w.
func NewReporter(format Format, w io.Writer) (Reporter, error) {
	switch Format(strings.ToLower(string(format))) {
	case FormatClang, "":
		return &ClangReporter{w: w}, nil
	case FormatCodespan:
		return &CodespanReporter{w: w}, nil
	case FormatNone:
		return NullReporter{}, nil
	}
	return nil, fmt.Errorf("unknown diagnostics format %q", format)
}

// ClangReporter prints one line per diagnostic:
//
//	file:line:col: error[E004]: message
type ClangReporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewClangReporter returns a clang style reporter writing to w.
func NewClangReporter(w io.Writer) *ClangReporter {
	return &ClangReporter{w: w}
}

func (r *ClangReporter) Report(d *Diagnostic, sev Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, clangLine(d, sev))
}

func clangLine(d *Diagnostic, sev Severity) string {
	if !d.Span.IsValid() {
		return fmt.Sprintf("%s[%s]: %s", sev, d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s[%s]: %s", d.Span, sev, d.Code, d.Message)
}

// CodespanReporter prints a header followed by the primary and secondary
// locations, one block per diagnostic.
type CodespanReporter struct {
	mu sync.Mutex
	w  io.Writer
}

func (r *CodespanReporter) Report(d *Diagnostic, sev Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.w, "%s[%s]: %s\n", sev, d.Code, d.Message)
	if d.Span.IsValid() {
		fmt.Fprintf(r.w, "  --> %s\n", d.Span)
	}
	for _, s := range d.Secondary {
		if s.IsValid() {
			fmt.Fprintf(r.w, "  ::: %s\n", s)
		}
	}
	if d.Err != nil {
		fmt.Fprintf(r.w, "   = %v\n", d.Err)
	}
	fmt.Fprintln(r.w)
}

// BufferedReporter keeps the clang rendering of every diagnostic in memory.
type BufferedReporter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (r *BufferedReporter) Report(d *Diagnostic, sev Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf.WriteString(clangLine(d, sev))
	r.buf.WriteByte('\n')
}

// Buffer returns everything reported so far.
func (r *BufferedReporter) Buffer() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

// NullReporter discards diagnostics.
type NullReporter struct{}

func (NullReporter) Report(*Diagnostic, Severity) {}
