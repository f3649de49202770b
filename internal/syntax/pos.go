package syntax

import (
	"fmt"
	"strconv"
	"strings"
)

// Pos represents a position in a source file.
// The zero value is an invalid position.
type Pos struct {
	filename string // source file name
	line     uint32 // 1-based line number
	col      uint32 // 1-based column number
}

// NoPos is the zero position, used for builtin and generated symbols.
var NoPos Pos

// NewPos creates a new Pos with the given filename, line, and column.
// Line and column numbers are 1-based.
func NewPos(filename string, line, col uint32) Pos {
	return Pos{filename: filename, line: line, col: col}
}

// ParsePos parses a position written as "line:col" and attaches filename.
// An empty string yields the invalid position.
func ParsePos(filename, s string) (Pos, error) {
	if s == "" {
		return NoPos, nil
	}
	line, col, ok := strings.Cut(s, ":")
	if !ok {
		return NoPos, fmt.Errorf("malformed position %q: want line:col", s)
	}
	l, err := strconv.ParseUint(line, 10, 32)
	if err != nil {
		return NoPos, fmt.Errorf("malformed position %q: %w", s, err)
	}
	c, err := strconv.ParseUint(col, 10, 32)
	if err != nil {
		return NoPos, fmt.Errorf("malformed position %q: %w", s, err)
	}
	return NewPos(filename, uint32(l), uint32(c)), nil
}

// String returns a string representation of the position in the format
// "filename:line:col" or "line:col" if filename is empty.
func (p Pos) String() string {
	if p.filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.filename, p.line, p.col)
	}
	return fmt.Sprintf("%d:%d", p.line, p.col)
}

// IsValid reports whether the position is valid.
// A position is valid if line > 0.
func (p Pos) IsValid() bool {
	return p.line > 0
}

// Line returns the 1-based line number.
func (p Pos) Line() uint32 {
	return p.line
}

// Col returns the 1-based column number.
func (p Pos) Col() uint32 {
	return p.col
}

// Filename returns the source file name.
func (p Pos) Filename() string {
	return p.filename
}

// Before reports whether p comes strictly before q in the same file.
func (p Pos) Before(q Pos) bool {
	if p.line != q.line {
		return p.line < q.line
	}
	return p.col < q.col
}

// Span is a source range. End is the position of the last character.
type Span struct {
	Start, End Pos
}

// MakeSpan returns the span from start to end.
// A missing end collapses the span to its start.
func MakeSpan(start, end Pos) Span {
	if !end.IsValid() {
		end = start
	}
	return Span{Start: start, End: end}
}

// IsValid reports whether the span has a valid start.
func (s Span) IsValid() bool {
	return s.Start.IsValid()
}

// IsPoint reports whether start and end are the same location.
func (s Span) IsPoint() bool {
	return s.Start.line == s.End.line && s.Start.col == s.End.col
}

// String formats the span as "file:l:c" or "file:l:c:{l:c-l:c}".
func (s Span) String() string {
	if s.IsPoint() || !s.End.IsValid() {
		return s.Start.String()
	}
	return fmt.Sprintf("%s:{%d:%d-%d:%d}", s.Start, s.Start.line, s.Start.col, s.End.line, s.End.col)
}
