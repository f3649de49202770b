package types

import (
	"fmt"
	"strings"

	"github.com/you-not-fish/stc/internal/syntax"
)

// Field is a member of a struct, referencing its type by name.
type Field struct {
	Name     string
	TypeName string
}

// Struct is a user declared STRUCT or the instance struct of a POU.
type Struct struct {
	info
	Fields  []Field
	FromPou bool           // instance struct of a POU
	PouKind syntax.PouKind // valid when FromPou
}

// NumFields returns the number of fields.
func (s *Struct) NumFields() int {
	return len(s.Fields)
}

func (s *Struct) String() string {
	var b strings.Builder
	b.WriteString("struct{")
	for i, f := range s.Fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.Name)
		b.WriteByte(' ')
		b.WriteString(f.TypeName)
	}
	b.WriteByte('}')
	return b.String()
}

// Dim is one dimension of an array. Resolved is false until the bounds
// have been evaluated as constants; StartExpr and EndExpr keep the declared
// bounds for a later attempt.
type Dim struct {
	Start, End         int64
	Resolved           bool
	StartExpr, EndExpr syntax.Expr
}

// Len returns the number of elements in the dimension.
func (d Dim) Len() (int64, bool) {
	if !d.Resolved || d.End < d.Start {
		return 0, false
	}
	return d.End - d.Start + 1, true
}

func (d Dim) String() string {
	if !d.Resolved {
		return "?..?"
	}
	return fmt.Sprintf("%d..%d", d.Start, d.End)
}

// Array is ARRAY[Dims] OF Inner. Scope names the POU whose constants the
// bounds may refer to.
type Array struct {
	info
	Inner string
	Dims  []Dim
	Scope string
}

// Len returns the total number of elements.
func (a *Array) Len() (int64, bool) {
	n := int64(1)
	for _, d := range a.Dims {
		l, ok := d.Len()
		if !ok {
			return 0, false
		}
		n *= l
	}
	return n, true
}

func (a *Array) String() string {
	dims := make([]string, len(a.Dims))
	for i, d := range a.Dims {
		dims[i] = d.String()
	}
	return "array[" + strings.Join(dims, ", ") + "] of " + a.Inner
}

// Pointer is POINTER TO Inner. Auto dereferencing pointers stand for
// parameters passed by reference.
type Pointer struct {
	info
	Inner     string
	AutoDeref bool
}

func (p *Pointer) String() string {
	if p.AutoDeref {
		return "ref " + p.Inner
	}
	return "pointer to " + p.Inner
}

// Alias names another type.
type Alias struct {
	info
	Referenced string
}

func (a *Alias) String() string { return "alias of " + a.Referenced }

// SubRange restricts an integer type to Start..End.
type SubRange struct {
	info
	Referenced         string
	Start, End         int64
	Resolved           bool
	StartExpr, EndExpr syntax.Expr
	Scope              string
}

func (s *SubRange) String() string {
	if !s.Resolved {
		return s.Referenced + "(?..?)"
	}
	return fmt.Sprintf("%s(%d..%d)", s.Referenced, s.Start, s.End)
}

// Enum is an enumeration with numeric base type Referenced.
type Enum struct {
	info
	Referenced string
	Elements   []string
}

func (e *Enum) String() string {
	return "enum(" + strings.Join(e.Elements, ", ") + ")"
}
