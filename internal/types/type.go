// Package types implements the data types of the Structured Text type system.
// Types reference each other by name; resolving a name is the job of the
// index that owns the types.
package types

import (
	"fmt"
	"strings"

	"github.com/you-not-fish/stc/internal/syntax"
)

// DataType is a named type known to the index.
type DataType struct {
	Name         string
	Info         Info
	Nature       Nature
	InitialValue syntax.Expr // declared initializer, nil if none
	Pos          syntax.Pos  // declaration site, NoPos for builtins
	Builtin      bool        // part of the language, not declared by a unit
}

// String returns the type name.
func (t *DataType) String() string {
	return t.Name
}

// IsInternal reports whether the type was generated by the compiler
// (inline types and auto pointers are named "__...").
func (t *DataType) IsInternal() bool {
	return strings.HasPrefix(t.Name, "__")
}

// Info is the structural description of a DataType.
type Info interface {
	// String returns a short description of the type structure.
	String() string

	// aInfo is a marker method to restrict implementations to this package.
	aInfo()
}

// info is a base struct for all Info implementations.
type info struct{}

func (info) aInfo() {}

// Integer is a fixed size integer. BOOL is a 1 bit signed integer; the date
// and time types are 64 bit signed integers with a Semantic naming them.
type Integer struct {
	info
	Signed   bool
	Size     uint32 // bits
	Semantic string
}

func (i *Integer) String() string {
	if i.Signed {
		return fmt.Sprintf("int%d", i.Size)
	}
	return fmt.Sprintf("uint%d", i.Size)
}

// Float is a floating point number of 32 or 64 bits.
type Float struct {
	info
	Size uint32 // bits
}

func (f *Float) String() string {
	return fmt.Sprintf("float%d", f.Size)
}

// Encoding is the character encoding of a string type.
type Encoding uint8

const (
	UTF8 Encoding = iota
	UTF16
)

// BytesPerChar returns the width of one character.
func (e Encoding) BytesPerChar() int64 {
	if e == UTF16 {
		return 2
	}
	return 1
}

func (e Encoding) String() string {
	if e == UTF16 {
		return "utf16"
	}
	return "utf8"
}

// String is a fixed capacity string. Size counts characters including the
// terminating zero.
type String struct {
	info
	Size     int64
	Encoding Encoding
}

func (s *String) String() string {
	return fmt.Sprintf("string(%s)[%d]", s.Encoding, s.Size)
}

// Void is the type of POUs without a result.
type Void struct {
	info
}

func (*Void) String() string { return "void" }

// Generic is the placeholder type of a generic parameter, constrained by
// its nature.
type Generic struct {
	info
	Nature Nature
}

func (g *Generic) String() string {
	return "generic " + g.Nature.String()
}
