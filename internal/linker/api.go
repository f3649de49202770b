// Package linker resolves the names used in the implementations and
// declarations of compilation units against a merged index.
package linker

import (
	"strings"

	"github.com/you-not-fish/stc/internal/diag"
	"github.com/you-not-fish/stc/internal/index"
	"github.com/you-not-fish/stc/internal/syntax"
)

// ErrorHandler is called for each problem found while linking.
type ErrorHandler func(d *diag.Diagnostic)

// Config specifies the configuration for linking.
type Config struct {
	// Error is called for each diagnostic.
	// If nil, diagnostics are only counted.
	Error ErrorHandler
}

// AnnotationKind classifies what an expression resolved to.
type AnnotationKind uint8

const (
	Value    AnnotationKind = iota // a literal or computed value
	Variable                       // a global, member or enum element
	Pou                            // a POU used as a call target or qualifier
	Type                           // a data type, e.g. the enum in Color#Red
	Call                           // the result of calling a POU
)

var annotationKindNames = [...]string{
	Value:    "Value",
	Variable: "Variable",
	Pou:      "Pou",
	Type:     "Type",
	Call:     "Call",
}

func (k AnnotationKind) String() string {
	if int(k) < len(annotationKindNames) {
		return annotationKindNames[k]
	}
	return "AnnotationKind(?)"
}

// Annotation records what an expression resolved to.
type Annotation struct {
	Kind AnnotationKind

	// Name is the qualified name of the variable, POU or type.
	// It is empty for values.
	Name string

	// Type is the name of the resulting data type. Auto-dereferenced
	// parameters have the type they point to.
	Type string

	Constant  bool
	Argument  index.ArgumentType // variables only
	AutoDeref bool               // the variable is a by-reference parameter
}

func (a Annotation) String() string {
	if a.Name != "" {
		return a.Kind.String() + " " + a.Name
	}
	return a.Kind.String() + " of type " + a.Type
}

// Info holds the results of linking.
type Info struct {
	// Annotations maps resolved expressions to what they resolved to.
	Annotations map[syntax.Expr]Annotation

	// Uses maps the lower-cased qualified name of every referenced
	// variable, POU or type to the names referring to it.
	Uses map[string][]*syntax.Name
}

// NewInfo returns an Info with all maps allocated.
func NewInfo() *Info {
	return &Info{
		Annotations: make(map[syntax.Expr]Annotation),
		Uses:        make(map[string][]*syntax.Name),
	}
}

// Merge adds the results of other to info.
func (info *Info) Merge(other *Info) {
	for e, a := range other.Annotations {
		info.Annotations[e] = a
	}
	for k, names := range other.Uses {
		info.Uses[k] = append(info.Uses[k], names...)
	}
}

// UsesOf returns the references to the symbol called qualifiedName.
func (info *Info) UsesOf(qualifiedName string) []*syntax.Name {
	return info.Uses[strings.ToLower(qualifiedName)]
}

// Link resolves the units against idx, which must contain their entries.
// It returns the annotations and the first diagnostic reported, if any.
func Link(idx *index.Index, units []*syntax.CompilationUnit, conf *Config) (*Info, error) {
	if conf == nil {
		conf = &Config{}
	}
	l := &linker{
		idx:  idx,
		conf: conf,
		info: NewInfo(),
	}
	for _, u := range units {
		l.unit(u)
	}
	if l.errors > 0 {
		return l.info, l.first
	}
	return l.info, nil
}
