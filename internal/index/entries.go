package index

import (
	"fmt"

	"github.com/you-not-fish/stc/internal/syntax"
	"github.com/you-not-fish/stc/internal/types"
)

// VariableType classifies where a variable was declared.
type VariableType uint8

const (
	Local VariableType = iota
	Temp
	Input
	Output
	InOut
	Global
	Return
	External
)

var variableTypeNames = [...]string{
	Local:    "Local",
	Temp:     "Temp",
	Input:    "Input",
	Output:   "Output",
	InOut:    "InOut",
	Global:   "Global",
	Return:   "Return",
	External: "External",
}

func (t VariableType) String() string {
	if int(t) < len(variableTypeNames) {
		return variableTypeNames[t]
	}
	return fmt.Sprintf("VariableType(%d)", t)
}

// IsPrivate reports whether the variable is hidden from other POUs.
func (t VariableType) IsPrivate() bool {
	return t == Local || t == Temp
}

// ArgumentType tells whether a variable is passed by value or by reference.
type ArgumentType struct {
	ByRef bool
	Type  VariableType
}

// ByVal returns a by-value argument type.
func ByVal(t VariableType) ArgumentType { return ArgumentType{Type: t} }

// ByRef returns a by-reference argument type.
func ByRef(t VariableType) ArgumentType { return ArgumentType{ByRef: true, Type: t} }

func (a ArgumentType) String() string {
	if a.ByRef {
		return "ByRef(" + a.Type.String() + ")"
	}
	return "ByVal(" + a.Type.String() + ")"
}

// VarArgs describes a variadic parameter. TypeName is empty for untyped
// variadics.
type VarArgs struct {
	Sized    bool
	TypeName string
}

// VariableEntry is a global, a member of a POU or struct, an enum element
// or an initializer.
type VariableEntry struct {
	Name          string
	QualifiedName string
	Init          syntax.Expr
	Argument      ArgumentType
	Constant      bool
	TypeName      string
	Location      uint32 // position among the container's members
	Linkage       syntax.Linkage
	Binding       *syntax.HardwareBinding
	Span          syntax.Span
	Varargs       *VarArgs
}

// NewGlobal returns the entry of a global variable.
func NewGlobal(name, qualifiedName, typeName string, span syntax.Span) *VariableEntry {
	return &VariableEntry{
		Name:          name,
		QualifiedName: qualifiedName,
		Argument:      ByVal(Global),
		TypeName:      typeName,
		Span:          span,
	}
}

// VariableType returns the declaring block kind.
func (v *VariableEntry) VariableType() VariableType { return v.Argument.Type }

// IsParameter reports whether the variable is an input, output or in-out.
func (v *VariableEntry) IsParameter() bool {
	switch v.Argument.Type {
	case Input, Output, InOut:
		return true
	}
	return false
}

// IsPrivate reports whether the variable is a local or temp.
func (v *VariableEntry) IsPrivate() bool { return v.Argument.Type.IsPrivate() }

// IsReturn reports whether the variable holds a function's result.
func (v *VariableEntry) IsReturn() bool { return v.Argument.Type == Return }

// IsVariadic reports whether the variable collects variadic arguments.
func (v *VariableEntry) IsVariadic() bool { return v.Varargs != nil }

// IsExternal reports whether the variable is defined outside the project.
func (v *VariableEntry) IsExternal() bool { return v.Linkage == syntax.ExternalLinkage }

func (v *VariableEntry) String() string {
	return fmt.Sprintf("%s : %s (%s)", v.QualifiedName, v.TypeName, v.Argument)
}

// GenericBinding is a type parameter of a generic function.
type GenericBinding struct {
	Name   string
	Nature types.Nature
}

// PouEntry describes a program, function, function block, class, method
// or action.
type PouEntry struct {
	Kind             syntax.PouKind
	Name             string // qualified for methods and actions
	Parent           string // owner of a method or action
	ReturnType       string // functions and methods only
	InstanceStruct   string
	InstanceVariable *VariableEntry // programs only
	Super            string
	Interfaces       []string
	Linkage          syntax.Linkage
	Generic          bool
	Generics         []GenericBinding
	Variadic         bool
	Generated        bool // added by the compiler, e.g. builtins
	Abstract         bool // interface method without implementation
	Span             syntax.Span
}

// Container returns the POU whose instance holds this POU's state.
func (p *PouEntry) Container() string {
	switch p.Kind {
	case syntax.Method, syntax.Action:
		if p.Parent != "" {
			return p.Parent
		}
	}
	return p.Name
}

// IsGeneric reports whether the POU takes type parameters.
func (p *PouEntry) IsGeneric() bool { return p.Generic || len(p.Generics) > 0 }

// IsFunction reports whether the POU is a function.
func (p *PouEntry) IsFunction() bool { return p.Kind == syntax.Function }

// IsStateful reports whether the POU has an instance.
func (p *PouEntry) IsStateful() bool { return p.Kind.IsStateful() }

func (p *PouEntry) String() string {
	return p.Kind.String() + " " + p.Name
}

// ImplementationEntry is the body of a POU, registered by call name.
type ImplementationEntry struct {
	CallName        string
	TypeName        string
	AssociatedClass string // owner of methods and actions
	Kind            syntax.PouKind
	Generic         bool
	Span            syntax.Span
}

// InterfaceEntry describes an INTERFACE and its methods.
type InterfaceEntry struct {
	Name    string
	Extends []string
	Methods []string // qualified method names
	Span    syntax.Span
}

// InitializerName returns the name of the global holding the initial value
// of a type or POU instance.
func InitializerName(name string) string {
	return "__" + name + "__init"
}
