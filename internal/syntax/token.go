package syntax

import (
	"fmt"
	"strings"
)

// PouKind is the kind of a program organization unit.
type PouKind uint8

const (
	Program PouKind = iota
	Function
	FunctionBlock
	Action
	Class
	Method
)

var pouKindNames = [...]string{
	Program:       "Program",
	Function:      "Function",
	FunctionBlock: "FunctionBlock",
	Action:        "Action",
	Class:         "Class",
	Method:        "Method",
}

// String returns the name of the POU kind.
func (k PouKind) String() string {
	if int(k) < len(pouKindNames) {
		return pouKindNames[k]
	}
	return fmt.Sprintf("PouKind(%d)", k)
}

// Keyword returns the Structured Text keyword that opens a POU of kind k.
func (k PouKind) Keyword() string {
	switch k {
	case Program:
		return "PROGRAM"
	case Function:
		return "FUNCTION"
	case FunctionBlock:
		return "FUNCTION_BLOCK"
	case Action:
		return "ACTION"
	case Class:
		return "CLASS"
	case Method:
		return "METHOD"
	}
	return k.String()
}

// IsStateful reports whether instances of the POU keep their state between
// calls, which makes its members addressable from outside.
func (k PouKind) IsStateful() bool {
	return k == Program || k == FunctionBlock || k == Class
}

// VarBlockKind is the kind of a VAR ... END_VAR block.
type VarBlockKind uint8

const (
	Local VarBlockKind = iota
	Temp
	Input
	Output
	InOut
	Global
	External
)

var varBlockKindNames = [...]string{
	Local:    "Local",
	Temp:     "Temp",
	Input:    "Input",
	Output:   "Output",
	InOut:    "InOut",
	Global:   "Global",
	External: "External",
}

// String returns the name of the block kind.
func (k VarBlockKind) String() string {
	if int(k) < len(varBlockKindNames) {
		return varBlockKindNames[k]
	}
	return fmt.Sprintf("VarBlockKind(%d)", k)
}

// Keyword returns the keyword opening the block.
func (k VarBlockKind) Keyword() string {
	switch k {
	case Local:
		return "VAR"
	case Temp:
		return "VAR_TEMP"
	case Input:
		return "VAR_INPUT"
	case Output:
		return "VAR_OUTPUT"
	case InOut:
		return "VAR_IN_OUT"
	case Global:
		return "VAR_GLOBAL"
	case External:
		return "VAR_EXTERNAL"
	}
	return k.String()
}

// Linkage tells whether a symbol is defined in the compiled units, declared
// by them but defined elsewhere, or provided by the compiler.
type Linkage uint8

const (
	Internal Linkage = iota
	ExternalLinkage
	BuiltIn
)

var linkageNames = [...]string{
	Internal:        "Internal",
	ExternalLinkage: "External",
	BuiltIn:         "BuiltIn",
}

func (l Linkage) String() string {
	if int(l) < len(linkageNames) {
		return linkageNames[l]
	}
	return fmt.Sprintf("Linkage(%d)", l)
}

// LitKind represents the kind of a literal.
type LitKind uint8

const (
	IntLit     LitKind = iota // 123, 16#FF
	RealLit                   // 3.14, 1.0E10
	BoolLit                   // TRUE, FALSE
	StringLit                 // 'text'
	WStringLit                // "text"
	TimeLit                   // T#1s
	DateLit                   // D#2024-01-01
	NullLit                   // NULL
)

var litKindNames = [...]string{
	IntLit:     "int",
	RealLit:    "real",
	BoolLit:    "bool",
	StringLit:  "string",
	WStringLit: "wstring",
	TimeLit:    "time",
	DateLit:    "date",
	NullLit:    "null",
}

// String returns the string representation of the literal kind.
func (k LitKind) String() string {
	if int(k) < len(litKindNames) {
		return litKindNames[k]
	}
	return fmt.Sprintf("LitKind(%d)", k)
}

// Operator is a unary or binary operator.
type Operator uint8

const (
	OpAdd Operator = iota // +
	OpSub                 // -
	OpMul                 // *
	OpDiv                 // /
	OpMod                 // MOD
	OpPow                 // **
	OpEql                 // =
	OpNeq                 // <>
	OpLss                 // <
	OpLeq                 // <=
	OpGtr                 // >
	OpGeq                 // >=
	OpAnd                 // AND
	OpOr                  // OR
	OpXor                 // XOR
	OpNot                 // NOT
)

var operatorNames = [...]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpMod: "MOD",
	OpPow: "**",
	OpEql: "=",
	OpNeq: "<>",
	OpLss: "<",
	OpLeq: "<=",
	OpGtr: ">",
	OpGeq: ">=",
	OpAnd: "AND",
	OpOr:  "OR",
	OpXor: "XOR",
	OpNot: "NOT",
}

func (op Operator) String() string {
	if int(op) < len(operatorNames) {
		return operatorNames[op]
	}
	return fmt.Sprintf("Operator(%d)", op)
}

// IsComparison reports whether op yields a BOOL.
func (op Operator) IsComparison() bool {
	return op >= OpEql && op <= OpGeq
}

// Direction is the memory area of a hardware binding (%I, %Q, %M, %G).
type Direction uint8

const (
	DirInput Direction = iota
	DirOutput
	DirMemory
	DirGlobal
)

var directionNames = [...]string{
	DirInput:  "Input",
	DirOutput: "Output",
	DirMemory: "Memory",
	DirGlobal: "Global",
}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", d)
}

// Access is the width of a hardware binding (X, B, W, D, L or *).
type Access uint8

const (
	Bit Access = iota
	Byte
	Word
	DWord
	LWord
	Template
)

var accessNames = [...]string{
	Bit:      "Bit",
	Byte:     "Byte",
	Word:     "Word",
	DWord:    "DWord",
	LWord:    "LWord",
	Template: "Template",
}

func (a Access) String() string {
	if int(a) < len(accessNames) {
		return accessNames[a]
	}
	return fmt.Sprintf("Access(%d)", a)
}

// Width returns the number of bits accessed, 0 for templates.
func (a Access) Width() int {
	switch a {
	case Bit:
		return 1
	case Byte:
		return 8
	case Word:
		return 16
	case DWord:
		return 32
	case LWord:
		return 64
	}
	return 0
}

// lookupName finds s in names ignoring case.
func lookupName[T ~uint8](names []string, s string) (T, bool) {
	for i, n := range names {
		if strings.EqualFold(n, s) {
			return T(i), true
		}
	}
	return 0, false
}
