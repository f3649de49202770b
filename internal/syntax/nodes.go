// Package syntax defines the abstract syntax tree of Structured Text
// (IEC 61131-3) compilation units, together with traversal, printing and a
// JSON encoding used to exchange units with a front-end.
package syntax

// ----------------------------------------------------------------------------
// Interfaces
//
// Nodes fall into four classes: declarations (POUs, variable blocks, user
// types), data type definitions, statements and expressions. All nodes
// implement the Node interface.

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Pos // position of first character belonging to the node
	End() Pos // position of the last character, or Pos() when unknown
	aNode()   // marker method to restrict implementations to this package
}

// Expr is the interface for all expression nodes.
type Expr interface {
	Node
	aExpr()
}

// Stmt is the interface for all statement nodes.
type Stmt interface {
	Node
	aStmt()
}

// DataType is the interface for data type definitions, either declared
// in a TYPE block or written inline in a variable declaration.
type DataType interface {
	Node
	TypeName() string // declared name, "" for inline definitions
	aDataType()
}

// ----------------------------------------------------------------------------
// Base node types

// node is the base struct embedded in all AST nodes.
type node struct {
	pos, end Pos
}

func (n *node) Pos() Pos { return n.pos }
func (n *node) End() Pos {
	if n.end.IsValid() {
		return n.end
	}
	return n.pos
}
func (n *node) aNode() {}

// SetSpan sets the source range of a node built outside a decoder.
func (n *node) SetSpan(pos, end Pos) {
	n.pos, n.end = pos, end
}

// SpanOf returns the source range covered by n.
func SpanOf(n Node) Span {
	return MakeSpan(n.Pos(), n.End())
}

type expr struct{ node }

func (*expr) aExpr() {}

type stmt struct{ node }

func (*stmt) aStmt() {}

type dataType struct {
	node
	Name string
}

func (t *dataType) TypeName() string { return t.Name }
func (*dataType) aDataType()         {}

// ----------------------------------------------------------------------------
// Compilation units and declarations

// CompilationUnit is the AST of one source file.
type CompilationUnit struct {
	node
	FileName        string
	GlobalVars      []*VarBlock
	Pous            []*Pou
	Implementations []*Implementation
	UserTypes       []*UserType
	Interfaces      []*Interface
}

// Pou is the declaration part of a program organization unit.
type Pou struct {
	node
	Name       *Name
	Kind       PouKind
	Parent     string // owning POU of methods and actions
	VarBlocks  []*VarBlock
	ReturnType *TypeRef // nil when the POU declares none
	Extends    *Name
	Implements []*Name
	Linkage    Linkage
	Generic    bool
}

// Interface is an INTERFACE declaration.
type Interface struct {
	node
	Name    *Name
	Extends []*Name
	Methods []*Pou
}

// Implementation is the body of a POU. Name is the name used to call it
// (prg, fb.act, cls.meth) and TypeName is the POU whose instance it runs in.
type Implementation struct {
	node
	Name     string
	TypeName string
	Kind     PouKind
	Body     []Stmt
	Linkage  Linkage
}

// VarBlock is a VAR ... END_VAR block.
type VarBlock struct {
	node
	Kind     VarBlockKind
	ByRef    bool
	Constant bool
	Retain   bool
	Vars     []*Variable
}

// Variable is a single variable declaration: Name AT binding : Type := Init.
type Variable struct {
	node
	Name    *Name
	Type    *TypeRef
	Init    Expr             // nil if none
	Binding *HardwareBinding // nil if none
}

// HardwareBinding is the direct address of a variable (AT %IX1.2).
type HardwareBinding struct {
	node
	Direction Direction
	Access    Access
	Address   []Expr
}

// TypeRef names a type or carries an inline definition.
// Exactly one of Name and Def is set.
type TypeRef struct {
	node
	Name string
	Def  DataType
}

// IsInline reports whether the reference carries its own definition.
func (r *TypeRef) IsInline() bool {
	return r != nil && r.Def != nil
}

// UserType is a declaration inside a TYPE ... END_TYPE block.
type UserType struct {
	node
	Def   DataType
	Init  Expr   // nil if none
	Scope string // owning POU for types declared inside one, else ""
}

// ----------------------------------------------------------------------------
// Data type definitions

// StructType is STRUCT ... END_STRUCT.
type StructType struct {
	dataType
	Vars []*Variable
}

// EnumType is (a, b := 3, c) with an optional numeric base type.
type EnumType struct {
	dataType
	NumericType string // "" means DINT
	Elements    []*EnumElement
}

// EnumElement is a single enum value.
type EnumElement struct {
	node
	Name  string
	Value Expr // nil for implicit values
}

// ArrayType is ARRAY[Dims] OF Elem.
type ArrayType struct {
	dataType
	Dims []*Dimension
	Elem *TypeRef
}

// Dimension is a Lower..Upper range of an array.
type Dimension struct {
	node
	Lower, Upper Expr
}

// SubRangeType is Base(Lower..Upper).
type SubRangeType struct {
	dataType
	Base         string
	Lower, Upper Expr
}

// PointerType is POINTER TO / REF_TO Target. Parameters passed by
// reference use auto-dereferencing pointers.
type PointerType struct {
	dataType
	Target    *TypeRef
	AutoDeref bool
}

// StringType is STRING[Size] or WSTRING[Size].
type StringType struct {
	dataType
	Wide bool
	Size Expr // nil for the default length
}

// AliasType is TYPE Name : Target; END_TYPE.
type AliasType struct {
	dataType
	Target string
}

// ----------------------------------------------------------------------------
// Statements

// AssignStmt is LHS := RHS.
type AssignStmt struct {
	stmt
	LHS Expr
	RHS Expr
}

// ExprStmt is an expression used as a statement, usually a call.
type ExprStmt struct {
	stmt
	X Expr
}

// IfStmt is IF Cond THEN Then ELSE Else END_IF. ELSIF branches are nested
// IfStmts in Else.
type IfStmt struct {
	stmt
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// CaseStmt is CASE Selector OF ... END_CASE.
type CaseStmt struct {
	stmt
	Selector Expr
	Branches []*CaseBranch
	Else     []Stmt
}

// CaseBranch is one labelled branch of a CASE statement.
type CaseBranch struct {
	node
	Labels []Expr
	Body   []Stmt
}

// ForStmt is FOR Counter := From TO To BY Step DO Body END_FOR.
type ForStmt struct {
	stmt
	Counter Expr
	From    Expr
	To      Expr
	Step    Expr // nil if omitted
	Body    []Stmt
}

// WhileStmt is WHILE Cond DO Body END_WHILE.
type WhileStmt struct {
	stmt
	Cond Expr
	Body []Stmt
}

// RepeatStmt is REPEAT Body UNTIL Cond END_REPEAT.
type RepeatStmt struct {
	stmt
	Body []Stmt
	Cond Expr
}

// ReturnStmt is RETURN.
type ReturnStmt struct {
	stmt
}

// ExitStmt is EXIT.
type ExitStmt struct {
	stmt
}

// ContinueStmt is CONTINUE.
type ContinueStmt struct {
	stmt
}

// ----------------------------------------------------------------------------
// Expressions

// Name represents an identifier.
type Name struct {
	expr
	Value string
}

// NewName returns a Name at pos.
func NewName(value string, pos Pos) *Name {
	n := &Name{Value: value}
	n.pos = pos
	return n
}

// MemberExpr is X.Sel.
type MemberExpr struct {
	expr
	X   Expr
	Sel *Name
}

// IndexExpr is X[Index...].
type IndexExpr struct {
	expr
	X     Expr
	Index []Expr
}

// DerefExpr is X^.
type DerefExpr struct {
	expr
	X Expr
}

// CallExpr is Fun(Args...).
type CallExpr struct {
	expr
	Fun  Expr
	Args []Expr
}

// NamedArg is a call argument written Name := Value, or Name => Value
// for outputs.
type NamedArg struct {
	expr
	Name   *Name
	Value  Expr
	Output bool
}

// CastExpr is Type#X, as in INT#5 or Color#Red.
type CastExpr struct {
	expr
	Type *Name
	X    Expr
}

// BasicLit is a literal value.
type BasicLit struct {
	expr
	Kind  LitKind
	Value string
}

// Operation is a unary or binary operation. For unary operations Y is nil.
type Operation struct {
	expr
	Op Operator
	X  Expr
	Y  Expr
}
