package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a textual representation of the AST to w.
func Fprint(w io.Writer, node Node) {
	p := &printer{w: w}
	p.print(node)
}

type printer struct {
	w      io.Writer
	indent int
}

func (p *printer) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s%s", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

// block prints a labelled list of statements one level deeper.
func (p *printer) block(label string, list []Stmt) {
	if len(list) == 0 {
		return
	}
	p.printf("%s:\n", label)
	p.indent++
	for _, s := range list {
		p.print(s)
	}
	p.indent--
}

// child prints a labelled sub-node one level deeper.
func (p *printer) child(label string, n Node) {
	if isNil(n) {
		return
	}
	p.printf("%s:\n", label)
	p.indent++
	p.print(n)
	p.indent--
}

func (p *printer) print(node Node) {
	if isNil(node) {
		return
	}

	switch n := node.(type) {
	case *CompilationUnit:
		p.printf("CompilationUnit %q\n", n.FileName)
		p.indent++
		for _, b := range n.GlobalVars {
			p.print(b)
		}
		for _, t := range n.UserTypes {
			p.print(t)
		}
		for _, i := range n.Interfaces {
			p.print(i)
		}
		for _, pou := range n.Pous {
			p.print(pou)
		}
		for _, i := range n.Implementations {
			p.print(i)
		}
		p.indent--

	case *Pou:
		p.printf("Pou %s %s %s\n", n.pos, n.Kind, n.Name.Value)
		p.indent++
		if n.Parent != "" {
			p.printf("Parent: %s\n", n.Parent)
		}
		if n.Linkage != Internal {
			p.printf("Linkage: %s\n", n.Linkage)
		}
		if n.Generic {
			p.printf("Generic: true\n")
		}
		if n.Extends != nil {
			p.printf("Extends: %s\n", n.Extends.Value)
		}
		for _, i := range n.Implements {
			p.printf("Implements: %s\n", i.Value)
		}
		if n.ReturnType != nil {
			p.printf("Returns: %s\n", typeRefString(n.ReturnType))
		}
		for _, b := range n.VarBlocks {
			p.print(b)
		}
		p.indent--

	case *Interface:
		p.printf("Interface %s %s\n", n.pos, n.Name.Value)
		p.indent++
		for _, e := range n.Extends {
			p.printf("Extends: %s\n", e.Value)
		}
		for _, m := range n.Methods {
			p.print(m)
		}
		p.indent--

	case *Implementation:
		p.printf("Implementation %s %s %s\n", n.pos, n.Kind, n.Name)
		p.indent++
		if n.TypeName != n.Name {
			p.printf("Type: %s\n", n.TypeName)
		}
		p.block("Body", n.Body)
		p.indent--

	case *VarBlock:
		p.printf("VarBlock %s %s\n", n.pos, n.Kind.Keyword())
		p.indent++
		if n.Constant {
			p.printf("Constant: true\n")
		}
		if n.ByRef {
			p.printf("ByRef: true\n")
		}
		if n.Retain {
			p.printf("Retain: true\n")
		}
		for _, v := range n.Vars {
			p.print(v)
		}
		p.indent--

	case *Variable:
		p.printf("Variable %s %s : %s\n", n.pos, n.Name.Value, typeRefString(n.Type))
		p.indent++
		if n.Binding != nil {
			p.printf("At: %s\n", bindingString(n.Binding))
		}
		if n.Type.IsInline() {
			p.print(n.Type.Def)
		}
		p.child("Init", n.Init)
		p.indent--

	case *UserType:
		p.printf("UserType %s\n", n.pos)
		p.indent++
		if n.Scope != "" {
			p.printf("Scope: %s\n", n.Scope)
		}
		p.print(n.Def)
		p.child("Init", n.Init)
		p.indent--

	case *StructType:
		p.printf("StructType %s %s\n", n.pos, n.Name)
		p.indent++
		for _, v := range n.Vars {
			p.print(v)
		}
		p.indent--

	case *EnumType:
		p.printf("EnumType %s %s\n", n.pos, n.Name)
		p.indent++
		if n.NumericType != "" {
			p.printf("Numeric: %s\n", n.NumericType)
		}
		for _, e := range n.Elements {
			if e.Value != nil {
				p.printf("Element: %s := %s\n", e.Name, ExprString(e.Value))
			} else {
				p.printf("Element: %s\n", e.Name)
			}
		}
		p.indent--

	case *ArrayType:
		p.printf("ArrayType %s %s\n", n.pos, n.Name)
		p.indent++
		for _, d := range n.Dims {
			p.printf("Dim: %s..%s\n", ExprString(d.Lower), ExprString(d.Upper))
		}
		p.printf("Elem: %s\n", typeRefString(n.Elem))
		p.indent--

	case *SubRangeType:
		p.printf("SubRangeType %s %s %s(%s..%s)\n", n.pos, n.Name, n.Base, ExprString(n.Lower), ExprString(n.Upper))

	case *PointerType:
		p.printf("PointerType %s %s\n", n.pos, n.Name)
		p.indent++
		p.printf("Target: %s\n", typeRefString(n.Target))
		if n.AutoDeref {
			p.printf("AutoDeref: true\n")
		}
		p.indent--

	case *StringType:
		kw := "STRING"
		if n.Wide {
			kw = "WSTRING"
		}
		if n.Size != nil {
			p.printf("StringType %s %s %s[%s]\n", n.pos, n.Name, kw, ExprString(n.Size))
		} else {
			p.printf("StringType %s %s %s\n", n.pos, n.Name, kw)
		}

	case *AliasType:
		p.printf("AliasType %s %s = %s\n", n.pos, n.Name, n.Target)

	case *AssignStmt:
		p.printf("AssignStmt %s\n", n.pos)
		p.indent++
		p.child("LHS", n.LHS)
		p.child("RHS", n.RHS)
		p.indent--

	case *ExprStmt:
		p.printf("ExprStmt %s\n", n.pos)
		p.indent++
		p.print(n.X)
		p.indent--

	case *IfStmt:
		p.printf("IfStmt %s\n", n.pos)
		p.indent++
		p.child("Cond", n.Cond)
		p.block("Then", n.Then)
		p.block("Else", n.Else)
		p.indent--

	case *CaseStmt:
		p.printf("CaseStmt %s\n", n.pos)
		p.indent++
		p.child("Selector", n.Selector)
		for _, b := range n.Branches {
			labels := make([]string, len(b.Labels))
			for i, l := range b.Labels {
				labels[i] = ExprString(l)
			}
			p.block("Case "+strings.Join(labels, ", "), b.Body)
		}
		p.block("Else", n.Else)
		p.indent--

	case *ForStmt:
		p.printf("ForStmt %s\n", n.pos)
		p.indent++
		p.child("Counter", n.Counter)
		p.child("From", n.From)
		p.child("To", n.To)
		p.child("Step", n.Step)
		p.block("Body", n.Body)
		p.indent--

	case *WhileStmt:
		p.printf("WhileStmt %s\n", n.pos)
		p.indent++
		p.child("Cond", n.Cond)
		p.block("Body", n.Body)
		p.indent--

	case *RepeatStmt:
		p.printf("RepeatStmt %s\n", n.pos)
		p.indent++
		p.block("Body", n.Body)
		p.child("Until", n.Cond)
		p.indent--

	case *ReturnStmt:
		p.printf("ReturnStmt %s\n", n.pos)

	case *ExitStmt:
		p.printf("ExitStmt %s\n", n.pos)

	case *ContinueStmt:
		p.printf("ContinueStmt %s\n", n.pos)

	case *Name:
		p.printf("Name %s %q\n", n.pos, n.Value)

	case *BasicLit:
		p.printf("BasicLit %s %s %q\n", n.pos, n.Kind, n.Value)

	case *Operation:
		if n.Y == nil {
			p.printf("UnaryOp %s %s\n", n.pos, n.Op)
			p.indent++
			p.print(n.X)
			p.indent--
		} else {
			p.printf("BinaryOp %s %s\n", n.pos, n.Op)
			p.indent++
			p.child("X", n.X)
			p.child("Y", n.Y)
			p.indent--
		}

	case *MemberExpr:
		p.printf("MemberExpr %s\n", n.pos)
		p.indent++
		p.child("X", n.X)
		p.printf("Sel: %s\n", n.Sel.Value)
		p.indent--

	case *IndexExpr:
		p.printf("IndexExpr %s\n", n.pos)
		p.indent++
		p.child("X", n.X)
		p.printf("Index:\n")
		p.indent++
		for _, i := range n.Index {
			p.print(i)
		}
		p.indent--
		p.indent--

	case *DerefExpr:
		p.printf("DerefExpr %s\n", n.pos)
		p.indent++
		p.print(n.X)
		p.indent--

	case *CallExpr:
		p.printf("CallExpr %s\n", n.pos)
		p.indent++
		p.child("Fun", n.Fun)
		if len(n.Args) > 0 {
			p.printf("Args:\n")
			p.indent++
			for _, a := range n.Args {
				p.print(a)
			}
			p.indent--
		}
		p.indent--

	case *NamedArg:
		arrow := ":="
		if n.Output {
			arrow = "=>"
		}
		p.printf("NamedArg %s %s %s\n", n.pos, n.Name.Value, arrow)
		p.indent++
		p.print(n.Value)
		p.indent--

	case *CastExpr:
		p.printf("CastExpr %s %s#\n", n.pos, n.Type.Value)
		p.indent++
		p.print(n.X)
		p.indent--

	default:
		p.printf("<%T>\n", node)
	}
}

// typeRefString returns the referenced type name, or a short description
// of an inline definition.
func typeRefString(r *TypeRef) string {
	switch {
	case r == nil:
		return "<nil>"
	case r.Def == nil:
		return r.Name
	}
	switch t := r.Def.(type) {
	case *ArrayType:
		return "ARRAY OF " + typeRefString(t.Elem)
	case *PointerType:
		if t.AutoDeref {
			return "REFERENCE TO " + typeRefString(t.Target)
		}
		return "POINTER TO " + typeRefString(t.Target)
	case *StringType:
		if t.Wide {
			return "WSTRING"
		}
		return "STRING"
	case *StructType:
		return "STRUCT"
	case *EnumType:
		return "ENUM"
	case *SubRangeType:
		return t.Base + "(..)"
	default:
		return fmt.Sprintf("<%T>", t)
	}
}

func bindingString(b *HardwareBinding) string {
	var sb strings.Builder
	sb.WriteByte('%')
	switch b.Direction {
	case DirInput:
		sb.WriteByte('I')
	case DirOutput:
		sb.WriteByte('Q')
	case DirMemory:
		sb.WriteByte('M')
	case DirGlobal:
		sb.WriteByte('G')
	}
	switch b.Access {
	case Bit:
		sb.WriteByte('X')
	case Byte:
		sb.WriteByte('B')
	case Word:
		sb.WriteByte('W')
	case DWord:
		sb.WriteByte('D')
	case LWord:
		sb.WriteByte('L')
	case Template:
		sb.WriteByte('*')
	}
	for i, a := range b.Address {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(ExprString(a))
	}
	return sb.String()
}

// ExprString renders an expression in Structured Text notation.
func ExprString(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch x := e.(type) {
	case *Name:
		return x.Value
	case *BasicLit:
		switch x.Kind {
		case StringLit:
			return "'" + x.Value + "'"
		case WStringLit:
			return `"` + x.Value + `"`
		}
		return x.Value
	case *MemberExpr:
		return ExprString(x.X) + "." + x.Sel.Value
	case *IndexExpr:
		idx := make([]string, len(x.Index))
		for i, e := range x.Index {
			idx[i] = ExprString(e)
		}
		return ExprString(x.X) + "[" + strings.Join(idx, ", ") + "]"
	case *DerefExpr:
		return ExprString(x.X) + "^"
	case *CallExpr:
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = ExprString(a)
		}
		return ExprString(x.Fun) + "(" + strings.Join(args, ", ") + ")"
	case *NamedArg:
		if x.Output {
			return x.Name.Value + " => " + ExprString(x.Value)
		}
		return x.Name.Value + " := " + ExprString(x.Value)
	case *CastExpr:
		return x.Type.Value + "#" + ExprString(x.X)
	case *Operation:
		if x.Y == nil {
			if x.Op == OpNot {
				return "NOT " + ExprString(x.X)
			}
			return x.Op.String() + ExprString(x.X)
		}
		return ExprString(x.X) + " " + x.Op.String() + " " + ExprString(x.Y)
	default:
		return fmt.Sprintf("<%T>", e)
	}
}
