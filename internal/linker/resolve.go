package linker

import (
	"github.com/you-not-fish/stc/internal/diag"
	"github.com/you-not-fish/stc/internal/syntax"
	"github.com/you-not-fish/stc/internal/types"
)

// ---------------------------------------------------------------------------
// Statements

func (l *linker) stmts(list []syntax.Stmt) {
	for _, s := range list {
		l.stmt(s)
	}
}

func (l *linker) stmt(s syntax.Stmt) {
	switch s := s.(type) {
	case *syntax.AssignStmt:
		l.expr(s.LHS)
		l.expr(s.RHS)
	case *syntax.ExprStmt:
		l.expr(s.X)
	case *syntax.IfStmt:
		l.expr(s.Cond)
		l.stmts(s.Then)
		l.stmts(s.Else)
	case *syntax.CaseStmt:
		l.expr(s.Selector)
		for _, b := range s.Branches {
			for _, label := range b.Labels {
				l.expr(label)
			}
			l.stmts(b.Body)
		}
		l.stmts(s.Else)
	case *syntax.ForStmt:
		l.expr(s.Counter)
		l.expr(s.From)
		l.expr(s.To)
		if s.Step != nil {
			l.expr(s.Step)
		}
		l.stmts(s.Body)
	case *syntax.WhileStmt:
		l.expr(s.Cond)
		l.stmts(s.Body)
	case *syntax.RepeatStmt:
		l.stmts(s.Body)
		l.expr(s.Cond)
	}
}

// ---------------------------------------------------------------------------
// Expressions

// expr resolves e. The result is false if e or a part of it could not be
// resolved; the problem has been reported then.
func (l *linker) expr(e syntax.Expr) (Annotation, bool) {
	switch e := e.(type) {
	case *syntax.Name:
		syms := l.stack.Lookup(e.Value)
		if len(syms) == 0 {
			l.unresolved(e)
			return Annotation{}, false
		}
		return l.resolved(e, l.choose(e, syms)), true

	case *syntax.MemberExpr:
		return l.member(e)

	case *syntax.IndexExpr:
		x, ok := l.expr(e.X)
		for _, i := range e.Index {
			l.expr(i)
		}
		if !ok {
			return Annotation{}, false
		}
		a := x
		a.Type = l.elementType(x.Type)
		a.AutoDeref = false
		l.record(e, a)
		return a, true

	case *syntax.DerefExpr:
		x, ok := l.expr(e.X)
		if !ok {
			return Annotation{}, false
		}
		a := x
		if t := l.idx.FindEffectiveType(x.Type); t != nil {
			if p, ok := t.Info.(*types.Pointer); ok {
				a.Type = p.Inner
			}
		}
		l.record(e, a)
		return a, true

	case *syntax.CallExpr:
		return l.call(e)

	case *syntax.NamedArg:
		return l.expr(e.Value)

	case *syntax.CastExpr:
		return l.cast(e)

	case *syntax.BasicLit:
		a := Annotation{Kind: Value, Type: literalType(e.Kind), Constant: true}
		l.record(e, a)
		return a, true

	case *syntax.Operation:
		x, okx := l.expr(e.X)
		if e.Y == nil {
			if !okx {
				return Annotation{}, false
			}
			a := Annotation{Kind: Value, Type: x.Type, Constant: x.Constant}
			l.record(e, a)
			return a, true
		}
		y, oky := l.expr(e.Y)
		if !okx || !oky {
			return Annotation{}, false
		}
		a := Annotation{Kind: Value, Type: l.operationType(e.Op, x.Type, y.Type), Constant: x.Constant && y.Constant}
		l.record(e, a)
		return a, true
	}
	return Annotation{}, false
}

// resolved records that n refers to s.
func (l *linker) resolved(n *syntax.Name, s Symbol) Annotation {
	a := l.annotate(s)
	l.record(n, a)
	l.use(n, a.Name)
	return a
}

// member resolves X.Sel. Sel is searched strictly in what X resolved to:
// the elements of an enum, the members and methods of a POU, or the
// members and methods of the type of a variable.
func (l *linker) member(e *syntax.MemberExpr) (Annotation, bool) {
	x, ok := l.expr(e.X)
	if !ok {
		return Annotation{}, false
	}
	sel := e.Sel.Value

	var syms []Symbol
	switch x.Kind {
	case Type:
		if t := l.idx.FindEffectiveType(x.Name); t != nil && types.IsEnum(t.Info) {
			syms = variables(l.idx.FindEnumElement(t.Name, sel))
		}
	case Pou:
		syms = CompositeScope{LocalScope{Container: x.Name}, CallableScope{Qualifier: x.Name}}.Lookup(l.idx, sel)
	default:
		container := l.containerOf(x.Type)
		syms = CompositeScope{LocalScope{Container: container}, CallableScope{Qualifier: container}}.Lookup(l.idx, sel)
	}
	if len(syms) == 0 {
		l.unresolved(e.Sel)
		return Annotation{}, false
	}

	s := l.choose(e.Sel, syms)
	if s.Kind == VariableSymbol && x.Kind != Type && s.Variable.IsPrivate() && !l.isOwnMember(s.Variable) {
		l.errorf(diag.CodePrivate, syntax.SpanOf(e.Sel), "Illegal access to private member %s", s.Variable.QualifiedName)
	}
	a := l.resolved(e.Sel, s)
	l.record(e, a)
	return a, true
}

// call resolves the callee and the arguments of e. Named arguments are
// members of the callee.
func (l *linker) call(e *syntax.CallExpr) (Annotation, bool) {
	fn, ok := l.expr(e.Fun)

	callee := ""
	if ok {
		switch fn.Kind {
		case Pou:
			callee = fn.Name
		case Variable:
			// calling a function block instance
			callee = l.containerOf(fn.Type)
		}
	}

	for _, arg := range e.Args {
		na, named := arg.(*syntax.NamedArg)
		if !named {
			l.expr(arg)
			continue
		}
		if callee != "" {
			if v := findMember(l.idx, callee, na.Name.Value); v != nil {
				l.resolved(na.Name, Symbol{Kind: VariableSymbol, Variable: v})
			} else {
				l.unresolved(na.Name)
			}
		}
		l.expr(na.Value)
	}

	if !ok {
		return Annotation{}, false
	}
	a := Annotation{Kind: Call, Name: callee, Type: types.VOID}
	if p := l.idx.FindPou(callee); p != nil && p.ReturnType != "" {
		a.Type = p.ReturnType
	}
	l.record(e, a)
	return a, true
}

// cast resolves Type#X. For enums X names an element of the enum.
func (l *linker) cast(e *syntax.CastExpr) (Annotation, bool) {
	syms := TypesScope{}.Lookup(l.idx, e.Type.Value)
	if len(syms) == 0 {
		l.errorf(diag.CodeUnknownType, syntax.SpanOf(e.Type), "Unknown type: %s", e.Type.Value)
		return Annotation{}, false
	}
	t := l.resolved(e.Type, syms[0])

	if eff := l.idx.FindEffectiveType(t.Name); eff != nil && types.IsEnum(eff.Info) {
		if n, ok := e.X.(*syntax.Name); ok {
			v := l.idx.FindEnumElement(eff.Name, n.Value)
			if v == nil {
				l.unresolved(n)
				return Annotation{}, false
			}
			a := l.resolved(n, Symbol{Kind: VariableSymbol, Variable: v})
			l.record(e, a)
			return a, true
		}
	}

	x, ok := l.expr(e.X)
	if !ok {
		return Annotation{}, false
	}
	a := Annotation{Kind: Value, Type: t.Name, Constant: x.Constant}
	l.record(e, a)
	return a, true
}

// containerOf returns the name members of a value of type typeName are
// registered under.
func (l *linker) containerOf(typeName string) string {
	t := l.idx.FindEffectiveType(typeName)
	if t == nil {
		return typeName
	}
	if p, ok := t.Info.(*types.Pointer); ok && p.AutoDeref {
		return l.containerOf(p.Inner)
	}
	return t.Name
}

// elementType returns the type of x[i] for x of type typeName.
func (l *linker) elementType(typeName string) string {
	t := l.idx.FindEffectiveType(typeName)
	if t == nil {
		return typeName
	}
	switch info := t.Info.(type) {
	case *types.Array:
		return info.Inner
	case *types.Pointer:
		return info.Inner
	}
	return typeName
}

func (l *linker) operationType(op syntax.Operator, x, y string) string {
	if op.IsComparison() {
		return types.BOOL
	}
	tx, ty := l.idx.FindEffectiveType(x), l.idx.FindEffectiveType(y)
	if tx == nil || ty == nil {
		return x
	}
	return types.BiggerType(tx, ty).Name
}

func literalType(k syntax.LitKind) string {
	switch k {
	case syntax.IntLit:
		return types.DINT
	case syntax.RealLit:
		return types.LREAL
	case syntax.BoolLit:
		return types.BOOL
	case syntax.StringLit:
		return types.STRING
	case syntax.WStringLit:
		return types.WSTRING
	case syntax.TimeLit:
		return types.TIME
	case syntax.DateLit:
		return types.DATE
	}
	return types.VOID
}
