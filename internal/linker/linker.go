package linker

import (
	"strings"

	"github.com/you-not-fish/stc/internal/diag"
	"github.com/you-not-fish/stc/internal/index"
	"github.com/you-not-fish/stc/internal/syntax"
	"github.com/you-not-fish/stc/internal/types"
)

// linker resolves the units of one Link call.
type linker struct {
	idx  *index.Index
	conf *Config
	info *Info

	// Current implementation context
	stack     *ScopeStack
	container string // call name of the implementation being resolved
	owner     string // POU whose instance it runs in

	// Error tracking
	errors int
	first  *diag.Diagnostic
}

// errorf reports a diagnostic with the given code.
func (l *linker) errorf(code string, span syntax.Span, format string, args ...interface{}) *diag.Diagnostic {
	d := diag.Errorf(code, span, format, args...)
	l.report(d)
	return d
}

func (l *linker) report(d *diag.Diagnostic) {
	if l.errors == 0 {
		l.first = d
	}
	l.errors++
	if l.conf.Error != nil {
		l.conf.Error(d)
	}
}

func (l *linker) unit(u *syntax.CompilationUnit) {
	l.declarations(u)

	for _, impl := range u.Implementations {
		l.implementation(impl)
	}
	for _, b := range u.GlobalVars {
		l.initializers("", b.Vars)
	}
}

// initializers resolves the initial values of vars. Inside a POU they see
// its members and callables before the globals.
func (l *linker) initializers(container string, vars []*syntax.Variable) {
	l.stack = NewScopeStack(l.idx, RootStrategy())
	l.container, l.owner = container, container
	if container != "" {
		if p := l.idx.FindPou(container); p != nil {
			l.owner = p.Container()
		}
		l.stack.Push(Hierarchical(CompositeScope{
			LocalScope{Container: container},
			CallableScope{Qualifier: l.owner},
		}))
	}
	for _, v := range vars {
		if v.Init != nil {
			l.expr(v.Init)
		}
	}
}

// initializer resolves a single initial value outside of any POU.
func (l *linker) initializer(init syntax.Expr) {
	if init == nil {
		return
	}
	l.stack = NewScopeStack(l.idx, RootStrategy())
	l.container, l.owner = "", ""
	l.expr(init)
}

func pouName(p *syntax.Pou) string {
	name := p.Name.Value
	if p.Parent != "" && !strings.HasPrefix(strings.ToLower(name), strings.ToLower(p.Parent)+".") {
		return p.Parent + "." + name
	}
	return name
}

// ---------------------------------------------------------------------------
// Declarations

// declarations checks that every type referenced by the declarations of u
// exists, and that base classes and interfaces exist.
func (l *linker) declarations(u *syntax.CompilationUnit) {
	for _, b := range u.GlobalVars {
		for _, v := range b.Vars {
			l.typeRef(v.Type)
		}
	}
	for _, t := range u.UserTypes {
		l.dataType(t.Def)
		l.initializer(t.Init)
	}
	for _, p := range u.Pous {
		l.pouDecl(p)
	}
	for _, i := range u.Interfaces {
		for _, e := range i.Extends {
			if l.idx.FindInterface(e.Value) == nil {
				l.errorf(diag.CodeUnresolved, syntax.SpanOf(e), "Interface `%s` does not exist", e.Value)
			}
		}
		for _, m := range i.Methods {
			l.pouDecl(m)
		}
	}
}

func (l *linker) pouDecl(p *syntax.Pou) {
	for _, b := range p.VarBlocks {
		for _, v := range b.Vars {
			l.typeRef(v.Type)
		}
	}
	if p.ReturnType != nil {
		l.typeRef(p.ReturnType)
	}
	if p.Extends != nil {
		if base := l.idx.FindPou(p.Extends.Value); base == nil {
			l.errorf(diag.CodeUnresolved, syntax.SpanOf(p.Extends), "Base `%s` does not exist", p.Extends.Value)
		} else {
			l.use(p.Extends, base.Name)
		}
	}
	for _, i := range p.Implements {
		if l.idx.FindInterface(i.Value) == nil {
			l.errorf(diag.CodeUnresolved, syntax.SpanOf(i), "Interface `%s` does not exist", i.Value)
		}
	}
	name := pouName(p)
	for _, b := range p.VarBlocks {
		l.initializers(name, b.Vars)
	}
}

// typeRef checks a named reference or descends into an inline definition.
func (l *linker) typeRef(ref *syntax.TypeRef) {
	switch {
	case ref == nil:
	case ref.IsInline():
		l.dataType(ref.Def)
	default:
		l.typeName(ref.Name, syntax.SpanOf(ref))
	}
}

func (l *linker) typeName(name string, span syntax.Span) {
	if l.idx.FindType(name) == nil {
		l.errorf(diag.CodeUnknownType, span, "Unknown type: %s", name)
	}
}

func (l *linker) dataType(def syntax.DataType) {
	switch def := def.(type) {
	case *syntax.StructType:
		for _, v := range def.Vars {
			l.typeRef(v.Type)
		}
		for _, v := range def.Vars {
			l.initializer(v.Init)
		}
	case *syntax.EnumType:
		if def.NumericType != "" {
			l.typeName(def.NumericType, syntax.SpanOf(def))
		}
	case *syntax.ArrayType:
		l.typeRef(def.Elem)
	case *syntax.PointerType:
		l.typeRef(def.Target)
	case *syntax.SubRangeType:
		l.typeName(def.Base, syntax.SpanOf(def))
	case *syntax.AliasType:
		l.typeName(def.Target, syntax.SpanOf(def))
	}
}

// ---------------------------------------------------------------------------
// Implementations

func (l *linker) implementation(impl *syntax.Implementation) {
	owner := impl.TypeName
	if e := l.idx.FindImplementationByName(impl.Name); e != nil && e.AssociatedClass != "" {
		owner = e.AssociatedClass
	}
	l.container, l.owner = impl.Name, owner
	l.stack = NewScopeStack(l.idx, RootStrategy())
	l.stack.Push(Hierarchical(CompositeScope{
		LocalScope{Container: impl.Name},
		CallableScope{Qualifier: owner},
	}))
	l.stmts(impl.Body)
	l.stack.Pop()
}

// ---------------------------------------------------------------------------
// Recording

func (l *linker) record(e syntax.Expr, a Annotation) {
	l.info.Annotations[e] = a
}

func (l *linker) use(n *syntax.Name, qualifiedName string) {
	k := strings.ToLower(qualifiedName)
	l.info.Uses[k] = append(l.info.Uses[k], n)
}

// annotate converts a symbol into the annotation of the expression
// referring to it.
func (l *linker) annotate(s Symbol) Annotation {
	switch s.Kind {
	case VariableSymbol:
		v := s.Variable
		a := Annotation{
			Kind:     Variable,
			Name:     v.QualifiedName,
			Type:     v.TypeName,
			Constant: v.Constant,
			Argument: v.Argument,
		}
		if t := l.idx.FindEffectiveType(v.TypeName); t != nil {
			if p, ok := t.Info.(*types.Pointer); ok && p.AutoDeref {
				a.Type = p.Inner
				a.AutoDeref = true
			}
		}
		return a
	case PouSymbol:
		return Annotation{Kind: Pou, Name: s.Pou.Name, Type: s.Pou.Name}
	}
	return Annotation{Kind: Type, Name: s.Type.Name, Type: s.Type.Name}
}

// choose reports an ambiguous reference when syms has more than one entry
// and returns the first.
func (l *linker) choose(n *syntax.Name, syms []Symbol) Symbol {
	if len(syms) > 1 {
		spans := make([]syntax.Span, len(syms))
		for i, s := range syms {
			spans[i] = s.Span()
		}
		l.report(diag.Errorf(diag.CodeDuplicate, syntax.SpanOf(n), "%s: Ambiguous reference.", n.Value).WithSecondary(spans...))
	}
	return syms[0]
}

func (l *linker) unresolved(n *syntax.Name) {
	l.errorf(diag.CodeUnresolved, syntax.SpanOf(n), "Could not resolve reference to %s", n.Value)
}

// isOwnMember reports whether v belongs to the POU being resolved or to one
// of the POUs it extends.
func (l *linker) isOwnMember(v *index.VariableEntry) bool {
	i := strings.LastIndexByte(v.QualifiedName, '.')
	if i < 0 {
		return false
	}
	container := v.QualifiedName[:i]
	if strings.EqualFold(container, l.container) {
		return true
	}
	for _, c := range l.idx.SuperChain(l.owner) {
		if strings.EqualFold(container, c) {
			return true
		}
	}
	return false
}
