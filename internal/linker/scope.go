package linker

import (
	"strings"

	"github.com/you-not-fish/stc/internal/index"
	"github.com/you-not-fish/stc/internal/syntax"
	"github.com/you-not-fish/stc/internal/types"
)

// SymbolKind is the kind of entry a name resolved to.
type SymbolKind uint8

const (
	VariableSymbol SymbolKind = iota
	PouSymbol
	TypeSymbol
)

// Symbol is an index entry found by a scope.
type Symbol struct {
	Kind     SymbolKind
	Variable *index.VariableEntry
	Pou      *index.PouEntry
	Type     *types.DataType
}

// Name returns the qualified name of the entry.
func (s Symbol) Name() string {
	switch s.Kind {
	case VariableSymbol:
		return s.Variable.QualifiedName
	case PouSymbol:
		return s.Pou.Name
	}
	return s.Type.Name
}

// Span returns the declaration site of the entry.
func (s Symbol) Span() syntax.Span {
	switch s.Kind {
	case VariableSymbol:
		return s.Variable.Span
	case PouSymbol:
		return s.Pou.Span
	}
	return syntax.MakeSpan(s.Type.Pos, s.Type.Pos)
}

func variables(vs ...*index.VariableEntry) []Symbol {
	out := make([]Symbol, 0, len(vs))
	for _, v := range vs {
		if v != nil {
			out = append(out, Symbol{Kind: VariableSymbol, Variable: v})
		}
	}
	return out
}

func pous(ps ...*index.PouEntry) []Symbol {
	out := make([]Symbol, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			out = append(out, Symbol{Kind: PouSymbol, Pou: p})
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Scopes

// A Scope finds the entries a name may refer to. More than one result means
// the name is ambiguous in that scope.
type Scope interface {
	Lookup(idx *index.Index, name string) []Symbol
	String() string
}

// TypesScope finds data types and POU types.
type TypesScope struct{}

func (TypesScope) Lookup(idx *index.Index, name string) []Symbol {
	var out []Symbol
	for _, t := range idx.Types().GetAll(name) {
		out = append(out, Symbol{Kind: TypeSymbol, Type: t})
	}
	if len(out) == 0 {
		if t := idx.FindPouType(name); t != nil {
			out = append(out, Symbol{Kind: TypeSymbol, Type: t})
		}
	}
	return out
}

func (TypesScope) String() string { return "Types" }

// PousScope finds POUs of any kind.
type PousScope struct{}

func (PousScope) Lookup(idx *index.Index, name string) []Symbol {
	return pous(idx.Pous().GetAll(name)...)
}

func (PousScope) String() string { return "POUs" }

// GlobalsScope finds global variables and unqualified enum elements.
type GlobalsScope struct{}

func (GlobalsScope) Lookup(idx *index.Index, name string) []Symbol {
	if gs := idx.Globals().GetAll(name); len(gs) > 0 {
		return variables(gs...)
	}
	return variables(idx.FindGlobalVariable(name))
}

func (GlobalsScope) String() string { return "GlobalVariables" }

// LocalScope finds the members of a POU or struct, including the members
// a class or function block inherits.
type LocalScope struct {
	Container string
}

func (s LocalScope) Lookup(idx *index.Index, name string) []Symbol {
	return variables(findMember(idx, s.Container, name))
}

func (s LocalScope) String() string { return "LocalVariable(" + s.Container + ")" }

// CallableScope finds the POUs that can be called by name. With a
// qualifier these are its methods and actions (inherited ones included);
// without one, functions and programs.
type CallableScope struct {
	Qualifier string
}

func (s CallableScope) Lookup(idx *index.Index, name string) []Symbol {
	if s.Qualifier == "" {
		var out []*index.PouEntry
		for _, p := range idx.Pous().GetAll(name) {
			if p.Kind == syntax.Function || p.Kind == syntax.Program {
				out = append(out, p)
			}
		}
		return pous(out...)
	}
	for _, q := range idx.SuperChain(s.Qualifier) {
		if p := idx.FindPou(q + "." + name); p != nil {
			return pous(p)
		}
	}
	return nil
}

func (s CallableScope) String() string { return "Callable(" + s.Qualifier + ")" }

// CompositeScope returns the result of the first of its scopes that finds
// the name.
type CompositeScope []Scope

func (c CompositeScope) Lookup(idx *index.Index, name string) []Symbol {
	for _, s := range c {
		if syms := s.Lookup(idx, name); len(syms) > 0 {
			return syms
		}
	}
	return nil
}

func (c CompositeScope) String() string {
	names := make([]string, len(c))
	for i, s := range c {
		names[i] = s.String()
	}
	return "Composite(" + strings.Join(names, ", ") + ")"
}

// EmptyScope finds nothing.
type EmptyScope struct{}

func (EmptyScope) Lookup(*index.Index, string) []Symbol { return nil }
func (EmptyScope) String() string                        { return "Empty" }

// ---------------------------------------------------------------------------
// Strategies

// Strategy is a scope on the stack together with what happens when it does
// not find a name.
type Strategy struct {
	Scope  Scope
	Strict bool // do not fall back to the enclosing strategies
}

// Hierarchical returns a strategy that falls back to the enclosing ones.
func Hierarchical(s Scope) Strategy { return Strategy{Scope: s} }

// Strict returns a strategy that ends the search.
func Strict(s Scope) Strategy { return Strategy{Scope: s, Strict: true} }

func (s Strategy) String() string {
	if s.Strict {
		return "Strict(" + s.Scope.String() + ")"
	}
	return "Hierarchical(" + s.Scope.String() + ")"
}

// RootStrategy resolves names outside of any POU.
func RootStrategy() Strategy {
	return Strict(CompositeScope{GlobalsScope{}, CallableScope{}, PousScope{}, TypesScope{}})
}

// ScopeStack is the stack of strategies in effect while resolving.
type ScopeStack struct {
	idx        *index.Index
	strategies []Strategy
}

// NewScopeStack returns a stack holding only root.
func NewScopeStack(idx *index.Index, root Strategy) *ScopeStack {
	return &ScopeStack{idx: idx, strategies: []Strategy{root}}
}

// Push makes s the innermost strategy.
func (st *ScopeStack) Push(s Strategy) { st.strategies = append(st.strategies, s) }

// Pop removes the innermost strategy.
func (st *ScopeStack) Pop() { st.strategies = st.strategies[:len(st.strategies)-1] }

// Depth returns the number of strategies on the stack.
func (st *ScopeStack) Depth() int { return len(st.strategies) }

// Lookup searches from the innermost strategy outwards.
func (st *ScopeStack) Lookup(name string) []Symbol {
	for i := len(st.strategies) - 1; i >= 0; i-- {
		s := st.strategies[i]
		if syms := s.Scope.Lookup(st.idx, name); len(syms) > 0 {
			return syms
		}
		if s.Strict {
			return nil
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Inheritance

// findMember finds a member of container or of the POUs it extends. For a
// method or action the members of its owner are searched as well.
func findMember(idx *index.Index, container, name string) *index.VariableEntry {
	if v := idx.FindMember(container, name); v != nil {
		return v
	}
	owner := container
	if p := idx.FindPou(container); p != nil {
		owner = p.Container()
	}
	for _, c := range idx.SuperChain(owner)[1:] {
		if v := idx.FindMember(c, name); v != nil {
			return v
		}
	}
	return nil
}
