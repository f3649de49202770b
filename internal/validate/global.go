package validate

import (
	"strings"

	"github.com/you-not-fish/stc/internal/diag"
	"github.com/you-not-fish/stc/internal/index"
	"github.com/you-not-fish/stc/internal/syntax"
	"github.com/you-not-fish/stc/internal/types"
)

// symbol is one declaration taking part in a uniqueness check.
type symbol struct {
	name    string
	span    syntax.Span
	builtin bool // a builtin type, declared nowhere
}

// cluster groups declarations that must not share a name.
type cluster struct {
	keys   []string
	byName map[string][]symbol
}

func (c *cluster) add(name string, span syntax.Span) {
	c.insert(symbol{name: name, span: span})
}

func (c *cluster) insert(s symbol) {
	if c.byName == nil {
		c.byName = make(map[string][]symbol)
	}
	k := strings.ToLower(s.name)
	if _, ok := c.byName[k]; !ok {
		c.keys = append(c.keys, k)
	}
	c.byName[k] = append(c.byName[k], s)
}

// global checks the uniqueness clusters of the whole project.
func (v *validator) global() {
	v.uniqueCallables()
	v.uniqueDatatypes()
	v.uniqueVariables()
	v.uniquePous()
}

// uniqueCallables: global function block instances, programs, methods,
// actions and non-generic functions.
func (v *validator) uniqueCallables() {
	var c cluster
	for _, g := range v.idx.Globals().Values() {
		if v.isFunctionBlock(g.TypeName) {
			c.add(g.Name, g.Span)
		}
	}
	for _, p := range v.idx.Pous().Values() {
		switch p.Kind {
		case syntax.Program, syntax.Method, syntax.Action:
			c.add(p.Name, p.Span)
		case syntax.Function:
			if !p.IsGeneric() {
				c.add(p.Name, p.Span)
			}
		}
	}
	v.checkCluster(&c, "Ambiguous callable symbol.")
}

// uniqueDatatypes: data types, function blocks and classes.
func (v *validator) uniqueDatatypes() {
	var c cluster
	for _, t := range v.idx.Types().Values() {
		if !t.IsInternal() {
			c.insert(symbol{
				name:    t.Name,
				span:    syntax.MakeSpan(t.Pos, t.Pos),
				builtin: t.Builtin,
			})
		}
	}
	for _, p := range v.idx.Pous().Values() {
		if p.Kind == syntax.FunctionBlock || p.Kind == syntax.Class {
			c.add(p.Name, p.Span)
		}
	}
	v.checkCluster(&c, "Ambiguous datatype.")
}

// uniqueVariables: globals and programs, the members of each container
// and the qualified enum elements.
func (v *validator) uniqueVariables() {
	var c cluster
	for _, g := range v.idx.Globals().Values() {
		c.add(g.Name, g.Span)
	}
	for _, p := range v.idx.Pous().Values() {
		if p.Kind == syntax.Program {
			c.add(p.Name, p.Span)
		}
	}
	v.checkCluster(&c, "Ambiguous global variable.")

	for _, container := range v.idx.Containers() {
		for _, e := range v.idx.Members(container).Entries() {
			if len(e.Values) > 1 {
				v.conflict(e.Values[0].QualifiedName, variableSymbols(e.Values), "")
			}
		}
	}
	for _, e := range v.idx.QualifiedEnumElements().Entries() {
		if len(e.Values) > 1 {
			v.conflict(e.Values[0].QualifiedName, variableSymbols(e.Values), "")
		}
	}
}

// uniquePous: programs, functions, function blocks and classes. Generic
// functions may be declared more than once.
func (v *validator) uniquePous() {
	for _, e := range v.idx.Pous().Entries() {
		var syms []symbol
		for _, p := range e.Values {
			if p.Kind != syntax.Action && p.Kind != syntax.Method && !p.IsGeneric() {
				syms = append(syms, symbol{name: p.Name, span: p.Span})
			}
		}
		if len(syms) > 1 {
			v.conflict(syms[0].name, syms, "")
		}
	}
}

func (v *validator) checkCluster(c *cluster, text string) {
	for _, k := range c.keys {
		if syms := c.byName[k]; len(syms) > 1 {
			v.conflict(syms[0].name, syms, text)
		}
	}
}

// conflict reports one diagnostic per user declaration of name, pointing at
// the other declarations. If one of them is a builtin type, each user
// declaration is told that the name is reserved instead.
func (v *validator) conflict(name string, syms []symbol, text string) {
	builtin := false
	for _, s := range syms {
		if s.builtin {
			builtin = true
		}
	}
	if text == "" {
		text = "Duplicate symbol."
	}
	for i, s := range syms {
		if s.builtin {
			continue
		}
		if builtin {
			v.errorf(diag.CodeDuplicate, s.span, "%s can not be used as a name because it is a built-in datatype", name)
			continue
		}
		others := make([]syntax.Span, 0, len(syms)-1)
		for j, o := range syms {
			if j != i {
				others = append(others, o.span)
			}
		}
		v.report(diag.Errorf(diag.CodeDuplicate, s.span, "%s: %s", name, text).WithSecondary(others...))
	}
}

func (v *validator) isFunctionBlock(typeName string) bool {
	t := v.idx.FindEffectiveType(typeName)
	if t == nil {
		return false
	}
	s, ok := t.Info.(*types.Struct)
	return ok && s.FromPou && s.PouKind == syntax.FunctionBlock
}

func variableSymbols(vs []*index.VariableEntry) []symbol {
	out := make([]symbol, len(vs))
	for i, e := range vs {
		out[i] = symbol{name: e.QualifiedName, span: e.Span}
	}
	return out
}
