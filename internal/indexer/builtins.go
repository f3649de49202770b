package indexer

import (
	"strings"

	"github.com/you-not-fish/stc/internal/index"
	"github.com/you-not-fish/stc/internal/syntax"
	"github.com/you-not-fish/stc/internal/types"
)

// param is a parameter of a builtin function.
type param struct {
	block syntax.VarBlockKind
	name  string
	typ   string // a builtin type or one of the function's generics
}

// builtin describes a generic function provided by the compiler.
type builtin struct {
	name     string
	generics []index.GenericBinding
	ret      string
	params   []param
	variadic *index.VarArgs // appended after params
}

func generic(name string, n types.Nature) index.GenericBinding {
	return index.GenericBinding{Name: name, Nature: n}
}

var builtins = []builtin{
	{
		name:     "ADR",
		generics: []index.GenericBinding{generic("U", types.Any)},
		ret:      types.LWORD,
		params:   []param{{syntax.Input, "in", "U"}},
	},
	{
		name:     "REF",
		generics: []index.GenericBinding{generic("U", types.Any)},
		ret:      "REF_TO U",
		params:   []param{{syntax.Input, "in", "U"}},
	},
	{
		name:     "MUX",
		generics: []index.GenericBinding{generic("U", types.Any)},
		ret:      "U",
		params:   []param{{syntax.Input, "K", types.DINT}},
		variadic: &index.VarArgs{Sized: true, TypeName: "U"},
	},
	{
		name:     "SEL",
		generics: []index.GenericBinding{generic("U", types.Any)},
		ret:      "U",
		params: []param{
			{syntax.Input, "G", types.BOOL},
			{syntax.Input, "IN0", "U"},
			{syntax.Input, "IN1", "U"},
		},
	},
	{
		name:     "MOVE",
		generics: []index.GenericBinding{generic("U", types.Any)},
		ret:      "U",
		params:   []param{{syntax.Input, "in", "U"}},
	},
	{
		name:     "SIZEOF",
		generics: []index.GenericBinding{generic("U", types.Any)},
		ret:      types.ULINT,
		params:   []param{{syntax.Input, "in", "U"}},
	},
	{
		name:     "LOWER_BOUND",
		generics: []index.GenericBinding{generic("U", types.Any), generic("T", types.Int)},
		ret:      types.DINT,
		params: []param{
			{syntax.InOut, "arr", "U"},
			{syntax.Input, "dim", "T"},
		},
	},
	{
		name:     "UPPER_BOUND",
		generics: []index.GenericBinding{generic("U", types.Any), generic("T", types.Int)},
		ret:      types.DINT,
		params: []param{
			{syntax.InOut, "arr", "U"},
			{syntax.Input, "dim", "T"},
		},
	},
}

// Builtins returns the index of the builtin types and the builtin generic
// functions. It is imported before the units of a project.
func Builtins() *index.Index {
	ix := &indexer{idx: index.New()}
	for _, t := range types.Builtins() {
		ix.idx.RegisterType(t)
	}
	for _, b := range builtins {
		ix.builtin(b)
	}
	return ix.idx
}

func (ix *indexer) builtin(b builtin) {
	// generic parameters are types named __<pou>__<T>
	rename := func(typ string) string {
		for _, g := range b.generics {
			if g.Name == typ {
				return "__" + b.name + "__" + g.Name
			}
		}
		return typ
	}
	for _, g := range b.generics {
		ix.idx.RegisterType(&types.DataType{
			Name:   rename(g.Name),
			Info:   &types.Generic{Nature: g.Nature},
			Nature: g.Nature,
		})
	}

	p := &syntax.Pou{
		Name:    syntax.NewName(b.name, syntax.NoPos),
		Kind:    syntax.Function,
		Linkage: syntax.BuiltIn,
		Generic: true,
	}
	for _, prm := range b.params {
		v := &syntax.Variable{
			Name: syntax.NewName(prm.name, syntax.NoPos),
			Type: &syntax.TypeRef{Name: rename(prm.typ)},
		}
		p.VarBlocks = append(p.VarBlocks, &syntax.VarBlock{Kind: prm.block, Vars: []*syntax.Variable{v}})
	}

	ret := b.ret
	if inner, ok := strings.CutPrefix(ret, "REF_TO "); ok {
		ret = "__" + b.name + "_return"
		ix.idx.RegisterType(&types.DataType{
			Name:   ret,
			Info:   &types.Pointer{Inner: rename(inner)},
			Nature: types.Any,
		})
	}
	p.ReturnType = &syntax.TypeRef{Name: rename(ret)}

	entry := ix.pou(p, false)
	entry.Generated = true
	entry.Generics = b.generics

	if b.variadic != nil {
		entry.Variadic = true
		va := *b.variadic
		va.TypeName = rename(va.TypeName)
		ix.idx.RegisterMember(b.name, &index.VariableEntry{
			Name:          "args",
			QualifiedName: b.name + ".args",
			Argument:      index.ByVal(index.Input),
			TypeName:      va.TypeName,
			Location:      uint32(len(b.params)) + 1,
			Linkage:       syntax.BuiltIn,
			Varargs:       &va,
		})
	}
}
