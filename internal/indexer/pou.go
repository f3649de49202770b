package indexer

import (
	"github.com/you-not-fish/stc/internal/index"
	"github.com/you-not-fish/stc/internal/syntax"
	"github.com/you-not-fish/stc/internal/types"
)

// autoPointerPrefix prefixes the generated pointer types of by-reference
// parameters.
const autoPointerPrefix = "__auto_pointer_to_"

// pou indexes the declaration of p: its members, its return variable, its
// instance struct and, depending on the kind, a program instance or an
// initializer. Interface methods are abstract.
func (ix *indexer) pou(p *syntax.Pou, abstract bool) *index.PouEntry {
	name := qualifiedPouName(p)
	span := syntax.SpanOf(p)

	entry := &index.PouEntry{
		Kind:           p.Kind,
		Name:           name,
		InstanceStruct: name,
		Linkage:        p.Linkage,
		Generic:        p.Generic,
		Abstract:       abstract,
		Span:           span,
	}
	switch p.Kind {
	case syntax.Method, syntax.Action:
		entry.Parent = p.Parent
		if p.Kind == syntax.Action && p.Parent != "" {
			entry.InstanceStruct = p.Parent
		}
	}
	if p.Extends != nil {
		entry.Super = p.Extends.Value
	}
	for _, i := range p.Implements {
		entry.Interfaces = append(entry.Interfaces, i.Value)
	}

	var fields []types.Field
	var location uint32
	for _, b := range p.VarBlocks {
		for _, v := range b.Vars {
			m := ix.member(p, name, b, v, location)
			location++
			fields = append(fields, types.Field{Name: m.Name, TypeName: m.TypeName})
		}
	}

	if p.Kind == syntax.Function || p.Kind == syntax.Method {
		ret := ix.typeRef(p.ReturnType, "__"+name+"_return", name)
		entry.ReturnType = ret
		short := lastSegment(name)
		ix.idx.RegisterMember(name, &index.VariableEntry{
			Name:          short,
			QualifiedName: name + "." + short,
			Argument:      index.ByVal(index.Return),
			TypeName:      ret,
			Location:      location,
			Linkage:       p.Linkage,
			Span:          span,
		})
		fields = append(fields, types.Field{Name: short, TypeName: ret})
	}

	if p.Kind != syntax.Action {
		ix.idx.RegisterPouType(&types.DataType{
			Name:   name,
			Info:   &types.Struct{Fields: fields, FromPou: true, PouKind: p.Kind},
			Nature: types.Derived,
			Pos:    p.Pos(),
		})
	}

	switch p.Kind {
	case syntax.Program:
		inst := index.NewGlobal(name+"_instance", name, name, span)
		inst.Linkage = p.Linkage
		entry.InstanceVariable = inst
	case syntax.FunctionBlock, syntax.Class:
		ix.initializer(name, nil, span)
	}

	ix.idx.RegisterPou(entry)
	return entry
}

// member registers variable v of block b as a member of the POU called
// container.
func (ix *indexer) member(p *syntax.Pou, container string, b *syntax.VarBlock, v *syntax.Variable, location uint32) *index.VariableEntry {
	name := v.Name.Value
	arg := argumentType(p.Kind, b)
	typeName := ix.typeRef(v.Type, inlineName(container, name), container)
	if arg.ByRef {
		typeName = ix.autoPointer(typeName)
	}
	m := &index.VariableEntry{
		Name:          name,
		QualifiedName: container + "." + name,
		Init:          v.Init,
		Argument:      arg,
		Constant:      b.Constant,
		TypeName:      typeName,
		Location:      location,
		Linkage:       p.Linkage,
		Binding:       v.Binding,
		Span:          syntax.SpanOf(v),
	}
	ix.idx.RegisterMember(container, m)
	return m
}

// argumentType decides how a member of block b in a POU of kind k is
// passed. In-outs are always references; outputs are references in
// functions and methods; inputs only in a VAR_INPUT {ref} block.
func argumentType(k syntax.PouKind, b *syntax.VarBlock) index.ArgumentType {
	switch b.Kind {
	case syntax.Input:
		if b.ByRef {
			return index.ByRef(index.Input)
		}
		return index.ByVal(index.Input)
	case syntax.Output:
		if k == syntax.Function || k == syntax.Method {
			return index.ByRef(index.Output)
		}
		return index.ByVal(index.Output)
	case syntax.InOut:
		return index.ByRef(index.InOut)
	case syntax.Temp:
		return index.ByVal(index.Temp)
	case syntax.External:
		return index.ByVal(index.External)
	case syntax.Global:
		return index.ByVal(index.Global)
	}
	return index.ByVal(index.Local)
}

// autoPointer registers the auto-dereferencing pointer to target and
// returns its name.
func (ix *indexer) autoPointer(target string) string {
	name := autoPointerPrefix + target
	if ix.idx.FindType(name) == nil {
		ix.idx.RegisterType(&types.DataType{
			Name:   name,
			Info:   &types.Pointer{Inner: target, AutoDeref: true},
			Nature: types.Any,
		})
	}
	return name
}

// initializer registers the constant global holding the initial value of
// instances of the type called name.
func (ix *indexer) initializer(name string, init syntax.Expr, span syntax.Span) {
	g := index.NewGlobal(index.InitializerName(name), index.InitializerName(name), name, span)
	g.Constant = true
	g.Init = init
	ix.idx.RegisterGlobalInitializer(g)
}
