// Package indexer builds the symbol table of a single compilation unit.
//
// Index walks a unit once and registers its globals, user types, POUs,
// implementations and interfaces. Units are indexed independently and
// merged with index.Import; names that refer to other units stay
// unresolved until the linker runs on the merged index.
package indexer

import (
	"strings"

	"github.com/you-not-fish/stc/internal/index"
	"github.com/you-not-fish/stc/internal/syntax"
	"github.com/you-not-fish/stc/internal/types"
)

// globalScope is the container name used for inline types of globals.
const globalScope = "global"

// Index returns the index of unit.
func Index(unit *syntax.CompilationUnit) *index.Index {
	ix := &indexer{idx: index.New()}
	ix.unit(unit)
	return ix.idx
}

type indexer struct {
	idx *index.Index
}

func (ix *indexer) unit(u *syntax.CompilationUnit) {
	for _, b := range u.GlobalVars {
		ix.globalBlock(b)
	}
	for _, t := range u.UserTypes {
		ix.userType(t)
	}
	for _, p := range u.Pous {
		ix.pou(p, false)
	}
	for _, impl := range u.Implementations {
		ix.implementation(u, impl)
	}
	for _, i := range u.Interfaces {
		ix.iface(i)
	}
}

func (ix *indexer) globalBlock(b *syntax.VarBlock) {
	linkage := syntax.Internal
	if b.Kind == syntax.External {
		linkage = syntax.ExternalLinkage
	}
	for _, v := range b.Vars {
		name := v.Name.Value
		typeName := ix.typeRef(v.Type, inlineName(globalScope, name), "")
		g := index.NewGlobal(name, name, typeName, syntax.SpanOf(v))
		g.Init = v.Init
		g.Constant = b.Constant
		g.Linkage = linkage
		g.Binding = v.Binding
		ix.idx.RegisterGlobalVariable(g)
	}
}

func (ix *indexer) implementation(u *syntax.CompilationUnit, impl *syntax.Implementation) {
	entry := &index.ImplementationEntry{
		CallName: impl.Name,
		TypeName: impl.TypeName,
		Kind:     impl.Kind,
		Span:     syntax.SpanOf(impl),
	}
	switch impl.Kind {
	case syntax.Method, syntax.Action:
		if i := strings.LastIndexByte(impl.Name, '.'); i >= 0 {
			entry.AssociatedClass = impl.Name[:i]
		} else {
			entry.AssociatedClass = impl.TypeName
		}
	}
	for _, p := range u.Pous {
		if strings.EqualFold(qualifiedPouName(p), impl.Name) {
			entry.Generic = p.Generic
			break
		}
	}
	ix.idx.RegisterImplementation(entry)
}

func (ix *indexer) iface(i *syntax.Interface) {
	entry := &index.InterfaceEntry{
		Name: i.Name.Value,
		Span: syntax.SpanOf(i),
	}
	for _, e := range i.Extends {
		entry.Extends = append(entry.Extends, e.Value)
	}
	for _, m := range i.Methods {
		p := ix.pou(m, true)
		entry.Methods = append(entry.Methods, p.Name)
	}
	ix.idx.RegisterInterface(entry)
}

// typeRef returns the name of the type ref refers to. Inline definitions are
// indexed under inline; scope is the POU whose constants they may use.
// A missing reference is VOID.
func (ix *indexer) typeRef(ref *syntax.TypeRef, inline, scope string) string {
	switch {
	case ref == nil:
		return types.VOID
	case ref.IsInline():
		ix.dataType(ref.Def, inline, nil, scope)
		return inline
	}
	return ref.Name
}

// inlineName names the inline type of member in container.
func inlineName(container, member string) string {
	return "__" + container + "_" + member
}

// nestedName names an inline type nested in the definition of outer.
func nestedName(outer string) string {
	if strings.HasPrefix(outer, "__") {
		return outer + "_"
	}
	return "__" + outer + "_"
}

func qualifiedPouName(p *syntax.Pou) string {
	name := p.Name.Value
	switch p.Kind {
	case syntax.Method, syntax.Action:
		if p.Parent != "" && !hasPrefixFold(name, p.Parent+".") {
			return p.Parent + "." + name
		}
	}
	return name
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func lastSegment(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
