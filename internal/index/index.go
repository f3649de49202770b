// Package index implements the symbol table of a Structured Text project:
// the globals, POUs, members, implementations, interfaces and types of all
// compilation units, addressed case-insensitively.
package index

import (
	"strings"

	"github.com/you-not-fish/stc/internal/syntax"
	"github.com/you-not-fish/stc/internal/types"
)

// Index is the symbol table. It is built per unit by the indexer and then
// merged with Import; after merging it is only read.
type Index struct {
	globals       SymbolMap[*VariableEntry]
	initializers  SymbolMap[*VariableEntry]
	enumGlobals   SymbolMap[*VariableEntry] // element name -> entry
	enumQualified SymbolMap[*VariableEntry] // Enum.element -> entry

	members    map[string]*SymbolMap[*VariableEntry]
	containers []string // member containers in insertion order

	pous            SymbolMap[*PouEntry]
	implementations map[string]*ImplementationEntry
	implOrder       []string
	interfaces      SymbolMap[*InterfaceEntry]

	types    SymbolMap[*types.DataType]
	pouTypes SymbolMap[*types.DataType]
	void     *types.DataType
}

// New returns an empty index.
func New() *Index {
	return &Index{
		members:         make(map[string]*SymbolMap[*VariableEntry]),
		implementations: make(map[string]*ImplementationEntry),
		void:            types.VoidType(),
	}
}

// Import moves all entries of other into idx. Compiler generated types
// and POUs that idx already knows are skipped.
func (idx *Index) Import(other *Index) {
	idx.globals.Extend(&other.globals)

	for _, e := range other.enumQualified.Entries() {
		for _, v := range e.Values {
			idx.enumGlobals.Insert(v.Name, v)
		}
		idx.enumQualified.InsertMany(e.Key, e.Values...)
	}

	idx.initializers.Extend(&other.initializers)

	for _, c := range other.containers {
		m := &SymbolMap[*VariableEntry]{}
		m.Extend(other.members[c])
		if _, ok := idx.members[c]; !ok {
			idx.containers = append(idx.containers, c)
		}
		idx.members[c] = m
	}

	for _, el := range other.types.Elements() {
		if !el.Value.IsInternal() || idx.FindEffectiveType(el.Key) == nil {
			idx.types.Insert(el.Key, el.Value)
		}
	}
	idx.pouTypes.Extend(&other.pouTypes)

	for _, k := range other.implOrder {
		idx.RegisterImplementation(other.implementations[k])
	}
	idx.interfaces.Extend(&other.interfaces)

	for _, el := range other.pous.Elements() {
		if !el.Value.Generated || !idx.pous.ContainsKey(el.Key) {
			idx.pous.Insert(el.Key, el.Value)
		}
	}
}

// VoidType returns the type of expressions without a value.
func (idx *Index) VoidType() *types.DataType { return idx.void }

// Globals returns the global variables.
func (idx *Index) Globals() *SymbolMap[*VariableEntry] { return &idx.globals }

// Initializers returns the initializer globals of types and POUs.
func (idx *Index) Initializers() *SymbolMap[*VariableEntry] { return &idx.initializers }

// QualifiedEnumElements returns all enum elements keyed Enum.element.
func (idx *Index) QualifiedEnumElements() *SymbolMap[*VariableEntry] { return &idx.enumQualified }

// Pous returns all POUs.
func (idx *Index) Pous() *SymbolMap[*PouEntry] { return &idx.pous }

// Interfaces returns all interfaces.
func (idx *Index) Interfaces() *SymbolMap[*InterfaceEntry] { return &idx.interfaces }

// Types returns the declared and generated data types.
func (idx *Index) Types() *SymbolMap[*types.DataType] { return &idx.types }

// PouTypes returns the instance struct types of the POUs.
func (idx *Index) PouTypes() *SymbolMap[*types.DataType] { return &idx.pouTypes }

// Containers returns the names of all member containers in insertion order.
func (idx *Index) Containers() []string {
	return append([]string(nil), idx.containers...)
}

// Members returns the members of container, or nil if it has none.
func (idx *Index) Members(container string) *SymbolMap[*VariableEntry] {
	return idx.members[foldKey(container)]
}

// Implementations returns the implementations in registration order.
func (idx *Index) Implementations() []*ImplementationEntry {
	out := make([]*ImplementationEntry, len(idx.implOrder))
	for i, k := range idx.implOrder {
		out[i] = idx.implementations[k]
	}
	return out
}

// ---------------------------------------------------------------------------
// Registration

// RegisterGlobalVariable adds a global variable.
func (idx *Index) RegisterGlobalVariable(v *VariableEntry) {
	idx.globals.Insert(v.Name, v)
}

// RegisterGlobalInitializer adds the initializer global of a type or POU.
func (idx *Index) RegisterGlobalInitializer(v *VariableEntry) {
	idx.initializers.Insert(v.Name, v)
}

// RegisterMember adds a member to container.
func (idx *Index) RegisterMember(container string, v *VariableEntry) {
	k := foldKey(container)
	m, ok := idx.members[k]
	if !ok {
		m = &SymbolMap[*VariableEntry]{}
		idx.members[k] = m
		idx.containers = append(idx.containers, k)
	}
	m.Insert(v.Name, v)
}

// RegisterEnumElement adds element of enum both qualified and unqualified.
func (idx *Index) RegisterEnumElement(v *VariableEntry) {
	idx.enumGlobals.Insert(v.Name, v)
	idx.enumQualified.Insert(v.QualifiedName, v)
}

// RegisterType adds a data type.
func (idx *Index) RegisterType(t *types.DataType) {
	idx.types.Insert(t.Name, t)
}

// RegisterPouType adds the instance struct of a POU.
func (idx *Index) RegisterPouType(t *types.DataType) {
	idx.pouTypes.Insert(t.Name, t)
}

// RegisterPou adds a POU.
func (idx *Index) RegisterPou(p *PouEntry) {
	idx.pous.Insert(p.Name, p)
}

// RegisterImplementation adds or replaces the implementation with the same
// call name.
func (idx *Index) RegisterImplementation(impl *ImplementationEntry) {
	k := foldKey(impl.CallName)
	if _, ok := idx.implementations[k]; !ok {
		idx.implOrder = append(idx.implOrder, k)
	}
	idx.implementations[k] = impl
}

// RegisterInterface adds an interface.
func (idx *Index) RegisterInterface(i *InterfaceEntry) {
	idx.interfaces.Insert(i.Name, i)
}

// ---------------------------------------------------------------------------
// Variables

// FindGlobalVariable returns the global or unqualified enum element name.
func (idx *Index) FindGlobalVariable(name string) *VariableEntry {
	if v, ok := idx.globals.Get(name); ok {
		return v
	}
	v, _ := idx.enumGlobals.Get(name)
	return v
}

// FindGlobalInitializer returns the initializer global called name.
func (idx *Index) FindGlobalInitializer(name string) *VariableEntry {
	v, _ := idx.initializers.Get(name)
	return v
}

// FindMember returns member name of container. If container is qualified
// (fb.action) and has no such member, the qualifier is searched instead.
func (idx *Index) FindMember(container, name string) *VariableEntry {
	if m := idx.members[foldKey(container)]; m != nil {
		if v, ok := m.Get(name); ok {
			return v
		}
	}
	if i := strings.LastIndexByte(container, '.'); i >= 0 {
		return idx.FindMember(container[:i], name)
	}
	return nil
}

// FindFullyQualifiedVariable resolves a dotted name such as "prg.x" or
// "gInst.inner.y". The first segment names a global or a POU.
func (idx *Index) FindFullyQualifiedVariable(name string) *VariableEntry {
	return idx.FindVariable("", strings.Split(name, "."))
}

// FindVariable resolves segments starting in context. The first segment
// falls back to the globals; every following segment is a member of the
// type of the previous one.
func (idx *Index) FindVariable(context string, segments []string) *VariableEntry {
	if len(segments) == 0 {
		return nil
	}
	var cur *VariableEntry
	if context != "" {
		cur = idx.FindMember(context, segments[0])
	}
	if cur == nil {
		cur = idx.FindGlobalVariable(segments[0])
	}
	prev := segments[0]
	for _, seg := range segments[1:] {
		if cur != nil {
			cur = idx.FindMember(cur.TypeName, seg)
		} else {
			// the previous segment may name a POU rather than a variable
			cur = idx.FindMember(prev, seg)
		}
		prev = seg
	}
	return cur
}

// FindEnumElement returns element of the enum type enum.
func (idx *Index) FindEnumElement(enum, element string) *VariableEntry {
	return idx.FindQualifiedEnumElement(enum + "." + element)
}

// FindQualifiedEnumElement returns the element named "Enum.element".
func (idx *Index) FindQualifiedEnumElement(name string) *VariableEntry {
	v, _ := idx.enumQualified.Get(name)
	return v
}

// ContainerMembers returns all members of container in declaration order.
func (idx *Index) ContainerMembers(container string) []*VariableEntry {
	if m := idx.members[foldKey(container)]; m != nil {
		return m.Values()
	}
	return nil
}

// DeclaredParameters returns the non-variadic parameters of container.
func (idx *Index) DeclaredParameters(container string) []*VariableEntry {
	var out []*VariableEntry
	for _, v := range idx.ContainerMembers(container) {
		if v.IsParameter() && !v.IsVariadic() {
			out = append(out, v)
		}
	}
	return out
}

// DeclaredParameter returns the non-variadic parameter at location i.
func (idx *Index) DeclaredParameter(container string, i uint32) *VariableEntry {
	for _, v := range idx.DeclaredParameters(container) {
		if v.Location == i {
			return v
		}
	}
	return nil
}

// VariadicMember returns the variadic parameter of container, if any.
func (idx *Index) VariadicMember(container string) *VariableEntry {
	for _, v := range idx.ContainerMembers(container) {
		if v.IsVariadic() {
			return v
		}
	}
	return nil
}

// FindInputParameter returns the input at location i of pou.
func (idx *Index) FindInputParameter(pou string, i uint32) *VariableEntry {
	for _, v := range idx.ContainerMembers(pou) {
		if v.VariableType() == Input && v.Location == i {
			return v
		}
	}
	return nil
}

// FindReturnVariable returns the result member of a function or method.
func (idx *Index) FindReturnVariable(pou string) *VariableEntry {
	for _, v := range idx.ContainerMembers(pou) {
		if v.IsReturn() {
			return v
		}
	}
	return nil
}

// FindReturnType returns the declared type of pou's result.
func (idx *Index) FindReturnType(pou string) *types.DataType {
	if v := idx.FindReturnVariable(pou); v != nil {
		return idx.FindType(v.TypeName)
	}
	return nil
}

// ---------------------------------------------------------------------------
// POUs

// FindPou returns the first POU called name.
func (idx *Index) FindPou(name string) *PouEntry {
	p, _ := idx.pous.Get(name)
	return p
}

// maxInheritance bounds the EXTENDS chains followed by SuperChain.
const maxInheritance = 32

// SuperChain returns pou followed by the POUs it extends, nearest first.
// A cycle ends the chain.
func (idx *Index) SuperChain(pou string) []string {
	chain := []string{pou}
	seen := map[string]bool{foldKey(pou): true}
	for i := 0; i < maxInheritance; i++ {
		p := idx.FindPou(chain[len(chain)-1])
		if p == nil || p.Super == "" || seen[foldKey(p.Super)] {
			break
		}
		seen[foldKey(p.Super)] = true
		chain = append(chain, p.Super)
	}
	return chain
}

// FindImplementationByName returns the implementation with call name name.
func (idx *Index) FindImplementationByName(name string) *ImplementationEntry {
	return idx.implementations[foldKey(name)]
}

// FindPouImplementation returns the implementation of pou.
func (idx *Index) FindPouImplementation(pou string) *ImplementationEntry {
	p := idx.FindPou(pou)
	if p == nil {
		return nil
	}
	return idx.FindImplementationByName(p.Name)
}

// FindInterface returns the interface called name.
func (idx *Index) FindInterface(name string) *InterfaceEntry {
	i, _ := idx.interfaces.Get(name)
	return i
}

// ProgramInstances returns the instance variables of all programs.
func (idx *Index) ProgramInstances() []*VariableEntry {
	var out []*VariableEntry
	for _, p := range idx.pous.Values() {
		if p.Kind == syntax.Program && p.InstanceVariable != nil {
			out = append(out, p.InstanceVariable)
		}
	}
	return out
}

// FindCallableInstanceVariable resolves a variable whose type has an
// implementation, e.g. a function block instance.
func (idx *Index) FindCallableInstanceVariable(context string, segments []string) *VariableEntry {
	v := idx.FindVariable(context, segments)
	if v == nil || idx.FindImplementationByName(v.TypeName) == nil {
		return nil
	}
	return v
}

// ---------------------------------------------------------------------------
// Types

// FindType returns the data type or POU type called name.
func (idx *Index) FindType(name string) *types.DataType {
	if t, ok := idx.types.Get(name); ok {
		return t
	}
	return idx.FindPouType(name)
}

// FindPouType returns the instance struct of the POU called name.
func (idx *Index) FindPouType(name string) *types.DataType {
	t, _ := idx.pouTypes.Get(name)
	return t
}

// FindEffectiveType returns the type behind all aliases of name, or nil if
// name is unknown or the aliases form a cycle.
func (idx *Index) FindEffectiveType(name string) *types.DataType {
	seen := make(map[string]bool)
	for {
		t := idx.FindType(name)
		if t == nil {
			return nil
		}
		a, ok := t.Info.(*types.Alias)
		if !ok {
			return t
		}
		k := foldKey(t.Name)
		if seen[k] {
			return nil
		}
		seen[k] = true
		name = a.Referenced
	}
}

// EffectiveTypeOrVoid is FindEffectiveType falling back to VOID.
func (idx *Index) EffectiveTypeOrVoid(name string) *types.DataType {
	if t := idx.FindEffectiveType(name); t != nil {
		return t
	}
	return idx.void
}

// IntrinsicType returns the elementary type behind aliases, subranges and
// enums, or VOID if name is unknown.
func (idx *Index) IntrinsicType(name string) *types.DataType {
	t := idx.EffectiveTypeOrVoid(name)
	for i := 0; i < maxTypeDepth; i++ {
		var next string
		switch info := t.Info.(type) {
		case *types.SubRange:
			next = info.Referenced
		case *types.Enum:
			next = info.Referenced
		default:
			return t
		}
		nt := idx.FindEffectiveType(next)
		if nt == nil {
			return t
		}
		t = nt
	}
	return t
}

// InitialValueForType returns the declared initializer of the type called
// name, following aliases and subranges that declare none.
func (idx *Index) InitialValueForType(name string) syntax.Expr {
	t := idx.FindType(name)
	for i := 0; t != nil && i < maxTypeDepth; i++ {
		if t.InitialValue != nil {
			return t.InitialValue
		}
		switch info := t.Info.(type) {
		case *types.Alias:
			t = idx.FindType(info.Referenced)
		case *types.SubRange:
			t = idx.FindType(info.Referenced)
		default:
			return nil
		}
	}
	return nil
}

const maxTypeDepth = 64
