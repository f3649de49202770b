package index

import (
	"fmt"
	"strings"

	"github.com/you-not-fish/stc/internal/types"
)

// PathElement is a member name or the dimensions of an array access.
type PathElement struct {
	Name string
	Dims []types.Dim // set for array accesses
}

// Path names an instance relative to the globals, e.g. fbs[0..2].input.
type Path []PathElement

func (p Path) String() string {
	var b strings.Builder
	for i, el := range p {
		if el.Dims != nil {
			dims := make([]string, len(el.Dims))
			for j, d := range el.Dims {
				dims[j] = d.String()
			}
			b.WriteString("[" + strings.Join(dims, ",") + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(el.Name)
	}
	return b.String()
}

// Expand returns one name per element of every array on the path, e.g.
// fbs[0].input, fbs[1].input. A path through an array whose bounds are not
// constant expands to nothing.
func (p Path) Expand() []string {
	names := []string{""}
	for _, el := range p {
		if el.Dims == nil {
			for i := range names {
				if names[i] != "" {
					names[i] += "."
				}
				names[i] += el.Name
			}
			continue
		}
		indices, ok := arrayIndices(el.Dims)
		if !ok {
			return nil
		}
		next := make([]string, 0, len(names)*len(indices))
		for _, n := range names {
			for _, idx := range indices {
				next = append(next, n+"["+idx+"]")
			}
		}
		names = next
	}
	return names
}

// arrayIndices lists "i" or "i,j,..." for every element, the first
// dimension varying slowest.
func arrayIndices(dims []types.Dim) ([]string, bool) {
	out := []string{""}
	for _, d := range dims {
		if _, ok := d.Len(); !ok {
			return nil, false
		}
		next := make([]string, 0, len(out))
		for _, prefix := range out {
			for i := d.Start; i <= d.End; i++ {
				if prefix == "" {
					next = append(next, fmt.Sprint(i))
				} else {
					next = append(next, fmt.Sprintf("%s,%d", prefix, i))
				}
			}
		}
		out = next
	}
	return out, true
}

// Instance is a variable reachable from a global or a program instance.
type Instance struct {
	Path     Path
	Variable *VariableEntry
}

// Instances returns every global, every program instance and, recursively,
// the members of their struct and POU types. Arrays of structured types
// contribute the members of their element type.
func (idx *Index) Instances() []Instance {
	return idx.FilterInstances(func(*VariableEntry) bool { return true })
}

// FilterInstances is Instances, descending only into the variables for
// which descend returns true.
func (idx *Index) FilterInstances(descend func(*VariableEntry) bool) []Instance {
	w := &instanceWalker{idx: idx, descend: descend, active: make(map[string]bool)}
	roots := append(idx.globals.Values(), idx.ProgramInstances()...)
	for _, v := range roots {
		w.visit(nil, v)
	}
	return w.out
}

type instanceWalker struct {
	idx     *Index
	descend func(*VariableEntry) bool
	active  map[string]bool // containers on the current path
	out     []Instance
}

func (w *instanceWalker) visit(prefix Path, v *VariableEntry) {
	path := append(append(Path(nil), prefix...), PathElement{Name: lastSegment(v.QualifiedName)})
	w.out = append(w.out, Instance{Path: path, Variable: v})
	if !w.descend(v) {
		return
	}

	container := v.TypeName
	for i := 0; i < maxTypeDepth; i++ {
		t := w.idx.FindEffectiveType(container)
		if t == nil {
			break
		}
		arr, ok := t.Info.(*types.Array)
		if !ok {
			break
		}
		path = append(path, PathElement{Dims: arr.Dims})
		container = arr.Inner
	}

	k := foldKey(container)
	if w.active[k] {
		return
	}
	w.active[k] = true
	for _, m := range w.idx.ContainerMembers(container) {
		w.visit(path, m)
	}
	delete(w.active, k)
}

func lastSegment(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
