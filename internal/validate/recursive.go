package validate

import (
	"strings"

	"github.com/you-not-fish/stc/internal/diag"
	"github.com/you-not-fish/stc/internal/syntax"
	"github.com/you-not-fish/stc/internal/types"
)

// recursive reports structs and function blocks that contain themselves,
// directly or through other structs, function blocks or arrays of them.
// Pointers do not contain their target.
func (v *validator) recursive() {
	var nodes []*types.DataType
	for _, t := range v.idx.Types().Values() {
		if s, ok := t.Info.(*types.Struct); ok && !s.FromPou {
			nodes = append(nodes, t)
		}
	}
	for _, t := range v.idx.PouTypes().Values() {
		if s, ok := t.Info.(*types.Struct); ok && s.PouKind == syntax.FunctionBlock {
			nodes = append(nodes, t)
		}
	}

	visited := make(map[*types.DataType]bool)
	for _, n := range nodes {
		if !visited[n] {
			v.dfs(n, nil, visited)
		}
	}
}

func (v *validator) dfs(n *types.DataType, path []*types.DataType, visited map[*types.DataType]bool) {
	visited[n] = true
	path = append(path, n)

	seen := make(map[*types.DataType]bool)
	for _, f := range n.Info.(*types.Struct).Fields {
		m := v.memberType(f.TypeName)
		if m == nil || seen[m] {
			continue
		}
		seen[m] = true
		if _, ok := m.Info.(*types.Struct); !ok {
			continue
		}
		if i := indexOf(path, m); i >= 0 {
			v.reportCycle(append(path[i:len(path):len(path)], m))
		} else if !visited[m] {
			v.dfs(m, path, visited)
		}
	}
}

// memberType returns the type a member of type name embeds: the element
// type of arrays, the type itself otherwise.
func (v *validator) memberType(name string) *types.DataType {
	t := v.idx.FindEffectiveType(name)
	for i := 0; t != nil && i < 32; i++ {
		a, ok := t.Info.(*types.Array)
		if !ok {
			return t
		}
		t = v.idx.FindEffectiveType(a.Inner)
	}
	return t
}

// reportCycle reports cycle, whose last element repeats the first.
func (v *validator) reportCycle(cycle []*types.DataType) {
	names := make([]string, len(cycle))
	for i, t := range cycle {
		names[i] = t.Name
	}
	nodes := cycle[:len(cycle)-1]
	d := diag.Errorf(diag.CodeRecursive, syntax.MakeSpan(nodes[0].Pos, nodes[0].Pos),
		"Recursive data structure `%s` has infinite size", strings.Join(names, " -> "))
	if len(nodes) > 1 {
		spans := make([]syntax.Span, len(nodes))
		for i, t := range nodes {
			spans[i] = syntax.MakeSpan(t.Pos, t.Pos)
		}
		d = d.WithSecondary(spans...)
	}
	v.report(d)
}

func indexOf(path []*types.DataType, t *types.DataType) int {
	for i, p := range path {
		if p == t {
			return i
		}
	}
	return -1
}
