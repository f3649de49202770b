package types

import (
	"strings"
	"testing"
)

// mapLookup resolves names from a fixed set of types, following aliases.
type mapLookup map[string]*DataType

func (m mapLookup) FindEffectiveType(name string) *DataType {
	for i := 0; i < 8; i++ {
		t := m[strings.ToUpper(name)]
		if t == nil {
			return nil
		}
		a, ok := t.Info.(*Alias)
		if !ok {
			return t
		}
		name = a.Referenced
	}
	return nil
}

func testLookup(extra ...*DataType) mapLookup {
	m := mapLookup{}
	for _, t := range append(Builtins(), extra...) {
		m[strings.ToUpper(t.Name)] = t
	}
	return m
}

func TestSizeofBuiltins(t *testing.T) {
	sizes := NewSizes(testLookup())

	tests := []struct {
		name  string
		size  int64
		align int64
	}{
		{BOOL, 1, 1},
		{BYTE, 1, 1},
		{INT, 2, 2},
		{DINT, 4, 4},
		{LINT, 8, 8},
		{TIME, 8, 8},
		{REAL, 4, 4},
		{LREAL, 8, 8},
		{STRING, 81, 1},
		{WSTRING, 162, 2},
		{T, 8, 8},
		{VOID, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt := findBuiltin(t, tt.name)
			if got := sizes.Sizeof(dt); got != tt.size {
				t.Errorf("Sizeof(%s) = %d, want %d", tt.name, got, tt.size)
			}
			if got := sizes.Alignof(dt); got != tt.align {
				t.Errorf("Alignof(%s) = %d, want %d", tt.name, got, tt.align)
			}
		})
	}
}

func TestSizeofDerived(t *testing.T) {
	point := &DataType{Name: "Point", Info: &Struct{Fields: []Field{
		{Name: "flag", TypeName: BOOL},
		{Name: "x", TypeName: DINT},
		{Name: "y", TypeName: INT},
	}}}
	grid := &DataType{Name: "Grid", Info: &Array{Inner: "Point", Dims: []Dim{
		{Start: 0, End: 1, Resolved: true},
		{Start: 1, End: 3, Resolved: true},
	}}}
	color := &DataType{Name: "Color", Info: &Enum{Referenced: INT, Elements: []string{"red"}}}
	ptr := &DataType{Name: "PtrToPoint", Info: &Pointer{Inner: "Point"}}
	unknown := &DataType{Name: "Open", Info: &Array{Inner: INT, Dims: []Dim{{}}}}

	sizes := NewSizes(testLookup(point, grid, color, ptr, unknown))

	// flag at 0, x at 4, y at 8, padded to 12
	if got := sizes.Sizeof(point); got != 12 {
		t.Errorf("Sizeof(Point) = %d, want 12", got)
	}
	if got := sizes.Alignof(point); got != 4 {
		t.Errorf("Alignof(Point) = %d, want 4", got)
	}
	offsets := sizes.Offsets(point)
	if len(offsets) != 3 || offsets[0] != 0 || offsets[1] != 4 || offsets[2] != 8 {
		t.Errorf("Offsets(Point) = %v, want [0 4 8]", offsets)
	}
	if got := sizes.Sizeof(grid); got != 6*12 {
		t.Errorf("Sizeof(Grid) = %d, want %d", got, 6*12)
	}
	if got := sizes.Sizeof(color); got != 2 {
		t.Errorf("Sizeof(Color) = %d, want 2", got)
	}
	if got := sizes.Sizeof(ptr); got != PointerSize {
		t.Errorf("Sizeof(PtrToPoint) = %d, want %d", got, PointerSize)
	}
	if got := sizes.Sizeof(unknown); got != 0 {
		t.Errorf("Sizeof(Open) = %d, want 0", got)
	}
}

func TestSizeofRecursive(t *testing.T) {
	a := &DataType{Name: "A", Info: &Struct{Fields: []Field{{Name: "b", TypeName: "B"}}}}
	b := &DataType{Name: "B", Info: &Struct{Fields: []Field{{Name: "a", TypeName: "A"}, {Name: "n", TypeName: INT}}}}
	sizes := NewSizes(testLookup(a, b))

	// The cycle contributes nothing; only n is counted.
	if got := sizes.Sizeof(a); got != 2 {
		t.Errorf("Sizeof(A) = %d, want 2", got)
	}
}
