package types

import (
	"strings"

	"github.com/you-not-fish/stc/internal/syntax"
)

// universe holds the builtin types in declaration order.
var universe []*DataType

// builtinNames is the upper-cased set of builtin type names.
var builtinNames map[string]bool

func init() {
	for _, i := range integers {
		universe = append(universe, &DataType{
			Name:   i.name,
			Info:   &Integer{Signed: i.signed, Size: i.size, Semantic: i.semantic},
			Nature: i.nature,
		})
	}
	universe = append(universe,
		&DataType{Name: REAL, Info: &Float{Size: 32}, Nature: Real},
		&DataType{Name: LREAL, Info: &Float{Size: 64}, Nature: Real},
		&DataType{Name: STRING, Info: NewStringInfo(DefaultStringLen, UTF8), Nature: StringNature},
		&DataType{Name: WSTRING, Info: NewStringInfo(DefaultStringLen, UTF16), Nature: StringNature},
	)
	for _, s := range shortForms {
		nature := Date
		if s.target == TIME {
			nature = Duration
		}
		universe = append(universe, &DataType{Name: s.name, Info: &Alias{Referenced: s.target}, Nature: nature})
	}
	universe = append(universe, &DataType{Name: VOID, Info: &Void{}, Nature: Any})

	builtinNames = make(map[string]bool, len(universe))
	for _, t := range universe {
		builtinNames[t.Name] = true
	}
}

// Builtins returns fresh copies of the builtin types. Callers may attach
// them to an index without sharing state.
func Builtins() []*DataType {
	out := make([]*DataType, len(universe))
	for i, t := range universe {
		c := *t
		c.Pos = syntax.NoPos
		c.Builtin = true
		out[i] = &c
	}
	return out
}

// IsBuiltin reports whether name, in any case, is a builtin type.
func IsBuiltin(name string) bool {
	return builtinNames[strings.ToUpper(name)]
}

// VoidType returns a VOID type.
func VoidType() *DataType {
	return &DataType{Name: VOID, Info: &Void{}, Nature: Any}
}
