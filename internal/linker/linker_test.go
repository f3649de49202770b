package linker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/you-not-fish/stc/internal/diag"
	"github.com/you-not-fish/stc/internal/index"
	"github.com/you-not-fish/stc/internal/indexer"
	"github.com/you-not-fish/stc/internal/syntax"
)

// readAndLink decodes the units, indexes and merges them with the builtins
// and links them. It returns the annotations and the reported diagnostics.
func readAndLink(t *testing.T, srcs ...string) (*index.Index, *Info, []string) {
	t.Helper()
	idx := index.New()
	idx.Import(indexer.Builtins())

	var units []*syntax.CompilationUnit
	for i, src := range srcs {
		u, err := syntax.ReadUnit(fmt.Sprintf("unit%d.st", i), strings.NewReader(src))
		if err != nil {
			t.Fatalf("ReadUnit error: %v", err)
		}
		units = append(units, u)
		idx.Import(indexer.Index(u))
	}
	indexer.ResolveConstants(idx)

	var errs []string
	conf := &Config{Error: func(d *diag.Diagnostic) {
		errs = append(errs, d.Error())
	}}
	info, err := Link(idx, units, conf)
	if (err != nil) != (len(errs) > 0) {
		t.Errorf("Link error = %v with %d diagnostics", err, len(errs))
	}
	return idx, info, errs
}

// expectNoErrors checks that the units link without diagnostics.
func expectNoErrors(t *testing.T, srcs ...string) *Info {
	t.Helper()
	_, info, errs := readAndLink(t, srcs...)
	if len(errs) > 0 {
		t.Errorf("unexpected errors:\n%s", strings.Join(errs, "\n"))
	}
	return info
}

// expectErrors checks that linking produces the expected error substrings.
func expectErrors(t *testing.T, src string, expectedMsgs ...string) {
	t.Helper()
	_, _, errs := readAndLink(t, src)
	if len(errs) == 0 {
		t.Errorf("expected errors containing %v, got none", expectedMsgs)
		return
	}
	errText := strings.Join(errs, "\n")
	for _, msg := range expectedMsgs {
		if !strings.Contains(errText, msg) {
			t.Errorf("expected error containing %q, got:\n%s", msg, errText)
		}
	}
}

const library = `{
  "globals": [{"kind": "Global", "vars": [{"name": "gCounter", "type": "DINT"}]}],
  "types": [
    {"type": {"kind": "enum", "name": "Color", "elements": ["red", "green"]}},
    {"type": {"kind": "struct", "name": "Point", "vars": [{"name": "x", "type": "REAL"}, {"name": "y", "type": "REAL"}]}}
  ],
  "pous": [
    {"kind": "FunctionBlock", "name": "Motor", "varBlocks": [
      {"kind": "Input", "vars": [{"name": "speed", "type": "INT"}]},
      {"kind": "Output", "vars": [{"name": "running", "type": "BOOL"}]},
      {"kind": "Local", "vars": [{"name": "secret", "type": "INT"}]}
    ]},
    {"kind": "Action", "name": "stop", "parent": "Motor"},
    {"kind": "Function", "name": "Twice", "returnType": "INT", "varBlocks": [
      {"kind": "Input", "vars": [{"name": "v", "type": "INT"}]},
      {"kind": "InOut", "vars": [{"name": "acc", "type": "Point"}]}
    ]}
  ],
  "implementations": [
    {"kind": "FunctionBlock", "name": "Motor", "body": [
      {"kind": "assign", "lhs": "running", "rhs": {"kind": "op", "op": ">", "x": "speed", "y": 0}},
      {"kind": "assign", "lhs": "secret", "rhs": "speed"}
    ]},
    {"kind": "Action", "name": "Motor.stop", "typeName": "Motor", "body": [
      {"kind": "assign", "lhs": "speed", "rhs": 0},
      {"kind": "assign", "lhs": "secret", "rhs": 0}
    ]},
    {"kind": "Function", "name": "Twice", "body": [
      {"kind": "assign", "lhs": {"kind": "member", "x": "acc", "sel": "x"}, "rhs": 1.5},
      {"kind": "assign", "lhs": "Twice", "rhs": {"kind": "op", "op": "*", "x": "v", "y": 2}}
    ]}
  ]
}`

const application = `{
  "pous": [
    {"kind": "Program", "name": "Main", "varBlocks": [
      {"kind": "Local", "vars": [
        {"name": "m", "type": "Motor"},
        {"name": "c", "type": "Color", "init": {"kind": "cast", "type": "Color", "x": "green"}},
        {"name": "p", "type": "Point"},
        {"name": "r", "type": "INT"},
        {"name": "motors", "type": {"kind": "array", "dims": [{"lower": 0, "upper": 1}], "of": "Motor"}}
      ]}
    ]}
  ],
  "implementations": [
    {"kind": "Program", "name": "Main", "body": [
      {"kind": "expr", "x": {"kind": "call", "fun": "m", "args": [{"kind": "namedArg", "name": "speed", "value": 10}]}},
      {"kind": "expr", "x": {"kind": "call", "fun": {"kind": "member", "x": "m", "sel": "stop"}}},
      {"kind": "assign", "lhs": "r", "rhs": {"kind": "call", "fun": "Twice", "args": [{"kind": "namedArg", "name": "v", "value": "r"}, {"kind": "namedArg", "name": "acc", "value": "p"}]}},
      {"kind": "if", "cond": {"kind": "member", "x": "m", "sel": "running"}, "then": [
        {"kind": "assign", "lhs": "c", "rhs": {"kind": "member", "x": "Color", "sel": "red"}}
      ]},
      {"kind": "assign", "lhs": {"kind": "member", "x": {"kind": "index", "x": "motors", "index": [0]}, "sel": "speed"}, "rhs": "gCounter"},
      {"kind": "assign", "lhs": "gCounter", "rhs": {"kind": "call", "fun": "ADR", "args": ["gCounter"]}},
      {"kind": "case", "selector": "c", "branches": [{"labels": ["red"], "body": [{"kind": "exit"}]}]}
    ]}
  ]
}`

func TestLinkAcrossUnits(t *testing.T) {
	info := expectNoErrors(t, library, application)

	if got := len(info.UsesOf("Motor.speed")); got < 3 {
		t.Errorf("Motor.speed used %d times, want at least 3", got)
	}
	if got := len(info.UsesOf("Twice")); got != 1 {
		t.Errorf("Twice used %d times, want 1", got)
	}
	if got := len(info.UsesOf("Color.red")); got != 2 {
		t.Errorf("Color.red used %d times, want 2", got)
	}
}

func TestAnnotations(t *testing.T) {
	_, info, errs := readAndLink(t, library, application)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors:\n%s", strings.Join(errs, "\n"))
	}

	byName := make(map[string]Annotation)
	for e, a := range info.Annotations {
		switch e := e.(type) {
		case *syntax.CallExpr:
			if fn, ok := e.Fun.(*syntax.Name); ok {
				byName["call "+fn.Value] = a
			}
		case *syntax.Name:
			byName[e.Value] = a
		}
	}

	tests := []struct {
		key  string
		want Annotation
	}{
		{"call Twice", Annotation{Kind: Call, Name: "Twice", Type: "INT"}},
		{"call m", Annotation{Kind: Call, Name: "Motor", Type: "VOID"}},
		{"gCounter", Annotation{Kind: Variable, Name: "gCounter", Type: "DINT", Argument: index.ByVal(index.Global)}},
		{"acc", Annotation{Kind: Variable, Name: "Twice.acc", Type: "Point", Argument: index.ByRef(index.InOut), AutoDeref: true}},
		{"Color", Annotation{Kind: Type, Name: "Color", Type: "Color"}},
		{"v", Annotation{Kind: Variable, Name: "Twice.v", Type: "INT", Argument: index.ByVal(index.Input)}},
	}
	for _, tt := range tests {
		got, ok := byName[tt.key]
		if !ok {
			t.Errorf("%s not annotated", tt.key)
			continue
		}
		if got != tt.want {
			t.Errorf("%s annotated %+v, want %+v", tt.key, got, tt.want)
		}
	}
}

func TestUnresolvedReferences(t *testing.T) {
	expectErrors(t, `{
  "pous": [{"kind": "Program", "name": "P", "varBlocks": [{"kind": "Local", "vars": [{"name": "x", "type": "INT"}]}]}],
  "implementations": [{"kind": "Program", "name": "P", "body": [
    {"kind": "assign", "pos": "3:5", "lhs": "x", "rhs": "missing"},
    {"kind": "expr", "x": {"kind": "call", "fun": "nothing"}},
    {"kind": "assign", "lhs": {"kind": "member", "x": "x", "sel": "y"}, "rhs": 1}
  ]}]
}`,
		"unit0.st:3:5: error[E048]: Could not resolve reference to missing",
		"Could not resolve reference to nothing",
		"Could not resolve reference to y",
	)
}

func TestMemberInitializers(t *testing.T) {
	expectErrors(t, `{
  "types": [
    {"type": {"kind": "struct", "name": "S", "vars": [{"name": "a", "type": "INT", "init": "nowhereA", "pos": "3:5"}]}}
  ],
  "pous": [{"kind": "Program", "name": "P", "varBlocks": [
    {"kind": "Local", "vars": [{"name": "x", "type": "INT", "init": "nowhereB", "pos": "6:7"}]}
  ]}]
}`,
		"unit0.st:3:5: error[E048]: Could not resolve reference to nowhereA",
		"unit0.st:6:7: error[E048]: Could not resolve reference to nowhereB",
	)

	info := expectNoErrors(t, library, `{
  "globals": [{"kind": "Global", "constant": true, "vars": [{"name": "LIMIT", "type": "INT", "init": 5}]}],
  "types": [
    {"type": {"kind": "struct", "name": "Range", "vars": [{"name": "hi", "type": "INT", "init": "LIMIT"}]}}
  ],
  "pous": [{"kind": "Program", "name": "Q", "varBlocks": [
    {"kind": "Local", "vars": [
      {"name": "lo", "type": "INT", "init": "LIMIT"},
      {"name": "hi", "type": "INT", "init": {"kind": "op", "op": "+", "x": "lo", "y": 1}}
    ]}
  ]}]
}`)
	if got := len(info.UsesOf("LIMIT")); got != 2 {
		t.Errorf("LIMIT used %d times, want 2", got)
	}
	if got := len(info.UsesOf("Q.lo")); got != 1 {
		t.Errorf("Q.lo used %d times, want 1", got)
	}
}

func TestIndexWithLocal(t *testing.T) {
	info := expectNoErrors(t, `{
  "pous": [{"kind": "Program", "name": "P", "varBlocks": [{"kind": "Local", "vars": [
    {"name": "arr", "type": {"kind": "array", "dims": [{"lower": 0, "upper": 3}], "of": "INT"}},
    {"name": "i", "type": "INT"}
  ]}]}],
  "implementations": [{"kind": "Program", "name": "P", "body": [
    {"kind": "assign", "lhs": {"kind": "index", "x": "arr", "index": ["i"]}, "rhs": 1}
  ]}]
}`)
	if got := len(info.UsesOf("P.i")); got != 1 {
		t.Errorf("P.i used %d times, want 1", got)
	}
}

func TestUnknownTypes(t *testing.T) {
	expectErrors(t, `{
  "globals": [{"kind": "Global", "vars": [{"name": "g", "type": "Nope", "pos": "2:1"}]}],
  "types": [
    {"type": {"kind": "struct", "name": "S", "vars": [{"name": "a", "type": "Missing1"}]}},
    {"type": {"kind": "alias", "name": "A", "target": "Missing2"}},
    {"type": {"kind": "array", "name": "Arr", "dims": [{"lower": 0, "upper": 1}], "of": "Missing3"}}
  ],
  "pous": [{"kind": "Function", "name": "F", "returnType": "Missing4", "varBlocks": [
    {"kind": "InOut", "vars": [{"name": "p", "type": "Missing5"}]}
  ]}]
}`,
		"unit0.st:2:1: error[E052]: Unknown type: Nope",
		"Unknown type: Missing1",
		"Unknown type: Missing2",
		"Unknown type: Missing3",
		"Unknown type: Missing4",
		"Unknown type: Missing5",
	)
}

func TestBaseAndInterfaces(t *testing.T) {
	expectErrors(t, `{
  "interfaces": [{"name": "IOk", "extends": ["IGone"]}],
  "pous": [
    {"kind": "Class", "name": "C", "extends": "Base", "implements": ["IOk", "IMissing"]}
  ]
}`,
		"E048]: Base `Base` does not exist",
		"Interface `IMissing` does not exist",
		"Interface `IGone` does not exist",
	)
}

func TestPrivateAccess(t *testing.T) {
	_, _, errs := readAndLink(t, library, `{
  "pous": [{"kind": "Program", "name": "P", "varBlocks": [{"kind": "Local", "vars": [{"name": "m", "type": "Motor"}, {"name": "i", "type": "INT"}]}]}],
  "implementations": [{"kind": "Program", "name": "P", "body": [
    {"kind": "assign", "lhs": "i", "rhs": {"kind": "member", "x": "m", "sel": "secret"}}
  ]}]
}`)
	if len(errs) != 1 || !strings.Contains(errs[0], "E049]: Illegal access to private member Motor.secret") {
		t.Errorf("errors = %v", errs)
	}

	// the action and the body of Motor access secret without errors
	expectNoErrors(t, library)
}

func TestAmbiguousReference(t *testing.T) {
	dup := `{"pous": [{"kind": "Function", "name": "Dup", "pos": "1:1", "returnType": "INT"}]}`
	user := `{
  "pous": [{"kind": "Program", "name": "P"}],
  "implementations": [{"kind": "Program", "name": "P", "body": [
    {"kind": "expr", "x": {"kind": "call", "pos": "4:3", "fun": "Dup"}}
  ]}]
}`
	_, _, errs := readAndLink(t, dup, dup, user)
	if len(errs) != 1 || !strings.Contains(errs[0], "E004]: Dup: Ambiguous reference.") {
		t.Errorf("errors = %v", errs)
	}
}

func TestInheritance(t *testing.T) {
	expectNoErrors(t, `{
  "pous": [
    {"kind": "FunctionBlock", "name": "Base", "varBlocks": [{"kind": "Local", "vars": [{"name": "hidden", "type": "INT"}]}]},
    {"kind": "Method", "name": "reset", "parent": "Base"},
    {"kind": "FunctionBlock", "name": "Derived", "extends": "Base"}
  ],
  "implementations": [
    {"kind": "FunctionBlock", "name": "Base"},
    {"kind": "Method", "name": "Base.reset", "typeName": "Base"},
    {"kind": "FunctionBlock", "name": "Derived", "body": [
      {"kind": "assign", "lhs": "hidden", "rhs": 1},
      {"kind": "expr", "x": {"kind": "call", "fun": "reset"}}
    ]}
  ]
}`)
}

func TestScopeStack(t *testing.T) {
	_, _, errs := readAndLink(t, library)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	idx := index.New()
	idx.Import(indexer.Builtins())
	u, _ := syntax.ReadUnit("lib.st", strings.NewReader(library))
	idx.Import(indexer.Index(u))

	st := NewScopeStack(idx, RootStrategy())
	if syms := st.Lookup("Point"); len(syms) != 1 || syms[0].Kind != TypeSymbol {
		t.Errorf("Point at the root = %v", syms)
	}
	if syms := st.Lookup("speed"); len(syms) != 0 {
		t.Errorf("speed visible at the root: %v", syms)
	}
	st.Push(Hierarchical(LocalScope{Container: "Motor.stop"}))
	if syms := st.Lookup("speed"); len(syms) != 1 || syms[0].Name() != "Motor.speed" {
		t.Errorf("speed in Motor.stop = %v", syms)
	}
	if syms := st.Lookup("gCounter"); len(syms) != 1 {
		t.Errorf("hierarchical lookup of gCounter = %v", syms)
	}
	st.Push(Strict(LocalScope{Container: "Point"}))
	if syms := st.Lookup("gCounter"); len(syms) != 0 {
		t.Errorf("strict lookup fell back: %v", syms)
	}
	if syms := st.Lookup("x"); len(syms) != 1 || syms[0].Kind != VariableSymbol {
		t.Errorf("x in Point = %v", syms)
	}
	st.Pop()
	if st.Depth() != 2 {
		t.Errorf("Depth() = %d, want 2", st.Depth())
	}

	if got := RootStrategy().String(); got != "Strict(Composite(GlobalVariables, Callable(), POUs, Types))" {
		t.Errorf("RootStrategy() = %s", got)
	}
	if syms := (CallableScope{Qualifier: "Motor"}).Lookup(idx, "STOP"); len(syms) != 1 || syms[0].Pou.Kind != syntax.Action {
		t.Errorf("Callable(Motor).stop = %v", syms)
	}
	if syms := (CallableScope{}).Lookup(idx, "Motor"); len(syms) != 0 {
		t.Errorf("function block found as callable: %v", syms)
	}
	if syms := (EmptyScope{}).Lookup(idx, "Motor"); syms != nil {
		t.Errorf("EmptyScope found %v", syms)
	}
}
