package diag

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultCode is the code of diagnostics created without one.
const DefaultCode = "E001"

// Codes used by the indexer, linker and validation.
const (
	CodeGeneral         = "E001"
	CodeIO              = "E002"
	CodeDuplicate       = "E004"
	CodeClassImpl       = "E017"
	CodeClassBlocks     = "E019"
	CodeMissingAction   = "E022"
	CodeReturnType      = "E026"
	CodeEmptyBlock      = "E028"
	CodeRecursive       = "E029"
	CodeUnresolved      = "E048"
	CodePrivate         = "E049"
	CodeUnknownType     = "E052"
	CodeSubclassing     = "E110"
	CodeInterfaceMember = "E112"
)

const (
	firstCode = 1
	lastCode  = 122
)

// titles holds the one line summary of each code. Codes missing here are
// reserved and described generically.
var titles = map[string]string{
	"E001": "General error",
	"E002": "General IO error",
	"E003": "Parameter error",
	"E004": "Duplicate symbol",
	"E005": "Generic code generation error",
	"E006": "Missing token",
	"E007": "Unexpected token",
	"E008": "Invalid range",
	"E009": "Mismatched parentheses",
	"E010": "Invalid time literal",
	"E011": "Invalid number",
	"E012": "Missing case condition",
	"E013": "Keywords should contain underscores",
	"E014": "Wrong parentheses type",
	"E015": "POINTER TO is not standard, use REF_TO",
	"E016": "Return types cannot have a default value",
	"E017": "Classes cannot contain implementations",
	"E018": "Duplicate label",
	"E019": "Classes cannot contain input, output or in-out variables",
	"E020": "Classes cannot contain a return type",
	"E021": "POUs cannot be extended",
	"E022": "Missing action container",
	"E023": "Statement with no effect",
	"E024": "Invalid pragma location",
	"E025": "Missing return type",
	"E026": "POU type does not support a return type",
	"E027": "Unsupported return type",
	"E028": "Empty variable block",
	"E029": "Recursive data structure",
	"E030": "Missing argument",
	"E031": "Incompatible types in expression",
	"E032": "Invalid parameter count",
	"E033": "Expression must be constant",
	"E034": "Invalid constant",
	"E035": "Invalid initializer",
	"E036": "Cannot assign to a constant",
	"E037": "Invalid assignment",
	"E038": "Missing datatype for sized variadic",
	"E039": "Unknown pragma",
	"E040": "Invalid call",
	"E041": "Cannot derive initializer",
	"E042": "Mutable by-reference input",
	"E043": "Invalid array dimension",
	"E044": "Invalid array initializer",
	"E045": "Wrong number of array dimensions",
	"E046": "Index out of bound",
	"E047": "Implicit conversion",
	"E048": "Could not resolve reference",
	"E049": "Illegal access to private member",
	"E050": "Expression is not assignable",
	"E051": "Invalid cast",
	"E052": "Unknown type",
	"E053": "Literal out of range",
	"E054": "Incompatible literal cast",
	"E055": "Invalid direct access width",
	"E056": "Invalid type for direct access",
	"E057": "Direct access out of range",
	"E058": "Array access out of range",
	"E059": "Invalid type for array access",
	"E060": "Direct access hint",
	"E061": "Invalid cast target",
	"E062": "Invalid type nature for generic argument",
	"E063": "Unknown type nature",
	"E064": "Could not resolve generic type",
	"E065": "Value exceeds type length",
	"E066": "Invalid address-of operation",
	"E067": "Implicit downcast",
	"E068": "Dereferencing requires a pointer",
	"E069": "Index access requires an array",
	"E070": "Address-of requires a value",
	"E071": "Compilation aborted",
	"E072": "Code outside of function context",
	"E073": "Missing compare function",
	"E074": "Cannot generate string literal",
	"E075": "Invalid string literal",
	"E076": "Invalid hardware address",
	"E077": "Invalid variable location",
	"E078": "Duplicate case condition",
	"E079": "Case condition outside of case statement",
	"E080": "Non constant case condition",
	"E081": "Invalid CFC model",
	"E082": "Unconnected CFC sink",
	"E083": "Unconnected CFC source",
	"E084": "Invalid CFC connection",
	"E085": "Cyclic CFC connection",
	"E086": "Missing CFC element",
	"E087": "Unnamed control",
	"E088": "Invalid CFC input",
	"E089": "Invalid call parameters",
	"E090": "Incompatible reference assignment",
	"E091": "Value evaluated at run-time",
	"E092": "Suggested replacement",
	"E093": "Assignment to VOID function",
	"E094": "Expected an integer value",
	"E095": "Action used as a value",
	"E096": "Ambiguous condition",
	"E098": "Invalid reference assignment",
	"E100": "Immutable alias variable",
	"E110": "Invalid subclassing or interface implementation",
	"E111": "Interface member must be a method",
	"E112": "Interface member missing or incompatible",
	"E113": "Interface method signature mismatch",
	"E114": "Interface inheritance conflict",
	"E115": "Property in a stateless POU",
	"E116": "Invalid property variable block",
	"E117": "Property without accessor",
	"E118": "Unexpected parameter",
	"E119": "Invalid use of SUPER",
	"E120": "Invalid use of THIS",
	"E121": "Invalid use of SUPER outside of a subclass",
	"E122": "Invalid pointer arithmetic",
}

// defaultSeverities lists the codes that are not errors by default.
var defaultSeverities = map[string]Severity{
	"E013": Warning,
	"E014": Warning,
	"E015": Warning,
	"E016": Warning,
	"E022": Warning,
	"E023": Warning,
	"E024": Warning,
	"E039": Warning,
	"E042": Warning,
	"E047": Warning,
	"E090": Warning,
	"E060": Info,
	"E067": Info,
}

// Entry describes one error code.
type Entry struct {
	Code        string
	Severity    Severity
	Description string
}

// Registry maps error codes to their severity. It is the default Assessor.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry returns a registry with the default severity of every code.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]Entry, lastCode)}
	for n := firstCode; n <= lastCode; n++ {
		code := fmt.Sprintf("E%03d", n)
		sev, ok := defaultSeverities[code]
		if !ok {
			sev = Error
		}
		title, ok := titles[code]
		if !ok {
			title = "Reserved diagnostic"
		}
		r.entries[code] = Entry{Code: code, Severity: sev, Description: title}
	}
	return r
}

// Lookup returns the entry of code.
func (r *Registry) Lookup(code string) (Entry, bool) {
	e, ok := r.entries[strings.ToUpper(code)]
	return e, ok
}

// Assess implements Assessor. Unknown codes are errors.
func (r *Registry) Assess(d *Diagnostic) Severity {
	if e, ok := r.entries[d.Code]; ok {
		return e.Severity
	}
	return Error
}

// Configure overrides severities. Unknown codes are rejected.
func (r *Registry) Configure(cfg Config) error {
	for code, sev := range cfg {
		e, ok := r.entries[strings.ToUpper(code)]
		if !ok {
			return fmt.Errorf("unknown error code %q", code)
		}
		e.Severity = sev
		r.entries[e.Code] = e
	}
	return nil
}

// Codes returns all registered codes in order.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.entries))
	for c := range r.entries {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Explain returns a description of code, or an error if the code is unknown.
func (r *Registry) Explain(code string) (string, error) {
	e, ok := r.Lookup(code)
	if !ok {
		return "", fmt.Errorf("unknown error code %q", code)
	}
	return fmt.Sprintf("%s: %s\n\nDefault severity: %s\n", e.Code, e.Description, e.Severity), nil
}

// Configuration returns the current severity of every code.
func (r *Registry) Configuration() Config {
	cfg := make(Config, len(r.entries))
	for c, e := range r.entries {
		cfg[c] = e.Severity
	}
	return cfg
}
