package types

// Names of the builtin types.
const (
	BOOL          = "BOOL"
	BYTE          = "BYTE"
	SINT          = "SINT"
	USINT         = "USINT"
	WORD          = "WORD"
	INT           = "INT"
	UINT          = "UINT"
	DWORD         = "DWORD"
	DINT          = "DINT"
	UDINT         = "UDINT"
	LWORD         = "LWORD"
	LINT          = "LINT"
	ULINT         = "ULINT"
	DATE          = "DATE"
	TIME          = "TIME"
	DATE_AND_TIME = "DATE_AND_TIME"
	TIME_OF_DAY   = "TIME_OF_DAY"
	REAL          = "REAL"
	LREAL         = "LREAL"
	STRING        = "STRING"
	WSTRING       = "WSTRING"
	VOID          = "VOID"

	// Short forms of the date and time types.
	D   = "D"
	T   = "T"
	DT  = "DT"
	TOD = "TOD"
)

// DefaultStringLen is the capacity of STRING and WSTRING without an
// explicit length.
const DefaultStringLen = 80

// integer describes one builtin integer type.
type integer struct {
	name     string
	signed   bool
	size     uint32
	nature   Nature
	semantic string
}

var integers = [...]integer{
	{BOOL, true, 1, Bit, ""},
	{BYTE, false, 8, Bit, ""},
	{SINT, true, 8, Signed, ""},
	{USINT, false, 8, Unsigned, ""},
	{WORD, false, 16, Bit, ""},
	{INT, true, 16, Signed, ""},
	{UINT, false, 16, Unsigned, ""},
	{DWORD, false, 32, Bit, ""},
	{DINT, true, 32, Signed, ""},
	{UDINT, false, 32, Unsigned, ""},
	{LWORD, false, 64, Bit, ""},
	{LINT, true, 64, Signed, ""},
	{ULINT, false, 64, Unsigned, ""},
	{DATE, true, 64, Date, DATE},
	{TIME, true, 64, Duration, TIME},
	{DATE_AND_TIME, true, 64, Date, DATE_AND_TIME},
	{TIME_OF_DAY, true, 64, Date, TIME_OF_DAY},
}

var shortForms = [...]struct{ name, target string }{
	{D, DATE},
	{T, TIME},
	{DT, DATE_AND_TIME},
	{TOD, TIME_OF_DAY},
}

// NewStringInfo returns the info of a string holding length characters.
func NewStringInfo(length int64, enc Encoding) *String {
	return &String{Size: length + 1, Encoding: enc}
}
