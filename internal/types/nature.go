package types

import "fmt"

// Nature is the generic category of a type (ANY_INT, ANY_REAL, ...).
type Nature uint8

const (
	Any Nature = iota
	Derived
	Elementary
	Magnitude
	Num
	Real
	Int
	Signed
	Unsigned
	Duration
	Bit
	Chars
	StringNature
	Char
	Date
)

var natureNames = [...]string{
	Any:          "ANY",
	Derived:      "ANY_DERIVED",
	Elementary:   "ANY_ELEMENTARY",
	Magnitude:    "ANY_MAGNITUDE",
	Num:          "ANY_NUMBER",
	Real:         "ANY_REAL",
	Int:          "ANY_INT",
	Signed:       "ANY_SIGNED",
	Unsigned:     "ANY_UNSIGNED",
	Duration:     "ANY_DURATION",
	Bit:          "ANY_BIT",
	Chars:        "ANY_CHARS",
	StringNature: "ANY_STRING",
	Char:         "ANY_CHAR",
	Date:         "ANY_DATE",
}

func (n Nature) String() string {
	if int(n) < len(natureNames) {
		return natureNames[n]
	}
	return fmt.Sprintf("Nature(%d)", n)
}

// parents lists the natures each nature directly derives from.
var parents = [...][]Nature{
	Any:          nil,
	Derived:      {Any},
	Elementary:   {Any},
	Magnitude:    {Elementary},
	Num:          {Magnitude},
	Real:         {Num},
	Int:          {Num},
	Signed:       {Int},
	Unsigned:     {Int},
	Duration:     {Magnitude},
	Bit:          {Elementary},
	Chars:        {Elementary},
	StringNature: {Chars},
	Char:         {Chars},
	Date:         {Elementary},
}

// DerivesFrom reports whether n is other or a refinement of it.
func (n Nature) DerivesFrom(other Nature) bool {
	if n == other {
		return true
	}
	if int(n) >= len(parents) {
		return false
	}
	for _, p := range parents[n] {
		if p.DerivesFrom(other) {
			return true
		}
	}
	return false
}

// IsNumerical reports whether n derives from ANY_NUMBER.
func (n Nature) IsNumerical() bool { return n.DerivesFrom(Num) }

// IsReal reports whether n derives from ANY_REAL.
func (n Nature) IsReal() bool { return n.DerivesFrom(Real) }

// IsBit reports whether n derives from ANY_BIT.
func (n Nature) IsBit() bool { return n.DerivesFrom(Bit) }

// LookupNature finds a nature by its keyword, for example ANY_INT.
func LookupNature(name string) (Nature, bool) {
	for i, s := range natureNames {
		if s == name {
			return Nature(i), true
		}
	}
	return 0, false
}
