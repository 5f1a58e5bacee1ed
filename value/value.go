/*
Package value defines the VM's runtime value representation: a closed
tagged union of number, string, bool, null, and an opaque host
reference used by built-in extension modules to smuggle Go values
(widget handles, file handles, ...) through the stack without the VM
needing to know their shape.

The tagged-union-via-struct-of-optional-fields shape (rather than an
interface{} or a Go interface hierarchy) is grounded on
_examples/akashmaji946-go-mix/objects' GoMixObject pattern, adapted
here to Loom's four-kind value model plus the host-reference escape
hatch the built-in extension mechanism needs to pass opaque handles
through Loom code untouched.
*/
package value

import (
	"fmt"
	"math"
	"strconv"

	"github.com/loomlang/loom/errs"
)

// Kind tags which field of a Value is meaningful.
type Kind int

const (
	Number Kind = iota
	String
	Bool
	Null
	Host
)

var kindNames = [...]string{
	Number: "number", String: "string", Bool: "bool", Null: "null", Host: "host",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "?"
}

// Value is a single runtime value. The zero Value is Null.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
	host interface{}
}

// NullValue is the singleton null value; it compares equal to any
// other NullValue by Kind alone, since Go structs holding only zero
// fields already compare equal.
var NullValue = Value{kind: Null}

func NumberValue(n float64) Value { return Value{kind: Number, num: n} }
func StringValue(s string) Value  { return Value{kind: String, str: s} }
func BoolValue(b bool) Value      { return Value{kind: Bool, b: b} }

// HostValue wraps an arbitrary Go value for built-in extension modules
// to carry opaque handles through Loom variables and the stack. The
// VM never inspects the wrapped value; only the built-in that created
// it knows how to unwrap it (via AsHost).
func HostValue(v interface{}) Value { return Value{kind: Host, host: v} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsNumber() float64    { return v.num }
func (v Value) AsString() string     { return v.str }
func (v Value) AsBool() bool         { return v.b }
func (v Value) AsHost() interface{}  { return v.host }
func (v Value) IsNull() bool         { return v.kind == Null }

// Truthy implements the single truthiness rule used by `if` and
// `while` conditions: false and null are falsy, every other value
// (including numeric 0 and the empty string) is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case Bool:
		return v.b
	case Null:
		return false
	default:
		return true
	}
}

// String renders a value the way `print` does: numbers drop a
// trailing ".0", strings render bare (no quotes), booleans as
// true/false, null as "null", and host values via their Go
// fmt.Stringer/fmt default if one exists.
func (v Value) String() string {
	switch v.kind {
	case Number:
		if v.num == math.Trunc(v.num) && !math.IsInf(v.num, 0) {
			return strconv.FormatFloat(v.num, 'f', -1, 64)
		}
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case String:
		return v.str
	case Bool:
		if v.b {
			return "true"
		}
		return "false"
	case Null:
		return "null"
	case Host:
		return fmt.Sprintf("%v", v.host)
	default:
		return "?"
	}
}

// Equal implements Loom's `==`/`!=` semantics: same-kind values
// compare by content; values of different kinds are never equal
// (EQEQ/NEQ are total operators, so this never errors). Host values
// compare equal only by identity of the wrapped value via Go's `==`,
// which panics for uncomparable underlying types -- built-ins that
// wrap slices or maps must not rely on equality.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Number:
		return a.num == b.num
	case String:
		return a.str == b.str
	case Bool:
		return a.b == b.b
	case Null:
		return true
	case Host:
		return a.host == b.host
	default:
		return false
	}
}

// Compare implements the ordered comparisons (`<`, `>`, `<=`, `>=`).
// Only number-number pairs are ordered; every other combination
// (including string-string) is a RuntimeError -- ordered comparisons
// require both operands numeric.
func Compare(a, b Value) (int, error) {
	if a.kind != Number || b.kind != Number {
		return 0, errs.New(errs.Runtime, nil,
			"cannot compare %s and %s", a.kind, b.kind)
	}
	switch {
	case a.num < b.num:
		return -1, nil
	case a.num > b.num:
		return 1, nil
	default:
		return 0, nil
	}
}
