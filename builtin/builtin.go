/*
Package builtin holds small, always-available extension modules that
ship with the toolchain itself, as opposed to guidemo's illustrative
host-GUI adapter. Each module registers itself with vm.RegisterModule
under the name used in a `use` directive.

Grounded on _examples/akashmaji946-go-mix/std's builtins.go registrar
pattern (a map of name to Go func populated at init time), adapted to
vm.Registrar's VM-handle-capturing signature.
*/
package builtin

import (
	"math"

	"github.com/loomlang/loom/errs"
	"github.com/loomlang/loom/value"
	"github.com/loomlang/loom/vm"
)

func init() {
	vm.RegisterModule("math", registerMath)
	vm.RegisterModule("strings", registerStrings)
}

// registerMath installs a handful of numeric built-ins exercising the
// host reference/error-return shape every built-in follows.
func registerMath(m *vm.VM) error {
	m.RegisterBuiltin("sqrt", func(_ *vm.VM, args []value.Value) (value.Value, error) {
		n, err := onlyNumber("sqrt", args)
		if err != nil {
			return value.NullValue, err
		}
		if n < 0 {
			return value.NullValue, errs.New(errs.Runtime, nil, "sqrt of negative number %v", n)
		}
		return value.NumberValue(math.Sqrt(n)), nil
	})
	m.RegisterBuiltin("abs", func(_ *vm.VM, args []value.Value) (value.Value, error) {
		n, err := onlyNumber("abs", args)
		if err != nil {
			return value.NullValue, err
		}
		return value.NumberValue(math.Abs(n)), nil
	})
	m.RegisterBuiltin("floor", func(_ *vm.VM, args []value.Value) (value.Value, error) {
		n, err := onlyNumber("floor", args)
		if err != nil {
			return value.NullValue, err
		}
		return value.NumberValue(math.Floor(n)), nil
	})
	return nil
}

// registerStrings installs string-manipulation built-ins.
func registerStrings(m *vm.VM) error {
	m.RegisterBuiltin("len", func(_ *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) != 1 || args[0].Kind() != value.String {
			return value.NullValue, errs.New(errs.Runtime, nil, "len expects a single string argument")
		}
		return value.NumberValue(float64(len(args[0].AsString()))), nil
	})
	m.RegisterBuiltin("upper", func(_ *vm.VM, args []value.Value) (value.Value, error) {
		s, err := onlyString("upper", args)
		if err != nil {
			return value.NullValue, err
		}
		return value.StringValue(toUpper(s)), nil
	})
	return nil
}

func onlyNumber(name string, args []value.Value) (float64, error) {
	if len(args) != 1 || args[0].Kind() != value.Number {
		return 0, errs.New(errs.Runtime, nil, "%s expects a single number argument", name)
	}
	return args[0].AsNumber(), nil
}

func onlyString(name string, args []value.Value) (string, error) {
	if len(args) != 1 || args[0].Kind() != value.String {
		return "", errs.New(errs.Runtime, nil, "%s expects a single string argument", name)
	}
	return args[0].AsString(), nil
}

func toUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}
