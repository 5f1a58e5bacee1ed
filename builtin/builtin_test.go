package builtin

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loomlang/loom/compiler"
	"github.com/loomlang/loom/parser"
	"github.com/loomlang/loom/vm"
)

func run(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	compiled, err := compiler.Compile(prog)
	require.NoError(t, err)
	m := vm.New(compiled)
	var out bytes.Buffer
	m.Stdout = &out
	_, err = m.Run()
	require.NoError(t, err)
	return out.String()
}

func TestMathModule_SqrtAbsFloor(t *testing.T) {
	out := run(t, `
		use math;
		fn main() {
			print(sqrt(9));
			print(abs(0 - 5));
			print(floor(3.7));
		}
	`)
	require.Equal(t, "3\n5\n3\n", out)
}

func TestStringsModule_LenUpper(t *testing.T) {
	out := run(t, `
		use strings;
		fn main() {
			print(len("hello"));
			print(upper("hello"));
		}
	`)
	require.Equal(t, "5\nHELLO\n", out)
}

func TestUnregisteredModuleIsNonFatal(t *testing.T) {
	out := run(t, `
		use nonexistent_module;
		fn main() { print("still runs"); }
	`)
	require.Equal(t, "still runs\n", out)
}
