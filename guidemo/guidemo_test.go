package guidemo

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

// TestGuiApp_CallsBuilderWithWindowHandle verifies gui_app opens a
// window handle and reenters the builder function, passing it along.
func TestGuiApp_CallsBuilderWithWindowHandle(t *testing.T) {
	out := run(t, `
		use gui;
		fn build(win) {
			gui_label(win, "Hello from Loom GUI!");
		}
		fn main() {
			gui_app("Demo", "build");
			print("built");
		}
	`)
	require.Equal(t, "built\n", out)
}

// TestGuiClick_ReentersDeclaredHandler verifies gui_click re-enters
// the VM via CallFunction to invoke the button's declared handler, as
// a real host event loop would.
func TestGuiClick_ReentersDeclaredHandler(t *testing.T) {
	out := run(t, `
		use gui;
		fn on_save() { print("saved"); }
		fn build(win) {
			btn = gui_button(win, "Save", "on_save");
			gui_click(btn);
		}
		fn main() {
			gui_app("Demo", "build");
		}
	`)
	require.Equal(t, "saved\n", out)
}

func TestGuiClick_OnLabelIsRuntimeError(t *testing.T) {
	prog, err := parser.Parse(`
		use gui;
		fn build(win) {
			lbl = gui_label(win, "hello");
			gui_click(lbl);
		}
		fn main() { gui_app("Demo", "build"); }
	`)
	require.NoError(t, err)
	compiled, err := compiler.Compile(prog)
	require.NoError(t, err)
	m := vm.New(compiled)
	var out bytes.Buffer
	m.Stdout = &out
	_, runErr := m.Run()
	require.Error(t, runErr)
}
