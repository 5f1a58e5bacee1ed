/*
Package guidemo is an illustrative host-GUI extension module. It is
not a real UI toolkit: it models a tiny headless window/widget tree in
memory, shaped after the PySide6-backed GUI adapter this toolchain's
original implementation shipped (gui_app opens a window and hands it
to a builder function; gui_label/gui_button attach widgets to that
window; a button click re-enters the declared Loom callback). The
window-handle threading is the interesting part: it demonstrates a
built-in that captures the VM handle and later re-enters
vm.CallFunction from a host-side event, rather than from inside the
dispatch loop's own CALL handling.

Windows and widgets are threaded through Loom as opaque
value.HostValue handles; Loom code never inspects their shape, only
passes them back into gui_label/gui_button/gui_click.
*/
package guidemo

import (
	"github.com/loomlang/loom/errs"
	"github.com/loomlang/loom/value"
	"github.com/loomlang/loom/vm"
)

func init() {
	vm.RegisterModule("gui", Register)
}

// window is the opaque host object backing gui_app's return value; it
// accumulates the widgets added to it for inspection (tests, or a
// real backend rendering them).
type window struct {
	title   string
	widgets []*widget
}

// widget is the opaque host object carried inside a value.HostValue.
// handler is the Loom function name to invoke when a button widget is
// clicked ("" for labels, which are not clickable).
type widget struct {
	kind    string // "label" or "button"
	text    string
	handler string
}

// Register installs gui_app, gui_label, gui_button, and gui_click. It
// is the Registrar invoked once at VM startup when `use gui;` appears.
func Register(m *vm.VM) error {
	// gui_app(title, builder_name) opens a window and immediately
	// calls back into builder_name(win), mirroring the original's
	// QApplication-then-builder-callback sequence minus the actual
	// event loop -- headless by design, since real GUI widgets are an
	// external concern this module only illustrates the hook for.
	m.RegisterBuiltin("gui_app", func(inner *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) != 2 || args[0].Kind() != value.String || args[1].Kind() != value.String {
			return value.NullValue, errs.New(errs.Runtime, nil,
				"gui_app expects (title: string, builder_name: string)")
		}
		win := &window{title: args[0].AsString()}
		handle := value.HostValue(win)
		if _, err := inner.CallFunction(args[1].AsString(), []value.Value{handle}); err != nil {
			return value.NullValue, err
		}
		return handle, nil
	})

	m.RegisterBuiltin("gui_label", func(_ *vm.VM, args []value.Value) (value.Value, error) {
		win, text, err := winAndString("gui_label", args)
		if err != nil {
			return value.NullValue, err
		}
		w := &widget{kind: "label", text: text}
		win.widgets = append(win.widgets, w)
		return value.HostValue(w), nil
	})

	m.RegisterBuiltin("gui_button", func(_ *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) != 3 || args[0].Kind() != value.Host ||
			args[1].Kind() != value.String || args[2].Kind() != value.String {
			return value.NullValue, errs.New(errs.Runtime, nil,
				"gui_button expects (win, text: string, handler: string)")
		}
		win, ok := args[0].AsHost().(*window)
		if !ok {
			return value.NullValue, errs.New(errs.Runtime, nil, "gui_button: not a window handle")
		}
		w := &widget{kind: "button", text: args[1].AsString(), handler: args[2].AsString()}
		win.widgets = append(win.widgets, w)
		return value.HostValue(w), nil
	})

	// gui_click simulates a host event loop delivering a click: it
	// looks up the button's declared handler and reenters
	// CallFunction, exactly as Qt's signal/slot connection does in the
	// original gui_button's on_click closure.
	m.RegisterBuiltin("gui_click", func(inner *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) != 1 || args[0].Kind() != value.Host {
			return value.NullValue, errs.New(errs.Runtime, nil, "gui_click expects a widget handle")
		}
		w, ok := args[0].AsHost().(*widget)
		if !ok || w.kind != "button" {
			return value.NullValue, errs.New(errs.Runtime, nil, "gui_click target is not a button")
		}
		if w.handler == "" {
			return value.NullValue, nil
		}
		return inner.CallFunction(w.handler, nil)
	})

	return nil
}

func winAndString(name string, args []value.Value) (*window, string, error) {
	if len(args) != 2 || args[0].Kind() != value.Host || args[1].Kind() != value.String {
		return nil, "", errs.New(errs.Runtime, nil, "%s expects (win, text: string)", name)
	}
	win, ok := args[0].AsHost().(*window)
	if !ok {
		return nil, "", errs.New(errs.Runtime, nil, "%s: not a window handle", name)
	}
	return win, args[1].AsString(), nil
}
