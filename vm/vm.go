/*
Package vm implements the stack-based bytecode interpreter: call
frames, the shared operand stack, the globals map, the built-ins
table, and the opcode dispatch loop.

The dispatch-loop-over-a-switch-on-opcode shape, and the
save/restore-ip-around-a-call protocol that makes built-in reentrancy
safe, are grounded on other_examples/...db47h-ngaro__vm-core.go's
instruction loop; the call-frame stack and per-frame local env mirror
_examples/akashmaji946-go-mix/scope's environment-per-call-boundary
idea, flattened here to a single-level env with no closures and no
parent-scope chain.
*/
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/loomlang/loom/bytecode"
	"github.com/loomlang/loom/errs"
	"github.com/loomlang/loom/value"
)

// Builtin is a host callable registered in the VM's built-ins table.
// It receives already-unboxed argument values and returns a single
// result (value.NullValue for "no meaningful result").
type Builtin func(vm *VM, args []value.Value) (value.Value, error)

// Registrar populates the built-ins table for one `use` module name.
// It may capture vm for later callbacks into vm.CallFunction.
type Registrar func(vm *VM) error

// registry is the process-wide table of known extension modules,
// keyed by the name used in a `use` directive. Extension packages
// register themselves here via RegisterModule during package init.
var registry = map[string]Registrar{}

// RegisterModule adds a registrar for the named extension module.
// Called from extension packages' init() functions.
func RegisterModule(name string, r Registrar) {
	registry[name] = r
}

// frame is one call's activation record: its code, local bindings,
// and instruction pointer.
type frame struct {
	fn  string
	code []bytecode.Instruction
	env  map[string]value.Value
	ip   int
}

// VM is a single interpreter instance: one function table, one
// globals map, one operand stack, one built-ins table. It is
// single-threaded and synchronous; CallFunction is not safe to call
// concurrently on the same VM.
type VM struct {
	ID uuid.UUID

	program  *bytecode.Program
	globals  map[string]value.Value
	builtins map[string]Builtin
	stack    []value.Value
	frames   []*frame

	Stdout io.Writer
	Stderr io.Writer
}

// New constructs a VM over a compiled program, registers the `print`
// built-in, and invokes every extension registrar named in the
// program's `uses` list. A use naming an unregistered module prints a
// non-fatal diagnostic to Stderr and leaves the VM runnable.
func New(program *bytecode.Program) *VM {
	m := &VM{
		ID:       uuid.New(),
		program:  program,
		globals:  make(map[string]value.Value),
		builtins: make(map[string]Builtin),
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
	m.builtins["print"] = builtinPrint

	for _, name := range program.Uses {
		reg, ok := registry[name]
		if !ok {
			fmt.Fprintln(m.Stderr, color.YellowString("warning: no extension module registered for `use %s`", name))
			continue
		}
		if err := reg(m); err != nil {
			fmt.Fprintln(m.Stderr, color.YellowString("warning: module %s failed to initialize: %v", name, err))
		}
	}
	return m
}

func builtinPrint(m *VM, args []value.Value) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	fmt.Fprintln(m.Stdout, out)
	return value.NullValue, nil
}

// RegisterBuiltin adds a single built-in directly, bypassing the
// module-registrar indirection. Used by Registrar implementations.
func (m *VM) RegisterBuiltin(name string, fn Builtin) {
	m.builtins[name] = fn
}

// Global reads a global variable; used by host code and tests that
// need to inspect state after a run.
func (m *VM) Global(name string) (value.Value, bool) {
	v, ok := m.globals[name]
	return v, ok
}

// Program exposes the VM's function table so a REPL session can
// splice newly compiled functions into it between lines. Not
// meaningful to call concurrently with Run/CallFunction, per the
// single-threaded execution model.
func (m *VM) Program() *bytecode.Program {
	return m.program
}

// Run invokes __main__ if present, then `main` if present: if the
// source defines both top-level statements and a `main` function,
// both run, __main__ first. Returns the last-invoked function's
// result.
func (m *VM) Run() (value.Value, error) {
	result := value.NullValue
	if _, ok := m.program.Functions[bytecode.MainFunction]; ok {
		v, err := m.CallFunction(bytecode.MainFunction, nil)
		if err != nil {
			return value.NullValue, err
		}
		result = v
	}
	if _, ok := m.program.Functions["main"]; ok {
		v, err := m.CallFunction("main", nil)
		if err != nil {
			return value.NullValue, err
		}
		result = v
	}
	return result, nil
}

// CallFunction implements the call protocol: built-ins are invoked
// directly; user functions get a fresh frame with env = zip(params,
// args), executed by the dispatch loop. Built-ins may call back into
// CallFunction (reentrancy) -- it pushes/pops m.frames itself so a
// nested call never disturbs the caller's saved ip.
func (m *VM) CallFunction(name string, args []value.Value) (value.Value, error) {
	if b, ok := m.builtins[name]; ok {
		return b(m, args)
	}

	proto, ok := m.program.Functions[name]
	if !ok {
		suggestion := suggestName(name, m.functionNames())
		msg := fmt.Sprintf("Undefined function %s", name)
		if suggestion != "" {
			msg += fmt.Sprintf(" (did you mean %s?)", suggestion)
		}
		return value.NullValue, errs.New(errs.Runtime, nil, "%s", msg)
	}
	if len(args) != len(proto.Params) {
		return value.NullValue, errs.New(errs.Runtime, nil,
			"Function %s expected %d args, got %d", name, len(proto.Params), len(args))
	}

	env := make(map[string]value.Value, len(proto.Params))
	for i, p := range proto.Params {
		env[p] = args[i]
	}
	f := &frame{fn: name, code: proto.Code, env: env}
	m.frames = append(m.frames, f)
	result, err := m.dispatch(f)
	m.frames = m.frames[:len(m.frames)-1]
	if err != nil {
		return value.NullValue, err
	}
	return result, nil
}

func (m *VM) functionNames() []string {
	names := make([]string, 0, len(m.program.Functions))
	for n := range m.program.Functions {
		names = append(names, n)
	}
	for n := range m.builtins {
		names = append(names, n)
	}
	return names
}

func (m *VM) globalNames() []string {
	names := make([]string, 0, len(m.globals))
	for n := range m.globals {
		names = append(names, n)
	}
	return names
}

// suggestName returns the closest fuzzy match to name among
// candidates, or "" if none is close enough to be worth suggesting.
func suggestName(name string, candidates []string) string {
	best := fuzzy.RankFind(name, candidates)
	if len(best) == 0 {
		return ""
	}
	closest := best[0]
	for _, r := range best {
		if r.Distance < closest.Distance {
			closest = r
		}
	}
	if closest.Distance > 3 {
		return ""
	}
	return closest.Target
}

func (m *VM) push(v value.Value) { m.stack = append(m.stack, v) }

func (m *VM) pop() (value.Value, error) {
	if len(m.stack) == 0 {
		return value.NullValue, errs.New(errs.Runtime, nil, "stack underflow")
	}
	top := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return top, nil
}

// dispatch runs the fetch-decode-execute loop for a single frame
// until RETURN. Reentrant CALLs recurse through CallFunction, whose
// own dispatch call re-pushes/pops m.frames, so the outer frame's ip
// (saved in the parameter f, not a package-level "current
// frame" pointer) survives any depth of host callback.
func (m *VM) dispatch(f *frame) (value.Value, error) {
	for {
		if f.ip >= len(f.code) {
			return value.NullValue, errs.New(errs.Runtime, nil, "ip ran off the end of %s", f.fn)
		}
		ins := f.code[f.ip]
		switch ins.Op {
		case bytecode.PUSH_CONST:
			m.push(constToValue(ins.Const))
			f.ip++

		case bytecode.LOAD_VAR:
			v, err := m.loadVar(f, ins.Name)
			if err != nil {
				return value.NullValue, err
			}
			m.push(v)
			f.ip++

		case bytecode.STORE_VAR:
			v, err := m.pop()
			if err != nil {
				return value.NullValue, err
			}
			m.storeVar(f, ins.Name, v)
			f.ip++

		case bytecode.POP:
			if _, err := m.pop(); err != nil {
				return value.NullValue, err
			}
			f.ip++

		case bytecode.BINARY_ADD, bytecode.BINARY_SUB, bytecode.BINARY_MUL, bytecode.BINARY_DIV,
			bytecode.BINARY_GT, bytecode.BINARY_LT, bytecode.BINARY_GTE, bytecode.BINARY_LTE,
			bytecode.BINARY_EQ, bytecode.BINARY_NEQ:
			right, err := m.pop()
			if err != nil {
				return value.NullValue, err
			}
			left, err := m.pop()
			if err != nil {
				return value.NullValue, err
			}
			result, err := applyBinary(ins.Op, left, right)
			if err != nil {
				return value.NullValue, err
			}
			m.push(result)
			f.ip++

		case bytecode.JUMP:
			f.ip = ins.Addr

		case bytecode.JUMP_IF_FALSE:
			cond, err := m.pop()
			if err != nil {
				return value.NullValue, err
			}
			if !cond.Truthy() {
				f.ip = ins.Addr
			} else {
				f.ip++
			}

		case bytecode.CALL:
			args := make([]value.Value, ins.Argc)
			for i := ins.Argc - 1; i >= 0; i-- {
				v, err := m.pop()
				if err != nil {
					return value.NullValue, err
				}
				args[i] = v
			}
			f.ip++ // save resumption point before the reentrant call
			result, err := m.CallFunction(ins.Name, args)
			if err != nil {
				return value.NullValue, err
			}
			m.push(result)

		case bytecode.RETURN:
			v, err := m.pop()
			if err != nil {
				v = value.NullValue
			}
			return v, nil

		default:
			return value.NullValue, errs.New(errs.Runtime, nil, "bad opcode %v", ins.Op)
		}
	}
}

func (m *VM) loadVar(f *frame, name string) (value.Value, error) {
	if v, ok := f.env[name]; ok {
		return v, nil
	}
	if v, ok := m.globals[name]; ok {
		return v, nil
	}
	suggestion := suggestName(name, append(m.globalNames(), envNames(f)...))
	msg := fmt.Sprintf("Undefined variable %s", name)
	if suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %s?)", suggestion)
	}
	return value.NullValue, errs.New(errs.Runtime, nil, "%s", msg)
}

func envNames(f *frame) []string {
	names := make([]string, 0, len(f.env))
	for n := range f.env {
		names = append(names, n)
	}
	return names
}

// storeVar implements the scoping rule: write to the current frame's
// env if name already lives there, else write to globals. The first
// assignment within a call therefore decides local-vs-global for the
// rest of that call.
func (m *VM) storeVar(f *frame, name string, v value.Value) {
	if _, ok := f.env[name]; ok {
		f.env[name] = v
		return
	}
	m.globals[name] = v
}

func constToValue(c interface{}) value.Value {
	switch v := c.(type) {
	case float64:
		return value.NumberValue(v)
	case string:
		return value.StringValue(v)
	case bool:
		return value.BoolValue(v)
	case nil:
		return value.NullValue
	default:
		return value.NullValue
	}
}

func applyBinary(op bytecode.Opcode, left, right value.Value) (value.Value, error) {
	switch op {
	case bytecode.BINARY_ADD:
		if left.Kind() == value.Number && right.Kind() == value.Number {
			return value.NumberValue(left.AsNumber() + right.AsNumber()), nil
		}
		if left.Kind() == value.String && right.Kind() == value.String {
			return value.StringValue(left.AsString() + right.AsString()), nil
		}
		return value.NullValue, typeError("+", left, right)

	case bytecode.BINARY_SUB, bytecode.BINARY_MUL, bytecode.BINARY_DIV:
		if left.Kind() != value.Number || right.Kind() != value.Number {
			return value.NullValue, typeError(op.String(), left, right)
		}
		switch op {
		case bytecode.BINARY_SUB:
			return value.NumberValue(left.AsNumber() - right.AsNumber()), nil
		case bytecode.BINARY_MUL:
			return value.NumberValue(left.AsNumber() * right.AsNumber()), nil
		case bytecode.BINARY_DIV:
			if right.AsNumber() == 0 {
				return value.NullValue, errs.New(errs.Runtime, nil, "division by zero")
			}
			return value.NumberValue(left.AsNumber() / right.AsNumber()), nil
		}
	}

	switch op {
	case bytecode.BINARY_GT, bytecode.BINARY_LT, bytecode.BINARY_GTE, bytecode.BINARY_LTE:
		cmp, err := value.Compare(left, right)
		if err != nil {
			return value.NullValue, err
		}
		switch op {
		case bytecode.BINARY_GT:
			return value.BoolValue(cmp > 0), nil
		case bytecode.BINARY_LT:
			return value.BoolValue(cmp < 0), nil
		case bytecode.BINARY_GTE:
			return value.BoolValue(cmp >= 0), nil
		case bytecode.BINARY_LTE:
			return value.BoolValue(cmp <= 0), nil
		}
	case bytecode.BINARY_EQ:
		return value.BoolValue(value.Equal(left, right)), nil
	case bytecode.BINARY_NEQ:
		return value.BoolValue(!value.Equal(left, right)), nil
	}

	return value.NullValue, errs.New(errs.Runtime, nil, "bad opcode %v", op)
}

func typeError(op string, left, right value.Value) error {
	return errs.New(errs.Runtime, nil, "type error: cannot apply %s to %s and %s", op, left.Kind(), right.Kind())
}
