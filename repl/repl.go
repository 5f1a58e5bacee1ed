/*
Package repl implements the interactive Read-Eval-Print Loop: each
line is lexed, parsed, compiled, and run against a single persistent
VM instance, so variables and functions declared on one line remain
visible to the next.

Grounded on _examples/akashmaji946-go-mix/repl/repl.go's structure --
chzyer/readline for line editing and history, fatih/color for colored
diagnostics, a panic-recovery wrapper around each line so one bad line
never kills the session -- adapted from that repo's tree-walking
Evaluator to Loom's lex/parse/compile/run pipeline and persistent
vm.VM.
*/
package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/loomlang/loom/bytecode"
	"github.com/loomlang/loom/compiler"
	"github.com/loomlang/loom/config"
	"github.com/loomlang/loom/errs"
	"github.com/loomlang/loom/parser"
	"github.com/loomlang/loom/value"
	"github.com/loomlang/loom/vm"
)

var (
	promptColor = color.New(color.FgBlue)
	errorColor  = color.New(color.FgRed)
	infoColor   = color.New(color.FgCyan)
)

// Repl is an interactive session over a single persistent VM.
type Repl struct {
	cfg     config.Config
	machine *vm.VM
}

// New constructs a Repl. An empty program (no functions, no
// statements) seeds the persistent VM so `use` directives from cfg's
// AutoUse can register before the first line is read.
func New(cfg config.Config) *Repl {
	program := bytecode.NewProgram()
	program.Functions[bytecode.MainFunction] = &bytecode.Proto{Code: nil}
	program.Uses = append([]string(nil), cfg.AutoUse...)
	return &Repl{cfg: cfg, machine: vm.New(program)}
}

// Start runs the loop until EOF (Ctrl+D) or a `.exit` line.
func (r *Repl) Start(writer io.Writer) error {
	if r.cfg.Color {
		infoColor.Fprintln(writer, "loom -- type an expression or statement, or .exit to quit")
	} else {
		fmt.Fprintln(writer, "loom -- type an expression or statement, or .exit to quit")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      r.cfg.Prompt,
		HistoryFile: r.cfg.HistoryFile,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			fmt.Fprintln(writer, "bye")
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == ".exit" {
			fmt.Fprintln(writer, "bye")
			return nil
		}

		r.evalLine(writer, line)
	}
}

// evalLine lexes, parses, compiles, and runs a single line against
// the session's persistent VM, recovering from any panic so a single
// bad line cannot tear down the REPL.
func (r *Repl) evalLine(writer io.Writer, line string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.printError(writer, fmt.Sprintf("Error: internal error: %v", rec))
		}
	}()

	prog, err := parser.Parse(line)
	if err != nil {
		r.printError(writer, errs.Display(err))
		return
	}

	compiled, err := compiler.Compile(prog)
	if err != nil {
		r.printError(writer, errs.Display(err))
		return
	}

	r.machine.Stdout = writer
	if _, err := r.mergeAndRun(compiled); err != nil {
		r.printError(writer, errs.Display(err))
	}
}

// mergeAndRun splices the freshly compiled line's __main__ body onto
// the persistent VM's function table (new/overwritten user functions
// replace old ones; __main__ from this line runs once) and executes
// it, so later lines can still call functions and read variables
// defined earlier.
func (r *Repl) mergeAndRun(compiled *bytecode.Program) (value.Value, error) {
	for name, proto := range compiled.Functions {
		if name == bytecode.MainFunction {
			continue
		}
		r.machine.Program().Functions[name] = proto
	}
	r.machine.Program().Functions[bytecode.MainFunction] = compiled.Functions[bytecode.MainFunction]
	return r.machine.CallFunction(bytecode.MainFunction, nil)
}

func (r *Repl) printError(writer io.Writer, msg string) {
	if r.cfg.Color {
		errorColor.Fprintln(writer, msg)
		return
	}
	fmt.Fprintln(writer, msg)
}
