/*
Command loom is the toolchain's entry point: run a script, disassemble
its compiled bytecode, or drop into an interactive REPL (the default
when no subcommand is given).

Grounded on _examples/akashmaji946-go-mix/main.go's driver shape
(read source, run pipeline, print one Error: line on failure) combined
with the spf13/cobra command-tree pattern used across the retrieved
CLI tools for subcommand dispatch.
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loomlang/loom/compiler"
	"github.com/loomlang/loom/config"
	"github.com/loomlang/loom/errs"
	"github.com/loomlang/loom/parser"
	"github.com/loomlang/loom/repl"
	"github.com/loomlang/loom/vm"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errs.Display(err))
		os.Exit(0) // a pipeline failure prints one Error: line and exits zero, never non-zero
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "loom",
		Short: "Loom: a small imperative scripting language toolchain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl()
		},
		// Cobra's own usage/error printing would otherwise run before
		// main's errs.Display(err) line, turning one error line into
		// three. The driver owns error formatting end to end.
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newReplCmd(), newDisasmCmd())
	return root
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "Compile and execute a Loom source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(args[0])
		},
	}
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive Loom session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl()
		},
	}
}

func newDisasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <file>",
		Short: "Print the compiled bytecode for a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return disasmFile(args[0])
		},
	}
}

func runFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return errs.Wrap(err, errs.Runtime, nil, "reading %s", path)
	}

	prog, err := parser.Parse(string(src))
	if err != nil {
		return err
	}
	compiled, err := compiler.Compile(prog)
	if err != nil {
		return err
	}
	m := vm.New(compiled)
	_, err = m.Run()
	return err
}

func disasmFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return errs.Wrap(err, errs.Runtime, nil, "reading %s", path)
	}
	prog, err := parser.Parse(string(src))
	if err != nil {
		return err
	}
	compiled, err := compiler.Compile(prog)
	if err != nil {
		return err
	}
	fmt.Print(compiled.Disassemble())
	return nil
}

func runRepl() error {
	cfg, err := config.Load(config.DefaultFileName)
	if err != nil {
		return err
	}
	return repl.New(cfg).Start(os.Stdout)
}
