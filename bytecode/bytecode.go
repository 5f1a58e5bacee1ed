/*
Package bytecode defines the flat instruction format the compiler
emits and the VM executes: a closed Opcode set, an Instruction record
with up to two immediate operands, and the Program container mapping
function names to their compiled code.

The opcode table's shape (a contiguous enum, a name lookup array, and a
String() method for disassembly) is grounded on
other_examples/...mna-nenuphar__lang-compiler-opcode.go; unlike that
VM, Loom's stack effects are not tracked per-opcode since there is no
optimization pass that would need static stack-depth verification.
*/
package bytecode

import (
	"fmt"
	"sort"
)

// Opcode is the closed set of VM instructions.
type Opcode uint8

const (
	PUSH_CONST Opcode = iota
	LOAD_VAR
	STORE_VAR
	POP

	BINARY_ADD
	BINARY_SUB
	BINARY_MUL
	BINARY_DIV
	BINARY_GT
	BINARY_LT
	BINARY_GTE
	BINARY_LTE
	BINARY_EQ
	BINARY_NEQ

	JUMP
	JUMP_IF_FALSE

	CALL
	RETURN
)

var opcodeNames = [...]string{
	PUSH_CONST:    "PUSH_CONST",
	LOAD_VAR:      "LOAD_VAR",
	STORE_VAR:     "STORE_VAR",
	POP:           "POP",
	BINARY_ADD:    "BINARY_ADD",
	BINARY_SUB:    "BINARY_SUB",
	BINARY_MUL:    "BINARY_MUL",
	BINARY_DIV:    "BINARY_DIV",
	BINARY_GT:     "BINARY_GT",
	BINARY_LT:     "BINARY_LT",
	BINARY_GTE:    "BINARY_GTE",
	BINARY_LTE:    "BINARY_LTE",
	BINARY_EQ:     "BINARY_EQ",
	BINARY_NEQ:    "BINARY_NEQ",
	JUMP:          "JUMP",
	JUMP_IF_FALSE: "JUMP_IF_FALSE",
	CALL:          "CALL",
	RETURN:        "RETURN",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// Instruction is one bytecode op plus its immediate operands.
// Operands are interpreted per-opcode:
//
//	PUSH_CONST    Const          -- constant value
//	LOAD_VAR      Name           -- variable name
//	STORE_VAR     Name           -- variable name
//	BINARY_*      (none)
//	JUMP          Addr           -- target instruction index
//	JUMP_IF_FALSE Addr           -- target instruction index
//	CALL          Name, Argc     -- callee name, argument count
//	RETURN        (none)
type Instruction struct {
	Op    Opcode
	Const interface{} // float64, string, bool, or nil (null); used by PUSH_CONST
	Name  string      // used by LOAD_VAR, STORE_VAR, CALL
	Addr  int         // used by JUMP, JUMP_IF_FALSE
	Argc  int         // used by CALL
}

func (ins Instruction) String() string {
	switch ins.Op {
	case PUSH_CONST:
		return fmt.Sprintf("%-14s %v", ins.Op, ins.Const)
	case LOAD_VAR, STORE_VAR:
		return fmt.Sprintf("%-14s %s", ins.Op, ins.Name)
	case JUMP, JUMP_IF_FALSE:
		return fmt.Sprintf("%-14s %d", ins.Op, ins.Addr)
	case CALL:
		return fmt.Sprintf("%-14s %s, %d", ins.Op, ins.Name, ins.Argc)
	default:
		return ins.Op.String()
	}
}

// Proto is a compiled function: its parameter list and its linear
// instruction stream.
type Proto struct {
	Params []string
	Code   []Instruction
}

// MainFunction is the name of the synthetic function holding the
// linearized top-level statements.
const MainFunction = "__main__"

// Program is the compiler's output: every declared function (plus the
// synthetic __main__), and the ordered list of `use` module names
// passed through unchanged from the AST.
type Program struct {
	Functions map[string]*Proto
	Uses      []string
}

// NewProgram returns an empty, ready-to-populate Program.
func NewProgram() *Program {
	return &Program{Functions: make(map[string]*Proto)}
}

// Disassemble renders every function's instructions in a human
// readable form, one line per instruction, used by `loom disasm`.
// It is a read-only view over already-compiled code
// and does not attach to a running VM -- it is not a debugger.
func (p *Program) Disassemble() string {
	out := ""
	names := make([]string, 0, len(p.Functions))
	for name := range p.Functions {
		names = append(names, name)
	}
	// Deterministic order: __main__ first, then lexical order.
	sort.Strings(names)
	ordered := make([]string, 0, len(names))
	if _, ok := p.Functions[MainFunction]; ok {
		ordered = append(ordered, MainFunction)
	}
	for _, n := range names {
		if n != MainFunction {
			ordered = append(ordered, n)
		}
	}
	for _, name := range ordered {
		proto := p.Functions[name]
		out += fmt.Sprintf("fn %s(%v):\n", name, proto.Params)
		for i, ins := range proto.Code {
			out += fmt.Sprintf("  %4d  %s\n", i, ins)
		}
	}
	return out
}
