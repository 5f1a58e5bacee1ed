/*
Package compiler lowers an *ast.Program into a *bytecode.Program: one
flat instruction list per function, with forward jumps resolved by
back-patching a placeholder operand once the jump target is known.

The back-patch idiom — emit a jump with a placeholder address, compile
the body, then rewrite the placeholder once the real target index is
known — is grounded on
other_examples/...informatter-nilan__compiler-ast_compiler.go's
patchJump/emitPlaceholderJump pair; this package names the equivalent
operations emitJump/patchJump.

Every function's instruction list is closed with PUSH_CONST null;
RETURN so that control falling off the end of a function body (or
__main__) yields a well-defined null rather than running past the end
of the slice.
*/
package compiler

import (
	"fmt"

	"github.com/loomlang/loom/ast"
	"github.com/loomlang/loom/bytecode"
	"github.com/loomlang/loom/errs"
)

// fnBuilder accumulates the instruction list for a single function
// during compilation.
type fnBuilder struct {
	code []bytecode.Instruction
}

func (b *fnBuilder) emit(ins bytecode.Instruction) int {
	b.code = append(b.code, ins)
	return len(b.code) - 1
}

// emitJump appends a jump-family instruction with a placeholder
// address and returns its index so patchJump can fix it up later.
func (b *fnBuilder) emitJump(op bytecode.Opcode) int {
	return b.emit(bytecode.Instruction{Op: op, Addr: -1})
}

// patchJump rewrites the address operand of the jump instruction at
// idx to target. Callers pass here() to resolve a forward jump; while's
// backward loop-back jump is emitted with its address directly and is
// never patched.
func (b *fnBuilder) patchJump(idx int, target int) {
	b.code[idx].Addr = target
}

func (b *fnBuilder) here() int { return len(b.code) }

// Compile lowers an entire program: every declared function, plus a
// synthetic __main__ holding the linearized top-level statements.
func Compile(prog *ast.Program) (*bytecode.Program, error) {
	out := bytecode.NewProgram()
	out.Uses = append([]string(nil), prog.Uses...)

	for _, fn := range prog.Functions {
		proto, err := compileFunction(fn.Params, fn.Body)
		if err != nil {
			return nil, err
		}
		out.Functions[fn.Name] = proto
	}

	mainProto, err := compileFunction(nil, prog.Statements)
	if err != nil {
		return nil, err
	}
	out.Functions[bytecode.MainFunction] = mainProto

	return out, nil
}

func compileFunction(params []string, body []ast.Node) (*bytecode.Proto, error) {
	b := &fnBuilder{}
	for _, stmt := range body {
		if err := compileStatement(b, stmt); err != nil {
			return nil, err
		}
	}
	b.emit(bytecode.Instruction{Op: bytecode.PUSH_CONST, Const: nil})
	b.emit(bytecode.Instruction{Op: bytecode.RETURN})
	return &bytecode.Proto{Params: append([]string(nil), params...), Code: b.code}, nil
}

func compileStatement(b *fnBuilder, node ast.Node) error {
	switch n := node.(type) {
	case *ast.VarDecl:
		if err := compileExpr(b, n.Expr); err != nil {
			return err
		}
		b.emit(bytecode.Instruction{Op: bytecode.STORE_VAR, Name: n.Name})
		return nil

	case *ast.Assign:
		if err := compileExpr(b, n.Expr); err != nil {
			return err
		}
		b.emit(bytecode.Instruction{Op: bytecode.STORE_VAR, Name: n.Name})
		return nil

	case *ast.Return:
		if err := compileExpr(b, n.Expr); err != nil {
			return err
		}
		b.emit(bytecode.Instruction{Op: bytecode.RETURN})
		return nil

	case *ast.If:
		if err := compileExpr(b, n.Cond); err != nil {
			return err
		}
		jumpToElse := b.emitJump(bytecode.JUMP_IF_FALSE)
		for _, stmt := range n.Then {
			if err := compileStatement(b, stmt); err != nil {
				return err
			}
		}
		jumpToEnd := b.emitJump(bytecode.JUMP)
		b.patchJump(jumpToElse, b.here())
		for _, stmt := range n.ElseBody {
			if err := compileStatement(b, stmt); err != nil {
				return err
			}
		}
		b.patchJump(jumpToEnd, b.here())
		return nil

	case *ast.While:
		loopStart := b.here()
		if err := compileExpr(b, n.Cond); err != nil {
			return err
		}
		exitJump := b.emitJump(bytecode.JUMP_IF_FALSE)
		for _, stmt := range n.Body {
			if err := compileStatement(b, stmt); err != nil {
				return err
			}
		}
		b.emit(bytecode.Instruction{Op: bytecode.JUMP, Addr: loopStart})
		b.patchJump(exitJump, b.here())
		return nil

	default:
		// Expression statement: compile then discard the result.
		if err := compileExpr(b, node); err != nil {
			return err
		}
		b.emit(bytecode.Instruction{Op: bytecode.POP})
		return nil
	}
}

func compileExpr(b *fnBuilder, node ast.Node) error {
	switch n := node.(type) {
	case *ast.Number:
		b.emit(bytecode.Instruction{Op: bytecode.PUSH_CONST, Const: n.Value})
		return nil
	case *ast.String:
		b.emit(bytecode.Instruction{Op: bytecode.PUSH_CONST, Const: n.Value})
		return nil
	case *ast.Bool:
		b.emit(bytecode.Instruction{Op: bytecode.PUSH_CONST, Const: n.Value})
		return nil
	case *ast.Var:
		b.emit(bytecode.Instruction{Op: bytecode.LOAD_VAR, Name: n.Name})
		return nil
	case *ast.BinaryOp:
		if err := compileExpr(b, n.Left); err != nil {
			return err
		}
		if err := compileExpr(b, n.Right); err != nil {
			return err
		}
		op, err := binaryOpcode(n.Op)
		if err != nil {
			return err
		}
		b.emit(bytecode.Instruction{Op: op})
		return nil
	case *ast.Call:
		for _, arg := range n.Args {
			if err := compileExpr(b, arg); err != nil {
				return err
			}
		}
		b.emit(bytecode.Instruction{Op: bytecode.CALL, Name: n.Func, Argc: len(n.Args)})
		return nil
	default:
		return errs.New(errs.Compile, nil, "unknown expression node %T", node)
	}
}

// binaryOpcode is the total mapping from ast.Op to its BINARY_*
// opcode. An unrecognized tag indicates parser/AST corruption, not a
// user-facing condition, hence errs.Compile rather than errs.Parse.
func binaryOpcode(op ast.Op) (bytecode.Opcode, error) {
	switch op {
	case ast.PLUS:
		return bytecode.BINARY_ADD, nil
	case ast.MINUS:
		return bytecode.BINARY_SUB, nil
	case ast.MUL:
		return bytecode.BINARY_MUL, nil
	case ast.DIV:
		return bytecode.BINARY_DIV, nil
	case ast.GT:
		return bytecode.BINARY_GT, nil
	case ast.LT:
		return bytecode.BINARY_LT, nil
	case ast.GTE:
		return bytecode.BINARY_GTE, nil
	case ast.LTE:
		return bytecode.BINARY_LTE, nil
	case ast.EQEQ:
		return bytecode.BINARY_EQ, nil
	case ast.NEQ:
		return bytecode.BINARY_NEQ, nil
	default:
		return 0, errs.New(errs.Compile, nil, "unknown operator tag %v", fmt.Sprint(op))
	}
}
