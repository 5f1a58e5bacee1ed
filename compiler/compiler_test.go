package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loomlang/loom/ast"
	"github.com/loomlang/loom/bytecode"
	"github.com/loomlang/loom/parser"
)

func mustCompile(t *testing.T, src string) *bytecode.Program {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	out, err := Compile(prog)
	require.NoError(t, err)
	return out
}

// TestCompile_EveryFunctionEndsWithNullReturn verifies the closing
// PUSH_CONST null; RETURN pair is present on both __main__ and a
// user-declared function.
func TestCompile_EveryFunctionEndsWithNullReturn(t *testing.T) {
	out := mustCompile(t, `
		fn f() { let x = 1; }
		let y = 2;
	`)
	for _, name := range []string{bytecode.MainFunction, "f"} {
		code := out.Functions[name].Code
		require.GreaterOrEqual(t, len(code), 2)
		last2 := code[len(code)-2:]
		require.Equal(t, bytecode.PUSH_CONST, last2[0].Op)
		require.Nil(t, last2[0].Const)
		require.Equal(t, bytecode.RETURN, last2[1].Op)
	}
}

// TestCompile_ExpressionStatementEmitsPop verifies that a bare
// expression statement is followed by a POP, since nothing consumes
// its value.
func TestCompile_ExpressionStatementEmitsPop(t *testing.T) {
	out := mustCompile(t, `print(1);`)
	code := out.Functions[bytecode.MainFunction].Code
	require.Equal(t, bytecode.CALL, code[1].Op)
	require.Equal(t, bytecode.POP, code[2].Op)
}

// TestCompile_IfJumpIfFalseTargetsElseBranch verifies the
// JUMP_IF_FALSE emitted for an if-condition lands exactly on the
// first instruction of the else branch (or past the then-branch's
// trailing jump when no else is present), never off the end of the
// instruction list.
func TestCompile_IfJumpIfFalseTargetsElseBranch(t *testing.T) {
	out := mustCompile(t, `if (1) { print(1); } else { print(2); }`)
	code := out.Functions[bytecode.MainFunction].Code

	var jf bytecode.Instruction
	var jfIdx int
	for i, ins := range code {
		if ins.Op == bytecode.JUMP_IF_FALSE {
			jf, jfIdx = ins, i
			break
		}
	}
	require.Equal(t, bytecode.JUMP_IF_FALSE, jf.Op)
	require.Less(t, jf.Addr, len(code))
	require.Greater(t, jf.Addr, jfIdx)

	// The instruction right before the else branch starts must be the
	// then-branch's unconditional jump to the end.
	require.Equal(t, bytecode.JUMP, code[jf.Addr-1].Op)
}

// TestCompile_WhileLoopsBackAndExitsForward verifies a while loop's
// condition check jumps forward past the body on false, and the body
// ends with an unconditional jump back to the condition.
func TestCompile_WhileLoopsBackAndExitsForward(t *testing.T) {
	out := mustCompile(t, `while (x < 3) { x = x + 1; }`)
	code := out.Functions[bytecode.MainFunction].Code

	require.Equal(t, bytecode.LOAD_VAR, code[0].Op)
	require.Equal(t, "x", code[0].Name)

	var exitJump bytecode.Instruction
	for _, ins := range code {
		if ins.Op == bytecode.JUMP_IF_FALSE {
			exitJump = ins
			break
		}
	}
	require.Equal(t, bytecode.JUMP_IF_FALSE, exitJump.Op)

	// The last JUMP in the body must target index 0, the loop's
	// condition re-check.
	var backJump bytecode.Instruction
	backIdx := -1
	for i := len(code) - 1; i >= 0; i-- {
		if code[i].Op == bytecode.JUMP {
			backJump, backIdx = code[i], i
			break
		}
	}
	require.Equal(t, 0, backJump.Addr)

	// exitJump must target an index within bounds, past the backward
	// jump.
	require.Greater(t, exitJump.Addr, backIdx)
	require.Less(t, exitJump.Addr, len(code))
}

// TestCompile_WhileFalseConditionSkipsBodyEntirely is a structural
// check standing in for the runtime property: a while whose condition
// is initially false must execute the body zero times. At the
// compiled-code level this means the JUMP_IF_FALSE target must be
// reachable directly from the condition check without passing through
// any body instruction.
func TestCompile_WhileFalseConditionSkipsBodyEntirely(t *testing.T) {
	out := mustCompile(t, `while (false) { print(1); }`)
	code := out.Functions[bytecode.MainFunction].Code
	require.Equal(t, bytecode.PUSH_CONST, code[0].Op)
	require.Equal(t, bytecode.JUMP_IF_FALSE, code[1].Op)
	require.Greater(t, code[1].Addr, 1)
}

// TestCompile_CallArgumentsEvaluatedLeftToRight verifies argument
// expressions are compiled in source order before the CALL.
func TestCompile_CallArgumentsEvaluatedLeftToRight(t *testing.T) {
	out := mustCompile(t, `f(1, 2);`)
	code := out.Functions[bytecode.MainFunction].Code
	require.Equal(t, bytecode.PUSH_CONST, code[0].Op)
	require.Equal(t, 1.0, code[0].Const)
	require.Equal(t, bytecode.PUSH_CONST, code[1].Op)
	require.Equal(t, 2.0, code[1].Const)
	require.Equal(t, bytecode.CALL, code[2].Op)
	require.Equal(t, "f", code[2].Name)
	require.Equal(t, 2, code[2].Argc)
}

func TestCompile_UnknownNodeIsCompileError(t *testing.T) {
	b := &fnBuilder{}
	err := compileExpr(b, ast.Unrecognized{})
	require.Error(t, err)
}
