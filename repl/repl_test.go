package repl

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loomlang/loom/config"
)

// TestRepl_VariablesPersistAcrossLines verifies that a `let` on one
// line is still readable by a statement on a later line, since both
// run against the same persistent VM.
func TestRepl_VariablesPersistAcrossLines(t *testing.T) {
	cfg := config.Default()
	cfg.Color = false
	r := New(cfg)

	var out bytes.Buffer
	r.evalLine(&out, "let x = 41;")
	r.evalLine(&out, "x = x + 1;")
	r.evalLine(&out, "print(x);")

	require.Equal(t, "42\n", out.String())
}

// TestRepl_FunctionsPersistAcrossLines verifies a function declared
// on one line is callable from a later line.
func TestRepl_FunctionsPersistAcrossLines(t *testing.T) {
	cfg := config.Default()
	cfg.Color = false
	r := New(cfg)

	var out bytes.Buffer
	r.evalLine(&out, "fn double(n) { return n * 2; }")
	r.evalLine(&out, "print(double(21));")

	require.Equal(t, "42\n", out.String())
}

// TestRepl_ParseErrorDoesNotCorruptSession verifies that a malformed
// line surfaces an error and leaves the session usable.
func TestRepl_ParseErrorDoesNotCorruptSession(t *testing.T) {
	cfg := config.Default()
	cfg.Color = false
	r := New(cfg)

	var out bytes.Buffer
	r.evalLine(&out, "let x = ;")
	r.evalLine(&out, "let y = 10; print(y);")

	require.Contains(t, out.String(), "Error:")
	require.Contains(t, out.String(), "10")
}
