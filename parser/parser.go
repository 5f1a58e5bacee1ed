/*
Package parser implements a hand-written recursive-descent parser over
the token stream produced by package lexer. It builds the AST defined
in package ast.

Lookahead is at most two tokens — one current, one peeked — which is
exactly what is needed to distinguish `ID =` (an assignment) from an
ID-led expression statement. Precedence is encoded directly in the
call chain (expression -> equality -> comparison -> term -> factor ->
unary -> primary), following the language's grammar directly rather
than a Pratt operator-precedence table; this mirrors a plain grammar-shaped
descent more directly than the table-driven approach in
pkgs/parser/parser.go, which this package otherwise borrows its error
style from (errors carry the offending token and what was expected).

The parser surfaces the first mismatch it finds as a *errs.Error of
kind errs.Parse; it does not attempt error recovery or collect multiple
diagnostics; the language has no resumable parse mode.
*/
package parser

import (
	"strconv"

	"github.com/loomlang/loom/ast"
	"github.com/loomlang/loom/errs"
	"github.com/loomlang/loom/lexer"
	"github.com/loomlang/loom/token"
)

// Parser walks a token slice with a single cursor.
type Parser struct {
	toks []token.Token
	pos  int
}

// New creates a Parser over an already-lexed token stream.
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks}
}

// Parse lexes and parses src in one call, the common entry point for
// the compiler, REPL, and tests.
func Parse(src string) (*ast.Program, error) {
	toks, err := lexer.Lex(src)
	if err != nil {
		return nil, err
	}
	return New(toks).ParseProgram()
}

func (p *Parser) cur() token.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return p.toks[len(p.toks)-1] // EOF
}

func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(typ token.Type) bool {
	return p.cur().Type == typ
}

// expect consumes the current token if it matches typ, else returns a
// ParseError naming what was expected.
func (p *Parser) expect(typ token.Type) (token.Token, error) {
	if !p.at(typ) {
		return token.Token{}, p.unexpected(typ)
	}
	return p.advance(), nil
}

func (p *Parser) unexpected(expected token.Type) error {
	got := p.cur()
	return errs.New(errs.Parse, got.Pos, "unexpected token %s (%q); expected %s", got.Type, got.Value, expected)
}

// optionalSemicolon consumes a trailing ';' if present; the grammar
// treats it as optional everywhere it appears.
func (p *Parser) optionalSemicolon() {
	if p.at(token.SEMICOLON) {
		p.advance()
	}
}

// ParseProgram parses the full token stream into a Program: `use`
// directives, function declarations, and top-level statements may
// appear in any order and are sorted into their respective buckets.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for !p.at(token.EOF) {
		switch p.cur().Type {
		case token.USE:
			name, err := p.parseUse()
			if err != nil {
				return nil, err
			}
			prog.Uses = append(prog.Uses, name)
		case token.FN:
			fn, err := p.parseFunction()
			if err != nil {
				return nil, err
			}
			prog.Functions = append(prog.Functions, fn)
		default:
			stmt, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			prog.Statements = append(prog.Statements, stmt)
		}
	}
	return prog, nil
}

func (p *Parser) parseUse() (string, error) {
	p.advance() // 'use'
	name, err := p.expect(token.ID)
	if err != nil {
		return "", err
	}
	p.optionalSemicolon()
	return name.Value, nil
}

func (p *Parser) parseFunction() (*ast.FunctionDef, error) {
	p.advance() // 'fn'
	name, err := p.expect(token.ID)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []string
	if !p.at(token.RPAREN) {
		for {
			param, err := p.expect(token.ID)
			if err != nil {
				return nil, err
			}
			params = append(params, param.Value)
			if p.at(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDef{Name: name.Value, Params: params, Body: body}, nil
}

// parseBlock consumes '{' <statement>* '}', returning the statements.
// If/While/function bodies all call this right after their own
// delimiters; a missing '{' is reported as a ParseError here.
func (p *Parser) parseBlock() ([]ast.Node, error) {
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var stmts []ast.Node
	for !p.at(token.RBRACE) {
		if p.at(token.EOF) {
			return nil, p.unexpected(token.RBRACE)
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	p.advance() // '}'
	return stmts, nil
}

func (p *Parser) parseStatement() (ast.Node, error) {
	switch p.cur().Type {
	case token.LET:
		return p.parseVarDecl()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.RETURN:
		return p.parseReturn()
	case token.ID:
		if p.peek().Type == token.ASSIGN {
			return p.parseAssign()
		}
		return p.parseExprStatement()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseVarDecl() (ast.Node, error) {
	p.advance() // 'let'
	name, err := p.expect(token.ID)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.optionalSemicolon()
	return &ast.VarDecl{Name: name.Value, Expr: expr}, nil
}

func (p *Parser) parseAssign() (ast.Node, error) {
	name := p.advance() // ID
	p.advance()         // '='
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.optionalSemicolon()
	return &ast.Assign{Name: name.Value, Expr: expr}, nil
}

func (p *Parser) parseIf() (ast.Node, error) {
	p.advance() // 'if'
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	thenBody, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseBody []ast.Node
	if p.at(token.ELSE) {
		p.advance()
		elseBody, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return &ast.If{Cond: cond, Then: thenBody, ElseBody: elseBody}, nil
}

func (p *Parser) parseWhile() (ast.Node, error) {
	p.advance() // 'while'
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body}, nil
}

// parseReturn desugars a bare `return;` into `return 0;`.
func (p *Parser) parseReturn() (ast.Node, error) {
	p.advance() // 'return'
	if p.at(token.SEMICOLON) {
		p.advance()
		return &ast.Return{Expr: &ast.Number{Value: 0}}, nil
	}
	if p.at(token.RBRACE) {
		return &ast.Return{Expr: &ast.Number{Value: 0}}, nil
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.optionalSemicolon()
	return &ast.Return{Expr: expr}, nil
}

func (p *Parser) parseExprStatement() (ast.Node, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.optionalSemicolon()
	return expr, nil
}

// parseExpression is the entry point of the precedence ladder.
func (p *Parser) parseExpression() (ast.Node, error) {
	return p.parseEquality()
}

func (p *Parser) parseEquality() (ast.Node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.at(token.EQEQ) || p.at(token.NEQ) {
		op := eqOp(p.advance().Type)
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *Parser) parseComparison() (ast.Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.at(token.GT) || p.at(token.LT) || p.at(token.GTE) || p.at(token.LTE) {
		op := cmpOp(p.advance().Type)
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *Parser) parseTerm() (ast.Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.at(token.PLUS) || p.at(token.MINUS) {
		op := termOp(p.advance().Type)
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *Parser) parseFactor() (ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(token.MUL) || p.at(token.DIV) {
		op := factorOp(p.advance().Type)
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Left: left, Op: op, Right: right}
	}
	return left, nil
}

// parseUnary desugars unary minus into `0 - expr`; there is no other
// unary operator in the grammar.
func (p *Parser) parseUnary() (ast.Node, error) {
	if p.at(token.MINUS) {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOp{Left: &ast.Number{Value: 0}, Op: ast.MINUS, Right: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Node, error) {
	tok := p.cur()
	switch tok.Type {
	case token.NUMBER:
		p.advance()
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, errs.New(errs.Parse, tok.Pos, "malformed number literal %q", tok.Value)
		}
		return &ast.Number{Value: v}, nil
	case token.STRING:
		p.advance()
		return &ast.String{Value: tok.Value}, nil
	case token.TRUE:
		p.advance()
		return &ast.Bool{Value: true}, nil
	case token.FALSE:
		p.advance()
		return &ast.Bool{Value: false}, nil
	case token.ID:
		p.advance()
		if p.at(token.LPAREN) {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return &ast.Call{Func: tok.Value, Args: args}, nil
		}
		return &ast.Var{Name: tok.Value}, nil
	case token.LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, errs.New(errs.Parse, tok.Pos, "unexpected token %s (%q) in expression", tok.Type, tok.Value)
	}
}

// parseArgs consumes '(' args? ')'; the opening LPAREN must be
// current when called.
func (p *Parser) parseArgs() ([]ast.Node, error) {
	p.advance() // '('
	var args []ast.Node
	if !p.at(token.RPAREN) {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.at(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

func eqOp(t token.Type) ast.Op {
	if t == token.EQEQ {
		return ast.EQEQ
	}
	return ast.NEQ
}

func cmpOp(t token.Type) ast.Op {
	switch t {
	case token.GT:
		return ast.GT
	case token.LT:
		return ast.LT
	case token.GTE:
		return ast.GTE
	default:
		return ast.LTE
	}
}

func termOp(t token.Type) ast.Op {
	if t == token.PLUS {
		return ast.PLUS
	}
	return ast.MINUS
}

func factorOp(t token.Type) ast.Op {
	if t == token.MUL {
		return ast.MUL
	}
	return ast.DIV
}
