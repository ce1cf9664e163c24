package parser_test

import (
	"testing"

	"github.com/nox-lang/nox/internal/ast"
	"github.com/nox-lang/nox/internal/lexer"
	"github.com/nox-lang/nox/internal/parser"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("tokenize(%q): %v", src, err)
	}
	prog, err := parser.ParseProgram(toks)
	if err != nil {
		t.Fatalf("parse(%q): %v", src, err)
	}
	return prog
}

func singleExprString(t *testing.T, src string) string {
	t.Helper()
	prog := parse(t, src)
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d: %s", len(prog.Statements), prog.String())
	}
	return prog.Statements[0].String()
}

func TestArithmeticPrecedence(t *testing.T) {
	cases := map[string]string{
		"1 + 2 * 3":     "(1 + (2 * 3))",
		"(1 + 2) * 3":   "((1 + 2) * 3)",
		"1 - 2 - 3":     "((1 - 2) - 3)",
		"1 < 2 && 3 > 4": "((1 < 2) && (3 > 4))",
		"a || b && c":   "(a || (b && c))",
		"-a * b":        "((-a) * b)",
		"!a || b":       "((not a) || b)",
	}
	for src, want := range cases {
		got := singleExprString(t, src)
		if got != want {
			t.Errorf("parse(%q) = %q, want %q", src, got, want)
		}
	}
}

func TestAssignmentRightAssociative(t *testing.T) {
	got := singleExprString(t, "a = b = 4")
	want := "a = b = 4"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
	prog := parse(t, "a = b = 4")
	outer, ok := prog.Statements[0].(*ast.AssignStatement)
	if !ok {
		t.Fatalf("expected *ast.AssignStatement, got %T", prog.Statements[0])
	}
	if _, ok := outer.Value.(*ast.AssignStatement); !ok {
		t.Fatalf("expected nested assignment on the right, got %T", outer.Value)
	}
}

func TestDottedAndBracketedAccessBothLowerToComplexExpression(t *testing.T) {
	prog := parse(t, "x.a")
	stmt := prog.Statements[0].(*ast.ExpressionStatement)
	dotted, ok := stmt.Value.(*ast.ComplexExpression)
	if !ok || !dotted.DotForm {
		t.Fatalf("expected dotted ComplexExpression, got %#v", stmt.Value)
	}
	if lit, ok := dotted.Index.(*ast.StringLiteral); !ok || lit.Value != "a" {
		t.Fatalf("expected index string literal %q, got %#v", "a", dotted.Index)
	}

	prog2 := parse(t, `x["a"]`)
	stmt2 := prog2.Statements[0].(*ast.ExpressionStatement)
	bracketed, ok := stmt2.Value.(*ast.ComplexExpression)
	if !ok || bracketed.DotForm {
		t.Fatalf("expected non-dotted ComplexExpression, got %#v", stmt2.Value)
	}
}

func TestNamedFunctionSugarRewritesToAssignment(t *testing.T) {
	prog := parse(t, "function add(a, b) { return a + b }")
	asg, ok := prog.Statements[0].(*ast.AssignStatement)
	if !ok {
		t.Fatalf("expected *ast.AssignStatement, got %T", prog.Statements[0])
	}
	ident, ok := asg.Target.(*ast.Identifier)
	if !ok || ident.Value != "add" {
		t.Fatalf("expected target identifier 'add', got %#v", asg.Target)
	}
	if _, ok := asg.Value.(*ast.FunctionLiteral); !ok {
		t.Fatalf("expected function literal value, got %T", asg.Value)
	}
}

func TestStatementSeparatorTolerance(t *testing.T) {
	srcs := []string{
		";;;a = 1;;; b = 2;;;",
		"if (true) { a = 1 } b = 2",
		"while (false) { a = 1 } b = 2",
		"function f() { return 1 } b = 2",
	}
	for _, src := range srcs {
		prog := parse(t, src)
		if len(prog.Statements) != 2 {
			t.Errorf("parse(%q): expected 2 statements, got %d", src, len(prog.Statements))
		}
	}
}

func TestMissingSeparatorIsAnError(t *testing.T) {
	toks, err := lexer.Tokenize("a = 1 b = 2")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if _, err := parser.ParseProgram(toks); err == nil {
		t.Fatalf("expected a missing-separator parse error")
	}
}

func TestElseIfChaining(t *testing.T) {
	prog := parse(t, `if (a) { b = 1 } else if (c) { b = 2 } else { b = 3 }`)
	ifStmt := prog.Statements[0].(*ast.IfStatement)
	if ifStmt.Else == nil || len(ifStmt.Else.Statements) != 1 {
		t.Fatalf("expected else branch with one nested if statement")
	}
	if _, ok := ifStmt.Else.Statements[0].(*ast.IfStatement); !ok {
		t.Fatalf("expected nested if statement in else branch, got %T", ifStmt.Else.Statements[0])
	}
}

func TestTrailingCommasInAggregatesAndCalls(t *testing.T) {
	srcs := []string{
		"[1, 2, 3,]",
		`{"a": 1, "b": 2,}`,
		"f(1, 2,)",
	}
	for _, src := range srcs {
		if _, err := func() (*ast.Program, error) {
			toks, err := lexer.Tokenize(src)
			if err != nil {
				return nil, err
			}
			return parser.ParseProgram(toks)
		}(); err != nil {
			t.Errorf("parse(%q): unexpected error: %v", src, err)
		}
	}
}

func TestInvalidAssignmentTargetIsAnError(t *testing.T) {
	toks, err := lexer.Tokenize("1 = 2")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if _, err := parser.ParseProgram(toks); err == nil {
		t.Fatalf("expected an invalid-assignment-target error")
	}
}
