// Package ast defines the node taxonomy produced by the parser and walked by
// the evaluator: a closed set of tagged variants, one family of files per
// concern (literals, aggregates, operators, complex/call, function, control
// flow/statements, program).
package ast

// Node is the interface every AST node implements: its byte offset into the
// source (for error reporting) and a debug string form.
type Node interface {
	Pos() int
	String() string
}

// Expression is any node that produces a value when evaluated.
type Expression interface {
	Node
	expressionNode()
}

// Statement is any node executed for effect.
type Statement interface {
	Node
	statementNode()
}

// Program is the root node: the implicit top-level statement list.
type Program struct {
	Statements []Statement
	StartPos   int
}

func (p *Program) Pos() int { return p.StartPos }
func (p *Program) String() string {
	return stringifyStatements(p.Statements)
}
