package ast

import "strings"

// FunctionLiteral is a function value: function(params) { body }. Evaluating
// it does not capture the defining environment — see the evaluator's
// dynamic-scoping note — it only produces a ClosureValue wrapping this node.
type FunctionLiteral struct {
	Parameters []*Identifier
	Body       *StatementList
	StartPos   int
}

func (f *FunctionLiteral) Pos() int        { return f.StartPos }
func (f *FunctionLiteral) expressionNode() {}
func (f *FunctionLiteral) String() string {
	parts := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		parts[i] = p.Value
	}
	return "function(" + strings.Join(parts, ", ") + ") " + f.Body.String()
}
