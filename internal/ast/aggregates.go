package ast

import "strings"

// ListLiteral is an array literal: [a, b, c].
type ListLiteral struct {
	Items    []Expression
	StartPos int
}

func (l *ListLiteral) Pos() int        { return l.StartPos }
func (l *ListLiteral) expressionNode() {}
func (l *ListLiteral) String() string {
	parts := make([]string, len(l.Items))
	for i, it := range l.Items {
		parts[i] = it.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ObjectEntry is a single key/value pair inside an ObjectLiteral. Key is an
// expression (it must evaluate to a string at runtime), not a bare name,
// so {"a" + "b": 1} is legal.
type ObjectEntry struct {
	Key   Expression
	Value Expression
}

// ObjectLiteral is an object literal: {"a": 1, "b": 2}.
type ObjectLiteral struct {
	Items    []ObjectEntry
	StartPos int
}

func (o *ObjectLiteral) Pos() int        { return o.StartPos }
func (o *ObjectLiteral) expressionNode() {}
func (o *ObjectLiteral) String() string {
	parts := make([]string, len(o.Items))
	for i, it := range o.Items {
		parts[i] = it.Key.String() + ": " + it.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
