package syntax

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// Error is a syntax error found in a parsed tree.
type Error struct {
	Line, Column int
	// Missing is set when the parser inserted a token the source lacks.
	Missing bool
	Text    string
}

func (e Error) String() string {
	if e.Missing {
		return fmt.Sprintf("%d:%d: missing %s", e.Line, e.Column, e.Text)
	}
	return fmt.Sprintf("%d:%d: unexpected %q", e.Line, e.Column, e.Text)
}

// Errors lists every ERROR and MISSING node in source order.
func (t *Tree) Errors() []Error {
	root := t.Root()
	if !root.HasError() {
		return nil
	}

	var errs []Error
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		pos := n.StartPoint()
		switch {
		case n.IsMissing():
			errs = append(errs, Error{Line: int(pos.Row) + 1, Column: int(pos.Column) + 1, Missing: true, Text: n.Type()})
			return
		case n.Type() == "ERROR":
			errs = append(errs, Error{Line: int(pos.Row) + 1, Column: int(pos.Column) + 1, Text: firstLine(n.Content(t.Source))})
			return
		case !n.HasError():
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return errs
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' || s[i] == '\r' {
			return s[:i]
		}
	}
	return s
}
