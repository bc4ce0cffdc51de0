// Package syntax wraps tree-sitter parsing for the languages gopretty formats.
package syntax

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Tree is a parsed source file.
type Tree struct {
	Lang   *Language
	Source []byte

	tree *sitter.Tree
}

// Parse parses src with the grammar of lang.
func Parse(ctx context.Context, lang *Language, src []byte) (*Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(lang.grammar())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s source: %w", lang.Name, err)
	}
	return &Tree{Lang: lang, Source: src, tree: tree}, nil
}

// Root is the root node of the tree.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Text is the source text n spans.
func (t *Tree) Text(n *sitter.Node) string {
	return n.Content(t.Source)
}

// PackageName returns the package clause name of a Go file, or "" when there
// is none.
func (t *Tree) PackageName() string {
	if t.Lang != Go {
		return ""
	}
	q, err := sitter.NewQuery([]byte(`(package_clause (package_identifier) @pkg)`), t.Lang.grammar())
	if err != nil {
		return ""
	}
	qc := sitter.NewQueryCursor()
	qc.Exec(q, t.Root())
	if m, ok := qc.NextMatch(); ok && len(m.Captures) > 0 {
		return m.Captures[0].Node.Content(t.Source)
	}
	return ""
}

// Dump renders the tree one node per line, children indented under their
// parent. Leaves carry their source text.
func (t *Tree) Dump() string {
	var sb strings.Builder
	var walk func(n *sitter.Node, depth int)
	walk = func(n *sitter.Node, depth int) {
		start, end := n.StartPoint(), n.EndPoint()
		sb.WriteString(strings.Repeat("  ", depth))
		if n.IsNamed() {
			sb.WriteString(n.Type())
		} else {
			fmt.Fprintf(&sb, "%q", n.Type())
		}
		fmt.Fprintf(&sb, " [%d:%d-%d:%d]", start.Row+1, start.Column+1, end.Row+1, end.Column+1)
		if n.ChildCount() == 0 && n.IsNamed() {
			fmt.Fprintf(&sb, " %q", n.Content(t.Source))
		}
		sb.WriteByte('\n')
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), depth+1)
		}
	}
	walk(t.Root(), 0)
	return sb.String()
}
