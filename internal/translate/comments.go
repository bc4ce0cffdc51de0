package translate

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"gopretty/internal/doc"
)

// comment renders a comment child, given the gap separating it from the
// sibling before it.
func (t *translator) comment(c *sitter.Node, g gap) []doc.Doc {
	text := t.tree.Text(c)
	block := strings.HasPrefix(text, "/*")

	if !t.ownLine(c) {
		if block {
			return []doc.Doc{g.doc(), t.verbatim(c)}
		}
		return []doc.Doc{doc.TrailingComment{Text: strings.TrimRight(text, " \t")}}
	}

	if t.regions[c.StartByte()] {
		_, end := regionMarker(text)
		return []doc.Doc{g.doc(), doc.Trim{}, doc.Region{Text: strings.TrimRight(text, " \t"), End: end}}
	}

	if block {
		return []doc.Doc{g.doc(), doc.LeadingComment{Text: t.linePrefix(c) + text, Kind: doc.MultiLine}}
	}
	return []doc.Doc{g.doc(), doc.LeadingComment{Text: strings.TrimRight(text, " \t"), Kind: doc.SingleLine}}
}

// linePrefix is the whitespace between the start of the line and n.
func (t *translator) linePrefix(n *sitter.Node) string {
	start := int(n.StartByte())
	i := start
	for i > 0 && (t.src[i-1] == ' ' || t.src[i-1] == '\t') {
		i--
	}
	return string(t.src[i:start])
}

// ownLine reports whether only whitespace precedes n on its line.
func (t *translator) ownLine(n *sitter.Node) bool {
	i := int(n.StartByte()) - len(t.linePrefix(n))
	return i == 0 || t.src[i-1] == '\n'
}

// scanComments records every comment position and pairs up region markers
// that sit on their own line.
func (t *translator) scanComments(root *sitter.Node) {
	var open []uint32
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "comment" {
			t.comments = append(t.comments, n.StartByte())
			if !t.ownLine(n) {
				return
			}
			isMarker, end := regionMarker(t.tree.Text(n))
			switch {
			case !isMarker:
			case !end:
				open = append(open, n.StartByte())
			case len(open) > 0:
				t.regions[open[len(open)-1]] = true
				t.regions[n.StartByte()] = true
				open = open[:len(open)-1]
			}
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
}

// regionMarker recognizes "//region name" and "//endregion" comments, with
// or without a space after the slashes and with an optional "#".
func regionMarker(text string) (ok, end bool) {
	if !strings.HasPrefix(text, "//") {
		return false, false
	}
	body := strings.TrimPrefix(strings.TrimLeft(text[2:], " \t"), "#")
	for _, kw := range []string{"endregion", "region"} {
		rest, found := strings.CutPrefix(body, kw)
		if !found {
			continue
		}
		if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
			return false, false
		}
		return true, kw == "endregion"
	}
	return false, false
}
