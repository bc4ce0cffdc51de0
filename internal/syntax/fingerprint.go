package syntax

import sitter "github.com/smacker/go-tree-sitter"

// Fingerprint flattens the tree into the sequence of its named nodes, in
// document order, leaving out comments. Leaves and verbatim nodes include
// their text. A statement terminator, line break or semicolon alike, appears
// as a "terminator" entry when more code follows it; one right before a
// closing bracket or the end of the file is optional and left out. Two
// sources with equal fingerprints differ only in layout, punctuation the
// grammar leaves anonymous, and comments.
func Fingerprint(t *Tree) []string {
	var out []string
	pending := false
	flush := func() {
		if pending {
			out = append(out, terminator)
			pending = false
		}
	}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "comment":
			return
		case "\n", ";":
			if n.EndByte() > n.StartByte() {
				pending = true
			}
			return
		}

		switch {
		case n.IsNamed():
			flush()
			if n.ChildCount() == 0 || t.Lang.Verbatim(n) {
				out = append(out, n.Type()+" "+n.Content(t.Source))
				return
			}
			out = append(out, n.Type())
		case n.ChildCount() == 0:
			if n.Type() == "}" || n.Type() == ")" {
				pending = false
			} else {
				flush()
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(t.Root())
	return out
}

const terminator = "terminator"

// Diff returns the index of the first entry where a and b differ, or -1 when
// they are equal.
func Diff(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return min(len(a), len(b))
	}
	return -1
}
