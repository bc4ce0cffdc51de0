// Package translate turns a parsed syntax tree into a document for the
// printer.
//
// The translation is layout-preserving by default: tokens are reproduced as
// written and the whitespace between them is normalized (runs of spaces become
// one space, line breaks stay, blank lines collapse to one). Bracketed
// interiors are indented, and delimited lists become groups the printer is
// free to lay out flat or one item per line.
package translate

import (
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"gopretty/internal/doc"
	"gopretty/internal/syntax"
)

// rules names the node types that get structural treatment.
type rules struct {
	// lines are nodes whose children are separated by line breaks without a
	// continuation indent.
	lines map[string]bool
	// lists are delimited, comma separated lists.
	lists map[string]bool
	// cases end their header with ":" and indent what follows.
	cases map[string]bool
	// flatBodies keep their bracketed interior at the outer indentation.
	flatBodies map[string]bool
	// forceBreakLists stay broken when the source breaks after the opener.
	forceBreakLists map[string]bool
}

var goRules = rules{
	lines: set("source_file", "statement_list"),
	lists: set("argument_list", "parameter_list", "literal_value"),
	cases: set("expression_case", "default_case", "type_case", "communication_case"),
	flatBodies: set(
		"expression_switch_statement",
		"type_switch_statement",
		"select_statement",
	),
	forceBreakLists: set("literal_value"),
}

// Go translates a tree parsed with the Go grammar.
func Go(tree *syntax.Tree) doc.Doc {
	return newTranslator(tree, goRules).node(tree.Root())
}

type translator struct {
	tree  *syntax.Tree
	src   []byte
	rules rules

	// comments holds the start offset of every comment, ascending.
	comments []uint32
	// regions marks the region comments that have a partner.
	regions map[uint32]bool
}

func newTranslator(tree *syntax.Tree, r rules) *translator {
	t := &translator{tree: tree, src: tree.Source, rules: r, regions: make(map[uint32]bool)}
	t.scanComments(tree.Root())
	return t
}

func (t *translator) node(n *sitter.Node) doc.Doc {
	if n.ChildCount() == 0 || t.tree.Lang.Verbatim(n) {
		return t.verbatim(n)
	}
	kids := t.children(n)
	if t.hasTextGaps(kids) {
		return t.verbatim(n)
	}
	if t.rules.lists[n.Type()] {
		if d, ok := t.list(n, kids); ok {
			return d
		}
	}
	return t.sequence(n, kids)
}

// verbatim reproduces the source of n exactly. Line breaks inside it do not
// pick up indentation.
func (t *translator) verbatim(n *sitter.Node) doc.Doc {
	lines := strings.Split(t.tree.Text(n), "\n")
	parts := make([]doc.Doc, 0, 2*len(lines))
	for i, line := range lines {
		if i > 0 {
			parts = append(parts, doc.LiteralLine)
		}
		parts = append(parts, doc.Text(line))
	}
	return doc.Cat(parts...)
}

// children drops statement terminators that are line breaks, and tokens the
// parser invented.
func (t *translator) children(n *sitter.Node) []*sitter.Node {
	kids := make([]*sitter.Node, 0, n.ChildCount())
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "\n" || c.StartByte() == c.EndByte() {
			continue
		}
		kids = append(kids, c)
	}
	return kids
}

func (t *translator) hasTextGaps(kids []*sitter.Node) bool {
	for i := 1; i < len(kids); i++ {
		g := t.src[kids[i-1].EndByte():kids[i].StartByte()]
		if strings.TrimSpace(string(g)) != "" {
			return true
		}
	}
	return false
}

func (t *translator) sequence(n *sitter.Node, kids []*sitter.Node) doc.Doc {
	lines := t.rules.lines[n.Type()]

	if t.rules.cases[n.Type()] {
		for i, k := range kids {
			if k.Type() == ":" {
				return doc.Cat(
					t.run(kids[:i+1], lines, nil),
					doc.Indent{Contents: t.run(kids[i+1:], true, k)},
				)
			}
		}
	}

	if i, j, ok := brackets(kids); ok {
		var body doc.Doc = t.run(kids[i+1:j], true, kids[i])
		if !t.rules.flatBodies[n.Type()] {
			body = doc.Indent{Contents: body}
		}
		return doc.Cat(
			t.run(kids[:i+1], lines, nil),
			body,
			t.run(kids[j:], lines, kids[j-1]),
		)
	}

	return t.run(kids, lines, nil)
}

// run renders kids with the source layout between them. When after is set,
// the gap between it and the first kid comes first. In a run of lines, line
// breaks keep the current indentation; otherwise the first break inside the
// run indents the remainder as a continuation.
func (t *translator) run(kids []*sitter.Node, lines bool, after *sitter.Node) doc.Doc {
	parts := make([]doc.Doc, 0, 2*len(kids))
	cont := -1
	prev := after

	for i, k := range kids {
		var g gap
		if prev != nil {
			g = t.gap(prev, k)
		}
		if g.newlines > 0 && !lines && cont < 0 && !(i == 0 && after != nil) {
			cont = len(parts)
		}

		if k.Type() == "comment" {
			parts = append(parts, t.comment(k, g)...)
		} else {
			parts = append(parts, g.doc(), t.node(k))
		}
		prev = k
	}

	if cont >= 0 {
		rest := doc.Cat(parts[cont:]...)
		parts = append(parts[:cont:cont], doc.Indent{Contents: rest})
	}
	return doc.Cat(parts...)
}

// list lays out a delimited list as a group: flat when it fits, otherwise one
// item per line with a trailing comma. Lists with comments or with items that
// span several lines keep their source layout.
func (t *translator) list(n *sitter.Node, kids []*sitter.Node) (doc.Doc, bool) {
	if len(kids) < 2 || t.hasComments(n) {
		return nil, false
	}
	open, close := kids[0], kids[len(kids)-1]
	if closer[open.Type()] == "" || closer[open.Type()] != close.Type() {
		return nil, false
	}

	var items [][]*sitter.Node
	var cur []*sitter.Node
	for _, k := range kids[1 : len(kids)-1] {
		if k.Type() == "," {
			if len(cur) == 0 {
				return nil, false
			}
			items = append(items, cur)
			cur = nil
			continue
		}
		cur = append(cur, k)
	}
	if len(cur) > 0 {
		items = append(items, cur)
	}

	if len(items) == 0 {
		return doc.Cat(doc.Text(open.Type()), doc.Text(close.Type())), true
	}

	docs := make([]doc.Doc, len(items))
	for i, item := range items {
		first, last := item[0], item[len(item)-1]
		if strings.Contains(string(t.src[first.StartByte():last.EndByte()]), "\n") {
			return nil, false
		}
		docs[i] = t.run(item, false, nil)
	}

	broken := t.rules.forceBreakLists[n.Type()] && t.gap(open, items[0][0]).newlines > 0
	return &doc.Group{
		Break: broken,
		Contents: doc.Concat{
			doc.Text(open.Type()),
			doc.Indented(doc.SoftLine, doc.Join(doc.Concat{doc.Text(","), doc.NormalLine}, docs)),
			doc.IfBreak{Break: doc.Text(",")},
			doc.SoftLine,
			doc.Text(close.Type()),
		},
	}, true
}

var closer = map[string]string{"(": ")", "[": "]", "{": "}"}

// brackets finds the first opening bracket among kids and the last matching
// closer after it.
func brackets(kids []*sitter.Node) (open, close int, ok bool) {
	for i, k := range kids {
		want := closer[k.Type()]
		if want == "" {
			continue
		}
		for j := len(kids) - 1; j > i; j-- {
			if kids[j].Type() == want {
				return i, j, true
			}
		}
		return 0, 0, false
	}
	return 0, 0, false
}

type gap struct {
	newlines int
	spaced   bool
}

// gap measures the source between the text emitted for from and the start of
// to. A terminator dropped from the end of from belongs to the gap.
func (t *translator) gap(from, to *sitter.Node) gap {
	end := t.contentEnd(from)
	if to.StartByte() <= end {
		return gap{}
	}
	g := t.src[end:to.StartByte()]
	return gap{newlines: strings.Count(string(g), "\n"), spaced: len(g) > 0}
}

// contentEnd is the offset where the text emitted for n ends.
func (t *translator) contentEnd(n *sitter.Node) uint32 {
	if n.ChildCount() == 0 || t.tree.Lang.Verbatim(n) {
		return n.EndByte()
	}
	kids := t.children(n)
	if len(kids) == 0 {
		return n.StartByte()
	}
	if t.hasTextGaps(kids) {
		return n.EndByte()
	}
	return t.contentEnd(kids[len(kids)-1])
}

func (g gap) doc() doc.Doc {
	switch {
	case g.newlines > 1:
		return doc.Concat{doc.HardLine, doc.HardLine}
	case g.newlines == 1:
		return doc.HardLine
	case g.spaced:
		return doc.Text(" ")
	default:
		return nil
	}
}

func (t *translator) hasComments(n *sitter.Node) bool {
	start, end := n.StartByte(), n.EndByte()
	i := sort.Search(len(t.comments), func(i int) bool { return t.comments[i] >= start })
	return i < len(t.comments) && t.comments[i] < end
}

func set(types ...string) map[string]bool {
	m := make(map[string]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}
