// Package doc defines the layout primitives consumed by the printer.
//
// A document is an acyclic tree of values implementing Doc. Documents carry no
// behavior of their own; the printer package decides how each primitive is
// rendered at a given width. The only mutation ever applied to a built tree is
// PropagateBreaks, which sets the Break flag of groups that cannot print flat.
package doc

// Doc is any layout primitive. A nil Doc is the empty document.
type Doc interface {
	isDoc()
}

// LineKind selects how a Line renders.
type LineKind uint8

const (
	// Normal renders as a single space when flat.
	Normal LineKind = iota
	// Soft renders as nothing when flat.
	Soft
	// Hard always breaks, even inside a flat group.
	Hard
	// Literal always breaks and does not re-indent the following text.
	Literal
)

func (k LineKind) String() string {
	switch k {
	case Normal:
		return "Normal"
	case Soft:
		return "Soft"
	case Hard:
		return "Hard"
	case Literal:
		return "Literal"
	default:
		return "InvalidLine"
	}
}

// CommentKind distinguishes line comments from block comments.
type CommentKind uint8

const (
	SingleLine CommentKind = iota
	MultiLine
)

// GroupID is an opaque handle naming a group so an IfBreak can follow the
// mode that group was printed in. The zero GroupID names no group.
type GroupID struct {
	tag *idTag
}

type idTag struct {
	name string
}

// NewGroupID returns a fresh handle. Handles compare by identity, so two calls
// with the same name yield distinct ids.
func NewGroupID(name string) GroupID {
	return GroupID{tag: &idTag{name: name}}
}

// IsZero reports whether id names no group.
func (id GroupID) IsZero() bool { return id.tag == nil }

func (id GroupID) String() string {
	if id.tag == nil {
		return "<none>"
	}
	return id.tag.name
}

// Text is a literal string. It must not contain line breaks; use Line values
// between the pieces of multi-line text instead.
type Text string

// Concat prints its parts in order.
type Concat []Doc

// Line is a breakable point. Squash suppresses the break when the output
// already ends in an empty line.
type Line struct {
	Kind   LineKind
	Squash bool
}

// Indent renders Contents one indentation unit deeper.
type Indent struct {
	Contents Doc
}

// Align renders Contents with Width extra columns of space padding.
type Align struct {
	Contents Doc
	Width    int
}

// Group renders Contents either fully flat or fully broken.
type Group struct {
	Contents Doc
	Break    bool
	ID       GroupID
}

// ConditionalGroup offers Options ordered from most flat to most expanded.
// The last option is the fallback printed when nothing else fits.
type ConditionalGroup struct {
	Options []Doc
	Break   bool
	ID      GroupID
}

// Fill alternates content and separator parts, deciding each pair
// independently: content, sep, content, ..., content.
type Fill struct {
	Parts []Doc
}

// IfBreak resolves to Break or Flat depending on the enclosing mode, or on the
// recorded mode of the group named by GroupID when set.
type IfBreak struct {
	Break   Doc
	Flat    Doc
	GroupID GroupID
}

// BreakParent forces every enclosing group to break.
type BreakParent struct{}

// Trim removes trailing whitespace already written to the output.
type Trim struct{}

// ForceFlat renders Contents in flat mode regardless of the enclosing mode.
type ForceFlat struct {
	Contents Doc
}

// AlwaysFits is transparent when printing; width measurement treats it as
// fitting without looking inside.
type AlwaysFits struct {
	Contents Doc
}

// LeadingComment is a comment printed on its own line(s) before code.
type LeadingComment struct {
	Text string
	Kind CommentKind
}

// TrailingComment is a comment printed at the end of the current line.
type TrailingComment struct {
	Text string
}

// Region is a start or end banner. The end marker reuses the indentation that
// was active at its start marker.
type Region struct {
	Text string
	End  bool
}

func (Text) isDoc()              {}
func (Concat) isDoc()            {}
func (Line) isDoc()              {}
func (Indent) isDoc()            {}
func (Align) isDoc()             {}
func (*Group) isDoc()            {}
func (*ConditionalGroup) isDoc() {}
func (Fill) isDoc()              {}
func (IfBreak) isDoc()           {}
func (BreakParent) isDoc()       {}
func (Trim) isDoc()              {}
func (ForceFlat) isDoc()         {}
func (AlwaysFits) isDoc()        {}
func (LeadingComment) isDoc()    {}
func (TrailingComment) isDoc()   {}
func (Region) isDoc()            {}
