package printer

import "strings"

// Indent is the indentation in effect for a print command. Values are
// immutable once created and shared between every command at that level.
type Indent struct {
	value string
	width int

	deeper  *Indent
	aligned map[int]*Indent
}

// Value is the literal text written after a line break.
func (ind *Indent) Value() string { return ind.value }

// Width is the rendered column width of Value.
func (ind *Indent) Width() int { return ind.width }

// indenter derives new indentation levels, memoizing each derived level on
// its parent so repeated nesting never re-renders a level.
type indenter struct {
	unit      string
	unitWidth int
}

func newIndenter(opts Options) *indenter {
	unit := strings.Repeat(" ", opts.TabWidth)
	if opts.UseTabs {
		unit = "\t"
	}
	return &indenter{unit: unit, unitWidth: opts.TabWidth}
}

func (in *indenter) root() *Indent {
	return &Indent{}
}

func (in *indenter) increase(ind *Indent) *Indent {
	if ind.deeper == nil {
		ind.deeper = &Indent{
			value: ind.value + in.unit,
			width: ind.width + in.unitWidth,
		}
	}
	return ind.deeper
}

func (in *indenter) addAlign(ind *Indent, width int) *Indent {
	if width <= 0 {
		return ind
	}
	if next, ok := ind.aligned[width]; ok {
		return next
	}
	next := &Indent{
		value: ind.value + strings.Repeat(" ", width),
		width: ind.width + width,
	}
	if ind.aligned == nil {
		ind.aligned = make(map[int]*Indent)
	}
	ind.aligned[width] = next
	return next
}
