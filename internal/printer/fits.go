package printer

import "gopretty/internal/doc"

// mode is the layout a command renders in.
type mode uint8

const (
	modeBreak mode = iota
	modeFlat
	modeForceFlat
)

func (m mode) String() string {
	switch m {
	case modeBreak:
		return "break"
	case modeFlat:
		return "flat"
	case modeForceFlat:
		return "force-flat"
	default:
		return "invalid"
	}
}

// command renders doc at indent in mode.
type command struct {
	indent *Indent
	mode   mode
	doc    doc.Doc
}

// fits simulates printing next followed by the pending rest commands (top of
// the stack last) and reports whether the output stays within width columns
// up to the first line break that is certain to happen. trailing is the width
// of the whitespace already at the end of the output. Nothing is written and
// no printer state is modified.
func fits(next command, rest []command, width, trailing int, groupModes map[doc.GroupID]mode, in *indenter, tabWidth int) bool {
	remaining := width
	restIdx := len(rest)
	cmds := []command{next}

	for remaining >= 0 {
		if len(cmds) == 0 {
			if restIdx == 0 {
				return true
			}
			restIdx--
			cmds = append(cmds, rest[restIdx])
			continue
		}

		cmd := cmds[len(cmds)-1]
		cmds = cmds[:len(cmds)-1]

		switch d := cmd.doc.(type) {
		case nil:

		case doc.Text:
			if d == "" {
				continue
			}
			w := textWidth(string(d), tabWidth)
			remaining -= w
			if n, tw := trailingWhitespace(d, tabWidth); n == len(d) {
				trailing += tw
			} else {
				trailing = tw
			}

		case doc.Concat:
			for i := len(d) - 1; i >= 0; i-- {
				cmds = append(cmds, command{cmd.indent, cmd.mode, d[i]})
			}

		case doc.Fill:
			// Only the first content decides whether this position fits; the
			// rest is decided pair by pair when the fill is printed.
			if len(d.Parts) > 0 {
				cmds = append(cmds, command{cmd.indent, cmd.mode, d.Parts[0]})
			}

		case doc.Indent:
			cmds = append(cmds, command{in.increase(cmd.indent), cmd.mode, d.Contents})

		case doc.Align:
			cmds = append(cmds, command{in.addAlign(cmd.indent, d.Width), cmd.mode, d.Contents})

		case doc.Trim:
			remaining += trailing
			trailing = 0

		case *doc.Group:
			m := cmd.mode
			if d.Break {
				m = modeBreak
			}
			cmds = append(cmds, command{cmd.indent, m, d.Contents})

		case *doc.ConditionalGroup:
			if len(d.Options) == 0 {
				continue
			}
			if d.Break {
				cmds = append(cmds, command{cmd.indent, modeBreak, d.Options[len(d.Options)-1]})
			} else {
				cmds = append(cmds, command{cmd.indent, cmd.mode, d.Options[0]})
			}

		case doc.IfBreak:
			m := cmd.mode
			if !d.GroupID.IsZero() {
				recorded, ok := groupModes[d.GroupID]
				if !ok {
					abort(&UnresolvedGroupError{ID: d.GroupID})
				}
				m = recorded
			}
			if m == modeBreak {
				cmds = append(cmds, command{cmd.indent, cmd.mode, d.Break})
			} else {
				cmds = append(cmds, command{cmd.indent, cmd.mode, d.Flat})
			}

		case doc.Line:
			if d.Kind == doc.Hard || d.Kind == doc.Literal || cmd.mode == modeBreak {
				return true
			}
			if d.Kind == doc.Normal {
				remaining--
				trailing++
			}

		case doc.ForceFlat:
			cmds = append(cmds, command{cmd.indent, modeForceFlat, d.Contents})

		case doc.AlwaysFits:
			return true

		case doc.BreakParent, doc.LeadingComment, doc.TrailingComment, doc.Region:

		default:
			abort(unknownDoc(d))
		}
	}
	return false
}
