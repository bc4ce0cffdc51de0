// Package printer renders documents built with package doc into text that
// stays within a configured width wherever the document allows it.
//
// Print is a stack machine: every pending piece of work is a command (indent,
// mode, doc) on an explicit LIFO stack, so arbitrarily deep documents never
// recurse. Group decisions look ahead with fits, which measures a candidate
// together with everything still on the stack.
package printer

import (
	"bytes"
	"strings"

	"gopretty/internal/doc"
)

// Print propagates forced breaks through d and renders it. The result always
// ends with exactly one opts.EndOfLine. An error is returned only for a
// malformed document: an IfBreak that refers to a group not printed yet, a
// region end with no open region, or a value the printer does not know.
func Print(d doc.Doc, opts Options) (result string, err error) {
	doc.PropagateBreaks(d)

	p := newPrinter(d, opts.withDefaults())
	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(fatal)
			if !ok {
				panic(r)
			}
			result, err = "", f.err
		}
	}()
	return p.print(), nil
}

type printer struct {
	opts Options
	in   *indenter

	cmds          []command
	groupModes    map[doc.GroupID]mode
	regionIndents []*Indent

	out    bytes.Buffer
	column int

	// shouldRemeasure is set when a line broke inside flat content; the next
	// group can no longer trust the flat decision made above it.
	shouldRemeasure bool
	// newlineNextText and skipNextNewline defer the line break that follows
	// a trailing comment until the next real text.
	newlineNextText bool
	skipNextNewline bool
}

func newPrinter(d doc.Doc, opts Options) *printer {
	p := &printer{
		opts:       opts,
		in:         newIndenter(opts),
		groupModes: make(map[doc.GroupID]mode),
	}
	p.cmds = append(p.cmds, command{p.in.root(), modeBreak, d})
	return p
}

func (p *printer) print() string {
	for len(p.cmds) > 0 {
		cmd := p.cmds[len(p.cmds)-1]
		p.cmds = p.cmds[:len(p.cmds)-1]
		p.process(cmd)
	}

	// Exactly one line ending, and no whitespace before it.
	b := p.out.Bytes()
	end := len(b)
	for end > 0 && strings.IndexByte(" \t\r\n", b[end-1]) >= 0 {
		end--
	}
	result := string(b[:end])
	if p.opts.TrimInitialLines {
		result = strings.TrimLeft(result, "\r\n")
	}
	return result + p.opts.EndOfLine
}

func (p *printer) push(d doc.Doc, m mode, ind *Indent) {
	p.cmds = append(p.cmds, command{ind, m, d})
}

func (p *printer) process(cmd command) {
	switch d := cmd.doc.(type) {
	case nil:

	case doc.Text:
		p.text(string(d), cmd.indent)

	case doc.Concat:
		for i := len(d) - 1; i >= 0; i-- {
			p.push(d[i], cmd.mode, cmd.indent)
		}

	case doc.Fill:
		p.fill(cmd, d.Parts)

	case doc.Indent:
		p.push(d.Contents, cmd.mode, p.in.increase(cmd.indent))

	case doc.Align:
		p.push(d.Contents, cmd.mode, p.in.addAlign(cmd.indent, d.Width))

	case doc.Trim:
		p.trim()
		p.newlineNextText = false

	case *doc.Group:
		p.group(cmd, d.Contents, d.Break, nil, d.ID)

	case *doc.ConditionalGroup:
		var first doc.Doc
		if len(d.Options) > 0 {
			first = d.Options[0]
		}
		p.group(cmd, first, d.Break, d.Options, d.ID)

	case doc.IfBreak:
		m := cmd.mode
		if !d.GroupID.IsZero() {
			recorded, ok := p.groupModes[d.GroupID]
			if !ok {
				abort(&UnresolvedGroupError{ID: d.GroupID})
			}
			m = recorded
		}
		if m == modeBreak {
			p.push(d.Break, cmd.mode, cmd.indent)
		} else {
			p.push(d.Flat, cmd.mode, cmd.indent)
		}

	case doc.Line:
		p.line(d, cmd.mode, cmd.indent)

	case doc.BreakParent:

	case doc.LeadingComment:
		p.trim()
		if b := p.out.Bytes(); (len(b) > 0 && b[len(b)-1] != '\n') || p.newlineNextText {
			p.out.WriteString(p.opts.EndOfLine)
		}
		p.comment(d, cmd.indent)
		p.newlineNextText = false
		p.skipNextNewline = false

	case doc.TrailingComment:
		p.trim()
		p.out.WriteByte(' ')
		p.out.WriteString(d.Text)
		p.column += 1 + textWidth(d.Text, p.opts.TabWidth)
		if cmd.mode != modeForceFlat {
			p.newlineNextText = true
			p.skipNextNewline = true
		}

	case doc.ForceFlat:
		p.push(d.Contents, modeForceFlat, cmd.indent)

	case doc.AlwaysFits:
		p.push(d.Contents, cmd.mode, cmd.indent)

	case doc.Region:
		ind := cmd.indent
		if d.End {
			n := len(p.regionIndents)
			if n == 0 {
				abort(unmatchedRegion(d.Text))
			}
			ind = p.regionIndents[n-1]
			p.regionIndents = p.regionIndents[:n-1]
		} else {
			p.regionIndents = append(p.regionIndents, ind)
		}
		p.out.WriteString(ind.value)
		p.out.WriteString(d.Text)
		p.column = ind.width + textWidth(d.Text, p.opts.TabWidth)

	default:
		abort(unknownDoc(d))
	}
}

func (p *printer) text(s string, ind *Indent) {
	if s == "" {
		return
	}
	// A space right after a trailing comment would end up at the start of
	// the deferred line.
	if p.newlineNextText && p.skipNextNewline && s == " " {
		return
	}
	if p.newlineNextText {
		p.trim()
		p.out.WriteString(p.opts.EndOfLine)
		p.out.WriteString(ind.value)
		p.column = ind.width
		p.newlineNextText = false
	}
	p.out.WriteString(s)
	p.column += textWidth(s, p.opts.TabWidth)
}

func (p *printer) line(l doc.Line, m mode, ind *Indent) {
	if m != modeBreak {
		switch l.Kind {
		case doc.Soft:
			return
		case doc.Normal:
			p.out.WriteByte(' ')
			p.column++
			return
		}
		// A hard line inside flat content: groups measured before this point
		// assumed it would not happen.
		p.shouldRemeasure = true
	}

	if l.Squash && p.out.Len() > 0 && endsWithEmptyLine(p.out.Bytes()) {
		return
	}

	if l.Kind == doc.Literal {
		if p.out.Len() > 0 {
			p.out.WriteString(p.opts.EndOfLine)
			p.column = 0
		}
		return
	}

	if !p.skipNextNewline || !p.newlineNextText {
		p.trim()
		p.out.WriteString(p.opts.EndOfLine)
		p.out.WriteString(ind.value)
		p.column = ind.width
	}
	p.skipNextNewline = false
}

func (p *printer) group(cmd command, contents doc.Doc, broken bool, options []doc.Doc, id doc.GroupID) {
	if cmd.mode != modeBreak && !p.shouldRemeasure {
		switch {
		case broken && len(options) > 0:
			p.push(options[len(options)-1], modeBreak, cmd.indent)
		case broken:
			p.push(contents, modeBreak, cmd.indent)
		default:
			p.push(contents, cmd.mode, cmd.indent)
		}
	} else {
		p.shouldRemeasure = false
		flat := command{cmd.indent, modeFlat, contents}

		switch {
		case !broken && p.fitsAs(flat, id):
			p.cmds = append(p.cmds, flat)

		case len(options) > 0 && broken:
			p.push(options[len(options)-1], modeBreak, cmd.indent)

		case len(options) > 0:
			chosen := command{cmd.indent, cmd.mode, options[len(options)-1]}
			for _, opt := range options[1:] {
				try := command{cmd.indent, cmd.mode, opt}
				if p.fitsAs(try, id) {
					chosen = try
					break
				}
			}
			p.cmds = append(p.cmds, chosen)

		default:
			p.push(contents, modeBreak, cmd.indent)
		}
	}

	if !id.IsZero() {
		p.groupModes[id] = p.cmds[len(p.cmds)-1].mode
	}
}

// fill decides the next content/separator pair and re-queues the remaining
// parts as a shorter Fill sharing the same backing slice.
func (p *printer) fill(cmd command, parts []doc.Doc) {
	if len(parts) == 0 {
		return
	}

	content := parts[0]
	contentFlat := command{cmd.indent, modeFlat, content}
	contentBreak := command{cmd.indent, modeBreak, content}
	contentFits := p.fits(contentFlat)

	if len(parts) == 1 {
		if contentFits {
			p.cmds = append(p.cmds, contentFlat)
		} else {
			p.cmds = append(p.cmds, contentBreak)
		}
		return
	}

	sep := parts[1]
	sepFlat := command{cmd.indent, modeFlat, sep}
	sepBreak := command{cmd.indent, modeBreak, sep}

	if len(parts) == 2 {
		if contentFits {
			p.cmds = append(p.cmds, sepFlat, contentFlat)
		} else {
			p.cmds = append(p.cmds, sepBreak, contentBreak)
		}
		return
	}

	rest := command{cmd.indent, cmd.mode, doc.Fill{Parts: parts[2:]}}
	pair := command{cmd.indent, modeFlat, doc.Concat{content, sep, parts[2]}}

	switch {
	case p.fits(pair):
		p.cmds = append(p.cmds, rest, sepFlat, contentFlat)
	case contentFits:
		p.cmds = append(p.cmds, rest, sepBreak, contentFlat)
	default:
		p.cmds = append(p.cmds, rest, sepBreak, contentBreak)
	}
}

func (p *printer) fits(next command) bool {
	_, trailing := trailingWhitespace(p.out.Bytes(), p.opts.TabWidth)
	return fits(next, p.cmds, p.opts.Width-p.column, trailing, p.groupModes, p.in, p.opts.TabWidth)
}

// fitsAs measures a candidate for the group id. IfBreaks that follow the
// group and refer to it resolve to the candidate's mode while it is measured.
func (p *printer) fitsAs(next command, id doc.GroupID) bool {
	if id.IsZero() {
		return p.fits(next)
	}
	p.groupModes[id] = next.mode
	defer delete(p.groupModes, id)
	return p.fits(next)
}

// trim drops trailing spaces and tabs from the output, moving the column back
// by their width.
func (p *printer) trim() {
	n, w := trailingWhitespace(p.out.Bytes(), p.opts.TabWidth)
	if n == 0 {
		return
	}
	p.out.Truncate(p.out.Len() - n)
	p.column -= w
	if p.column < 0 {
		p.column = 0
	}
}

// comment writes a leading comment starting at the current position, which
// is always the start of a line. Lines of a block comment keep their layout
// relative to the first line, re-anchored at ind.
func (p *printer) comment(c doc.LeadingComment, ind *Indent) {
	lines := strings.Split(strings.ReplaceAll(c.Text, "\r\n", "\n"), "\n")
	if n := len(lines); n > 1 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	tabWidth := p.opts.TabWidth
	indentWidth := leadingWidth(ind.value, tabWidth)
	shift := 0
	if c.Kind == doc.MultiLine {
		shift = indentWidth - leadingWidth(lines[0], tabWidth)
	}

	for i, line := range lines {
		if i > 0 {
			p.out.WriteString(p.opts.EndOfLine)
		}
		col := 0
		if c.Kind == doc.SingleLine {
			p.out.WriteString(ind.value)
			col = ind.width
		} else {
			spaces := leadingWidth(line, tabWidth) + shift
			if p.opts.UseTabs && spaces >= indentWidth {
				p.out.WriteString(ind.value)
				spaces -= indentWidth
				col = ind.width
			}
			if spaces > 0 {
				p.out.WriteString(strings.Repeat(" ", spaces))
				col += spaces
			}
		}
		body := strings.TrimSpace(line)
		p.out.WriteString(body)
		p.column = col + textWidth(body, tabWidth)
	}
}

// endsWithEmptyLine reports whether everything after the last line break in b
// is whitespace.
func endsWithEmptyLine(b []byte) bool {
	for i := len(b) - 1; i >= 0; i-- {
		switch b[i] {
		case ' ', '\t':
		case '\n':
			return true
		default:
			return false
		}
	}
	return false
}
