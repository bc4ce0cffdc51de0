package doc

var (
	NormalLine  = Line{Kind: Normal}
	SoftLine    = Line{Kind: Soft}
	HardLine    = Line{Kind: Hard}
	LiteralLine = Line{Kind: Literal}

	// HardLineSquashed breaks unless the output already ends in an empty line.
	HardLineSquashed = Line{Kind: Hard, Squash: true}
)

// Cat concatenates parts, dropping nil and empty-text parts and splicing
// nested Concat values. It returns nil when nothing remains and the single
// part itself when only one remains.
func Cat(parts ...Doc) Doc {
	out := make(Concat, 0, len(parts))
	for _, p := range parts {
		switch p := p.(type) {
		case nil:
		case Text:
			if p != "" {
				out = append(out, p)
			}
		case Concat:
			if inner := Cat(p...); inner != nil {
				if c, ok := inner.(Concat); ok {
					out = append(out, c...)
				} else {
					out = append(out, inner)
				}
			}
		default:
			out = append(out, p)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return out
	}
}

// Join places sep between every element of parts.
func Join(sep Doc, parts []Doc) Concat {
	if len(parts) == 0 {
		return nil
	}
	out := make(Concat, 0, 2*len(parts)-1)
	for i, p := range parts {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, p)
	}
	return out
}

// Grouped wraps parts in a group.
func Grouped(parts ...Doc) *Group {
	return &Group{Contents: Concat(parts)}
}

// Indented wraps parts in one indentation level.
func Indented(parts ...Doc) Indent {
	return Indent{Contents: Concat(parts)}
}

// FillOf builds a Fill from content items separated by sep.
func FillOf(sep Doc, items []Doc) Fill {
	return Fill{Parts: Join(sep, items)}
}
