package doc

// PropagateBreaks marks every group that unconditionally contains a forced
// break (a BreakParent, a Hard or Literal line, or an already broken group) so
// the printer never tries to measure it flat.
//
// Propagation does not cross a ForceFlat boundary. A ConditionalGroup only
// takes its own flag from its first option, the flat candidate; breaks inside
// the expanded options mark the groups nested in those options and stop there.
func PropagateBreaks(d Doc) {
	propagate(d, false)
}

// propagate reports whether d forces its nearest enclosing group to break.
func propagate(d Doc, flat bool) bool {
	switch d := d.(type) {
	case BreakParent:
		return !flat
	case Line:
		return !flat && (d.Kind == Hard || d.Kind == Literal)
	case Concat:
		broken := false
		for _, part := range d {
			if propagate(part, flat) {
				broken = true
			}
		}
		return broken
	case Fill:
		broken := false
		for _, part := range d.Parts {
			if propagate(part, flat) {
				broken = true
			}
		}
		return broken
	case Indent:
		return propagate(d.Contents, flat)
	case Align:
		return propagate(d.Contents, flat)
	case AlwaysFits:
		return propagate(d.Contents, flat)
	case IfBreak:
		b := propagate(d.Break, flat)
		f := propagate(d.Flat, flat)
		return b || f
	case ForceFlat:
		propagate(d.Contents, true)
		return false
	case *Group:
		if propagate(d.Contents, flat) && !flat {
			d.Break = true
		}
		return d.Break && !flat
	case *ConditionalGroup:
		if len(d.Options) == 0 {
			return d.Break && !flat
		}
		first := propagate(d.Options[0], flat)
		for _, opt := range d.Options[1:] {
			propagate(opt, flat)
		}
		if first && !flat {
			d.Break = true
		}
		return d.Break && !flat
	default:
		return false
	}
}
