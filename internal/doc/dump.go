package doc

import (
	"fmt"
	"strconv"
	"strings"
)

// Dump renders d as indented constructor text for debugging.
func Dump(d Doc) string {
	var sb strings.Builder
	dump(&sb, d, 0)
	return sb.String()
}

func dump(sb *strings.Builder, d Doc, depth int) {
	pad := strings.Repeat("  ", depth)
	sb.WriteString(pad)

	children := func(name string, parts ...Doc) {
		sb.WriteString(name)
		sb.WriteString("(\n")
		for _, p := range parts {
			dump(sb, p, depth+1)
			sb.WriteString(",\n")
		}
		sb.WriteString(pad)
		sb.WriteString(")")
	}

	switch d := d.(type) {
	case nil:
		sb.WriteString("Null")
	case Text:
		sb.WriteString(strconv.Quote(string(d)))
	case Concat:
		children("Concat", d...)
	case Line:
		if d.Squash {
			fmt.Fprintf(sb, "%vLine(squash)", d.Kind)
		} else {
			fmt.Fprintf(sb, "%vLine", d.Kind)
		}
	case Indent:
		children("Indent", d.Contents)
	case Align:
		children(fmt.Sprintf("Align[%d]", d.Width), d.Contents)
	case *Group:
		children("Group"+groupSuffix(d.ID, d.Break), d.Contents)
	case *ConditionalGroup:
		children("ConditionalGroup"+groupSuffix(d.ID, d.Break), d.Options...)
	case Fill:
		children("Fill", d.Parts...)
	case IfBreak:
		name := "IfBreak"
		if !d.GroupID.IsZero() {
			name += "#" + d.GroupID.String()
		}
		children(name, d.Break, d.Flat)
	case BreakParent:
		sb.WriteString("BreakParent")
	case Trim:
		sb.WriteString("Trim")
	case ForceFlat:
		children("ForceFlat", d.Contents)
	case AlwaysFits:
		children("AlwaysFits", d.Contents)
	case LeadingComment:
		kind := "SingleLine"
		if d.Kind == MultiLine {
			kind = "MultiLine"
		}
		fmt.Fprintf(sb, "LeadingComment[%s](%q)", kind, d.Text)
	case TrailingComment:
		fmt.Fprintf(sb, "TrailingComment(%q)", d.Text)
	case Region:
		if d.End {
			fmt.Fprintf(sb, "EndRegion(%q)", d.Text)
		} else {
			fmt.Fprintf(sb, "Region(%q)", d.Text)
		}
	default:
		fmt.Fprintf(sb, "Unknown[%T]", d)
	}
}

func groupSuffix(id GroupID, broken bool) string {
	var s string
	if !id.IsZero() {
		s = "#" + id.String()
	}
	if broken {
		s += "[break]"
	}
	return s
}
