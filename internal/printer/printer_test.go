package printer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopretty/internal/doc"
)

func spaces(width int) Options {
	return Options{Width: width, TabWidth: 2, TrimInitialLines: true, EndOfLine: "\n"}
}

func render(t *testing.T, d doc.Doc, opts Options) string {
	t.Helper()
	out, err := Print(d, opts)
	require.NoError(t, err)
	return out
}

func TestPrint_GroupFitsOrBreaks(t *testing.T) {
	call := func() doc.Doc {
		return doc.Grouped(
			doc.Text("foo("),
			doc.Indented(doc.SoftLine, doc.Text("a, b, c")),
			doc.SoftLine,
			doc.Text(")"),
		)
	}

	assert.Equal(t, "foo(a, b, c)\n", render(t, call(), spaces(80)))
	assert.Equal(t, "foo(\n  a, b, c\n)\n", render(t, call(), spaces(5)))
}

func TestPrint_WidthLaw(t *testing.T) {
	tests := []struct {
		name  string
		width int
		want  string
	}{
		{"exact fit stays flat", 9, "xxabc def\n"},
		{"one column short breaks", 8, "xxabc\ndef\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := doc.Concat{doc.Text("xx"), doc.Grouped(doc.Text("abc"), doc.NormalLine, doc.Text("def"))}
			assert.Equal(t, tt.want, render(t, d, spaces(tt.width)))
		})
	}
}

func TestPrint_ForcedBreak(t *testing.T) {
	t.Run("break parent", func(t *testing.T) {
		d := doc.Grouped(doc.Text("a"), doc.BreakParent{}, doc.SoftLine, doc.Text("b"))
		for _, width := range []int{1, 80, 1000} {
			assert.Equal(t, "a\nb\n", render(t, d, spaces(width)))
		}
	})

	t.Run("hard line breaks the enclosing groups", func(t *testing.T) {
		d := doc.Grouped(
			doc.Text("{"),
			doc.Indented(doc.NormalLine, doc.Grouped(doc.Text("x"), doc.HardLine, doc.Text("y"))),
			doc.NormalLine,
			doc.Text("}"),
		)
		assert.Equal(t, "{\n  x\n  y\n}\n", render(t, d, spaces(80)))
	})
}

func TestPrint_Fill(t *testing.T) {
	words := func(ws ...string) doc.Fill {
		items := make([]doc.Doc, len(ws))
		for i, w := range ws {
			items[i] = doc.Text(w)
		}
		return doc.FillOf(doc.NormalLine, items)
	}

	t.Run("wraps pairs", func(t *testing.T) {
		assert.Equal(t, "aaaa bbbb\ncccc\n", render(t, words("aaaa", "bbbb", "cccc"), spaces(9)))
	})

	t.Run("empty and single", func(t *testing.T) {
		// An empty document still ends with a line ending.
		assert.Equal(t, "\n", render(t, doc.Fill{}, spaces(9)))
		assert.Equal(t, "aaaa\n", render(t, words("aaaa"), spaces(2)))
	})

	t.Run("fill is reusable after printing", func(t *testing.T) {
		f := words("a", "b", "c")
		first := render(t, f, spaces(3))
		assert.Equal(t, first, render(t, f, spaces(3)))
		assert.Len(t, f.Parts, 5)
	})

	t.Run("wider never adds breaks", func(t *testing.T) {
		f := words("lorem", "ipsum", "dolor", "sit", "amet", "consectetur", "adipiscing", "elit", "sed", "do", "eiusmod")
		prev := -1
		for width := 1; width <= 80; width++ {
			breaks := strings.Count(render(t, f, spaces(width)), "\n")
			if prev >= 0 {
				assert.LessOrEqual(t, breaks, prev, "width %d", width)
			}
			prev = breaks
		}
		assert.Equal(t, 1, prev, "everything fits on one line at the widest setting")
	})
}

func TestPrint_OutputTermination(t *testing.T) {
	tests := []struct {
		name string
		d    doc.Doc
		opts Options
		want string
	}{
		{
			name: "trailing whitespace and blank lines",
			d:    doc.Concat{doc.Text("a  "), doc.HardLine, doc.HardLine},
			opts: spaces(80),
			want: "a\n",
		},
		{
			name: "crlf",
			d:    doc.Concat{doc.Text("a"), doc.HardLine, doc.Text("b")},
			opts: Options{Width: 80, EndOfLine: "\r\n"},
			want: "a\r\nb\r\n",
		},
		{
			name: "initial lines trimmed",
			d:    doc.Concat{doc.HardLine, doc.HardLine, doc.Text("a")},
			opts: spaces(80),
			want: "a\n",
		},
		{
			name: "initial lines kept",
			d:    doc.Concat{doc.HardLine, doc.HardLine, doc.Text("a")},
			opts: Options{Width: 80, EndOfLine: "\n"},
			want: "\n\na\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, tt.d, tt.opts))
		})
	}
}

func TestPrint_GroupIDs(t *testing.T) {
	t.Run("resolves to the printed mode", func(t *testing.T) {
		build := func() doc.Doc {
			id := doc.NewGroupID("args")
			return doc.Concat{
				&doc.Group{ID: id, Contents: doc.Concat{doc.Text("aaaa"), doc.SoftLine, doc.Text("bbbb")}},
				doc.Grouped(doc.IfBreak{Break: doc.Text(","), GroupID: id}),
			}
		}
		assert.Equal(t, "aaaabbbb\n", render(t, build(), spaces(100)))
		assert.Equal(t, "aaaa\nbbbb,\n", render(t, build(), spaces(5)))
	})

	t.Run("reference measured with its own group", func(t *testing.T) {
		build := func() doc.Doc {
			id := doc.NewGroupID("g")
			return doc.Concat{
				&doc.Group{ID: id, Contents: doc.Concat{doc.Text("aaaa"), doc.SoftLine, doc.Text("bbbb")}},
				doc.IfBreak{Break: doc.Text("!"), Flat: doc.Text("?"), GroupID: id},
			}
		}
		assert.Equal(t, "aaaabbbb?\n", render(t, build(), spaces(9)))
		assert.Equal(t, "aaaa\nbbbb!\n", render(t, build(), spaces(8)))
	})

	t.Run("reference before the group", func(t *testing.T) {
		id := doc.NewGroupID("later")
		d := doc.Concat{
			doc.IfBreak{Break: doc.Text("a"), GroupID: id},
			&doc.Group{ID: id, Contents: doc.Text("b")},
		}
		out, err := Print(d, spaces(80))
		assert.Empty(t, out)

		var unresolved *UnresolvedGroupError
		require.True(t, errors.As(err, &unresolved))
		assert.Equal(t, id, unresolved.ID)
		assert.Contains(t, err.Error(), "later")
	})
}

type bogus struct {
	doc.Text
}

func TestPrint_UnknownDoc(t *testing.T) {
	_, err := Print(doc.Concat{doc.Text("a"), bogus{"b"}}, spaces(80))
	assert.ErrorIs(t, err, ErrUnknownDoc)
	assert.Contains(t, err.Error(), "bogus")
}

func TestPrint_ConditionalGroup(t *testing.T) {
	build := func(broken bool) *doc.ConditionalGroup {
		return &doc.ConditionalGroup{
			Options: []doc.Doc{doc.Text("aaaaaaaaaa"), doc.Text("bbbbbb"), doc.Text("cc")},
			Break:   broken,
		}
	}

	tests := []struct {
		name   string
		width  int
		broken bool
		want   string
	}{
		{"first option fits", 20, false, "aaaaaaaaaa\n"},
		{"first fitting alternative", 7, false, "bbbbbb\n"},
		{"falls back to the last", 3, false, "cc\n"},
		{"forced uses the last", 20, true, "cc\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, build(tt.broken), spaces(tt.width)))
		})
	}

	t.Run("records its mode", func(t *testing.T) {
		id := doc.NewGroupID("cg")
		cg := build(true)
		cg.ID = id
		d := doc.Concat{cg, doc.IfBreak{Break: doc.Text(" broken"), Flat: doc.Text(" flat"), GroupID: id}}
		assert.Equal(t, "cc broken\n", render(t, d, spaces(80)))
	})
}

func TestPrint_IndentationAndAlign(t *testing.T) {
	block := doc.Concat{
		doc.Text("{"),
		doc.Indented(doc.HardLine, doc.Text("x"), doc.Align{Width: 3, Contents: doc.Concat{doc.HardLine, doc.Text("y")}}),
		doc.HardLine,
		doc.Text("}"),
	}

	assert.Equal(t, "{\n\tx\n\t   y\n}\n", render(t, block, Options{Width: 80, TabWidth: 4, UseTabs: true}))
	assert.Equal(t, "{\n  x\n     y\n}\n", render(t, block, spaces(80)))
}

func TestPrint_ForceFlatAndAlwaysFits(t *testing.T) {
	t.Run("force flat ignores width", func(t *testing.T) {
		d := doc.ForceFlat{Contents: doc.Grouped(doc.Text("aaaa"), doc.NormalLine, doc.Text("bbbb"))}
		assert.Equal(t, "aaaa bbbb\n", render(t, d, spaces(3)))
	})

	t.Run("hard line in flat content remeasures the next group", func(t *testing.T) {
		d := doc.ForceFlat{Contents: doc.Concat{
			doc.Text("a"),
			doc.HardLine,
			doc.Grouped(doc.Text("bbbb"), doc.NormalLine, doc.Text("cccc")),
		}}
		assert.Equal(t, "a\nbbbb\ncccc\n", render(t, d, spaces(5)))
		assert.Equal(t, "a\nbbbb cccc\n", render(t, d, spaces(9)))
	})

	t.Run("always fits ends measurement", func(t *testing.T) {
		d := doc.Grouped(doc.Text("aaaa"), doc.NormalLine, doc.AlwaysFits{Contents: doc.Text("bbbbbbbbbbbb")})
		assert.Equal(t, "aaaa bbbbbbbbbbbb\n", render(t, d, spaces(6)))
	})
}

func TestPrint_Trim(t *testing.T) {
	assert.Equal(t, "ab\n", render(t, doc.Concat{doc.Text("a \t "), doc.Trim{}, doc.Text("b")}, spaces(80)))

	// The trimmed width is given back to the line.
	d := doc.Concat{doc.Text("ab "), doc.Trim{}, doc.Grouped(doc.Text("c"), doc.SoftLine, doc.Text("d"))}
	assert.Equal(t, "abcd\n", render(t, d, spaces(4)))

	// A trim inside a group also gives back whitespace printed before it.
	d = doc.Concat{doc.Text("abc "), doc.Grouped(doc.Trim{}, doc.Text("d"), doc.NormalLine, doc.Text("e"))}
	assert.Equal(t, "abcd e\n", render(t, d, spaces(6)))
	assert.Equal(t, "abcd\ne\n", render(t, d, spaces(5)))
}

func TestPrint_Regions(t *testing.T) {
	region := func(text string, end bool) doc.Doc {
		return doc.Concat{doc.Trim{}, doc.LiteralLine, doc.Region{Text: text, End: end}}
	}

	t.Run("end uses the start indent", func(t *testing.T) {
		d := doc.Indented(
			doc.HardLine, doc.Text("a"),
			region("//region", false),
			doc.Indented(doc.HardLine, doc.Text("b"), region("//endregion", true)),
		)
		assert.Equal(t, "  a\n  //region\n    b\n  //endregion\n", render(t, d, spaces(80)))
	})

	t.Run("unmatched end", func(t *testing.T) {
		d := doc.Concat{doc.Text("a"), doc.HardLine, doc.Region{Text: "//endregion", End: true}}
		out, err := Print(d, spaces(80))
		assert.Empty(t, out)
		assert.ErrorIs(t, err, ErrUnmatchedRegion)
	})
}

func TestPrint_Comments(t *testing.T) {
	t.Run("trailing comment defers the line break", func(t *testing.T) {
		d := doc.Concat{doc.Text("a"), doc.TrailingComment{Text: "// x"}, doc.HardLine, doc.Text("b")}
		assert.Equal(t, "a // x\nb\n", render(t, d, spaces(80)))
	})

	t.Run("space after trailing comment is dropped", func(t *testing.T) {
		d := doc.Concat{doc.Text("a"), doc.TrailingComment{Text: "// x"}, doc.Text(" "), doc.Text("b")}
		assert.Equal(t, "a // x\nb\n", render(t, d, spaces(80)))
	})

	t.Run("trailing comment in force flat stays inline", func(t *testing.T) {
		d := doc.ForceFlat{Contents: doc.Concat{doc.Text("a"), doc.TrailingComment{Text: "/* x */"}, doc.Text(" b")}}
		assert.Equal(t, "a /* x */ b\n", render(t, d, spaces(80)))
	})

	t.Run("squashed line", func(t *testing.T) {
		d := doc.Concat{doc.Text("a"), doc.HardLine, doc.HardLine, doc.HardLineSquashed, doc.Text("b")}
		assert.Equal(t, "a\n\nb\n", render(t, d, spaces(80)))

		d = doc.Concat{doc.Text("a"), doc.HardLineSquashed, doc.Text("b")}
		assert.Equal(t, "a\nb\n", render(t, d, spaces(80)))
	})

	t.Run("leading comment is reindented", func(t *testing.T) {
		d := doc.Concat{
			doc.Text("{"),
			doc.Indented(doc.HardLine, doc.LeadingComment{Text: "// c", Kind: doc.SingleLine}, doc.HardLine, doc.Text("y")),
			doc.HardLine,
			doc.Text("}"),
		}
		assert.Equal(t, "{\n\t// c\n\ty\n}\n", render(t, d, Options{Width: 80, UseTabs: true}))
	})

	t.Run("leading comment starts a new line", func(t *testing.T) {
		d := doc.Concat{doc.Text("x "), doc.LeadingComment{Text: "// c", Kind: doc.SingleLine}, doc.HardLine, doc.Text("y")}
		assert.Equal(t, "x\n// c\ny\n", render(t, d, spaces(80)))
	})

	t.Run("block comment keeps its shape", func(t *testing.T) {
		comment := "    /*\n     * a\n     *   b\n     */"
		d := doc.Concat{
			doc.Text("{"),
			doc.Indented(doc.HardLine, doc.LeadingComment{Text: comment, Kind: doc.MultiLine}, doc.HardLine, doc.Text("x")),
			doc.HardLine,
			doc.Text("}"),
		}
		assert.Equal(t, "{\n  /*\n   * a\n   *   b\n   */\n  x\n}\n", render(t, d, spaces(80)))
	})
}

func TestPrint_ConcurrentCalls(t *testing.T) {
	d := doc.Grouped(doc.Text("foo("), doc.Indented(doc.SoftLine, doc.Text("a")), doc.SoftLine, doc.Text(")"))
	want := render(t, d, spaces(80))

	done := make(chan string)
	for i := 0; i < 8; i++ {
		go func() {
			out, _ := Print(d, spaces(80))
			done <- out
		}()
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, want, <-done)
	}
}
