package printer

// Options controls the layout decisions of one Print call.
type Options struct {
	// Width is the column limit groups try to stay within.
	Width int

	// TabWidth is the number of columns one indentation unit (and a tab
	// character) occupies.
	TabWidth int

	// UseTabs emits a tab per indentation unit instead of TabWidth spaces.
	UseTabs bool

	// TrimInitialLines strips leading blank lines from the result.
	TrimInitialLines bool

	// EndOfLine is written for every line break. Defaults to "\n".
	EndOfLine string
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Width:            100,
		TabWidth:         4,
		UseTabs:          true,
		TrimInitialLines: true,
		EndOfLine:        "\n",
	}
}

func (opts Options) withDefaults() Options {
	if opts.TabWidth <= 0 {
		opts.TabWidth = 4
	}
	if opts.EndOfLine == "" {
		opts.EndOfLine = "\n"
	}
	return opts
}
