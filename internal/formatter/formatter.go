// Package formatter runs the whole formatting pass over one source file:
// parse, translate, print and optionally validate the result.
package formatter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/renameio"
	"go.uber.org/zap"

	"gopretty/internal/doc"
	"gopretty/internal/logging"
	"gopretty/internal/printer"
	"gopretty/internal/syntax"
	"gopretty/internal/translate"
)

// ErrSyntax is returned for input that does not parse.
var ErrSyntax = errors.New("syntax error")

// ValidationError reports formatted output that no longer means the same
// thing as the input.
type ValidationError struct {
	// Reason says what went wrong.
	Reason string
	// Index is the first differing position in the tree fingerprints, or -1.
	Index int
	// Want and Got are the differing fingerprint entries, if any.
	Want, Got string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return "formatting made the code invalid: " + e.Reason
	}
	return fmt.Sprintf("formatting transformed the syntax tree: %s at node %d: want %q, got %q", e.Reason, e.Index, e.Want, e.Got)
}

// Options configures one Format call.
type Options struct {
	Printer printer.Options
	// Lang selects the grammar; nil means Go.
	Lang *syntax.Language
	// Validate re-parses the output and compares it with the input.
	Validate bool
	// Debug fills the debug fields of Result.
	Debug bool

	Logger *zap.Logger
}

// Result is the outcome of a successful Format call.
type Result struct {
	Output string
	// Changed reports whether Output differs from the input.
	Changed bool

	// Debug information, set only when Options.Debug is set.
	Tree       string
	DocTree    string
	ParseTime  time.Duration
	FormatTime time.Duration
	TotalTime  time.Duration
}

// String renders the result as sections: syntax tree, document tree, output
// and timings. Sections without data are left out.
func (r Result) String() string {
	var sb strings.Builder
	if r.Tree != "" {
		fmt.Fprintf(&sb, "--- SYNTAX TREE ---\n\n%s\n\n", r.Tree)
	}
	if r.DocTree != "" {
		fmt.Fprintf(&sb, "--- DOC TREE ---\n\n%s\n\n", r.DocTree)
	}
	fmt.Fprintf(&sb, "--- PRINTED OUTPUT ---\n%s\n\n", r.Output)
	if r.TotalTime > 0 {
		fmt.Fprintf(&sb, "Parse: %s\n", r.ParseTime)
		fmt.Fprintf(&sb, "Format: %s\n", r.FormatTime)
		fmt.Fprintf(&sb, "Total: %s\n", r.TotalTime)
	}
	return sb.String()
}

var translators = map[*syntax.Language]func(*syntax.Tree) doc.Doc{
	syntax.Go: translate.Go,
}

// Format formats src.
func Format(ctx context.Context, src []byte, opts Options) (Result, error) {
	log := logging.OrNop(opts.Logger)
	lang := opts.Lang
	if lang == nil {
		lang = syntax.Go
	}
	translateTree, ok := translators[lang]
	if !ok {
		return Result{}, fmt.Errorf("no translator for %s", lang.Name)
	}

	input := strings.ReplaceAll(string(src), "\r\n", "\n")

	// 1. Parse
	parseStart := time.Now()
	tree, err := syntax.Parse(ctx, lang, []byte(input))
	if err != nil {
		return Result{}, err
	}
	if errs := tree.Errors(); len(errs) > 0 {
		return Result{}, syntaxError(errs)
	}
	parseTime := time.Since(parseStart)

	// 2. Translate and print
	formatStart := time.Now()
	d := translateTree(tree)
	output, err := printer.Print(d, opts.Printer)
	if err != nil {
		return Result{}, fmt.Errorf("failed to print document: %w", err)
	}

	// 3. Validate
	if opts.Validate {
		if err := validate(ctx, tree, output); err != nil {
			return Result{}, err
		}
	}
	formatTime := time.Since(formatStart)

	log.Debug("formatted source",
		zap.String("package", tree.PackageName()),
		zap.Int("bytes", len(src)),
		zap.Duration("parse", parseTime),
		zap.Duration("format", formatTime),
	)

	res := Result{Output: output, Changed: output != string(src)}
	if opts.Debug {
		res.Tree = tree.Dump()
		res.DocTree = doc.Dump(d)
		res.ParseTime = parseTime
		res.FormatTime = formatTime
		res.TotalTime = parseTime + formatTime
	}
	return res, nil
}

func validate(ctx context.Context, before *syntax.Tree, output string) error {
	after, err := syntax.Parse(ctx, before.Lang, []byte(strings.ReplaceAll(output, "\r\n", "\n")))
	if err != nil {
		return err
	}
	if errs := after.Errors(); len(errs) > 0 {
		return &ValidationError{Reason: errs[0].String(), Index: -1}
	}

	want, got := syntax.Fingerprint(before), syntax.Fingerprint(after)
	i := syntax.Diff(want, got)
	if i < 0 {
		return nil
	}
	verr := &ValidationError{Reason: "node mismatch", Index: i}
	if i < len(want) {
		verr.Want = want[i]
	}
	if i < len(got) {
		verr.Got = got[i]
	}
	return verr
}

func syntaxError(errs []syntax.Error) error {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.String()
	}
	return fmt.Errorf("%w: %s", ErrSyntax, strings.Join(msgs, "; "))
}

// FormatFile formats the file at path and writes the result back when it
// changed. The file is replaced atomically and keeps its permissions.
func FormatFile(ctx context.Context, path string, opts Options) (Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if opts.Lang == nil {
		if lang, ok := syntax.ForPath(path); ok {
			opts.Lang = lang
		}
	}

	res, err := Format(ctx, src, opts)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	if !res.Changed {
		return res, nil
	}

	if err := WriteFile(path, res.Output); err != nil {
		return Result{}, err
	}
	logging.OrNop(opts.Logger).Debug("wrote file", zap.String("path", path))
	return res, nil
}

// WriteFile replaces the file at path with output atomically, keeping its
// permissions.
func WriteFile(path, output string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if err := renameio.WriteFile(path, []byte(output), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}
