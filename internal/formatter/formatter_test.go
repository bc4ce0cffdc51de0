package formatter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopretty/internal/printer"
	"gopretty/internal/syntax"
)

func options() Options {
	return Options{Printer: printer.DefaultOptions(), Validate: true}
}

func TestFormat(t *testing.T) {
	ctx := context.Background()

	res, err := Format(ctx, []byte("package main\n\nfunc add(a int,b int) int {\nreturn a+b\n}\n"), options())
	require.NoError(t, err)
	assert.Equal(t, "package main\n\nfunc add(a int, b int) int {\n\treturn a+b\n}\n", res.Output)
	assert.True(t, res.Changed)
	assert.Empty(t, res.Tree, "debug info is off by default")

	again, err := Format(ctx, []byte(res.Output), options())
	require.NoError(t, err)
	assert.False(t, again.Changed)
}

func TestFormat_Switch(t *testing.T) {
	src := "package main\n\nfunc f(x int) {\n\tswitch x {\n\tcase 1:\n\t\ty()\n\tcase 2:\n\t\tz()\n\tdefault:\n\t}\n}\n"
	res, err := Format(context.Background(), []byte(src), options())
	require.NoError(t, err)
	assert.Equal(t, src, res.Output)
}

func TestFormat_EndOfLine(t *testing.T) {
	opts := options()
	opts.Printer.EndOfLine = "\r\n"

	src := "package main\r\n\r\nvar x = 1\r\n"
	res, err := Format(context.Background(), []byte(src), opts)
	require.NoError(t, err)
	assert.Equal(t, src, res.Output)
	assert.False(t, res.Changed)
}

func TestFormat_SyntaxError(t *testing.T) {
	_, err := Format(context.Background(), []byte("package main\n\nfunc {\n"), options())
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestFormat_SampleFile(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "sample.go"))
	require.NoError(t, err)

	res, err := Format(context.Background(), src, options())
	require.NoError(t, err)

	again, err := Format(context.Background(), []byte(res.Output), options())
	require.NoError(t, err)
	assert.Equal(t, res.Output, again.Output, "formatting is idempotent")
}

func TestFormat_Debug(t *testing.T) {
	opts := options()
	opts.Debug = true

	res, err := Format(context.Background(), []byte("package main\n"), opts)
	require.NoError(t, err)

	assert.Contains(t, res.Tree, "source_file")
	assert.Contains(t, res.DocTree, `"package"`)
	assert.Positive(t, res.TotalTime)

	out := res.String()
	assert.Contains(t, out, "--- SYNTAX TREE ---")
	assert.Contains(t, out, "--- DOC TREE ---")
	assert.Contains(t, out, "--- PRINTED OUTPUT ---\npackage main\n")
	assert.Contains(t, out, "Total: ")
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	before, err := syntax.Parse(ctx, syntax.Go, []byte("package main\n\nvar x = 1\n"))
	require.NoError(t, err)

	t.Run("same tree", func(t *testing.T) {
		assert.NoError(t, validate(ctx, before, "package main\n\nvar   x = 1\n"))
	})

	t.Run("changed tree", func(t *testing.T) {
		err := validate(ctx, before, "package main\n\nvar x = 2\n")

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.GreaterOrEqual(t, verr.Index, 0)
		assert.Equal(t, "int_literal 1", verr.Want)
		assert.Equal(t, "int_literal 2", verr.Got)
	})

	t.Run("joined statements", func(t *testing.T) {
		src := "package main\n\nfunc f() {\n\tswitch x {\n\tcase 1:\n\t\ty()\n\tcase 2:\n\t\tz()\n\t}\n}\n"
		tree, err := syntax.Parse(ctx, syntax.Go, []byte(src))
		require.NoError(t, err)

		err = validate(ctx, tree, "package main\n\nfunc f() {\n\tswitch x {\n\tcase 1:\n\t\ty() case 2:\n\t\tz() }\n}\n")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "terminator", verr.Want)
	})

	t.Run("unparsable output", func(t *testing.T) {
		err := validate(ctx, before, "package main\n\nvar x = \n")

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, -1, verr.Index)
		assert.Contains(t, err.Error(), "invalid")
	})
}

func TestFormatFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nvar  x = 1\n"), 0o600))

	res, err := FormatFile(context.Background(), path, options())
	require.NoError(t, err)
	assert.True(t, res.Changed)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package main\n\nvar x = 1\n", string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	t.Run("missing file", func(t *testing.T) {
		_, err := FormatFile(context.Background(), filepath.Join(dir, "nope.go"), options())
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
