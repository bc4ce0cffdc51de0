package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gopretty/internal/config"
	"gopretty/internal/formatter"
	"gopretty/internal/logging"
	"gopretty/internal/pipeline"
	"gopretty/internal/storage"
	"gopretty/internal/syntax"
)

var (
	rootCmd = &cobra.Command{
		Use:           "gopretty",
		Short:         "Opinionated Go source formatter",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	configPath string
	width      int
	tabWidth   int
	useTabs    bool
	noValidate bool
	noCache    bool
	jobs       int
	verbose    bool
	logJSON    bool

	checkOnly  bool
	changedRef string
	stdinLang  string
)

// errNeedsFormatting makes the process exit with status 1 without printing
// anything more.
var errNeedsFormatting = errors.New("some files need formatting")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errNeedsFormatting) {
			color.Red("%v", err)
		}
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Config file to use instead of looking up .gopretty.yaml")
	flags.IntVarP(&width, "width", "w", 0, "Maximum line width")
	flags.IntVar(&tabWidth, "tab-width", 0, "Columns per indentation level")
	flags.BoolVar(&useTabs, "use-tabs", true, "Indent with tabs")
	flags.BoolVar(&noValidate, "no-validate", false, "Skip re-parsing the output to verify the syntax tree")
	flags.BoolVar(&noCache, "no-cache", false, "Format every file even when the cache says it is formatted")
	flags.IntVarP(&jobs, "jobs", "j", 0, "Files formatted in parallel (default GOMAXPROCS)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&logJSON, "log-json", false, "Log as JSON lines")

	formatCmd.Flags().BoolVar(&checkOnly, "check", false, "Report files that need formatting instead of rewriting them")
	formatCmd.Flags().StringVar(&changedRef, "changed", "", "Only format files changed since this git ref")
	formatCmd.Flags().StringVar(&stdinLang, "lang", "go", "Language of source read from stdin")
	checkCmd.Flags().StringVar(&changedRef, "changed", "", "Only check files changed since this git ref")
	checkCmd.Flags().StringVar(&stdinLang, "lang", "go", "Language of source read from stdin")

	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(debugCmd)
}

// newResolver builds the config resolver with the command line flags applied
// on top of every loaded config.
func newResolver(cmd *cobra.Command, log *zap.Logger) *config.Resolver {
	r := config.NewResolver(configPath, log)
	flags := cmd.Flags()
	r.Override = func(cfg *config.Config) {
		if flags.Changed("width") {
			cfg.Width = width
		}
		if flags.Changed("tab-width") {
			cfg.TabWidth = tabWidth
		}
		if flags.Changed("use-tabs") {
			cfg.UseTabs = useTabs
		}
		if noValidate {
			cfg.Validate = false
		}
	}
	return r
}

// openCache opens the cache named by cfg. A relative path is taken from the
// directory of the config file.
func openCache(cfg *config.Config) (*storage.SQLiteStore, error) {
	if noCache || cfg.Cache == "" {
		return nil, nil
	}
	path := cfg.Cache
	if !filepath.IsAbs(path) && cfg.Path != "" {
		path = filepath.Join(filepath.Dir(cfg.Path), path)
	}
	return storage.NewSQLiteStore(path)
}

var formatCmd = &cobra.Command{
	Use:   "format [paths...]",
	Short: "Format files and directories in place (\"-\" reads stdin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFormat(cmd, args, checkOnly)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Exit with status 1 when any file is not formatted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFormat(cmd, args, true)
	},
}

func runFormat(cmd *cobra.Command, args []string, check bool) error {
	ctx := cmd.Context()
	log := logging.New(verbose, logJSON)
	defer log.Sync()

	if len(args) == 0 {
		args = []string{"."}
	}
	resolver := newResolver(cmd, log)

	if len(args) == 1 && args[0] == "-" {
		return formatStdin(ctx, cmd, resolver, check, log)
	}

	// 1. Open cache
	cfg, err := resolver.For(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	store, err := openCache(cfg)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	req := pipeline.Request{
		Paths:    args,
		Changed:  changedRef,
		Check:    check,
		Jobs:     jobs,
		Resolver: resolver,
		Logger:   log,
	}
	if store != nil {
		defer store.Close()
		req.Cache = store
	}

	// 2. Run
	report, err := pipeline.Run(ctx, req)
	if err != nil {
		return err
	}

	// 3. Print report
	out := cmd.OutOrStdout()
	for _, path := range report.NeedsFormatting {
		color.New(color.FgRed).Fprintf(out, "✗ %s\n", relative(path))
	}
	failed := make([]string, 0, len(report.Failed))
	for path := range report.Failed {
		failed = append(failed, path)
	}
	sort.Strings(failed)
	for _, path := range failed {
		color.New(color.FgRed).Fprintf(out, "⚠️  %s: %v\n", relative(path), report.Failed[path])
	}
	if verbose {
		for _, path := range report.Formatted {
			fmt.Fprintf(out, "✍️  %s\n", relative(path))
		}
	}

	summary := fmt.Sprintf("%d files: %d formatted, %d unchanged, %d cached", report.Total(),
		len(report.Formatted), len(report.Unchanged), len(report.Cached))
	if check {
		summary += fmt.Sprintf(", %d need formatting", len(report.NeedsFormatting))
	}
	summary += fmt.Sprintf(", %d failed in %v", len(report.Failed), report.Duration)
	if report.OK() {
		color.New(color.FgGreen).Fprintf(out, "✅ %s\n", summary)
		return nil
	}
	color.New(color.FgRed).Fprintf(out, "❌ %s\n", summary)
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d files failed to format", len(report.Failed))
	}
	return errNeedsFormatting
}

func formatStdin(ctx context.Context, cmd *cobra.Command, resolver *config.Resolver, check bool, log *zap.Logger) error {
	src, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	lang, err := syntax.Lookup(stdinLang)
	if err != nil {
		return err
	}
	cfg, err := resolver.For(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	res, err := formatter.Format(ctx, src, formatter.Options{
		Printer:  cfg.PrinterOptions(src),
		Lang:     lang,
		Validate: cfg.Validate,
		Logger:   log,
	})
	if err != nil {
		return err
	}
	if check {
		if res.Changed {
			color.New(color.FgRed).Fprintln(cmd.ErrOrStderr(), "✗ <stdin>")
			return errNeedsFormatting
		}
		return nil
	}
	_, err = io.WriteString(cmd.OutOrStdout(), res.Output)
	return err
}

var debugCmd = &cobra.Command{
	Use:   "debug <file>",
	Short: "Print the syntax tree, document tree, output and timings for a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(verbose, logJSON)
		defer log.Sync()

		src, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		cfg, err := newResolver(cmd, log).For(filepath.Dir(args[0]))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		res, err := formatter.Format(cmd.Context(), src, formatter.Options{
			Printer:  cfg.PrinterOptions(src),
			Validate: cfg.Validate,
			Debug:    true,
			Logger:   log,
		})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), res.String())
		return nil
	},
}

func relative(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(wd, path); err == nil {
		return rel
	}
	return path
}
