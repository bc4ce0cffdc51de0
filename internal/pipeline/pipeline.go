// Package pipeline formats many files in one run: it collects the paths,
// skips files the cache already knows are formatted, formats the rest in
// parallel and reports what happened to each file.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gopretty/internal/config"
	"gopretty/internal/crawler"
	"gopretty/internal/formatter"
	"gopretty/internal/git"
	"gopretty/internal/logging"
	"gopretty/internal/storage"
	"gopretty/internal/syntax"
)

// Request describes one run.
type Request struct {
	// Paths are files or directories. Directories are crawled.
	Paths []string
	// Changed, when set, limits the run to files that differ from this git ref.
	Changed string
	// Check reports files that need formatting instead of rewriting them.
	Check bool
	// Jobs bounds the number of files formatted at once. Zero means GOMAXPROCS.
	Jobs int

	Resolver *config.Resolver
	// Cache may be nil.
	Cache  storage.Cache
	Logger *zap.Logger
}

// Report lists the outcome per file. Paths in each list are sorted.
type Report struct {
	Formatted       []string
	Unchanged       []string
	Cached          []string
	NeedsFormatting []string
	Failed          map[string]error

	Pruned   int
	Duration time.Duration
}

// Total is the number of files the run looked at.
func (r *Report) Total() int {
	return len(r.Formatted) + len(r.Unchanged) + len(r.Cached) + len(r.NeedsFormatting) + len(r.Failed)
}

// OK reports whether no file failed and, in check mode, none needs formatting.
func (r *Report) OK() bool {
	return len(r.Failed) == 0 && len(r.NeedsFormatting) == 0
}

type status int

const (
	statusUnchanged status = iota
	statusFormatted
	statusCached
	statusNeedsFormatting
	statusFailed
)

type outcome struct {
	path   string
	status status
	err    error
}

type run struct {
	req Request
	log *zap.Logger
}

// Run executes req. Errors for single files end up in Report.Failed and do
// not stop the other files; the returned error is for the run as a whole.
func Run(ctx context.Context, req Request) (*Report, error) {
	if req.Resolver == nil {
		req.Resolver = config.NewResolver("", req.Logger)
	}
	if req.Jobs <= 0 {
		req.Jobs = runtime.GOMAXPROCS(0)
	}
	r := &run{req: req, log: logging.OrNop(req.Logger)}
	start := time.Now()

	// 1. Collect files
	files, err := r.collectStage(ctx)
	if err != nil {
		return nil, err
	}
	r.log.Info("collected files", zap.Int("count", len(files)), zap.String("changed", req.Changed))

	// 2. Format
	outcomes, err := r.formatStage(ctx, files)
	if err != nil {
		return nil, err
	}

	// 3. Report
	report := buildReport(outcomes)

	// 4. Drop cache entries for files that are gone
	if req.Cache != nil && req.Changed == "" {
		report.Pruned = r.pruneStage(ctx)
	}

	report.Duration = time.Since(start)
	r.log.Info("run finished",
		zap.Int("formatted", len(report.Formatted)),
		zap.Int("unchanged", len(report.Unchanged)),
		zap.Int("cached", len(report.Cached)),
		zap.Int("needsFormatting", len(report.NeedsFormatting)),
		zap.Int("failed", len(report.Failed)),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (r *run) collectStage(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if !seen[abs] {
			seen[abs] = true
			files = append(files, abs)
		}
		return nil
	}

	for _, root := range r.req.Paths {
		if r.req.Changed != "" {
			if err := r.collectChanged(ctx, root, add); err != nil {
				return nil, err
			}
			continue
		}

		dir := root
		if info, err := os.Stat(root); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", root, err)
		} else if !info.IsDir() {
			dir = filepath.Dir(root)
		}
		cfg, err := r.req.Resolver.For(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to load config for %s: %w", dir, err)
		}
		if err := crawler.NewCrawler(cfg.Ignore).Walk(root, add); err != nil {
			return nil, fmt.Errorf("failed to crawl %s: %w", root, err)
		}
	}
	return files, nil
}

func (r *run) collectChanged(ctx context.Context, root string, add func(string) error) error {
	dir := root
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", root, err)
	}
	if !info.IsDir() {
		dir = filepath.Dir(root)
	}

	changes, err := git.GetChangedFiles(ctx, dir, r.req.Changed)
	if err != nil {
		return fmt.Errorf("failed to get git changes: %w", err)
	}
	for _, c := range changes {
		if !info.IsDir() && filepath.Clean(c.Path) != filepath.Clean(root) {
			continue
		}
		if _, ok := syntax.ForPath(c.Path); !ok {
			continue
		}
		r.log.Debug("changed file", zap.String("path", c.Path), zap.String("lines", c.Ranges()))
		if err := add(c.Path); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) formatStage(ctx context.Context, files []string) ([]outcome, error) {
	outcomes := make([]outcome, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.req.Jobs)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			st, err := r.formatOne(ctx, path)
			if err != nil {
				r.log.Warn("failed to format file", zap.String("path", path), zap.Error(err))
				st = statusFailed
			}
			outcomes[i] = outcome{path: path, status: st, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (r *run) formatOne(ctx context.Context, path string) (status, error) {
	cfg, err := r.req.Resolver.For(filepath.Dir(path))
	if err != nil {
		return statusFailed, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return statusFailed, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	contentHash, optionsHash := storage.HashContent(src), cfg.Hash()
	if r.req.Cache != nil {
		hit, err := r.req.Cache.Lookup(ctx, path, contentHash, optionsHash)
		if err != nil {
			r.log.Warn("cache lookup failed", zap.String("path", path), zap.Error(err))
		} else if hit {
			return statusCached, nil
		}
	}

	opts := formatter.Options{
		Printer:  cfg.PrinterOptions(src),
		Validate: cfg.Validate,
		Logger:   r.log,
	}
	if lang, ok := syntax.ForPath(path); ok {
		opts.Lang = lang
	}
	res, err := formatter.Format(ctx, src, opts)
	if err != nil {
		r.forget(ctx, path)
		return statusFailed, err
	}

	switch {
	case !res.Changed:
		r.record(ctx, path, contentHash, optionsHash)
		return statusUnchanged, nil
	case r.req.Check:
		r.forget(ctx, path)
		return statusNeedsFormatting, nil
	}

	if err := formatter.WriteFile(path, res.Output); err != nil {
		return statusFailed, err
	}
	r.record(ctx, path, storage.HashContent([]byte(res.Output)), optionsHash)
	return statusFormatted, nil
}

func (r *run) record(ctx context.Context, path string, contentHash, optionsHash uint64) {
	if r.req.Cache == nil {
		return
	}
	if err := r.req.Cache.Record(ctx, path, contentHash, optionsHash); err != nil {
		r.log.Warn("failed to record file in cache", zap.String("path", path), zap.Error(err))
	}
}

func (r *run) forget(ctx context.Context, path string) {
	if r.req.Cache == nil {
		return
	}
	if err := r.req.Cache.Forget(ctx, path); err != nil {
		r.log.Warn("failed to drop file from cache", zap.String("path", path), zap.Error(err))
	}
}

func (r *run) pruneStage(ctx context.Context) int {
	n, err := r.req.Cache.Prune(ctx, func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	})
	if err != nil {
		r.log.Warn("failed to prune cache", zap.Error(err))
		return 0
	}
	return n
}

func buildReport(outcomes []outcome) *Report {
	report := &Report{Failed: make(map[string]error)}
	for _, o := range outcomes {
		switch o.status {
		case statusFormatted:
			report.Formatted = append(report.Formatted, o.path)
		case statusUnchanged:
			report.Unchanged = append(report.Unchanged, o.path)
		case statusCached:
			report.Cached = append(report.Cached, o.path)
		case statusNeedsFormatting:
			report.NeedsFormatting = append(report.NeedsFormatting, o.path)
		case statusFailed:
			report.Failed[o.path] = o.err
		}
	}
	for _, list := range [][]string{report.Formatted, report.Unchanged, report.Cached, report.NeedsFormatting} {
		sort.Strings(list)
	}
	return report
}
