package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/SterlingPeet/fprime-extras/internal/cli/output"
	"github.com/SterlingPeet/fprime-extras/internal/importgraph"
	"github.com/SterlingPeet/fprime-extras/pkg/lint"
	"github.com/SterlingPeet/fprime-extras/pkg/topology"
	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 150 * time.Millisecond

// watcher re-lints inputs when they or anything they import changes.
type watcher struct {
	pipeline *lint.Pipeline
	resolver *topology.Resolver
	renderer *output.Renderer
	logger   *slog.Logger
	opts     *LintOptions
}

// run blocks until the context is cancelled or an interrupt arrives.
func (w *watcher) run(ctx context.Context, paths []string, results []*lint.Result) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	inputs := absPaths(paths)
	g := w.graph(ctx, results)
	watched := make(map[string]bool)
	w.watchDirs(fsw, g, watched)

	w.renderer.Println(w.renderer.Styles().Muted.Render(
		fmt.Sprintf("Watching %d documents, press Ctrl+C to stop", g.DocumentCount())))

	var (
		pending = make(map[string]bool)
		timer   *time.Timer
		fire    <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !relevant(event.Name) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			pending[abs] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounceDelay)
			fire = timer.C

		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			clear(pending)

			relint := affectedInputs(g, inputs, changed)
			if len(relint) == 0 {
				w.logger.Debug("change outside the import graph", slog.Any("paths", changed))
				continue
			}
			w.logger.Info("re-linting", slog.Int("files", len(relint)))
			results, err := lintOnce(ctx, w.pipeline, w.renderer, relint, w.opts)
			if err != nil {
				w.renderer.Warn(err.Error())
				continue
			}
			g.Merge(w.graph(ctx, results))
			w.watchDirs(fsw, g, watched)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", slog.Any("error", err))
		}
	}
}

// graph merges the import graphs of results. Paths are absolute so they
// compare equal to watcher events.
func (w *watcher) graph(ctx context.Context, results []*lint.Result) *importgraph.Graph {
	g := importgraph.New()
	for _, res := range results {
		if res == nil {
			continue
		}
		path, err := filepath.Abs(res.Path)
		if err != nil {
			continue
		}
		root := res.FprimeRoot
		if root != "" {
			if abs, err := filepath.Abs(root); err == nil {
				root = abs
			}
		}
		sub, err := w.resolver.ImportGraph(ctx, root, path, res.Document)
		if err != nil {
			w.logger.Debug("import graph incomplete", slog.String("file", res.Path), slog.Any("error", err))
		}
		g.Merge(sub)
	}
	return g
}

// watchDirs adds the directory of every document in g that is not yet
// watched. Directories that do not exist are skipped.
func (w *watcher) watchDirs(fsw *fsnotify.Watcher, g *importgraph.Graph, watched map[string]bool) {
	for _, doc := range g.Documents() {
		dir := filepath.Dir(doc)
		if watched[dir] {
			continue
		}
		watched[dir] = true
		if err := fsw.Add(dir); err != nil {
			w.logger.Debug("cannot watch directory", slog.String("dir", dir), slog.Any("error", err))
		}
	}
}

// affectedInputs returns the inputs that changed or import a changed
// document, in input order.
func affectedInputs(g *importgraph.Graph, inputs, changed []string) []string {
	hit := make(map[string]bool)
	for _, p := range g.Affected(changed) {
		hit[p] = true
	}
	var out []string
	for _, in := range inputs {
		if hit[in] {
			out = append(out, in)
		}
	}
	return out
}

func absPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			out = append(out, abs)
		} else {
			out = append(out, p)
		}
	}
	return out
}

// relevant skips editor swap files and lint backups.
func relevant(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".xml")
}
