package activeproject

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/GNPower/Vitis/internal/ctxlog"
	"github.com/GNPower/Vitis/internal/layout"
	"github.com/fsnotify/fsnotify"
)

// Watch activates name, then refreshes the derived files whenever a known
// project's compiler database is written, until ctx is done. onRefresh, if
// set, receives the outcome of every refresh after the first activation.
// A failed refresh is logged and watching continues.
func (m *Manager) Watch(ctx context.Context, name string, onRefresh func(*Result, error)) error {
	opts := m.Options.withDefaults()
	logger := ctxlog.FromContext(ctx).With("project", name)

	if _, err := m.Activate(ctx, name); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()

	dirs, err := m.watchDirs(ctx, name)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			logger.Warn("Cannot watch directory.", "path", dir, "error", err)
			continue
		}
		logger.Debug("Watching for compiler database changes.", "path", dir)
	}
	logger.Info("Watching compiler databases.", "dirs", len(dirs), "debounce", opts.Debounce)

	timer := time.NewTimer(opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopped watching.")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != layout.CompileDBName {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("Compiler database changed.", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(opts.Debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error.", "error", err)

		case <-timer.C:
			res, err := m.Activate(ctx, name)
			if err != nil {
				logger.Error("Refresh failed.", "error", err)
			}
			if onRefresh != nil {
				onRefresh(res, err)
			}
		}
	}
}

// watchDirs lists the existing directories that may receive an
// application's compiler database, across every known project.
func (m *Manager) watchDirs(ctx context.Context, name string) ([]string, error) {
	projects, err := m.load(ctx, name)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, k := range projects {
		for _, app := range k.project.Applications {
			for _, c := range m.Layout.CompileDBCandidates(app.Name) {
				dir := filepath.Dir(c)
				if seen[dir] {
					continue
				}
				seen[dir] = true
				info, err := os.Stat(dir)
				if errors.Is(err, os.ErrNotExist) || (err == nil && !info.IsDir()) {
					continue
				}
				if err != nil {
					return nil, err
				}
				out = append(out, dir)
			}
		}
	}
	return out, nil
}
