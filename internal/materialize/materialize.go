// Package materialize projects external source files and folders into a
// generated application's source tree.
//
// Files land flattened under the tree root; each folder lands under a
// subdirectory of the same name. Symbolic links are preferred so edits to the
// originals are picked up without re-running synthesis. When the file system
// refuses symbolic links, folders are recreated as real directories and their
// sources are linked, or copied, one by one.
package materialize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/GNPower/Vitis/internal/ctxlog"
	"github.com/GNPower/Vitis/internal/fsutil"
)

// LinkerScriptName is the generated name of the projected linker script.
const LinkerScriptName = "lscript.ld"

// Action records how an entry was placed.
type Action int

const (
	Linked Action = iota
	Copied
	Recreated
	Reused
	Replaced
)

func (a Action) String() string {
	switch a {
	case Linked:
		return "linked"
	case Copied:
		return "copied"
	case Recreated:
		return "recreated"
	case Reused:
		return "reused"
	case Replaced:
		return "replaced"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Entry is one placed file or folder.
type Entry struct {
	Path   string
	Source string
	Action Action
}

// Request lists what to project into Root.
type Request struct {
	Root         string
	Files        []string
	Folders      []string
	LinkerScript string
}

// Result lists the placed entries in request order. Files inside recreated
// folders are included.
type Result struct {
	Entries []Entry
}

// Count returns the number of entries placed with action a.
func (r Result) Count(a Action) int {
	n := 0
	for _, e := range r.Entries {
		if e.Action == a {
			n++
		}
	}
	return n
}

// Materializer places sources into application trees.
type Materializer struct {
	// Symlink creates a symbolic link. Defaults to os.Symlink.
	Symlink func(oldname, newname string) error
	// Patterns select the files of a folder projected by the fallback.
	// Defaults to fsutil.DefaultSourcePatterns.
	Patterns []string
}

// New returns a Materializer backed by the host file system.
func New(patterns ...string) *Materializer {
	return &Materializer{Symlink: os.Symlink, Patterns: patterns}
}

type placement struct {
	target string
	source string
	folder bool
}

// Materialize projects req into req.Root. It checks every placement for
// collisions before touching the file system, so a conflicting request
// changes nothing.
func (m *Materializer) Materialize(ctx context.Context, req Request) (Result, error) {
	logger := ctxlog.FromContext(ctx).With("root", req.Root)

	if fi, err := os.Stat(req.Root); err != nil || !fi.IsDir() {
		return Result{}, fmt.Errorf("application source tree %s is not a directory", req.Root)
	}

	plan, err := m.plan(req)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, p := range plan {
		var entries []Entry
		if p.folder {
			entries, err = m.placeFolder(ctx, p.target, p.source)
		} else {
			var e Entry
			e, err = m.placeFile(ctx, p.target, p.source)
			entries = []Entry{e}
		}
		if err != nil {
			return res, err
		}
		res.Entries = append(res.Entries, entries...)
	}

	if req.LinkerScript != "" {
		e, err := m.placeLinkerScript(ctx, filepath.Join(req.Root, LinkerScriptName), req.LinkerScript)
		if err != nil {
			return res, err
		}
		res.Entries = append(res.Entries, e)
	}

	logger.Debug("Materialized sources.",
		"linked", res.Count(Linked), "copied", res.Count(Copied),
		"recreated", res.Count(Recreated), "reused", res.Count(Reused))
	return res, nil
}

func (m *Materializer) plan(req Request) ([]placement, error) {
	var plan []placement
	byTarget := make(map[string]placement)

	add := func(src string, folder bool) error {
		src = filepath.Clean(src)
		fi, err := os.Stat(src)
		if err != nil {
			return &Error{Path: req.Root, Source: src, Err: ErrMissingSource}
		}
		if fi.IsDir() != folder {
			kind := "a file"
			if folder {
				kind = "a directory"
			}
			return &Error{Path: req.Root, Source: src, Err: fmt.Errorf("expected %s", kind)}
		}

		p := placement{target: filepath.Join(req.Root, filepath.Base(src)), source: src, folder: folder}
		if prev, ok := byTarget[p.target]; ok {
			if prev.source == p.source && prev.folder == p.folder {
				return nil
			}
			return &Error{Path: p.target, Source: src, Err: fmt.Errorf("%w: also claimed by %s", ErrConflict, prev.source)}
		}
		if filepath.Base(src) == LinkerScriptName && req.LinkerScript != "" {
			return &Error{Path: p.target, Source: src, Err: fmt.Errorf("%w: reserved for the linker script", ErrConflict)}
		}
		byTarget[p.target] = p
		plan = append(plan, p)
		return nil
	}

	for _, f := range req.Files {
		if err := add(f, false); err != nil {
			return nil, err
		}
	}
	for _, d := range req.Folders {
		if err := add(d, true); err != nil {
			return nil, err
		}
	}
	if req.LinkerScript != "" {
		if _, err := os.Stat(req.LinkerScript); err != nil {
			return nil, &Error{Path: filepath.Join(req.Root, LinkerScriptName), Source: req.LinkerScript, Err: ErrMissingSource}
		}
	}
	return plan, nil
}

// placeFile links target to src, copying when links are refused.
func (m *Materializer) placeFile(ctx context.Context, target, src string) (Entry, error) {
	e := Entry{Path: target, Source: src}

	existing, err := os.Lstat(target)
	switch {
	case err == nil:
		if ok, err := sameFile(target, existing, src); err != nil {
			return e, &Error{Path: target, Source: src, Err: err}
		} else if !ok {
			return e, &Error{Path: target, Source: src, Err: ErrConflict}
		}
		e.Action = Reused
		return e, nil
	case !errors.Is(err, fs.ErrNotExist):
		return e, &Error{Path: target, Source: src, Err: err}
	}

	linked, err := m.link(ctx, src, target)
	if err != nil {
		return e, &Error{Path: target, Source: src, Err: err}
	}
	if linked {
		e.Action = Linked
		return e, nil
	}
	if err := fsutil.CopyFile(src, target); err != nil {
		return e, &Error{Path: target, Source: src, Err: err}
	}
	e.Action = Copied
	return e, nil
}

// placeFolder links target to the folder src, or recreates its structure
// when links are refused. A previously recreated folder is reconciled file
// by file.
func (m *Materializer) placeFolder(ctx context.Context, target, src string) ([]Entry, error) {
	existing, err := os.Lstat(target)
	switch {
	case err == nil:
		if existing.Mode()&fs.ModeSymlink != 0 {
			dest, err := os.Readlink(target)
			if err != nil {
				return nil, &Error{Path: target, Source: src, Err: err}
			}
			if filepath.Clean(dest) != src {
				return nil, &Error{Path: target, Source: src, Err: fmt.Errorf("%w: links to %s", ErrConflict, dest)}
			}
			return []Entry{{Path: target, Source: src, Action: Reused}}, nil
		}
		if !existing.IsDir() {
			return nil, &Error{Path: target, Source: src, Err: fmt.Errorf("%w: not a directory", ErrConflict)}
		}
		return m.recreate(ctx, target, src)
	case !errors.Is(err, fs.ErrNotExist):
		return nil, &Error{Path: target, Source: src, Err: err}
	}

	linked, err := m.link(ctx, src, target)
	if err != nil {
		return nil, &Error{Path: target, Source: src, Err: err}
	}
	if linked {
		return []Entry{{Path: target, Source: src, Action: Linked}}, nil
	}
	return m.recreate(ctx, target, src)
}

func (m *Materializer) recreate(ctx context.Context, target, src string) ([]Entry, error) {
	dirs, err := fsutil.FindDirs(src)
	if err != nil {
		return nil, &Error{Path: target, Source: src, Err: err}
	}
	if err := os.MkdirAll(target, 0755); err != nil {
		return nil, &Error{Path: target, Source: src, Err: err}
	}
	for _, d := range dirs {
		if err := os.MkdirAll(fsutil.Rel(target, d), 0755); err != nil {
			return nil, &Error{Path: fsutil.Rel(target, d), Source: fsutil.Rel(src, d), Err: err}
		}
	}

	patterns := m.Patterns
	if len(patterns) == 0 {
		patterns = fsutil.DefaultSourcePatterns
	}
	files, err := fsutil.FindFiles(src, patterns...)
	if err != nil {
		return nil, &Error{Path: target, Source: src, Err: err}
	}

	entries := []Entry{{Path: target, Source: src, Action: Recreated}}
	for _, f := range files {
		e, err := m.placeFile(ctx, fsutil.Rel(target, f), fsutil.Rel(src, f))
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	ctxlog.FromContext(ctx).Debug("Recreated source folder.", "path", target, "source", src, "files", len(files))
	return entries, nil
}

// placeLinkerScript owns its target: anything already there other than the
// configured script is replaced, since the application template always
// generates a default one.
func (m *Materializer) placeLinkerScript(ctx context.Context, target, src string) (Entry, error) {
	src = filepath.Clean(src)
	existing, err := os.Lstat(target)
	if err == nil {
		ok, err := sameFile(target, existing, src)
		if err == nil && ok {
			return Entry{Path: target, Source: src, Action: Reused}, nil
		}
		if err := os.Remove(target); err != nil {
			return Entry{}, &Error{Path: target, Source: src, Err: err}
		}
		e, err := m.placeFile(ctx, target, src)
		if err != nil {
			return e, err
		}
		e.Action = Replaced
		return e, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Entry{}, &Error{Path: target, Source: src, Err: err}
	}
	return m.placeFile(ctx, target, src)
}

// link creates a symbolic link. It reports false, without error, when the
// file system refuses the link.
func (m *Materializer) link(ctx context.Context, src, target string) (bool, error) {
	symlink := m.Symlink
	if symlink == nil {
		symlink = os.Symlink
	}
	err := symlink(src, target)
	if err == nil {
		return true, nil
	}
	if !Unsupported(err) {
		return false, err
	}
	ctxlog.FromContext(ctx).Debug("Symbolic link refused, falling back.", "path", target, "error", err)
	return false, nil
}

// Unsupported reports whether err means the file system refuses symbolic
// links rather than a real failure.
func Unsupported(err error) bool {
	return errors.Is(err, fs.ErrPermission) || errors.Is(err, errors.ErrUnsupported)
}

// sameFile reports whether target, described by fi, already provides src:
// a link to src, or a copy with identical content.
func sameFile(target string, fi fs.FileInfo, src string) (bool, error) {
	if fi.Mode()&fs.ModeSymlink != 0 {
		dest, err := os.Readlink(target)
		if err != nil {
			return false, err
		}
		return filepath.Clean(dest) == src, nil
	}
	if !fi.Mode().IsRegular() {
		return false, nil
	}
	return fsutil.SameContent(target, src)
}
