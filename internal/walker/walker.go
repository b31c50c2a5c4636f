// Package walker enumerates the importable files under a sync root. The
// walk is capped at three levels (root, folder, subfolder), matching the
// organization/folder/subfolder model on the server.
package walker

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/alexjbarnes/folder-sync/internal/errors"
	"github.com/alexjbarnes/folder-sync/internal/models"
)

// DefaultIgnore lists OS artifacts that are never reported. Matching is
// exact on the entry name.
var DefaultIgnore = []string{
	".DS_Store",
	".localized",
	".Spotlight-V100",
	".Trashes",
	".fseventsd",
	"Thumbs.db",
	"desktop.ini",
}

// Walker lists files under a root through an afero filesystem.
type Walker struct {
	fs     afero.Fs
	logger *slog.Logger
	ignore map[string]struct{}
}

// Option configures a Walker.
type Option func(*Walker)

// WithIgnore replaces the ignore list.
func WithIgnore(names ...string) Option {
	return func(w *Walker) {
		w.ignore = make(map[string]struct{}, len(names))
		for _, n := range names {
			w.ignore[n] = struct{}{}
		}
	}
}

// WithExtraIgnore adds names to the ignore list, keeping the ones already
// set.
func WithExtraIgnore(names ...string) Option {
	return func(w *Walker) {
		for _, n := range names {
			w.ignore[n] = struct{}{}
		}
	}
}

// New creates a Walker over fs. A nil fs means the OS filesystem.
func New(fs afero.Fs, logger *slog.Logger, opts ...Option) *Walker {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	w := &Walker{fs: fs, logger: logger}
	WithIgnore(DefaultIgnore...)(w)

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Ignored reports whether name is on the ignore list.
func (w *Walker) Ignored(name string) bool {
	_, ok := w.ignore[name]
	return ok
}

// Walk returns every regular file under root within the depth cap. It
// fails only when root itself cannot be read; problems with individual
// entries are logged and the entry skipped.
func (w *Walker) Walk(root string) ([]models.Entry, error) {
	var entries []models.Entry

	err := w.WalkFunc(root, func(e models.Entry) {
		entries = append(entries, e)
	})

	return entries, err
}

// WalkFunc is Walk with a callback per file instead of a collected slice.
func (w *Walker) WalkFunc(root string, fn func(models.Entry)) error {
	info, err := w.fs.Stat(root)
	if err != nil {
		return fmt.Errorf("stat root %s: %w", root, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s: %w", root, errors.ErrNotDirectory)
	}

	names, err := w.list(root)
	if err != nil {
		return fmt.Errorf("listing root %s: %w", root, err)
	}

	w.walkNames(root, names, models.ProvenanceRoot, fn)

	return nil
}

// ProvenanceOf returns the depth tag a file at path would get under root,
// or false when the path is outside root or below the depth cap.
func ProvenanceOf(root, path string) (models.Provenance, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || filepath.IsAbs(rel) {
		return "", false
	}

	if strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}

	switch len(strings.Split(filepath.ToSlash(rel), "/")) {
	case 1:
		return models.ProvenanceRoot, true
	case 2:
		return models.ProvenanceFolder, true
	case 3:
		return models.ProvenanceSubfolder, true
	}

	return "", false
}

func (w *Walker) walkDir(dir string, prov models.Provenance, fn func(models.Entry)) {
	names, err := w.list(dir)
	if err != nil {
		w.logger.Warn("listing directory failed",
			slog.String("path", dir),
			slog.String("error", err.Error()),
		)
		return
	}

	w.walkNames(dir, names, prov, fn)
}

func (w *Walker) walkNames(dir string, names []string, prov models.Provenance, fn func(models.Entry)) {
	for _, name := range names {
		path := filepath.Join(dir, name)

		info, err := w.stat(path)
		if err != nil {
			w.logger.Warn("stat failed during walk",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			continue
		}

		mode := info.Mode()

		switch {
		case mode&os.ModeSymlink != 0:
			w.logger.Debug("skipping symlink", slog.String("path", path))

		case mode.IsRegular():
			fn(models.Entry{
				Name:       name,
				Path:       path,
				Kind:       models.KindFile,
				Provenance: prov,
				Size:       info.Size(),
				CreatedAt:  fileCreated(info),
				ModifiedAt: info.ModTime(),
			})

		case mode.IsDir():
			next, ok := deeper(prov)
			if !ok {
				w.logger.Debug("directory below depth cap not visited", slog.String("path", path))
				continue
			}

			w.walkDir(path, next, fn)
		}
	}
}

// list returns the entry names of dir minus ignored names, sorted.
func (w *Walker) list(dir string) ([]string, error) {
	f, err := w.fs.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}

	kept := names[:0]
	for _, n := range names {
		if w.Ignored(n) {
			continue
		}

		kept = append(kept, n)
	}

	sort.Strings(kept)

	return kept, nil
}

// stat uses Lstat when the filesystem supports it so symlinks are seen
// as links rather than followed.
func (w *Walker) stat(path string) (os.FileInfo, error) {
	if ls, ok := w.fs.(afero.Lstater); ok {
		info, _, err := ls.LstatIfPossible(path)
		return info, err
	}

	return w.fs.Stat(path)
}

func deeper(prov models.Provenance) (models.Provenance, bool) {
	switch prov {
	case models.ProvenanceRoot:
		return models.ProvenanceFolder, true
	case models.ProvenanceFolder:
		return models.ProvenanceSubfolder, true
	}

	return "", false
}

// EntryAt stats a single path under root and returns it as an entry. It
// reports false for ignored names, non-regular files and paths outside
// the depth cap.
func (w *Walker) EntryAt(root, path string) (models.Entry, bool) {
	prov, ok := ProvenanceOf(root, path)
	if !ok {
		return models.Entry{}, false
	}

	if w.IgnoredPath(root, path) {
		return models.Entry{}, false
	}

	name := filepath.Base(path)

	info, err := w.stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return models.Entry{}, false
	}

	return models.Entry{
		Name:       name,
		Path:       path,
		Kind:       models.KindFile,
		Provenance: prov,
		Size:       info.Size(),
		CreatedAt:  fileCreated(info),
		ModifiedAt: info.ModTime(),
	}, true
}

// Dirs returns root and every directory under it whose files fall within
// the depth cap, in walk order.
func (w *Walker) Dirs(root string) ([]string, error) {
	info, err := w.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root %s: %w", root, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, errors.ErrNotDirectory)
	}

	dirs := []string{root}
	w.collectDirs(root, models.ProvenanceRoot, &dirs)

	return dirs, nil
}

func (w *Walker) collectDirs(dir string, prov models.Provenance, dirs *[]string) {
	next, ok := deeper(prov)
	if !ok {
		return
	}

	names, err := w.list(dir)
	if err != nil {
		return
	}

	for _, name := range names {
		path := filepath.Join(dir, name)

		info, err := w.stat(path)
		if err != nil || !info.IsDir() {
			continue
		}

		*dirs = append(*dirs, path)
		w.collectDirs(path, next, dirs)
	}
}

// IsDir reports whether path is a directory, not following symlinks.
func (w *Walker) IsDir(path string) bool {
	info, err := w.stat(path)
	return err == nil && info.IsDir()
}

// IgnoredPath reports whether any element of path below root is on the
// ignore list, so files inside an ignored directory are ignored too.
func (w *Walker) IgnoredPath(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}

	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if w.Ignored(part) {
			return true
		}
	}

	return false
}
