// Package assets builds the in-memory index of static files served by the
// front door. An Index is built once at startup and never mutated, so it is
// safe for concurrent readers without locking.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/sync/errgroup"
)

// ErrBuild wraps every failure that aborts an index build.
var ErrBuild = errors.New("building asset index")

// ErrMissing is returned by Require for paths absent from the index.
var ErrMissing = errors.New("asset not in index")

const defaultConcurrency = 8

// Options tunes how an Index is built.
type Options struct {
	// Concurrency bounds the number of files read in parallel.
	Concurrency int
	// Compress precomputes gzip and brotli variants for compressible types.
	Compress bool
	// MinCompressSize is the smallest content length worth compressing.
	MinCompressSize int
	// MIMETypes overrides the built-in extension table. Keys may be given
	// with or without the leading dot.
	MIMETypes map[string]string
}

// Entry is one file of the index. Its fields must not be modified.
type Entry struct {
	Path     string
	Content  []byte
	MIMEType string
	ETag     string
	Gzip     []byte
	Brotli   []byte
}

// Variant returns the precompressed body for a content coding, or nil when
// no smaller variant exists.
func (e *Entry) Variant(encoding string) []byte {
	switch encoding {
	case "br":
		return e.Brotli
	case "gzip":
		return e.Gzip
	}
	return nil
}

// Index maps normalized request paths ("/js/app.js") to entries.
type Index struct {
	root    string
	entries map[string]*Entry
}

type sourceFile struct {
	key  string
	path string
}

// Build walks root recursively and loads every regular file into memory.
// The build is all-or-nothing: if the root or any file cannot be read, no
// index is returned.
func Build(ctx context.Context, root string, opts Options) (*Index, error) {
	if opts.Concurrency < 1 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.MinCompressSize <= 0 {
		opts.MinCompressSize = defaultMinCompressSize
	}
	types := newMIMETable(opts.MIMETypes)

	files, err := collect(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}

	entries := make([]*Entry, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e, err := load(f, types, opts)
			if err != nil {
				return err
			}
			entries[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}

	idx := &Index{root: root, entries: make(map[string]*Entry, len(entries))}
	for _, e := range entries {
		idx.entries[e.Path] = e
	}
	return idx, nil
}

// collect enumerates the regular files under root. Symlinks to files are
// followed; symlinks to directories are skipped so cycles cannot occur.
func collect(root string) ([]sourceFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("reading root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	var files []sourceFile
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(p)
			if err != nil {
				return err
			}
			if !target.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, sourceFile{key: "/" + filepath.ToSlash(rel), path: p})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

func load(f sourceFile, types mimeTable, opts Options) (*Entry, error) {
	content, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}

	e := &Entry{
		Path:     f.key,
		Content:  content,
		MIMEType: types.lookup(f.key),
		ETag:     etag(content),
	}
	if opts.Compress && len(content) >= opts.MinCompressSize && compressible(e.MIMEType) {
		if e.Gzip, e.Brotli, err = precompress(content); err != nil {
			return nil, fmt.Errorf("compressing %s: %w", f.path, err)
		}
	}
	return e, nil
}

// Get returns the entry stored under path.
func (i *Index) Get(path string) (*Entry, bool) {
	e, ok := i.entries[path]
	return e, ok
}

func (i *Index) Len() int { return len(i.entries) }

func (i *Index) Root() string { return i.root }

// Paths returns every key in lexical order.
func (i *Index) Paths() []string {
	paths := make([]string, 0, len(i.entries))
	for p := range i.entries {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Require reports the first of paths that is not in the index.
func (i *Index) Require(paths ...string) error {
	for _, p := range paths {
		if _, ok := i.entries[p]; !ok {
			return fmt.Errorf("%w: %s", ErrMissing, p)
		}
	}
	return nil
}
