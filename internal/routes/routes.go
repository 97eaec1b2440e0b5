// Package routes discovers client-side application routes that have no
// file on disk but must still be answered with the entry document.
package routes

import (
	"log/slog"
	"os"
	"regexp"
	"slices"
)

var pathAttr = regexp.MustCompile(`(?i)path="(.*?)"`)

// Extract returns the value of every path="..." attribute in src, in order
// of appearance. Duplicates are kept.
func Extract(src string) []string {
	matches := pathAttr.FindAllStringSubmatch(src, -1)
	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, m[1])
	}
	return paths
}

// Registry is an immutable, ordered list of client-side routes.
type Registry struct {
	paths []string
	set   map[string]struct{}
}

func New(paths []string) *Registry {
	r := &Registry{
		paths: slices.Clone(paths),
		set:   make(map[string]struct{}, len(paths)),
	}
	for _, p := range paths {
		r.set[p] = struct{}{}
	}
	return r
}

// Load reads the router source at path and extracts its routes. A source
// that cannot be read yields an empty registry; startup never fails here.
func Load(path string, logger *slog.Logger) *Registry {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("router source unavailable, no dynamic routes registered", "path", path, "error", err)
		return New(nil)
	}
	r := New(Extract(string(data)))
	logger.Info("dynamic routes loaded", "path", path, "count", r.Len())
	return r
}

func (r *Registry) Contains(path string) bool {
	_, ok := r.set[path]
	return ok
}

// Paths returns a copy of the routes in declaration order.
func (r *Registry) Paths() []string { return slices.Clone(r.paths) }

func (r *Registry) Len() int { return len(r.paths) }
