package assets

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultMIMEType = "application/octet-stream"

// builtinTypes covers the usual contents of a compiled web bundle. Types are
// bare (no charset parameter) so responses match what browsers and the
// classic mime-types database expect.
var builtinTypes = map[string]string{
	".html":        "text/html",
	".htm":         "text/html",
	".css":         "text/css",
	".js":          "application/javascript",
	".mjs":         "application/javascript",
	".json":        "application/json",
	".map":         "application/json",
	".webmanifest": "application/manifest+json",
	".xml":         "application/xml",
	".txt":         "text/plain",
	".md":          "text/markdown",
	".csv":         "text/csv",
	".svg":         "image/svg+xml",
	".png":         "image/png",
	".jpg":         "image/jpeg",
	".jpeg":        "image/jpeg",
	".gif":         "image/gif",
	".webp":        "image/webp",
	".avif":        "image/avif",
	".ico":         "image/x-icon",
	".bmp":         "image/bmp",
	".woff":        "font/woff",
	".woff2":       "font/woff2",
	".ttf":         "font/ttf",
	".otf":         "font/otf",
	".eot":         "application/vnd.ms-fontobject",
	".wasm":        "application/wasm",
	".pdf":         "application/pdf",
	".zip":         "application/zip",
	".mp3":         "audio/mpeg",
	".wav":         "audio/wav",
	".ogg":         "audio/ogg",
	".mp4":         "video/mp4",
	".webm":        "video/webm",
}

type mimeTable struct {
	overrides map[string]string
}

func newMIMETable(overrides map[string]string) mimeTable {
	t := mimeTable{overrides: make(map[string]string, len(overrides))}
	for ext, typ := range overrides {
		t.overrides[normalizeExt(ext)] = typ
	}
	return t
}

// lookup resolves overrides first, then the built-in table, then the
// platform registry.
func (t mimeTable) lookup(name string) string {
	ext := normalizeExt(path.Ext(name))
	if ext == "" {
		return defaultMIMEType
	}
	if typ, ok := t.overrides[ext]; ok {
		return typ
	}
	if typ, ok := builtinTypes[ext]; ok {
		return typ
	}
	if typ := mime.TypeByExtension(ext); typ != "" {
		return typ
	}
	return defaultMIMEType
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// LoadMIMETypes reads a YAML mapping of extension to MIME type. An empty
// path or a missing file yields no overrides.
func LoadMIMETypes(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading mime types file: %w", err)
	}

	types := map[string]string{}
	if err := yaml.Unmarshal(data, &types); err != nil {
		return nil, fmt.Errorf("parsing mime types YAML: %w", err)
	}
	for ext, typ := range types {
		if normalizeExt(ext) == "" || strings.TrimSpace(typ) == "" {
			return nil, fmt.Errorf("mime types file: invalid entry %q: %q", ext, typ)
		}
	}
	return types, nil
}
