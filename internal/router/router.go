// Package router classifies requests into static asset, application shell
// fallback or API responses. It performs no I/O: every response is built
// from the in-memory asset index and route registry it was given.
package router

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/playperu/spahost/internal/assets"
)

const (
	ContentTypeJSON = "text/json"
	ContentTypeText = "text/plain"

	DefaultEntryDocument    = "/index.html"
	DefaultNotFoundDocument = "/not-found.html"

	apiSegment = "api"
)

var (
	statusOKBody   = []byte(`{ "status": "ok" }`)
	badRequestBody = []byte("400 Bad Request")
	notFoundBody   = []byte("404 Not Found")
)

// Kind tells which branch produced a Response.
type Kind int

const (
	KindAsset Kind = iota
	KindNotFound
	KindFallback
	KindAPIDefault
	KindAPIInvalid
)

func (k Kind) String() string {
	switch k {
	case KindAsset:
		return "asset"
	case KindNotFound:
		return "not_found"
	case KindFallback:
		return "fallback"
	case KindAPIDefault:
		return "api_default"
	case KindAPIInvalid:
		return "api_invalid"
	}
	return "unknown"
}

type Request struct {
	Method string
	Path   string
	Body   []byte
}

type Response struct {
	Status      int
	Body        []byte
	ContentType string
	Kind        Kind
	// Entry is the indexed file the body came from, nil for generated bodies.
	Entry *assets.Entry
}

// AssetIndex is the read-only lookup the router resolves static paths against.
type AssetIndex interface {
	Get(path string) (*assets.Entry, bool)
}

// RouteSet reports whether a path is a declared client-side route.
type RouteSet interface {
	Contains(path string) bool
}

type Options struct {
	EntryDocument    string
	NotFoundDocument string
}

type Router struct {
	index  AssetIndex
	routes RouteSet
	opts   Options
	logger *slog.Logger
}

func New(logger *slog.Logger, index AssetIndex, routes RouteSet, opts Options) *Router {
	if opts.EntryDocument == "" {
		opts.EntryDocument = DefaultEntryDocument
	}
	if opts.NotFoundDocument == "" {
		opts.NotFoundDocument = DefaultNotFoundDocument
	}
	return &Router{index: index, routes: routes, opts: opts, logger: logger}
}

// Resolve classifies req and builds its response. It never fails: any
// fault while classifying is answered with 400 Bad Request.
func (rt *Router) Resolve(req Request) (resp Response) {
	defer func() {
		if rec := recover(); rec != nil {
			rt.logger.Warn("request classification failed", "method", req.Method, "path", req.Path, "panic", rec)
			resp = badRequest()
		}
	}()

	segments := strings.Split(req.Path, "/")
	if len(segments) < 2 {
		return badRequest()
	}
	if segments[1] != apiSegment {
		return rt.resolveStatic(segments)
	}
	return resolveAPI(segments)
}

func (rt *Router) resolveStatic(segments []string) Response {
	matcher := "/" + strings.Join(segments[1:], "/")

	lookup := matcher
	if lookup == "/" {
		lookup = rt.opts.EntryDocument
	}

	resp, ok := rt.document(lookup, http.StatusOK, KindAsset)
	if !ok {
		resp = rt.notFound()
	}

	// Declared client routes win over the file lookup, even over a 404.
	if rt.routes.Contains(matcher) {
		if shell, ok := rt.document(rt.opts.EntryDocument, http.StatusOK, KindFallback); ok {
			resp = shell
		}
	}
	return resp
}

func (rt *Router) notFound() Response {
	if resp, ok := rt.document(rt.opts.NotFoundDocument, http.StatusNotFound, KindNotFound); ok {
		return resp
	}
	return Response{
		Status:      http.StatusNotFound,
		Body:        notFoundBody,
		ContentType: ContentTypeText,
		Kind:        KindNotFound,
	}
}

func (rt *Router) document(path string, status int, kind Kind) (Response, bool) {
	e, ok := rt.index.Get(path)
	if !ok {
		return Response{}, false
	}
	return Response{
		Status:      status,
		Body:        e.Content,
		ContentType: e.MIMEType,
		Kind:        kind,
		Entry:       e,
	}, true
}

func resolveAPI(segments []string) Response {
	if len(segments) > 2 && segments[2] == "" {
		return Response{
			Status:      http.StatusOK,
			Body:        statusOKBody,
			ContentType: ContentTypeJSON,
			Kind:        KindAPIDefault,
		}
	}
	return badRequest()
}

func badRequest() Response {
	return Response{
		Status:      http.StatusBadRequest,
		Body:        badRequestBody,
		ContentType: ContentTypeText,
		Kind:        KindAPIInvalid,
	}
}
