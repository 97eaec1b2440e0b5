package server

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/playperu/spahost/internal/router"
)

// Resolver maps a parsed request to its response.
type Resolver interface {
	Resolve(req router.Request) router.Response
}

// NewHandler builds the public front door: every path and method goes
// through resolver.
func NewHandler(logger *slog.Logger, resolver Resolver) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newStructuredLogger(logger))
	r.Use(allowCORS)

	h := handleFrontDoor(resolver)
	r.HandleFunc("/*", h)
	r.NotFound(h)
	r.MethodNotAllowed(h)

	return r
}

func allowCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, PUT, PATCH, DELETE")
		h.Set("Access-Control-Allow-Headers", "X-Requested-With,content-type")
		h.Set("Access-Control-Allow-Credentials", "true")
		next.ServeHTTP(w, r)
	})
}

func handleFrontDoor(resolver Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := router.Request{Method: r.Method, Path: r.URL.Path}
		if r.Method == http.MethodPost {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				// A broken upload is a handler fault; the supervisor recycles the listener.
				panic(fmt.Errorf("reading request body: %w", err))
			}
			req.Body = body
		}

		writeResponse(w, r, resolver.Resolve(req))
	}
}

func writeResponse(w http.ResponseWriter, r *http.Request, resp router.Response) {
	h := w.Header()
	h.Set("Content-Type", resp.ContentType)
	body := resp.Body

	if e := resp.Entry; e != nil {
		h.Set("Vary", "Accept-Encoding")
		if resp.Status == http.StatusOK {
			h.Set("ETag", e.ETag)
			if etagMatches(r.Header.Get("If-None-Match"), e.ETag) {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		if enc := negotiateEncoding(r.Header.Get("Accept-Encoding"), e); enc != "" {
			h.Set("Content-Encoding", enc)
			body = e.Variant(enc)
		}
	}

	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(resp.Status)
	_, _ = w.Write(body)
}
