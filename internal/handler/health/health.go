package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds a whole report when no timeout is configured.
const DefaultTimeout = 3 * time.Second

// Checker verifies that a part of the running server is usable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a plain function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// Handler reports the state of every named Checker. Checks run
// concurrently and share one deadline, so a stuck check cannot hold the
// report past the timeout.
type Handler struct {
	checks  map[string]Checker
	logger  *slog.Logger
	timeout time.Duration
}

func NewHandler(logger *slog.Logger, checks map[string]Checker) *Handler {
	return &Handler{checks: checks, logger: logger, timeout: DefaultTimeout}
}

// WithTimeout sets the deadline shared by all checks of one report.
// Non-positive values keep the default.
func (h *Handler) WithTimeout(d time.Duration) *Handler {
	if d > 0 {
		h.timeout = d
	}
	return h
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.report)
	r.Head("/", h.report)
	return r
}

// Result is the per-check entry of a Report.
type Result struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

// Report is the body of the health endpoint. Status is "ok" only when
// every check passed.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]Result `json:"checks"`
}

// Run executes all checks and returns the report.
func (h *Handler) Run(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var mu sync.Mutex
	rep := Report{Status: "ok", Checks: make(map[string]Result, len(h.checks))}

	// Check errors go into the report, never into the group.
	var g errgroup.Group
	for name, c := range h.checks {
		g.Go(func() error {
			res := h.runOne(ctx, name, c)
			mu.Lock()
			defer mu.Unlock()
			rep.Checks[name] = res
			if res.Status != "ok" {
				rep.Status = "error"
			}
			return nil
		})
	}
	g.Wait()
	return rep
}

func (h *Handler) runOne(ctx context.Context, name string, c Checker) Result {
	start := time.Now()
	errc := make(chan error, 1)
	go func() { errc <- c.Check(ctx) }()

	var err error
	select {
	case err = <-errc:
	case <-ctx.Done():
		err = ctx.Err()
	}

	res := Result{Status: "ok", Duration: time.Since(start).Round(time.Microsecond).String()}
	if err != nil {
		h.logger.Error("health check failed", "name", name, "error", err)
		res.Status = "error"
		res.Error = err.Error()
	}
	return res
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	rep := h.Run(r.Context())

	status := http.StatusOK
	if rep.Status != "ok" {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		json.NewEncoder(w).Encode(rep)
	}
}
